package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/jsamuelsen11/layerflow/internal/domain"
	"github.com/jsamuelsen11/layerflow/internal/platform/config"
)

// Compression modes accepted by the file backend.
const (
	CompressionNone = "none"
	CompressionZstd = "zstd"
)

// File writes one file per record under a directory, grouped by trace
// identifier: <dir>/<trace_id>/<path>.json, with a .zst suffix when
// compressed. Writes go through a temporary file and a rename, so a failed
// Store leaves nothing behind.
type File struct {
	dir     string
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// NewFile creates dir if needed and returns a file store.
func NewFile(cfg config.FileConfig) (*File, error) {
	if cfg.Dir == "" {
		return nil, errors.New("file storage: directory must not be empty")
	}
	if err := os.MkdirAll(cfg.Dir, 0o750); err != nil {
		return nil, fmt.Errorf("file storage: creating %s: %w", cfg.Dir, err)
	}

	f := &File{dir: cfg.Dir}
	switch cfg.Compression {
	case "", CompressionNone:
	case CompressionZstd:
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, fmt.Errorf("file storage: zstd encoder: %w", err)
		}
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, fmt.Errorf("file storage: zstd decoder: %w", err)
		}
		f.encoder, f.decoder = enc, dec
	default:
		return nil, fmt.Errorf("file storage: unknown compression %q", cfg.Compression)
	}
	return f, nil
}

func (f *File) Name() string { return "file" }

func (f *File) Store(_ context.Context, layer domain.TransformedLayer) (domain.Receipt, error) {
	data, err := Encode(layer)
	if err != nil {
		return domain.Receipt{}, err
	}
	if f.encoder != nil {
		data = f.encoder.EncodeAll(data, nil)
	}

	key := Key(layer)
	target := f.path(key)
	if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
		return domain.Receipt{}, fmt.Errorf("creating record directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), ".record-*")
	if err != nil {
		return domain.Receipt{}, fmt.Errorf("creating temporary record: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return domain.Receipt{}, fmt.Errorf("writing record %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return domain.Receipt{}, fmt.Errorf("closing record %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		_ = os.Remove(tmp.Name())
		return domain.Receipt{}, fmt.Errorf("publishing record %s: %w", key, err)
	}
	return domain.Receipt{Backend: f.Name(), Key: key, Size: len(data)}, nil
}

func (f *File) Remove(_ context.Context, receipt domain.Receipt) error {
	if receipt.IsZero() {
		return nil
	}
	target := f.path(receipt.Key)
	if err := os.Remove(target); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing record %s: %w", receipt.Key, err)
	}
	// Drop the trace directory once its last record is gone.
	_ = os.Remove(filepath.Dir(target))
	return nil
}

// Read returns the decoded record named by key.
func (f *File) Read(key string) ([]byte, error) {
	data, err := os.ReadFile(f.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("record %s: %w", key, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("reading record %s: %w", key, err)
	}
	if f.decoder != nil {
		data, err = f.decoder.DecodeAll(data, nil)
		if err != nil {
			return nil, fmt.Errorf("decompressing record %s: %w", key, err)
		}
	}
	return data, nil
}

// HealthCheck reports whether the directory is still present.
func (f *File) HealthCheck(_ context.Context) error {
	info, err := os.Stat(f.dir)
	if err != nil {
		return fmt.Errorf("file storage: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("file storage: %s is not a directory", f.dir)
	}
	return nil
}

// path maps a key to its file. Layer paths use dots and brackets, never
// separators; any that appear are flattened so a key cannot leave dir.
func (f *File) path(key string) string {
	traceID, layerPath, ok := strings.Cut(key, "/")
	if !ok {
		traceID, layerPath = "_", key
	}
	clean := strings.NewReplacer("/", "_", `\`, "_", "..", "_")
	name := clean.Replace(layerPath) + ".json"
	if f.encoder != nil {
		name += ".zst"
	}
	return filepath.Join(f.dir, clean.Replace(traceID), name)
}
