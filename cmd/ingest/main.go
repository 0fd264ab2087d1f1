// Package main is the file-driven ingestion command. It processes each file
// named on the command line through the same graph as the HTTP service and
// prints one JSON result per file. The exit status is 1 when any document
// could not be decoded or did not complete.
//
//	ingest --profile local --stats testdata/address.json testdata/tx.yaml
//	cat doc.json | ingest --format json
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/samber/do/v2"
	"github.com/spf13/pflag"

	"github.com/jsamuelsen11/layerflow/internal/adapters/http/dto"
	"github.com/jsamuelsen11/layerflow/internal/bootstrap"
	"github.com/jsamuelsen11/layerflow/internal/domain"
	"github.com/jsamuelsen11/layerflow/internal/platform/config"
	"github.com/jsamuelsen11/layerflow/internal/platform/logging"
	"github.com/jsamuelsen11/layerflow/internal/platform/telemetry"
	"github.com/jsamuelsen11/layerflow/internal/ports"
)

// errIncomplete reports that at least one document failed. Results have
// already been printed when it is returned.
var errIncomplete = errors.New("one or more documents did not complete")

const stdinName = "stdin"

type options struct {
	profile    string
	configDir  string
	format     string
	stats      bool
	timeout    time.Duration
	timeoutSet bool
	files      []string
}

// fileResult is one line of output.
type fileResult struct {
	dto.BatchItemResponse
	ReadMS *float64 `json:"read_ms,omitempty"`
}

func main() {
	// A missing .env file is not an error.
	_ = godotenv.Load()

	err := run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	switch {
	case err == nil, errors.Is(err, pflag.ErrHelp):
	case errors.Is(err, errIncomplete):
		os.Exit(1)
	default:
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	o := &options{}
	fs := pflag.NewFlagSet("ingest", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVarP(&o.profile, "profile", "p", envOr("APP_PROFILE", "local"), "configuration profile")
	fs.StringVar(&o.configDir, "config-dir", "configs", "directory holding base.yaml and profile files")
	fs.StringVarP(&o.format, "format", "f", "", "input format (json, yaml); detected from the file name when empty")
	fs.BoolVar(&o.stats, "stats", false, "report file read time alongside decode and process time")
	fs.DurationVar(&o.timeout, "timeout", 0, "per-document deadline; overrides pipeline.timeout when set")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: ingest [flags] [file ...]")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	o.timeoutSet = fs.Changed("timeout")
	if o.timeoutSet && o.timeout < 0 {
		return nil, errors.New("--timeout must not be negative")
	}
	o.files = fs.Args()
	return o, nil
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	o, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	loadOpts := []config.Option{config.WithConfigDir(o.configDir)}
	if o.timeoutSet {
		loadOpts = append(loadOpts, config.WithOverrides(map[string]any{
			"pipeline.timeout": o.timeout.String(),
		}))
	}
	cfg, err := config.Load(o.profile, loadOpts...)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := logging.New(cfg.Log.Level, cfg.Log.Format, stderr)

	raws, reads, err := readInputs(o, stdin)
	if err != nil {
		return err
	}

	injector := do.New()
	do.ProvideValue[*telemetry.Metrics](injector, nil)
	bootstrap.Register(ctx, injector, cfg, logger)

	backends := do.MustInvoke[*bootstrap.Backends](injector)
	defer func() {
		if err := backends.Close(); err != nil {
			logger.Error("backend close error", slog.Any("error", err))
		}
	}()

	svc, err := do.Invoke[ports.DocumentService](injector)
	if err != nil {
		return fmt.Errorf("building pipeline: %w", err)
	}

	items := svc.IngestBatch(ctx, raws)
	batch := dto.ToBatchResponse(items)

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	for i, item := range batch.Results {
		out := fileResult{BatchItemResponse: item}
		if o.stats {
			ms := float64(reads[i].Microseconds()) / 1000
			out.ReadMS = &ms
		}
		if err := enc.Encode(out); err != nil {
			return fmt.Errorf("writing result: %w", err)
		}
	}

	logger.Info("ingest finished",
		slog.Int("documents", len(items)),
		slog.Int("completed", batch.Completed),
		slog.Int("failed", batch.Failed),
	)

	if batch.Failed > 0 {
		return errIncomplete
	}
	return nil
}

// readInputs reads every named file, or stdin when none is named, and
// records how long each read took.
func readInputs(o *options, stdin io.Reader) ([]domain.RawDocument, []time.Duration, error) {
	if len(o.files) == 0 {
		if o.format == "" {
			return nil, nil, errors.New("--format is required when reading from stdin")
		}
		start := time.Now()
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, nil, fmt.Errorf("reading stdin: %w", err)
		}
		raw := domain.RawDocument{Name: stdinName, Format: o.format, Data: data}
		return []domain.RawDocument{raw}, []time.Duration{time.Since(start)}, nil
	}

	raws := make([]domain.RawDocument, 0, len(o.files))
	reads := make([]time.Duration, 0, len(o.files))
	for _, name := range o.files {
		start := time.Now()
		data, err := os.ReadFile(name)
		if err != nil {
			return nil, nil, fmt.Errorf("reading %s: %w", name, err)
		}
		reads = append(reads, time.Since(start))
		raws = append(raws, domain.RawDocument{Name: name, Format: o.format, Data: data})
	}
	return raws, reads, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
