package middleware_test

import (
	"bufio"
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
)

// recordingLogger returns a debug-level JSON logger writing to buf.
func recordingLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// records decodes every JSON log line in buf.
func records(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	sc := bufio.NewScanner(bytes.NewReader(buf.Bytes()))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		var rec map[string]any
		if err := json.Unmarshal(sc.Bytes(), &rec); err != nil {
			t.Fatalf("decoding log line %q: %v", sc.Text(), err)
		}
		out = append(out, rec)
	}
	return out
}

// findRecord returns the first record with the given message.
func findRecord(t *testing.T, recs []map[string]any, msg string) map[string]any {
	t.Helper()
	for _, rec := range recs {
		if rec["msg"] == msg {
			return rec
		}
	}
	t.Fatalf("no log record %q in %v", msg, recs)
	return nil
}
