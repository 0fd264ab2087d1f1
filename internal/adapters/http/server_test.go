package http_test

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"testing"
	"time"

	adapthttp "github.com/jsamuelsen11/layerflow/internal/adapters/http"
	"github.com/jsamuelsen11/layerflow/internal/platform/config"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestServer_Addr(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  config.ServerConfig
		want string
	}{
		{name: "ipv4", cfg: config.ServerConfig{Host: "127.0.0.1", Port: 9090}, want: "127.0.0.1:9090"},
		{name: "ipv6", cfg: config.ServerConfig{Host: "::1", Port: 8080}, want: "[::1]:8080"},
		{name: "all interfaces", cfg: config.ServerConfig{Port: 8080}, want: ":8080"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := adapthttp.NewServer(tt.cfg, http.NotFoundHandler(), nil)
			if got := s.Addr(); got != tt.want {
				t.Errorf("Addr() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestServer_ServesUntilShutdown(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "ok")
	})
	s := adapthttp.NewServer(config.ServerConfig{
		Host:         "127.0.0.1",
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
		MaxBodyBytes: 1 << 20,
	}, handler, discardLogger())

	if err := s.Listen(); err != nil {
		t.Fatalf("Listen() error: %v", err)
	}
	addr := s.Addr()
	if addr == "127.0.0.1:0" {
		t.Fatal("Addr() did not report the bound port")
	}

	errCh := make(chan error, 1)
	go func() { errCh <- s.Start() }()

	req, err := http.NewRequestWithContext(t.Context(), http.MethodGet, "http://"+addr+"/", http.NoBody)
	if err != nil {
		t.Fatalf("creating request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET error: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if string(body) != "ok" {
		t.Errorf("body = %q, want %q", body, "ok")
	}

	// No deadline on the context: the default shutdown timeout applies.
	if err := s.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() error: %v", err)
	}
	if err := <-errCh; err != nil {
		t.Errorf("Start() error after shutdown: %v", err)
	}
}

func TestServer_ListenConflict(t *testing.T) {
	t.Parallel()

	first := adapthttp.NewServer(config.ServerConfig{Host: "127.0.0.1"}, http.NotFoundHandler(), nil)
	if err := first.Listen(); err != nil {
		t.Fatalf("Listen() error: %v", err)
	}
	errCh := make(chan error, 1)
	go func() { errCh <- first.Start() }()
	t.Cleanup(func() {
		_ = first.Shutdown(context.Background())
		<-errCh
	})

	// Listen is idempotent.
	if err := first.Listen(); err != nil {
		t.Errorf("second Listen() error: %v", err)
	}

	host, port := splitAddr(t, first.Addr())
	second := adapthttp.NewServer(config.ServerConfig{Host: host, Port: port}, http.NotFoundHandler(), nil)
	if err := second.Start(); err == nil {
		t.Error("Start() on a bound port returned nil, want error")
	}
}

func splitAddr(t *testing.T, addr string) (string, int) {
	t.Helper()
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		t.Fatalf("splitting %q: %v", addr, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		t.Fatalf("parsing port %q: %v", portStr, err)
	}
	return host, port
}
