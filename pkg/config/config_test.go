package config

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/anonto42/nano-gallery/internal/models"
	"github.com/anonto42/nano-gallery/internal/store"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"HOST", "PORT", "ALLOWED_ORIGINS", "STORE_DRIVER", "FEED_LIMIT", "STORE_POLL_INTERVAL", "PHOTOS_PER_PAGE"} {
		t.Setenv(key, "")
	}
	cfg := Load()
	if cfg.Port != "8080" || cfg.StoreDriver != DriverFirestore || cfg.FeedLimit != 20 || cfg.PhotosPerPage != 12 {
		t.Fatalf("defaults = %+v", cfg)
	}
	if cfg.StorePollInterval != 2*time.Second {
		t.Fatalf("poll interval = %s", cfg.StorePollInterval)
	}
	if cfg.Addr() != "127.0.0.1:8080" {
		t.Fatalf("listen address = %s, want loopback", cfg.Addr())
	}
	want := []string{"http://localhost:8080", "http://127.0.0.1:8080"}
	if !slices.Equal(cfg.AllowedOrigins, want) {
		t.Fatalf("allowed origins = %v, want %v", cfg.AllowedOrigins, want)
	}
}

func TestLoadListenOverrides(t *testing.T) {
	t.Setenv("HOST", "::1")
	t.Setenv("PORT", "9000")
	t.Setenv("ALLOWED_ORIGINS", " http://localhost:3000 ,, http://[::1]:9000 ")

	cfg := Load()
	if cfg.Addr() != "[::1]:9000" {
		t.Fatalf("listen address = %s", cfg.Addr())
	}
	want := []string{"http://localhost:3000", "http://[::1]:9000"}
	if !slices.Equal(cfg.AllowedOrigins, want) {
		t.Fatalf("allowed origins = %v, want %v", cfg.AllowedOrigins, want)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("FEED_LIMIT", "50")
	t.Setenv("STORE_POLL_INTERVAL", "500ms")
	t.Setenv("PHOTOS_PER_PAGE", "not-a-number")

	cfg := Load()
	if cfg.StoreDriver != "postgres" || cfg.FeedLimit != 50 || cfg.StorePollInterval != 500*time.Millisecond {
		t.Fatalf("overrides = %+v", cfg)
	}
	if cfg.PhotosPerPage != 12 {
		t.Fatalf("malformed PHOTOS_PER_PAGE = %d, want default", cfg.PhotosPerPage)
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := &Config{Env: "production", LogLevel: "warn"}
	logger := cfg.NewLogger(&buf)
	logger.Info("hidden")
	logger.Warn("shown", "k", "v")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info logged at warn level: %q", out)
	}
	if !strings.HasPrefix(out, "{") || !strings.Contains(out, `"k":"v"`) {
		t.Fatalf("production logs are not JSON: %q", out)
	}
	if !logger.Enabled(context.Background(), slog.LevelError) {
		t.Fatal("error level disabled")
	}
}

func TestInitStoreUnknownDriver(t *testing.T) {
	cfg := &Config{StoreDriver: "redis"}
	if _, err := InitStore(context.Background(), cfg, slog.Default()); err == nil {
		t.Fatal("unknown driver accepted")
	}
	cfg.StoreDriver = "memory"
	s, err := InitStore(context.Background(), cfg, slog.Default())
	if err != nil || s == nil {
		t.Fatalf("memory driver: %v", err)
	}
	s.Close(context.Background())
}

type failingCloseStore struct {
	store.Store
	closed bool
}

func (s *failingCloseStore) Close(context.Context) error {
	s.closed = true
	return errors.New("close failed")
}

func TestCloseQuietlyReleasesStore(t *testing.T) {
	s := store.NewMemoryStore()
	closeQuietly(s, slog.New(slog.NewTextHandler(io.Discard, nil)))
	err := s.Transact(context.Background(), []store.Op{store.Create(&models.Comment{
		ID: "c1", ImageID: "img1", UserID: "u1", DisplayName: "Swift Fox 7", Text: "hi",
	})})
	if !errors.Is(err, store.ErrClosed) {
		t.Fatalf("Transact after closeQuietly = %v, want ErrClosed", err)
	}

	var buf bytes.Buffer
	failing := &failingCloseStore{}
	closeQuietly(failing, slog.New(slog.NewTextHandler(&buf, nil)))
	if !failing.closed {
		t.Fatal("Close not called")
	}
	if !strings.Contains(buf.String(), "close failed") {
		t.Fatalf("close error not logged: %q", buf.String())
	}
}
