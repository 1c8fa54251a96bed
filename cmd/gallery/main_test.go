package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"testing"

	"github.com/anonto42/nano-gallery/internal/identity"
	"github.com/anonto42/nano-gallery/internal/interactions"
	"github.com/anonto42/nano-gallery/internal/photos"
	"github.com/anonto42/nano-gallery/internal/store"
)

func newTestApp(t *testing.T, st store.Store, storage identity.Storage) (*app, *bytes.Buffer) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	out := &bytes.Buffer{}
	provider := identity.NewProvider(storage, identity.WithLogger(logger))
	return newApp(st, provider, photos.NewGallery(nil, photos.GalleryOptions{}, logger), 20, logger, out), out
}

func TestReactAndFeed(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	a, out := newTestApp(t, st, &identity.MemoryStorage{})

	if err := a.dispatch(ctx, []string{"react", "img1", "🔥"}); err != nil {
		t.Fatalf("react: %v", err)
	}
	if !strings.Contains(out.String(), "reacted 🔥 on img1") || !strings.Contains(out.String(), "🔥 1") {
		t.Fatalf("react output = %q", out)
	}

	out.Reset()
	if err := a.dispatch(ctx, []string{"react", "img1", "🔥"}); err != nil {
		t.Fatalf("react again: %v", err)
	}
	if !strings.Contains(out.String(), "removed 🔥 from img1") {
		t.Fatalf("toggle output = %q", out)
	}

	out.Reset()
	if err := a.dispatch(ctx, []string{"feed"}); err != nil {
		t.Fatalf("feed: %v", err)
	}
	if !strings.Contains(out.String(), "took back 🔥") || !strings.Contains(out.String(), "reacted with 🔥") {
		t.Fatalf("feed output = %q", out)
	}
}

func TestCommentLifecycle(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	storage := &identity.MemoryStorage{}
	a, out := newTestApp(t, st, storage)

	if err := a.dispatch(ctx, []string{"comment", "img1", "what", "a", "view"}); err != nil {
		t.Fatalf("comment: %v", err)
	}
	if !strings.Contains(out.String(), "what a view") {
		t.Fatalf("comment output = %q", out)
	}
	id := regexp.MustCompile(`\[([0-9a-f-]{36})\]`).FindStringSubmatch(out.String())
	if id == nil {
		t.Fatalf("no comment id in %q", out)
	}

	// A different installation cannot delete it.
	other, _ := newTestApp(t, st, &identity.MemoryStorage{})
	if err := other.dispatch(ctx, []string{"uncomment", id[1]}); !errors.Is(err, interactions.ErrNotAuthor) {
		t.Fatalf("foreign uncomment = %v, want ErrNotAuthor", err)
	}

	out.Reset()
	if err := a.dispatch(ctx, []string{"uncomment", id[1]}); err != nil {
		t.Fatalf("uncomment: %v", err)
	}
	out.Reset()
	if err := a.dispatch(ctx, []string{"comments", "img1"}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "No comments yet.") {
		t.Fatalf("comments output = %q", out)
	}
}

func TestIdentityCommand(t *testing.T) {
	ctx := context.Background()
	a, out := newTestApp(t, store.NewMemoryStore(), &identity.MemoryStorage{})
	if err := a.dispatch(ctx, []string{"identity"}); err != nil {
		t.Fatal(err)
	}
	first := out.String()
	out.Reset()
	if err := a.dispatch(ctx, []string{"identity", "--reset"}); err != nil {
		t.Fatal(err)
	}
	if out.String() == first {
		t.Fatal("identity --reset printed the same identity")
	}
}

func TestPhotosCommand(t *testing.T) {
	a, out := newTestApp(t, store.NewMemoryStore(), &identity.MemoryStorage{})
	if err := a.dispatch(context.Background(), []string{"photos", "--page", "3"}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "placeholder-3-0") {
		t.Fatalf("photos output = %q", out)
	}
}

func TestUsageErrors(t *testing.T) {
	a, _ := newTestApp(t, store.NewMemoryStore(), &identity.MemoryStorage{})
	for _, args := range [][]string{
		{"frobnicate"},
		{"react", "img1"},
		{"comment", "img1"},
		{"feed", "--bogus"},
		{"photos", "--page", "0"},
	} {
		if err := a.dispatch(context.Background(), args); !errors.Is(err, errUsage) {
			t.Errorf("%v: error = %v, want usage error", args, err)
		}
	}
}

func TestFollowFeedStopsOnCancel(t *testing.T) {
	st := store.NewMemoryStore()
	a, _ := newTestApp(t, st, &identity.MemoryStorage{})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- a.dispatch(ctx, []string{"feed", "--follow"}) }()
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("feed --follow = %v, want nil after cancel", err)
	}
}

func TestRunRejectsMemoryStore(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("IDENTITY_PATH", t.TempDir()+"/identity.json")

	err := run(context.Background(), []string{"feed"})
	if !errors.Is(err, errMemoryStore) {
		t.Fatalf("run with the memory store = %v, want errMemoryStore", err)
	}
}
