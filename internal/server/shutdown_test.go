package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"sales-dashboard/internal/config"
)

func TestShutdownRunsNamedHooks(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	gs := NewGracefulServer(&http.Server{}, slog.Default(), cfg)

	var watcherStopped, historyClosed atomic.Bool
	gs.RegisterShutdownHook("dataset watcher", func(ctx context.Context) error {
		watcherStopped.Store(true)
		return nil
	})
	gs.RegisterShutdownHook("ask history", func(ctx context.Context) error {
		historyClosed.Store(true)
		return errors.New("database is locked")
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	err = gs.shutdown(ctx)

	if !watcherStopped.Load() {
		t.Error("watcher hook did not run")
	}
	if !historyClosed.Load() {
		t.Error("history hook did not run")
	}
	if err == nil || !strings.Contains(err.Error(), "ask history") {
		t.Errorf("expected the failing hook's name in the error, got %v", err)
	}
}

func TestShutdownNoHooks(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	gs := NewGracefulServer(&http.Server{}, slog.Default(), cfg)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := gs.shutdown(ctx); err != nil {
		t.Errorf("shutdown() error: %v", err)
	}
}
