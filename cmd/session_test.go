package cmd

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/jfmyers9/encore/internal/config"
	"github.com/jfmyers9/encore/internal/store"
)

func TestOpenStore_FallsBackToMemory(t *testing.T) {
	tests := []struct {
		name  string
		store config.StoreConfig
	}{
		{
			name:  "file dir not creatable",
			store: config.StoreConfig{Backend: store.BackendFile, Path: "/dev/null/encore"},
		},
		{
			name:  "postgres without dsn",
			store: config.StoreConfig{Backend: store.BackendPostgres},
		},
		{
			name:  "unknown backend",
			store: config.StoreConfig{Backend: "floppy"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := zerolog.New(&buf)
			cfg := &config.Config{Store: tt.store}
			cfg.Store.Timeout = time.Second

			s := openStore(context.Background(), cfg, logger)
			defer func() { _ = s.Close() }()

			if got := store.Read(s, "favorites", []string{}); len(got) != 0 {
				t.Errorf("expected an empty collection, got %v", got)
			}

			store.Write(s, "favorites", []string{"a"})
			if got := store.Read(s, "favorites", []string{}); len(got) != 1 || got[0] != "a" {
				t.Errorf("expected the in-memory session to keep writes, got %v", got)
			}

			if !strings.Contains(buf.String(), "falling back to memory") {
				t.Errorf("expected a fallback warning, got %q", buf.String())
			}
		})
	}
}

func TestOpenStore_UsesConfiguredBackend(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{Store: config.StoreConfig{Backend: store.BackendFile, Path: dir}}

	s := openStore(context.Background(), cfg, zerolog.Nop())
	store.Write(s, "favorites", []string{"a"})
	_ = s.Close()

	reopened := openStore(context.Background(), cfg, zerolog.Nop())
	defer func() { _ = reopened.Close() }()
	if got := store.Read(reopened, "favorites", []string{}); len(got) != 1 || got[0] != "a" {
		t.Errorf("expected favorites to persist in %s, got %v", dir, got)
	}
}
