package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jfmyers9/encore/internal/audio"
	"github.com/jfmyers9/encore/internal/catalog"
	"github.com/jfmyers9/encore/internal/config"
	"github.com/jfmyers9/encore/internal/deck"
	"github.com/jfmyers9/encore/internal/favorites"
	"github.com/jfmyers9/encore/internal/player"
	"github.com/jfmyers9/encore/internal/store"
	"github.com/jfmyers9/encore/pkg/spotify"
)

// errNoCredentials is returned by commands that need the Spotify API
var errNoCredentials = errors.New(`spotify credentials not configured

Set spotify.client_id and spotify.client_secret in ~/.config/encore/config.yaml,
or export SPOTIFY_CLIENT_ID and SPOTIFY_CLIENT_SECRET`)

// session holds the components shared by commands
type session struct {
	cfg     *config.Config
	logger  zerolog.Logger
	store   *store.Store
	catalog *catalog.Catalog // nil without credentials
	audio   *audio.Beep
	deck    *deck.Deck

	closeLog func()
}

// sessionOptions tunes how a session is opened
type sessionOptions struct {
	// requireCatalog fails the session when no credentials are configured
	requireCatalog bool
	// defaultLogFile is used when --log-file is not set
	defaultLogFile string
}

// openSession loads configuration and wires storage, catalog and player
func openSession(ctx context.Context, opts sessionOptions) (*session, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	level := cfg.LogLevel
	if logLevel != "" {
		level = logLevel
	}
	file := logFile
	if file == "" {
		file = opts.defaultLogFile
	}
	logger, closeLog := setupLogger(file, level)

	s := &session{cfg: cfg, logger: logger, closeLog: closeLog}

	s.store = openStore(ctx, cfg, logger)

	client, err := spotify.NewClient(spotify.Config{
		ClientID:     cfg.Spotify.ClientID,
		ClientSecret: cfg.Spotify.ClientSecret,
		Market:       cfg.Spotify.Market,
		Logger:       catalog.NewLogger(logger),
	})
	switch {
	case err == nil:
		s.catalog = catalog.New(client, logger)
	case errors.Is(err, spotify.ErrMissingCredentials) && !opts.requireCatalog:
		logger.Debug().Msg("No Spotify credentials, catalog disabled")
	case errors.Is(err, spotify.ErrMissingCredentials):
		s.Close()
		return nil, errNoCredentials
	default:
		s.Close()
		return nil, fmt.Errorf("failed to create Spotify client: %w", err)
	}

	s.audio = audio.NewBeep(logger)
	controller := player.New(s.audio, logger, player.Options{StartDelay: cfg.Player.StartDelay})
	favs := favorites.New(s.store, cfg.Favorites.Key)

	// A nil *catalog.Catalog must not become a non-nil interface
	var cat deck.Catalog
	if s.catalog != nil {
		cat = s.catalog
	}
	s.deck = deck.New(controller, favs, cat, logger)

	return s, nil
}

// openStore opens the configured backend. An unavailable backend leaves
// the session on an empty in-memory store rather than failing the command.
func openStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) *store.Store {
	backend, err := store.OpenBackend(ctx, store.Config{
		Backend: cfg.Store.Backend,
		Path:    cfg.Store.Path,
		DSN:     cfg.Store.DSN,
		Timeout: cfg.Store.Timeout,
		Redis: store.RedisConfig{
			Addr:     cfg.Store.Redis.Addr,
			Password: cfg.Store.Redis.Password,
			DB:       cfg.Store.Redis.DB,
			Prefix:   cfg.Store.Redis.Prefix,
		},
		S3: store.S3Config{
			Bucket:    cfg.Store.S3.Bucket,
			Region:    cfg.Store.S3.Region,
			Endpoint:  cfg.Store.S3.Endpoint,
			AccessKey: cfg.Store.S3.AccessKey,
			SecretKey: cfg.Store.S3.SecretKey,
			Prefix:    cfg.Store.S3.Prefix,
		},
	})
	if err != nil {
		logger.Warn().Err(err).Str("backend", cfg.Store.Backend).Msg("Store unavailable, falling back to memory")
		return store.New(store.NewMemoryBackend(), logger, cfg.Store.Timeout)
	}

	logger.Debug().Str("backend", cfg.Store.Backend).Msg("Store opened")
	return store.New(backend, logger, cfg.Store.Timeout)
}

// Close stops playback and releases storage and audio
func (s *session) Close() {
	if s.deck != nil {
		s.deck.Close()
	}
	if s.audio != nil {
		if err := s.audio.Close(); err != nil {
			s.logger.Debug().Err(err).Msg("Error closing audio")
		}
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Error().Err(err).Msg("Error closing store")
		}
	}
	s.closeLog()
}
