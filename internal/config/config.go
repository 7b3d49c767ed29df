package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	// Output format template for track listings
	// Default: "{{.Artists}} - {{.Name}}"
	OutputFormat string

	// Maximum display width of a formatted track (0 = unlimited)
	OutputWidth int

	// Log level (debug, info, warn, error)
	LogLevel string

	// Path to the curated library YAML file
	LibraryFile string

	Spotify   SpotifyConfig
	Store     StoreConfig
	Favorites FavoritesConfig
	Player    PlayerConfig
	Discord   DiscordConfig
}

// SpotifyConfig holds Spotify Web API credentials
type SpotifyConfig struct {
	ClientID     string
	ClientSecret string
	Market       string
}

// StoreConfig selects where favorites are persisted
type StoreConfig struct {
	Backend string        // file, sqlite, postgres, redis, s3 or memory
	Path    string        // Directory (file) or database file (sqlite)
	DSN     string        // Postgres connection string
	Timeout time.Duration // Bound on each storage call
	Redis   RedisConfig
	S3      S3Config
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// S3Config holds S3 bucket settings
type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	Prefix    string
}

// FavoritesConfig holds favorites settings
type FavoritesConfig struct {
	Key      string   // Storage key
	Defaults []string // Track ids added by "favorites seed"
}

// PlayerConfig holds playback settings
type PlayerConfig struct {
	StartDelay time.Duration
}

// DiscordConfig holds Rich Presence settings
type DiscordConfig struct {
	AppID string // Discord application id; empty disables presence
}

// Load reads configuration from file and environment.
// If path is empty the default locations are searched.
func Load(path string) (*Config, error) {
	// A .env file in the working directory is optional
	_ = godotenv.Load()

	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		// Config file locations (in order of precedence)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(getConfigDir())
		v.AddConfigPath(".")
	}

	setDefaults(v)

	// Read config file (optional - don't fail if missing)
	if err := v.ReadInConfig(); err != nil && path != "" {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return nil, err
		}
	}

	// Read from environment variables: store.redis.addr -> ENCORE_STORE_REDIS_ADDR
	v.SetEnvPrefix("ENCORE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("spotify.client_id", "ENCORE_SPOTIFY_CLIENT_ID", "SPOTIFY_CLIENT_ID")
	_ = v.BindEnv("spotify.client_secret", "ENCORE_SPOTIFY_CLIENT_SECRET", "SPOTIFY_CLIENT_SECRET")

	// Map config to struct
	cfg := &Config{
		OutputFormat: v.GetString("output_format"),
		OutputWidth:  v.GetInt("output_width"),
		LogLevel:     v.GetString("log_level"),
		LibraryFile:  expandHome(v.GetString("library_file")),
		Spotify: SpotifyConfig{
			ClientID:     v.GetString("spotify.client_id"),
			ClientSecret: v.GetString("spotify.client_secret"),
			Market:       v.GetString("spotify.market"),
		},
		Store: StoreConfig{
			Backend: v.GetString("store.backend"),
			Path:    expandHome(v.GetString("store.path")),
			DSN:     v.GetString("store.dsn"),
			Timeout: v.GetDuration("store.timeout"),
			Redis: RedisConfig{
				Addr:     v.GetString("store.redis.addr"),
				Password: v.GetString("store.redis.password"),
				DB:       v.GetInt("store.redis.db"),
				Prefix:   v.GetString("store.redis.prefix"),
			},
			S3: S3Config{
				Bucket:    v.GetString("store.s3.bucket"),
				Region:    v.GetString("store.s3.region"),
				Endpoint:  v.GetString("store.s3.endpoint"),
				AccessKey: v.GetString("store.s3.access_key"),
				SecretKey: v.GetString("store.s3.secret_key"),
				Prefix:    v.GetString("store.s3.prefix"),
			},
		},
		Favorites: FavoritesConfig{
			Key:      v.GetString("favorites.key"),
			Defaults: v.GetStringSlice("favorites.defaults"),
		},
		Player: PlayerConfig{
			StartDelay: v.GetDuration("player.start_delay"),
		},
		Discord: DiscordConfig{
			AppID: v.GetString("discord.app_id"),
		},
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("output_format", "{{.Artists}} - {{.Name}}")
	v.SetDefault("output_width", 0)
	v.SetDefault("log_level", "info")
	v.SetDefault("library_file", filepath.Join(getConfigDir(), "library.yaml"))

	v.SetDefault("spotify.client_id", "")
	v.SetDefault("spotify.client_secret", "")
	v.SetDefault("spotify.market", "")

	v.SetDefault("store.backend", "file")
	v.SetDefault("store.path", getDataDir())
	v.SetDefault("store.dsn", "")
	v.SetDefault("store.timeout", "5s")
	v.SetDefault("store.redis.addr", "localhost:6379")
	v.SetDefault("store.redis.password", "")
	v.SetDefault("store.redis.db", 0)
	v.SetDefault("store.redis.prefix", "encore:")
	v.SetDefault("store.s3.bucket", "")
	v.SetDefault("store.s3.region", "us-east-1")
	v.SetDefault("store.s3.endpoint", "")
	v.SetDefault("store.s3.access_key", "")
	v.SetDefault("store.s3.secret_key", "")
	v.SetDefault("store.s3.prefix", "encore/")

	v.SetDefault("favorites.key", "spotify-favorites")
	v.SetDefault("favorites.defaults", []string{})

	v.SetDefault("player.start_delay", "100ms")

	v.SetDefault("discord.app_id", "")
}

// getConfigDir returns the configuration directory path
// Creates the directory if it doesn't exist
func getConfigDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	configDir := filepath.Join(homeDir, ".config", "encore")

	// Create config directory if it doesn't exist
	_ = os.MkdirAll(configDir, 0755)

	return configDir
}

// GetConfigDir returns the configuration directory path (public helper)
func GetConfigDir() string {
	return getConfigDir()
}

// getDataDir returns the default directory for persisted data
func getDataDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(homeDir, ".local", "share", "encore")
}

// expandHome replaces a leading ~ with the user's home directory
func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(homeDir, strings.TrimPrefix(path, "~"))
}

// Save writes configuration to path, or to config.yaml in the default
// config directory if path is empty
func (c *Config) Save(path string) error {
	v := viper.New()

	if path == "" {
		path = filepath.Join(getConfigDir(), "config.yaml")
	}

	// Set values in viper
	v.Set("output_format", c.OutputFormat)
	v.Set("output_width", c.OutputWidth)
	v.Set("log_level", c.LogLevel)
	v.Set("library_file", c.LibraryFile)
	v.Set("spotify.client_id", c.Spotify.ClientID)
	v.Set("spotify.client_secret", c.Spotify.ClientSecret)
	v.Set("spotify.market", c.Spotify.Market)
	v.Set("store.backend", c.Store.Backend)
	v.Set("store.path", c.Store.Path)
	v.Set("favorites.key", c.Favorites.Key)
	v.Set("favorites.defaults", c.Favorites.Defaults)
	v.Set("player.start_delay", c.Player.StartDelay.String())
	v.Set("discord.app_id", c.Discord.AppID)

	// Write to file
	return v.WriteConfigAs(path)
}
