package adapter

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/mmcdole/cinelist/internal/validation"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	TMDB    TMDBConfig    `mapstructure:"tmdb"`
	Storage StorageConfig `mapstructure:"storage"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Resolve ResolveConfig `mapstructure:"resolve"`
	Browser BrowserConfig `mapstructure:"browser"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// TMDBConfig holds movie catalog configuration
type TMDBConfig struct {
	APIKey            string        `mapstructure:"api_key"`
	BaseURL           string        `mapstructure:"base_url" validate:"required,url"`
	Language          string        `mapstructure:"language" validate:"required"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second" validate:"gt=0"`
	Burst             int           `mapstructure:"burst" validate:"gte=1"`
	Timeout           time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

// StorageConfig holds the location of the collection database
type StorageConfig struct {
	Dir string `mapstructure:"dir" validate:"required"`
}

// CacheConfig holds detail cache settings
type CacheConfig struct {
	DetailTTL time.Duration `mapstructure:"detail_ttl" validate:"gte=0"` // 0 disables the cache
}

// ResolveConfig tunes detail resolution passes
type ResolveConfig struct {
	PassTimeout    time.Duration `mapstructure:"pass_timeout" validate:"gte=0"`
	MaxConcurrency int           `mapstructure:"max_concurrency" validate:"gte=0"` // 0 = unbounded
}

// BrowserConfig selects the program used to open movie pages
type BrowserConfig struct {
	Command string   `mapstructure:"command"` // empty for the system opener
	Args    []string `mapstructure:"args"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level" validate:"omitempty,oneof=DEBUG INFO WARN WARNING ERROR"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		TMDB: TMDBConfig{
			BaseURL:           "https://api.themoviedb.org/3",
			Language:          "en-US",
			RequestsPerSecond: 20,
			Burst:             10,
			Timeout:           30 * time.Second,
		},
		Storage: StorageConfig{
			Dir: defaultDataPath(),
		},
		Cache: CacheConfig{
			DetailTTL: 24 * time.Hour,
		},
		Resolve: ResolveConfig{
			PassTimeout: 60 * time.Second,
		},
		Browser: BrowserConfig{
			Args: []string{},
		},
		Logging: LoggingConfig{
			File:  filepath.Join(defaultDataPath(), "cinelist.log"),
			Level: "INFO",
		},
	}
}

// defaultDataPath returns the default data directory for the current OS
func defaultDataPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "cinelist")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "cinelist")
	}
}

// defaultConfigPath returns the default config directory for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "cinelist")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "cinelist")
	}
}

// setAll writes every field under its snake_case key
func setAll(v interface{ Set(string, any) }, cfg *Config) {
	v.Set("tmdb.api_key", cfg.TMDB.APIKey)
	v.Set("tmdb.base_url", cfg.TMDB.BaseURL)
	v.Set("tmdb.language", cfg.TMDB.Language)
	v.Set("tmdb.requests_per_second", cfg.TMDB.RequestsPerSecond)
	v.Set("tmdb.burst", cfg.TMDB.Burst)
	v.Set("tmdb.timeout", cfg.TMDB.Timeout.String())

	v.Set("storage.dir", cfg.Storage.Dir)

	v.Set("cache.detail_ttl", cfg.Cache.DetailTTL.String())

	v.Set("resolve.pass_timeout", cfg.Resolve.PassTimeout.String())
	v.Set("resolve.max_concurrency", cfg.Resolve.MaxConcurrency)

	v.Set("browser.command", cfg.Browser.Command)
	v.Set("browser.args", cfg.Browser.Args)

	v.Set("logging.file", cfg.Logging.File)
	v.Set("logging.level", cfg.Logging.Level)
}

// defaultSetter registers values as defaults so that environment
// overrides apply to keys absent from the file
type defaultSetter struct{ v *viper.Viper }

func (d defaultSetter) Set(key string, value any) { d.v.SetDefault(key, value) }

// LoadConfig loads configuration from file and environment
func LoadConfig() (*Config, error) {
	return LoadConfigFrom(defaultConfigPath(), ".")
}

// LoadConfigFrom loads configuration searching the given directories in order
func LoadConfigFrom(dirs ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, dir := range dirs {
		v.AddConfigPath(dir)
	}

	// Environment variable overrides (CINELIST_TMDB_API_KEY, ...)
	v.SetEnvPrefix("CINELIST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setAll(defaultSetter{v}, DefaultConfig())

	// Read config file if it exists
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}
	cfg.normalize()

	return cfg, nil
}

// normalize expands ~ in paths and upper-cases the log level
func (c *Config) normalize() {
	c.Storage.Dir = expandHome(c.Storage.Dir)
	c.Logging.File = expandHome(c.Logging.File)
	c.Logging.Level = strings.ToUpper(strings.TrimSpace(c.Logging.Level))
	c.TMDB.APIKey = strings.TrimSpace(c.TMDB.APIKey)
}

// Validate checks every constraint and reports all violations at once
func (c *Config) Validate() error {
	if err := validation.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// SaveConfig saves the configuration to the default config file
func SaveConfig(cfg *Config) error {
	return SaveConfigTo(defaultConfigPath(), cfg)
}

// SaveConfigTo writes the configuration as config.yaml under dir
func SaveConfigTo(dir string, cfg *Config) error {
	// Ensure config directory exists
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	v := viper.New()
	setAll(v, cfg)

	configFile := filepath.Join(dir, "config.yaml")
	if err := v.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// IsConfigured returns true if an API key is set
func (c *Config) IsConfigured() bool {
	return c.TMDB.APIKey != ""
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
