// Package config resolves jot settings from defaults, an optional jot.toml,
// the environment (after an optional .env) and command-line flags, in that
// order of increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

const (
	DefaultConfigFile = "jot.toml"
	DefaultDotEnvFile = ".env"

	defaultAdapter    = "sqlite"
	defaultName       = "NotesAppDB"
	defaultListen     = "127.0.0.1:8080"
	defaultLoginTTL   = 24 * time.Hour
	defaultDraftDelay = 300 * time.Millisecond
	defaultDraftTTL   = 24 * time.Hour
	defaultLogLevel   = "info"
	defaultLogMaxSize = 10
	defaultLogFiles   = 3
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Storage StorageConfig `toml:"storage"`
	Web     WebConfig     `toml:"web"`
	Logging LoggingConfig `toml:"logging"`
}

// StorageConfig selects the repository. An empty Dir lets the CLI search
// upwards for an existing data directory.
type StorageConfig struct {
	Adapter string `toml:"adapter"`
	Dir     string `toml:"dir"`
	Name    string `toml:"name"`
}

type WebConfig struct {
	Listen     string        `toml:"listen"`
	LoginTTL   time.Duration `toml:"login_ttl"`
	DraftDelay time.Duration `toml:"draft_delay"`
	DraftTTL   time.Duration `toml:"draft_ttl"`
}

type LoggingConfig struct {
	Level     string `toml:"level"`
	File      string `toml:"file"`
	MaxSizeMB int    `toml:"max_size_mb"`
	MaxFiles  int    `toml:"max_files"`
}

type LoadOptions struct {
	ConfigPath string
	DotEnvPath string
	Env        map[string]string
	Flags      FlagOverrides
}

// FlagOverrides carries flags the user actually set; nil means unset.
type FlagOverrides struct {
	Adapter  *string
	Dir      *string
	Name     *string
	Listen   *string
	LogLevel *string
}

func DefaultConfig() Config {
	return Config{
		Storage: StorageConfig{
			Adapter: defaultAdapter,
			Name:    defaultName,
		},
		Web: WebConfig{
			Listen:     defaultListen,
			LoginTTL:   defaultLoginTTL,
			DraftDelay: defaultDraftDelay,
			DraftTTL:   defaultDraftTTL,
		},
		Logging: LoggingConfig{
			Level:     defaultLogLevel,
			MaxSizeMB: defaultLogMaxSize,
			MaxFiles:  defaultLogFiles,
		},
	}
}

func Load(opts LoadOptions) (Config, error) {
	cfg := DefaultConfig()

	dotenv, err := readDotEnv(opts)
	if err != nil {
		return Config{}, err
	}
	env := envLookup{opts: opts, dotenv: dotenv}

	configPath := opts.ConfigPath
	if configPath == "" {
		if value, ok := env.lookup("JOT_CONFIG"); ok {
			configPath = value
		} else {
			configPath = DefaultConfigFile
		}
	}
	if err := loadAndApplyFile(configPath, &cfg); err != nil {
		return Config{}, err
	}

	if err := applyEnvOverrides(&cfg, env); err != nil {
		return Config{}, err
	}
	applyFlagOverrides(&cfg, opts.Flags)

	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func readDotEnv(opts LoadOptions) (map[string]string, error) {
	path := opts.DotEnvPath
	if path == "" {
		path = DefaultDotEnvFile
	}
	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: read %s: %v", ErrInvalidConfig, path, err)
	}
	return values, nil
}

type rawConfig struct {
	Storage *rawStorage `toml:"storage"`
	Web     *rawWeb     `toml:"web"`
	Logging *rawLogging `toml:"logging"`
}

type rawStorage struct {
	Adapter *string `toml:"adapter"`
	Dir     *string `toml:"dir"`
	Name    *string `toml:"name"`
}

type rawWeb struct {
	Listen     *string `toml:"listen"`
	LoginTTL   *string `toml:"login_ttl"`
	DraftDelay *string `toml:"draft_delay"`
	DraftTTL   *string `toml:"draft_ttl"`
}

type rawLogging struct {
	Level     *string `toml:"level"`
	File      *string `toml:"file"`
	MaxSizeMB *int    `toml:"max_size_mb"`
	MaxFiles  *int    `toml:"max_files"`
}

func loadAndApplyFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config file %q: %w", path, err)
	}

	var raw rawConfig
	if err := toml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: parse TOML file %q: %v", ErrInvalidConfig, path, err)
	}

	if raw.Storage != nil {
		setString(raw.Storage.Adapter, &cfg.Storage.Adapter)
		setString(raw.Storage.Dir, &cfg.Storage.Dir)
		setString(raw.Storage.Name, &cfg.Storage.Name)
	}

	if raw.Web != nil {
		setString(raw.Web.Listen, &cfg.Web.Listen)
		for field, pair := range map[string]struct {
			raw    *string
			target *time.Duration
		}{
			"web.login_ttl":   {raw.Web.LoginTTL, &cfg.Web.LoginTTL},
			"web.draft_delay": {raw.Web.DraftDelay, &cfg.Web.DraftDelay},
			"web.draft_ttl":   {raw.Web.DraftTTL, &cfg.Web.DraftTTL},
		} {
			if err := setDuration(field, pair.raw, pair.target); err != nil {
				return err
			}
		}
	}

	if raw.Logging != nil {
		setString(raw.Logging.Level, &cfg.Logging.Level)
		setString(raw.Logging.File, &cfg.Logging.File)
		setInt(raw.Logging.MaxSizeMB, &cfg.Logging.MaxSizeMB)
		setInt(raw.Logging.MaxFiles, &cfg.Logging.MaxFiles)
	}

	return nil
}

func applyEnvOverrides(cfg *Config, env envLookup) error {
	if value, ok := env.lookup("JOT_STORAGE_ADAPTER"); ok {
		cfg.Storage.Adapter = value
	}
	if value, ok := env.lookup("JOT_STORAGE_DIR"); ok {
		cfg.Storage.Dir = value
	}
	if value, ok := env.lookup("JOT_STORAGE_NAME"); ok {
		cfg.Storage.Name = value
	}

	if value, ok := env.lookup("JOT_WEB_LISTEN"); ok {
		cfg.Web.Listen = value
	}
	for key, target := range map[string]*time.Duration{
		"JOT_WEB_LOGIN_TTL":   &cfg.Web.LoginTTL,
		"JOT_WEB_DRAFT_DELAY": &cfg.Web.DraftDelay,
		"JOT_WEB_DRAFT_TTL":   &cfg.Web.DraftTTL,
	} {
		if value, ok := env.lookup(key); ok {
			d, err := time.ParseDuration(value)
			if err != nil {
				return fmt.Errorf("%w: parse %s: %v", ErrInvalidConfig, key, err)
			}
			*target = d
		}
	}

	if value, ok := env.lookup("JOT_LOG_LEVEL"); ok {
		cfg.Logging.Level = value
	}
	if value, ok := env.lookup("JOT_LOG_FILE"); ok {
		cfg.Logging.File = value
	}
	for key, target := range map[string]*int{
		"JOT_LOG_MAX_SIZE_MB": &cfg.Logging.MaxSizeMB,
		"JOT_LOG_MAX_FILES":   &cfg.Logging.MaxFiles,
	} {
		if value, ok := env.lookup(key); ok {
			parsed, err := strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("%w: parse %s: %v", ErrInvalidConfig, key, err)
			}
			*target = parsed
		}
	}

	return nil
}

func applyFlagOverrides(cfg *Config, flags FlagOverrides) {
	setString(flags.Adapter, &cfg.Storage.Adapter)
	setString(flags.Dir, &cfg.Storage.Dir)
	setString(flags.Name, &cfg.Storage.Name)
	setString(flags.Listen, &cfg.Web.Listen)
	setString(flags.LogLevel, &cfg.Logging.Level)
}

func validate(cfg Config) error {
	switch cfg.Storage.Adapter {
	case "sqlite", "fs":
	default:
		return fmt.Errorf("%w: storage.adapter must be \"sqlite\" or \"fs\", got %q", ErrInvalidConfig, cfg.Storage.Adapter)
	}
	if cfg.Storage.Name == "" {
		return fmt.Errorf("%w: storage.name must not be empty", ErrInvalidConfig)
	}
	if cfg.Web.LoginTTL <= 0 {
		return fmt.Errorf("%w: web.login_ttl must be > 0", ErrInvalidConfig)
	}
	if cfg.Web.DraftDelay < 0 || cfg.Web.DraftDelay > time.Minute {
		return fmt.Errorf("%w: web.draft_delay must be >= 0 and <= 1m", ErrInvalidConfig)
	}
	if cfg.Web.DraftTTL <= 0 {
		return fmt.Errorf("%w: web.draft_ttl must be > 0", ErrInvalidConfig)
	}
	switch cfg.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("%w: logging.level %q", ErrInvalidConfig, cfg.Logging.Level)
	}
	if cfg.Logging.MaxSizeMB < 0 || cfg.Logging.MaxFiles < 0 {
		return fmt.Errorf("%w: logging rotation limits must not be negative", ErrInvalidConfig)
	}
	return nil
}

func setDuration(field string, raw *string, target *time.Duration) error {
	if raw == nil {
		return nil
	}
	d, err := time.ParseDuration(*raw)
	if err != nil {
		return fmt.Errorf("%w: parse %s: %v", ErrInvalidConfig, field, err)
	}
	*target = d
	return nil
}

func setString(raw *string, target *string) {
	if raw != nil {
		*target = *raw
	}
}

func setInt(raw *int, target *int) {
	if raw != nil {
		*target = *raw
	}
}

// envLookup resolves a variable from explicit overrides, then the process
// environment, then the .env file. A real variable always beats .env.
type envLookup struct {
	opts   LoadOptions
	dotenv map[string]string
}

func (e envLookup) lookup(key string) (string, bool) {
	if e.opts.Env != nil {
		if value, ok := e.opts.Env[key]; ok {
			return value, true
		}
	}
	if value, ok := os.LookupEnv(key); ok {
		return value, true
	}
	value, ok := e.dotenv[key]
	return value, ok
}
