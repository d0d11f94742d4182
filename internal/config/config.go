// Package config loads kanjidict settings from a TOML file, the environment
// and command-line flags, in that order of precedence.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	defaultDirName      = ".kanjidict"
	defaultFileName     = "kanji-dictionary.db"
	defaultLogLevel     = "info"
	defaultLogFormat    = "text"
	defaultLogMaxSizeMB = 10
	defaultLogMaxFiles  = 5
)

// ErrInvalidConfig is wrapped by every error caused by a bad setting.
var ErrInvalidConfig = errors.New("invalid config")

// LogLevels and LogFormats are the accepted logging settings.
var (
	LogLevels  = []string{"debug", "info", "warn", "error"}
	LogFormats = []string{"text", "json"}
)

type Config struct {
	Database DatabaseConfig `toml:"database"`
	Export   ExportConfig   `toml:"export"`
	Logging  LoggingConfig  `toml:"logging"`
}

type DatabaseConfig struct {
	DataDir  string `toml:"data_dir"`
	FileName string `toml:"file_name"`
}

type ExportConfig struct {
	Dir string `toml:"dir"`
}

type LoggingConfig struct {
	Level     string `toml:"level"`
	Format    string `toml:"format"`
	File      string `toml:"file"`
	MaxSizeMB int    `toml:"max_size_mb"`
	MaxFiles  int    `toml:"max_files"`
}

// LoadOptions controls where Load looks. Env replaces the process
// environment for the keys it holds, which keeps tests hermetic.
type LoadOptions struct {
	ConfigPath string
	Env        map[string]string
	Flags      FlagOverrides
}

// FlagOverrides are the settings the CLI can override directly.
type FlagOverrides struct {
	DataDir  *string
	LogLevel *string
}

// DatabasePath is the full path of the dictionary file.
func (c Config) DatabasePath() string {
	return filepath.Join(c.Database.DataDir, c.Database.FileName)
}

// DefaultConfig returns the built-in settings rooted at home.
func DefaultConfig(home string) Config {
	return Config{
		Database: DatabaseConfig{
			DataDir:  home,
			FileName: defaultFileName,
		},
		Export: ExportConfig{
			Dir: filepath.Join(home, "exports"),
		},
		Logging: LoggingConfig{
			Level:     defaultLogLevel,
			Format:    defaultLogFormat,
			MaxSizeMB: defaultLogMaxSizeMB,
			MaxFiles:  defaultLogMaxFiles,
		},
	}
}

// Load builds the effective configuration: defaults, then the config file
// if it exists, then KANJIDICT_* environment variables, then flags.
func Load(opts LoadOptions) (Config, error) {
	home, err := kanjidictHome(opts)
	if err != nil {
		return Config{}, err
	}
	cfg := DefaultConfig(home)

	path := opts.ConfigPath
	if path == "" {
		if value, ok := lookupEnv(opts, "KANJIDICT_CONFIG"); ok {
			path = value
		} else {
			path = filepath.Join(home, "config.toml")
		}
	}
	if err := loadAndApplyFile(path, &cfg, opts.ConfigPath != ""); err != nil {
		return Config{}, err
	}

	if err := applyEnvOverrides(&cfg, opts); err != nil {
		return Config{}, err
	}
	applyFlagOverrides(&cfg, opts.Flags)

	cfg.Database.DataDir = expandHome(cfg.Database.DataDir)
	cfg.Export.Dir = expandHome(cfg.Export.Dir)
	cfg.Logging.File = expandHome(cfg.Logging.File)
	cfg.Logging.Level = strings.ToLower(strings.TrimSpace(cfg.Logging.Level))
	cfg.Logging.Format = strings.ToLower(strings.TrimSpace(cfg.Logging.Format))

	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

type rawConfig struct {
	Database *rawDatabase `toml:"database"`
	Export   *rawExport   `toml:"export"`
	Logging  *rawLogging  `toml:"logging"`
}

type rawDatabase struct {
	DataDir  *string `toml:"data_dir"`
	FileName *string `toml:"file_name"`
}

type rawExport struct {
	Dir *string `toml:"dir"`
}

type rawLogging struct {
	Level     *string `toml:"level"`
	Format    *string `toml:"format"`
	File      *string `toml:"file"`
	MaxSizeMB *int    `toml:"max_size_mb"`
	MaxFiles  *int    `toml:"max_files"`
}

// loadAndApplyFile overlays the file at path onto cfg. A missing default
// file is fine; a missing file the user asked for is not.
func loadAndApplyFile(path string, cfg *Config, explicit bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return nil
		}
		return fmt.Errorf("read config file %q: %w", path, err)
	}

	var raw rawConfig
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("%w: parse TOML file %q: %v", ErrInvalidConfig, path, err)
	}

	if raw.Database != nil {
		setString(raw.Database.DataDir, &cfg.Database.DataDir)
		setString(raw.Database.FileName, &cfg.Database.FileName)
	}
	if raw.Export != nil {
		setString(raw.Export.Dir, &cfg.Export.Dir)
	}
	if raw.Logging != nil {
		setString(raw.Logging.Level, &cfg.Logging.Level)
		setString(raw.Logging.Format, &cfg.Logging.Format)
		setString(raw.Logging.File, &cfg.Logging.File)
		setInt(raw.Logging.MaxSizeMB, &cfg.Logging.MaxSizeMB)
		setInt(raw.Logging.MaxFiles, &cfg.Logging.MaxFiles)
	}
	return nil
}

func applyEnvOverrides(cfg *Config, opts LoadOptions) error {
	if value, ok := lookupEnv(opts, "KANJIDICT_DATA_DIR"); ok {
		cfg.Database.DataDir = value
	}
	if value, ok := lookupEnv(opts, "KANJIDICT_EXPORT_DIR"); ok {
		cfg.Export.Dir = value
	}
	if value, ok := lookupEnv(opts, "KANJIDICT_LOG_LEVEL"); ok {
		cfg.Logging.Level = value
	}
	if value, ok := lookupEnv(opts, "KANJIDICT_LOG_FILE"); ok {
		cfg.Logging.File = value
	}
	if value, ok := lookupEnv(opts, "KANJIDICT_LOG_MAX_SIZE_MB"); ok {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: parse KANJIDICT_LOG_MAX_SIZE_MB: %v", ErrInvalidConfig, err)
		}
		cfg.Logging.MaxSizeMB = parsed
	}
	return nil
}

func applyFlagOverrides(cfg *Config, flags FlagOverrides) {
	if flags.DataDir != nil {
		cfg.Database.DataDir = *flags.DataDir
	}
	if flags.LogLevel != nil {
		cfg.Logging.Level = *flags.LogLevel
	}
}

func validate(cfg Config) error {
	if strings.TrimSpace(cfg.Database.DataDir) == "" {
		return fmt.Errorf("%w: database.data_dir must not be empty", ErrInvalidConfig)
	}
	name := cfg.Database.FileName
	if strings.TrimSpace(name) == "" || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: database.file_name must be a plain file name, got %q", ErrInvalidConfig, name)
	}
	if !contains(LogLevels, cfg.Logging.Level) {
		return fmt.Errorf("%w: logging.level must be one of %s, got %q", ErrInvalidConfig, strings.Join(LogLevels, ", "), cfg.Logging.Level)
	}
	if !contains(LogFormats, cfg.Logging.Format) {
		return fmt.Errorf("%w: logging.format must be one of %s, got %q", ErrInvalidConfig, strings.Join(LogFormats, ", "), cfg.Logging.Format)
	}
	if cfg.Logging.MaxSizeMB <= 0 || cfg.Logging.MaxFiles <= 0 {
		return fmt.Errorf("%w: logging.max_size_mb and logging.max_files must be > 0", ErrInvalidConfig)
	}
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

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func lookupEnv(opts LoadOptions, key string) (string, bool) {
	if opts.Env != nil {
		if value, ok := opts.Env[key]; ok {
			return value, true
		}
	}
	return os.LookupEnv(key)
}

func kanjidictHome(opts LoadOptions) (string, error) {
	if value, ok := lookupEnv(opts, "KANJIDICT_HOME"); ok && value != "" {
		return value, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve user home: %w", err)
	}
	return filepath.Join(home, defaultDirName), nil
}

// expandHome replaces a leading "~/" with the user's home directory.
func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
