// Package config loads the application configuration with viper.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.trai.ch/selfie/internal/core/domain"
	"go.trai.ch/selfie/internal/core/ports"
	"go.trai.ch/zerr"
)

const (
	// FileName is the base name of the config file searched for when none is given.
	FileName = "selfie"
	// EnvPrefix prefixes environment variables that override config keys.
	EnvPrefix = "SELFIE"

	defaultTimeout = 60 * time.Second
)

// Config keys.
const (
	KeyEnvironment      = "environment"
	KeyPackageDirectory = "package_directory"
	KeyCommandTimeout   = "command_timeout"
	KeyStopOnError      = "stop_on_error"
	KeyMaxParallel      = "max_parallel"
	KeyVerbose          = "verbose"
	KeyUseColors        = "use_colors"
	KeyLogFormat        = "log_format"
	KeyShell            = "shell"
	KeyCheckCommands    = "check_commands"
)

// fileConfig mirrors the config file. command_timeout is decoded separately
// because plain numbers mean seconds.
type fileConfig struct {
	Environment      string `mapstructure:"environment"`
	PackageDirectory string `mapstructure:"package_directory"`
	StopOnError      bool   `mapstructure:"stop_on_error"`
	MaxParallel      int    `mapstructure:"max_parallel"`
	Verbose          bool   `mapstructure:"verbose"`
	UseColors        bool   `mapstructure:"use_colors"`
	LogFormat        string `mapstructure:"log_format"`
	Shell            string `mapstructure:"shell"`
	CheckCommands    bool   `mapstructure:"check_commands"`
}

// Loader implements ports.ConfigLoader.
type Loader struct {
	logger      ports.Logger
	searchPaths []string
}

// NewLoader creates a Loader searching the user config directory for selfie.yaml.
func NewLoader(logger ports.Logger) *Loader {
	var paths []string
	if dir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, "selfie"))
	}
	return &Loader{logger: logger, searchPaths: paths}
}

// WithSearchPaths replaces the directories searched for the config file.
func (l *Loader) WithSearchPaths(paths ...string) *Loader {
	l.searchPaths = paths
	return l
}

// Load merges defaults, the config file, SELFIE_* environment variables and overrides.
func (l *Loader) Load(overrides domain.ConfigOverrides) (domain.AppConfig, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := l.readFile(v, overrides.ConfigFile); err != nil {
		return domain.AppConfig{}, err
	}
	applyOverrides(v, &overrides)

	var fc fileConfig
	if err := v.Unmarshal(&fc); err != nil {
		return domain.AppConfig{}, zerr.Wrap(domain.ErrInvalidConfig, err.Error())
	}

	timeout, err := parseTimeout(v.Get(KeyCommandTimeout))
	if err != nil {
		return domain.AppConfig{}, zerr.With(
			zerr.Wrap(domain.ErrInvalidConfig, err.Error()),
			"field", KeyCommandTimeout,
		)
	}

	dir, err := ExpandPath(fc.PackageDirectory)
	if err != nil {
		return domain.AppConfig{}, zerr.With(
			zerr.Wrap(domain.ErrInvalidConfig, err.Error()),
			"field", KeyPackageDirectory,
		)
	}

	cfg := domain.AppConfig{
		Environment:      fc.Environment,
		PackageDirectory: dir,
		CommandTimeout:   timeout,
		StopOnError:      fc.StopOnError,
		MaxParallel:      fc.MaxParallel,
		Verbose:          fc.Verbose,
		UseColors:        fc.UseColors,
		LogFormat:        strings.ToLower(fc.LogFormat),
		Shell:            strings.ToLower(fc.Shell),
		CheckCommands:    fc.CheckCommands,
	}
	if err := cfg.Validate(); err != nil {
		return domain.AppConfig{}, err
	}
	return cfg, nil
}

func (l *Loader) readFile(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return zerr.With(zerr.Wrap(domain.ErrConfigReadFailed, err.Error()), "file", path)
		}
		l.debug("using config file " + path)
		return nil
	}

	v.SetConfigName(FileName)
	v.SetConfigType("yaml")
	for _, p := range l.searchPaths {
		v.AddConfigPath(p)
	}
	if len(l.searchPaths) == 0 {
		return nil
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return zerr.Wrap(domain.ErrConfigReadFailed, err.Error())
	}
	l.debug("using config file " + v.ConfigFileUsed())
	return nil
}

func (l *Loader) debug(msg string) {
	if l.logger != nil {
		l.logger.Debug(msg)
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyEnvironment, "")
	v.SetDefault(KeyPackageDirectory, filepath.Join("~", ".config", "selfie", "packages"))
	v.SetDefault(KeyCommandTimeout, defaultTimeout)
	v.SetDefault(KeyStopOnError, true)
	v.SetDefault(KeyMaxParallel, runtime.NumCPU())
	v.SetDefault(KeyVerbose, false)
	v.SetDefault(KeyUseColors, true)
	v.SetDefault(KeyLogFormat, domain.LogFormatText)
	v.SetDefault(KeyShell, domain.ShellSystem)
	v.SetDefault(KeyCheckCommands, false)
}

func applyOverrides(v *viper.Viper, o *domain.ConfigOverrides) {
	setIf(v, KeyEnvironment, o.Environment)
	setIf(v, KeyPackageDirectory, o.PackageDirectory)
	setIf(v, KeyCommandTimeout, o.CommandTimeout)
	setIf(v, KeyStopOnError, o.StopOnError)
	setIf(v, KeyMaxParallel, o.MaxParallel)
	setIf(v, KeyVerbose, o.Verbose)
	setIf(v, KeyUseColors, o.UseColors)
	setIf(v, KeyLogFormat, o.LogFormat)
	setIf(v, KeyShell, o.Shell)
	setIf(v, KeyCheckCommands, o.CheckCommands)
}

func setIf[T any](v *viper.Viper, key string, value *T) {
	if value != nil {
		v.Set(key, *value)
	}
}

// parseTimeout accepts durations ("90s", "2m") and plain numbers of seconds.
func parseTimeout(raw any) (time.Duration, error) {
	switch t := raw.(type) {
	case time.Duration:
		return t, nil
	case int:
		return time.Duration(t) * time.Second, nil
	case int64:
		return time.Duration(t) * time.Second, nil
	case uint64:
		return time.Duration(t) * time.Second, nil
	case float64:
		return time.Duration(t * float64(time.Second)), nil
	case string:
		s := strings.TrimSpace(t)
		if n, err := strconv.ParseFloat(s, 64); err == nil {
			return time.Duration(n * float64(time.Second)), nil
		}
		d, err := time.ParseDuration(s)
		if err != nil {
			return 0, zerr.With(zerr.New("unparsable duration"), "value", t)
		}
		return d, nil
	default:
		return 0, zerr.With(zerr.New("unsupported duration type"), "value", raw)
	}
}

// ExpandPath expands a leading ~ and makes path absolute. An empty path stays empty.
func ExpandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", zerr.Wrap(err, "failed to resolve home directory")
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return filepath.Abs(path)
}
