// Package config handles the settings of the remotecli tool and the semantic
// validation of specifications.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// AppName names the tool in config, cache and env lookups.
const AppName = "remotecli"

// FileName is the settings file looked up in the project directory and in
// the XDG config directory, without extension.
const FileName = "remotecli"

// Settings controls a build.
type Settings struct {
	// SpecFile is the specification path or URL. Empty means cli.json
	// or cli.yaml inside the project directory.
	SpecFile string `mapstructure:"spec_file" yaml:"spec_file,omitempty"`
	// FuncsDir holds script fragments, relative to the project directory.
	FuncsDir string `mapstructure:"funcs_dir" yaml:"funcs_dir"`
	// FontsDir holds extra figlet fonts, relative to the project directory.
	FontsDir string `mapstructure:"fonts_dir" yaml:"fonts_dir"`
	// OutDir receives the published site, relative to the project directory.
	OutDir   string        `mapstructure:"out_dir" yaml:"out_dir"`
	Lint     bool          `mapstructure:"lint" yaml:"lint"`
	CacheTTL time.Duration `mapstructure:"cache_ttl" yaml:"cache_ttl"`
	LogLevel string        `mapstructure:"log_level" yaml:"log_level"`
}

// Defaults returns the built-in settings.
func Defaults() Settings {
	return Settings{
		FuncsDir: "funcs",
		FontsDir: "fonts",
		OutDir:   "out",
		Lint:     true,
		CacheTTL: 5 * time.Minute,
		LogLevel: "warn",
	}
}

// flagKeys maps cobra flag names to settings keys.
var flagKeys = map[string]string{
	"spec":      "spec_file",
	"funcs":     "funcs_dir",
	"fonts":     "fonts_dir",
	"out":       "out_dir",
	"cache-ttl": "cache_ttl",
	"log-level": "log_level",
}

// Loader reads settings from their sources.
// Priority: Flag > ENV > Project file > User file > Default
type Loader struct {
	fs        afero.Fs
	envPrefix string
	userDir   string
}

// NewLoader creates a loader reading files from fs.
func NewLoader(fs afero.Fs) *Loader {
	return &Loader{
		fs:        fs,
		envPrefix: strings.ToUpper(AppName),
		userDir:   filepath.Join(xdg.ConfigHome, AppName),
	}
}

// WithUserDir overrides the XDG user config directory.
func (l *Loader) WithUserDir(dir string) *Loader {
	l.userDir = dir
	return l
}

// Load resolves the settings of the project in dir. flags may be nil.
func (l *Loader) Load(dir string, flags *pflag.FlagSet) (*Settings, error) {
	v := viper.New()
	v.SetFs(l.fs)

	defaults := Defaults()
	v.SetDefault("spec_file", defaults.SpecFile)
	v.SetDefault("funcs_dir", defaults.FuncsDir)
	v.SetDefault("fonts_dir", defaults.FontsDir)
	v.SetDefault("out_dir", defaults.OutDir)
	v.SetDefault("lint", defaults.Lint)
	v.SetDefault("cache_ttl", defaults.CacheTTL)
	v.SetDefault("log_level", defaults.LogLevel)

	if err := l.readFiles(v, dir); err != nil {
		return nil, err
	}

	v.SetEnvPrefix(l.envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
		if f := flags.Lookup("no-lint"); f != nil && f.Changed {
			v.Set("lint", f.Value.String() != "true")
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// readFiles merges the user file, then the project file over it.
func (l *Loader) readFiles(v *viper.Viper, dir string) error {
	for _, path := range []string{l.userDir, dir} {
		if path == "" {
			continue
		}
		file, ok := l.findFile(path)
		if !ok {
			continue
		}
		v.SetConfigFile(file)
		if err := v.MergeInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if errors.As(err, &notFound) {
				continue
			}
			return fmt.Errorf("failed to read settings %s: %w", file, err)
		}
	}
	return nil
}

// findFile returns the settings file inside dir.
func (l *Loader) findFile(dir string) (string, bool) {
	for _, ext := range []string{".yaml", ".yml"} {
		file := filepath.Join(dir, FileName+ext)
		if ok, _ := afero.Exists(l.fs, file); ok {
			return file, true
		}
	}
	return "", false
}

// Validate checks the settings values.
func (s *Settings) Validate() error {
	var errs ValidationErrors
	if s.FuncsDir == "" {
		errs = append(errs, ValidationError{Field: "funcs_dir", Message: "funcs_dir is required"})
	}
	if s.OutDir == "" {
		errs = append(errs, ValidationError{Field: "out_dir", Message: "out_dir is required"})
	}
	if s.CacheTTL < 0 {
		errs = append(errs, ValidationError{Field: "cache_ttl", Message: "cache_ttl must be non-negative"})
	}
	if !contains([]string{"debug", "info", "warn", "error"}, s.LogLevel) {
		errs = append(errs, ValidationError{Field: "log_level", Message: "log_level must be one of: debug, info, warn, error"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Resolve returns a copy with relative directories joined onto dir. URLs
// and absolute paths are left alone.
func (s Settings) Resolve(dir string) Settings {
	join := func(p string) string {
		if p == "" || filepath.IsAbs(p) || strings.Contains(p, "://") {
			return p
		}
		return filepath.Join(dir, p)
	}
	s.SpecFile = join(s.SpecFile)
	s.FuncsDir = join(s.FuncsDir)
	s.FontsDir = join(s.FontsDir)
	s.OutDir = join(s.OutDir)
	return s
}

// CacheDir returns the XDG cache directory of the tool.
func CacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// WriteDefault writes the default settings file into dir unless one exists.
func WriteDefault(fs afero.Fs, dir string) (string, error) {
	path := filepath.Join(dir, FileName+".yaml")
	if ok, _ := afero.Exists(fs, path); ok {
		return path, fmt.Errorf("%s already exists", path)
	}

	data, err := yaml.Marshal(Defaults())
	if err != nil {
		return "", fmt.Errorf("failed to marshal settings: %w", err)
	}
	if err := afero.WriteFile(fs, path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write settings: %w", err)
	}
	return path, nil
}
