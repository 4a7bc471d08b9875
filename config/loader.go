package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "GUARDKIT"

// FileSystem interface for file operations (useful for testing).
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
}

// RealFileSystem implements FileSystem using actual file operations.
type RealFileSystem struct{}

func (rfs *RealFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (rfs *RealFileSystem) LoadEnv(path string) error {
	return godotenv.Load(path)
}

// LoaderConfig holds dependencies and optional file overrides.
type LoaderConfig struct {
	FileSystem FileSystem
	ConfigFile string
	EnvFile    string
}

// LoaderOption is a functional option for Load.
type LoaderOption func(*LoaderConfig)

// WithFileSystem sets a custom filesystem for the loader.
func WithFileSystem(fs FileSystem) LoaderOption {
	return func(lc *LoaderConfig) { lc.FileSystem = fs }
}

// WithConfigFile sets an explicit config file path.
func WithConfigFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.ConfigFile = path }
}

// WithEnvFile sets an explicit .env file path.
func WithEnvFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvFile = path }
}

// Load reads guard configuration into cfg. It reads the config file (explicit
// path or the first of ./config.yml, ./config/config.yml), loads a .env file
// when present, and lets GUARDKIT_* environment variables override both.
func Load(cfg *Config, opts ...LoaderOption) error {
	var lc LoaderConfig
	for _, opt := range opts {
		opt(&lc)
	}
	if lc.FileSystem == nil {
		lc.FileSystem = &RealFileSystem{}
	}

	if lc.EnvFile == "" && lc.FileSystem.Exists(".env") {
		lc.EnvFile = ".env"
	}
	if lc.EnvFile != "" && lc.FileSystem.Exists(lc.EnvFile) {
		if err := lc.FileSystem.LoadEnv(lc.EnvFile); err != nil {
			return fmt.Errorf("loading env file %s: %w", lc.EnvFile, err)
		}
	}

	v := viper.New()

	if lc.ConfigFile == "" {
		for _, path := range []string{"./config.yml", "./config/config.yml"} {
			if lc.FileSystem.Exists(path) {
				lc.ConfigFile = path
				break
			}
		}
	}
	if lc.ConfigFile != "" {
		v.SetConfigFile(lc.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config file %s: %w", lc.ConfigFile, err)
		}
	}

	bindEnvOverrides(v)

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.ApplyDefaults()
	return cfg.Validate()
}

// bindEnvOverrides copies GUARDKIT_* environment variables into viper as
// explicit overrides. Viper's AutomaticEnv is not consulted during Unmarshal,
// so each variable is set directly under every plausible dotted key:
// GUARDKIT_LOGGING_LEVEL becomes logging.level, GUARDKIT_GUARDS_RPC_MAX_REQUESTS
// covers both guards.rpc.max_requests and guards.rpc.max.requests.
func bindEnvOverrides(v *viper.Viper) {
	for _, env := range os.Environ() {
		pair := strings.SplitN(env, "=", 2)
		if len(pair) != 2 || !strings.HasPrefix(pair[0], envPrefix+"_") {
			continue
		}
		key := strings.ToLower(strings.TrimPrefix(pair[0], envPrefix+"_"))
		for _, variant := range keyVariants(key) {
			v.Set(variant, pair[1])
		}
	}
}

// keyVariants returns the dotted interpretations of an underscore-separated
// key: for each split point the leading parts become path segments and the
// trailing parts stay joined, so multi-word leaf names still resolve.
func keyVariants(key string) []string {
	parts := strings.Split(key, "_")
	variants := make([]string, 0, len(parts))
	for i := 1; i <= len(parts); i++ {
		head := strings.Join(parts[:i], ".")
		if i == len(parts) {
			variants = append(variants, head)
			continue
		}
		variants = append(variants, head+"_"+strings.Join(parts[i:], "_"))
	}
	return variants
}
