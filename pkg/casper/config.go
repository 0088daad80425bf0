package casper

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/BrandonKowalski/casper/pkg/casper/constants"
)

// Config configures an Application. Zero values are replaced by defaults.
type Config struct {
	BasePath      string `toml:"base_path" yaml:"base_path"`           // Path the application is served under
	LoginLocation string `toml:"login_location" yaml:"login_location"` // Where logout redirects to
	SignOutPath   string `toml:"sign_out_path" yaml:"sign_out_path"`   // Best-effort sign-out request path
	IssuerURL     string `toml:"issuer_url" yaml:"issuer_url"`         // Page URL the socket endpoints are derived from
	Language      string `toml:"language" yaml:"language"`             // Status message and menu language
	MenuDigest    string `toml:"menu_digest" yaml:"menu_digest"`       // Cache-busting digest for the menu document
	MenuPath      string `toml:"menu_path" yaml:"menu_path"`           // Overrides the menu route derived from the role mask
	Digest        string `toml:"digest" yaml:"digest"`                 // Cache-busting digest for page modules
	ModulePrefix  string `toml:"module_prefix" yaml:"module_prefix"`   // Directory page modules are loaded from

	ConnectTimeout  int           `toml:"connect_timeout" yaml:"connect_timeout"`   // Progress hint while connecting, seconds
	InitialBackoff  time.Duration `toml:"initial_backoff" yaml:"initial_backoff"`   // First reconnect throttle delay
	MaxBackoff      time.Duration `toml:"max_backoff" yaml:"max_backoff"`           // Reconnect throttle cap
	PreserveBackoff bool          `toml:"preserve_backoff" yaml:"preserve_backoff"` // Keep growing the delay across sign-ins
	ActivityRate    float64       `toml:"activity_rate" yaml:"activity_rate"`       // Activity samples per second, negative for unlimited

	LogPath  string `toml:"log_path" yaml:"log_path"`
	LogLevel string `toml:"log_level" yaml:"log_level"`
}

// DefaultConfig returns a Config with every default filled in.
func DefaultConfig() Config {
	var cfg Config
	cfg.applyDefaults()
	return cfg
}

// LoadConfig reads a configuration file, applies defaults and then
// environment overrides. Files ending in .yaml or .yml are YAML, anything
// else is TOML.
func LoadConfig(path string) (Config, error) {
	var (
		cfg Config
		err error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = decodeYAML(path, &cfg)
	default:
		err = decodeTOML(path, &cfg)
	}
	if err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}

	cfg.applyDefaults()
	cfg.applyEnv()
	return cfg, nil
}

func decodeTOML(path string, cfg *Config) error {
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return err
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		GetLogger().Warn("Ignoring unknown config keys", "path", path, "keys", strings.Join(keys, ","))
	}
	return nil
}

func decodeYAML(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

func (c *Config) applyDefaults() {
	if c.BasePath == "" {
		c.BasePath = constants.DefaultBasePath
	}
	if c.LoginLocation == "" {
		c.LoginLocation = constants.DefaultLoginLocation
	}
	if c.SignOutPath == "" {
		c.SignOutPath = constants.DefaultSignOutPath
	}
	if c.Language == "" {
		c.Language = constants.DefaultLanguage
	}
	if c.ModulePrefix == "" {
		c.ModulePrefix = constants.DefaultModulePrefix
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = constants.DefaultConnectTimeout
	}
	if c.InitialBackoff <= 0 {
		c.InitialBackoff = constants.DefaultInitialBackoff
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = constants.DefaultMaxBackoff
	}
	if c.ActivityRate == 0 {
		c.ActivityRate = constants.DefaultActivityRate
	}
}

func (c *Config) applyEnv() {
	if v := os.Getenv(constants.LogLevelEnvVar); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv(constants.LanguageEnvVar); v != "" {
		c.Language = v
	}
}
