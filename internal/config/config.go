// Package config loads transqc settings from an optional YAML file, a .env
// file and TRANSQC_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/valpere/transqc/internal/translator"
)

type Config struct {
	TargetLang             string           `mapstructure:"target_lang"`
	PrimaryProvider        string           `mapstructure:"primary_provider"`
	LowQualityThreshold    float64          `mapstructure:"low_quality_threshold"`
	ShortCircuitConfidence float64          `mapstructure:"short_circuit_confidence"`
	SkipValidation         bool             `mapstructure:"skip_validation"`
	DBPath                 string           `mapstructure:"db_path"`
	Log                    LogConfig        `mapstructure:"log"`
	Server                 ServerConfig     `mapstructure:"server"`
	Providers              []ProviderConfig `mapstructure:"providers"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// ProviderConfig names one backend, its adapter kind, connection settings and
// the prior the arbiter ranks it by.
type ProviderConfig struct {
	Name string `mapstructure:"name"`
	Kind string `mapstructure:"kind"`

	translator.ServiceConfig `mapstructure:",squash"`

	PriorQuality    float64 `mapstructure:"prior_quality"`
	PriorConfidence float64 `mapstructure:"prior_confidence"`
}

// DefaultProviders is used when the configuration lists none.
func DefaultProviders() []ProviderConfig {
	return []ProviderConfig{
		{
			Name:            "google",
			Kind:            string(translator.KindGoogle),
			ServiceConfig:   translator.ServiceConfig{APIKey: "${GOOGLE_TRANSLATE_API_KEY}"},
			PriorQuality:    0.90,
			PriorConfidence: 0.85,
		},
		{
			Name:            "systran",
			Kind:            string(translator.KindSystran),
			ServiceConfig:   translator.ServiceConfig{APIKey: "${SYSTRAN_API_KEY}"},
			PriorQuality:    0.85,
			PriorConfidence: 0.80,
		},
		{
			Name:            "openai",
			Kind:            string(translator.KindOpenAI),
			ServiceConfig:   translator.ServiceConfig{APIKey: "${OPENAI_API_KEY}"},
			PriorQuality:    0.80,
			PriorConfidence: 0.75,
		},
	}
}

// Load reads configuration. cfgFile may be empty, in which case transqc.yaml
// is looked up in the working directory and $HOME/.transqc; a missing file is
// not an error.
func Load(cfgFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error reading .env: %w", err)
	}

	v := viper.New()
	v.SetDefault("target_lang", translator.DefaultTargetLang)
	v.SetDefault("primary_provider", "google")
	v.SetDefault("low_quality_threshold", 0.7)
	v.SetDefault("short_circuit_confidence", 0.8)
	v.SetDefault("skip_validation", false)
	v.SetDefault("db_path", "./data/transqc.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.addr", ":8080")

	v.SetEnvPrefix("TRANSQC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("transqc")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.transqc")
	}

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if len(cfg.Providers) == 0 {
		cfg.Providers = DefaultProviders()
	}
	for i := range cfg.Providers {
		p := &cfg.Providers[i]
		if p.Name == "" {
			p.Name = p.Kind
		}
		p.APIKey = ResolveEnvVars(p.APIKey)
		p.Credentials = ResolveEnvVars(p.Credentials)
		p.Email = ResolveEnvVars(p.Email)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if len(c.Providers) == 0 {
		return errors.New("no providers configured")
	}
	if c.LowQualityThreshold < 0 || c.LowQualityThreshold > 1 {
		return fmt.Errorf("low_quality_threshold must be in [0,1], got %v", c.LowQualityThreshold)
	}
	if c.ShortCircuitConfidence < 0 || c.ShortCircuitConfidence > 1 {
		return fmt.Errorf("short_circuit_confidence must be in [0,1], got %v", c.ShortCircuitConfidence)
	}

	seen := make(map[string]bool, len(c.Providers))
	for _, p := range c.Providers {
		if p.Name == "" {
			return errors.New("provider without name or kind")
		}
		if seen[p.Name] {
			return fmt.Errorf("duplicate provider name: %s", p.Name)
		}
		seen[p.Name] = true

		if !translator.Kind(p.Kind).Valid() {
			return fmt.Errorf("provider %s: unknown kind %q", p.Name, p.Kind)
		}
		if p.PriorQuality < 0 || p.PriorQuality > 1 {
			return fmt.Errorf("provider %s: prior_quality must be in [0,1], got %v", p.Name, p.PriorQuality)
		}
		if p.PriorConfidence < 0 || p.PriorConfidence > 1 {
			return fmt.Errorf("provider %s: prior_confidence must be in [0,1], got %v", p.Name, p.PriorConfidence)
		}
	}

	if c.PrimaryProvider != "" && !seen[c.PrimaryProvider] {
		return fmt.Errorf("primary_provider %q is not configured", c.PrimaryProvider)
	}
	return nil
}

// Provider returns the named provider configuration.
func (c *Config) Provider(name string) (ProviderConfig, bool) {
	for _, p := range c.Providers {
		if p.Name == name {
			return p, true
		}
	}
	return ProviderConfig{}, false
}

var envRefPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// ResolveEnvVars expands ${ENV_VAR} references in a string.
func ResolveEnvVars(value string) string {
	if value == "" {
		return value
	}
	return envRefPattern.ReplaceAllStringFunc(value, func(match string) string {
		return os.Getenv(match[2 : len(match)-1])
	})
}
