package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
)

// Config holds the full application configuration.
type Config struct {
	Dataset DatasetConfig `yaml:"dataset" mapstructure:"dataset"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
	Engine  EngineConfig  `yaml:"engine" mapstructure:"engine"`
	Quality QualityConfig `yaml:"quality" mapstructure:"quality"`
}

// DatasetConfig points at the source workbooks.
type DatasetConfig struct {
	Path             string `yaml:"path" mapstructure:"path"`
	NPSPath          string `yaml:"nps_path" mapstructure:"nps_path"`
	FetchTimeoutSecs int    `yaml:"fetch_timeout_secs" mapstructure:"fetch_timeout_secs"`
	CacheTTLMins     int    `yaml:"cache_ttl_mins" mapstructure:"cache_ttl_mins"`
}

// FetchTimeout is the per-attempt timeout for remote sources.
func (d DatasetConfig) FetchTimeout() time.Duration {
	return time.Duration(d.FetchTimeoutSecs) * time.Second
}

// CacheTTL is how long a loaded dataset is reused.
func (d DatasetConfig) CacheTTL() time.Duration {
	return time.Duration(d.CacheTTLMins) * time.Minute
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logrus.
type LogConfig struct {
	Level       string `yaml:"level" mapstructure:"level"`
	Environment string `yaml:"environment" mapstructure:"environment"`
}

// EngineConfig holds the minimum-count inclusion thresholds.
type EngineConfig struct {
	MinCityServices     int `yaml:"min_city_services" mapstructure:"min_city_services"`
	MinProviderServices int `yaml:"min_provider_services" mapstructure:"min_provider_services"`
}

// QualityConfig configures the NPS rankings.
type QualityConfig struct {
	MinEvaluations int `yaml:"min_evaluations" mapstructure:"min_evaluations"`
}

// LoadDotEnv loads .env files if present; existing variables win.
func LoadDotEnv(files ...string) {
	_ = godotenv.Load(files...)
}

// Load reads config.yaml (optional), NETSCORE_* variables and the legacy
// unprefixed DATASET_PATH, NPS_PATH, PORT, LOG_LEVEL and ENVIRONMENT.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("NETSCORE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	legacy := map[string]string{
		"dataset.path":     "DATASET_PATH",
		"dataset.nps_path": "NPS_PATH",
		"server.port":      "PORT",
		"log.level":        "LOG_LEVEL",
		"log.environment":  "ENVIRONMENT",
	}
	for key, env := range legacy {
		prefixed := "NETSCORE_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, env); err != nil {
			return nil, eris.Wrapf(err, "config: bind %s", key)
		}
	}

	// Defaults
	v.SetDefault("dataset.path", "data/atendimentos.xlsx")
	v.SetDefault("dataset.nps_path", "")
	v.SetDefault("dataset.fetch_timeout_secs", 30)
	v.SetDefault("dataset.cache_ttl_mins", 60)
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.environment", "")
	v.SetDefault("engine.min_city_services", 10)
	v.SetDefault("engine.min_provider_services", 1)
	v.SetDefault("quality.min_evaluations", 5)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values no component can work with.
func (c *Config) Validate() error {
	var errs []string
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, "server.port must be between 1 and 65535")
	}
	if c.Engine.MinCityServices < 0 {
		errs = append(errs, "engine.min_city_services must be >= 0")
	}
	if c.Engine.MinProviderServices < 0 {
		errs = append(errs, "engine.min_provider_services must be >= 0")
	}
	if c.Quality.MinEvaluations < 0 {
		errs = append(errs, "quality.min_evaluations must be >= 0")
	}
	if c.Dataset.FetchTimeoutSecs <= 0 {
		errs = append(errs, "dataset.fetch_timeout_secs must be > 0")
	}
	if c.Dataset.CacheTTLMins <= 0 {
		errs = append(errs, "dataset.cache_ttl_mins must be > 0")
	}
	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}
