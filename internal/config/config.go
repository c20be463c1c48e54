package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/unisearch/internal/score"
)

// Config holds the full application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
	Cache     CacheConfig     `yaml:"cache" mapstructure:"cache"`
	Intent    IntentConfig    `yaml:"intent" mapstructure:"intent"`
	Search    SearchConfig    `yaml:"search" mapstructure:"search"`
	Enrich    EnrichConfig    `yaml:"enrich" mapstructure:"enrich"`
	Scoring   score.Config    `yaml:"scoring" mapstructure:"scoring"`
	GitHub    GitHubConfig    `yaml:"github" mapstructure:"github"`
	OpenAlex  OpenAlexConfig  `yaml:"openalex" mapstructure:"openalex"`
	ArXiv     ArXivConfig     `yaml:"arxiv" mapstructure:"arxiv"`
	Nominatim NominatimConfig `yaml:"nominatim" mapstructure:"nominatim"`
	HFHub     HFHubConfig     `yaml:"hfhub" mapstructure:"hfhub"`
}

// ServerConfig configures the SSE server.
type ServerConfig struct {
	Port       int `yaml:"port" mapstructure:"port"`
	LingerSecs int `yaml:"linger_secs" mapstructure:"linger_secs"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// CacheConfig configures the in-memory result cache.
type CacheConfig struct {
	TTLMinutes int `yaml:"ttl_minutes" mapstructure:"ttl_minutes"`
	MaxEntries int `yaml:"max_entries" mapstructure:"max_entries"`
}

// TTL returns the cache TTL as a duration.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLMinutes) * time.Minute
}

// IntentConfig configures query classification.
type IntentConfig struct {
	// RulesPath optionally overrides the built-in signal-word and skill
	// vocabularies from a YAML file.
	RulesPath    string `yaml:"rules_path" mapstructure:"rules_path"`
	AnthropicKey string `yaml:"anthropic_key" mapstructure:"anthropic_key"`
	Model        string `yaml:"model" mapstructure:"model"`
	TimeoutSecs  int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// SearchConfig configures the aggregation fan-out.
type SearchConfig struct {
	PerProviderLimit    int `yaml:"per_provider_limit" mapstructure:"per_provider_limit"`
	ProviderTimeoutSecs int `yaml:"provider_timeout_secs" mapstructure:"provider_timeout_secs"`
}

// EnrichConfig configures the background enrichment queue.
type EnrichConfig struct {
	YieldMS int `yaml:"yield_ms" mapstructure:"yield_ms"`
}

// GitHubConfig configures the GitHub user-search provider.
type GitHubConfig struct {
	Token   string  `yaml:"token" mapstructure:"token"`
	BaseURL string  `yaml:"base_url" mapstructure:"base_url"`
	RPS     float64 `yaml:"rps" mapstructure:"rps"`
}

// OpenAlexConfig configures the OpenAlex author provider.
type OpenAlexConfig struct {
	BaseURL string  `yaml:"base_url" mapstructure:"base_url"`
	Mailto  string  `yaml:"mailto" mapstructure:"mailto"`
	RPS     float64 `yaml:"rps" mapstructure:"rps"`
}

// ArXivConfig configures the arXiv preprint-author provider.
type ArXivConfig struct {
	BaseURL string  `yaml:"base_url" mapstructure:"base_url"`
	RPS     float64 `yaml:"rps" mapstructure:"rps"`
}

// NominatimConfig configures the OpenStreetMap places provider.
type NominatimConfig struct {
	BaseURL   string  `yaml:"base_url" mapstructure:"base_url"`
	UserAgent string  `yaml:"user_agent" mapstructure:"user_agent"`
	RPS       float64 `yaml:"rps" mapstructure:"rps"`
}

// HFHubConfig configures the Hugging Face dataset provider.
type HFHubConfig struct {
	Token   string  `yaml:"token" mapstructure:"token"`
	BaseURL string  `yaml:"base_url" mapstructure:"base_url"`
	RPS     float64 `yaml:"rps" mapstructure:"rps"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("UNISEARCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.linger_secs", 3)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("cache.ttl_minutes", 5)
	v.SetDefault("cache.max_entries", 1000)
	v.SetDefault("intent.rules_path", "")
	v.SetDefault("intent.anthropic_key", "")
	v.SetDefault("intent.model", "claude-haiku-4-5-20251001")
	v.SetDefault("intent.timeout_secs", 4)
	v.SetDefault("search.per_provider_limit", 10)
	v.SetDefault("search.provider_timeout_secs", 10)
	v.SetDefault("enrich.yield_ms", 25)
	v.SetDefault("github.token", "")
	v.SetDefault("github.base_url", "https://api.github.com")
	v.SetDefault("github.rps", 5)
	v.SetDefault("openalex.base_url", "https://api.openalex.org")
	v.SetDefault("openalex.mailto", "")
	v.SetDefault("openalex.rps", 10)
	v.SetDefault("arxiv.base_url", "https://export.arxiv.org")
	v.SetDefault("nominatim.base_url", "https://nominatim.openstreetmap.org")
	v.SetDefault("nominatim.user_agent", "unisearch/1.0")
	v.SetDefault("nominatim.rps", 1)
	v.SetDefault("hfhub.token", "")
	v.SetDefault("hfhub.base_url", "https://huggingface.co")
	v.SetDefault("hfhub.rps", 5)

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

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
