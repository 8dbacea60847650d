package config

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/spf13/viper"
)

const (
	ProviderOpenAI      = "openai"
	ProviderHuggingFace = "huggingface"
	ProviderGemini      = "gemini"
	ProviderVader       = "vader"

	BackendMemory   = "memory"
	BackendValkey   = "valkey"
	BackendDynamoDB = "dynamodb"
	BackendPostgres = "postgres"
)

var (
	providers = []string{ProviderOpenAI, ProviderHuggingFace, ProviderGemini, ProviderVader}
	backends  = []string{BackendMemory, BackendValkey, BackendDynamoDB, BackendPostgres}
)

type Config struct {
	AppEnv   string `mapstructure:"app_env"`
	Port     string `mapstructure:"port"`
	LogLevel string `mapstructure:"log_level"`

	ModelProvider       string        `mapstructure:"model_provider"`
	ModelName           string        `mapstructure:"model_name"`
	ModelMaxTokens      int           `mapstructure:"model_max_tokens"`
	ModelTimeout        time.Duration `mapstructure:"model_timeout"`
	HealthCheckInterval time.Duration `mapstructure:"health_check_interval"`

	OpenAIAPIKey  string `mapstructure:"openai_api_key"`
	OpenAIBaseURL string `mapstructure:"openai_base_url"`
	HFAPIToken    string `mapstructure:"hf_api_token"`
	HFEndpoint    string `mapstructure:"hf_endpoint"`
	GeminiAPIKey  string `mapstructure:"gemini_api_key"`

	StoreBackend   string `mapstructure:"store_backend"`
	StoreKeyPrefix string `mapstructure:"store_key_prefix"`
	ValkeyAddress  string `mapstructure:"valkey_init_address"`
	ValkeyPassword string `mapstructure:"valkey_password"`
	ValkeyTLS      bool   `mapstructure:"valkey_tls"`
	DynamoDBTable  string `mapstructure:"dynamodb_table"`
	AWSEndpoint    string `mapstructure:"aws_endpoint"`
	AWSRegion      string `mapstructure:"aws_region"`
	DatabaseURL    string `mapstructure:"database_url"`

	KafkaBroker       string `mapstructure:"kafka_broker"`
	KafkaResultsTopic string `mapstructure:"kafka_results_topic"`
}

func DefaultConfig() *Config {
	return &Config{
		AppEnv:              "dev",
		Port:                "8080",
		LogLevel:            "info",
		ModelProvider:       ProviderVader,
		ModelMaxTokens:      8,
		ModelTimeout:        30 * time.Second,
		HealthCheckInterval: 15 * time.Second,
		StoreBackend:        BackendMemory,
		DynamoDBTable:       "SentimentCache",
		AWSRegion:           "us-west-2",
		KafkaResultsTopic:   "sentiment-results",
	}
}

// Load reads configuration from the global viper instance, which cobra flags
// are bound to.
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom reads configuration from environment variables (upper-cased keys),
// an optional config file and flags bound to v.
func LoadFrom(v *viper.Viper) (*Config, error) {
	cfg := DefaultConfig()

	v.AutomaticEnv()

	v.SetDefault("app_env", cfg.AppEnv)
	v.SetDefault("port", cfg.Port)
	v.SetDefault("log_level", cfg.LogLevel)
	v.SetDefault("model_provider", cfg.ModelProvider)
	v.SetDefault("model_name", cfg.ModelName)
	v.SetDefault("model_max_tokens", cfg.ModelMaxTokens)
	v.SetDefault("model_timeout", cfg.ModelTimeout)
	v.SetDefault("health_check_interval", cfg.HealthCheckInterval)
	v.SetDefault("openai_api_key", cfg.OpenAIAPIKey)
	v.SetDefault("openai_base_url", cfg.OpenAIBaseURL)
	v.SetDefault("hf_api_token", cfg.HFAPIToken)
	v.SetDefault("hf_endpoint", cfg.HFEndpoint)
	v.SetDefault("gemini_api_key", cfg.GeminiAPIKey)
	v.SetDefault("store_backend", cfg.StoreBackend)
	v.SetDefault("store_key_prefix", cfg.StoreKeyPrefix)
	v.SetDefault("valkey_init_address", cfg.ValkeyAddress)
	v.SetDefault("valkey_password", cfg.ValkeyPassword)
	v.SetDefault("valkey_tls", cfg.ValkeyTLS)
	v.SetDefault("dynamodb_table", cfg.DynamoDBTable)
	v.SetDefault("aws_endpoint", cfg.AWSEndpoint)
	v.SetDefault("aws_region", cfg.AWSRegion)
	v.SetDefault("database_url", cfg.DatabaseURL)
	v.SetDefault("kafka_broker", cfg.KafkaBroker)
	v.SetDefault("kafka_results_topic", cfg.KafkaResultsTopic)

	if v.ConfigFileUsed() != "" {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if !slices.Contains(providers, c.ModelProvider) {
		return fmt.Errorf("MODEL_PROVIDER must be one of %v, got %q", providers, c.ModelProvider)
	}
	if !slices.Contains(backends, c.StoreBackend) {
		return fmt.Errorf("STORE_BACKEND must be one of %v, got %q", backends, c.StoreBackend)
	}
	if c.ModelMaxTokens <= 0 {
		return errors.New("MODEL_MAX_TOKENS must be > 0")
	}
	if c.ModelTimeout < 0 {
		return errors.New("MODEL_TIMEOUT must be >= 0")
	}

	switch c.ModelProvider {
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" && c.OpenAIBaseURL == "" {
			return errors.New("OPENAI_API_KEY is required for the openai provider")
		}
	case ProviderGemini:
		if c.GeminiAPIKey == "" {
			return errors.New("GEMINI_API_KEY is required for the gemini provider")
		}
	}

	switch c.StoreBackend {
	case BackendValkey:
		if c.ValkeyAddress == "" {
			return errors.New("VALKEY_INIT_ADDRESS is required for the valkey backend")
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required for the postgres backend")
		}
	}

	return nil
}

// Model returns the configured model name or the provider's default.
func (c *Config) Model() string {
	if c.ModelName != "" {
		return c.ModelName
	}
	switch c.ModelProvider {
	case ProviderOpenAI:
		return "gpt-4o-mini"
	case ProviderHuggingFace:
		return "meta-llama/Llama-2-7b-chat-hf"
	case ProviderGemini:
		return "gemini-2.0-flash"
	default:
		return ProviderVader
	}
}
