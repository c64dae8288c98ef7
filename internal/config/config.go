package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds configuration for the gateway.
type Config struct {
	HTTPPort       string
	MaxUploadBytes int64

	Provider  ProviderConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Database  DatabaseConfig
	UsageSink UsageSinkConfig
}

// ProviderConfig holds LLM provider credentials and model overrides. Read
// once at startup; the gateway treats it as immutable after that.
type ProviderConfig struct {
	RequestTimeout time.Duration

	AnthropicAPIKey string
	AnthropicModel  string

	OpenAIAPIKey string
	OpenAIModel  string

	AzureAPIKey     string
	AzureEndpoint   string
	AzureDeployment string
	AzureAPIVersion string

	GoogleAPIKey string
	GoogleModel  string
}

// RedisConfig holds Redis connection settings. An empty Address disables
// every redis-backed component.
type RedisConfig struct {
	Address      string
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// RateLimitConfig holds the per-client request ceiling. Zero disables
// rate limiting.
type RateLimitConfig struct {
	PerMinute int
}

// DatabaseConfig holds settings for the optional usage database. An empty
// URL disables it.
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// UsageSinkConfig holds configuration for the S3-based usage sink.
type UsageSinkConfig struct {
	Enabled       bool
	BufferSize    int
	FlushSize     int
	FlushInterval time.Duration
	S3Bucket      string
	S3Region      string
	S3Prefix      string
	PodName       string
}

func getEnvInt(key string, defaultValue int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultValue
	}

	intVal, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}

	return intVal
}

func getEnvInt64(key string, defaultValue int64) int64 {
	val := os.Getenv(key)
	if val == "" {
		return defaultValue
	}
	intVal, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return defaultValue
	}
	return intVal
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultValue
	}

	duration, err := time.ParseDuration(val)
	if err != nil {
		return defaultValue
	}

	return duration
}

func getEnvString(key string, defaultValue string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultValue
	}
	return val
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		HTTPPort:       getEnvString("HTTP_PORT", "8080"),
		MaxUploadBytes: getEnvInt64("MAX_UPLOAD_BYTES", 16<<20),
		Provider: ProviderConfig{
			RequestTimeout:  getEnvDuration("PROVIDER_REQUEST_TIMEOUT", 60*time.Second),
			AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
			AnthropicModel:  os.Getenv("ANTHROPIC_MODEL"),
			OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
			OpenAIModel:     os.Getenv("OPENAI_MODEL"),
			AzureAPIKey:     os.Getenv("AZURE_OPENAI_API_KEY"),
			AzureEndpoint:   os.Getenv("AZURE_OPENAI_ENDPOINT"),
			AzureDeployment: os.Getenv("AZURE_OPENAI_DEPLOYMENT_NAME"),
			AzureAPIVersion: os.Getenv("AZURE_OPENAI_API_VERSION"),
			GoogleAPIKey:    os.Getenv("GOOGLE_API_KEY"),
			GoogleModel:     os.Getenv("GOOGLE_MODEL"),
		},
		Redis: RedisConfig{
			Address:      getEnvString("REDIS_ADDRESS", ""),
			Password:     getEnvString("REDIS_PASSWORD", ""),
			DB:           getEnvInt("REDIS_DB", 0),
			PoolSize:     getEnvInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getEnvInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getEnvDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getEnvDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getEnvDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		RateLimit: RateLimitConfig{
			PerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 0),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
			ConnMaxIdleTime: getEnvDuration("DB_CONN_MAX_IDLE_TIME", 1*time.Minute),
		},
		UsageSink: UsageSinkConfig{
			Enabled:       getEnvString("USAGE_SINK_ENABLED", "false") == "true",
			BufferSize:    getEnvInt("USAGE_SINK_BUFFER_SIZE", 10000),
			FlushSize:     getEnvInt("USAGE_SINK_FLUSH_SIZE", 1000),
			FlushInterval: getEnvDuration("USAGE_SINK_FLUSH_INTERVAL", 5*time.Minute),
			S3Bucket:      getEnvString("USAGE_SINK_S3_BUCKET", ""),
			S3Region:      getEnvString("USAGE_SINK_S3_REGION", "us-east-1"),
			S3Prefix:      getEnvString("USAGE_SINK_S3_PREFIX", "usage/"),
			PodName:       getEnvString("POD_NAME", "gateway-0"),
		},
	}

	return cfg, nil
}
