package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	DB        DBConfig
	JWT       JWTConfig
	S3        S3Config
	Log       LogConfig
	CORS      CORSConfig
	Matching  MatchingConfig
	Gateway   GatewayConfig
	Extractor ProviderConfig
	Redis     RedisConfig
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// ProviderConfig holds settings for a single LLM provider.
type ProviderConfig struct {
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	MaxRetries   int    `mapstructure:"max_retries"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`
}

// GatewayConfig holds settings for the external reasoning gateway.
type GatewayConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// Timeout bounds a single consult; on expiry the verdict stays UNCERTAIN.
	Timeout   time.Duration  `mapstructure:"timeout"`
	RateLimit float64        `mapstructure:"rate_limit"`
	RateBurst int            `mapstructure:"rate_burst"`
	CacheTTL  time.Duration  `mapstructure:"cache_ttl"`
	Primary   ProviderConfig `mapstructure:"primary"`
	Secondary ProviderConfig `mapstructure:"secondary"`
}

// SecondaryConfig returns the secondary provider config, or nil if not configured.
func (g *GatewayConfig) SecondaryConfig() *ProviderConfig {
	if g.Secondary.Provider != "" {
		return &g.Secondary
	}
	return nil
}

// MatchingConfig holds tuning knobs of the matching engine.
type MatchingConfig struct {
	FuzzyThreshold    float64 `mapstructure:"fuzzy_threshold"`
	AliasScore        float64 `mapstructure:"alias_score"`
	MinEvidenceTokens int     `mapstructure:"min_evidence_tokens"`
	MinTokenLength    int     `mapstructure:"min_token_length"`
	AliasFile         string  `mapstructure:"alias_file"`
	BatchConcurrency  int     `mapstructure:"batch_concurrency"`
}

// RedisConfig holds settings for the gateway advice cache.
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// JWTConfig holds JWT verification settings. Tokens are issued by the
// identity service; only the subject (owner ID) is consumed here.
type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	Issuer string        `mapstructure:"issuer"`
	TTL    time.Duration `mapstructure:"ttl"`
}

// S3Config holds AWS S3 settings.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	MaxFileSizeMB int64  `mapstructure:"max_file_size_mb"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from environment variables with the SAFEBITE_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SAFEBITE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "safebite")
	v.SetDefault("db.password", "safebite_secret")
	v.SetDefault("db.name", "safebite_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// JWT defaults
	v.SetDefault("jwt.secret", "change-me-in-production")
	v.SetDefault("jwt.issuer", "safebite")
	v.SetDefault("jwt.ttl", "24h")

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "safebite-labels")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.max_file_size_mb", 20)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Matching defaults
	v.SetDefault("matching.fuzzy_threshold", 0.82)
	v.SetDefault("matching.alias_score", 0.9)
	v.SetDefault("matching.min_evidence_tokens", 3)
	v.SetDefault("matching.min_token_length", 2)
	v.SetDefault("matching.alias_file", "")
	v.SetDefault("matching.batch_concurrency", 4)

	// Gateway defaults
	v.SetDefault("gateway.enabled", false)
	v.SetDefault("gateway.timeout", "8s")
	v.SetDefault("gateway.rate_limit", 5.0)
	v.SetDefault("gateway.rate_burst", 10)
	v.SetDefault("gateway.cache_ttl", "24h")
	v.SetDefault("gateway.primary.provider", "gemini")
	v.SetDefault("gateway.primary.api_key", "")
	v.SetDefault("gateway.primary.default_model", "")
	v.SetDefault("gateway.primary.max_retries", 1)
	v.SetDefault("gateway.primary.timeout_secs", 30)
	v.SetDefault("gateway.secondary.provider", "")
	v.SetDefault("gateway.secondary.api_key", "")
	v.SetDefault("gateway.secondary.default_model", "")
	v.SetDefault("gateway.secondary.max_retries", 1)
	v.SetDefault("gateway.secondary.timeout_secs", 30)

	// Extractor defaults
	v.SetDefault("extractor.provider", "gemini")
	v.SetDefault("extractor.api_key", "")
	v.SetDefault("extractor.default_model", "")
	v.SetDefault("extractor.max_retries", 1)
	v.SetDefault("extractor.timeout_secs", 120)

	// Redis defaults
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                     "SAFEBITE_SERVER_PORT",
		"server.read_timeout":             "SAFEBITE_SERVER_READ_TIMEOUT",
		"server.write_timeout":            "SAFEBITE_SERVER_WRITE_TIMEOUT",
		"server.environment":              "SAFEBITE_SERVER_ENVIRONMENT",
		"db.host":                         "SAFEBITE_DB_HOST",
		"db.port":                         "SAFEBITE_DB_PORT",
		"db.user":                         "SAFEBITE_DB_USER",
		"db.password":                     "SAFEBITE_DB_PASSWORD",
		"db.name":                         "SAFEBITE_DB_NAME",
		"db.sslmode":                      "SAFEBITE_DB_SSLMODE",
		"db.max_open":                     "SAFEBITE_DB_MAX_OPEN",
		"db.max_idle":                     "SAFEBITE_DB_MAX_IDLE",
		"jwt.secret":                      "SAFEBITE_JWT_SECRET",
		"jwt.issuer":                      "SAFEBITE_JWT_ISSUER",
		"jwt.ttl":                         "SAFEBITE_JWT_TTL",
		"s3.region":                       "SAFEBITE_S3_REGION",
		"s3.bucket":                       "SAFEBITE_S3_BUCKET",
		"s3.endpoint":                     "SAFEBITE_S3_ENDPOINT",
		"s3.access_key":                   "SAFEBITE_S3_ACCESS_KEY",
		"s3.secret_key":                   "SAFEBITE_S3_SECRET_KEY",
		"s3.max_file_size_mb":             "SAFEBITE_S3_MAX_FILE_SIZE_MB",
		"log.level":                       "SAFEBITE_LOG_LEVEL",
		"log.format":                      "SAFEBITE_LOG_FORMAT",
		"cors.allowed_origins":            "SAFEBITE_CORS_ALLOWED_ORIGINS",
		"matching.fuzzy_threshold":        "SAFEBITE_MATCHING_FUZZY_THRESHOLD",
		"matching.alias_score":            "SAFEBITE_MATCHING_ALIAS_SCORE",
		"matching.min_evidence_tokens":    "SAFEBITE_MATCHING_MIN_EVIDENCE_TOKENS",
		"matching.min_token_length":       "SAFEBITE_MATCHING_MIN_TOKEN_LENGTH",
		"matching.alias_file":             "SAFEBITE_MATCHING_ALIAS_FILE",
		"matching.batch_concurrency":      "SAFEBITE_MATCHING_BATCH_CONCURRENCY",
		"gateway.enabled":                 "SAFEBITE_GATEWAY_ENABLED",
		"gateway.timeout":                 "SAFEBITE_GATEWAY_TIMEOUT",
		"gateway.rate_limit":              "SAFEBITE_GATEWAY_RATE_LIMIT",
		"gateway.rate_burst":              "SAFEBITE_GATEWAY_RATE_BURST",
		"gateway.cache_ttl":               "SAFEBITE_GATEWAY_CACHE_TTL",
		"gateway.primary.provider":        "SAFEBITE_GATEWAY_PRIMARY_PROVIDER",
		"gateway.primary.api_key":         "SAFEBITE_GATEWAY_PRIMARY_API_KEY",
		"gateway.primary.default_model":   "SAFEBITE_GATEWAY_PRIMARY_DEFAULT_MODEL",
		"gateway.primary.max_retries":     "SAFEBITE_GATEWAY_PRIMARY_MAX_RETRIES",
		"gateway.primary.timeout_secs":    "SAFEBITE_GATEWAY_PRIMARY_TIMEOUT_SECS",
		"gateway.secondary.provider":      "SAFEBITE_GATEWAY_SECONDARY_PROVIDER",
		"gateway.secondary.api_key":       "SAFEBITE_GATEWAY_SECONDARY_API_KEY",
		"gateway.secondary.default_model": "SAFEBITE_GATEWAY_SECONDARY_DEFAULT_MODEL",
		"gateway.secondary.max_retries":   "SAFEBITE_GATEWAY_SECONDARY_MAX_RETRIES",
		"gateway.secondary.timeout_secs":  "SAFEBITE_GATEWAY_SECONDARY_TIMEOUT_SECS",
		"extractor.provider":              "SAFEBITE_EXTRACTOR_PROVIDER",
		"extractor.api_key":               "SAFEBITE_EXTRACTOR_API_KEY",
		"extractor.default_model":         "SAFEBITE_EXTRACTOR_DEFAULT_MODEL",
		"extractor.max_retries":           "SAFEBITE_EXTRACTOR_MAX_RETRIES",
		"extractor.timeout_secs":          "SAFEBITE_EXTRACTOR_TIMEOUT_SECS",
		"redis.enabled":                   "SAFEBITE_REDIS_ENABLED",
		"redis.addr":                      "SAFEBITE_REDIS_ADDR",
		"redis.password":                  "SAFEBITE_REDIS_PASSWORD",
		"redis.db":                        "SAFEBITE_REDIS_DB",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if SAFEBITE_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("SAFEBITE_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.JWT = JWTConfig{
		Secret: v.GetString("jwt.secret"),
		Issuer: v.GetString("jwt.issuer"),
		TTL:    v.GetDuration("jwt.ttl"),
	}
	cfg.S3 = S3Config{
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		MaxFileSizeMB: v.GetInt64("s3.max_file_size_mb"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}

	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{AllowedOrigins: corsOrigins}

	cfg.Matching = MatchingConfig{
		FuzzyThreshold:    v.GetFloat64("matching.fuzzy_threshold"),
		AliasScore:        v.GetFloat64("matching.alias_score"),
		MinEvidenceTokens: v.GetInt("matching.min_evidence_tokens"),
		MinTokenLength:    v.GetInt("matching.min_token_length"),
		AliasFile:         v.GetString("matching.alias_file"),
		BatchConcurrency:  v.GetInt("matching.batch_concurrency"),
	}
	if cfg.Matching.FuzzyThreshold <= 0 || cfg.Matching.FuzzyThreshold > 1 {
		return nil, fmt.Errorf("matching.fuzzy_threshold must be in (0,1], got %v", cfg.Matching.FuzzyThreshold)
	}
	if cfg.Matching.AliasScore <= 0 || cfg.Matching.AliasScore > 1 {
		return nil, fmt.Errorf("matching.alias_score must be in (0,1], got %v", cfg.Matching.AliasScore)
	}

	cfg.Gateway = GatewayConfig{
		Enabled:   v.GetBool("gateway.enabled"),
		Timeout:   v.GetDuration("gateway.timeout"),
		RateLimit: v.GetFloat64("gateway.rate_limit"),
		RateBurst: v.GetInt("gateway.rate_burst"),
		CacheTTL:  v.GetDuration("gateway.cache_ttl"),
		Primary:   loadProvider(v, "gateway.primary"),
		Secondary: loadProvider(v, "gateway.secondary"),
	}
	cfg.Extractor = loadProvider(v, "extractor")

	cfg.Redis = RedisConfig{
		Enabled:  v.GetBool("redis.enabled"),
		Addr:     v.GetString("redis.addr"),
		Password: v.GetString("redis.password"),
		DB:       v.GetInt("redis.db"),
	}

	return cfg, nil
}

func loadProvider(v *viper.Viper, prefix string) ProviderConfig {
	return ProviderConfig{
		Provider:     v.GetString(prefix + ".provider"),
		APIKey:       v.GetString(prefix + ".api_key"),
		DefaultModel: v.GetString(prefix + ".default_model"),
		MaxRetries:   v.GetInt(prefix + ".max_retries"),
		TimeoutSecs:  v.GetInt(prefix + ".timeout_secs"),
	}
}
