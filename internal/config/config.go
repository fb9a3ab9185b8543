package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig    `mapstructure:"server" validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database" validate:"required"`
	Evaluator EvaluatorConfig `mapstructure:"evaluator" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`

	// MigrationsDir is the directory holding goose SQL migrations,
	// relative to the working directory of the binary.
	MigrationsDir string `mapstructure:"migrations_dir" validate:"required"`
}

// EvaluatorConfig contains answer-evaluation settings: the embedding model
// used for semantic similarity and the default correctness threshold.
type EvaluatorConfig struct {
	// GeminiAPIKey authenticates the embedding provider. Leave empty to run
	// without a model; evaluation then always uses the degraded
	// token-overlap fallback.
	GeminiAPIKey string `mapstructure:"gemini_api_key"`

	// EmbeddingModel is the embedding model identifier.
	EmbeddingModel string `mapstructure:"embedding_model" validate:"required"`

	// DefaultThreshold is the similarity cutoff used when a caller does not
	// supply one. Documented presets: strict=0.8, moderate=0.7, lenient=0.6.
	DefaultThreshold float64 `mapstructure:"default_threshold" validate:"required,gt=0,lte=1"`

	// MaxRetries is the number of additional attempts made for transient
	// embedding API failures before falling back to token overlap.
	MaxRetries int `mapstructure:"max_retries" validate:"gte=0,lte=10"`

	// RetryDelaySeconds is the base delay for exponential backoff between
	// embedding retries.
	RetryDelaySeconds int `mapstructure:"retry_delay_seconds" validate:"gte=1,lte=30"`
}
