// Package config holds the environment-driven configuration for the
// orchestrator: provider credentials, concurrency limits, recursion caps,
// and the built-in agent role registry.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config is the umbrella configuration object returned by FromEnv and
// used throughout the application.
type Config struct {
	HTTPPort string

	LLM    LLMConfig
	Search SearchConfig
	Store  StoreConfig
	Limits Limits
	Queue  QueueConfig

	Roles *RoleRegistry
}

// LLMConfig configures the chat-completion provider.
type LLMConfig struct {
	APIKey      string
	Model       string
	Temperature float32
	// CallTimeout bounds a single completion request.
	CallTimeout time.Duration
}

// Configured reports whether credentials are present.
func (c LLMConfig) Configured() bool {
	return c.APIKey != ""
}

// SearchConfig configures the web search provider.
type SearchConfig struct {
	APIKey     string
	BaseURL    string
	MaxResults int
}

// Configured reports whether credentials are present.
func (c SearchConfig) Configured() bool {
	return c.APIKey != ""
}

// StoreConfig configures the task store. An empty URL disables the remote
// store entirely and all tasks live in the in-process fallback.
type StoreConfig struct {
	URL string
	TTL time.Duration
}

// Limits groups the concurrency and recursion bounds.
type Limits struct {
	MaxConcurrentGenerations   int
	MaxConcurrentVerifications int
	VerificationTimeout        time.Duration
	MetaRecursionLimit         int
	TeamRecursionLimit         int
	MaxToolRounds              int
}

// QueueConfig controls the background worker pool.
type QueueConfig struct {
	// WorkerCount is the number of worker goroutines draining the job queue.
	WorkerCount int

	// QueueDepth is the job channel capacity; Enqueue fails once it is full.
	QueueDepth int

	// GracefulShutdownTimeout is the max time to wait for in-flight jobs
	// during shutdown before they are cancelled.
	GracefulShutdownTimeout time.Duration
}

// DefaultQueueConfig returns the built-in queue defaults.
func DefaultQueueConfig() QueueConfig {
	return QueueConfig{
		WorkerCount:             8,
		QueueDepth:              256,
		GracefulShutdownTimeout: 30 * time.Second,
	}
}

// FromEnv builds the configuration from environment variables, applying
// defaults from the recognized-options table. Returns an error for values
// that fail to parse or fall outside their valid range.
func FromEnv() (*Config, error) {
	cfg := &Config{
		HTTPPort: getEnv("HTTP_PORT", "8000"),
		LLM: LLMConfig{
			APIKey:      os.Getenv("LLM_API_KEY"),
			Model:       getEnv("LLM_MODEL", "gpt-4o-mini"),
			CallTimeout: 60 * time.Second,
		},
		Search: SearchConfig{
			APIKey:     os.Getenv("SEARCH_API_KEY"),
			BaseURL:    getEnv("SEARCH_BASE_URL", "https://api.tavily.com"),
			MaxResults: 5,
		},
		Store: StoreConfig{
			URL: os.Getenv("STORE_URL"),
		},
		Queue: DefaultQueueConfig(),
		Roles: BuiltinRoles(),
	}

	temp, err := getEnvFloat("LLM_TEMPERATURE", 0.3)
	if err != nil {
		return nil, err
	}
	cfg.LLM.Temperature = float32(temp)

	ttlSeconds, err := getEnvInt("STORE_TTL_SECONDS", 7200)
	if err != nil {
		return nil, err
	}
	cfg.Store.TTL = time.Duration(ttlSeconds) * time.Second

	if cfg.Limits.MaxConcurrentGenerations, err = getEnvInt("MAX_CONCURRENT_GENERATIONS", 3); err != nil {
		return nil, err
	}
	if cfg.Limits.MaxConcurrentVerifications, err = getEnvInt("MAX_CONCURRENT_VERIFICATIONS", 5); err != nil {
		return nil, err
	}
	verifSeconds, err := getEnvInt("VERIFICATION_TIMEOUT_SECONDS", 120)
	if err != nil {
		return nil, err
	}
	cfg.Limits.VerificationTimeout = time.Duration(verifSeconds) * time.Second
	if cfg.Limits.MetaRecursionLimit, err = getEnvInt("META_RECURSION_LIMIT", 50); err != nil {
		return nil, err
	}
	if cfg.Limits.TeamRecursionLimit, err = getEnvInt("TEAM_RECURSION_LIMIT", 25); err != nil {
		return nil, err
	}
	if cfg.Limits.MaxToolRounds, err = getEnvInt("MAX_TOOL_ROUNDS", 8); err != nil {
		return nil, err
	}
	if cfg.Queue.WorkerCount, err = getEnvInt("QUEUE_WORKER_COUNT", cfg.Queue.WorkerCount); err != nil {
		return nil, err
	}

	if rolesPath := os.Getenv("ROLES_CONFIG"); rolesPath != "" {
		if err := cfg.Roles.LoadOverrides(rolesPath); err != nil {
			return nil, fmt.Errorf("loading role overrides: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Limits.MaxConcurrentGenerations < 1 {
		return fmt.Errorf("MAX_CONCURRENT_GENERATIONS must be >= 1, got %d", c.Limits.MaxConcurrentGenerations)
	}
	if c.Limits.MaxConcurrentVerifications < 1 {
		return fmt.Errorf("MAX_CONCURRENT_VERIFICATIONS must be >= 1, got %d", c.Limits.MaxConcurrentVerifications)
	}
	if c.Limits.MetaRecursionLimit < 1 || c.Limits.TeamRecursionLimit < 1 {
		return fmt.Errorf("recursion limits must be >= 1")
	}
	if c.Limits.MaxToolRounds < 1 {
		return fmt.Errorf("MAX_TOOL_ROUNDS must be >= 1, got %d", c.Limits.MaxToolRounds)
	}
	if c.Store.TTL <= 0 {
		return fmt.Errorf("STORE_TTL_SECONDS must be positive")
	}
	if c.Queue.WorkerCount < 1 {
		return fmt.Errorf("QUEUE_WORKER_COUNT must be >= 1, got %d", c.Queue.WorkerCount)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not an integer", key, value)
	}
	return parsed, nil
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not a number", key, value)
	}
	return parsed, nil
}
