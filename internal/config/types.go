package config

import "time"

// supported state backends
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

type Config struct {
	Port        string
	Environment string

	// llm provider settings
	LLMProvider  string
	OpenAIKey    string
	AnthropicKey string
	LLMModel     string
	LLMBaseURL   string

	// state backend settings
	StateBackend string
	RedisURL     string
	DatabaseURL  string
	SQLitePath   string

	JWTSecret   string
	RateLimit   string // ulule limiter format, e.g. "60-M"
	SessionTTL  time.Duration
	CORSOrigins []string
}

// flags for the terminal client
type Flags struct {
	Endpoint  string
	SessionID string
	Token     string
}
