package engine

import (
	"context"
	"net/http"
	"time"
)

// CompleteFunc sends a prompt to the configured LLM and returns its raw text.
type CompleteFunc func(ctx context.Context, system, prompt string) (string, error)

// Config holds all engine configuration, injected from main.
type Config struct {
	LLMAPIKey      string
	LLMAPIBase     string
	LLMModel       string
	LLMTemperature float64
	LLMMaxTokens   int
	LLMRPM         int          // client-side requests per minute, 0 = unlimited
	LLMComplete    CompleteFunc // nil = draft generation disabled

	GoogleClientConfig string // OAuth client-secret JSON as downloaded from the Cloud console
	AppURL             string // OAuth redirect URL

	ChunkSize          int
	ChunkCooldown      time.Duration
	SplitChunksByVideo bool

	VideosTTL   time.Duration
	CommentsTTL time.Duration
	ReadRetries int // automatic retries of Data API reads, 0 = none

	CacheMaxEntries      int
	CacheCleanupInterval time.Duration

	DatabaseURL string
	SQLitePath  string
	RedisURL    string

	HTTPClient *http.Client
}

// Defaults for values that are not configured.
const (
	DefaultChunkSize     = 15
	DefaultChunkCooldown = 4 * time.Second
	DefaultVideosTTL     = 10 * time.Minute
	DefaultCommentsTTL   = 5 * time.Minute
)

var cfg Config

// Cfg exposes the engine configuration for sub-packages (sources, store).
// Always points to the current cfg value.
var Cfg = &cfg

// Init initializes the engine with the given configuration.
func Init(c Config) {
	if c.ChunkSize <= 0 || c.ChunkSize > DefaultChunkSize {
		c.ChunkSize = DefaultChunkSize
	}
	if c.ChunkCooldown < 0 {
		c.ChunkCooldown = DefaultChunkCooldown
	}
	if c.VideosTTL <= 0 {
		c.VideosTTL = DefaultVideosTTL
	}
	if c.CommentsTTL <= 0 {
		c.CommentsTTL = DefaultCommentsTTL
	}
	if c.ReadRetries < 0 {
		c.ReadRetries = 0
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: 15 * time.Second}
	}
	cfg = c
	Cfg = &cfg
}

// LLMConfigured reports whether draft generation can run.
func LLMConfigured() bool {
	return cfg.LLMComplete != nil && cfg.LLMAPIKey != ""
}

// OAuthConfigured reports whether the sign-in flow can run.
func OAuthConfigured() bool {
	return cfg.GoogleClientConfig != "" && cfg.AppURL != ""
}
