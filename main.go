// go_community: YouTube comment triage and reply drafting MCP server.
//
// A creator signs in with Google, attaches a script to each video, and the
// server drafts replies to unanswered comments in batches through an LLM.
// Nothing is posted until the creator approves a reply.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go-kit/llm"
	"github.com/anatolykoptev/go-mcpserver"
	"github.com/anatolykoptev/go_community/internal/communityserver"
	"github.com/anatolykoptev/go_community/internal/engine"
	"github.com/anatolykoptev/go_community/internal/engine/sources"
	"github.com/anatolykoptev/go_community/internal/engine/store"
	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var (
	version = "dev"
	mcpPort = "8893"
)

func main() {
	if err := godotenv.Load(); err == nil {
		slog.Info("loaded .env")
	}
	mcpPort = env.Str("MCP_PORT", mcpPort)

	c := initEngine()
	st := openStore(c)
	defer st.Close()

	var auth engine.Authenticator
	if engine.OAuthConfigured() {
		app, err := sources.NewOAuthApp(c.GoogleClientConfig, c.AppURL, c.HTTPClient)
		if err != nil {
			slog.Error("oauth client config invalid, sign-in disabled", slog.Any("error", err))
		} else {
			auth = app
		}
	} else {
		slog.Warn("GOOGLE_CLIENT_CONFIG or APP_URL not set, sign-in disabled")
	}
	if !engine.LLMConfigured() {
		slog.Warn("LLM_API_KEY not set, draft generation disabled")
	}

	svc := engine.NewService(auth, st, engine.NewLLMGenerator(c.LLMRPM))

	slog.Info("starting go_community",
		slog.String("port", mcpPort),
		slog.Int("chunk_size", engine.Cfg.ChunkSize),
	)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "go_community",
		Version: version,
	}, nil)

	n := communityserver.RegisterTools(server, svc)
	slog.Info("tools registered", slog.Int("count", n))

	if err := mcpserver.Run(server, mcpserver.Config{
		Name:         "go_community",
		Version:      version,
		Port:         mcpPort,
		WriteTimeout: 600 * time.Second,
		Metrics:      engine.FormatMetrics,
	}); err != nil {
		slog.Error("server failed", slog.Any("error", err))
	}
}

func initEngine() engine.Config {
	c := engine.Config{
		LLMAPIKey:            env.Str("LLM_API_KEY", ""),
		LLMAPIBase:           env.Str("LLM_API_BASE", "https://generativelanguage.googleapis.com/v1beta/openai"),
		LLMModel:             env.Str("LLM_MODEL", "gemini-2.5-flash"),
		LLMTemperature:       env.Float("LLM_TEMPERATURE", 0.7),
		LLMMaxTokens:         env.Int("LLM_MAX_TOKENS", 8192),
		LLMRPM:               env.Int("LLM_RPM", 0),
		GoogleClientConfig:   env.Str("GOOGLE_CLIENT_CONFIG", ""),
		AppURL:               env.Str("APP_URL", ""),
		ChunkSize:            env.Int("CHUNK_SIZE", engine.DefaultChunkSize),
		ChunkCooldown:        env.Duration("CHUNK_COOLDOWN", engine.DefaultChunkCooldown),
		SplitChunksByVideo:   env.Str("SPLIT_CHUNKS_BY_VIDEO", "") == "true",
		VideosTTL:            env.Duration("VIDEOS_TTL", engine.DefaultVideosTTL),
		CommentsTTL:          env.Duration("COMMENTS_TTL", engine.DefaultCommentsTTL),
		ReadRetries:          env.Int("YOUTUBE_READ_RETRIES", 0),
		CacheMaxEntries:      env.Int("CACHE_MAX_ENTRIES", 1000),
		CacheCleanupInterval: env.Duration("CACHE_CLEANUP_INTERVAL", 300*time.Second),
		DatabaseURL:          env.Str("DATABASE_URL", ""),
		SQLitePath:           env.Str("SQLITE_PATH", ""),
		RedisURL:             env.Str("REDIS_URL", ""),
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     60 * time.Second,
			},
		},
	}

	if c.LLMAPIKey != "" {
		client := llm.NewClient(c.LLMAPIBase, c.LLMAPIKey, c.LLMModel,
			llm.WithFallbackKeys(env.List("LLM_API_KEY_FALLBACKS", "")),
			llm.WithMaxTokens(c.LLMMaxTokens),
			llm.WithTemperature(c.LLMTemperature),
			llm.WithHTTPClient(&http.Client{Timeout: 120 * time.Second}),
		)
		c.LLMComplete = func(ctx context.Context, system, prompt string) (string, error) {
			return client.Complete(ctx, system, prompt)
		}
	}

	engine.Init(c)
	engine.InitCache(c.RedisURL, c.CacheMaxEntries, c.CacheCleanupInterval)
	return *engine.Cfg
}

// openStore opens Postgres or SQLite, and falls back to memory so the server
// still starts; scripts then last only for the process lifetime.
func openStore(c engine.Config) engine.Store {
	st, err := store.Open(context.Background(), c.DatabaseURL, c.SQLitePath)
	if err != nil {
		slog.Warn("store init failed, scripts will not persist", slog.Any("error", err))
		return store.NewMemory()
	}
	return st
}
