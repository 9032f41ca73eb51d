package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"
)

// Metrics tracks operational counters across the engine.
var metrics struct {
	LLMCalls        atomic.Int64
	LLMErrors       atomic.Int64
	YouTubeRequests atomic.Int64
	YouTubeErrors   atomic.Int64
	TriageRuns      atomic.Int64
	ChunksProcessed atomic.Int64
	ChunksUnparsed  atomic.Int64
	DraftsGenerated atomic.Int64
	RepliesPosted   atomic.Int64
	ReplyFailures   atomic.Int64
	Likes           atomic.Int64
}

var metricKeys = []string{
	"llm_calls", "llm_errors",
	"youtube_requests", "youtube_errors",
	"triage_runs", "chunks_processed", "chunks_unparsed", "drafts_generated",
	"replies_posted", "reply_failures", "likes",
	"cache_hits", "cache_misses",
}

// GetMetrics returns a snapshot of all metrics including cache stats.
func GetMetrics() map[string]int64 {
	hits, misses := CacheStats()
	return map[string]int64{
		"llm_calls":        metrics.LLMCalls.Load(),
		"llm_errors":       metrics.LLMErrors.Load(),
		"youtube_requests": metrics.YouTubeRequests.Load(),
		"youtube_errors":   metrics.YouTubeErrors.Load(),
		"triage_runs":      metrics.TriageRuns.Load(),
		"chunks_processed": metrics.ChunksProcessed.Load(),
		"chunks_unparsed":  metrics.ChunksUnparsed.Load(),
		"drafts_generated": metrics.DraftsGenerated.Load(),
		"replies_posted":   metrics.RepliesPosted.Load(),
		"reply_failures":   metrics.ReplyFailures.Load(),
		"likes":            metrics.Likes.Load(),
		"cache_hits":       hits,
		"cache_misses":     misses,
	}
}

// FormatMetrics returns metrics as a simple text format for HTTP endpoint.
func FormatMetrics() string {
	m := GetMetrics()
	var sb strings.Builder
	for _, k := range metricKeys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}

// Incrementors for the sources/ sub-package.
func IncrYouTubeRequests() { metrics.YouTubeRequests.Add(1) }
func IncrYouTubeErrors()   { metrics.YouTubeErrors.Add(1) }

// TrackOperation logs a warning if an operation takes longer than threshold.
func TrackOperation(ctx context.Context, name string, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	if elapsed > 5*time.Second {
		slog.Warn("slow operation", slog.String("op", name), slog.Duration("elapsed", elapsed))
	}
	return err
}
