package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/time/rate"
)

// DraftFailed is returned by Draft in place of a reply when generation fails.
const DraftFailed = "[draft generation failed, regenerate or write the reply yourself]"

// DraftGenerator produces reply drafts.
type DraftGenerator interface {
	// GenerateBatch returns the raw model text for an ordered list of comments.
	GenerateBatch(ctx context.Context, script, instructions string, comments []string) (string, error)
	// Draft returns a single reply, or DraftFailed.
	Draft(ctx context.Context, script, comment, instructions string) string
}

// LLMGenerator drafts replies through CallLLM.
type LLMGenerator struct {
	limiter *rate.Limiter // nil = unlimited
}

// NewLLMGenerator returns a generator throttled to rpm requests per minute (0 = unlimited).
func NewLLMGenerator(rpm int) *LLMGenerator {
	g := &LLMGenerator{}
	if rpm > 0 {
		g.limiter = rate.NewLimiter(rate.Limit(float64(rpm)/60.0), 1)
	}
	return g
}

func (g *LLMGenerator) wait(ctx context.Context) error {
	if g.limiter == nil {
		return nil
	}
	if err := g.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("llm throttle: %w", err)
	}
	return nil
}

// GenerateBatch implements DraftGenerator.
func (g *LLMGenerator) GenerateBatch(ctx context.Context, script, instructions string, comments []string) (string, error) {
	if err := g.wait(ctx); err != nil {
		return "", err
	}
	return CallLLM(ctx, replySystem, BuildBatchPrompt(script, instructions, comments))
}

// Draft implements DraftGenerator.
func (g *LLMGenerator) Draft(ctx context.Context, script, comment, instructions string) string {
	if err := g.wait(ctx); err != nil {
		slog.Warn("draft: throttle wait failed", slog.Any("error", err))
		return DraftFailed
	}
	raw, err := CallLLM(ctx, replySystem, BuildSinglePrompt(script, comment, instructions))
	if err != nil {
		slog.Warn("draft: generation failed", slog.Any("error", err))
		return DraftFailed
	}
	text := strings.TrimSpace(raw)
	if text == "" {
		slog.Warn("draft: empty response")
		return DraftFailed
	}
	metrics.DraftsGenerated.Add(1)
	return text
}
