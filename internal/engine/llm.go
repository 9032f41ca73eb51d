package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrNotConfigured is returned when a feature's credentials are missing.
var ErrNotConfigured = errors.New("not configured")

// stripFences removes markdown code fences from LLM output.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// CallLLM sends a prompt through the configured completion function.
// Returns the response with code fences stripped.
func CallLLM(ctx context.Context, system, prompt string) (string, error) {
	if cfg.LLMComplete == nil {
		return "", fmt.Errorf("llm: %w", ErrNotConfigured)
	}
	metrics.LLMCalls.Add(1)
	resp, err := cfg.LLMComplete(ctx, system, prompt)
	if err != nil {
		metrics.LLMErrors.Add(1)
		return "", err
	}
	return stripFences(resp), nil
}

// decodeModelList decodes a JSON array from model output. The model may wrap
// the array in prose, which can itself contain brackets ("comments [1-2]"), so
// every '[' is tried in turn and the first non-empty array that decodes into v
// wins.
func decodeModelList(outputText string, v any) error {
	s := stripFences(outputText)
	if s == "" {
		return io.ErrUnexpectedEOF
	}

	if err := json.Unmarshal([]byte(s), v); err == nil {
		return nil
	}

	lastErr := fmt.Errorf("no JSON list found in model output (len=%d)", len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '[' {
			continue
		}
		var raw json.RawMessage
		if err := json.NewDecoder(strings.NewReader(s[i:])).Decode(&raw); err != nil {
			continue
		}
		var elems []json.RawMessage
		if json.Unmarshal(raw, &elems) != nil || len(elems) == 0 {
			continue
		}
		if err := json.Unmarshal(raw, v); err != nil {
			lastErr = fmt.Errorf("failed to unmarshal extracted list (len=%d): %w", len(raw), err)
			continue
		}
		return nil
	}
	return lastErr
}
