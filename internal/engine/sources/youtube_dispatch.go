package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/anatolykoptev/go_community/internal/engine"
)

// PostReply inserts text as a reply to the thread's top-level comment.
func (y *YouTube) PostReply(ctx context.Context, parentID, text string) (string, error) {
	body := map[string]any{
		"snippet": map[string]string{
			"parentId":     parentID,
			"textOriginal": text,
		},
	}
	var result commentResource
	if err := y.do(ctx, http.MethodPost, "comments", url.Values{"part": {"snippet"}}, body, &result); err != nil {
		return "", err
	}
	if result.ID == "" {
		return "", fmt.Errorf("youtube comments: insert returned no id")
	}
	return result.ID, nil
}

// Like always fails: the Data API has no rating endpoint for comments.
func (y *YouTube) Like(_ context.Context, commentID string) error {
	return fmt.Errorf("comment %s: %w", commentID, engine.ErrLikeUnsupported)
}
