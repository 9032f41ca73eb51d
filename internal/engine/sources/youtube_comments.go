package sources

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/anatolykoptev/go_community/internal/engine"
)

// maxCommentPages bounds paging on videos with very large comment sections.
var maxCommentPages = 50

type commentSnippet struct {
	AuthorDisplayName     string `json:"authorDisplayName"`
	AuthorProfileImageURL string `json:"authorProfileImageUrl"`
	TextDisplay           string `json:"textDisplay"`
	TextOriginal          string `json:"textOriginal"`
}

type commentResource struct {
	ID      string         `json:"id"`
	Snippet commentSnippet `json:"snippet"`
}

type threadsResponse struct {
	NextPageToken string `json:"nextPageToken"`
	Items         []struct {
		ID      string `json:"id"`
		Snippet struct {
			VideoID         string          `json:"videoId"`
			TopLevelComment commentResource `json:"topLevelComment"`
			TotalReplyCount int             `json:"totalReplyCount"`
		} `json:"snippet"`
	} `json:"items"`
}

// ListUnanswered pages through the video's comment threads and keeps those
// with no replies.
func (y *YouTube) ListUnanswered(ctx context.Context, videoID string) ([]engine.CommentThread, error) {
	q := url.Values{
		"part":       {"snippet"},
		"videoId":    {videoID},
		"maxResults": {"100"},
		"textFormat": {"html"},
	}

	var out []engine.CommentThread
	for page := 0; page < maxCommentPages; page++ {
		var result threadsResponse
		if err := y.do(ctx, http.MethodGet, "commentThreads", q, nil, &result); err != nil {
			return nil, err
		}
		for _, item := range result.Items {
			top := item.Snippet.TopLevelComment
			thread := engine.CommentThread{
				ID:      item.ID,
				VideoID: videoID,
				Top: engine.TopComment{
					ID:        top.ID,
					Author:    top.Snippet.AuthorDisplayName,
					AvatarURL: top.Snippet.AuthorProfileImageURL,
					Text:      CommentText(top.Snippet.TextDisplay),
				},
				ReplyCount: item.Snippet.TotalReplyCount,
			}
			if thread.Unanswered() {
				out = append(out, thread)
			}
		}
		if result.NextPageToken == "" {
			break
		}
		if page == maxCommentPages-1 {
			slog.Warn("youtube: comment paging capped, older threads skipped",
				slog.String("video", videoID), slog.Int("pages", maxCommentPages),
				slog.Int("unanswered", len(out)))
			break
		}
		q.Set("pageToken", result.NextPageToken)
	}
	return out, nil
}

type commentsResponse struct {
	NextPageToken string            `json:"nextPageToken"`
	Items         []commentResource `json:"items"`
}

// HasReply reports whether the thread already holds a reply with exactly text.
func (y *YouTube) HasReply(ctx context.Context, parentID, text string) (bool, error) {
	q := url.Values{
		"part":       {"snippet"},
		"parentId":   {parentID},
		"maxResults": {"100"},
		"textFormat": {"plainText"},
	}
	want := strings.TrimSpace(text)
	for page := 0; page < maxCommentPages; page++ {
		var result commentsResponse
		if err := y.do(ctx, http.MethodGet, "comments", q, nil, &result); err != nil {
			return false, err
		}
		for _, c := range result.Items {
			if strings.TrimSpace(c.Snippet.TextOriginal) == want {
				return true, nil
			}
		}
		if result.NextPageToken == "" {
			break
		}
		q.Set("pageToken", result.NextPageToken)
	}
	return false, nil
}
