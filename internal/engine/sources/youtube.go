package sources

// YouTube Data API v3 client for the signed-in creator, split by responsibility:
//   youtube_auth.go:     OAuth2 consent + token exchange (engine.Authenticator)
//   youtube.go:          HTTP primitives, channel id and video listing
//   youtube_comments.go: comment thread paging and the unanswered filter
//   youtube_dispatch.go: replies and likes (engine.Dispatcher)
//   youtube_text.go:     comment HTML to plain text

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/anatolykoptev/go_community/internal/engine"
)

// ytDataAPIBase is a var so tests can point it at httptest.
var ytDataAPIBase = "https://www.googleapis.com/youtube/v3"

// maxErrorBody caps how much of an error response is read.
const maxErrorBody = 64 << 10

// YouTube talks to the Data API with an OAuth2-authorized client.
type YouTube struct {
	hc      *http.Client
	base    string
	backoff engine.Backoff
}

var _ engine.Channel = (*YouTube)(nil)

// NewYouTube returns a client using hc, which must attach the creator's token.
func NewYouTube(hc *http.Client) *YouTube {
	return &YouTube{hc: hc, base: ytDataAPIBase, backoff: engine.ReadBackoff()}
}

// APIError is a non-2xx Data API response.
type APIError struct {
	Status  int
	Reason  string
	Message string
}

func (e *APIError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("youtube api %d %s: %s", e.Status, e.Reason, e.Message)
	}
	return fmt.Sprintf("youtube api %d: %s", e.Status, e.Message)
}

// HTTPStatus implements engine.HTTPStatusError.
func (e *APIError) HTTPStatus() int { return e.Status }

type apiErrorBody struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Errors  []struct {
			Reason string `json:"reason"`
		} `json:"errors"`
	} `json:"error"`
}

func parseAPIError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	apiErr := &APIError{Status: resp.StatusCode}
	var eb apiErrorBody
	if json.Unmarshal(body, &eb) == nil && eb.Error.Message != "" {
		apiErr.Message = eb.Error.Message
		if len(eb.Error.Errors) > 0 {
			apiErr.Reason = eb.Error.Errors[0].Reason
		}
	} else {
		apiErr.Message = engine.TruncateRunes(strings.TrimSpace(string(body)), 200, "...")
	}
	return apiErr
}

// do sends one request and decodes a JSON response into out. GETs may be
// retried on rate limits and 5xx when read retries are configured.
func (y *YouTube) do(ctx context.Context, method, resource string, q url.Values, body, out any) error {
	engine.IncrYouTubeRequests()
	var err error
	if method == http.MethodGet {
		err = engine.Retry(ctx, y.backoff, resource, func() error {
			return y.roundTrip(ctx, method, resource, q, nil, out)
		})
	} else {
		err = y.roundTrip(ctx, method, resource, q, body, out)
	}
	if err != nil {
		engine.IncrYouTubeErrors()
	}
	return err
}

func (y *YouTube) roundTrip(ctx context.Context, method, resource string, q url.Values, body, out any) error {
	apiURL := y.base + "/" + resource + "?" + q.Encode()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("youtube %s: encode: %w", resource, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, apiURL, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := y.hc.Do(req)
	if err != nil {
		return fmt.Errorf("youtube %s: %w", resource, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("youtube %s: %w", resource, parseAPIError(resp))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("youtube %s: decode: %w", resource, err)
	}
	return nil
}

// ChannelID returns the id of the creator's own channel.
func (y *YouTube) ChannelID(ctx context.Context) (string, error) {
	var result struct {
		Items []struct {
			ID string `json:"id"`
		} `json:"items"`
	}
	q := url.Values{"part": {"id"}, "mine": {"true"}}
	if err := y.do(ctx, http.MethodGet, "channels", q, nil, &result); err != nil {
		return "", err
	}
	if len(result.Items) == 0 {
		return "", fmt.Errorf("youtube channels: account has no channel")
	}
	return result.Items[0].ID, nil
}

type searchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			Title      string `json:"title"`
			Thumbnails map[string]struct {
				URL string `json:"url"`
			} `json:"thumbnails"`
		} `json:"snippet"`
	} `json:"items"`
}

// ListVideos returns up to 50 of the creator's own videos.
func (y *YouTube) ListVideos(ctx context.Context) ([]engine.Video, error) {
	q := url.Values{
		"part":       {"snippet"},
		"forMine":    {"true"},
		"type":       {"video"},
		"maxResults": {"50"},
	}
	var result searchResponse
	if err := y.do(ctx, http.MethodGet, "search", q, nil, &result); err != nil {
		return nil, err
	}

	videos := make([]engine.Video, 0, len(result.Items))
	for _, item := range result.Items {
		if item.ID.VideoID == "" {
			continue
		}
		thumb := item.Snippet.Thumbnails["medium"].URL
		if thumb == "" {
			thumb = item.Snippet.Thumbnails["default"].URL
		}
		videos = append(videos, engine.Video{
			ID:           item.ID.VideoID,
			Title:        CommentText(item.Snippet.Title),
			ThumbnailURL: thumb,
		})
	}
	return videos, nil
}
