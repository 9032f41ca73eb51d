package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/oauth2"
)

// ErrLikeUnsupported is returned by dispatchers that cannot rate comments.
var ErrLikeUnsupported = errors.New("liking comments is not supported by the comment API")

// Reply ledger states.
const (
	ReplyInFlight = "in_flight"
	ReplyPosted   = "posted"
)

// Dispatcher performs the creator's outward actions on comments.
type Dispatcher interface {
	PostReply(ctx context.Context, parentID, text string) (replyID string, err error)
	// HasReply reports whether parentID already has a reply with exactly text.
	HasReply(ctx context.Context, parentID, text string) (bool, error)
	Like(ctx context.Context, commentID string) error
}

// Channel is the signed-in creator's view of their channel.
type Channel interface {
	ChannelID(ctx context.Context) (string, error)
	ListVideos(ctx context.Context) ([]Video, error)
	// ListUnanswered returns the video's top-level threads with zero replies.
	ListUnanswered(ctx context.Context, videoID string) ([]CommentThread, error)
	Dispatcher
}

// Authenticator runs the OAuth handshake and opens a Channel for a token.
type Authenticator interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
	Channel(tok *oauth2.Token) Channel
}

// ScriptStore persists scripts keyed by (user, video).
type ScriptStore interface {
	SetScript(ctx context.Context, userID, videoID, script string) error
	Scripts(ctx context.Context, userID string) (map[string]string, error)
	DeleteScript(ctx context.Context, userID, videoID string) error
}

// ReplyLedger records reply attempts by idempotency token, and likes.
type ReplyLedger interface {
	MarkInFlight(ctx context.Context, token, parentID, text string) error
	MarkPosted(ctx context.Context, token, replyID string) error
	// ReplyStatus returns "" when the token was never seen.
	ReplyStatus(ctx context.Context, token string) (string, error)
	RecordLike(ctx context.Context, userID, commentID string) error
}

// Store is the persistence surface used by the service.
type Store interface {
	ScriptStore
	ReplyLedger
	Close()
}

// ledgerPoster posts replies at most once per item token. An attempt left in
// flight by an ambiguous failure is reconciled against the thread's replies
// before posting again.
type ledgerPoster struct {
	disp   Dispatcher
	ledger ReplyLedger
}

func (p ledgerPoster) PostReply(ctx context.Context, item *PendingItem, text string) (string, error) {
	status, err := p.ledger.ReplyStatus(ctx, item.Token)
	if err != nil {
		return "", fmt.Errorf("reply ledger: %w", err)
	}
	switch status {
	case ReplyPosted:
		return "", nil
	case ReplyInFlight:
		found, err := p.disp.HasReply(ctx, item.Thread.ID, text)
		if err != nil {
			return "", fmt.Errorf("reconcile reply: %w", err)
		}
		if found {
			slog.Info("reply: earlier attempt had landed", slog.String("thread", item.Thread.ID))
			if err := p.ledger.MarkPosted(ctx, item.Token, ""); err != nil {
				slog.Warn("reply ledger: mark posted failed", slog.Any("error", err))
			}
			return "", nil
		}
	}

	if err := p.ledger.MarkInFlight(ctx, item.Token, item.Thread.ID, text); err != nil {
		return "", fmt.Errorf("reply ledger: %w", err)
	}
	replyID, err := p.disp.PostReply(ctx, item.Thread.ID, text)
	if err != nil {
		return "", err
	}
	if err := p.ledger.MarkPosted(ctx, item.Token, replyID); err != nil {
		slog.Warn("reply ledger: mark posted failed", slog.Any("error", err))
	}
	return replyID, nil
}
