package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// Service runs the creator's commands against a session.
type Service struct {
	Auth     Authenticator // nil when OAuth is not configured
	Store    Store
	Gen      DraftGenerator
	Coord    *Coordinator
	Sessions *Sessions
}

// NewService wires a service from its collaborators and the engine config.
func NewService(auth Authenticator, store Store, gen DraftGenerator) *Service {
	return &Service{
		Auth:     auth,
		Store:    store,
		Gen:      gen,
		Coord:    NewCoordinator(gen),
		Sessions: &Sessions{},
	}
}

// StartAuth opens a session and returns the consent URL for it.
func (s *Service) StartAuth() (AuthStartOutput, error) {
	if s.Auth == nil {
		return AuthStartOutput{}, fmt.Errorf("sign in: %w: set GOOGLE_CLIENT_CONFIG and APP_URL", ErrNotConfigured)
	}
	sess := s.Sessions.New()
	slog.Info("session: started", slog.String("session", sess.ID))
	return AuthStartOutput{SessionID: sess.ID, AuthURL: s.Auth.AuthURL(sess.ID)}, nil
}

// FinishAuth exchanges the OAuth code and signs the session in.
func (s *Service) FinishAuth(ctx context.Context, sessionID, code string) (SessionOutput, error) {
	if s.Auth == nil {
		return SessionOutput{}, fmt.Errorf("sign in: %w", ErrNotConfigured)
	}
	sess, release, err := s.Sessions.Acquire(sessionID)
	if err != nil {
		return SessionOutput{}, err
	}
	defer release()

	if err := sess.expect("sign in", StateUnauthenticated); err != nil {
		return SessionOutput{}, err
	}
	tok, err := s.Auth.Exchange(ctx, code)
	if err != nil {
		return SessionOutput{}, fmt.Errorf("token exchange: %w", err)
	}
	ch := s.Auth.Channel(tok)
	channelID, err := ch.ChannelID(ctx)
	if err != nil {
		return SessionOutput{}, fmt.Errorf("channel lookup: %w", err)
	}
	if err := sess.authenticate(channelID, tok, ch); err != nil {
		return SessionOutput{}, err
	}
	slog.Info("session: signed in", slog.String("session", sess.ID), slog.String("channel", channelID))
	return sessionOutput(sess, "connected to YouTube"), nil
}

// SignOut tears the session down.
func (s *Service) SignOut(sessionID string) (SessionOutput, error) {
	sess, release, err := s.Sessions.Acquire(sessionID)
	if err != nil {
		return SessionOutput{}, err
	}
	defer release()
	s.Sessions.Remove(sess)
	slog.Info("session: signed out", slog.String("session", sessionID))
	return SessionOutput{SessionID: sessionID, State: "signed_out", Message: "session closed"}, nil
}

// Videos lists the channel's videos and whether each has a script.
func (s *Service) Videos(ctx context.Context, sessionID string) (VideosOutput, error) {
	sess, release, err := s.Sessions.Acquire(sessionID)
	if err != nil {
		return VideosOutput{}, err
	}
	defer release()
	if err := sess.authed("list videos"); err != nil {
		return VideosOutput{}, err
	}

	videos, err := s.channelVideos(ctx, sess)
	if err != nil {
		return VideosOutput{}, err
	}
	scripts, err := s.Store.Scripts(ctx, sess.UserID)
	if err != nil {
		return VideosOutput{}, fmt.Errorf("load scripts: %w", err)
	}
	out := VideosOutput{Videos: make([]VideoView, 0, len(videos))}
	for _, v := range videos {
		_, has := scripts[v.ID]
		out.Videos = append(out.Videos, VideoView{Video: v, HasScript: has})
	}
	return out, nil
}

// SetScript stores the script for a video.
func (s *Service) SetScript(ctx context.Context, sessionID, videoID, script string) (ScriptsOutput, error) {
	if videoID == "" {
		return ScriptsOutput{}, errors.New("video_id is required")
	}
	return s.withScripts(ctx, sessionID, "save script", func(userID string) error {
		return s.Store.SetScript(ctx, userID, videoID, script)
	})
}

// DeleteScript removes the script for a video.
func (s *Service) DeleteScript(ctx context.Context, sessionID, videoID string) (ScriptsOutput, error) {
	return s.withScripts(ctx, sessionID, "delete script", func(userID string) error {
		return s.Store.DeleteScript(ctx, userID, videoID)
	})
}

// Scripts returns every script of the signed-in user.
func (s *Service) Scripts(ctx context.Context, sessionID string) (ScriptsOutput, error) {
	return s.withScripts(ctx, sessionID, "list scripts", nil)
}

func (s *Service) withScripts(ctx context.Context, sessionID, action string, fn func(userID string) error) (ScriptsOutput, error) {
	sess, release, err := s.Sessions.Acquire(sessionID)
	if err != nil {
		return ScriptsOutput{}, err
	}
	defer release()
	if err := sess.authed(action); err != nil {
		return ScriptsOutput{}, err
	}
	if fn != nil {
		if err := fn(sess.UserID); err != nil {
			return ScriptsOutput{}, fmt.Errorf("%s: %w", action, err)
		}
	}
	scripts, err := s.Store.Scripts(ctx, sess.UserID)
	if err != nil {
		return ScriptsOutput{}, fmt.Errorf("load scripts: %w", err)
	}
	return ScriptsOutput{Scripts: scripts}, nil
}

// RunTriage collects unanswered comments on every video that has a script,
// replaces the queue with them and drafts replies in batches.
func (s *Service) RunTriage(ctx context.Context, sessionID string) (QueueOutput, error) {
	sess, release, err := s.Sessions.Acquire(sessionID)
	if err != nil {
		return QueueOutput{}, err
	}
	defer release()
	if err := sess.expect("triage", StateAuthenticated, StateQueuePopulated, StateReviewing); err != nil {
		return QueueOutput{}, err
	}
	if !LLMConfigured() {
		return QueueOutput{}, fmt.Errorf("triage: %w: set LLM_API_KEY to generate drafts", ErrNotConfigured)
	}

	videos, err := s.channelVideos(ctx, sess)
	if err != nil {
		return QueueOutput{}, err
	}
	scripts, err := s.Store.Scripts(ctx, sess.UserID)
	if err != nil {
		return QueueOutput{}, fmt.Errorf("load scripts: %w", err)
	}

	var withContext []Video
	for _, v := range videos {
		if _, ok := scripts[v.ID]; ok {
			withContext = append(withContext, v)
		}
	}
	if len(withContext) == 0 {
		return queueOutput(sess, "no videos with context: add a script to at least one video first"), nil
	}

	var items []*PendingItem
	var failed int
	for _, v := range withContext {
		threads, err := s.unanswered(ctx, sess, v.ID)
		if err != nil {
			failed++
			slog.Warn("triage: comments unavailable", slog.String("video", v.ID), slog.Any("error", err))
			continue
		}
		for _, t := range threads {
			if sess.answered[t.ID] {
				continue
			}
			items = append(items, &PendingItem{
				ID:         t.ID,
				Token:      uuid.NewString(),
				VideoTitle: v.Title,
				Thread:     t,
			})
		}
	}

	if err := sess.populate(items); err != nil {
		return QueueOutput{}, err
	}
	if len(items) == 0 {
		msg := "no unanswered comments on videos with context"
		if failed > 0 {
			msg = fmt.Sprintf("%s (%d videos could not be read)", msg, failed)
		}
		return queueOutput(sess, msg), nil
	}

	var report RunReport
	_ = TrackOperation(ctx, "triage.drafts", func(ctx context.Context) error {
		report = s.Coord.Run(ctx, items, scripts)
		return nil
	})
	sess.LastReport = &report

	msg := fmt.Sprintf("%d unanswered comments, %d drafted", report.Items, report.Drafted)
	if failed > 0 {
		msg += fmt.Sprintf(", %d videos could not be read", failed)
	}
	return queueOutput(sess, msg), nil
}

// Queue returns the pending items and the last run report.
func (s *Service) Queue(sessionID string) (QueueOutput, error) {
	sess, release, err := s.Sessions.Acquire(sessionID)
	if err != nil {
		return QueueOutput{}, err
	}
	defer release()
	if err := sess.expect("list queue", StateQueuePopulated, StateReviewing); err != nil {
		return QueueOutput{}, err
	}
	return queueOutput(sess, ""), nil
}

// Regenerate drafts one item again with the video's current script.
func (s *Service) Regenerate(ctx context.Context, sessionID, itemID string) (ItemOutput, error) {
	return s.reviewItem(sessionID, itemID, "regenerate", func(sess *Session, it *PendingItem) (string, error) {
		if !LLMConfigured() {
			return "", fmt.Errorf("regenerate: %w: set LLM_API_KEY", ErrNotConfigured)
		}
		scripts, err := s.Store.Scripts(ctx, sess.UserID)
		if err != nil {
			return "", fmt.Errorf("load scripts: %w", err)
		}
		instructions, clean := ProcessScript(scripts[it.Thread.VideoID])
		draft := s.Gen.Draft(ctx, clean, it.Thread.Top.Text, instructions)
		if err := sess.Queue.SetDraft(it.ID, draft); err != nil {
			return "", err
		}
		if draft == DraftFailed {
			return "generation failed, try again or edit the draft", nil
		}
		return "draft regenerated", nil
	})
}

// EditDraft replaces an item's draft with the creator's text.
func (s *Service) EditDraft(sessionID, itemID, text string) (ItemOutput, error) {
	return s.reviewItem(sessionID, itemID, "edit", func(sess *Session, it *PendingItem) (string, error) {
		if err := sess.Queue.Edit(it.ID, text); err != nil {
			return "", err
		}
		return "draft updated", nil
	})
}

// Approve posts the reply and removes the item once the post succeeded.
func (s *Service) Approve(ctx context.Context, sessionID, itemID, text string) (ItemOutput, error) {
	sess, release, err := s.Sessions.Acquire(sessionID)
	if err != nil {
		return ItemOutput{}, err
	}
	defer release()
	if err := sess.review("approve"); err != nil {
		return ItemOutput{}, err
	}

	it, err := sess.Queue.Get(itemID)
	if err != nil {
		return ItemOutput{}, err
	}
	threadID, videoID := it.Thread.ID, it.Thread.VideoID

	poster := ledgerPoster{disp: sess.channel, ledger: s.Store}
	var replyID string
	err = TrackOperation(ctx, "reply.post", func(ctx context.Context) error {
		var err error
		replyID, err = sess.Queue.Approve(ctx, itemID, text, poster)
		return err
	})
	if err != nil {
		slog.Warn("reply: post failed", slog.String("item", itemID), slog.Any("error", err))
		out := ItemOutput{Message: "reply not posted: " + err.Error()}
		if it, gerr := sess.Queue.Get(itemID); gerr == nil {
			out.Item = it
		}
		return out, err
	}
	// The cached thread list still counts this thread as unanswered.
	sess.markAnswered(threadID)
	CacheDelete(ctx, CacheKey("comments", sess.UserID, videoID))
	slog.Info("reply: posted", slog.String("item", itemID), slog.String("reply", replyID))
	return ItemOutput{Message: "reply posted"}, nil
}

// Discard drops an item from the queue.
func (s *Service) Discard(sessionID, itemID string) (ItemOutput, error) {
	sess, release, err := s.Sessions.Acquire(sessionID)
	if err != nil {
		return ItemOutput{}, err
	}
	defer release()
	if err := sess.review("discard"); err != nil {
		return ItemOutput{}, err
	}
	if err := sess.Queue.Discard(itemID); err != nil {
		return ItemOutput{}, err
	}
	return ItemOutput{Message: "discarded"}, nil
}

// Like applies a like to the item's top comment. The intent is recorded even
// when the comment API refuses it.
func (s *Service) Like(ctx context.Context, sessionID, itemID string) (ItemOutput, error) {
	return s.reviewItem(sessionID, itemID, "like", func(sess *Session, it *PendingItem) (string, error) {
		if err := s.Store.RecordLike(ctx, sess.UserID, it.Thread.Top.ID); err != nil {
			slog.Warn("like: record failed", slog.Any("error", err))
		}
		if err := sess.channel.Like(ctx, it.Thread.Top.ID); err != nil {
			if errors.Is(err, ErrLikeUnsupported) {
				it.Liked = true
				return "like recorded locally; " + err.Error(), nil
			}
			return "", fmt.Errorf("like: %w", err)
		}
		it.Liked = true
		metrics.Likes.Add(1)
		return "liked", nil
	})
}

func (s *Service) reviewItem(sessionID, itemID, action string, fn func(*Session, *PendingItem) (string, error)) (ItemOutput, error) {
	sess, release, err := s.Sessions.Acquire(sessionID)
	if err != nil {
		return ItemOutput{}, err
	}
	defer release()
	if err := sess.review(action); err != nil {
		return ItemOutput{}, err
	}
	it, err := sess.Queue.Get(itemID)
	if err != nil {
		return ItemOutput{}, err
	}
	msg, err := fn(sess, it)
	if err != nil {
		return ItemOutput{Item: it, Message: err.Error()}, err
	}
	return ItemOutput{Item: it, Message: msg}, nil
}

func (s *Service) channelVideos(ctx context.Context, sess *Session) ([]Video, error) {
	videos, err := CachedFetch(ctx, CacheKey("videos", sess.UserID), cfg.VideosTTL, sess.channel.ListVideos)
	if err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}
	return videos, nil
}

func (s *Service) unanswered(ctx context.Context, sess *Session, videoID string) ([]CommentThread, error) {
	return CachedFetch(ctx, CacheKey("comments", sess.UserID, videoID), cfg.CommentsTTL,
		func(ctx context.Context) ([]CommentThread, error) {
			return sess.channel.ListUnanswered(ctx, videoID)
		})
}

func sessionOutput(sess *Session, msg string) SessionOutput {
	return SessionOutput{SessionID: sess.ID, State: string(sess.State), ChannelID: sess.UserID, Message: msg}
}

func queueOutput(sess *Session, msg string) QueueOutput {
	items := make([]PendingItem, 0, sess.Queue.Len())
	for _, it := range sess.Queue.List() {
		items = append(items, *it)
	}
	return QueueOutput{State: string(sess.State), Items: items, LastReport: sess.LastReport, Message: msg}
}
