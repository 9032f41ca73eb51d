package engine

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sync"

	"golang.org/x/oauth2"
)

// fakeChannel is an in-memory YouTube channel.
type fakeChannel struct {
	id       string
	videos   []Video
	threads  map[string][]CommentThread
	postErr  error
	likeErr  error
	posted   []string // "parent:text"
	existing map[string]string
	calls    map[string]int
}

func newFakeChannel() *fakeChannel {
	return &fakeChannel{
		id:       "UC-creator",
		threads:  make(map[string][]CommentThread),
		existing: make(map[string]string),
		calls:    make(map[string]int),
		likeErr:  ErrLikeUnsupported,
	}
}

func (f *fakeChannel) ChannelID(context.Context) (string, error) { return f.id, nil }

func (f *fakeChannel) ListVideos(context.Context) ([]Video, error) {
	f.calls["videos"]++
	return f.videos, nil
}

func (f *fakeChannel) ListUnanswered(_ context.Context, videoID string) ([]CommentThread, error) {
	f.calls["comments:"+videoID]++
	threads, ok := f.threads[videoID]
	if !ok {
		return nil, fmt.Errorf("commentThreads %s: 403 commentsDisabled", videoID)
	}
	return threads, nil
}

func (f *fakeChannel) PostReply(_ context.Context, parentID, text string) (string, error) {
	f.calls["post"]++
	if f.postErr != nil {
		return "", f.postErr
	}
	f.posted = append(f.posted, parentID+":"+text)
	f.existing[parentID] = text
	return "reply-" + parentID, nil
}

func (f *fakeChannel) HasReply(_ context.Context, parentID, text string) (bool, error) {
	f.calls["has_reply"]++
	return f.existing[parentID] == text, nil
}

func (f *fakeChannel) Like(context.Context, string) error {
	f.calls["like"]++
	return f.likeErr
}

type fakeAuth struct {
	ch     *fakeChannel
	badTok bool
}

func (a *fakeAuth) AuthURL(state string) string {
	return "https://accounts.google.com/o/oauth2/auth?state=" + state
}

func (a *fakeAuth) Exchange(_ context.Context, code string) (*oauth2.Token, error) {
	if code == "" || a.badTok {
		return nil, errors.New("oauth2: invalid_grant")
	}
	return &oauth2.Token{AccessToken: "tok-" + code}, nil
}

func (a *fakeAuth) Channel(*oauth2.Token) Channel { return a.ch }

// memStore implements Store.
type memStore struct {
	mu      sync.Mutex
	scripts map[string]map[string]string
	replies map[string]string
	likes   []string
}

func newMemStore() *memStore {
	return &memStore{scripts: make(map[string]map[string]string), replies: make(map[string]string)}
}

func (m *memStore) SetScript(_ context.Context, userID, videoID, script string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.scripts[userID] == nil {
		m.scripts[userID] = make(map[string]string)
	}
	m.scripts[userID][videoID] = script
	return nil
}

func (m *memStore) Scripts(_ context.Context, userID string) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := maps.Clone(m.scripts[userID])
	if out == nil {
		out = map[string]string{}
	}
	return out, nil
}

func (m *memStore) DeleteScript(_ context.Context, userID, videoID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.scripts[userID], videoID)
	return nil
}

func (m *memStore) MarkInFlight(_ context.Context, token, _, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replies[token] = ReplyInFlight
	return nil
}

func (m *memStore) MarkPosted(_ context.Context, token, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replies[token] = ReplyPosted
	return nil
}

func (m *memStore) ReplyStatus(_ context.Context, token string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.replies[token], nil
}

func (m *memStore) RecordLike(_ context.Context, userID, commentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.likes = append(m.likes, userID+":"+commentID)
	return nil
}

func (m *memStore) Close() {}
