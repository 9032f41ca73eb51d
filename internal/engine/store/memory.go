package store

import (
	"context"
	"maps"
	"sync"

	"github.com/anatolykoptev/go_community/internal/engine"
)

type ledgerEntry struct {
	parentID string
	text     string
	status   string
	replyID  string
}

// Memory is a process-local store. Nothing survives a restart.
type Memory struct {
	mu      sync.Mutex
	scripts map[string]map[string]string
	ledger  map[string]ledgerEntry
	likes   map[string]map[string]bool
}

var _ engine.Store = (*Memory)(nil)

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		scripts: make(map[string]map[string]string),
		ledger:  make(map[string]ledgerEntry),
		likes:   make(map[string]map[string]bool),
	}
}

func (m *Memory) Close() {}

func (m *Memory) SetScript(_ context.Context, userID, videoID, script string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.scripts[userID] == nil {
		m.scripts[userID] = make(map[string]string)
	}
	m.scripts[userID][videoID] = script
	return nil
}

func (m *Memory) Scripts(_ context.Context, userID string) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := maps.Clone(m.scripts[userID])
	if out == nil {
		out = make(map[string]string)
	}
	return out, nil
}

func (m *Memory) DeleteScript(_ context.Context, userID, videoID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.scripts[userID], videoID)
	return nil
}

func (m *Memory) MarkInFlight(_ context.Context, token, parentID, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ledger[token] = ledgerEntry{parentID: parentID, text: text, status: engine.ReplyInFlight}
	return nil
}

func (m *Memory) MarkPosted(_ context.Context, token, replyID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.ledger[token]
	if !ok {
		return nil
	}
	e.status = engine.ReplyPosted
	e.replyID = replyID
	m.ledger[token] = e
	return nil
}

func (m *Memory) ReplyStatus(_ context.Context, token string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ledger[token].status, nil
}

func (m *Memory) RecordLike(_ context.Context, userID, commentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.likes[userID] == nil {
		m.likes[userID] = make(map[string]bool)
	}
	m.likes[userID][commentID] = true
	return nil
}
