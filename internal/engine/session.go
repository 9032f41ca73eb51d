package engine

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// State is a session's position in the review workflow.
type State string

const (
	StateUnauthenticated State = "unauthenticated"
	StateAuthenticated   State = "authenticated"
	StateQueuePopulated  State = "queue_populated"
	StateReviewing       State = "reviewing"
)

var (
	ErrInvalidState    = errors.New("invalid state for this action")
	ErrSessionNotFound = errors.New("session not found")
)

// Session is everything one creator's review session owns. Handlers receive it
// locked from Sessions.Acquire.
type Session struct {
	ID         string
	UserID     string // channel id once authenticated
	Token      *oauth2.Token
	State      State
	Queue      Queue
	LastReport *RunReport

	channel  Channel
	answered map[string]bool // thread ids replied to in this session
	mu       sync.Mutex
}

// markAnswered remembers a thread this session has replied to.
func (s *Session) markAnswered(threadID string) {
	if s.answered == nil {
		s.answered = make(map[string]bool)
	}
	s.answered[threadID] = true
}

// Channel returns the signed-in channel, nil before authentication.
func (s *Session) Channel() Channel {
	return s.channel
}

// expect fails with ErrInvalidState unless the session is in one of states.
func (s *Session) expect(action string, states ...State) error {
	if slices.Contains(states, s.State) {
		return nil
	}
	return fmt.Errorf("%s: %w (state %s)", action, ErrInvalidState, s.State)
}

// authenticate moves unauthenticated → authenticated.
func (s *Session) authenticate(userID string, tok *oauth2.Token, ch Channel) error {
	if err := s.expect("sign in", StateUnauthenticated); err != nil {
		return err
	}
	s.UserID = userID
	s.Token = tok
	s.channel = ch
	s.State = StateAuthenticated
	return nil
}

// populate replaces the queue and moves to queue_populated.
func (s *Session) populate(items []*PendingItem) error {
	if err := s.expect("triage", StateAuthenticated, StateQueuePopulated, StateReviewing); err != nil {
		return err
	}
	s.Queue.Replace(items)
	s.LastReport = nil
	s.State = StateQueuePopulated
	return nil
}

// review checks a review action is allowed and moves to reviewing.
func (s *Session) review(action string) error {
	if err := s.expect(action, StateQueuePopulated, StateReviewing); err != nil {
		return err
	}
	s.State = StateReviewing
	return nil
}

// authed checks the session is signed in, whatever its queue state.
func (s *Session) authed(action string) error {
	return s.expect(action, StateAuthenticated, StateQueuePopulated, StateReviewing)
}

// Sessions is the registry of live sessions.
type Sessions struct {
	m sync.Map // id → *Session
}

// New creates an unauthenticated session.
func (r *Sessions) New() *Session {
	s := &Session{ID: uuid.NewString(), State: StateUnauthenticated}
	r.m.Store(s.ID, s)
	return s
}

// Acquire returns the session locked. Callers must call the returned release
// func; actions on one session run one at a time.
func (r *Sessions) Acquire(id string) (*Session, func(), error) {
	v, ok := r.m.Load(id)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	s := v.(*Session)
	s.mu.Lock()
	// Signed out while we waited.
	if _, ok := r.m.Load(id); !ok {
		s.mu.Unlock()
		return nil, nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return s, s.mu.Unlock, nil
}

// Remove tears a session down. The caller must hold its lock.
func (r *Sessions) Remove(s *Session) {
	r.m.Delete(s.ID)
	s.Queue.Replace(nil)
	s.LastReport = nil
	s.Token = nil
	s.channel = nil
	s.State = StateUnauthenticated
}

// Len returns the number of live sessions.
func (r *Sessions) Len() int {
	n := 0
	r.m.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
