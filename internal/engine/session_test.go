package engine

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionTransitions(t *testing.T) {
	var reg Sessions
	s := reg.New()
	assert.Equal(t, StateUnauthenticated, s.State)

	assert.ErrorIs(t, s.populate(nil), ErrInvalidState)
	assert.ErrorIs(t, s.review("approve"), ErrInvalidState)

	require.NoError(t, s.authenticate("UC1", nil, newFakeChannel()))
	assert.ErrorIs(t, s.authenticate("UC1", nil, nil), ErrInvalidState)
	assert.ErrorIs(t, s.review("approve"), ErrInvalidState)

	require.NoError(t, s.populate(makeItems("v1", "a")))
	assert.Equal(t, StateQueuePopulated, s.State)

	require.NoError(t, s.review("discard"))
	assert.Equal(t, StateReviewing, s.State)

	require.NoError(t, s.populate(nil), "triage may run again while reviewing")
	assert.Equal(t, StateQueuePopulated, s.State)
	assert.Equal(t, 0, s.Queue.Len())
}

func TestSessionsAcquireSerializes(t *testing.T) {
	var reg Sessions
	s := reg.New()

	var wg sync.WaitGroup
	counter := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sess, release, err := reg.Acquire(s.ID)
			if err != nil {
				return
			}
			counter++
			_ = sess
			release()
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, counter)
}

func TestSessionsRemove(t *testing.T) {
	var reg Sessions
	s := reg.New()
	sess, release, err := reg.Acquire(s.ID)
	require.NoError(t, err)
	require.NoError(t, sess.authenticate("UC1", nil, newFakeChannel()))
	reg.Remove(sess)
	release()

	_, _, err = reg.Acquire(s.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.Nil(t, sess.Channel())
	assert.Equal(t, 0, reg.Len())
}
