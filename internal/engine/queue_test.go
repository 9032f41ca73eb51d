package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// posterFunc adapts a function to ReplyPoster.
type posterFunc func(ctx context.Context, item *PendingItem, text string) (string, error)

func (f posterFunc) PostReply(ctx context.Context, item *PendingItem, text string) (string, error) {
	return f(ctx, item, text)
}

func ids(items []*PendingItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func TestQueue_Replace(t *testing.T) {
	var q Queue
	q.Replace(makeItems("v1", "a", "b"))
	q.Replace(makeItems("v2", "c"))

	assert.Equal(t, []string{"v2-c0"}, ids(q.List()))
}

func TestQueue_ApproveFailureKeepsItem(t *testing.T) {
	var q Queue
	q.Replace(makeItems("v1", "a", "b"))
	require.NoError(t, q.SetDraft("v1-c0", "generated"))

	failing := posterFunc(func(context.Context, *PendingItem, string) (string, error) {
		return "", errors.New("quotaExceeded")
	})
	_, err := q.Approve(context.Background(), "v1-c0", "edited by creator", failing)

	require.Error(t, err)
	assert.Equal(t, 2, q.Len())
	it, err := q.Get("v1-c0")
	require.NoError(t, err)
	assert.Equal(t, "edited by creator", it.Draft)
}

func TestQueue_ApproveSuccessRemovesItem(t *testing.T) {
	var q Queue
	q.Replace(makeItems("v1", "a", "b", "c"))
	require.NoError(t, q.SetDraft("v1-c1", "thanks!"))

	var gotText string
	ok := posterFunc(func(_ context.Context, _ *PendingItem, text string) (string, error) {
		gotText = text
		return "r1", nil
	})
	replyID, err := q.Approve(context.Background(), "v1-c1", "", ok)

	require.NoError(t, err)
	assert.Equal(t, "r1", replyID)
	assert.Equal(t, "thanks!", gotText, "empty text falls back to the draft")
	assert.Equal(t, []string{"v1-c0", "v1-c2"}, ids(q.List()))
	_, err = q.Get("v1-c1")
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestQueue_ApproveWithoutText(t *testing.T) {
	var q Queue
	q.Replace(makeItems("v1", "a"))
	called := false
	p := posterFunc(func(context.Context, *PendingItem, string) (string, error) {
		called = true
		return "", nil
	})

	_, err := q.Approve(context.Background(), "v1-c0", "", p)
	assert.Error(t, err)

	require.NoError(t, q.SetDraft("v1-c0", DraftFailed))
	_, err = q.Approve(context.Background(), "v1-c0", "", p)
	assert.Error(t, err)

	assert.False(t, called)
	assert.Equal(t, 1, q.Len())
}

func TestQueue_Discard(t *testing.T) {
	var q Queue
	q.Replace(makeItems("v1", "a", "b"))
	require.NoError(t, q.SetDraft("v1-c1", "draft"))

	require.NoError(t, q.Discard("v1-c0"))
	require.NoError(t, q.Discard("v1-c1"))
	assert.Equal(t, 0, q.Len())

	assert.ErrorIs(t, q.Discard("v1-c0"), ErrItemNotFound)
}

func TestQueue_SetDraftKeepsOrder(t *testing.T) {
	var q Queue
	q.Replace(makeItems("v1", "a", "b", "c"))

	require.NoError(t, q.SetDraft("v1-c1", "new"))

	assert.Equal(t, []string{"v1-c0", "v1-c1", "v1-c2"}, ids(q.List()))
	it, _ := q.Get("v1-c1")
	assert.Equal(t, "new", it.Draft)
	assert.ErrorIs(t, q.SetDraft("missing", "x"), ErrItemNotFound)
}

func TestLedgerPoster(t *testing.T) {
	ctx := context.Background()
	item := &PendingItem{ID: "t1", Token: "tok-1", Thread: CommentThread{ID: "t1"}}

	t.Run("records posted", func(t *testing.T) {
		ch := newFakeChannel()
		st := newMemStore()
		p := ledgerPoster{disp: ch, ledger: st}

		id, err := p.PostReply(ctx, item, "hi")
		require.NoError(t, err)
		assert.Equal(t, "reply-t1", id)
		status, _ := st.ReplyStatus(ctx, "tok-1")
		assert.Equal(t, ReplyPosted, status)
	})

	t.Run("failed post stays in flight", func(t *testing.T) {
		ch := newFakeChannel()
		ch.postErr = errors.New("timeout")
		st := newMemStore()
		p := ledgerPoster{disp: ch, ledger: st}

		_, err := p.PostReply(ctx, item, "hi")
		require.Error(t, err)
		status, _ := st.ReplyStatus(ctx, "tok-1")
		assert.Equal(t, ReplyInFlight, status)
	})

	t.Run("retry after ambiguous failure does not duplicate", func(t *testing.T) {
		ch := newFakeChannel()
		ch.existing["t1"] = "hi" // the first attempt landed
		st := newMemStore()
		require.NoError(t, st.MarkInFlight(ctx, "tok-1", "t1", "hi"))
		p := ledgerPoster{disp: ch, ledger: st}

		_, err := p.PostReply(ctx, item, "hi")
		require.NoError(t, err)
		assert.Equal(t, 0, ch.calls["post"])
		assert.Equal(t, 1, ch.calls["has_reply"])
		status, _ := st.ReplyStatus(ctx, "tok-1")
		assert.Equal(t, ReplyPosted, status)
	})

	t.Run("retry after failure that did not land posts", func(t *testing.T) {
		ch := newFakeChannel()
		st := newMemStore()
		require.NoError(t, st.MarkInFlight(ctx, "tok-1", "t1", "hi"))
		p := ledgerPoster{disp: ch, ledger: st}

		_, err := p.PostReply(ctx, item, "hi")
		require.NoError(t, err)
		assert.Equal(t, 1, ch.calls["post"])
	})
}
