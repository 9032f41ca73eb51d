package engine

import (
	"context"
	"errors"
	"fmt"
	"slices"
)

// ErrItemNotFound is returned for an item id that is not in the queue.
var ErrItemNotFound = errors.New("item not found")

// ReplyPoster posts a reply under a comment thread.
type ReplyPoster interface {
	PostReply(ctx context.Context, item *PendingItem, text string) (replyID string, err error)
}

// Queue is the ordered review queue of a session. Not safe for concurrent
// use; the owning session serializes access.
type Queue struct {
	items []*PendingItem
}

// Replace swaps the whole queue. Unreviewed items from before are dropped.
func (q *Queue) Replace(items []*PendingItem) {
	q.items = slices.Clone(items)
}

// List returns the items in queue order.
func (q *Queue) List() []*PendingItem {
	return slices.Clone(q.items)
}

// Len returns the number of pending items.
func (q *Queue) Len() int {
	return len(q.items)
}

// Get returns the item with id.
func (q *Queue) Get(id string) (*PendingItem, error) {
	i := q.index(id)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	return q.items[i], nil
}

// SetDraft replaces one item's draft, leaving membership and order alone.
func (q *Queue) SetDraft(id, draft string) error {
	it, err := q.Get(id)
	if err != nil {
		return err
	}
	it.Draft = draft
	return nil
}

// Edit is the creator's manual change of a draft.
func (q *Queue) Edit(id, text string) error {
	return q.SetDraft(id, text)
}

// Discard removes the item without any external call.
func (q *Queue) Discard(id string) error {
	i := q.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	q.items = slices.Delete(q.items, i, i+1)
	return nil
}

// Approve posts text (the current draft when empty) as the reply. The item
// leaves the queue only after the post succeeds; on failure it stays with
// text kept as its draft so the creator can retry.
func (q *Queue) Approve(ctx context.Context, id, text string, poster ReplyPoster) (string, error) {
	it, err := q.Get(id)
	if err != nil {
		return "", err
	}
	if text == "" {
		text = it.Draft
	}
	if text == "" || text == DraftFailed {
		return "", fmt.Errorf("approve %s: no reply text", id)
	}
	it.Draft = text

	replyID, err := poster.PostReply(ctx, it, text)
	if err != nil {
		metrics.ReplyFailures.Add(1)
		return "", fmt.Errorf("approve %s: %w", id, err)
	}
	metrics.RepliesPosted.Add(1)

	if i := q.index(id); i >= 0 {
		q.items = slices.Delete(q.items, i, i+1)
	}
	return replyID, nil
}

func (q *Queue) index(id string) int {
	return slices.IndexFunc(q.items, func(it *PendingItem) bool { return it.ID == id })
}
