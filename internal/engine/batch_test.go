package engine

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type batchCall struct {
	script       string
	instructions string
	comments     []string
}

// fakeGenerator replays canned batch responses in order.
type fakeGenerator struct {
	replies []string
	errs    []error
	calls   []batchCall
	single  string
}

func (f *fakeGenerator) GenerateBatch(_ context.Context, script, instructions string, comments []string) (string, error) {
	i := len(f.calls)
	f.calls = append(f.calls, batchCall{script, instructions, append([]string(nil), comments...)})
	if i < len(f.errs) && f.errs[i] != nil {
		return "", f.errs[i]
	}
	if i < len(f.replies) {
		return f.replies[i], nil
	}
	return "[]", nil
}

func (f *fakeGenerator) Draft(_ context.Context, _, _, _ string) string {
	if f.single == "" {
		return DraftFailed
	}
	return f.single
}

func makeItems(videoID string, texts ...string) []*PendingItem {
	items := make([]*PendingItem, len(texts))
	for i, txt := range texts {
		id := fmt.Sprintf("%s-c%d", videoID, i)
		items[i] = &PendingItem{
			ID:     id,
			Thread: CommentThread{ID: id, VideoID: videoID, Top: TopComment{Text: txt}},
		}
	}
	return items
}

func newTestCoordinator(gen DraftGenerator) (*Coordinator, *[]time.Duration) {
	var pauses []time.Duration
	c := &Coordinator{Gen: gen, ChunkSize: 15, Cooldown: 4 * time.Second}
	c.pause = func(d time.Duration) { pauses = append(pauses, d) }
	return c, &pauses
}

func TestCoordinator_TwoComments(t *testing.T) {
	gen := &fakeGenerator{replies: []string{`[{"id":1,"respuesta":"Thanks!"},{"id":2,"respuesta":"Soon!"}]`}}
	c, _ := newTestCoordinator(gen)
	items := makeItems("v1", "Love this!", "When's part 2?")

	report := c.Run(context.Background(), items, map[string]string{"v1": "Part one of the series."})

	assert.Equal(t, "Thanks!", items[0].Draft)
	assert.Equal(t, "Soon!", items[1].Draft)
	assert.Equal(t, 2, report.Drafted)
	require.Len(t, gen.calls, 1)
	assert.Equal(t, []string{"Love this!", "When's part 2?"}, gen.calls[0].comments)
	assert.Equal(t, "Part one of the series.", gen.calls[0].script)
}

func TestCoordinator_ResponseOrderDoesNotMatter(t *testing.T) {
	gen := &fakeGenerator{replies: []string{`[{"id":3,"respuesta":"c"},{"id":1,"respuesta":"a"},{"id":2,"respuesta":"b"}]`}}
	c, _ := newTestCoordinator(gen)
	items := makeItems("v1", "x", "y", "z")

	c.Run(context.Background(), items, nil)

	assert.Equal(t, "a", items[0].Draft)
	assert.Equal(t, "b", items[1].Draft)
	assert.Equal(t, "c", items[2].Draft)
	assert.Equal(t, "v1-c0", items[0].ID)
}

func TestCoordinator_UnknownOrdinalDropped(t *testing.T) {
	gen := &fakeGenerator{replies: []string{`[{"id":1,"respuesta":"ok"},{"id":7,"respuesta":"ghost"},{"id":0,"respuesta":"zero"}]`}}
	c, _ := newTestCoordinator(gen)
	items := makeItems("v1", "first", "second")

	report := c.Run(context.Background(), items, nil)

	assert.Equal(t, "ok", items[0].Draft)
	assert.False(t, items[1].HasDraft(), "missing entry leaves draft unset")
	assert.Equal(t, 1, report.Drafted)
}

func TestCoordinator_UnparseableChunkContinues(t *testing.T) {
	prose := "Sure! Here are some nice replies for your fans."
	gen := &fakeGenerator{replies: []string{
		prose,
		`Here you go: [{"id":1,"respuesta":"second chunk"}] hope it helps`,
	}}
	c, pauses := newTestCoordinator(gen)
	c.ChunkSize = 2
	items := makeItems("v1", "a", "b", "c")

	report := c.Run(context.Background(), items, nil)

	require.Len(t, report.Chunks, 2)
	assert.Equal(t, prose, report.Chunks[0].Raw)
	assert.Equal(t, 0, report.Chunks[0].Drafted)
	assert.False(t, items[0].HasDraft())
	assert.False(t, items[1].HasDraft())
	assert.Equal(t, "second chunk", items[2].Draft)
	assert.Equal(t, []time.Duration{4 * time.Second}, *pauses)
}

func TestCoordinator_TransportErrorContinues(t *testing.T) {
	gen := &fakeGenerator{
		errs:    []error{errors.New("503 unavailable")},
		replies: []string{"", `[{"id":1,"respuesta":"fine"}]`},
	}
	c, _ := newTestCoordinator(gen)
	c.ChunkSize = 1
	items := makeItems("v1", "a", "b")

	report := c.Run(context.Background(), items, nil)

	assert.Equal(t, "503 unavailable", report.Chunks[0].Error)
	assert.False(t, items[0].HasDraft())
	assert.Equal(t, "fine", items[1].Draft)
}

func TestCoordinator_ChunkCeiling(t *testing.T) {
	gen := &fakeGenerator{}
	c, pauses := newTestCoordinator(gen)
	texts := make([]string, 31)
	for i := range texts {
		texts[i] = fmt.Sprintf("comment %d", i)
	}
	items := makeItems("v1", texts...)

	report := c.Run(context.Background(), items, nil)

	require.Len(t, gen.calls, 3)
	assert.Len(t, gen.calls[0].comments, 15)
	assert.Len(t, gen.calls[1].comments, 15)
	assert.Len(t, gen.calls[2].comments, 1)
	assert.Len(t, *pauses, 2, "cooldown only between chunks")
	assert.Equal(t, 31, report.Items)
}

func TestCoordinator_MixedVideoChunkUsesFirstScript(t *testing.T) {
	gen := &fakeGenerator{}
	c, _ := newTestCoordinator(gen)
	items := append(makeItems("v1", "a"), makeItems("v2", "b")...)
	scripts := map[string]string{
		"v1": "Script one. **Mention merch.**",
		"v2": "Script two.",
	}

	report := c.Run(context.Background(), items, scripts)

	require.Len(t, gen.calls, 1)
	assert.Equal(t, "Script one. ", gen.calls[0].script)
	assert.Equal(t, "Mention merch.", gen.calls[0].instructions)
	assert.Equal(t, []string{"v1", "v2"}, report.Chunks[0].VideoIDs)
}

func TestCoordinator_SplitByVideo(t *testing.T) {
	gen := &fakeGenerator{}
	c, _ := newTestCoordinator(gen)
	c.SplitByVideo = true
	items := append(makeItems("v1", "a"), makeItems("v2", "b")...)
	scripts := map[string]string{"v1": "one", "v2": "two"}

	c.Run(context.Background(), items, scripts)

	require.Len(t, gen.calls, 2)
	assert.Equal(t, "one", gen.calls[0].script)
	assert.Equal(t, "two", gen.calls[1].script)
}

func TestCoordinator_ScriptSnapshot(t *testing.T) {
	scripts := map[string]string{"v1": "before"}
	gen := &fakeGenerator{}
	c, _ := newTestCoordinator(gen)
	c.ChunkSize = 1
	c.pause = func(time.Duration) { scripts["v1"] = "after" }

	c.Run(context.Background(), makeItems("v1", "a", "b"), scripts)

	require.Len(t, gen.calls, 2)
	assert.Equal(t, "before", gen.calls[1].script)
}

func TestChunks(t *testing.T) {
	items := append(makeItems("v1", "a", "b", "c"), makeItems("v2", "d")...)

	t.Run("ignores video boundary", func(t *testing.T) {
		got := Chunks(items, 2, false)
		require.Len(t, got, 2)
		assert.Equal(t, "v1", got[1][0].Thread.VideoID)
		assert.Equal(t, "v2", got[1][1].Thread.VideoID)
	})

	t.Run("splits at video boundary", func(t *testing.T) {
		got := Chunks(items, 2, true)
		require.Len(t, got, 3)
		assert.Len(t, got[1], 1)
		assert.Equal(t, "v2", got[2][0].Thread.VideoID)
	})

	t.Run("size above ceiling is clamped", func(t *testing.T) {
		many := makeItems("v1", make([]string, 20)...)
		got := Chunks(many, 50, false)
		require.Len(t, got, 2)
		assert.Len(t, got[0], 15)
	})

	t.Run("empty", func(t *testing.T) {
		assert.Empty(t, Chunks(nil, 15, false))
	})
}

func TestParseBatchReply(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    int
		wantErr bool
	}{
		{"plain list", `[{"id":1,"respuesta":"a"}]`, 1, false},
		{"fenced", "```json\n[{\"id\":1,\"respuesta\":\"a\"},{\"id\":2,\"respuesta\":\"b\"}]\n```", 2, false},
		{"prose around", `Here: [{"id":1,"respuesta":"a"}] done.`, 1, false},
		{"prose with brackets", "Here are replies for comments [1-2]:\n[{\"id\":1,\"respuesta\":\"a\"},{\"id\":2,\"respuesta\":\"b\"}]\nSee [notes].", 2, false},
		{"number list before replies", `Ids [1, 2] follow: [{"id":1,"respuesta":"a"}]`, 1, false},
		{"empty list then replies", `Nothing [] then [{"id":1,"respuesta":"a"}]`, 1, false},
		{"object instead of list", `{"id":1,"respuesta":"a"}`, 0, true},
		{"prose only", "I cannot help with that.", 0, true},
		{"empty", "", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseBatchReply(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, got, tt.want)
		})
	}
}
