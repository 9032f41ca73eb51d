package engine

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"time"
)

// Coordinator drafts replies for a queue in chunks, one generation call per chunk.
type Coordinator struct {
	Gen          DraftGenerator
	ChunkSize    int
	Cooldown     time.Duration
	SplitByVideo bool // never let a chunk cross a video boundary

	pause func(time.Duration) // time.Sleep unless a test overrides it
}

// NewCoordinator builds a coordinator from the engine config.
func NewCoordinator(gen DraftGenerator) *Coordinator {
	return &Coordinator{
		Gen:          gen,
		ChunkSize:    cfg.ChunkSize,
		Cooldown:     cfg.ChunkCooldown,
		SplitByVideo: cfg.SplitChunksByVideo,
	}
}

// Chunks slices items, in order, into groups of at most size.
// With splitByVideo a chunk also ends where the video changes.
func Chunks(items []*PendingItem, size int, splitByVideo bool) [][]*PendingItem {
	if size <= 0 || size > DefaultChunkSize {
		size = DefaultChunkSize
	}
	var out [][]*PendingItem
	var cur []*PendingItem
	for _, it := range items {
		full := len(cur) == size
		crosses := splitByVideo && len(cur) > 0 && cur[0].Thread.VideoID != it.Thread.VideoID
		if full || crosses {
			out = append(out, cur)
			cur = nil
		}
		cur = append(cur, it)
	}
	if len(cur) > 0 {
		out = append(out, cur)
	}
	return out
}

// ParseBatchReply extracts the {id, respuesta} list from raw model output.
func ParseBatchReply(raw string) ([]BatchEntry, error) {
	var entries []BatchEntry
	if err := decodeModelList(raw, &entries); err != nil {
		return nil, fmt.Errorf("parse batch reply: %w", err)
	}
	return entries, nil
}

// Run drafts every item in place. scripts maps video id to script text and is
// copied before the first call, so later script edits never reach this run.
// A chunk that fails or returns garbage yields no drafts; the rest still run.
func (c *Coordinator) Run(ctx context.Context, items []*PendingItem, scripts map[string]string) RunReport {
	metrics.TriageRuns.Add(1)
	snapshot := maps.Clone(scripts)
	pause := c.pause
	if pause == nil {
		pause = time.Sleep
	}

	report := RunReport{Items: len(items)}
	for i, chunk := range Chunks(items, c.ChunkSize, c.SplitByVideo) {
		if i > 0 && c.Cooldown > 0 {
			pause(c.Cooldown)
		}
		cr := c.runChunk(ctx, i, chunk, snapshot)
		report.Drafted += cr.Drafted
		report.Chunks = append(report.Chunks, cr)
	}

	slog.Info("batch: run complete",
		slog.Int("items", report.Items),
		slog.Int("drafted", report.Drafted),
		slog.Int("chunks", len(report.Chunks)))
	return report
}

func (c *Coordinator) runChunk(ctx context.Context, index int, chunk []*PendingItem, scripts map[string]string) ChunkReport {
	metrics.ChunksProcessed.Add(1)
	cr := ChunkReport{Index: index, Size: len(chunk), VideoIDs: chunkVideos(chunk)}

	// The first item's video governs the whole chunk.
	governing := chunk[0].Thread.VideoID
	if len(cr.VideoIDs) > 1 {
		slog.Warn("batch: chunk spans videos, using first video's script",
			slog.Int("chunk", index),
			slog.String("video", governing),
			slog.Any("videos", cr.VideoIDs))
	}
	instructions, clean := ProcessScript(scripts[governing])

	byOrdinal := make(map[int]*PendingItem, len(chunk))
	comments := make([]string, len(chunk))
	for i, it := range chunk {
		byOrdinal[i+1] = it
		comments[i] = it.Thread.Top.Text
	}

	raw, err := c.Gen.GenerateBatch(ctx, clean, instructions, comments)
	if err != nil {
		slog.Warn("batch: generation failed", slog.Int("chunk", index), slog.Any("error", err))
		cr.Error = err.Error()
		return cr
	}

	entries, err := ParseBatchReply(raw)
	if err != nil {
		metrics.ChunksUnparsed.Add(1)
		slog.Warn("batch: unparseable reply", slog.Int("chunk", index),
			slog.String("raw", preview(raw)), slog.Any("error", err))
		cr.Raw = raw
		return cr
	}

	for _, e := range entries {
		it, ok := byOrdinal[e.ID]
		if !ok {
			slog.Debug("batch: dropping unknown ordinal", slog.Int("chunk", index), slog.Int("id", e.ID))
			continue
		}
		if e.Respuesta == "" {
			continue
		}
		if !it.HasDraft() {
			cr.Drafted++
		}
		it.Draft = e.Respuesta
	}
	metrics.DraftsGenerated.Add(int64(cr.Drafted))
	return cr
}

// chunkVideos lists the distinct video ids of a chunk in order.
func chunkVideos(chunk []*PendingItem) []string {
	var ids []string
	seen := make(map[string]bool)
	for _, it := range chunk {
		if !seen[it.Thread.VideoID] {
			seen[it.Thread.VideoID] = true
			ids = append(ids, it.Thread.VideoID)
		}
	}
	return ids
}
