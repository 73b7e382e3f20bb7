package harness

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/distribuidos-Coffee-Shop-Analysis/bully-election/internal/metrics"
)

// BatchEntry is one row of the batch JSON schema: {"num", "alive", "starters"}.
type BatchEntry struct {
	Num      int   `json:"num"`
	Alive    []int `json:"alive"`
	Starters []int `json:"starters"`
}

// LoadBatch reads the JSON array of runs the comparator executes.
func LoadBatch(path string) ([]BatchEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("harness: read batch file %s: %w", path, err)
	}

	var entries []BatchEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("harness: parse batch file %s: %w", path, err)
	}
	return entries, nil
}

// ComparisonRow is one line of the comparator's output table.
type ComparisonRow struct {
	Index           int
	StandardMsgs    uint64
	StandardElapsed time.Duration
	ImprovedMsgs    uint64
	ImprovedElapsed time.Duration
}

// Compare runs one Standard pass then one Improved pass over the same
// entry, timing each.
func Compare(ctx context.Context, entry BatchEntry, opts RunOptions, rec *metrics.Recorder) (ComparisonRow, error) {
	t0 := time.Now()
	std, err := Run(ctx, Standard, entry.Num, entry.Alive, entry.Starters, opts, rec)
	if err != nil {
		return ComparisonRow{}, fmt.Errorf("harness: standard pass: %w", err)
	}
	t1 := time.Now()

	imp, err := Run(ctx, Improved, entry.Num, entry.Alive, entry.Starters, opts, rec)
	if err != nil {
		return ComparisonRow{}, fmt.Errorf("harness: improved pass: %w", err)
	}
	t2 := time.Now()

	if !std.Consensus {
		return ComparisonRow{}, fmt.Errorf("harness: standard pass failed to reach consensus on alive=%v", entry.Alive)
	}
	if !imp.Consensus {
		return ComparisonRow{}, fmt.Errorf("harness: improved pass failed to reach consensus on alive=%v", entry.Alive)
	}

	return ComparisonRow{
		StandardMsgs:    std.TotalMessages,
		StandardElapsed: t1.Sub(t0),
		ImprovedMsgs:    imp.TotalMessages,
		ImprovedElapsed: t2.Sub(t1),
	}, nil
}

// RunBatch executes Compare for every entry, in order, numbering each row.
func RunBatch(ctx context.Context, entries []BatchEntry, opts RunOptions, rec *metrics.Recorder) ([]ComparisonRow, error) {
	rows := make([]ComparisonRow, 0, len(entries))
	for i, entry := range entries {
		row, err := Compare(ctx, entry, opts, rec)
		if err != nil {
			return rows, fmt.Errorf("harness: run %d: %w", i, err)
		}
		row.Index = i
		rows = append(rows, row)
	}
	return rows, nil
}
