// Package harness spawns a peer set for one protocol, joins it, and
// cross-checks consensus.
package harness

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/distribuidos-Coffee-Shop-Analysis/bully-election/internal/election"
	"github.com/distribuidos-Coffee-Shop-Analysis/bully-election/internal/metrics"
)

// Protocol selects which state machine a run uses.
type Protocol int

const (
	Standard Protocol = iota
	Improved
)

func (p Protocol) String() string {
	if p == Improved {
		return "improved"
	}
	return "standard"
}

// RunOptions carries the per-run knobs that flow down from optional YAML
// defaults and CLI flags into every peer's Config. A zero-valued timing
// field falls back to election.Config.WithDefaults' own constant.
type RunOptions struct {
	BasePort int

	ListenTimeout        time.Duration
	StandardElectionWait time.Duration
	ImprovedProbeDelay   time.Duration
	ImprovedDebounce     time.Duration

	Silent bool
}

// PeerResult is one alive peer's post-run observation.
type PeerResult struct {
	ID            int
	MessagesSent  uint64
	CoordinatorID int64
	HasAnnounced  bool
}

// Summary is the outcome of one single-protocol run over an alive set.
type Summary struct {
	Protocol      Protocol
	NumNodes      int
	Alive         []int
	Starters      []int
	Results       []PeerResult
	Consensus     bool
	TotalMessages uint64
}

// Run constructs one peer per member of alive (Standard or Improved,
// per protocol), starts them all, joins them all, then asserts every
// peer observed max(alive) as coordinator. Cancelling ctx force-stops
// every peer even if it has not reached its termination predicate.
func Run(ctx context.Context, protocol Protocol, numNodes int, alive, starters []int, opts RunOptions, rec *metrics.Recorder) (Summary, error) {
	if len(alive) == 0 {
		return Summary{}, fmt.Errorf("harness: alive set must be non-empty")
	}

	starterSet := toSet(starters)

	type built struct {
		id     int
		shared *election.Shared
		node   election.Node
	}

	peers := make([]built, 0, len(alive))
	for _, id := range alive {
		shared := election.NewShared(id)
		cfg := election.Config{
			ID:        id,
			NumNodes:  numNodes,
			BasePort:  opts.BasePort,
			IsStarter: starterSet[id],
			Silent:    opts.Silent,

			ListenTimeout:        opts.ListenTimeout,
			StandardElectionWait: opts.StandardElectionWait,
			ImprovedProbeDelay:   opts.ImprovedProbeDelay,
			ImprovedDebounce:     opts.ImprovedDebounce,
		}

		var node election.Node
		switch protocol {
		case Standard:
			node = election.NewStandardNode(cfg, shared, rec)
		case Improved:
			node = election.NewImprovedNode(cfg, shared, rec)
		default:
			return Summary{}, fmt.Errorf("harness: unknown protocol %v", protocol)
		}

		peers = append(peers, built{id: id, shared: shared, node: node})
	}

	var wg sync.WaitGroup
	errs := make([]error, len(peers))
	wg.Add(len(peers))
	for i, p := range peers {
		i, p := i, p
		go func() {
			defer wg.Done()
			if err := p.node.Run(ctx); err != nil {
				errs[i] = err
			}
		}()
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return Summary{}, fmt.Errorf("harness: peer %d: %w", peers[i].id, err)
		}
	}

	results := make([]PeerResult, len(peers))
	var total uint64
	maxAlive := int64(maxOf(alive))
	consensus := true
	for i, p := range peers {
		coord := p.shared.CoordinatorID.Load()
		results[i] = PeerResult{
			ID:            p.id,
			MessagesSent:  p.shared.MessageCount.Load(),
			CoordinatorID: coord,
			HasAnnounced:  p.node.HasAnnounced(),
		}
		total += results[i].MessagesSent
		if coord != maxAlive {
			consensus = false
		}
	}

	if !consensus && rec != nil {
		rec.ConsensusFailures.Inc()
	}

	return Summary{
		Protocol:      protocol,
		NumNodes:      numNodes,
		Alive:         alive,
		Starters:      starters,
		Results:       results,
		Consensus:     consensus,
		TotalMessages: total,
	}, nil
}

func toSet(ids []int) map[int]bool {
	set := make(map[int]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func maxOf(ids []int) int {
	m := ids[0]
	for _, id := range ids[1:] {
		if id > m {
			m = id
		}
	}
	return m
}
