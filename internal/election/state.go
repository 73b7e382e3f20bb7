package election

import (
	"sync/atomic"
	"time"
)

// Shared holds the two cross-peer counters the harness owns: the
// last-observed coordinator id and the total datagrams sent. A Shared is
// constructed once per peer and lives for that peer's whole lifetime.
type Shared struct {
	CoordinatorID atomic.Int64
	MessageCount  atomic.Uint64
}

// NewShared returns a Shared whose coordinator id is initialised to the
// peer's own id, per the peer-local state table.
func NewShared(id int) *Shared {
	s := &Shared{}
	s.CoordinatorID.Store(int64(id))
	return s
}

// Config is the per-peer construction contract: identity, universe size,
// addressing, and whether this peer should initiate an election at startup.
// The timing fields default to built-in constants when zero. The harness
// sets them from harness.RunOptions; internal/config supplies values for
// all of them except StandardElectionWait.
type Config struct {
	ID        int
	NumNodes  int
	BasePort  int
	IsStarter bool
	Silent    bool

	ListenTimeout        time.Duration
	StandardElectionWait time.Duration // 0.2 * NumNodes seconds when zero
	ImprovedProbeDelay   time.Duration // base "delay" constant, 10ms when zero
	ImprovedDebounce     time.Duration // 1s when zero
}

// Port returns this peer's UDP port: base_port + id.
func (c Config) Port() int {
	return c.BasePort + c.ID
}

// WithDefaults fills any zero-valued timing field with its built-in constant.
func (c Config) WithDefaults() Config {
	if c.ListenTimeout == 0 {
		c.ListenTimeout = time.Second
	}
	if c.StandardElectionWait == 0 {
		c.StandardElectionWait = time.Duration(float64(200*time.Millisecond) * float64(c.NumNodes))
	}
	if c.ImprovedProbeDelay == 0 {
		c.ImprovedProbeDelay = 10 * time.Millisecond
	}
	if c.ImprovedDebounce == 0 {
		c.ImprovedDebounce = time.Second
	}
	return c
}

// messageFuse is the N^2 safety fuse. The listener checks it only after its
// receive loop has ended and then logs a diagnostic; it does not stop the
// loop itself.
func messageFuse(numNodes int) uint64 {
	n := uint64(numNodes)
	return n * n
}
