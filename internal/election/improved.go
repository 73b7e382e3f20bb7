package election

import (
	"context"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/distribuidos-Coffee-Shop-Analysis/bully-election/internal/metrics"
)

// ImprovedNode probes higher-ranked peers one at a time, in descending
// order, and debounces its own coordinator announcement so a cascade of
// are_you_alive probes from many smaller starters only produces one
// broadcast.
type ImprovedNode struct {
	socketPeer

	running   atomic.Bool
	announced atomic.Bool

	lastAnnounceNano atomic.Int64
}

// NewImprovedNode constructs an Improved Bully peer.
func NewImprovedNode(cfg Config, shared *Shared, rec *metrics.Recorder) *ImprovedNode {
	return &ImprovedNode{
		socketPeer: socketPeer{
			cfg:    cfg.WithDefaults(),
			shared: shared,
			rec:    rec,
			proto:  "improved",
		},
	}
}

// Run binds the listener socket, starts the starter and listener workers,
// and blocks until both exit. Cancelling ctx stops the listener at its next
// loop check and the starter while it is still in its startup wait,
// independent of the exit datagram; a checkAlive probe loop already under
// way does not observe ctx and runs to completion.
func (n *ImprovedNode) Run(ctx context.Context) error {
	if err := n.bind(); err != nil {
		return err
	}
	defer n.close()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); n.starter(ctx) }()
	go func() { defer wg.Done(); n.listen(ctx) }()
	wg.Wait()

	n.logf("done")
	return nil
}

func (n *ImprovedNode) starter(ctx context.Context) {
	select {
	case <-time.After(100 * time.Millisecond):
	case <-ctx.Done():
		return
	}
	if n.cfg.IsStarter {
		n.checkAlive()
	}
}

func (n *ImprovedNode) listen(ctx context.Context) {
	buf := make([]byte, 1024)

	for ctx.Err() == nil && n.shared.CoordinatorID.Load() == int64(n.cfg.ID) && !n.announced.Load() {
		if err := n.conn.SetReadDeadline(time.Now().Add(n.cfg.ListenTimeout)); err != nil {
			n.logf("set read deadline: %v", err)
			return
		}

		size, _, err := n.conn.ReadFromUDP(buf)
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			return
		}

		msg, decodeErr := Decode(buf[:size])
		if decodeErr != nil {
			continue
		}

		switch msg.Kind {
		case KindAreYouAlive:
			n.onAreYouAlive(msg.SenderID)
		case KindCoordinator:
			n.onCoordinator(msg.SenderID)
		case KindExit:
			n.logf("received exit message")
			return
		}
	}

	if n.exceededFuse() {
		n.logf("received too many messages, exiting")
	}
}

// HasAnnounced reports whether this peer has broadcast a coordinator
// message, i.e. believes itself the winner.
func (n *ImprovedNode) HasAnnounced() bool {
	return n.announced.Load()
}

// onAreYouAlive: a smaller sender is asking whether this peer is still in
// the running. Announcing (rather than replying OK) is what lets the
// sender's check_alive loop observe the resulting coordinator broadcast.
func (n *ImprovedNode) onAreYouAlive(senderID int) {
	if senderID < n.cfg.ID {
		n.announceCoordinator()
	}
}

// onCoordinator: a smaller sender's announcement is treated as stale and
// triggers a fresh election; a larger sender's is accepted and stops any
// election this peer has running. Equal is a no-op.
func (n *ImprovedNode) onCoordinator(senderID int) {
	switch {
	case senderID < n.cfg.ID:
		n.checkAlive()
	case senderID > n.cfg.ID:
		n.shared.CoordinatorID.Store(int64(senderID))
		n.running.Store(false)
		if n.rec != nil {
			n.rec.ObservedCoordinator.WithLabelValues("improved", fmt.Sprint(n.cfg.ID)).Set(float64(senderID))
		}
	}
}

// checkAlive probes every strictly larger peer in descending order,
// stopping early the moment a coordinator message flips running_election
// to false. If no probe produces a reply, this peer announces itself.
func (n *ImprovedNode) checkAlive() {
	n.running.Store(true)

	if n.rec != nil {
		n.rec.ElectionsStarted.WithLabelValues("improved", fmt.Sprint(n.cfg.ID)).Inc()
	}

	for peerID := n.cfg.NumNodes - 1; peerID > n.cfg.ID; peerID-- {
		n.send(KindAreYouAlive, peerID)
		if n.rec != nil {
			n.rec.ProbesSentTotal.WithLabelValues(fmt.Sprint(n.cfg.ID)).Inc()
		}

		time.Sleep(n.probeDelay())

		if !n.running.Load() {
			return
		}
	}

	n.running.Store(false)
	n.announceCoordinator()
}

// probeDelay is delay * (2*id + N), the staggering that gives a
// higher-ranked peer's announcement time to propagate before a lower
// peer exhausts its candidate list.
func (n *ImprovedNode) probeDelay() time.Duration {
	factor := 2*n.cfg.ID + n.cfg.NumNodes
	return time.Duration(factor) * n.cfg.ImprovedProbeDelay
}

// announceCoordinator debounces: within the debounce window of a prior
// announcement it is a no-op, absorbing the cascade of are_you_alive
// messages a large live peer receives from many smaller starters.
func (n *ImprovedNode) announceCoordinator() {
	now := time.Now()
	last := n.lastAnnounceNano.Load()
	if last != 0 && now.Before(time.Unix(0, last).Add(n.cfg.ImprovedDebounce)) {
		return
	}
	n.lastAnnounceNano.Store(now.UnixNano())

	for peerID := 0; peerID < n.cfg.NumNodes; peerID++ {
		n.send(KindCoordinator, peerID)
	}
	n.announced.Store(true)

	if n.rec != nil {
		n.rec.AnnouncementsTotal.WithLabelValues("improved", fmt.Sprint(n.cfg.ID)).Inc()
	}
}
