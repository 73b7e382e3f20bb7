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

// StandardNode is the classical Bully algorithm: a starter contacts every
// larger peer at once, waits on a timer for an OK, and announces itself
// coordinator if none arrives in time.
type StandardNode struct {
	socketPeer

	running   atomic.Bool
	announced atomic.Bool

	timerMu sync.Mutex
	timer   *time.Timer
}

// NewStandardNode constructs a Standard Bully peer. shared is owned by the
// caller (the harness) and outlives the node.
func NewStandardNode(cfg Config, shared *Shared, rec *metrics.Recorder) *StandardNode {
	return &StandardNode{
		socketPeer: socketPeer{
			cfg:    cfg.WithDefaults(),
			shared: shared,
			rec:    rec,
			proto:  "standard",
		},
	}
}

// Run binds the listener socket, starts the starter and listener workers,
// and blocks until both exit. Cancelling ctx force-stops both workers at
// their next loop check, independent of the exit datagram.
func (n *StandardNode) Run(ctx context.Context) error {
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

func (n *StandardNode) starter(ctx context.Context) {
	select {
	case <-time.After(100 * time.Millisecond):
	case <-ctx.Done():
		return
	}
	if n.cfg.IsStarter {
		n.runElection()
	}
}

func (n *StandardNode) listen(ctx context.Context) {
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
			continue // decode failure: silently dropped
		}

		switch msg.Kind {
		case KindElection:
			n.onElection(msg.SenderID)
		case KindOK:
			n.onOK(msg.SenderID)
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
func (n *StandardNode) HasAnnounced() bool {
	return n.announced.Load()
}

// onElection handles "election <sender_id>". A smaller sender is
// acknowledged with OK and cascades its own election upward; a larger or
// equal sender is ignored — that peer will announce if it wins.
func (n *StandardNode) onElection(senderID int) {
	if senderID < n.cfg.ID {
		n.send(KindOK, senderID)
		n.runElection()
	}
}

// onOK handles "OK <sender_id>", the sole suppression path: it clears the
// running election and cancels the pending announce timer if it has not
// fired yet.
func (n *StandardNode) onOK(int) {
	if n.running.CompareAndSwap(true, false) {
		n.timerMu.Lock()
		if n.timer != nil {
			n.timer.Stop()
		}
		n.timerMu.Unlock()
	}
}

// onCoordinator accepts the broadcast unconditionally; the termination
// predicate picks up the change on its next loop check.
func (n *StandardNode) onCoordinator(senderID int) {
	n.shared.CoordinatorID.Store(int64(senderID))
	if n.rec != nil {
		n.rec.ObservedCoordinator.WithLabelValues("standard", fmt.Sprint(n.cfg.ID)).Set(float64(senderID))
	}
}

// runElection starts an election unless one is already running: it starts
// the announce timer and contacts every strictly larger peer.
func (n *StandardNode) runElection() {
	if !n.running.CompareAndSwap(false, true) {
		return
	}

	if n.rec != nil {
		n.rec.ElectionsStarted.WithLabelValues("standard", fmt.Sprint(n.cfg.ID)).Inc()
	}

	n.timerMu.Lock()
	n.timer = time.AfterFunc(n.cfg.StandardElectionWait, n.announceCoordinator)
	n.timerMu.Unlock()

	for peerID := n.cfg.ID + 1; peerID < n.cfg.NumNodes; peerID++ {
		n.send(KindElection, peerID)
	}
}

// announceCoordinator fires on timer expiry: broadcast to every peer in
// [0, N), including self — harmless, because the termination predicate of
// a peer that has already announced (or yielded) no longer cares.
func (n *StandardNode) announceCoordinator() {
	for peerID := 0; peerID < n.cfg.NumNodes; peerID++ {
		n.send(KindCoordinator, peerID)
	}
	n.running.Store(false)
	n.announced.Store(true)

	if n.rec != nil {
		n.rec.AnnouncementsTotal.WithLabelValues("standard", fmt.Sprint(n.cfg.ID)).Inc()
	}
}
