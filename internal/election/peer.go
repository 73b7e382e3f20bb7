package election

import (
	"context"
	"fmt"
	"log"
	"net"

	"github.com/distribuidos-Coffee-Shop-Analysis/bully-election/internal/metrics"
)

// Node is a running peer: either protocol's state machine plus its socket
// plumbing. Run blocks until the termination predicate fires, the exit
// datagram arrives, or ctx is cancelled.
type Node interface {
	Run(ctx context.Context) error
	HasAnnounced() bool
}

// socketPeer holds the fields and helpers every protocol's peer needs:
// the bound listener socket, the shared counters, and a send helper that
// increments message_count on every outbound datagram. Both StandardNode
// and ImprovedNode embed it, keeping socket handling next to protocol
// state in a single struct.
type socketPeer struct {
	cfg    Config
	shared *Shared
	rec    *metrics.Recorder
	proto  string // metrics label: "standard" | "improved"

	conn *net.UDPConn
}

func (p *socketPeer) bind() error {
	addr := &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: p.cfg.Port()}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return fmt.Errorf("election: bind port %d: %w", p.cfg.Port(), err)
	}
	p.conn = conn
	return nil
}

func (p *socketPeer) close() {
	if p.conn != nil {
		p.conn.Close()
	}
}

// send encodes and sends a message to peerID, incrementing message_count.
// The bound listener socket is reused for sends rather than opening a
// fresh one per datagram (see DESIGN.md).
func (p *socketPeer) send(kind Kind, peerID int) {
	dst := &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: p.cfg.BasePort + peerID}
	payload := Encode(kind, p.cfg.ID)

	if _, err := p.conn.WriteToUDP(payload, dst); err != nil {
		p.logf("send %s to %d failed: %v", kind, peerID, err)
		return
	}

	p.shared.MessageCount.Add(1)
	if p.rec != nil {
		p.rec.MessagesSentTotal.WithLabelValues(p.proto, fmt.Sprint(p.cfg.ID)).Inc()
	}
}

func (p *socketPeer) logf(format string, args ...any) {
	if p.cfg.Silent {
		return
	}
	log.Printf("[peer %d] "+format, append([]any{p.cfg.ID}, args...)...)
}

// exceededFuse reports whether the N^2 message-count safety fuse has
// tripped — a diagnostic belt-and-braces, not a live correctness guard.
func (p *socketPeer) exceededFuse() bool {
	return p.shared.MessageCount.Load() > messageFuse(p.cfg.NumNodes)
}
