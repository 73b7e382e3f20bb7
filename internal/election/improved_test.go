package election

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestImprovedNode(t *testing.T, basePort, id, numNodes int, probeDelay time.Duration) *ImprovedNode {
	t.Helper()
	cfg := Config{ID: id, NumNodes: numNodes, BasePort: basePort, ImprovedProbeDelay: probeDelay}
	node := NewImprovedNode(cfg, NewShared(id), nil)
	require.NoError(t, node.bind())
	t.Cleanup(node.close)
	return node
}

func TestImprovedCheckAliveStopsAfterHigherCoordinator(t *testing.T) {
	const basePort = 22000
	// probeDelay chosen so probeDelay() = probeDelay*(2*2+5) = probeDelay*9
	// is comfortably longer than the goroutine-scheduling delay below but
	// short enough to keep the test fast.
	node := newTestImprovedNode(t, basePort, 2, 5, 5*time.Millisecond)

	conn4 := listenOn(t, basePort+4)
	conn3 := listenOn(t, basePort+3)

	done := make(chan struct{})
	go func() {
		node.checkAlive()
		close(done)
	}()

	probe4 := expectMessage(t, conn4, time.Second)
	assert.Equal(t, KindAreYouAlive, probe4.Kind)
	assert.Equal(t, 2, probe4.SenderID)

	// Deliver "coordinator 4" while check_alive is sleeping after the
	// first probe: the only outbound probe must be to 4, none to 3.
	node.onCoordinator(4)

	<-done
	expectNoMessage(t, conn3, 20*time.Millisecond)
	assert.False(t, node.announced.Load())
	assert.Equal(t, int64(4), node.shared.CoordinatorID.Load())
}

func TestImprovedCheckAliveStopsAfterSecondProbe(t *testing.T) {
	const basePort = 22100
	node := newTestImprovedNode(t, basePort, 2, 5, 5*time.Millisecond)

	conn4 := listenOn(t, basePort+4)
	conn3 := listenOn(t, basePort+3)

	done := make(chan struct{})
	go func() {
		node.checkAlive()
		close(done)
	}()

	p4 := expectMessage(t, conn4, time.Second)
	assert.Equal(t, KindAreYouAlive, p4.Kind)

	p3 := expectMessage(t, conn3, time.Second)
	assert.Equal(t, KindAreYouAlive, p3.Kind)

	node.onCoordinator(3)

	<-done
	assert.False(t, node.announced.Load())
	assert.Equal(t, int64(3), node.shared.CoordinatorID.Load())
}

func TestImprovedCheckAliveAnnouncesWhenNoReply(t *testing.T) {
	const basePort = 22200
	node := newTestImprovedNode(t, basePort, 2, 5, 2*time.Millisecond)

	conn0 := listenOn(t, basePort+0)
	conn1 := listenOn(t, basePort+1)
	conn3 := listenOn(t, basePort+3)
	conn4 := listenOn(t, basePort+4)

	node.checkAlive()

	p4 := expectMessage(t, conn4, time.Second)
	assert.Equal(t, KindAreYouAlive, p4.Kind)
	p3 := expectMessage(t, conn3, time.Second)
	assert.Equal(t, KindAreYouAlive, p3.Kind)

	c0 := expectMessage(t, conn0, time.Second)
	assert.Equal(t, KindCoordinator, c0.Kind)
	assert.Equal(t, 2, c0.SenderID)
	c1 := expectMessage(t, conn1, time.Second)
	assert.Equal(t, KindCoordinator, c1.Kind)
	c3 := expectMessage(t, conn3, time.Second)
	assert.Equal(t, KindCoordinator, c3.Kind)
	c4 := expectMessage(t, conn4, time.Second)
	assert.Equal(t, KindCoordinator, c4.Kind)

	assert.True(t, node.announced.Load())
}

func TestImprovedAreYouAliveFromSmallerSenderAnnounces(t *testing.T) {
	const basePort = 22300
	node := newTestImprovedNode(t, basePort, 2, 5, time.Second)

	conn0 := listenOn(t, basePort+0)
	conn3 := listenOn(t, basePort+3)

	node.onAreYouAlive(1)

	c0 := expectMessage(t, conn0, time.Second)
	assert.Equal(t, KindCoordinator, c0.Kind)
	c3 := expectMessage(t, conn3, time.Second)
	assert.Equal(t, KindCoordinator, c3.Kind)
	assert.True(t, node.announced.Load())
}

func TestImprovedAreYouAliveFromLargerSenderIgnored(t *testing.T) {
	const basePort = 22400
	node := newTestImprovedNode(t, basePort, 2, 5, time.Second)

	conn0 := listenOn(t, basePort+0)
	conn1 := listenOn(t, basePort+1)

	node.onAreYouAlive(4)

	expectNoMessage(t, conn0, 30*time.Millisecond)
	expectNoMessage(t, conn1, 30*time.Millisecond)
	assert.False(t, node.announced.Load())
}

func TestImprovedAnnounceCoordinatorDebounces(t *testing.T) {
	const basePort = 22500
	node := newTestImprovedNode(t, basePort, 2, 5, time.Second)
	node.cfg.ImprovedDebounce = 200 * time.Millisecond

	conn0 := listenOn(t, basePort+0)

	node.announceCoordinator()
	expectMessage(t, conn0, time.Second)

	// second call within the debounce window: nothing is sent.
	node.announceCoordinator()
	expectNoMessage(t, conn0, 50*time.Millisecond)
}
