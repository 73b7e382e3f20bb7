package election

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// listenOn binds a raw UDP socket a test uses to observe datagrams a node
// under test sends, standing in for another peer's listener.
func listenOn(t *testing.T, port int) *net.UDPConn {
	t.Helper()
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: port})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

// expectMessage reads one datagram within timeout and decodes it, failing
// the test if nothing arrives or it fails to decode.
func expectMessage(t *testing.T, conn *net.UDPConn, timeout time.Duration) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(timeout)))
	buf := make([]byte, 256)
	n, _, err := conn.ReadFromUDP(buf)
	require.NoError(t, err, "expected a datagram within %s", timeout)
	msg, err := Decode(buf[:n])
	require.NoError(t, err)
	return msg
}

// expectNoMessage asserts no datagram arrives within timeout.
func expectNoMessage(t *testing.T, conn *net.UDPConn, timeout time.Duration) {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(timeout)))
	buf := make([]byte, 256)
	_, _, err := conn.ReadFromUDP(buf)
	if err == nil {
		t.Fatalf("expected no datagram on port, but one arrived")
	}
}
