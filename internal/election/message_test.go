package election

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	cases := []struct {
		kind     Kind
		senderID int
	}{
		{KindElection, 0},
		{KindOK, 42},
		{KindCoordinator, 7},
		{KindAreYouAlive, 99},
	}

	for _, c := range cases {
		payload := Encode(c.kind, c.senderID)
		msg, err := Decode(payload)
		require.NoError(t, err)
		assert.Equal(t, c.kind, msg.Kind)
		assert.Equal(t, c.senderID, msg.SenderID)
	}
}

func TestEncodeDecodeExit(t *testing.T) {
	payload := Encode(KindExit, 0)
	msg, err := Decode(payload)
	require.NoError(t, err)
	assert.Equal(t, KindExit, msg.Kind)
}

func TestDecodeMalformed(t *testing.T) {
	cases := [][]byte{
		[]byte(""),
		[]byte("election"),
		[]byte("election notanumber"),
		[]byte("bogus 1"),
		[]byte("exit 1"),
	}
	for _, payload := range cases {
		_, err := Decode(payload)
		assert.Error(t, err, "payload %q should fail to decode", payload)
	}
}
