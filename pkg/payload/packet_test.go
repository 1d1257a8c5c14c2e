package payload

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPacketRoundTrip(t *testing.T) {
	testCases := []struct {
		name   string
		packet *Packet
	}{
		{"ping", New(Ping, 0.3, 0.3, 0.3, 0.3)},
		{"go", New(Go, 1.0, 1.0, -1.0, -1.0)},
		{"stop", New(Stop, 0, 0, 0, 0)},
		{"error code", New(Error, 4, 0, 0, 0)},
		{"extremes", New(Response, -127.5, 127.5, 0.000001, -0.000001)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			b := tc.packet.Bytes()
			require.Len(t, b, PacketSize)
			decoded, err := FromBytes(b)
			require.NoError(t, err)
			require.Equal(t, tc.packet, decoded)
		})
	}
}

func TestPacketLayout(t *testing.T) {
	b := New(Ping, 0, 0, 0, 0).Bytes()
	require.Equal(t, SyncHeader[:], b[:4])
	require.Equal(t, byte('P'), b[4])
	require.Equal(t, byte('N'), b[5])
	// zero fields encode as zero bytes
	for i := 6; i < 22; i++ {
		require.Zero(t, b[i])
	}
}

func TestFromBytesShortFrame(t *testing.T) {
	_, err := FromBytes(make([]byte, PacketSize-1))
	require.Equal(t, ErrShortFrame, err)
}

func TestFromBytesBadSync(t *testing.T) {
	// zeroed window, as seen right after the response buffer is cleared
	_, err := FromBytes(make([]byte, PacketSize))
	require.Equal(t, ErrBadSync, err)

	// i2cdetect style probe bytes
	probe := make([]byte, PacketSize)
	for i := range probe {
		probe[i] = 0xff
	}
	_, err = FromBytes(probe)
	require.Equal(t, ErrBadSync, err)
}

func TestFromBytesBadChecksum(t *testing.T) {
	b := New(Go, 1, 2, 3, 4).Bytes()
	b[10] ^= 0x40
	_, err := FromBytes(b)
	require.Equal(t, ErrBadChecksum, err)
}

func TestFromBytesUnknownVerb(t *testing.T) {
	b := New(Go, 0, 0, 0, 0).Bytes()
	b[4], b[5] = 'Z', 'Z'
	b[22] = crc8(b[4:22])
	p, err := FromBytes(b)
	require.NoError(t, err)
	_, ok := p.Verb()
	require.False(t, ok)
}
