package i2ctarget

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSimAttachDetach(t *testing.T) {
	sim := NewSim()
	mem := make([]byte, 16)

	conn, err := sim.Attach(1, 0x43, mem)
	require.NoError(t, err)
	require.True(t, sim.Attached())

	_, err = sim.Attach(1, 0x43, mem)
	require.Equal(t, ErrAttached, err)

	require.NoError(t, conn.Detach())
	require.False(t, sim.Attached())
	require.NoError(t, conn.Detach(), "detach is idempotent")

	_, err = sim.MasterRead(0, 4)
	require.Equal(t, ErrDetached, err)
}

func TestSimMasterTransactions(t *testing.T) {
	sim := NewSim()
	mem := make([]byte, 8)
	conn, err := sim.Attach(1, 0x43, mem)
	require.NoError(t, err)

	var events []Event
	require.NoError(t, conn.IRQ(EndWrite|EndRead, func(ev Event) {
		events = append(events, ev)
	}))

	require.NoError(t, sim.MasterWrite(2, []byte{0xaa, 0xbb}))
	require.Equal(t, []byte{0, 0, 0xaa, 0xbb, 0, 0, 0, 0}, mem)

	got, err := sim.MasterRead(2, 2)
	require.NoError(t, err)
	require.Equal(t, []byte{0xaa, 0xbb}, got)

	require.Equal(t, []Event{EndWrite, EndRead}, events)
}

func TestSimMaskFiltersEvents(t *testing.T) {
	sim := NewSim()
	conn, err := sim.Attach(1, 0x43, make([]byte, 4))
	require.NoError(t, err)

	var events []Event
	require.NoError(t, conn.IRQ(EndWrite, func(ev Event) {
		events = append(events, ev)
	}))

	require.NoError(t, sim.MasterWrite(0, []byte{1}))
	_, err = sim.MasterRead(0, 1)
	require.NoError(t, err)
	require.Equal(t, []Event{EndWrite}, events, "EndRead not in mask")
}

func TestSimBounds(t *testing.T) {
	sim := NewSim()
	_, err := sim.Attach(1, 0x43, make([]byte, 4))
	require.NoError(t, err)

	require.Equal(t, ErrBounds, sim.MasterWrite(2, []byte{1, 2, 3}))
	_, err = sim.MasterRead(-1, 2)
	require.Equal(t, ErrBounds, err)
	_, err = sim.MasterRead(0, 5)
	require.Equal(t, ErrBounds, err)
}
