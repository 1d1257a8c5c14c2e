// Package i2ctarget abstracts the hardware I2C bus-target facility:
// a device exposing a memory-mapped buffer to an external bus master
// and signaling transaction completion through an IRQ callback.
package i2ctarget

import "errors"

// Event is a bitmask of transaction-completion events.
type Event uint8

// Event kinds delivered to a Handler.
const (
	// EndWrite fires when the master finished writing into the buffer.
	EndWrite Event = 1 << iota
	// EndRead fires when the master finished reading from the buffer.
	EndRead
)

// Has reports whether e includes ev.
func (e Event) Has(ev Event) bool {
	return e&ev != 0
}

// Handler is the IRQ callback. It is invoked by the facility, not by
// application code, and runs to completion before the next event is
// delivered.
type Handler func(Event)

// Target is the bus-target facility. Attach exposes mem to the bus
// master at the given bus id and 7-bit address.
type Target interface {
	Attach(bus int, addr uint8, mem []byte) (Conn, error)
}

// Conn is an attached bus-target instance.
type Conn interface {
	// IRQ registers the handler for the events in mask. A nil handler
	// unregisters.
	IRQ(mask Event, h Handler) error
	// Detach releases the target and stops event delivery.
	Detach() error
}

var (
	// ErrAttached indicates the target is already attached.
	ErrAttached = errors.New("target already attached")
	// ErrDetached indicates an operation on a detached connection.
	ErrDetached = errors.New("target detached")
	// ErrBounds indicates a master access outside the mapped buffer.
	ErrBounds = errors.New("access out of bounds")
)
