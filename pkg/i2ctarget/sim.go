package i2ctarget

import (
	"sync"

	"github.com/golang/glog"
)

// Sim is an in-memory bus-target facility. It plays both sides: the
// Target interface for the peripheral, and MasterWrite/MasterRead for
// whoever acts as the bus master (tests, the interactive console).
//
// Event handlers run synchronously on the master's goroutine, which
// models the hardware discipline: the IRQ handler runs to completion
// before the transaction that raised it is considered finished, and
// no second event is delivered mid-handler.
type Sim struct {
	lock sync.Mutex
	conn *simConn
}

// NewSim creates a simulated facility with no target attached.
func NewSim() *Sim {
	return &Sim{}
}

// Attach implements Target.
func (s *Sim) Attach(bus int, addr uint8, mem []byte) (Conn, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.conn != nil {
		return nil, ErrAttached
	}
	glog.V(2).Infof("sim: attach bus %d addr %#02x, %d bytes", bus, addr, len(mem))
	s.conn = &simConn{sim: s, bus: bus, addr: addr, mem: mem}
	return s.conn, nil
}

// Attached indicates a target is currently attached.
func (s *Sim) Attached() bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.conn != nil
}

// MasterWrite performs a master-initiated write of p at offset off,
// then delivers EndWrite to the registered handler before returning.
func (s *Sim) MasterWrite(off int, p []byte) error {
	s.lock.Lock()
	conn := s.conn
	if conn == nil {
		s.lock.Unlock()
		return ErrDetached
	}
	if off < 0 || off+len(p) > len(conn.mem) {
		s.lock.Unlock()
		return ErrBounds
	}
	copy(conn.mem[off:], p)
	mask, h := conn.mask, conn.handler
	s.lock.Unlock()

	glog.V(2).Infof("sim: master wrote %d bytes at %d", len(p), off)
	if h != nil && mask.Has(EndWrite) {
		h(EndWrite)
	}
	return nil
}

// MasterRead performs a master-initiated read of n bytes at offset
// off, then delivers EndRead to the registered handler.
func (s *Sim) MasterRead(off, n int) ([]byte, error) {
	s.lock.Lock()
	conn := s.conn
	if conn == nil {
		s.lock.Unlock()
		return nil, ErrDetached
	}
	if off < 0 || n < 0 || off+n > len(conn.mem) {
		s.lock.Unlock()
		return nil, ErrBounds
	}
	p := make([]byte, n)
	copy(p, conn.mem[off:])
	mask, h := conn.mask, conn.handler
	s.lock.Unlock()

	glog.V(2).Infof("sim: master read %d bytes at %d", n, off)
	if h != nil && mask.Has(EndRead) {
		h(EndRead)
	}
	return p, nil
}

type simConn struct {
	sim     *Sim
	bus     int
	addr    uint8
	mem     []byte
	mask    Event
	handler Handler
}

// IRQ implements Conn.
func (c *simConn) IRQ(mask Event, h Handler) error {
	c.sim.lock.Lock()
	defer c.sim.lock.Unlock()
	if c.sim.conn != c {
		return ErrDetached
	}
	c.mask, c.handler = mask, h
	return nil
}

// Detach implements Conn. Detaching twice is harmless.
func (c *simConn) Detach() error {
	c.sim.lock.Lock()
	defer c.sim.lock.Unlock()
	if c.sim.conn == c {
		c.sim.conn = nil
		c.mask, c.handler = 0, nil
		glog.V(2).Infof("sim: detached bus %d addr %#02x", c.bus, c.addr)
	}
	return nil
}
