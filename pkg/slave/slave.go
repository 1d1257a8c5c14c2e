// Package slave implements the peripheral side of the bus protocol:
// an I2C target exposing a memory-mapped buffer the master writes
// commands into and reads responses from.
package slave

import (
	"fmt"
	"runtime/debug"
	"time"

	"github.com/golang/glog"

	"github.com/krosbot/kros.go/pkg/i2ctarget"
	"github.com/krosbot/kros.go/pkg/payload"
)

// Memory map. The command and response windows never overlap; the
// master writes only the command window and reads only the response
// window, so no lock is needed around the buffer.
const (
	CmdOffset = 0                      // command window starts at byte 0
	RspOffset = payload.PacketSize     // response window follows it
	MemSize   = 2 * payload.PacketSize // total mapped memory
)

// DefaultCommitHold is the default post-write hold allowing the
// target hardware to commit the response to its register file before
// the IRQ completes. The worst-case bound is hardware specific; see
// Config.CommitHold.
const DefaultCommitHold = 50 * time.Microsecond

// pingEcho is the fixed field value echoed in PING responses.
const pingEcho = 0.3

// Driver is what the engine needs from the motor controller.
type Driver interface {
	Speeds() (pfwd, sfwd, paft, saft float32)
	Stop() payload.Status
	Go(pfwd, sfwd, paft, saft float32) payload.Status
	Enable()
	Disable()
}

// Indicator is the visual activity indicator toggled per transaction.
type Indicator interface {
	Toggle()
	SetColor(r, g, b float32)
}

// LogIndicator is the default Indicator, logging at high verbosity.
type LogIndicator struct{}

// Toggle implements Indicator.
func (LogIndicator) Toggle() { glog.V(3).Info("slave: activity") }

// SetColor implements Indicator.
func (LogIndicator) SetColor(r, g, b float32) {
	glog.V(3).Infof("slave: color (%.2f, %.2f, %.2f)", r, g, b)
}

// Stats counts handled transactions by outcome. Diagnostic only.
type Stats struct {
	Tx     uint64 // completed transactions, success or failure
	Probes uint64 // benign bad-sync frames (bus scanning)
	Errors uint64 // malformed payloads, unknown or rejected commands
	Faults uint64 // unexpected faults recovered in the handler
}

// Transaction describes one completed command/response exchange,
// delivered to the Observer after the response is committed.
type Transaction struct {
	Seq      uint64
	Response payload.Packet
	Enabled  bool
	Speeds   [4]float32
	Stats    Stats
}

// Observer receives transaction notifications, e.g. for telemetry.
// It is called synchronously from the event handler and must not
// block.
type Observer interface {
	Transaction(Transaction)
}

// Observers fans notifications out to multiple observers.
type Observers []Observer

// Transaction implements Observer.
func (os Observers) Transaction(tx Transaction) {
	for _, o := range os {
		o.Transaction(tx)
	}
}

// Config holds the bus parameters of the target.
type Config struct {
	Bus  int   // bus id (e.g. I2C1 on STM32)
	Addr uint8 // 7-bit target address

	// CommitHold bounds the post-write hold before a response is
	// considered committed. Zero selects DefaultCommitHold. This is
	// a hardware-timing contract, not a logical dependency; retune
	// it when targeting different hardware.
	CommitHold time.Duration

	Debug bool // log every received command
}

// Slave mediates all traffic on the shared buffer. The master never
// observes a stale or partially written response: the response window
// is zeroed before a command is decoded and rewritten in one shot
// before the hold expires.
type Slave struct {
	conf      Config
	target    i2ctarget.Target
	motor     Driver
	indicator Indicator
	observer  Observer

	mem   []byte
	conn  i2ctarget.Conn
	stats Stats
}

// New creates a slave bound to a bus-target facility and a motor
// driver. The response window starts out holding a default ACK frame.
func New(conf Config, target i2ctarget.Target, driver Driver) *Slave {
	if conf.CommitHold == 0 {
		conf.CommitHold = DefaultCommitHold
	}
	s := &Slave{
		conf:      conf,
		target:    target,
		motor:     driver,
		indicator: LogIndicator{},
		mem:       make([]byte, MemSize),
	}
	s.sendResponse(payload.Ack, 0, 0, 0, 0)
	glog.Infof("slave: ready on bus %d at %#02x", conf.Bus, conf.Addr)
	return s
}

// SetIndicator replaces the activity indicator.
func (s *Slave) SetIndicator(ind Indicator) {
	s.indicator = ind
}

// SetObserver installs the transaction observer.
func (s *Slave) SetObserver(o Observer) {
	s.observer = o
}

// Stats returns a snapshot of the transaction counters.
func (s *Slave) Stats() Stats {
	return s.stats
}

// Enabled indicates the slave is attached to the bus.
func (s *Slave) Enabled() bool {
	return s.conn != nil
}

// Enable attaches the buffer to the bus-target facility and registers
// the event handler. No-op if already enabled.
func (s *Slave) Enable() error {
	if s.conn != nil {
		glog.V(1).Info("slave: already enabled")
		return nil
	}
	glog.Info("slave: starting bus target...")
	conn, err := s.target.Attach(s.conf.Bus, s.conf.Addr, s.mem)
	if err != nil {
		return fmt.Errorf("attach bus target: %v", err)
	}
	if err := conn.IRQ(i2ctarget.EndWrite|i2ctarget.EndRead, s.irqHandler); err != nil {
		conn.Detach()
		return fmt.Errorf("register irq handler: %v", err)
	}
	s.conn = conn
	// prime the response window so the first master read sees a
	// well-formed frame
	s.sendResponse(payload.Ack, 0, 0, 0, 0)
	glog.Infof("slave: enabled on bus %d at %#02x", s.conf.Bus, s.conf.Addr)
	return nil
}

// Disable detaches from the facility and zeroes the shared buffer.
// No-op if already disabled.
func (s *Slave) Disable() error {
	if s.conn == nil {
		return nil
	}
	conn := s.conn
	s.conn = nil
	for i := range s.mem {
		s.mem[i] = 0
	}
	if err := conn.Detach(); err != nil {
		return fmt.Errorf("detach bus target: %v", err)
	}
	glog.Info("slave: disabled")
	return nil
}

// irqHandler handles bus events from the master. It is the single
// entry point invoked by the hardware facility and never lets a fault
// escape: destabilizing the IRQ path is worse than any answer.
func (s *Slave) irqHandler(ev i2ctarget.Event) {
	if ev.Has(i2ctarget.EndWrite) {
		// clear the response window first: a read racing ahead of the
		// new response must observe zeros, never the previous response
		s.clearResponse()
		s.process()
		s.stats.Tx++
		s.indicator.Toggle()
		s.notify()
	}
	if ev.Has(i2ctarget.EndRead) {
		glog.V(2).Info("slave: master read response")
	}
}

func (s *Slave) clearResponse() {
	for i := RspOffset; i < RspOffset+payload.PacketSize; i++ {
		s.mem[i] = 0
	}
}

// process decodes the command window and dispatches. All faults stop
// here, answered with an ERROR frame.
func (s *Slave) process() {
	defer func() {
		if r := recover(); r != nil {
			s.stats.Faults++
			glog.Errorf("slave: fault in irq handler: %v\n%s", r, debug.Stack())
			s.sendError(payload.ErrCodeInternal)
		}
	}()

	cmd, err := payload.FromBytes(s.mem[CmdOffset : CmdOffset+payload.PacketSize])
	if err == payload.ErrBadSync {
		// typically i2cdetect or similar probing the address
		s.stats.Probes++
		glog.Warningf("slave: payload warning: %v", err)
		s.sendError(payload.ErrCodeProbe)
		return
	}
	if err != nil {
		s.stats.Errors++
		glog.Errorf("slave: payload error: %v", err)
		s.sendError(payload.ErrCodeMalformed)
		return
	}
	if s.conf.Debug {
		glog.Infof("slave: rx %v", cmd)
	}
	s.dispatch(cmd)
}

func (s *Slave) dispatch(cmd *payload.Packet) {
	verb, ok := cmd.Verb()
	if !ok {
		s.stats.Errors++
		glog.Errorf("slave: unknown command: %q", string(cmd.Code[:]))
		s.sendError(payload.ErrCodeUnknownCommand)
		return
	}
	switch verb {
	case payload.Ping:
		s.sendResponse(payload.Ping, pingEcho, pingEcho, pingEcho, pingEcho)
	case payload.Stop:
		if s.motor.Stop().OK() {
			s.ackSpeeds()
		} else {
			s.rejected(verb)
		}
	case payload.Go:
		if s.motor.Go(cmd.PFwd, cmd.SFwd, cmd.PAft, cmd.SAft).OK() {
			s.ackSpeeds()
		} else {
			s.rejected(verb)
		}
	case payload.Request:
		pfwd, sfwd, paft, saft := s.motor.Speeds()
		s.sendResponse(payload.Response, pfwd, sfwd, paft, saft)
	case payload.Enable:
		glog.Info("slave: command: ENABLE")
		s.motor.Enable()
		s.sendResponse(payload.Ack, 0, 0, 0, 0)
	case payload.Disable:
		glog.Info("slave: command: DISABLE")
		s.motor.Disable()
		s.sendResponse(payload.Ack, 0, 0, 0, 0)
	case payload.Color:
		s.indicator.SetColor(cmd.PFwd, cmd.SFwd, cmd.PAft)
		s.sendResponse(payload.Ack, 0, 0, 0, 0)
	default:
		// response verbs are not valid inbound
		s.stats.Errors++
		glog.Errorf("slave: unknown command: %v", verb)
		s.sendError(payload.ErrCodeUnknownCommand)
	}
}

func (s *Slave) ackSpeeds() {
	pfwd, sfwd, paft, saft := s.motor.Speeds()
	s.sendResponse(payload.Ack, pfwd, sfwd, paft, saft)
}

func (s *Slave) rejected(verb payload.Verb) {
	s.stats.Errors++
	glog.Errorf("slave: %v rejected: motors disabled", verb)
	s.sendError(payload.ErrCodeRejected)
}

func (s *Slave) sendError(code int) {
	s.sendResponse(payload.Error, float32(code), 0, 0, 0)
}

// sendResponse encodes a response frame into the response window in a
// single region assignment, then holds briefly so the hardware can
// commit the write before the event completion retires.
func (s *Slave) sendResponse(v payload.Verb, pfwd, sfwd, paft, saft float32) {
	rsp := payload.New(v, pfwd, sfwd, paft, saft)
	copy(s.mem[RspOffset:RspOffset+payload.PacketSize], rsp.Bytes())
	if s.conf.Debug {
		glog.Infof("slave: response ready: %v", rsp)
	}
	time.Sleep(s.conf.CommitHold)
}

// notify reports the completed transaction to the observer, if any.
func (s *Slave) notify() {
	o := s.observer
	if o == nil {
		return
	}
	tx := Transaction{
		Seq:   s.stats.Tx,
		Stats: s.stats,
	}
	if rsp, err := payload.FromBytes(s.mem[RspOffset : RspOffset+payload.PacketSize]); err == nil {
		tx.Response = *rsp
	}
	pfwd, sfwd, paft, saft := s.motor.Speeds()
	tx.Speeds = [4]float32{pfwd, sfwd, paft, saft}
	if lc, ok := s.motor.(interface{ Enabled() bool }); ok {
		tx.Enabled = lc.Enabled()
	}
	o.Transaction(tx)
}
