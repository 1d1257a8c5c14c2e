// Package master implements the bus-master side of the protocol,
// used by tests and tooling to drive a peripheral.
package master

import (
	"fmt"
	"time"

	"github.com/golang/glog"

	"github.com/krosbot/kros.go/pkg/payload"
)

// Window offsets within the target's mapped buffer. These mirror the
// peripheral's memory map and are part of the wire contract.
const (
	cmdOffset = 0
	rspOffset = payload.PacketSize
)

// Bus is the master-side transport: positioned block writes and reads
// against the target's mapped buffer. i2ctarget.Sim satisfies it; a
// real deployment wraps an smbus-style handle.
type Bus interface {
	MasterWrite(off int, p []byte) error
	MasterRead(off, n int) ([]byte, error)
}

// SlaveError is an ERROR response from the peripheral.
type SlaveError struct {
	Code int
}

// Error implements error.
func (e *SlaveError) Error() string {
	return fmt.Sprintf("slave error %d", e.Code)
}

// Config holds master-side transaction tuning.
type Config struct {
	// TxDelay is the pause between writing a command and reading the
	// response, long enough for the target IRQ to complete.
	TxDelay time.Duration
	// RetryCount bounds transaction attempts on transport or decode
	// errors. ERROR responses are not retried.
	RetryCount int
	// RetryDelay is the pause between attempts.
	RetryDelay time.Duration
}

// Default transaction tuning, matching the reference master.
var defaultConfig = Config{
	TxDelay:    700 * time.Microsecond,
	RetryCount: 5,
	RetryDelay: 50 * time.Millisecond,
}

// DefaultConfig returns the default transaction tuning.
func DefaultConfig() Config {
	return defaultConfig
}

// Client sends command frames and reads response frames.
type Client struct {
	conf Config
	bus  Bus

	txCount  uint64
	errCount uint64
}

// New creates a client over the bus. Zero config fields take defaults.
func New(conf Config, bus Bus) *Client {
	if conf.TxDelay == 0 {
		conf.TxDelay = defaultConfig.TxDelay
	}
	if conf.RetryCount == 0 {
		conf.RetryCount = defaultConfig.RetryCount
	}
	if conf.RetryDelay == 0 {
		conf.RetryDelay = defaultConfig.RetryDelay
	}
	return &Client{conf: conf, bus: bus}
}

// Counts returns the transaction and error counters.
func (c *Client) Counts() (tx, errs uint64) {
	return c.txCount, c.errCount
}

// Do writes cmd into the command window and reads back the response.
// Transport and decode failures are retried; an ERROR response is
// returned as the response packet alongside a *SlaveError.
func (c *Client) Do(cmd *payload.Packet) (*payload.Packet, error) {
	raw := cmd.Bytes()
	var lastErr error
	for attempt := 0; attempt < c.conf.RetryCount; attempt++ {
		if attempt > 0 {
			time.Sleep(c.conf.RetryDelay)
		}
		c.txCount++
		start := time.Now()
		rsp, err := c.transact(raw)
		if err != nil {
			c.errCount++
			lastErr = err
			glog.Warningf("master: transaction error (attempt %d/%d): %v", attempt+1, c.conf.RetryCount, err)
			continue
		}
		glog.V(1).Infof("master: transaction complete: %.2fms elapsed (%d/%d err/tx)",
			float64(time.Since(start))/float64(time.Millisecond), c.errCount, c.txCount)
		if v, ok := rsp.Verb(); ok && v == payload.Error {
			code := int(rsp.PFwd)
			glog.Warningf("master: slave returned ERROR code %d", code)
			return rsp, &SlaveError{Code: code}
		}
		return rsp, nil
	}
	return nil, fmt.Errorf("transaction failed after %d attempts: %v", c.conf.RetryCount, lastErr)
}

func (c *Client) transact(raw []byte) (*payload.Packet, error) {
	if err := c.bus.MasterWrite(cmdOffset, raw); err != nil {
		return nil, err
	}
	// let the target IRQ run and commit the response
	time.Sleep(c.conf.TxDelay)
	rsp, err := c.bus.MasterRead(rspOffset, payload.PacketSize)
	if err != nil {
		return nil, err
	}
	return payload.FromBytes(rsp)
}

// do sends a verb with fields and verifies the response verb.
func (c *Client) do(v payload.Verb, want payload.Verb, fields [4]float32) (*payload.Packet, error) {
	rsp, err := c.Do(payload.New(v, fields[0], fields[1], fields[2], fields[3]))
	if err != nil {
		return rsp, err
	}
	if got, ok := rsp.Verb(); !ok || got != want {
		return rsp, fmt.Errorf("%v failed: expected %v, got %v", v, want, rsp)
	}
	return rsp, nil
}

// Ping performs a PING sanity check.
func (c *Client) Ping() (*payload.Packet, error) {
	return c.do(payload.Ping, payload.Ping, [4]float32{})
}

// Handshake verifies the peripheral with PING, then enables its
// motor controller.
func (c *Client) Handshake() error {
	if _, err := c.Ping(); err != nil {
		return err
	}
	return c.EnableMotors()
}

// EnableMotors sends ENABLE.
func (c *Client) EnableMotors() error {
	_, err := c.do(payload.Enable, payload.Ack, [4]float32{})
	return err
}

// DisableMotors sends DISABLE.
func (c *Client) DisableMotors() error {
	_, err := c.do(payload.Disable, payload.Ack, [4]float32{})
	return err
}

// Go sets the four motor speeds and returns the applied values.
func (c *Client) Go(pfwd, sfwd, paft, saft float32) ([4]float32, error) {
	rsp, err := c.do(payload.Go, payload.Ack, [4]float32{pfwd, sfwd, paft, saft})
	if err != nil {
		return [4]float32{}, err
	}
	return rsp.Fields(), nil
}

// Stop stops all motors and returns the (zeroed) speeds.
func (c *Client) Stop() ([4]float32, error) {
	rsp, err := c.do(payload.Stop, payload.Ack, [4]float32{})
	if err != nil {
		return [4]float32{}, err
	}
	return rsp.Fields(), nil
}

// Request reads the current motor speeds.
func (c *Client) Request() ([4]float32, error) {
	rsp, err := c.do(payload.Request, payload.Response, [4]float32{})
	if err != nil {
		return [4]float32{}, err
	}
	return rsp.Fields(), nil
}

// SetColor sets the peripheral's status indicator color.
func (c *Client) SetColor(r, g, b float32) error {
	_, err := c.do(payload.Color, payload.Ack, [4]float32{r, g, b, 0})
	return err
}
