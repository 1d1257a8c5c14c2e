// Package motor holds the target drive values for the four motors.
package motor

import (
	"github.com/golang/glog"

	"github.com/krosbot/kros.go/pkg/component"
	"github.com/krosbot/kros.go/pkg/payload"
)

// Controller stores four target speeds (port-forward,
// starboard-forward, port-aft, starboard-aft) gated by the standard
// component lifecycle. It performs no closed-loop control and no
// range clamping; callers are responsible for sane input.
//
// The controller is not safe for concurrent use. The protocol engine
// is its only mutator and runs single-threaded in the IRQ handler.
type Controller struct {
	component.Lifecycle

	pfwd float32
	sfwd float32
	paft float32
	saft float32
}

// NewController creates a controller, disabled with all speeds zero.
func NewController() *Controller {
	return &Controller{}
}

// Speeds returns the current four target speeds.
func (c *Controller) Speeds() (pfwd, sfwd, paft, saft float32) {
	return c.pfwd, c.sfwd, c.paft, c.saft
}

// Stop zeroes all four speeds. Fails without changes while disabled.
func (c *Controller) Stop() payload.Status {
	if !c.Enabled() {
		return payload.StatusFail
	}
	c.pfwd, c.sfwd, c.paft, c.saft = 0, 0, 0, 0
	glog.V(1).Info("motor: STOP")
	return payload.StatusOkay
}

// Go sets the four target speeds verbatim. Fails without changes
// while disabled.
func (c *Controller) Go(pfwd, sfwd, paft, saft float32) payload.Status {
	if !c.Enabled() {
		return payload.StatusFail
	}
	c.pfwd, c.sfwd, c.paft, c.saft = pfwd, sfwd, paft, saft
	glog.V(1).Infof("motor: GO (pfwd=%.2f, sfwd=%.2f, paft=%.2f, saft=%.2f)", pfwd, sfwd, paft, saft)
	return payload.StatusOkay
}

// Enable allows actuation commands. No-op if already enabled.
func (c *Controller) Enable() {
	if c.Lifecycle.Enable() {
		glog.Info("motor: enabled")
	}
}

// Disable stops the motors and rejects actuation commands until
// re-enabled. The forced stop guarantees a later re-enable cannot
// silently resume motion without an explicit GO.
func (c *Controller) Disable() {
	if !c.Enabled() {
		return
	}
	c.Stop()
	c.Lifecycle.Disable()
	glog.Info("motor: disabled")
}

// Close disables the controller and marks it permanently unusable.
func (c *Controller) Close() {
	if c.Closed() {
		return
	}
	c.Disable()
	c.Lifecycle.Close()
	glog.Info("motor: closed")
}
