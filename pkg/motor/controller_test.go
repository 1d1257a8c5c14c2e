package motor

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/krosbot/kros.go/pkg/component"
	"github.com/krosbot/kros.go/pkg/payload"
)

func speeds(c *Controller) [4]float32 {
	pfwd, sfwd, paft, saft := c.Speeds()
	return [4]float32{pfwd, sfwd, paft, saft}
}

func TestControllerInitialState(t *testing.T) {
	c := NewController()
	require.Equal(t, component.Disabled, c.State())
	require.Equal(t, [4]float32{}, speeds(c))
}

func TestControllerRejectsWhileDisabled(t *testing.T) {
	c := NewController()
	require.Equal(t, payload.StatusFail, c.Go(1, 2, 3, 4))
	require.Equal(t, payload.StatusFail, c.Stop())
	require.Equal(t, [4]float32{}, speeds(c))
}

func TestControllerGoStop(t *testing.T) {
	c := NewController()
	c.Enable()
	require.Equal(t, payload.StatusOkay, c.Go(1.0, 1.0, -1.0, -1.0))
	require.Equal(t, [4]float32{1.0, 1.0, -1.0, -1.0}, speeds(c))

	require.Equal(t, payload.StatusOkay, c.Stop())
	require.Equal(t, [4]float32{}, speeds(c))
}

func TestControllerDisableForcesStop(t *testing.T) {
	c := NewController()
	c.Enable()
	require.Equal(t, payload.StatusOkay, c.Go(0.5, 0.5, 0.5, 0.5))

	c.Disable()
	require.Equal(t, [4]float32{}, speeds(c), "disable zeroes the targets")

	// re-enable alone never resumes motion
	c.Enable()
	require.Equal(t, [4]float32{}, speeds(c))
}

func TestControllerDisabledKeepsSpeedsOnRejectedGo(t *testing.T) {
	c := NewController()
	c.Enable()
	c.Go(0.25, 0.25, 0.25, 0.25)
	c.Disable()

	before := speeds(c)
	require.Equal(t, payload.StatusFail, c.Go(9, 9, 9, 9))
	require.Equal(t, before, speeds(c))
}

func TestControllerIdempotentLifecycle(t *testing.T) {
	c := NewController()
	c.Enable()
	c.Enable()
	require.Equal(t, component.Enabled, c.State())
	c.Disable()
	c.Disable()
	require.Equal(t, component.Disabled, c.State())
}

func TestControllerClose(t *testing.T) {
	c := NewController()
	c.Enable()
	c.Go(1, 1, 1, 1)
	c.Close()
	require.Equal(t, component.Closed, c.State())
	require.Equal(t, [4]float32{}, speeds(c))

	require.Equal(t, payload.StatusFail, c.Go(1, 1, 1, 1))
	c.Close()
	require.Equal(t, component.Closed, c.State())
}
