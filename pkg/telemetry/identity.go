package telemetry

import (
	"os"

	"github.com/denisbrodbeck/machineid"
)

// DeviceID returns a stable identifier for this device, used as the
// topic segment distinguishing peripherals on a shared broker. Falls
// back to the hostname when no machine id is available.
func DeviceID() string {
	if id, err := machineid.ID(); err == nil {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "unknown"
}
