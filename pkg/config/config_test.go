package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
	require.Equal(t, uint8(0x43), cfg.SlaveConfig().Addr)
	require.Equal(t, 50*time.Microsecond, cfg.SlaveConfig().CommitHold)
}

func TestLoadAddressForms(t *testing.T) {
	testCases := []struct {
		name    string
		address string
		want    Address
	}{
		{"integer", "address = 67", 0x43},
		{"hex string", `address = "0x43"`, 0x43},
		{"decimal string", `address = "67"`, 0x43},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, "[i2c]\n"+tc.address+"\n"))
			require.NoError(t, err)
			require.Equal(t, tc.want, cfg.I2C.Address)
		})
	}
}

func TestLoadFull(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
[i2c]
bus = 2
address = "0x21"
commit_hold_us = 120
debug = true

[telemetry]
enabled = true
mqtt_url = "mqtt://broker:1883/kros/"
ws_addr = ":8090"
`))
	require.NoError(t, err)
	require.Equal(t, 2, cfg.I2C.Bus)
	require.Equal(t, Address(0x21), cfg.I2C.Address)
	require.True(t, cfg.I2C.Debug)
	require.Equal(t, 120*time.Microsecond, cfg.SlaveConfig().CommitHold)
	require.True(t, cfg.Telemetry.Enabled)
	require.Equal(t, ":8090", cfg.Telemetry.WSAddr)
}

func TestLoadRejectsBadAddress(t *testing.T) {
	testCases := []struct {
		name    string
		content string
	}{
		{"not numeric", "[i2c]\naddress = \"garage\"\n"},
		{"reserved low", "[i2c]\naddress = 3\n"},
		{"beyond 7 bits", "[i2c]\naddress = 0x80\n"},
		{"wrong type", "[i2c]\naddress = 4.3\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.content))
			require.Error(t, err)
		})
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.I2C.Bus = -1
	require.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Telemetry.Enabled = true
	cfg.Telemetry.MQTTURL = ""
	require.Error(t, cfg.Validate())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/does/not/exist.toml")
	require.Error(t, err)
}
