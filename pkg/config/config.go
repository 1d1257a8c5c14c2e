// Package config loads the peripheral configuration from a TOML file.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/krosbot/kros.go/pkg/slave"
)

// Address is a 7-bit I2C target address. In the file it may be given
// as an integer or as a numeric string literal ("67", "0x43").
type Address uint8

// UnmarshalTOML implements toml.Unmarshaler.
func (a *Address) UnmarshalTOML(v interface{}) error {
	var n int64
	switch x := v.(type) {
	case int64:
		n = x
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(x), 0, 16)
		if err != nil {
			return fmt.Errorf("address %q: %v", x, err)
		}
		n = parsed
	default:
		return fmt.Errorf("address: expected integer or string, got %T", v)
	}
	if n < 0x08 || n > 0x77 {
		return fmt.Errorf("address %#02x: outside valid 7-bit range [0x08, 0x77]", n)
	}
	*a = Address(n)
	return nil
}

// I2C configures the bus-target side.
type I2C struct {
	Bus          int     `toml:"bus"`
	Address      Address `toml:"address"`
	CommitHoldUS int     `toml:"commit_hold_us"`
	Debug        bool    `toml:"debug"`
}

// Telemetry configures the optional MQTT/websocket status bridge.
type Telemetry struct {
	Enabled bool   `toml:"enabled"`
	MQTTURL string `toml:"mqtt_url"`
	WSAddr  string `toml:"ws_addr"`
}

// Config is the full peripheral configuration.
type Config struct {
	I2C       I2C       `toml:"i2c"`
	Telemetry Telemetry `toml:"telemetry"`
}

// Default returns the configuration used when fields are absent.
func Default() Config {
	return Config{
		I2C: I2C{
			Bus:          1,
			Address:      0x43,
			CommitHoldUS: 50,
		},
		Telemetry: Telemetry{
			MQTTURL: "mqtt://localhost:1883/kros/",
		},
	}
}

// Load reads path over the defaults and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("load config %s: %v", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks field ranges.
func (c Config) Validate() error {
	if c.I2C.Bus < 0 {
		return fmt.Errorf("i2c.bus %d: must not be negative", c.I2C.Bus)
	}
	if c.I2C.Address < 0x08 || c.I2C.Address > 0x77 {
		return fmt.Errorf("i2c.address %#02x: outside valid 7-bit range [0x08, 0x77]", uint8(c.I2C.Address))
	}
	if c.I2C.CommitHoldUS < 0 {
		return fmt.Errorf("i2c.commit_hold_us %d: must not be negative", c.I2C.CommitHoldUS)
	}
	if c.Telemetry.Enabled && c.Telemetry.MQTTURL == "" {
		return fmt.Errorf("telemetry.mqtt_url: required when telemetry is enabled")
	}
	return nil
}

// SlaveConfig maps the file configuration onto the protocol engine.
func (c Config) SlaveConfig() slave.Config {
	return slave.Config{
		Bus:        c.I2C.Bus,
		Addr:       uint8(c.I2C.Address),
		CommitHold: time.Duration(c.I2C.CommitHoldUS) * time.Microsecond,
		Debug:      c.I2C.Debug,
	}
}
