// Package config holds runtime settings for the SessionKeeper CLI and the
// session subsystem. Values come from defaults, then an optional JSON file,
// then command-line flags, with later sources taking precedence.
package config

import "time"

// Config holds runtime settings.
//
// Fields:
//   - IdentityEndpointAddr: base URL of the identity provider's REST API.
//   - DatabaseDSN: SQLite DSN of the on-device credential store.
//   - DeviceSecretFile: path of the per-installation sealing secret.
//   - RefreshThreshold: lead time before token expiry at which a proactive
//     refresh is attempted.
//   - RequestTimeout: end-to-end bound for identity-provider requests.
type Config struct {
	IdentityEndpointAddr string
	DatabaseDSN          string
	DeviceSecretFile     string
	RefreshThreshold     time.Duration
	RequestTimeout       time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.IdentityEndpointAddr = "http://127.0.0.1:8080"
	c.DatabaseDSN = "sessionkeeper.db"
	c.DeviceSecretFile = "device.key"
	c.RefreshThreshold = 5 * time.Minute
	c.RequestTimeout = 15 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from JSON (if present) and command-line flags (if present). Later sources
// take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
