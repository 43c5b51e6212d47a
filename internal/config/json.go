package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/sessionkeeper/internal/flagx"
	"github.com/dmitrijs2005/sessionkeeper/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so JSON can specify intervals either as strings like "5m"
// or as integer nanoseconds. After parsing, values are copied into the
// runtime Config (which uses time.Duration).
type JsonConfig struct {
	IdentityEndpointAddr string         `json:"identity_endpoint_addr"`
	DatabaseDSN          string         `json:"database_dsn"`
	DeviceSecretFile     string         `json:"device_secret_file"`
	RefreshThreshold     timex.Duration `json:"refresh_threshold"`
	RequestTimeout       timex.Duration `json:"request_timeout"`
}

// parseJson overlays Config with values loaded from a JSON file.
//
// The file path is resolved from the -c or -config flags via
// flagx.JsonConfigFlags(); if empty, no JSON is loaded. Read or unmarshal
// errors panic (caller should recover if desired). Intended usage is:
// defaults -> parseJson -> parseFlags, where later stages override earlier
// ones.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.IdentityEndpointAddr != "" {
		cfg.IdentityEndpointAddr = jc.IdentityEndpointAddr
	}
	if jc.DatabaseDSN != "" {
		cfg.DatabaseDSN = jc.DatabaseDSN
	}
	if jc.DeviceSecretFile != "" {
		cfg.DeviceSecretFile = jc.DeviceSecretFile
	}
	if jc.RefreshThreshold.Duration != 0 {
		cfg.RefreshThreshold = time.Duration(jc.RefreshThreshold.Duration)
	}
	if jc.RequestTimeout.Duration != 0 {
		cfg.RequestTimeout = time.Duration(jc.RequestTimeout.Duration)
	}
}
