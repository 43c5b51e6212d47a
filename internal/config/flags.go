package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/sessionkeeper/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   base URL of the identity provider (default from Config)
//	-d string   SQLite DSN of the credential store (default from Config)
//	-k string   path of the device secret file (default from Config)
//	-t int      refresh threshold in seconds (default from Config)
//
// The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-k", "-t"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.IdentityEndpointAddr, "a", cfg.IdentityEndpointAddr, "base URL of the identity provider")
	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "SQLite DSN of the credential store")
	fs.StringVar(&cfg.DeviceSecretFile, "k", cfg.DeviceSecretFile, "path of the device secret file")
	refreshThreshold := fs.Int("t", int(cfg.RefreshThreshold.Seconds()), "refresh threshold (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.RefreshThreshold = time.Duration(*refreshThreshold) * time.Second
}
