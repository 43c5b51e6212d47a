package cryptox

import (
	"fmt"
	"os"

	"github.com/dmitrijs2005/sessionkeeper/internal/common"
)

const deviceSecretSize = 32

// LoadOrCreateDeviceSecret reads the per-installation secret from path,
// creating it with fresh entropy on first run. The file stands in for the
// platform keystore that holds the sealing material on mobile targets.
func LoadOrCreateDeviceSecret(path string) ([]byte, error) {
	secret, err := os.ReadFile(path)
	if err == nil {
		if len(secret) != deviceSecretSize {
			return nil, fmt.Errorf("device secret %s has unexpected size %d", path, len(secret))
		}
		return secret, nil
	}
	if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read device secret: %w", err)
	}

	secret = common.GenerateRandByteArray(deviceSecretSize)
	if err := os.WriteFile(path, secret, 0o600); err != nil {
		return nil, fmt.Errorf("write device secret: %w", err)
	}
	return secret, nil
}
