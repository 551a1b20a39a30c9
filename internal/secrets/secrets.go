// Package secrets stores the optional remote-vision API key in the OS
// keychain rather than alongside the learning database, adapted from the
// teacher's master-encryption-key keyring wrapper.
package secrets

import (
	"fmt"
	"os"

	zkr "github.com/zalando/go-keyring"
)

const (
	serviceName   = "nexus"
	visionAccount = "vision-api-key"
)

// GetVisionAPIKey retrieves the optional remote-vision API key from the OS
// keychain. Returns ("", nil) if no key has been stored.
func GetVisionAPIKey() (string, error) {
	key, err := zkr.Get(serviceName, visionAccount)
	if err != nil {
		if err == zkr.ErrNotFound {
			return "", nil
		}
		return "", fmt.Errorf("keychain get: %w", err)
	}
	return key, nil
}

// SetVisionAPIKey stores the remote-vision API key in the OS keychain.
func SetVisionAPIKey(key string) error {
	return zkr.Set(serviceName, visionAccount, key)
}

// DeleteVisionAPIKey removes the stored key.
func DeleteVisionAPIKey() error {
	return zkr.Delete(serviceName, visionAccount)
}

// Available reports whether the OS keychain is usable. Set
// NEXUS_KEYRING_DISABLED=1 to force this off for headless/CI environments.
func Available() bool {
	if os.Getenv("NEXUS_KEYRING_DISABLED") == "1" {
		return false
	}
	const probeService, probeAccount = "nexus-keyring-probe", "probe"
	if err := zkr.Set(probeService, probeAccount, "ok"); err != nil {
		return false
	}
	_ = zkr.Delete(probeService, probeAccount)
	return true
}
