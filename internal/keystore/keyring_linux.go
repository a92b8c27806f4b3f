//go:build linux

package keystore

import (
	"errors"
	"os"

	"github.com/zalando/go-keyring"
)

// linuxKeyring talks to the Secret Service API (gnome-keyring, KWallet).
type linuxKeyring struct{}

// newPlatformKeyring creates the platform-specific keyring client
func newPlatformKeyring() Keyring {
	return &linuxKeyring{}
}

func (k *linuxKeyring) Set(service, account, value string) error {
	return keyring.Set(service, account, value)
}

func (k *linuxKeyring) Get(service, account string) (string, error) {
	value, err := keyring.Get(service, account)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}
	return value, nil
}

func (k *linuxKeyring) Delete(service, account string) error {
	if err := keyring.Delete(service, account); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// IsAvailable reports whether a Secret Service implementation is likely
// reachable. Headless sessions without a session bus cannot unlock a
// collection, so the store degrades to absence there.
func (k *linuxKeyring) IsAvailable() bool {
	if os.Getenv("DBUS_SESSION_BUS_ADDRESS") == "" {
		return false
	}
	if os.Getenv("DISPLAY") == "" && os.Getenv("WAYLAND_DISPLAY") == "" {
		return false
	}
	return true
}

var _ Keyring = (*linuxKeyring)(nil)
