//go:build darwin

package keystore

import (
	"errors"

	"github.com/zalando/go-keyring"
)

// darwinKeyring talks to the macOS Keychain.
type darwinKeyring struct{}

// newPlatformKeyring creates the platform-specific keyring client
func newPlatformKeyring() Keyring {
	return &darwinKeyring{}
}

func (k *darwinKeyring) Set(service, account, value string) error {
	return keyring.Set(service, account, value)
}

func (k *darwinKeyring) Get(service, account string) (string, error) {
	value, err := keyring.Get(service, account)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}
	return value, nil
}

func (k *darwinKeyring) Delete(service, account string) error {
	if err := keyring.Delete(service, account); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// IsAvailable returns true: the Keychain ships with macOS.
func (k *darwinKeyring) IsAvailable() bool {
	return true
}

var _ Keyring = (*darwinKeyring)(nil)
