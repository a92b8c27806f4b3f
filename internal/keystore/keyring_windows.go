//go:build windows

package keystore

import (
	"errors"

	"github.com/zalando/go-keyring"
)

// windowsKeyring talks to the Windows Credential Manager.
type windowsKeyring struct{}

// newPlatformKeyring creates the platform-specific keyring client
func newPlatformKeyring() Keyring {
	return &windowsKeyring{}
}

func (k *windowsKeyring) Set(service, account, value string) error {
	return keyring.Set(service, account, value)
}

func (k *windowsKeyring) Get(service, account string) (string, error) {
	value, err := keyring.Get(service, account)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}
	return value, nil
}

func (k *windowsKeyring) Delete(service, account string) error {
	if err := keyring.Delete(service, account); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// IsAvailable returns true: the Credential Manager ships with Windows.
func (k *windowsKeyring) IsAvailable() bool {
	return true
}

var _ Keyring = (*windowsKeyring)(nil)
