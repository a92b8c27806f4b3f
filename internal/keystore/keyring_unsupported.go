//go:build !darwin && !linux && !windows

package keystore

import ccerrors "github.com/systmms/cloudconduit/internal/errors"

// unsupportedKeyring is a stub for platforms without a secure backend.
type unsupportedKeyring struct{}

// newPlatformKeyring creates a stub client for unsupported platforms
func newPlatformKeyring() Keyring {
	return &unsupportedKeyring{}
}

func (k *unsupportedKeyring) Set(service, account, value string) error {
	return ccerrors.ErrStoreUnavailable
}

func (k *unsupportedKeyring) Get(service, account string) (string, error) {
	return "", ccerrors.ErrStoreUnavailable
}

func (k *unsupportedKeyring) Delete(service, account string) error {
	return ccerrors.ErrStoreUnavailable
}

func (k *unsupportedKeyring) IsAvailable() bool {
	return false
}

var _ Keyring = (*unsupportedKeyring)(nil)
