// Package keystore provides the secure credential store backed by the
// platform keyring (macOS Keychain, Linux Secret Service, Windows
// Credential Manager).
//
// All entries live under one fixed service identifier so they stay
// isolated from other applications' secrets. The store holds no secret
// material in process memory beyond the single call that needs it.
package keystore

import (
	"errors"
	"fmt"

	ccerrors "github.com/systmms/cloudconduit/internal/errors"
	"github.com/systmms/cloudconduit/internal/logging"
	"github.com/systmms/cloudconduit/internal/profile"
)

// ServiceName is the fixed application identifier that scopes all
// keyring entries written by this tool.
const ServiceName = "cloudconduit"

// ErrNotFound indicates that no entry exists for an account.
var ErrNotFound = errors.New("secure store entry not found")

// Keyring abstracts the platform secret storage backend so the store
// can be exercised against a fake in tests.
type Keyring interface {
	Set(service, account, value string) error
	Get(service, account string) (string, error)
	Delete(service, account string) error
	IsAvailable() bool
}

// Store manages credential entries in the platform keyring.
type Store struct {
	ring    Keyring
	logger  *logging.Logger
	service string
}

// New creates a store backed by the current platform's keyring.
func New(logger *logging.Logger) *Store {
	return NewWithKeyring(newPlatformKeyring(), logger)
}

// NewWithKeyring creates a store with a custom backend. This is
// primarily for testing.
func NewWithKeyring(ring Keyring, logger *logging.Logger) *Store {
	return &Store{
		ring:    ring,
		logger:  logger,
		service: ServiceName,
	}
}

// IsAvailable reports whether the platform has a usable secure storage
// backend. When false, Get degrades to absence and Set/Delete fail with
// an unavailability error that resolution treats as non-fatal.
func (s *Store) IsAvailable() bool {
	return s.ring.IsAvailable()
}

// Set stores a credential value for a canonical key. Only
// credential-flagged keys may be stored; refusing the rest keeps
// non-secret configuration out of the keyring.
func (s *Store) Set(p profile.ServiceProfile, key, username, value string) error {
	account, err := s.credentialAccount(p, key, username)
	if err != nil {
		return err
	}
	if !s.ring.IsAvailable() {
		return ccerrors.StoreOpError("set", account, ccerrors.ErrStoreUnavailable)
	}
	if err := s.ring.Set(s.service, account, value); err != nil {
		return ccerrors.StoreOpError("set", account, err)
	}
	s.logger.Debug("Stored credential for account %s", account)
	return nil
}

// Get retrieves a credential value. Absence is not an error: a missing
// entry, an unavailable platform backend, and a failed read all report
// absence, the last with a logged warning.
func (s *Store) Get(p profile.ServiceProfile, key, username string) (string, bool) {
	account, err := s.credentialAccount(p, key, username)
	if err != nil {
		s.logger.Warn("%v", err)
		return "", false
	}
	if !s.ring.IsAvailable() {
		return "", false
	}
	value, err := s.ring.Get(s.service, account)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Warn("Secure store read failed for %s: %v", account, err)
		}
		return "", false
	}
	return value, true
}

// Delete removes a credential entry. Deleting an entry that does not
// exist is a no-op success.
func (s *Store) Delete(p profile.ServiceProfile, key, username string) error {
	account, err := s.credentialAccount(p, key, username)
	if err != nil {
		return err
	}
	if !s.ring.IsAvailable() {
		return ccerrors.StoreOpError("delete", account, ccerrors.ErrStoreUnavailable)
	}
	if err := s.ring.Delete(s.service, account); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return ccerrors.StoreOpError("delete", account, err)
	}
	return nil
}

// credentialAccount canonicalizes the key, checks it is a credential
// field, and builds the keyring account name.
func (s *Store) credentialAccount(p profile.ServiceProfile, key, username string) (string, error) {
	canonical, err := profile.Canonical(p, key)
	if err != nil {
		return "", err
	}
	def, _ := profile.Lookup(p, canonical)
	if !def.Credential {
		return "", ccerrors.ConfigError{
			Field:      "key",
			Value:      canonical,
			Message:    fmt.Sprintf("'%s' is not a credential field for profile '%s'", canonical, p),
			Suggestion: "Non-secret fields belong in the defaults file or environment variables, not the secure store",
		}
	}
	return profile.StoreAccount(p, canonical, username), nil
}
