package errors

import (
	"errors"
	"fmt"
	"strings"
)

// UserError represents an error that should be shown to the user with helpful context
type UserError struct {
	Message    string
	Suggestion string
	Details    string
	Err        error
}

func (e UserError) Error() string {
	var parts []string

	if e.Message != "" {
		parts = append(parts, e.Message)
	} else if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}

	if e.Details != "" {
		parts = append(parts, "\n  Details: "+e.Details)
	}

	if e.Suggestion != "" {
		parts = append(parts, "\n  💡 Try: "+e.Suggestion)
	}

	return strings.Join(parts, "")
}

func (e UserError) Unwrap() error {
	return e.Err
}

// ConfigError represents a configuration error with helpful context
type ConfigError struct {
	Field      string
	Value      interface{}
	Message    string
	Suggestion string
}

func (e ConfigError) Error() string {
	msg := "Configuration error"
	if e.Field != "" {
		msg += fmt.Sprintf(" in field '%s'", e.Field)
	}
	if e.Value != nil {
		msg += fmt.Sprintf(" (value: %v)", e.Value)
	}
	msg += ": " + e.Message

	if e.Suggestion != "" {
		msg += "\n  💡 " + e.Suggestion
	}

	return msg
}

// Secure store sentinel errors
var (
	ErrStoreUnavailable = fmt.Errorf("secure store not available on this platform")
	ErrStoreLocked      = fmt.Errorf("secure store is locked")
	ErrStoreDenied      = fmt.Errorf("secure store access denied")
)

// StoreError wraps secure credential store failures with context
type StoreError struct {
	Op      string // Operation: "set", "get", "delete"
	Account string
	Err     error
}

func (e *StoreError) Error() string {
	if e.Account != "" {
		return fmt.Sprintf("secure store %s error for %s: %v", e.Op, e.Account, e.Err)
	}
	return fmt.Sprintf("secure store %s error: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// IsUnavailable reports whether err means the platform has no secure
// store backend. Resolution treats this as absence, not failure.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrStoreUnavailable)
}

// MissingFieldsError reports every required field that resolved to
// absence, across all sources, in a single message.
type MissingFieldsError struct {
	Profile string
	Fields  []string
}

func (e MissingFieldsError) Error() string {
	msg := fmt.Sprintf("missing required configuration for %s: %s",
		e.Profile, strings.Join(e.Fields, ", "))
	return msg + "\n  💡 Set the corresponding environment variables, store credentials with 'cloudconduit credential set', or add non-secret fields to the defaults file"
}

// StoreOpError enhances secure-store errors with a platform suggestion
func StoreOpError(op, account string, err error) error {
	wrapped := &StoreError{Op: op, Account: account, Err: err}
	suggestion := storeSuggestion(err)
	if suggestion == "" {
		return wrapped
	}
	return UserError{
		Message:    wrapped.Error(),
		Suggestion: suggestion,
		Err:        wrapped,
	}
}

// storeSuggestion returns a helpful suggestion for common keyring failures
func storeSuggestion(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrStoreUnavailable) {
		return "This platform has no secure storage backend. Use environment variables instead"
	}
	if errors.Is(err, ErrStoreLocked) {
		return "Unlock your keychain/keyring and retry"
	}

	errStr := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errStr, "locked"):
		return "Unlock your keychain/keyring and retry"
	case strings.Contains(errStr, "denied") || strings.Contains(errStr, "canceled"):
		return "Approve the keychain access prompt, or check keychain ACLs for cloudconduit"
	case strings.Contains(errStr, "dbus") || strings.Contains(errStr, "secret service"):
		return "Ensure a Secret Service implementation (gnome-keyring, KWallet) is running"
	}
	return ""
}

// IsRetryable checks if an error is retryable
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrStoreLocked) {
		return true
	}

	errStr := strings.ToLower(err.Error())
	retryablePatterns := []string{
		"timeout",
		"temporary failure",
		"locked",
		"in use",
		"busy",
		"prompt dismissed",
	}

	for _, pattern := range retryablePatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}

	return false
}
