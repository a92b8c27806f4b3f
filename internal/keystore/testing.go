package keystore

import (
	"strings"
	"sync"
)

// Memory is an in-memory Keyring for tests. It is safe for concurrent
// use and supports simulating an unavailable or failing backend.
type Memory struct {
	mu        sync.Mutex
	entries   map[string]string
	available bool
	failWith  error
}

// NewMemory creates an available, empty in-memory keyring.
func NewMemory() *Memory {
	return &Memory{
		entries:   make(map[string]string),
		available: true,
	}
}

// SetAvailable toggles the simulated platform availability.
func (m *Memory) SetAvailable(available bool) {
	m.mu.Lock()
	m.available = available
	m.mu.Unlock()
}

// FailWith makes every subsequent operation return err. Pass nil to
// clear the injected failure.
func (m *Memory) FailWith(err error) {
	m.mu.Lock()
	m.failWith = err
	m.mu.Unlock()
}

func (m *Memory) Set(service, account, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	// Copy the value like a real out-of-process backend would; callers
	// may pass strings backed by memory they reclaim after Set returns.
	m.entries[service+"\x00"+account] = strings.Clone(value)
	return nil
}

func (m *Memory) Get(service, account string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return "", m.failWith
	}
	value, ok := m.entries[service+"\x00"+account]
	if !ok {
		return "", ErrNotFound
	}
	return value, nil
}

func (m *Memory) Delete(service, account string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	key := service + "\x00" + account
	if _, ok := m.entries[key]; !ok {
		return ErrNotFound
	}
	delete(m.entries, key)
	return nil
}

func (m *Memory) IsAvailable() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.available
}

var _ Keyring = (*Memory)(nil)
