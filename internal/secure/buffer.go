// Package secure holds secret material in protected memory while it is
// in flight between a prompt and the platform credential store.
package secure

import (
	"sync"

	"github.com/awnumar/memguard"
)

// Buffer wraps memguard.Enclave to keep a secret encrypted at rest in
// memory and out of swap while the process still needs it.
type Buffer struct {
	enclave *memguard.Enclave
	mu      sync.RWMutex
	// destroyed allows idempotent Destroy() calls and prevents use
	// after destroy
	destroyed bool
}

// NewBuffer copies data into a protected memory region. The caller
// should zero its own copy afterwards.
func NewBuffer(data []byte) *Buffer {
	return &Buffer{enclave: memguard.NewEnclave(data)}
}

// Open decrypts the buffer into a locked region. The caller MUST call
// Destroy() on the returned LockedBuffer to wipe the plaintext.
func (b *Buffer) Open() (*memguard.LockedBuffer, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.destroyed {
		return memguard.NewBufferFromBytes([]byte{}), nil
	}
	return b.enclave.Open()
}

// Destroy marks the buffer unusable. Idempotent. The encrypted enclave
// data is garbage collected; call memguard.Purge() at process exit for
// full cleanup.
func (b *Buffer) Destroy() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.destroyed {
		return
	}
	b.enclave = nil
	b.destroyed = true
}
