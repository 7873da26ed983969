package store

import "sync"

// keyPool provides reusable byte slices for building database keys.
// This reduces allocations on the hot path of database operations.
var keyPool = sync.Pool{
	New: func() any {
		// 256 bytes covers prefix + user ID + separator + NanoID.
		return make([]byte, 0, 256)
	},
}

// buildKey constructs a database key from parts using a pooled buffer.
// The returned slice is valid until releaseKey is called.
// Callers MUST call releaseKey when done with the key.
//
// Usage:
//
//	key := buildKey(userPrefix, userID)
//	defer releaseKey(key)
//	item, err := txn.Get(key)
func buildKey(parts ...string) []byte {
	buf, _ := keyPool.Get().([]byte)
	buf = buf[:0] // Reset length, keep capacity
	for _, p := range parts {
		buf = append(buf, p...)
	}
	return buf
}

// releaseKey returns a key buffer to the pool for reuse.
// After calling this, the key slice must not be used.
func releaseKey(key []byte) {
	// Avoid keeping oversized buffers in the pool.
	if cap(key) <= 512 {
		keyPool.Put(key[:0])
	}
}
