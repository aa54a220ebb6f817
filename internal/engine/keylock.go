package engine

import (
	"hash/fnv"
	"sync"
)

const lockStripes = 64

// keyMutex serializes mutation per logical key (device id, student+session
// pair) without a global lock. Keys are striped over a fixed set of
// mutexes; unrelated keys rarely share a stripe.
type keyMutex struct {
	stripes [lockStripes]sync.Mutex
}

func newKeyMutex() *keyMutex {
	return &keyMutex{}
}

// Lock acquires the stripe for key and returns it for the caller to
// unlock.
func (m *keyMutex) Lock(key string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(key))
	mu := &m.stripes[h.Sum32()%lockStripes]
	mu.Lock()
	return mu
}
