package engine

import (
	"hash/fnv"
	"sync"
	"time"
)

const dedupShards = 16

// Deduplicator suppresses repeat reads of the same tag on the same
// device. Readers raise several interrupts per physical tap; without
// suppression each tap toggles the attendance state more than once.
type Deduplicator struct {
	window time.Duration
	clock  Clock
	shards [dedupShards]dedupShard
}

type dedupShard struct {
	mu   sync.Mutex
	seen map[string]time.Time
}

func NewDeduplicator(window time.Duration, clock Clock) *Deduplicator {
	if window <= 0 {
		window = 2 * time.Second
	}
	d := &Deduplicator{window: window, clock: clock}
	for i := range d.shards {
		d.shards[i].seen = make(map[string]time.Time)
	}
	return d
}

// Accept records a scan of tagUID on deviceID and reports whether it
// should be processed. A scan of the same pair within the cooldown
// window is suppressed; the window is measured on the engine clock.
func (d *Deduplicator) Accept(deviceID, tagUID string) bool {
	key := deviceID + "\x00" + tagUID
	now := d.clock.Now()

	shard := &d.shards[shardIndex(key)]
	shard.mu.Lock()
	defer shard.mu.Unlock()

	if last, ok := shard.seen[key]; ok && now.Sub(last) < d.window {
		return false
	}
	shard.seen[key] = now

	// Bound shard growth; expired entries are dropped in place.
	if len(shard.seen) > 1024 {
		for k, t := range shard.seen {
			if now.Sub(t) >= d.window {
				delete(shard.seen, k)
			}
		}
	}
	return true
}

func shardIndex(key string) int {
	h := fnv.New32a()
	h.Write([]byte(key))
	return int(h.Sum32() % dedupShards)
}
