// Package seqcache memoizes Reel Sequencer output by (histogram, radius,
// seed) so that GA operators that re-sequence an unchanged histogram — most
// visibly mutation that leaves a reel's histogram as it was, and repeated
// initialization retries landing on the same histogram — skip redundant
// gap-DFS work. Elites are cloned without any sequencing call. Adapted from the local ristretto + singleflight cache in
// internal/pkg/cache/cache.go: the event-bus/Redis fan-out is dropped (the
// core has no cross-instance cache to invalidate; see DESIGN.md), the
// GetWithSingleflight dedup shape is kept.
package seqcache

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/dgraph-io/ristretto/v2"
	"golang.org/x/sync/singleflight"

	"github.com/slotmachine/reelsearch/internal/search/searchtypes"
	"github.com/slotmachine/reelsearch/internal/search/sequencer"
)

// Cache memoizes Sequence calls. It is safe for concurrent use: ristretto
// itself is concurrent-safe, and lookups for a not-yet-cached key are
// deduplicated through a singleflight.Group so concurrent fitness
// evaluations that land on the same histogram only sequence it once.
type Cache struct {
	local *ristretto.Cache[string, searchtypes.ReelStrip]
	group singleflight.Group
}

// New constructs a Cache bounded by maxCostBytes total entry cost and sized
// for numCounters distinct keys, per the config SearchConfig fields bound
// in internal/config.
func New(numCounters, maxCostBytes int64) (*Cache, error) {
	local, err := ristretto.NewCache(&ristretto.Config[string, searchtypes.ReelStrip]{
		NumCounters: numCounters,
		MaxCost:     maxCostBytes,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &Cache{local: local}, nil
}

// Key derives a stable cache key from a histogram digest plus the radius
// and seed the Sequencer will run under. It deliberately omits the
// Classifier: safe as long as a single Cache is only ever paired with one
// Classifier for its lifetime (true today — one Cache per ga.Engine, one
// Classifier per Engine). Sharing a Cache across Engines with different
// Classifiers would need the classifier folded into this digest too.
func Key(h searchtypes.StackHistogram, radius int, seed int64) string {
	digest := sha256.New()
	for _, sym := range h.SortedSymbols() {
		var buf [8]byte
		binary.BigEndian.PutUint64(buf[:], uint64(sym))
		digest.Write(buf[:])
		for _, n := range h[sym] {
			binary.BigEndian.PutUint64(buf[:], uint64(n))
			digest.Write(buf[:])
		}
	}
	return fmt.Sprintf("%x:%d:%d", digest.Sum(nil), radius, seed)
}

// Sequence returns the cached strip for (h, radius, seed, classify) if
// present; otherwise it sequences once (deduplicated across concurrent
// callers for the same key) and caches the result.
func (c *Cache) Sequence(h searchtypes.StackHistogram, radius int, seed int64, classify sequencer.Classifier) (searchtypes.ReelStrip, error) {
	key := Key(h, radius, seed)

	if strip, found := c.local.Get(key); found {
		return strip, nil
	}

	val, err, _ := c.group.Do(key, func() (interface{}, error) {
		if strip, found := c.local.Get(key); found {
			return strip, nil
		}
		strip, err := sequencer.SequenceWithClassifier(h, radius, seed, 0, classify)
		if err != nil {
			return nil, err
		}
		cost := int64(len(strip)) * 8
		c.local.Set(key, strip, cost)
		c.local.Wait()
		return strip, nil
	})
	if err != nil {
		return nil, err
	}
	return val.(searchtypes.ReelStrip), nil
}
