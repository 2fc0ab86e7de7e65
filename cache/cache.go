// Package cache implements the fixed-capacity frame cache: a priority-
// ranked table of (cartridge, frame) -> 1024-byte payload, with
// deterministic eviction and priority re-ranking on every hit.
//
// Priority 1 means most recently touched; priority equal to the cache's
// capacity means next in line to be evicted. Occupied entries always
// hold a permutation of {1, ..., occupiedCount}. An entry inserted into
// a still-unoccupied slot takes the new occupied count as its priority,
// so it ranks as the next victim until it is touched again.
package cache

import "github.com/jwf5426/HRAM-Filesystem-Driver/hram"

type entry struct {
	occupied  bool
	cartridge uint16
	frame     uint16
	payload   [hram.FrameSize]byte
	priority  int
}

// Cache is a fixed-capacity, in-memory frame cache. The zero value is
// not usable; call SetSize then Init before Put/Get.
type Cache struct {
	capacity int
	entries  []entry
	occupied int
}

// SetSize fixes the cache's capacity. Must be called before Init;
// growing an initialized cache is not supported.
func (c *Cache) SetSize(capacity int) {
	c.capacity = capacity
}

// Init allocates the cache's backing storage.
func (c *Cache) Init() error {
	if c.capacity <= 0 {
		return hram.Wrap(hram.OutOfMemory, "cache size must be set and positive before init", nil)
	}
	c.entries = make([]entry, c.capacity)
	c.occupied = 0
	return nil
}

// Close clears the cache's contents.
func (c *Cache) Close() {
	c.entries = nil
	c.occupied = 0
}

func (c *Cache) initialized() bool { return c.entries != nil }

// find returns the index of the occupied entry for (cartridge, frame),
// or -1 if absent.
func (c *Cache) find(cartridge, frame uint16) int {
	for i := range c.entries {
		e := &c.entries[i]
		if e.occupied && e.cartridge == cartridge && e.frame == frame {
			return i
		}
	}
	return -1
}

// refreshToFront promotes entries[idx] to priority 1, shifting every
// entry whose priority was strictly below its previous priority up by
// one, preserving the {1..occupiedCount} permutation.
func (c *Cache) refreshToFront(idx int) {
	previous := c.entries[idx].priority
	c.entries[idx].priority = 1
	for i := range c.entries {
		if i == idx || !c.entries[i].occupied {
			continue
		}
		if c.entries[i].priority < previous {
			c.entries[i].priority++
		}
	}
}

// victimIndex returns the occupied entry whose priority equals the
// current occupied count (the next eviction candidate).
func (c *Cache) victimIndex() int {
	for i := range c.entries {
		if c.entries[i].occupied && c.entries[i].priority == c.occupied {
			return i
		}
	}
	return -1
}

// Put inserts or refreshes the cached payload for (cartridge, frame).
// It never fails on a well-formed, initialized cache.
func (c *Cache) Put(cartridge, frame uint16, payload []byte) error {
	if !c.initialized() {
		return hram.ErrCacheNotInitialized
	}
	if len(payload) != hram.FrameSize {
		return hram.Wrap(hram.OutOfMemory, "payload must be FrameSize bytes", nil)
	}

	if idx := c.find(cartridge, frame); idx != -1 {
		copy(c.entries[idx].payload[:], payload)
		c.refreshToFront(idx)
		return nil
	}

	if c.occupied < c.capacity {
		idx := c.occupied
		c.occupied++
		c.entries[idx] = entry{
			occupied: true,
			cartridge: cartridge,
			frame:     frame,
			priority:  c.occupied, // next victim until touched; see package doc
		}
		copy(c.entries[idx].payload[:], payload)
		return nil
	}

	idx := c.victimIndex()
	if idx == -1 {
		return hram.Wrap(hram.OutOfMemory, "no eviction candidate found", nil)
	}
	c.entries[idx].cartridge = cartridge
	c.entries[idx].frame = frame
	copy(c.entries[idx].payload[:], payload)
	c.refreshToFront(idx)
	return nil
}

// Get returns a copy of the cached payload for (cartridge, frame) and
// true on a hit, refreshing its priority to 1. It returns false on a
// miss; it never returns an error for a well-formed, initialized cache.
func (c *Cache) Get(cartridge, frame uint16) ([]byte, bool) {
	if !c.initialized() {
		return nil, false
	}
	idx := c.find(cartridge, frame)
	if idx == -1 {
		return nil, false
	}
	c.refreshToFront(idx)
	out := make([]byte, hram.FrameSize)
	copy(out, c.entries[idx].payload[:])
	return out, true
}

// Delete removes (cartridge, frame) from the cache, if present. The
// filesystem layer does not call this; it exists for completeness and,
// per the cache's failure semantics, does not bother repairing the
// priority permutation it leaves behind.
func (c *Cache) Delete(cartridge, frame uint16) ([]byte, bool) {
	if !c.initialized() {
		return nil, false
	}
	idx := c.find(cartridge, frame)
	if idx == -1 {
		return nil, false
	}
	out := make([]byte, hram.FrameSize)
	copy(out, c.entries[idx].payload[:])
	c.entries[idx].occupied = false
	return out, true
}
