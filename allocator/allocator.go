// Package allocator hands out fresh device slots from a single
// monotonic (cartridge, frame) cursor. Allocation is append-only:
// freed slots are never reclaimed.
package allocator

import (
	"sync"

	"github.com/jwf5426/HRAM-Filesystem-Driver/hram"
)

// Allocator is a monotonic slot cursor, starting at (0, 0). It guards
// its cursor with a mutex even though the driver's single-threaded
// contract never contends on it today — a defensive seam a future
// multi-threaded caller would need.
type Allocator struct {
	mu sync.Mutex

	maxCartridges         int
	maxFramesPerCartridge int

	nextCartridge int
	nextFrame     int
}

// New builds an Allocator for a device with the given geometry.
func New(maxCartridges, maxFramesPerCartridge int) *Allocator {
	return &Allocator{
		maxCartridges:         maxCartridges,
		maxFramesPerCartridge: maxFramesPerCartridge,
	}
}

// Alloc returns the next free slot and advances the cursor. It fails
// once every cartridge has been exhausted.
func (a *Allocator) Alloc() (hram.Slot, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.nextCartridge >= a.maxCartridges {
		return hram.Slot{}, hram.ErrAllocatorExhausted
	}

	slot := hram.Slot{Cartridge: uint16(a.nextCartridge), Frame: uint16(a.nextFrame)}

	a.nextFrame++
	if a.nextFrame == a.maxFramesPerCartridge {
		a.nextFrame = 0
		a.nextCartridge++
	}

	return slot, nil
}
