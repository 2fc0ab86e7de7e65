// Package fs is the public filesystem API: poweron, poweroff, open,
// close, read, write, seek. It orchestrates the device driver, frame
// cache, frame allocator, and file table into a POSIX-like
// open/close/read/write/seek surface.
package fs

import (
	"log"

	"github.com/jwf5426/HRAM-Filesystem-Driver/allocator"
	"github.com/jwf5426/HRAM-Filesystem-Driver/cache"
	"github.com/jwf5426/HRAM-Filesystem-Driver/device"
	"github.com/jwf5426/HRAM-Filesystem-Driver/filetable"
	"github.com/jwf5426/HRAM-Filesystem-Driver/hram"
)

// FS is the HRAM filesystem driver. The zero value is not usable; build
// one with New.
type FS struct {
	driver *device.Driver
	cache  cache.Cache
	alloc  *allocator.Allocator
	table  *filetable.Table
	log    *log.Logger

	maxCartridges         int
	maxFramesPerCartridge int
	cacheSizeSet          bool
	poweredOn             bool
}

// New builds an FS over the given Exchanger (normally a
// *transport.Transport) with the given device geometry. logger may be
// nil; it is never load-bearing for correctness.
func New(xchg device.Exchanger, maxCartridges, maxFramesPerCartridge int, logger *log.Logger) *FS {
	return &FS{
		driver:                device.New(xchg, maxCartridges, logger),
		alloc:                 allocator.New(maxCartridges, maxFramesPerCartridge),
		table:                 filetable.New(),
		log:                   logger,
		maxCartridges:         maxCartridges,
		maxFramesPerCartridge: maxFramesPerCartridge,
	}
}

func (f *FS) logf(format string, args ...interface{}) {
	if f.log != nil {
		f.log.Printf(format, args...)
	}
}

// SetCacheSize fixes the frame cache's capacity. Must be called before
// PowerOn; growing an initialized cache is not supported.
func (f *FS) SetCacheSize(capacity int) error {
	if f.poweredOn {
		return hram.Wrap(hram.CacheNotInitialized, "set_cache_size must be called before power_on", nil)
	}
	f.cache.SetSize(capacity)
	f.cacheSizeSet = true
	return nil
}

// PowerOn brings the device up, zeroes every cartridge, and initializes
// the frame cache. Must be called once before any file operation.
func (f *FS) PowerOn() error {
	if !f.cacheSizeSet {
		return hram.ErrCacheNotInitialized
	}
	if err := f.driver.PowerOn(); err != nil {
		return err
	}
	if err := f.cache.Init(); err != nil {
		return err
	}
	f.poweredOn = true
	return nil
}

// PowerOff closes all open files (metadata teardown only), shuts down
// the device, and tears down the cache. No operation is valid between
// PowerOff and a subsequent PowerOn.
func (f *FS) PowerOff() error {
	f.table.Reset()
	if err := f.driver.PowerOff(); err != nil {
		return err
	}
	f.cache.Close()
	f.poweredOn = false
	return nil
}

// Open opens name, returning a positive handle. See filetable.Table.Open
// for the create-vs-reopen-vs-already-open rules.
func (f *FS) Open(name string) (int16, error) {
	return f.table.Open(name)
}

// Close closes handle, retaining the file's length and slots for a
// later reopen.
func (f *FS) Close(handle int16) error {
	return f.table.Close(handle)
}

// Seek repositions handle, failing if offset exceeds the file's length.
func (f *FS) Seek(handle int16, offset uint32) error {
	return f.table.Seek(handle, offset)
}

// faultFrame returns slot's payload, fetching it from the device and
// populating the cache on a miss.
func (f *FS) faultFrame(slot hram.Slot) ([]byte, error) {
	if payload, ok := f.cache.Get(slot.Cartridge, slot.Frame); ok {
		return payload, nil
	}

	if err := f.driver.Load(slot.Cartridge); err != nil {
		return nil, err
	}
	buf := make([]byte, hram.FrameSize)
	if err := f.driver.ReadFrame(slot.Frame, buf); err != nil {
		return nil, err
	}
	if err := f.cache.Put(slot.Cartridge, slot.Frame, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// Read reads up to n bytes from handle's current position into out,
// clamped to the file's length, and advances position by the number of
// bytes returned. Returning 0 with a nil error means EOF.
func (f *FS) Read(handle int16, out []byte, n int) (int, error) {
	e, err := f.table.Opened(handle)
	if err != nil {
		return 0, err
	}

	remaining := int(e.Length) - int(e.Position)
	if n > remaining {
		n = remaining
	}
	if n <= 0 {
		return 0, nil
	}

	first := int(e.Position) / hram.FrameSize
	last := (int(e.Position) + n) / hram.FrameSize
	if last > len(e.Slots)-1 {
		last = len(e.Slots) - 1
	}

	local := make([]byte, (last-first+1)*hram.FrameSize)
	for i := first; i <= last; i++ {
		payload, err := f.faultFrame(e.Slots[i])
		if err != nil {
			return 0, err
		}
		copy(local[(i-first)*hram.FrameSize:], payload)
	}

	startInLocal := int(e.Position) - first*hram.FrameSize
	copy(out[:n], local[startInLocal:startInLocal+n])

	e.Position += uint32(n)
	return n, nil
}

// frameRangeCoveringWrite returns the inclusive [first, last] frame
// indices a write of n bytes at position touches.
func frameRangeCoveringWrite(position uint32, n int) (first, last int) {
	first = int(position) / hram.FrameSize
	highestByte := int(position) + n - 1
	last = highestByte / hram.FrameSize
	return first, last
}

// Write writes n bytes from in to handle's current position, extending
// the file with freshly allocated slots as needed, and advances
// position by n. It is write-through: on success the device and cache
// agree on the content of every touched frame. On any failure the
// file's length and position are left unchanged.
func (f *FS) Write(handle int16, in []byte, n int) (int, error) {
	e, err := f.table.Opened(handle)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, nil
	}

	first, last := frameRangeCoveringWrite(e.Position, n)
	for len(e.Slots) < last+1 {
		slot, err := f.alloc.Alloc()
		if err != nil {
			return 0, err
		}
		e.Slots = append(e.Slots, slot)
	}

	for i := first; i <= last; i++ {
		slot := e.Slots[i]
		frameStart := i * hram.FrameSize
		frameEnd := frameStart + hram.FrameSize

		overlapStart := max(int(e.Position), frameStart)
		overlapEnd := min(int(e.Position)+n, frameEnd)

		var buf []byte
		if overlapEnd-overlapStart == hram.FrameSize {
			buf = make([]byte, hram.FrameSize)
		} else {
			buf, err = f.faultFrame(slot)
			if err != nil {
				return 0, err
			}
			fresh := make([]byte, hram.FrameSize)
			copy(fresh, buf)
			buf = fresh
		}

		copy(buf[overlapStart-frameStart:overlapEnd-frameStart], in[overlapStart-int(e.Position):overlapEnd-int(e.Position)])

		if err := f.driver.Load(slot.Cartridge); err != nil {
			return 0, err
		}
		if err := f.driver.WriteFrame(slot.Frame, buf); err != nil {
			return 0, err
		}
		if err := f.cache.Put(slot.Cartridge, slot.Frame, buf); err != nil {
			return 0, err
		}
	}

	newEnd := e.Position + uint32(n)
	if newEnd > e.Length {
		e.Length = newEnd
	}
	e.Position = newEnd
	return n, nil
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
