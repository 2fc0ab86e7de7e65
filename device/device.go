// Package device wraps a bus transport with the stateful opcode
// sequencing the HRAM device requires: init before any other operation,
// a tracked "currently loaded" cartridge that read/write/zero target,
// and an orderly shutdown.
package device

import (
	"fmt"
	"log"

	"github.com/jwf5426/HRAM-Filesystem-Driver/bus"
	"github.com/jwf5426/HRAM-Filesystem-Driver/hram"
)

// Exchanger is the subset of transport.Transport the driver depends on,
// so tests can substitute a fake.
type Exchanger interface {
	Exchange(request uint64, buf []byte) (bus.Word, error)
}

// Driver issues HRAM bus opcodes and tracks which cartridge is loaded.
type Driver struct {
	xchg Exchanger
	log  *log.Logger

	maxCartridges int
	loaded        int
	loadedValid   bool
}

// New builds a Driver over the given Exchanger. maxCartridges bounds
// the cartridges PowerOn will load-and-zero. logger may be nil.
func New(xchg Exchanger, maxCartridges int, logger *log.Logger) *Driver {
	return &Driver{xchg: xchg, maxCartridges: maxCartridges, log: logger}
}

func (d *Driver) logf(format string, args ...interface{}) {
	if d.log != nil {
		d.log.Printf(format, args...)
	}
}

func (d *Driver) run(key1 bus.Opcode, cartridge1, frame1 uint16, buf []byte) (bus.Word, error) {
	word, err := d.xchg.Exchange(bus.Encode(key1, cartridge1, frame1), buf)
	if err != nil {
		return bus.Word{}, err
	}
	if word.Ret != 0 {
		return word, hram.Wrap(hram.DeviceError,
			fmt.Sprintf("opcode %d cartridge %d frame %d returned ret=1", key1, cartridge1, frame1), nil)
	}
	return word, nil
}

// PowerOn initializes the memory system, then loads and zeroes every
// cartridge in [0, maxCartridges), leaving the last cartridge loaded.
func (d *Driver) PowerOn() error {
	if _, err := d.run(bus.OpInit, 0, 0, nil); err != nil {
		return hram.Wrap(hram.DeviceError, "init failed", err)
	}
	for c := 0; c < d.maxCartridges; c++ {
		if _, err := d.run(bus.OpLoadCart, uint16(c), 0, nil); err != nil {
			return hram.Wrap(hram.DeviceError, fmt.Sprintf("loading cartridge %d", c), err)
		}
		d.loaded, d.loadedValid = c, true

		if err := d.ZeroCurrent(); err != nil {
			return err
		}
	}
	d.logf("device: power on complete, %d cartridges zeroed", d.maxCartridges)
	return nil
}

// PowerOff issues the shutdown opcode. The caller is responsible for
// tearing down the file table and cache around this call.
func (d *Driver) PowerOff() error {
	if _, err := d.run(bus.OpShutdown, 0, 0, nil); err != nil {
		return hram.Wrap(hram.DeviceError, "shutdown failed", err)
	}
	d.loadedValid = false
	d.logf("device: power off complete")
	return nil
}

// Load switches the currently targetable cartridge, skipping the bus
// round trip if it is already loaded.
func (d *Driver) Load(cartridge uint16) error {
	if d.loadedValid && d.loaded == int(cartridge) {
		return nil
	}
	if _, err := d.run(bus.OpLoadCart, cartridge, 0, nil); err != nil {
		return hram.Wrap(hram.DeviceError, fmt.Sprintf("loading cartridge %d", cartridge), err)
	}
	d.loaded, d.loadedValid = int(cartridge), true
	return nil
}

// LoadedCartridge reports the cartridge targetable by read/write/zero,
// and whether a load has happened yet.
func (d *Driver) LoadedCartridge() (uint16, bool) {
	return uint16(d.loaded), d.loadedValid
}

// ZeroCurrent zeroes every frame of the currently loaded cartridge.
func (d *Driver) ZeroCurrent() error {
	_, err := d.run(bus.OpZeroCart, 0, 0, nil)
	if err != nil {
		return hram.Wrap(hram.DeviceError, "zero current cartridge failed", err)
	}
	return nil
}

// ReadFrame reads frame on the currently loaded cartridge into out,
// which must be exactly hram.FrameSize bytes. The caller must Load the
// owning cartridge first.
func (d *Driver) ReadFrame(frame uint16, out []byte) error {
	if len(out) != hram.FrameSize {
		return hram.Wrap(hram.DeviceError, "read buffer must be FrameSize bytes", nil)
	}
	_, err := d.run(bus.OpReadFrame, 0, frame, out)
	if err != nil {
		return hram.Wrap(hram.DeviceError, fmt.Sprintf("reading frame %d", frame), err)
	}
	return nil
}

// WriteFrame writes in (exactly hram.FrameSize bytes) to frame on the
// currently loaded cartridge. The caller must Load the owning cartridge
// first.
func (d *Driver) WriteFrame(frame uint16, in []byte) error {
	if len(in) != hram.FrameSize {
		return hram.Wrap(hram.DeviceError, "write buffer must be FrameSize bytes", nil)
	}
	_, err := d.run(bus.OpWriteFrame, 0, frame, in)
	if err != nil {
		return hram.Wrap(hram.DeviceError, fmt.Sprintf("writing frame %d", frame), err)
	}
	return nil
}
