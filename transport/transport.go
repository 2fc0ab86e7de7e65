// Package transport relays HRAM bus registers and frame payloads to a
// remote device server over TCP, performing register byte-order
// conversion. Frame payloads are opaque bytes.
package transport

import (
	"encoding/binary"
	"fmt"
	"log"
	"net"
	"time"

	"github.com/jwf5426/HRAM-Filesystem-Driver/bus"
	"github.com/jwf5426/HRAM-Filesystem-Driver/hram"
)

// Transport is a lazily-connecting TCP client for the HRAM device wire
// protocol. The zero value is not usable; build one with New.
type Transport struct {
	addr string
	dial func(network, address string) (net.Conn, error)

	conn net.Conn
	log  *log.Logger
}

// New returns a Transport that will lazily connect to addr (host:port)
// on its first Exchange call. logger may be nil.
func New(addr string, logger *log.Logger) *Transport {
	return &Transport{addr: addr, dial: net.Dial, log: logger}
}

func (t *Transport) logf(format string, args ...interface{}) {
	if t.log != nil {
		t.log.Printf(format, args...)
	}
}

func (t *Transport) ensureConnected() error {
	if t.conn != nil {
		return nil
	}
	conn, err := t.dial("tcp", t.addr)
	if err != nil {
		return hram.Wrap(hram.DeviceError, fmt.Sprintf("connect to %s", t.addr), err)
	}
	t.conn = conn
	return nil
}

// Exchange sends a request register and, depending on the opcode
// encoded in it, reads from or writes to buf:
//
//   - read frame (key1==3): buf is filled with FrameSize bytes read back
//   - write frame (key1==4): FrameSize bytes are written from buf
//   - shutdown (key1==5): the connection is closed after the exchange
//   - all other opcodes: buf is unused
//
// It returns the decoded response word, or an error on any short read,
// short write, or connection failure.
func (t *Transport) Exchange(request uint64, buf []byte) (bus.Word, error) {
	if err := t.ensureConnected(); err != nil {
		return bus.Word{}, err
	}

	req := bus.Decode(request)

	var netWord [8]byte
	binary.BigEndian.PutUint64(netWord[:], request)

	if err := t.writeFull(netWord[:]); err != nil {
		return bus.Word{}, err
	}

	if req.Key1 == bus.OpWriteFrame {
		if len(buf) != hram.FrameSize {
			return bus.Word{}, hram.Wrap(hram.DeviceError, "write frame buffer must be FrameSize bytes", nil)
		}
		if err := t.writeFull(buf); err != nil {
			return bus.Word{}, err
		}
	}

	var respWord [8]byte
	if err := t.readFull(respWord[:]); err != nil {
		return bus.Word{}, err
	}
	response := binary.BigEndian.Uint64(respWord[:])

	if req.Key1 == bus.OpReadFrame {
		if len(buf) != hram.FrameSize {
			return bus.Word{}, hram.Wrap(hram.DeviceError, "read frame buffer must be FrameSize bytes", nil)
		}
		if err := t.readFull(buf); err != nil {
			return bus.Word{}, err
		}
	}

	if req.Key1 == bus.OpShutdown {
		t.logf("transport: shutdown exchange complete, closing connection to %s", t.addr)
		_ = t.conn.Close()
		t.conn = nil
	}

	return bus.Decode(response), nil
}

func (t *Transport) writeFull(data []byte) error {
	n, err := t.conn.Write(data)
	if err != nil || n != len(data) {
		t.closeAfterFailure()
		return hram.Wrap(hram.DeviceError, "short write to device", err)
	}
	return nil
}

func (t *Transport) readFull(data []byte) error {
	read := 0
	for read < len(data) {
		n, err := t.conn.Read(data[read:])
		read += n
		if err != nil {
			t.closeAfterFailure()
			return hram.Wrap(hram.DeviceError, "short read from device", err)
		}
	}
	return nil
}

// closeAfterFailure tears the connection down so the next Exchange call
// re-arms the lazy-connect state; a mid-exchange failure leaves the
// socket in an undefined state per the transport's ordering guarantee.
func (t *Transport) closeAfterFailure() {
	if t.conn != nil {
		_ = t.conn.Close()
		t.conn = nil
	}
}

// SetDialTimeout wraps the dialer with a fixed connect timeout. Used by
// callers that want to fail fast against an unreachable device server.
func (t *Transport) SetDialTimeout(d time.Duration) {
	t.dial = func(network, address string) (net.Conn, error) {
		return net.DialTimeout(network, address, d)
	}
}
