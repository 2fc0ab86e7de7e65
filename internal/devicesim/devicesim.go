// Package devicesim is a minimal in-memory HRAM device server used only
// by this module's tests. It is not part of the shipped driver: the
// simulator backend itself is explicitly out of scope for the driver
// the rest of this repository implements.
package devicesim

import (
	"encoding/binary"
	"io"
	"net"
	"sync"

	"github.com/jwf5426/HRAM-Filesystem-Driver/bus"
	"github.com/jwf5426/HRAM-Filesystem-Driver/hram"
)

// Server is a single-connection HRAM device simulator: MaxCartridges
// cartridges of MaxFramesPerCartridge frames each, all zeroed when the
// server is created.
type Server struct {
	MaxCartridges        int
	MaxFramesPerCartridge int

	ln net.Listener

	mu       sync.Mutex
	storage  [][][hram.FrameSize]byte
	loaded   int
	poweredOn bool
}

// New starts a simulator listening on 127.0.0.1:0 and returns it along
// with the address it bound to.
func New(maxCartridges, maxFramesPerCartridge int) (*Server, string, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, "", err
	}
	s := &Server{
		MaxCartridges:         maxCartridges,
		MaxFramesPerCartridge: maxFramesPerCartridge,
		ln:                    ln,
		storage:               make([][][hram.FrameSize]byte, maxCartridges),
	}
	for c := range s.storage {
		s.storage[c] = make([][hram.FrameSize]byte, maxFramesPerCartridge)
	}
	go s.acceptLoop()
	return s, ln.Addr().String(), nil
}

// Close stops accepting new connections.
func (s *Server) Close() error {
	return s.ln.Close()
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			return
		}
		go s.serve(conn)
	}
}

func (s *Server) serve(conn net.Conn) {
	defer conn.Close()
	for {
		var reqBytes [8]byte
		if _, err := io.ReadFull(conn, reqBytes[:]); err != nil {
			return
		}
		req := bus.Decode(binary.BigEndian.Uint64(reqBytes[:]))

		var frameBuf [hram.FrameSize]byte
		if req.Key1 == bus.OpWriteFrame {
			if _, err := io.ReadFull(conn, frameBuf[:]); err != nil {
				return
			}
		}

		ret := s.apply(req, &frameBuf)

		respWord := bus.EncodeResponse(req.Key1, req.Cartridge1, req.Frame1, ret)
		var respBytes [8]byte
		binary.BigEndian.PutUint64(respBytes[:], respWord)
		if _, err := conn.Write(respBytes[:]); err != nil {
			return
		}

		// A frame payload follows every read-frame response, even one
		// whose ret reports an error, matching what transport reads.
		if req.Key1 == bus.OpReadFrame {
			if _, err := conn.Write(frameBuf[:]); err != nil {
				return
			}
		}

		if req.Key1 == bus.OpShutdown {
			return
		}
	}
}

func (s *Server) apply(req bus.Word, frameBuf *[hram.FrameSize]byte) (ret uint8) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch req.Key1 {
	case bus.OpInit:
		s.poweredOn = true
		s.loaded = 0
		return 0
	case bus.OpLoadCart:
		if int(req.Cartridge1) >= s.MaxCartridges {
			return 1
		}
		s.loaded = int(req.Cartridge1)
		return 0
	case bus.OpZeroCart:
		for f := range s.storage[s.loaded] {
			s.storage[s.loaded][f] = [hram.FrameSize]byte{}
		}
		return 0
	case bus.OpReadFrame:
		if int(req.Frame1) >= s.MaxFramesPerCartridge {
			return 1
		}
		*frameBuf = s.storage[s.loaded][req.Frame1]
		return 0
	case bus.OpWriteFrame:
		if int(req.Frame1) >= s.MaxFramesPerCartridge {
			return 1
		}
		s.storage[s.loaded][req.Frame1] = *frameBuf
		return 0
	case bus.OpShutdown:
		s.poweredOn = false
		return 0
	default:
		return 1
	}
}
