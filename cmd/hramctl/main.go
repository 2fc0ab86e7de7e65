// Command hramctl is a thin one-shot operator tool: it powers on an
// HRAM server, runs a single open/read/write/seek/close invocation
// against it, and exits. It owns no logic of its own; every operation
// it performs belongs to the fs package.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/jwf5426/HRAM-Filesystem-Driver/config"
	"github.com/jwf5426/HRAM-Filesystem-Driver/fs"
	"github.com/jwf5426/HRAM-Filesystem-Driver/hramlog"
	"github.com/jwf5426/HRAM-Filesystem-Driver/transport"
)

func main() {
	opPtr := flag.String("op", "", "operation: read, write, seek")
	namePtr := flag.String("name", "", "file name to open")
	offsetPtr := flag.Int("offset", 0, "seek offset, or read/write start position")
	countPtr := flag.Int("count", 0, "bytes to read or write")
	dataPtr := flag.String("data", "", "literal bytes to write")
	logPathPtr := flag.String("log", "", "log file path (stdout if empty)")

	flag.Parse()

	if *opPtr == "" || *namePtr == "" {
		fmt.Println("-op and -name are required")
		flag.PrintDefaults()
		os.Exit(1)
	}

	cfg := config.Load()
	logger := hramlog.New(*logPathPtr)

	tr := transport.New(cfg.Addr(), logger)
	driver := fs.New(tr, cfg.MaxCartridges, cfg.MaxFramesPerCartridge, logger)

	cacheFrames := cfg.CacheFrames
	if cacheFrames <= 0 {
		cacheFrames = 8
	}
	if err := driver.SetCacheSize(cacheFrames); err != nil {
		fail(err)
	}
	if err := driver.PowerOn(); err != nil {
		fail(err)
	}
	defer driver.PowerOff()

	handle, err := driver.Open(*namePtr)
	if err != nil {
		fail(err)
	}
	defer driver.Close(handle)

	if *offsetPtr > 0 {
		if err := driver.Seek(handle, uint32(*offsetPtr)); err != nil {
			fail(err)
		}
	}

	switch *opPtr {
	case "read":
		buf := make([]byte, *countPtr)
		n, err := driver.Read(handle, buf, *countPtr)
		if err != nil {
			fail(err)
		}
		fmt.Printf("read %d bytes: %q\n", n, buf[:n])
	case "write":
		payload := []byte(*dataPtr)
		n, err := driver.Write(handle, payload, len(payload))
		if err != nil {
			fail(err)
		}
		fmt.Printf("wrote %d bytes\n", n)
	case "seek":
		fmt.Printf("sought to %d\n", *offsetPtr)
	default:
		fmt.Println("unknown -op:", *opPtr)
		flag.PrintDefaults()
		os.Exit(1)
	}
}

func fail(err error) {
	fmt.Println(err)
	os.Exit(1)
}
