// Package hramlog builds the stdlib *log.Logger every other package in
// this module accepts, writing to a file when given a path and to
// stdout otherwise.
package hramlog

import (
	"log"
	"os"
)

// New returns a logger tagged "HRAM". With an empty path it writes to
// stdout; otherwise it appends to (creating if needed) the file at
// path.
func New(path string) *log.Logger {
	if len(path) == 0 {
		return log.New(os.Stdout, "HRAM ", log.Ldate|log.Ltime|log.Lshortfile)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0666)
	if err != nil {
		log.Fatal(err)
	}
	l := log.New(f, "HRAM ", log.Ldate|log.Ltime|log.Lshortfile)
	l.Printf("logging to %s", path)
	return l
}
