// Package filetable holds per-file metadata: name, handle, length,
// position, and the ordered slots backing a file's contents. The
// namespace is flat — no directory hierarchy — so lookup is a linear
// scan by name or by handle.
package filetable

import "github.com/jwf5426/HRAM-Filesystem-Driver/hram"

// Entry is one file's metadata. Slot i backs bytes
// [i*hram.FrameSize, (i+1)*hram.FrameSize) of the file.
type Entry struct {
	Name     string
	Handle   int16
	Length   uint32
	Position uint32
	Slots    []hram.Slot
}

// Table is the flat, process-lifetime collection of file entries. An
// entry is created on first Open of a name and survives Close; only
// PowerOff (via Reset) releases it.
type Table struct {
	entries []*Entry

	// maxIssuedHandle is the high-water mark of every handle value this
	// table has ever assigned, so a closed handle can be told apart
	// from one that was never issued.
	maxIssuedHandle int16
}

// New returns an empty file table.
func New() *Table {
	return &Table{}
}

// Reset drops every entry, as PowerOff does to the driver's file table.
func (t *Table) Reset() {
	t.entries = nil
	t.maxIssuedHandle = 0
}

func (t *Table) byName(name string) *Entry {
	for _, e := range t.entries {
		if e.Name == name {
			return e
		}
	}
	return nil
}

// ByHandle returns the currently open entry for handle. A handle this
// table has issued at some point but that is presently closed reports
// ErrHandleNotOpen; a handle it has never issued (including handle <= 0)
// reports ErrInvalidHandle.
func (t *Table) ByHandle(handle int16) (*Entry, error) {
	if handle <= 0 {
		return nil, hram.ErrInvalidHandle
	}
	for _, e := range t.entries {
		if e.Handle == handle {
			return e, nil
		}
	}
	if handle <= t.maxIssuedHandle {
		return nil, hram.ErrHandleNotOpen
	}
	return nil, hram.ErrInvalidHandle
}

// smallestFreeHandle returns the smallest positive int16 not currently
// assigned as an open handle.
func (t *Table) smallestFreeHandle() int16 {
	for candidate := int16(1); ; candidate++ {
		free := true
		for _, e := range t.entries {
			if e.Handle == candidate {
				free = false
				break
			}
		}
		if free {
			return candidate
		}
	}
}

// Open creates a new entry for name on first use, or reopens an
// existing closed entry (reviving its content, resetting its
// position). Opening an already-open name fails with ErrAlreadyOpen.
func (t *Table) Open(name string) (int16, error) {
	e := t.byName(name)
	if e == nil {
		handle := t.smallestFreeHandle()
		e = &Entry{Name: name, Handle: handle}
		t.entries = append(t.entries, e)
		t.noteIssued(handle)
		return handle, nil
	}

	if e.Handle > 0 {
		return 0, hram.ErrAlreadyOpen
	}

	e.Position = 0
	e.Handle = t.smallestFreeHandle()
	t.noteIssued(e.Handle)
	return e.Handle, nil
}

func (t *Table) noteIssued(handle int16) {
	if handle > t.maxIssuedHandle {
		t.maxIssuedHandle = handle
	}
}

// Close marks handle's entry closed, resetting position but retaining
// length and slots for a later reopen.
func (t *Table) Close(handle int16) error {
	e, err := t.ByHandle(handle)
	if err != nil {
		return err
	}
	e.Handle = 0
	e.Position = 0
	return nil
}

// Seek sets handle's entry position to offset, failing if the handle
// is bad or closed, or offset exceeds the file's length.
func (t *Table) Seek(handle int16, offset uint32) error {
	e, err := t.ByHandle(handle)
	if err != nil {
		return err
	}
	if offset > e.Length {
		return hram.ErrSeekOutOfRange
	}
	e.Position = offset
	return nil
}

// Opened returns handle's entry, failing if the handle is bad or
// closed. Callers (the fs package) use this before mutating
// Position/Length/Slots directly for read/write.
func (t *Table) Opened(handle int16) (*Entry, error) {
	return t.ByHandle(handle)
}
