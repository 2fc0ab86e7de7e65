package filetable

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jwf5426/HRAM-Filesystem-Driver/hram"
)

func TestOpenCreatesNewEntry(t *testing.T) {
	tbl := New()
	h, err := tbl.Open("a")
	require.NoError(t, err)
	require.Equal(t, int16(1), h)

	e, err := tbl.Opened(h)
	require.NoError(t, err)
	require.Equal(t, "a", e.Name)
	require.Equal(t, uint32(0), e.Length)
	require.Equal(t, uint32(0), e.Position)
}

func TestOpenAlreadyOpenFails(t *testing.T) {
	tbl := New()
	_, err := tbl.Open("a")
	require.NoError(t, err)

	_, err = tbl.Open("a")
	require.ErrorIs(t, err, hram.ErrAlreadyOpen)
}

func TestHandleReuseScenario(t *testing.T) {
	// handle reuse after close picks the smallest free handle
	tbl := New()
	h1, err := tbl.Open("x")
	require.NoError(t, err)
	require.Equal(t, int16(1), h1)

	h2, err := tbl.Open("y")
	require.NoError(t, err)
	require.Equal(t, int16(2), h2)

	require.NoError(t, tbl.Close(h1))

	h3, err := tbl.Open("z")
	require.NoError(t, err)
	require.Equal(t, int16(1), h3)
}

func TestReopenPreservesContent(t *testing.T) {
	tbl := New()
	h, err := tbl.Open("p")
	require.NoError(t, err)

	e, err := tbl.Opened(h)
	require.NoError(t, err)
	e.Length = 4
	e.Position = 4
	e.Slots = append(e.Slots, hram.Slot{Cartridge: 0, Frame: 0})

	require.NoError(t, tbl.Close(h))

	h2, err := tbl.Open("p")
	require.NoError(t, err)

	e2, err := tbl.Opened(h2)
	require.NoError(t, err)
	require.Equal(t, uint32(4), e2.Length)
	require.Equal(t, uint32(0), e2.Position) // position resets, length/slots persist
	require.Len(t, e2.Slots, 1)
}

func TestCloseNeverIssuedHandleFails(t *testing.T) {
	tbl := New()
	err := tbl.Close(99)
	require.ErrorIs(t, err, hram.ErrInvalidHandle)
}

func TestCloseAlreadyClosedHandleFails(t *testing.T) {
	tbl := New()
	h, err := tbl.Open("a")
	require.NoError(t, err)
	require.NoError(t, tbl.Close(h))

	err = tbl.Close(h)
	require.ErrorIs(t, err, hram.ErrHandleNotOpen)
}

func TestSeekPastEndRejected(t *testing.T) {
	// seeking past end of file is rejected
	tbl := New()
	h, err := tbl.Open("q")
	require.NoError(t, err)

	e, err := tbl.Opened(h)
	require.NoError(t, err)
	e.Length = 2
	e.Position = 2

	err = tbl.Seek(h, 3)
	require.ErrorIs(t, err, hram.ErrSeekOutOfRange)

	e2, err := tbl.Opened(h)
	require.NoError(t, err)
	require.Equal(t, uint32(2), e2.Position) // unchanged on failure
}

func TestSeekOnNeverIssuedHandleFails(t *testing.T) {
	tbl := New()
	err := tbl.Seek(5, 0)
	require.ErrorIs(t, err, hram.ErrInvalidHandle)
}

func TestSeekOnClosedHandleFails(t *testing.T) {
	tbl := New()
	h, err := tbl.Open("r")
	require.NoError(t, err)
	require.NoError(t, tbl.Close(h))

	err = tbl.Seek(h, 0)
	require.ErrorIs(t, err, hram.ErrHandleNotOpen)
}
