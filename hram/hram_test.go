package hram

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSentinelsCompareByKindViaErrorsIs(t *testing.T) {
	err := Wrap(InvalidHandle, "handle 7 is not open", nil)
	require.True(t, errors.Is(err, ErrInvalidHandle))
	require.False(t, errors.Is(err, ErrSeekOutOfRange))
}

func TestUnwrapReachesCause(t *testing.T) {
	cause := errors.New("short read from device")
	err := Wrap(DeviceError, "reading frame 3", cause)
	require.True(t, errors.Is(err, cause))

	var herr *Error
	require.ErrorAs(t, err, &herr)
	require.Equal(t, DeviceError, herr.Kind)
}

func TestErrorStringIncludesDetail(t *testing.T) {
	err := Wrap(OutOfMemory, "no eviction candidate found", nil)
	require.Equal(t, "out of memory: no eviction candidate found", err.Error())

	bare := &Error{Kind: AlreadyOpen}
	require.Equal(t, "already open", bare.Error())
}
