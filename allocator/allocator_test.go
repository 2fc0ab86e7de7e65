package allocator

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jwf5426/HRAM-Filesystem-Driver/hram"
)

func TestAllocAdvancesFrameThenCartridge(t *testing.T) {
	a := New(2, 2)

	slot, err := a.Alloc()
	require.NoError(t, err)
	require.Equal(t, hram.Slot{Cartridge: 0, Frame: 0}, slot)

	slot, err = a.Alloc()
	require.NoError(t, err)
	require.Equal(t, hram.Slot{Cartridge: 0, Frame: 1}, slot)

	slot, err = a.Alloc()
	require.NoError(t, err)
	require.Equal(t, hram.Slot{Cartridge: 1, Frame: 0}, slot)
}

func TestAllocFailsWhenExhausted(t *testing.T) {
	a := New(1, 2)

	_, err := a.Alloc()
	require.NoError(t, err)
	_, err = a.Alloc()
	require.NoError(t, err)

	_, err = a.Alloc()
	require.ErrorIs(t, err, hram.ErrAllocatorExhausted)

	// exhaustion is sticky
	_, err = a.Alloc()
	require.ErrorIs(t, err, hram.ErrAllocatorExhausted)
}

func TestAllocationIsAppendOnlyAcrossManyCalls(t *testing.T) {
	a := New(3, 4)
	var slots []hram.Slot
	for i := 0; i < 12; i++ {
		s, err := a.Alloc()
		require.NoError(t, err)
		slots = append(slots, s)
	}
	// each emitted slot is distinct: the allocator never reissues one
	seen := map[hram.Slot]bool{}
	for _, s := range slots {
		require.False(t, seen[s], "slot %+v issued twice", s)
		seen[s] = true
	}
	_, err := a.Alloc()
	require.ErrorIs(t, err, hram.ErrAllocatorExhausted)
}
