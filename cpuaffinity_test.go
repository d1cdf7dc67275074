//go:build linux

package darknet

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lowestCore returns a mask of the lowest core set in mask
func lowestCore(mask uintptr) uintptr {
	return mask & -mask
}

func TestCPUCoreMask(t *testing.T) {
	assert.Equal(t, uintptr(0xf0), CPUCoreMask([]int{4, 5, 6, 7}))
	assert.Equal(t, uintptr(0x1), CPUCoreMask([]int{0, -1, 4096}))
	assert.NotZero(t, AllCoresMask())
}

func TestSetCPUAffinity(t *testing.T) {

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	orig, err := GetCPUAffinity()
	require.NoError(t, err)
	require.NotZero(t, orig)

	defer SetCPUAffinity(orig)

	require.NoError(t, SetCPUAffinity(lowestCore(orig)))

	got, err := GetCPUAffinity()
	require.NoError(t, err)
	assert.Equal(t, lowestCore(orig), got)
}

func TestSetProcessCPUAffinity(t *testing.T) {

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	orig, err := GetCPUAffinity()
	require.NoError(t, err)

	defer SetProcessCPUAffinity(orig)

	require.NoError(t, SetProcessCPUAffinity(lowestCore(orig)))

	got, err := GetCPUAffinity()
	require.NoError(t, err)
	assert.Equal(t, lowestCore(orig), got)

	// a thread started afterwards inherits the mask
	done := make(chan uintptr)

	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()

		m, _ := GetCPUAffinity()
		done <- m
	}()

	assert.Equal(t, lowestCore(orig), <-done)
}
