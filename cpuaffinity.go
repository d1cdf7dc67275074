//go:build linux

package darknet

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"syscall"
	"unsafe"
)

// SetCPUAffinity sets the CPU Affinity mask of the calling OS thread only.
// The goroutine must be locked with runtime.LockOSThread for the mask to
// stay with it, use SetProcessCPUAffinity to pin darknet's OpenMP workers
func SetCPUAffinity(mask uintptr) error {

	if err := setAffinity(0, mask); err != nil {
		return fmt.Errorf("failed to set CPU affinity: %w", err)
	}

	return nil
}

// SetProcessCPUAffinity sets the CPU Affinity mask of every thread of the
// process.  Threads created afterwards, such as darknet's OpenMP workers,
// inherit the mask so call it before Load
func SetProcessCPUAffinity(mask uintptr) error {

	tasks, err := os.ReadDir("/proc/self/task")

	if err != nil {
		return fmt.Errorf("failed to list threads: %w", err)
	}

	for _, task := range tasks {
		tid, err := strconv.Atoi(task.Name())

		if err != nil {
			continue
		}

		// thread exited since the listing
		if err := setAffinity(tid, mask); err != nil && err != syscall.ESRCH {
			return fmt.Errorf("failed to set CPU affinity of thread %d: %w", tid, err)
		}
	}

	return nil
}

// setAffinity calls sched_setaffinity for thread tid, 0 being the caller
func setAffinity(tid int, mask uintptr) error {

	_, _, errno := syscall.RawSyscall(syscall.SYS_SCHED_SETAFFINITY, uintptr(tid),
		unsafe.Sizeof(mask), uintptr(unsafe.Pointer(&mask)))

	if errno != 0 {
		return errno
	}

	return nil
}

// GetCPUAffinity gets the current CPU Affinity mask the program is running on
func GetCPUAffinity() (uintptr, error) {

	var mask uintptr

	_, _, err := syscall.RawSyscall(syscall.SYS_SCHED_GETAFFINITY, 0,
		unsafe.Sizeof(mask), uintptr(unsafe.Pointer(&mask)))

	if err != 0 {
		return 0, fmt.Errorf("failed to get CPU affinity: %w", err)
	}

	return mask, nil
}

// CPUCoreMask calculates the core mask by passing in the CPU core numbers as a
// slice, eg: []int{4,5,6,7}.  Cores outside of the mask width are ignored
func CPUCoreMask(cores []int) uintptr {

	var mask uintptr

	for _, core := range cores {
		if core < 0 || core >= int(unsafe.Sizeof(mask))*8 {
			continue
		}

		mask |= 1 << core
	}

	return mask
}

// AllCoresMask returns the core mask of every CPU available to the program
func AllCoresMask() uintptr {

	cores := make([]int, runtime.NumCPU())

	for i := range cores {
		cores[i] = i
	}

	return CPUCoreMask(cores)
}
