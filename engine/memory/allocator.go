package memory

import (
	"fmt"
	"sync"
	"unsafe"
)

// Stats are the allocation counters of an Engine
type Stats struct {
	// Allocs is the total number of allocations made
	Allocs int
	// Frees is the total number of allocations released
	Frees int
	// Live is the number of allocations not yet released
	Live int
	// LiveByKind breaks Live down by allocation kind, eg: "image", "prob"
	LiveByKind map[string]int
}

// allocator tracks every buffer handed across the engine boundary.  Keys are
// the address of the first element so the map also keeps the buffer
// reachable until it is freed.
type allocator struct {
	mu     sync.Mutex
	live   map[unsafe.Pointer]string
	allocs int
	frees  int
}

func newAllocator() *allocator {
	return &allocator{
		live: make(map[unsafe.Pointer]string),
	}
}

// floats allocates a zeroed float buffer of n elements.  The backing array
// always has capacity for one element so zero sized buffers still have a
// unique address
func (a *allocator) floats(kind string, n int) []float32 {

	buf := make([]float32, n, max(n, 1))

	a.track(kind, unsafe.Pointer(unsafe.SliceData(buf)))

	return buf
}

// track records ptr as live
func (a *allocator) track(kind string, ptr unsafe.Pointer) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.live[ptr] = kind
	a.allocs++
}

// release frees ptr, panicking on a pointer that is not live
func (a *allocator) release(kind string, ptr unsafe.Pointer) {
	a.mu.Lock()
	defer a.mu.Unlock()

	got, ok := a.live[ptr]

	if !ok {
		panic(fmt.Sprintf("memory: double free or invalid pointer releasing %s %p", kind, ptr))
	}

	if got != kind {
		panic(fmt.Sprintf("memory: releasing %s %p that was allocated as %s", kind, ptr, got))
	}

	delete(a.live, ptr)
	a.frees++
}

// releaseFloats frees a buffer returned by floats
func (a *allocator) releaseFloats(kind string, buf []float32) {
	a.release(kind, unsafe.Pointer(unsafe.SliceData(buf[:cap(buf)])))
}

// stats returns a snapshot of the counters
func (a *allocator) stats() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()

	s := Stats{
		Allocs:     a.allocs,
		Frees:      a.frees,
		Live:       len(a.live),
		LiveByKind: make(map[string]int),
	}

	for _, kind := range a.live {
		s.LiveByKind[kind]++
	}

	return s
}
