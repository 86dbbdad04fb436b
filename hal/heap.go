package hal

import (
	"fmt"
	"sort"
	"sync"
)

type span struct {
	addr uintptr
	size uintptr
}

// Heap is a first-fit allocator over [base, base+size).
//
// It only hands out address ranges; on the host nothing backs them. Free spans
// are kept sorted by address and coalesced on Dealloc.
type Heap struct {
	mu    sync.Mutex
	base  uintptr
	size  uintptr
	free  []span
	inUse uintptr
}

// NewHeap initializes a heap over the given range (init_heap).
func NewHeap(base, size uintptr) *Heap {
	h := &Heap{}
	h.Init(base, size)
	return h
}

// Init (re)initializes the heap. Outstanding allocations are forgotten.
func (h *Heap) Init(base, size uintptr) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.base = base
	h.size = size
	h.free = []span{{addr: base, size: size}}
	h.inUse = 0
}

// InUse returns the number of allocated bytes.
func (h *Heap) InUse() uintptr {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.inUse
}

func alignUp(v, align uintptr) uintptr {
	if align <= 1 {
		return v
	}
	return (v + align - 1) &^ (align - 1)
}

func (h *Heap) Alloc(size, align uintptr) (uintptr, error) {
	if size == 0 {
		size = 1
	}
	if align == 0 || align&(align-1) != 0 {
		return 0, fmt.Errorf("heap: alloc %d: bad alignment %d", size, align)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, s := range h.free {
		start := alignUp(s.addr, align)
		end := s.addr + s.size
		if start < s.addr || start+size > end {
			continue
		}
		// Split into [s.addr,start) + allocation + [start+size,end).
		var repl []span
		if start > s.addr {
			repl = append(repl, span{addr: s.addr, size: start - s.addr})
		}
		if start+size < end {
			repl = append(repl, span{addr: start + size, size: end - start - size})
		}
		h.free = append(h.free[:i], append(repl, h.free[i+1:]...)...)
		h.inUse += size
		return start, nil
	}
	return 0, fmt.Errorf("heap: alloc %d align %d: %w", size, align, ErrOutOfMemory)
}

func (h *Heap) Dealloc(addr, size uintptr) {
	if size == 0 {
		size = 1
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	i := sort.Search(len(h.free), func(i int) bool { return h.free[i].addr >= addr })
	h.free = append(h.free, span{})
	copy(h.free[i+1:], h.free[i:])
	h.free[i] = span{addr: addr, size: size}
	h.inUse -= size

	// Coalesce with the right neighbour, then the left.
	if i+1 < len(h.free) && h.free[i].addr+h.free[i].size == h.free[i+1].addr {
		h.free[i].size += h.free[i+1].size
		h.free = append(h.free[:i+1], h.free[i+2:]...)
	}
	if i > 0 && h.free[i-1].addr+h.free[i-1].size == h.free[i].addr {
		h.free[i-1].size += h.free[i].size
		h.free = append(h.free[:i], h.free[i+1:]...)
	}
}

func (h *Heap) Realloc(addr, oldSize, newSize, align uintptr) (uintptr, error) {
	if newSize <= oldSize {
		if newSize < oldSize {
			h.Dealloc(addr+newSize, oldSize-newSize)
		}
		return addr, nil
	}
	n, err := h.Alloc(newSize, align)
	if err != nil {
		return 0, err
	}
	h.Dealloc(addr, oldSize)
	return n, nil
}
