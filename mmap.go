package avltriee

import (
	"fmt"
	"math"
	"reflect"
	"unsafe"

	"github.com/alexhholmes/avltriee/internal/storage"
)

// initialSlots is the slot capacity of a newly created arena file.
const initialSlots = 64

// MmapAllocator is an Allocator whose arena lives in a memory-mapped file.
//
// T must not contain pointers (no strings, slices, maps, interfaces or
// pointers), since the slots are raw file bytes. The file keeps the slots
// across restarts; reopen it with OpenMmapAllocator and attach an engine with
// Load. Only Sync makes the contents durable.
type MmapAllocator[T any] struct {
	m        *storage.MMap
	header   storage.Header
	slotSize uintptr
	nodes    []Node[T]
	logger   Logger
}

// OpenMmapAllocator opens or creates the arena file at path. An existing file
// must have been written for the same slot layout.
func OpenMmapAllocator[T any](path string, opts ...Option) (*MmapAllocator[T], error) {
	options := DefaultOptions()
	for _, opt := range opts {
		opt(&options)
	}

	typ := reflect.TypeFor[Node[T]]()
	if hasPointers(typ) {
		return nil, fmt.Errorf("%w: %s", ErrPointerValue, typ)
	}
	slotSize := typ.Size()

	m, err := storage.Open(path, storage.HeaderSize+int64(slotSize)*initialSlots)
	if err != nil {
		return nil, err
	}

	a := &MmapAllocator[T]{
		m:        m,
		slotSize: slotSize,
		logger:   options.logger,
	}

	if m.Empty() {
		a.header = storage.NewHeader(uint32(slotSize), a.fit())
		storage.WriteHeader(m.Bytes(), &a.header)
	} else {
		if m.Size() < storage.HeaderSize {
			_ = m.Close()
			return nil, fmt.Errorf("%w: %d byte file has no header", ErrCorruption, m.Size())
		}
		a.header = storage.ReadHeader(m.Bytes())
		if err := a.header.Validate(uint32(slotSize)); err != nil {
			_ = m.Close()
			return nil, err
		}
		if a.header.Capacity == 0 || a.header.Capacity > a.fit() {
			_ = m.Close()
			return nil, fmt.Errorf("%w: header lists %d slots, file holds %d", ErrCorruption, a.header.Capacity, a.fit())
		}
	}

	a.remap()
	a.logger.Info("arena mapped", "path", path, "slots", a.header.Capacity, "slotSize", slotSize, "created", m.Empty())
	return a, nil
}

func (a *MmapAllocator[T]) Nodes() []Node[T] {
	return a.nodes
}

func (a *MmapAllocator[T]) Get(row RowID) (*Node[T], bool) {
	if row == 0 || int(row) >= len(a.nodes) {
		return nil, false
	}
	return &a.nodes[row], true
}

func (a *MmapAllocator[T]) Resize(rowsCount uint32) error {
	if a.nodes == nil {
		return fmt.Errorf("%w: %w", ErrAllocation, ErrAllocatorClosed)
	}
	want := uint64(rowsCount) + 1
	if want <= uint64(a.header.Capacity) {
		return nil
	}
	if want > math.MaxUint32 {
		return fmt.Errorf("%w: row %d needs more than %d slots", ErrAllocation, rowsCount, uint32(math.MaxUint32))
	}

	capacity := min(max(want, uint64(a.header.Capacity)*2), math.MaxUint32)
	size := storage.HeaderSize + int64(capacity)*int64(a.slotSize)
	if err := a.m.Grow(size); err != nil {
		return fmt.Errorf("%w: grow arena file to %d bytes: %w", ErrAllocation, size, err)
	}

	a.header.Capacity = a.fit()
	storage.WriteHeader(a.m.Bytes(), &a.header)
	a.remap()
	a.logger.Info("arena remapped", "slots", a.header.Capacity, "bytes", a.m.Size(), "remaps", a.m.Stats().Remaps)
	return nil
}

// Sync flushes the header and every slot to disk.
func (a *MmapAllocator[T]) Sync() error {
	if a.nodes == nil {
		return ErrAllocatorClosed
	}
	storage.WriteHeader(a.m.Bytes(), &a.header)
	return a.m.Sync()
}

// Close unmaps the arena. Engines using the allocator must not be used
// afterwards.
func (a *MmapAllocator[T]) Close() error {
	if a.nodes == nil {
		return nil
	}
	stats := a.m.Stats()
	a.nodes = nil
	a.logger.Info("arena closed", "slots", a.header.Capacity, "remaps", stats.Remaps, "syncs", stats.Syncs)
	return a.m.Close()
}

// MmapStats counts how often the arena was remapped to grow and flushed.
type MmapStats struct {
	Remaps uint64
	Syncs  uint64
}

// Stats returns the mapping counters. They keep their last values after
// Close.
func (a *MmapAllocator[T]) Stats() MmapStats {
	s := a.m.Stats()
	return MmapStats{Remaps: s.Remaps, Syncs: s.Syncs}
}

// fit returns how many whole slots the mapped file can hold.
func (a *MmapAllocator[T]) fit() uint32 {
	n := (a.m.Size() - storage.HeaderSize) / int64(a.slotSize)
	return uint32(min(n, math.MaxUint32))
}

func (a *MmapAllocator[T]) remap() {
	data := a.m.Bytes()
	a.nodes = unsafe.Slice((*Node[T])(unsafe.Pointer(&data[storage.HeaderSize])), a.header.Capacity)
}

// hasPointers reports whether values of typ hold references the garbage
// collector would have to trace.
func hasPointers(typ reflect.Type) bool {
	switch typ.Kind() {
	case reflect.Pointer, reflect.UnsafePointer, reflect.Map, reflect.Slice,
		reflect.String, reflect.Chan, reflect.Func, reflect.Interface:
		return true
	case reflect.Array:
		return typ.Len() > 0 && hasPointers(typ.Elem())
	case reflect.Struct:
		for i := range typ.NumField() {
			if hasPointers(typ.Field(i).Type) {
				return true
			}
		}
	}
	return false
}
