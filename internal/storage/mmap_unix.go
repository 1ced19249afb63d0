// mmap_unix.go
//go:build linux || darwin

package storage

import (
	"os"
	"sync/atomic"

	"golang.org/x/sys/unix"
)

// MMap is a file mapped read-write into memory.
type MMap struct {
	file     *os.File
	mmapData []byte
	mmapSize int64
	empty    bool

	// Stats counters
	remaps atomic.Uint64
	syncs  atomic.Uint64
}

// Open maps the file at path, creating it with at least minSize bytes if it
// does not exist or is empty.
func Open(path string, minSize int64) (*MMap, error) {
	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0600)
	if err != nil {
		return nil, err
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}

	var empty bool
	size := info.Size()
	if size == 0 {
		// Sparse file: untouched pages read back as zero
		size = roundUp(minSize)
		if err := file.Truncate(size); err != nil {
			file.Close()
			return nil, err
		}
		empty = true
	}

	data, err := unix.Mmap(int(file.Fd()), 0, int(size),
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		file.Close()
		return nil, err
	}

	return &MMap{
		file:     file,
		mmapData: data,
		mmapSize: size,
		empty:    empty,
	}, nil
}

// Bytes returns the mapped region. The slice is invalidated by Grow and Close.
func (m *MMap) Bytes() []byte {
	return m.mmapData
}

// Size returns the mapped length in bytes.
func (m *MMap) Size() int64 {
	return m.mmapSize
}

// Empty returns whether the file was created by Open
func (m *MMap) Empty() bool {
	return m.empty
}

// Grow extends the file to at least size bytes and remaps it. The existing
// contents are preserved; the new tail reads as zero.
func (m *MMap) Grow(size int64) error {
	if m.mmapData == nil {
		return ErrClosed
	}
	if size <= m.mmapSize {
		return nil
	}
	newSize := roundUp(size)

	// Grow file before remapping so a failure leaves the old mapping usable
	if err := m.file.Truncate(newSize); err != nil {
		return err
	}

	// Start async flush to reduce munmap blocking time
	_ = unix.Msync(m.mmapData, unix.MS_ASYNC)

	data, err := unix.Mmap(int(m.file.Fd()), 0, int(newSize),
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return err
	}
	if err := unix.Munmap(m.mmapData); err != nil {
		_ = unix.Munmap(data)
		return err
	}

	m.mmapData = data
	m.mmapSize = newSize
	m.remaps.Add(1)
	return nil
}

// Sync flushes the memory-mapped region to disk
func (m *MMap) Sync() error {
	if m.mmapData == nil {
		return ErrClosed
	}
	if err := unix.Msync(m.mmapData, unix.MS_SYNC); err != nil {
		return err
	}
	m.syncs.Add(1)
	return m.file.Sync()
}

// Stats returns mapping statistics
func (m *MMap) Stats() Stats {
	return Stats{
		Remaps: m.remaps.Load(),
		Syncs:  m.syncs.Load(),
	}
}

// Close unmaps the region and closes the file
func (m *MMap) Close() error {
	if m.mmapData != nil {
		if err := unix.Munmap(m.mmapData); err != nil {
			return err
		}
		m.mmapData = nil
	}
	return m.file.Close()
}

func roundUp(size int64) int64 {
	page := int64(unix.Getpagesize())
	if size < page {
		return page
	}
	return (size + page - 1) / page * page
}
