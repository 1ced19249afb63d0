// mmap_unsupported.go
//go:build !linux && !darwin

package storage

// MMap is unavailable on this platform; Open always fails.
type MMap struct{}

func Open(string, int64) (*MMap, error) {
	return nil, ErrUnsupported
}

func (m *MMap) Bytes() []byte { return nil }

func (m *MMap) Size() int64 { return 0 }

func (m *MMap) Empty() bool { return false }

func (m *MMap) Grow(int64) error { return ErrUnsupported }

func (m *MMap) Sync() error { return ErrUnsupported }

func (m *MMap) Stats() Stats { return Stats{} }

func (m *MMap) Close() error { return nil }
