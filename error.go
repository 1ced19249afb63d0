package avltriee

import (
	"errors"

	"github.com/alexhholmes/avltriee/internal/storage"
)

//goland:noinspection GoUnusedGlobalVariable
var (
	ErrRowOutOfRange = errors.New("row out of range")
	ErrAllocation    = errors.New("arena allocation failed")
	ErrCorruption    = errors.New("tree corruption detected")

	ErrPointerValue    = errors.New("value type contains pointers")
	ErrAllocatorClosed = errors.New("allocator is closed")

	ErrInvalidMagicNumber = storage.ErrInvalidMagicNumber
	ErrInvalidVersion     = storage.ErrInvalidVersion
	ErrInvalidSlotSize    = storage.ErrInvalidSlotSize
	ErrInvalidChecksum    = storage.ErrInvalidChecksum
	ErrUnsupported        = storage.ErrUnsupported
)
