package memgo

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidWordSize is returned by New when the word size is below 1 byte.
	ErrInvalidWordSize = errors.New("word size must be at least 1 byte")

	// ErrSizeOutOfRange is returned (wrapped in ErrInvalidSize) when an arena
	// size falls outside the 1..65535 word range of the 16-bit export formats.
	ErrSizeOutOfRange = errors.New("arena size out of range")

	// ErrOutOfMemory is returned when the OS cannot satisfy the arena reservation.
	ErrOutOfMemory = errors.New("arena reservation failed")
)

// ErrInvalidSize indicates an Initialize call with an unusable word count.
//
// It unwraps to ErrSizeOutOfRange for errors.Is matching.
type ErrInvalidSize struct {
	Words int
}

func (e *ErrInvalidSize) Error() string {
	return fmt.Sprintf("expected arena size in range 1 to %d words, but got %d", MaxWords, e.Words)
}

func (e *ErrInvalidSize) Unwrap() error { return ErrSizeOutOfRange }
