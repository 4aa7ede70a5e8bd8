// Package codec centralizes the allocator's export encodings.
//
// Two flat little-endian formats are produced: the hole-list view consumed
// by external debugging tools, and the per-word occupancy bitmap. Both use
// 16-bit fields, which is why the allocator caps arenas at 65535 words —
// every offset, length and byte count must round-trip through a uint16.
package codec

import (
	"encoding/binary"
	"errors"

	"github.com/hupe1980/memgo/extent"
)

// MaxWords is the largest word count representable in the 16-bit formats.
const MaxWords = 65535

var (
	// ErrTruncated is returned when a buffer is too short for its declared contents.
	ErrTruncated = errors.New("codec: truncated buffer")
	// ErrRange is returned when a value does not fit the 16-bit encoding.
	ErrRange = errors.New("codec: value out of uint16 range")
)

// EncodeHoleList encodes holes as a count followed by offset/length pairs,
// all little-endian uint16. An empty hole list encodes to nil.
func EncodeHoleList(holes []extent.Extent) ([]byte, error) {
	if len(holes) == 0 {
		return nil, nil
	}
	if len(holes) > MaxWords {
		return nil, ErrRange
	}

	buf := make([]byte, 2+len(holes)*4)
	binary.LittleEndian.PutUint16(buf, uint16(len(holes)))

	for i, h := range holes {
		if h.Offset < 0 || h.Offset > MaxWords || h.Length < 0 || h.Length > MaxWords {
			return nil, ErrRange
		}
		binary.LittleEndian.PutUint16(buf[2+i*4:], uint16(h.Offset))
		binary.LittleEndian.PutUint16(buf[4+i*4:], uint16(h.Length))
	}

	return buf, nil
}

// DecodeHoleList decodes a buffer produced by EncodeHoleList.
func DecodeHoleList(buf []byte) ([]extent.Extent, error) {
	if len(buf) == 0 {
		return nil, nil
	}
	if len(buf) < 2 {
		return nil, ErrTruncated
	}

	count := int(binary.LittleEndian.Uint16(buf))
	if len(buf) < 2+count*4 {
		return nil, ErrTruncated
	}

	holes := make([]extent.Extent, count)
	for i := range holes {
		holes[i] = extent.Extent{
			Offset: int(binary.LittleEndian.Uint16(buf[2+i*4:])),
			Length: int(binary.LittleEndian.Uint16(buf[4+i*4:])),
		}
	}

	return holes, nil
}

// EncodeBitmap encodes a per-word occupancy bitmap for an arena of
// capacityWords words: a little-endian uint16 byte count, then one bit per
// word. Bit i of byte wordIndex/8 is set at position wordIndex%8 when the
// word lies inside an allocated extent.
func EncodeBitmap(capacityWords int, allocs []extent.Extent) ([]byte, error) {
	if capacityWords < 0 || capacityWords > MaxWords {
		return nil, ErrRange
	}

	size := (capacityWords + 7) / 8
	buf := make([]byte, 2+size)
	binary.LittleEndian.PutUint16(buf, uint16(size))

	for _, a := range allocs {
		for w := a.Offset; w < a.End(); w++ {
			buf[2+w/8] |= 1 << (w % 8)
		}
	}

	return buf, nil
}
