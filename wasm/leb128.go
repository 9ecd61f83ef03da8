package wasm

import (
	"errors"
	"io"
)

// Encoded varints are capped at ceil(bits/7) bytes.
const (
	maxVarint32 = 5
	maxVarint64 = 10
)

var (
	errVarintTooLong  = errors.New("varint exceeds maximum encoded length")
	errVarintOverflow = errors.New("varint overflows its bit width")
)

// lebU32 decodes an unsigned LEB128 value of at most 32 bits from the
// front of buf and returns the value and the number of bytes consumed.
// The unused high bits of a maximum-length encoding must be zero.
func lebU32(buf []byte) (uint32, int, error) {
	var out uint32
	var shift uint
	for i, b := range buf {
		if i == maxVarint32 {
			return 0, 0, errVarintTooLong
		}
		if i == maxVarint32-1 && b&0x70 != 0 {
			return 0, 0, errVarintOverflow
		}
		out |= uint32(b&0x7f) << shift
		if b&0x80 == 0 {
			return out, i + 1, nil
		}
		shift += 7
	}
	return 0, 0, io.ErrUnexpectedEOF
}

func lebU64(buf []byte) (uint64, int, error) {
	var out uint64
	var shift uint
	for i, b := range buf {
		if i == maxVarint64 {
			return 0, 0, errVarintTooLong
		}
		if i == maxVarint64-1 && b&0x7e != 0 {
			return 0, 0, errVarintOverflow
		}
		out |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			return out, i + 1, nil
		}
		shift += 7
	}
	return 0, 0, io.ErrUnexpectedEOF
}

// lebI32 decodes a signed LEB128 value. Bit 6 of the final byte is the
// sign; the remaining high bits are filled with it. In a maximum-length
// encoding the unused high bits must all match the sign bit.
func lebI32(buf []byte) (int32, int, error) {
	var out int32
	var shift uint
	for i, b := range buf {
		if i == maxVarint32 {
			return 0, 0, errVarintTooLong
		}
		if i == maxVarint32-1 {
			unused := b & 0x70
			if b&0x08 == 0 {
				if unused != 0 {
					return 0, 0, errVarintOverflow
				}
			} else if unused != 0x70 {
				return 0, 0, errVarintOverflow
			}
		}
		out |= int32(b&0x7f) << shift
		shift += 7
		if b&0x80 == 0 {
			if shift < 32 && b&0x40 != 0 {
				out |= -1 << shift
			}
			return out, i + 1, nil
		}
	}
	return 0, 0, io.ErrUnexpectedEOF
}

func lebI64(buf []byte) (int64, int, error) {
	var out int64
	var shift uint
	for i, b := range buf {
		if i == maxVarint64 {
			return 0, 0, errVarintTooLong
		}
		if i == maxVarint64-1 {
			unused := b & 0x7e
			if b&0x01 == 0 {
				if unused != 0 {
					return 0, 0, errVarintOverflow
				}
			} else if unused != 0x7e {
				return 0, 0, errVarintOverflow
			}
		}
		out |= int64(b&0x7f) << shift
		shift += 7
		if b&0x80 == 0 {
			if shift < 64 && b&0x40 != 0 {
				out |= -1 << shift
			}
			return out, i + 1, nil
		}
	}
	return 0, 0, io.ErrUnexpectedEOF
}
