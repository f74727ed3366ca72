// Package scale implements the decoding primitives of the SCALE
// (Simple Concatenated Aggregate Little-Endian) codec used throughout
// Substrate-style chain formats: fixed-width little-endian integers,
// compact-length prefixes, configurable-width block numbers, and
// length-prefixed byte sequences. All decoders are zero-copy: a decoded
// value either is a plain integer or borrows directly from the input
// slice.
package scale

import "encoding/binary"

// LE64 reads 8 little-endian bytes from the front of b and returns the
// decoded value along with the remaining bytes.
func LE64(b []byte) (uint64, []byte, error) {
	if len(b) < 8 {
		return 0, nil, errIncomplete("le_u64", 0)
	}
	return binary.LittleEndian.Uint64(b[:8]), b[8:], nil
}

// compactMode is the 2-bit tag in the low bits of a compact integer's
// first byte.
type compactMode byte

const (
	compactSingleByte compactMode = 0
	compactTwoByte    compactMode = 1
	compactFourByte   compactMode = 2
	compactBigInt     compactMode = 3
)

// CompactLen decodes a SCALE compact-length integer, constrained to
// machine-word (int) range. Values requiring the big-integer mode (tag 3)
// with more than 8 payload bytes, or that otherwise overflow a 64-bit
// int, are rejected as malformed — use CompactUint256 when an
// arbitrary-precision result is required.
func CompactLen(b []byte) (int, []byte, error) {
	v, rest, err := compactUint64(b)
	if err != nil {
		return 0, nil, err
	}
	if v > (1<<63 - 1) {
		return 0, nil, errMalformed("compact_len", 0)
	}
	return int(v), rest, nil
}

// compactUint64 decodes a SCALE compact integer into a uint64, rejecting
// big-integer-mode payloads wider than 8 bytes.
func compactUint64(b []byte) (uint64, []byte, error) {
	if len(b) < 1 {
		return 0, nil, errIncomplete("compact_int", 0)
	}
	mode := compactMode(b[0] & 0b11)
	switch mode {
	case compactSingleByte:
		return uint64(b[0] >> 2), b[1:], nil
	case compactTwoByte:
		if len(b) < 2 {
			return 0, nil, errIncomplete("compact_int", 0)
		}
		v := binary.LittleEndian.Uint16(b[:2])
		return uint64(v >> 2), b[2:], nil
	case compactFourByte:
		if len(b) < 4 {
			return 0, nil, errIncomplete("compact_int", 0)
		}
		v := binary.LittleEndian.Uint32(b[:4])
		return uint64(v >> 2), b[4:], nil
	default: // compactBigInt
		n := int(b[0]>>2) + 4
		if len(b) < 1+n {
			return 0, nil, errIncomplete("compact_int", 0)
		}
		if n > 8 {
			return 0, nil, errMalformed("compact_int", 0)
		}
		payload := b[1 : 1+n]
		var v uint64
		for i := n - 1; i >= 0; i-- {
			v = v<<8 | uint64(payload[i])
		}
		return v, b[1+n:], nil
	}
}

// VarsizeU64 takes exactly nBytes (1 <= nBytes <= 8) from the front of b,
// interprets them as little-endian, and zero-extends the result to 64
// bits.
func VarsizeU64(nBytes int, b []byte) (uint64, []byte, error) {
	if nBytes < 1 || nBytes > 8 {
		return 0, nil, errMalformed("varsize_u64", 0)
	}
	if len(b) < nBytes {
		return 0, nil, errIncomplete("varsize_u64", 0)
	}
	var v uint64
	for i := nBytes - 1; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v, b[nBytes:], nil
}

// TakeExact borrows the next n bytes of b without copying, returning the
// borrowed slice and the remainder.
func TakeExact(n int, b []byte) ([]byte, []byte, error) {
	if len(b) < n {
		return nil, nil, errIncomplete("take_exact", 0)
	}
	return b[:n], b[n:], nil
}
