package scale

import "github.com/holiman/uint256"

// CompactUint256 decodes a SCALE compact integer of arbitrary width (up
// to 256 bits), supplementing CompactLen for fields that are not bounded
// to machine-word range. None of the finality or validity payloads in
// this module need more than 64 bits, but a general SCALE toolkit needs
// the big-integer mode (prefix tag 0b11 with a payload wider than 8
// bytes) to be representable at all.
func CompactUint256(b []byte) (*uint256.Int, []byte, error) {
	if len(b) < 1 {
		return nil, nil, errIncomplete("compact_uint256", 0)
	}
	mode := compactMode(b[0] & 0b11)
	if mode != compactBigInt {
		v, rest, err := compactUint64(b)
		if err != nil {
			return nil, nil, err
		}
		return uint256.NewInt(v), rest, nil
	}

	n := int(b[0]>>2) + 4
	if len(b) < 1+n {
		return nil, nil, errIncomplete("compact_uint256", 0)
	}
	if n > 32 {
		return nil, nil, errMalformed("compact_uint256", 0)
	}
	payload := b[1 : 1+n]
	v := new(uint256.Int).SetBytes(reverse(payload))
	return v, b[1+n:], nil
}

func reverse(b []byte) []byte {
	out := make([]byte, len(b))
	for i, x := range b {
		out[len(b)-1-i] = x
	}
	return out
}
