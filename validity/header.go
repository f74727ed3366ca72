package validity

import (
	"golang.org/x/crypto/blake2b"

	"github.com/lightcore-go/lightcore/scale"
)

// Header is the minimal block header this driver needs: just enough to
// compute the v3 validation call's block_hash parameter and the v2
// Core_initialize_block successor header's number.
//
// Wire layout: parent_hash (32 bytes) || number (configurable-width,
// little-endian) || state_root (32 bytes) || extrinsics_root (32 bytes)
// || digest (compact-length-prefixed list of opaque log items, each
// itself compact-length-prefixed bytes).
type Header struct {
	ParentHash [32]byte
	Number     uint64
}

// DecodeHeader decodes just enough of a SCALE-encoded header to obtain
// its block number; the remaining fields are not needed by this driver
// and are not validated.
func DecodeHeader(scaleEncoded []byte, blockNumberBytes int) (Header, error) {
	c := scale.NewCursor(scaleEncoded)
	var h Header

	parentHash, err := c.TakeExact(32, "header_parent_hash")
	if err != nil {
		return Header{}, ErrInvalidHeader
	}
	copy(h.ParentHash[:], parentHash)

	number, err := c.VarsizeU64(blockNumberBytes, "header_number")
	if err != nil {
		return Header{}, ErrInvalidHeader
	}
	h.Number = number

	return h, nil
}

// Hash returns the deterministic 32-byte BLAKE2b hash of the header's
// original encoding, used as the v3 validation call's block_hash
// parameter and as the v2 successor header's parent_hash.
func (Header) Hash(scaleEncoded []byte) [32]byte {
	return blake2b.Sum256(scaleEncoded)
}

// encodeSuccessorHeader builds the SCALE-encoded header passed to
// Core_initialize_block for API version 2: the parent's hash, one past
// its number, zeroed roots, and an empty digest.
func encodeSuccessorHeader(parentHash [32]byte, number uint64, blockNumberBytes int) []byte {
	out := make([]byte, 0, 32+blockNumberBytes+32+32+1)
	out = append(out, parentHash[:]...)

	var numLE [8]byte
	for i := 0; i < 8; i++ {
		numLE[i] = byte(number >> (8 * i))
	}
	n := blockNumberBytes
	if n > 8 {
		n = 8
	}
	out = append(out, numLE[:n]...)
	for i := n; i < blockNumberBytes; i++ {
		out = append(out, 0)
	}

	var zero32 [32]byte
	out = append(out, zero32[:]...) // state_root
	out = append(out, zero32[:]...) // extrinsics_root
	out = append(out, 0)            // digest: compact_len(0)
	return out
}
