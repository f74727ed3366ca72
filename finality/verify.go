package finality

import (
	"encoding/binary"

	"github.com/dchest/siphash"
	"github.com/hdevalence/ed25519consensus"
	"golang.org/x/crypto/chacha20"

	"github.com/lightcore-go/lightcore/log"
)

var logger = log.Default().Module("finality")

// VerifyConfig parameterizes a single justification verification.
type VerifyConfig struct {
	Justification Justification

	// BlockNumberBytes fixes the width (1-8) of the block numbers
	// embedded in the commit's precommits.
	BlockNumberBytes int

	// AuthoritiesSetID binds the signing preimage to a specific
	// authority set.
	AuthoritiesSetID uint64

	// AuthoritiesList enumerates the public keys allowed to emit
	// precommits for this round.
	AuthoritiesList [][32]byte

	// RandomnessSeed drives the PRNG that seeds the DoS-hardened
	// authority lookup table. Signatures are verified one at a time in
	// precommit order. Verification is fully deterministic given this
	// seed.
	RandomnessSeed [32]byte
}

// Verify checks that a justification carries a valid GRANDPA
// super-majority of signatures over the authorities in cfg.AuthoritiesList.
//
// Ancestry validation of precommit targets via votes_ancestries, and the
// "ghost" block check, are not implemented (see DESIGN.md).
func Verify(cfg VerifyConfig) error {
	precommits := zipPrecommits(cfg.Justification.Commit)
	numPrecommits := len(cfg.Justification.Commit.Precommits)

	prng, err := newChaCha20PRNG(cfg.RandomnessSeed)
	if err != nil {
		return err
	}

	var seed [16]byte
	prng.fillBytes(seed[:])
	table := newAuthorityTable(seed, cfg.AuthoritiesList)

	// Quorum check: actual >= floor(expected * 2 / 3) + 1. Duplicate
	// signatures are checked below, not accounted for here.
	need := (table.count*2)/3 + 1
	if numPrecommits < need {
		logger.Debug("quorum not met", "have", numPrecommits, "need", need, "authorities", table.count)
		return ErrNotEnoughSignatures
	}

	for _, pc := range precommits {
		entry := table.lookup(pc.PublicKey)
		if entry == nil {
			return &NotAuthorityError{PublicKey: pc.PublicKey}
		}
		if entry.seen {
			return &DuplicateSignatureError{PublicKey: pc.PublicKey}
		}
		entry.seen = true

		// TODO: must check signed block ancestry using votes_ancestries.

		preimage := buildPreimage(pc.TargetHash, pc.TargetNumber, cfg.BlockNumberBytes, cfg.Justification.Commit.RoundNumber, cfg.AuthoritiesSetID)

		if !ed25519consensus.Verify(pc.PublicKey[:], preimage, pc.Signature[:]) {
			logger.Warn("signature verification failed", "authority", pc.PublicKey)
			return ErrBadSignature
		}
		// One 8-byte draw from the shared stream per verified signature.
		// The bytes are discarded: serial verification does not use them,
		// and they do not affect the order or the outcome.
		var discard [8]byte
		prng.fillBytes(discard[:])
	}

	return nil
}

// signedPrecommit pairs an UnsignedPrecommit with the authority data at
// the same index. zipPrecommits truncates to the shorter of the two
// independently length-prefixed sequences, per the decoder's contract.
type signedPrecommit struct {
	UnsignedPrecommit
	Signature [64]byte
	PublicKey [32]byte
}

func zipPrecommits(c CommitMessage) []signedPrecommit {
	n := len(c.Precommits)
	if len(c.AuthData) < n {
		n = len(c.AuthData)
	}
	out := make([]signedPrecommit, n)
	for i := 0; i < n; i++ {
		out[i] = signedPrecommit{
			UnsignedPrecommit: c.Precommits[i],
			Signature:         c.AuthData[i].Signature,
			PublicKey:         c.AuthData[i].PublicKey,
		}
	}
	return out
}

// buildPreimage constructs the exact byte layout signed by a GRANDPA
// precommit: a stage tag, the target hash, the configurable-width
// target number, the round number, and the authority set id.
func buildPreimage(targetHash [32]byte, targetNumber uint64, blockNumberBytes int, round, setID uint64) []byte {
	out := make([]byte, 0, 1+32+blockNumberBytes+8+8)
	out = append(out, 0x01)
	out = append(out, targetHash[:]...)

	var numLE [8]byte
	binary.LittleEndian.PutUint64(numLE[:], targetNumber)
	n := blockNumberBytes
	if n > 8 {
		n = 8
	}
	out = append(out, numLE[:n]...)
	for i := n; i < blockNumberBytes; i++ {
		out = append(out, 0)
	}

	var roundLE, setIDLE [8]byte
	binary.LittleEndian.PutUint64(roundLE[:], round)
	binary.LittleEndian.PutUint64(setIDLE[:], setID)
	out = append(out, roundLE[:]...)
	out = append(out, setIDLE[:]...)
	return out
}

// chaCha20PRNG produces a deterministic stream of bytes from a 32-byte
// seed, standing in for the caller's randomness source wherever this
// package needs reproducible pseudo-randomness.
type chaCha20PRNG struct {
	cipher *chacha20.Cipher
}

func newChaCha20PRNG(seed [32]byte) (*chaCha20PRNG, error) {
	c, err := chacha20.NewUnauthenticatedCipher(seed[:], make([]byte, chacha20.NonceSize))
	if err != nil {
		return nil, err
	}
	return &chaCha20PRNG{cipher: c}, nil
}

func (p *chaCha20PRNG) fillBytes(dst []byte) {
	for i := range dst {
		dst[i] = 0
	}
	p.cipher.XORKeyStream(dst, dst)
}

// authorityTable is a keyed-hash lookup of authority public keys, seeded
// with randomness so that an attacker who controls which public keys
// appear cannot force worst-case hash collisions.
type authorityTable struct {
	k0, k1  uint64
	buckets map[uint64][]*authorityEntry
	count   int
}

type authorityEntry struct {
	publicKey [32]byte
	seen      bool
}

func newAuthorityTable(seed [16]byte, authorities [][32]byte) *authorityTable {
	t := &authorityTable{
		k0:      binary.LittleEndian.Uint64(seed[:8]),
		k1:      binary.LittleEndian.Uint64(seed[8:]),
		buckets: make(map[uint64][]*authorityEntry, len(authorities)),
	}
	for _, pk := range authorities {
		if t.lookup(pk) != nil {
			continue // duplicate in the authority list itself; last-wins semantics are moot here
		}
		d := t.digest(pk)
		t.buckets[d] = append(t.buckets[d], &authorityEntry{publicKey: pk})
		t.count++
	}
	return t
}

func (t *authorityTable) digest(pk [32]byte) uint64 {
	return siphash.Hash(t.k0, t.k1, pk[:])
}

func (t *authorityTable) lookup(pk [32]byte) *authorityEntry {
	for _, e := range t.buckets[t.digest(pk)] {
		if e.publicKey == pk {
			return e
		}
	}
	return nil
}
