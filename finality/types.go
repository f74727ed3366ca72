// Package finality decodes and verifies GRANDPA commit messages and
// justifications: the aggregates of authority precommits that finalize a
// block at a given round.
package finality

// UnsignedPrecommit is an authority's vote on a specific block, without
// the signature that attests it.
type UnsignedPrecommit struct {
	TargetHash   [32]byte
	TargetNumber uint64
}

// AuthDatum is the signature/public-key pair positionally associated
// with the precommit at the same index (see CommitMessage).
type AuthDatum struct {
	Signature [64]byte
	PublicKey [32]byte
}

// CommitMessage is a GRANDPA commit: a round's worth of precommits for a
// target block, together with the signatures that attest them.
//
// AuthData[i] is the signature/public-key pair for Precommits[i].
// Decoding does not enforce len(AuthData) == len(Precommits); the two
// sequences are independently length-prefixed on the wire.
type CommitMessage struct {
	RoundNumber  uint64
	SetID        uint64
	TargetHash   [32]byte
	TargetNumber uint64
	Precommits   []UnsignedPrecommit
	AuthData     []AuthDatum
}

// Justification is a commit-like structure attached to a block to prove
// its finality. VotesAncestries is decoded but unused by Verify (see
// Verify's doc on ancestry validation).
type Justification struct {
	Commit          CommitMessage
	VotesAncestries [][]byte
}
