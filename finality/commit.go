package finality

import (
	"github.com/lightcore-go/lightcore/scale"
)

// DecodeCommit decodes a GRANDPA commit message, requiring that the
// entire buffer be consumed. blockNumberBytes fixes the width (1-8) of
// every encoded block number in the message.
func DecodeCommit(buf []byte, blockNumberBytes int) (CommitMessage, error) {
	msg, rest, err := decodeCommit(buf, blockNumberBytes)
	if err != nil {
		return CommitMessage{}, err
	}
	if len(rest) != 0 {
		return CommitMessage{}, &scale.Error{Context: "commit_trailing_bytes", Offset: len(buf) - len(rest), Kind: scale.Malformed}
	}
	return msg, nil
}

// DecodePartialCommit decodes a GRANDPA commit message and returns
// whatever bytes remain after it, rather than failing on trailing data.
func DecodePartialCommit(buf []byte, blockNumberBytes int) (CommitMessage, []byte, error) {
	return decodeCommit(buf, blockNumberBytes)
}

func decodeCommit(buf []byte, blockNumberBytes int) (CommitMessage, []byte, error) {
	if blockNumberBytes < 1 || blockNumberBytes > 8 {
		return CommitMessage{}, nil, &scale.Error{Context: "block_number_bytes", Offset: 0, Kind: scale.Malformed}
	}

	c := scale.NewCursor(buf)
	var msg CommitMessage
	var err error

	if msg.RoundNumber, err = c.LE64("round_number"); err != nil {
		return CommitMessage{}, nil, err
	}
	if msg.SetID, err = c.LE64("set_id"); err != nil {
		return CommitMessage{}, nil, err
	}
	targetHash, err := c.TakeExact(32, "target_hash")
	if err != nil {
		return CommitMessage{}, nil, err
	}
	copy(msg.TargetHash[:], targetHash)
	if msg.TargetNumber, err = c.VarsizeU64(blockNumberBytes, "target_number"); err != nil {
		return CommitMessage{}, nil, err
	}

	n, err := c.CompactLen("precommit_count")
	if err != nil {
		return CommitMessage{}, nil, err
	}
	msg.Precommits = make([]UnsignedPrecommit, n)
	for i := 0; i < n; i++ {
		hash, err := c.TakeExact(32, "precommit_target_hash")
		if err != nil {
			return CommitMessage{}, nil, err
		}
		copy(msg.Precommits[i].TargetHash[:], hash)
		num, err := c.VarsizeU64(blockNumberBytes, "precommit_target_number")
		if err != nil {
			return CommitMessage{}, nil, err
		}
		msg.Precommits[i].TargetNumber = num
	}

	m, err := c.CompactLen("auth_data_count")
	if err != nil {
		return CommitMessage{}, nil, err
	}
	msg.AuthData = make([]AuthDatum, m)
	for i := 0; i < m; i++ {
		sig, err := c.TakeExact(64, "auth_data_signature")
		if err != nil {
			return CommitMessage{}, nil, err
		}
		copy(msg.AuthData[i].Signature[:], sig)
		pub, err := c.TakeExact(32, "auth_data_public_key")
		if err != nil {
			return CommitMessage{}, nil, err
		}
		copy(msg.AuthData[i].PublicKey[:], pub)
	}

	return msg, c.Remaining(), nil
}
