package validity

import (
	"github.com/lightcore-go/lightcore/scale"
)

// decodeTags decodes a SCALE sequence of byte-strings: compact_len N
// followed by N compact-length-prefixed byte strings, each materialized
// into an owned slice.
func decodeTags(c *scale.Cursor, context string) ([][]byte, error) {
	n, err := c.CompactLen(context)
	if err != nil {
		return nil, err
	}
	tags := make([][]byte, n)
	for i := 0; i < n; i++ {
		tag, err := c.TakeBytes(context)
		if err != nil {
			return nil, err
		}
		owned := make([]byte, len(tag))
		copy(owned, tag)
		tags[i] = owned
	}
	return tags, nil
}

func decodeValidTransaction(c *scale.Cursor) (ValidTransaction, error) {
	var v ValidTransaction
	priority, err := c.LE64("valid_transaction_priority")
	if err != nil {
		return ValidTransaction{}, err
	}
	v.Priority = priority

	if v.Requires, err = decodeTags(c, "valid_transaction_requires"); err != nil {
		return ValidTransaction{}, err
	}
	if v.Provides, err = decodeTags(c, "valid_transaction_provides"); err != nil {
		return ValidTransaction{}, err
	}

	longevity, err := c.LE64("valid_transaction_longevity")
	if err != nil {
		return ValidTransaction{}, err
	}
	if longevity == 0 {
		return ValidTransaction{}, ErrOutputDecodeError
	}
	v.Longevity = longevity

	propagateByte, err := c.TakeExact(1, "valid_transaction_propagate")
	if err != nil {
		return ValidTransaction{}, err
	}
	v.Propagate = propagateByte[0] != 0

	return v, nil
}

func decodeInvalidTransaction(c *scale.Cursor) (InvalidTransaction, error) {
	kindByte, err := c.TakeExact(1, "invalid_transaction_kind")
	if err != nil {
		return InvalidTransaction{}, err
	}
	kind := InvalidKind(kindByte[0])
	if kind > InvalidMandatoryDispatch {
		return InvalidTransaction{}, ErrOutputDecodeError
	}
	inv := InvalidTransaction{Kind: kind}
	if kind == InvalidCustom {
		b, err := c.TakeExact(1, "invalid_transaction_custom")
		if err != nil {
			return InvalidTransaction{}, err
		}
		inv.Custom = b[0]
	}
	return inv, nil
}

func decodeUnknownTransaction(c *scale.Cursor) (UnknownTransaction, error) {
	kindByte, err := c.TakeExact(1, "unknown_transaction_kind")
	if err != nil {
		return UnknownTransaction{}, err
	}
	kind := UnknownKind(kindByte[0])
	if kind > UnknownCustom {
		return UnknownTransaction{}, ErrOutputDecodeError
	}
	unk := UnknownTransaction{Kind: kind}
	if kind == UnknownCustom {
		b, err := c.TakeExact(1, "unknown_transaction_custom")
		if err != nil {
			return UnknownTransaction{}, err
		}
		unk.Custom = b[0]
	}
	return unk, nil
}

// decodeValidityReturn decodes the tagged-union return value of
// TaggedTransactionQueue_validate_transaction:
//
//	0 || ValidTransaction
//	1 || 0 || InvalidTransaction
//	1 || 1 || UnknownTransaction
func decodeValidityReturn(raw []byte) (*ValidTransaction, *ValidityError, error) {
	c := scale.NewCursor(raw)
	tag, err := c.TakeExact(1, "validity_return_tag")
	if err != nil {
		return nil, nil, ErrOutputDecodeError
	}

	switch tag[0] {
	case 0:
		v, err := decodeValidTransaction(c)
		if err != nil {
			return nil, nil, ErrOutputDecodeError
		}
		if !c.AtEnd() {
			return nil, nil, ErrOutputDecodeError
		}
		return &v, nil, nil
	case 1:
		innerTag, err := c.TakeExact(1, "validity_error_tag")
		if err != nil {
			return nil, nil, ErrOutputDecodeError
		}
		switch innerTag[0] {
		case 0:
			inv, err := decodeInvalidTransaction(c)
			if err != nil {
				return nil, nil, ErrOutputDecodeError
			}
			if !c.AtEnd() {
				return nil, nil, ErrOutputDecodeError
			}
			return nil, &ValidityError{Invalid: &inv}, nil
		case 1:
			unk, err := decodeUnknownTransaction(c)
			if err != nil {
				return nil, nil, ErrOutputDecodeError
			}
			if !c.AtEnd() {
				return nil, nil, ErrOutputDecodeError
			}
			return nil, &ValidityError{Unknown: &unk}, nil
		default:
			return nil, nil, ErrOutputDecodeError
		}
	default:
		return nil, nil, ErrOutputDecodeError
	}
}
