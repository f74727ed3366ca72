// Package validity drives a Substrate-style runtime's transaction
// validity check through a resumable host-call protocol, satisfying the
// runtime's storage and trie queries from a caller-supplied oracle.
package validity

// TransactionSource tags where a transaction being validated came from.
type TransactionSource byte

const (
	// InBlock means the transaction is already included in a block
	// being imported.
	InBlock TransactionSource = 0
	// Local means the transaction was produced locally, e.g. by an
	// offchain worker.
	Local TransactionSource = 1
	// External means the transaction arrived from the network.
	External TransactionSource = 2
)

// ValidTransaction is the runtime's acceptance report for a transaction.
type ValidTransaction struct {
	Priority  uint64
	Requires  [][]byte
	Provides  [][]byte
	Longevity uint64
	Propagate bool
}

// InvalidKind enumerates the runtime's reasons for rejecting a
// transaction outright.
type InvalidKind byte

const (
	InvalidCall InvalidKind = iota
	InvalidPayment
	InvalidFuture
	InvalidStale
	InvalidBadProof
	InvalidAncientBirthBlock
	InvalidExhaustsResources
	InvalidCustom
	InvalidBadMandatory
	InvalidMandatoryDispatch
)

// UnknownKind enumerates the runtime's reasons for being unable to
// determine a transaction's validity.
type UnknownKind byte

const (
	UnknownCannotLookup UnknownKind = iota
	UnknownNoUnsignedValidator
	UnknownCustom
)

// InvalidTransaction reports that the runtime rejected a transaction.
// Custom carries the extra byte when Kind == InvalidCustom.
type InvalidTransaction struct {
	Kind   InvalidKind
	Custom byte
}

// UnknownTransaction reports that the runtime could not determine a
// transaction's validity. Custom carries the extra byte when
// Kind == UnknownCustom.
type UnknownTransaction struct {
	Kind   UnknownKind
	Custom byte
}

// ValidityError is the tagged union of the two ways a runtime can fail
// to validate a transaction. Exactly one of Invalid or Unknown is set.
type ValidityError struct {
	Invalid *InvalidTransaction
	Unknown *UnknownTransaction
}

// Stage distinguishes which runtime entry point the driver is currently
// midway through.
type Stage int

const (
	// Stage1 is the Core_initialize_block call issued for API version 2.
	Stage1 Stage = iota
	// Stage2 is the TaggedTransactionQueue_validate_transaction call.
	Stage2
)

func (s Stage) String() string {
	if s == Stage1 {
		return "stage1"
	}
	return "stage2"
}
