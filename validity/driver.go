package validity

import (
	"github.com/lightcore-go/lightcore/log"
)

const (
	coreInitializeBlock   = "Core_initialize_block"
	validateTransactionFn = "TaggedTransactionQueue_validate_transaction"
)

// Config parameterizes a single transaction validation run.
type Config struct {
	// APIVersion is the runtime's declared TaggedTransactionQueue
	// version: 2 or 3. Any other value is rejected with
	// ErrUnknownApiVersion without invoking any entry point.
	APIVersion int

	// ScaleEncodedHeader is the block header the transaction is being
	// validated against.
	ScaleEncodedHeader []byte

	// BlockNumberBytes fixes the width (1-8) of the header's encoded
	// block number.
	BlockNumberBytes int

	// Source tags where the transaction came from.
	Source TransactionSource

	// Transaction is the SCALE-encoded transaction body.
	Transaction []byte

	// MaxLogLevel is the runtime's opaque verbosity hint (0 "off"
	// through 5 "trace"); Validate maps it through
	// log.LevelFromVerbosity to set the level of this driver's own
	// logger.
	MaxLogLevel uint32

	// StartVM begins a call into the given runtime entry point with the
	// given SCALE-encoded parameters, returning a VM positioned at its
	// first yield. prototype is nil for the validation's first entry
	// point; when the v2 path moves from Core_initialize_block into
	// validate_transaction, prototype is the VM.IntoPrototype() result
	// from stage 1, so stage 1's storage writes are visible to stage 2
	// instead of starting over against the parent block's state.
	StartVM func(prototype VMPrototype, function string, parameter []byte) (RuntimeHostVM, error)
}

// Outcome is the nested result of a finished validation: exactly one of
// DriverErr, Transaction, or Validity is set.
type Outcome struct {
	DriverErr   error
	Transaction *ValidTransaction
	Validity    *ValidityError
}

// Query is the suspended state of an in-progress validation. It is
// either Finished or a request for the caller to answer a storage/trie
// query; in both cases IntoPrototype recovers the underlying VM, which is
// nil for a Finished reached before any VM was started.
type Query interface {
	IntoPrototype() VMPrototype
}

// Finished is a terminal Query: the validation has concluded, for better
// or worse. VM holds the prototype of the last VM the driver started,
// whatever the outcome. It is nil when the validation ended before
// StartVM returned a VM: an unknown API version, an undecodable header,
// or a failure to start the first entry point.
type Finished struct {
	Result Outcome
	VM     VMPrototype
}

// IntoPrototype returns the VM used for this validation.
func (f *Finished) IntoPrototype() VMPrototype { return f.VM }

type driver struct {
	cfg    Config
	stage  Stage
	source byte
	tx     []byte
	logger *log.Logger
}

// Validate drives a runtime's transaction-validity check to completion
// or to its first storage/trie query. cfg.MaxLogLevel governs the
// verbosity of the driver's own diagnostic logging, via
// log.LevelFromVerbosity.
func Validate(cfg Config) Query {
	d := &driver{
		cfg:    cfg,
		source: byte(cfg.Source),
		tx:     append([]byte(nil), cfg.Transaction...),
		logger: log.New(log.LevelFromVerbosity(cfg.MaxLogLevel)).Module("validity"),
	}

	switch cfg.APIVersion {
	case 2:
		return d.startStage1()
	case 3:
		return d.startStage2()
	default:
		return &Finished{Result: Outcome{DriverErr: ErrUnknownApiVersion}}
	}
}

func (d *driver) startStage1() Query {
	d.stage = Stage1
	header, err := DecodeHeader(d.cfg.ScaleEncodedHeader, d.cfg.BlockNumberBytes)
	if err != nil {
		return &Finished{Result: Outcome{DriverErr: ErrInvalidHeader}}
	}
	parentHash := header.Hash(d.cfg.ScaleEncodedHeader)
	initHeader := encodeSuccessorHeader(parentHash, header.Number+1, d.cfg.BlockNumberBytes)

	vm, err := d.cfg.StartVM(nil, coreInitializeBlock, initHeader)
	if err != nil {
		return &Finished{Result: Outcome{DriverErr: &WasmStartError{Function: coreInitializeBlock, Detail: err.Error()}}}
	}
	return d.pump(vm)
}

func (d *driver) startStage2() Query {
	d.stage = Stage2
	header, err := DecodeHeader(d.cfg.ScaleEncodedHeader, d.cfg.BlockNumberBytes)
	if err != nil {
		return &Finished{Result: Outcome{DriverErr: ErrInvalidHeader}}
	}
	blockHash := header.Hash(d.cfg.ScaleEncodedHeader)
	params := d.encodeValidateParams(&blockHash)

	vm, err := d.cfg.StartVM(nil, validateTransactionFn, params)
	if err != nil {
		return &Finished{Result: Outcome{DriverErr: &WasmStartError{Function: validateTransactionFn, Detail: err.Error()}}}
	}
	return d.pump(vm)
}

// encodeValidateParams builds the validate_transaction parameter
// encoding: source || tx for API v2 (blockHash == nil, carried
// implicitly by the stage-1 storage diff instead), or source || tx ||
// block_hash for API v3.
func (d *driver) encodeValidateParams(blockHash *[32]byte) []byte {
	size := 1 + len(d.tx)
	if blockHash != nil {
		size += 32
	}
	out := make([]byte, 0, size)
	out = append(out, d.source)
	out = append(out, d.tx...)
	if blockHash != nil {
		out = append(out, blockHash[:]...)
	}
	return out
}

// pump runs vm forward, auto-resuming the yields this driver trusts
// (SignatureVerification, OffchainStorageSet) and surfacing everything
// else either as a terminal Finished Query or as a suspension the
// caller must answer.
func (d *driver) pump(vm RuntimeHostVM) Query {
	for {
		switch y := vm.Outcome().(type) {
		case VMFinished:
			return d.handleFinished(vm, y)

		case VMStorageGet:
			return &StorageGetQuery{Key: y.Key, ChildTrie: y.ChildTrie, Stage: d.stage, d: d, vm: vm}

		case VMClosestDescendantMerkleValue:
			return &ClosestDescendantMerkleValueQuery{Key: y.Key, ChildTrie: y.ChildTrie, Stage: d.stage, d: d, vm: vm}

		case VMNextKey:
			return &NextKeyQuery{Key: y.Key, ChildTrie: y.ChildTrie, OrEqual: y.OrEqual, BranchNodes: y.BranchNodes, Prefix: y.Prefix, Stage: d.stage, d: d, vm: vm}

		case VMSignatureVerification:
			vm = vm.Resume()
			continue

		case VMOffchainStorageSet:
			vm = vm.Resume()
			continue

		case VMOffchain:
			d.logger.Warn("forbidden offchain host call", "stage", d.stage, "detail", y.Detail)
			return &Finished{Result: Outcome{DriverErr: ErrForbiddenHostCall}, VM: vm.IntoPrototype()}

		default:
			return &Finished{Result: Outcome{DriverErr: ErrOutputDecodeError}, VM: vm.IntoPrototype()}
		}
	}
}

func (d *driver) handleFinished(vm RuntimeHostVM, y VMFinished) Query {
	if y.Err != nil {
		var driverErr error
		if d.stage == Stage1 {
			driverErr = &WasmVmReadWriteError{Detail: y.Err.Error()}
		} else {
			driverErr = &WasmVmReadOnlyError{Detail: y.Err.Error()}
		}
		return &Finished{Result: Outcome{DriverErr: driverErr}, VM: vm.IntoPrototype()}
	}

	if d.stage == Stage1 {
		if len(y.Result) != 0 {
			return &Finished{Result: Outcome{DriverErr: ErrOutputDecodeError}, VM: vm.IntoPrototype()}
		}
		d.logger.Debug("Core_initialize_block finished, launching validation stage")
		d.stage = Stage2
		proto := vm.IntoPrototype()
		params := d.encodeValidateParams(nil)
		vm2, err := d.cfg.StartVM(proto, validateTransactionFn, params)
		if err != nil {
			return &Finished{Result: Outcome{DriverErr: &WasmStartError{Function: validateTransactionFn, Detail: err.Error()}}, VM: proto}
		}
		return d.pump(vm2)
	}

	valid, invalid, err := decodeValidityReturn(y.Result)
	if err != nil {
		return &Finished{Result: Outcome{DriverErr: err}, VM: vm.IntoPrototype()}
	}
	if valid != nil && len(valid.Provides) == 0 {
		return &Finished{Result: Outcome{DriverErr: ErrEmptyProvidedTags}, VM: vm.IntoPrototype()}
	}
	return &Finished{Result: Outcome{Transaction: valid, Validity: invalid}, VM: vm.IntoPrototype()}
}

// StorageGetQuery requests the value at Key (ChildTrie == nil means the
// main trie).
type StorageGetQuery struct {
	Key       []byte
	ChildTrie []byte
	Stage     Stage

	d  *driver
	vm RuntimeHostVM
}

func (q *StorageGetQuery) IntoPrototype() VMPrototype { return q.vm.IntoPrototype() }

// InjectValue answers the query with value (nil means "not found") and
// resumes the driver.
func (q *StorageGetQuery) InjectValue(value []byte) Query {
	return q.d.pump(q.vm.InjectValue(value))
}

// ClosestDescendantMerkleValueQuery requests the Merkle value of the
// closest descendant of Key in the trie.
type ClosestDescendantMerkleValueQuery struct {
	Key       []byte
	ChildTrie []byte
	Stage     Stage

	d  *driver
	vm RuntimeHostVM
}

func (q *ClosestDescendantMerkleValueQuery) IntoPrototype() VMPrototype { return q.vm.IntoPrototype() }

// InjectMerkleValue answers the query with a known Merkle value.
func (q *ClosestDescendantMerkleValueQuery) InjectMerkleValue(value []byte) Query {
	return q.d.pump(q.vm.InjectValue(value))
}

// ResumeUnknown tells the VM to compute the Merkle value itself.
func (q *ClosestDescendantMerkleValueQuery) ResumeUnknown() Query {
	return q.d.pump(q.vm.ResumeUnknown())
}

// NextKeyQuery requests the key lexically following (or equal to, if
// OrEqual) Key under Prefix.
type NextKeyQuery struct {
	Key         []byte
	ChildTrie   []byte
	OrEqual     bool
	BranchNodes bool
	Prefix      []byte
	Stage       Stage

	d  *driver
	vm RuntimeHostVM
}

func (q *NextKeyQuery) IntoPrototype() VMPrototype { return q.vm.IntoPrototype() }

// InjectKey answers the query with the next key, or nil if there is
// none.
func (q *NextKeyQuery) InjectKey(key []byte) Query {
	return q.d.pump(q.vm.InjectKey(key))
}
