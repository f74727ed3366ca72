package validity

import (
	"errors"
	"fmt"
)

// ErrInvalidHeader means the supplied SCALE-encoded header could not be
// decoded.
var ErrInvalidHeader = errors.New("validity: invalid header")

// ErrUnknownApiVersion means the runtime advertised a
// TaggedTransactionQueue version this driver does not implement.
var ErrUnknownApiVersion = errors.New("validity: unknown TaggedTransactionQueue API version")

// ErrOutputDecodeError means a runtime entry point's return bytes could
// not be decoded according to the expected grammar for its stage.
var ErrOutputDecodeError = errors.New("validity: could not decode runtime output")

// ErrEmptyProvidedTags means the runtime reported a valid transaction
// with no provided tags, which the driver treats as invalid regardless
// of what the runtime itself claimed.
var ErrEmptyProvidedTags = errors.New("validity: valid transaction has no provided tags")

// ErrForbiddenHostCall means the runtime attempted an offchain host call
// other than a storage write, which this driver does not support.
var ErrForbiddenHostCall = errors.New("validity: forbidden offchain host call")

// WasmStartError means the collaborator failed to start a fresh VM
// invocation of the named entry point.
type WasmStartError struct {
	Function string
	Detail   string
}

func (e *WasmStartError) Error() string {
	return fmt.Sprintf("validity: failed to start %s: %s", e.Function, e.Detail)
}

// WasmVmReadWriteError wraps a VM failure that occurred during the
// read-write stage (Core_initialize_block, API v2 only).
type WasmVmReadWriteError struct {
	Detail string
}

func (e *WasmVmReadWriteError) Error() string {
	return fmt.Sprintf("validity: wasm read-write stage failed: %s", e.Detail)
}

// WasmVmReadOnlyError wraps a VM failure that occurred during the
// read-only validation stage.
type WasmVmReadOnlyError struct {
	Detail string
}

func (e *WasmVmReadOnlyError) Error() string {
	return fmt.Sprintf("validity: wasm validation stage failed: %s", e.Detail)
}
