package validity

// VMPrototype is an opaque handle to a runtime host VM that is not
// currently mid-call. The core never inspects it; it only threads it
// back to the caller so the VM is never lost.
type VMPrototype interface{}

// VMYield is the tagged state a RuntimeHostVM is currently suspended in.
// Exactly one concrete type below is returned from Outcome at any time.
type VMYield interface {
	isVMYield()
}

// VMFinished means the current entry point ran to completion. Err is
// nil on success, in which case Result holds the raw SCALE-encoded
// return bytes.
type VMFinished struct {
	Result []byte
	Err    error
}

func (VMFinished) isVMYield() {}

// VMStorageGet requests the value at Key in the given child trie
// (ChildTrie == nil means the main trie).
type VMStorageGet struct {
	Key       []byte
	ChildTrie []byte
}

func (VMStorageGet) isVMYield() {}

// VMClosestDescendantMerkleValue requests the Merkle value of the
// closest descendant of Key in the trie, or permission to compute it
// without the caller's help (see RuntimeHostVM.ResumeUnknown).
type VMClosestDescendantMerkleValue struct {
	Key       []byte
	ChildTrie []byte
}

func (VMClosestDescendantMerkleValue) isVMYield() {}

// VMNextKey requests the key that lexically follows Key (or equals it,
// if OrEqual) under Prefix in the trie.
type VMNextKey struct {
	Key         []byte
	ChildTrie   []byte
	OrEqual     bool
	BranchNodes bool
	Prefix      []byte
}

func (VMNextKey) isVMYield() {}

// VMSignatureVerification means the runtime asked the host to verify an
// embedded signature. The driver trusts the runtime here and resumes
// immediately.
type VMSignatureVerification struct{}

func (VMSignatureVerification) isVMYield() {}

// VMOffchainStorageSet means the runtime asked to write to offchain
// storage. The driver drops the write and resumes.
type VMOffchainStorageSet struct {
	Key   []byte
	Value []byte
}

func (VMOffchainStorageSet) isVMYield() {}

// VMOffchain means the runtime made any other offchain host call, which
// this driver forbids.
type VMOffchain struct {
	Detail string
}

func (VMOffchain) isVMYield() {}

// RuntimeHostVM is the external, sandboxed wasm execution engine that
// the driver pumps. It is not implemented by this package; a caller
// supplies one via Config.StartVM.
//
// A caller must only invoke the transition that matches the yield
// currently reported by Outcome: InjectValue answers StorageGet or
// ClosestDescendantMerkleValue, ResumeUnknown answers
// ClosestDescendantMerkleValue, InjectKey answers NextKey, and Resume
// answers SignatureVerification or OffchainStorageSet. IntoPrototype is
// valid at any time and discards any work in progress.
type RuntimeHostVM interface {
	Outcome() VMYield
	InjectValue(value []byte) RuntimeHostVM
	ResumeUnknown() RuntimeHostVM
	InjectKey(key []byte) RuntimeHostVM
	Resume() RuntimeHostVM
	IntoPrototype() VMPrototype
}
