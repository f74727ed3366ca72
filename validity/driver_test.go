package validity

import (
	"encoding/binary"
	"errors"
	"testing"
)

// fakeVM is a hand-written RuntimeHostVM used for testing, in place of a
// real wasm engine. It plays back a fixed script of yields and records
// which transitions the driver invoked.
type fakeVM struct {
	script []VMYield
	pos    int
	calls  []string
}

func (f *fakeVM) Outcome() VMYield {
	if f.pos >= len(f.script) {
		return VMFinished{Err: errors.New("fakeVM: script exhausted")}
	}
	return f.script[f.pos]
}

func (f *fakeVM) advance(call string) RuntimeHostVM {
	f.calls = append(f.calls, call)
	f.pos++
	return f
}

func (f *fakeVM) InjectValue(value []byte) RuntimeHostVM  { return f.advance("InjectValue") }
func (f *fakeVM) ResumeUnknown() RuntimeHostVM            { return f.advance("ResumeUnknown") }
func (f *fakeVM) InjectKey(key []byte) RuntimeHostVM       { return f.advance("InjectKey") }
func (f *fakeVM) Resume() RuntimeHostVM                    { return f.advance("Resume") }
func (f *fakeVM) IntoPrototype() VMPrototype               { return f }

func encodeValidTransactionReturn(priority uint64, provides [][]byte, longevity uint64, propagate bool) []byte {
	out := []byte{0}
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], priority)
	out = append(out, tmp[:]...)
	out = append(out, 0) // requires: compact_len 0
	out = append(out, byte(len(provides)<<2))
	for _, p := range provides {
		out = append(out, byte(len(p)<<2))
		out = append(out, p...)
	}
	binary.LittleEndian.PutUint64(tmp[:], longevity)
	out = append(out, tmp[:]...)
	if propagate {
		out = append(out, 1)
	} else {
		out = append(out, 0)
	}
	return out
}

func encodeHeader(number uint64, blockNumberBytes int) []byte {
	var buf [32]byte
	out := append([]byte{}, buf[:]...)
	var numLE [8]byte
	binary.LittleEndian.PutUint64(numLE[:], number)
	out = append(out, numLE[:blockNumberBytes]...)
	return out
}

func TestValidateV3HappyPath(t *testing.T) {
	retVal := encodeValidTransactionReturn(4, [][]byte{{0xaa}}, 1, true)
	vm := &fakeVM{script: []VMYield{VMFinished{Result: retVal}}}

	started := false
	cfg := Config{
		APIVersion:         3,
		ScaleEncodedHeader: encodeHeader(10, 4),
		BlockNumberBytes:   4,
		Source:             InBlock,
		Transaction:        []byte{1, 2, 3},
		StartVM: func(prototype VMPrototype, function string, parameter []byte) (RuntimeHostVM, error) {
			if function != validateTransactionFn {
				t.Fatalf("unexpected entry point for v3: %s", function)
			}
			started = true
			return vm, nil
		},
	}

	q := Validate(cfg)
	fin, ok := q.(*Finished)
	if !ok {
		t.Fatalf("Query = %T, want *Finished", q)
	}
	if !started {
		t.Fatalf("StartVM was not called")
	}
	if fin.Result.DriverErr != nil {
		t.Fatalf("DriverErr = %v, want nil", fin.Result.DriverErr)
	}
	if fin.Result.Transaction == nil || fin.Result.Transaction.Priority != 4 {
		t.Fatalf("Transaction = %+v, want priority 4", fin.Result.Transaction)
	}
}

func TestValidateV2StorageProbe(t *testing.T) {
	retVal := encodeValidTransactionReturn(1, [][]byte{{0x01}}, 1, true)

	stage1VM := &fakeVM{script: []VMYield{
		VMStorageGet{Key: []byte(":code")},
	}}
	stage2VM := &fakeVM{script: []VMYield{VMFinished{Result: retVal}}}

	calls := 0
	cfg := Config{
		APIVersion:         2,
		ScaleEncodedHeader: encodeHeader(10, 4),
		BlockNumberBytes:   4,
		Source:             External,
		Transaction:        []byte{9, 9},
		StartVM: func(prototype VMPrototype, function string, parameter []byte) (RuntimeHostVM, error) {
			calls++
			if calls == 1 {
				if function != coreInitializeBlock {
					t.Fatalf("first call = %s, want %s", function, coreInitializeBlock)
				}
				if prototype != nil {
					t.Fatalf("first call should start from a fresh VM, got prototype %v", prototype)
				}
				return stage1VM, nil
			}
			if function != validateTransactionFn {
				t.Fatalf("second call = %s, want %s", function, validateTransactionFn)
			}
			if prototype != stage1VM {
				t.Fatalf("second call should carry stage 1's VM prototype forward, got %v", prototype)
			}
			return stage2VM, nil
		},
	}

	q := Validate(cfg)
	sg, ok := q.(*StorageGetQuery)
	if !ok {
		t.Fatalf("Query = %T, want *StorageGetQuery", q)
	}
	if string(sg.Key) != ":code" {
		t.Fatalf("Key = %q, want :code", sg.Key)
	}
	if sg.Stage != Stage1 {
		t.Fatalf("Stage = %v, want Stage1", sg.Stage)
	}

	// Stage 1 VM finishes with empty output once resumed.
	stage1VM.script = append(stage1VM.script, VMFinished{Result: nil})

	q2 := sg.InjectValue([]byte{0xde, 0xad})
	fin, ok := q2.(*Finished)
	if !ok {
		t.Fatalf("Query = %T, want *Finished", q2)
	}
	if calls != 2 {
		t.Fatalf("StartVM called %d times, want 2", calls)
	}
	if fin.Result.DriverErr != nil {
		t.Fatalf("DriverErr = %v, want nil", fin.Result.DriverErr)
	}
}

func TestValidateUnknownAPIVersion(t *testing.T) {
	called := false
	cfg := Config{
		APIVersion: 1,
		StartVM: func(prototype VMPrototype, function string, parameter []byte) (RuntimeHostVM, error) {
			called = true
			return nil, nil
		},
	}
	q := Validate(cfg)
	fin, ok := q.(*Finished)
	if !ok {
		t.Fatalf("Query = %T, want *Finished", q)
	}
	if !errors.Is(fin.Result.DriverErr, ErrUnknownApiVersion) {
		t.Fatalf("DriverErr = %v, want ErrUnknownApiVersion", fin.Result.DriverErr)
	}
	if called {
		t.Fatalf("StartVM should not be called for an unrecognized API version")
	}
}

func TestValidateEmptyProvidedTags(t *testing.T) {
	retVal := encodeValidTransactionReturn(1, nil, 1, true)
	vm := &fakeVM{script: []VMYield{VMFinished{Result: retVal}}}
	cfg := Config{
		APIVersion:         3,
		ScaleEncodedHeader: encodeHeader(1, 4),
		BlockNumberBytes:   4,
		StartVM: func(prototype VMPrototype, function string, parameter []byte) (RuntimeHostVM, error) {
			return vm, nil
		},
	}
	q := Validate(cfg)
	fin := q.(*Finished)
	if !errors.Is(fin.Result.DriverErr, ErrEmptyProvidedTags) {
		t.Fatalf("DriverErr = %v, want ErrEmptyProvidedTags", fin.Result.DriverErr)
	}
}

func TestValidateForbiddenHostCall(t *testing.T) {
	vm := &fakeVM{script: []VMYield{VMOffchain{Detail: "http_request"}}}
	cfg := Config{
		APIVersion:         3,
		ScaleEncodedHeader: encodeHeader(1, 4),
		BlockNumberBytes:   4,
		StartVM: func(prototype VMPrototype, function string, parameter []byte) (RuntimeHostVM, error) {
			return vm, nil
		},
	}
	q := Validate(cfg)
	fin := q.(*Finished)
	if !errors.Is(fin.Result.DriverErr, ErrForbiddenHostCall) {
		t.Fatalf("DriverErr = %v, want ErrForbiddenHostCall", fin.Result.DriverErr)
	}
}

func TestValidateSignatureVerificationAutoResumes(t *testing.T) {
	retVal := encodeValidTransactionReturn(1, [][]byte{{0x01}}, 1, true)
	vm := &fakeVM{script: []VMYield{
		VMSignatureVerification{},
		VMFinished{Result: retVal},
	}}
	cfg := Config{
		APIVersion:         3,
		ScaleEncodedHeader: encodeHeader(1, 4),
		BlockNumberBytes:   4,
		StartVM: func(prototype VMPrototype, function string, parameter []byte) (RuntimeHostVM, error) {
			return vm, nil
		},
	}
	q := Validate(cfg)
	fin, ok := q.(*Finished)
	if !ok {
		t.Fatalf("Query = %T, want *Finished", q)
	}
	if fin.Result.DriverErr != nil {
		t.Fatalf("DriverErr = %v, want nil", fin.Result.DriverErr)
	}
	if len(vm.calls) != 1 || vm.calls[0] != "Resume" {
		t.Fatalf("calls = %v, want [Resume]", vm.calls)
	}
}

func TestValidateOffchainStorageSetAutoResumes(t *testing.T) {
	retVal := encodeValidTransactionReturn(1, [][]byte{{0x01}}, 1, true)
	vm := &fakeVM{script: []VMYield{
		VMOffchainStorageSet{Key: []byte("k"), Value: []byte("v")},
		VMFinished{Result: retVal},
	}}
	cfg := Config{
		APIVersion:         3,
		ScaleEncodedHeader: encodeHeader(1, 4),
		BlockNumberBytes:   4,
		StartVM: func(prototype VMPrototype, function string, parameter []byte) (RuntimeHostVM, error) {
			return vm, nil
		},
	}
	q := Validate(cfg)
	fin, ok := q.(*Finished)
	if !ok {
		t.Fatalf("Query = %T, want *Finished", q)
	}
	if fin.Result.DriverErr != nil {
		t.Fatalf("DriverErr = %v, want nil", fin.Result.DriverErr)
	}
	if len(vm.calls) != 1 || vm.calls[0] != "Resume" {
		t.Fatalf("calls = %v, want [Resume]", vm.calls)
	}
}

func TestValidateClosestDescendantMerkleValueQuery(t *testing.T) {
	retVal := encodeValidTransactionReturn(1, [][]byte{{0x01}}, 1, true)
	vm := &fakeVM{script: []VMYield{
		VMClosestDescendantMerkleValue{Key: []byte("root"), ChildTrie: []byte("child")},
	}}
	cfg := Config{
		APIVersion:         3,
		ScaleEncodedHeader: encodeHeader(1, 4),
		BlockNumberBytes:   4,
		StartVM: func(prototype VMPrototype, function string, parameter []byte) (RuntimeHostVM, error) {
			return vm, nil
		},
	}

	q := Validate(cfg)
	mq, ok := q.(*ClosestDescendantMerkleValueQuery)
	if !ok {
		t.Fatalf("Query = %T, want *ClosestDescendantMerkleValueQuery", q)
	}
	if string(mq.Key) != "root" || string(mq.ChildTrie) != "child" {
		t.Fatalf("Key/ChildTrie = %q/%q, want root/child", mq.Key, mq.ChildTrie)
	}
	if mq.Stage != Stage2 {
		t.Fatalf("Stage = %v, want Stage2", mq.Stage)
	}
	if mq.IntoPrototype() != vm {
		t.Fatalf("IntoPrototype() did not recover the live VM")
	}

	vm.script = append(vm.script, VMFinished{Result: retVal})
	q2 := mq.ResumeUnknown()
	fin, ok := q2.(*Finished)
	if !ok {
		t.Fatalf("Query = %T, want *Finished", q2)
	}
	if len(vm.calls) != 1 || vm.calls[0] != "ResumeUnknown" {
		t.Fatalf("calls = %v, want [ResumeUnknown]", vm.calls)
	}
	if fin.Result.DriverErr != nil {
		t.Fatalf("DriverErr = %v, want nil", fin.Result.DriverErr)
	}

	// InjectMerkleValue takes the other branch of the same suspension.
	vm2 := &fakeVM{script: []VMYield{
		VMClosestDescendantMerkleValue{Key: []byte("root")},
		VMFinished{Result: retVal},
	}}
	cfg.StartVM = func(prototype VMPrototype, function string, parameter []byte) (RuntimeHostVM, error) {
		return vm2, nil
	}
	mq2 := Validate(cfg).(*ClosestDescendantMerkleValueQuery)
	if _, ok := mq2.InjectMerkleValue([]byte{0xbe, 0xef}).(*Finished); !ok {
		t.Fatalf("InjectMerkleValue did not resume to a Finished query")
	}
	if len(vm2.calls) != 1 || vm2.calls[0] != "InjectValue" {
		t.Fatalf("calls = %v, want [InjectValue]", vm2.calls)
	}
}

func TestValidateNextKeyQuery(t *testing.T) {
	retVal := encodeValidTransactionReturn(1, [][]byte{{0x01}}, 1, true)
	vm := &fakeVM{script: []VMYield{
		VMNextKey{Key: []byte("a"), Prefix: []byte("pfx"), OrEqual: true, BranchNodes: true},
	}}
	cfg := Config{
		APIVersion:         3,
		ScaleEncodedHeader: encodeHeader(1, 4),
		BlockNumberBytes:   4,
		StartVM: func(prototype VMPrototype, function string, parameter []byte) (RuntimeHostVM, error) {
			return vm, nil
		},
	}

	q := Validate(cfg)
	nq, ok := q.(*NextKeyQuery)
	if !ok {
		t.Fatalf("Query = %T, want *NextKeyQuery", q)
	}
	if string(nq.Key) != "a" || string(nq.Prefix) != "pfx" || !nq.OrEqual || !nq.BranchNodes {
		t.Fatalf("unexpected NextKeyQuery fields: %+v", nq)
	}
	if nq.Stage != Stage2 {
		t.Fatalf("Stage = %v, want Stage2", nq.Stage)
	}
	if nq.IntoPrototype() != vm {
		t.Fatalf("IntoPrototype() did not recover the live VM")
	}

	vm.script = append(vm.script, VMFinished{Result: retVal})
	q2 := nq.InjectKey([]byte("b"))
	fin, ok := q2.(*Finished)
	if !ok {
		t.Fatalf("Query = %T, want *Finished", q2)
	}
	if len(vm.calls) != 1 || vm.calls[0] != "InjectKey" {
		t.Fatalf("calls = %v, want [InjectKey]", vm.calls)
	}
	if fin.Result.DriverErr != nil {
		t.Fatalf("DriverErr = %v, want nil", fin.Result.DriverErr)
	}
}

func TestValidateInvalidHeader(t *testing.T) {
	cfg := Config{
		APIVersion:         3,
		ScaleEncodedHeader: []byte{1, 2, 3},
		BlockNumberBytes:   4,
		StartVM: func(prototype VMPrototype, function string, parameter []byte) (RuntimeHostVM, error) {
			t.Fatalf("StartVM should not be called on an undecodable header")
			return nil, nil
		},
	}
	q := Validate(cfg)
	fin := q.(*Finished)
	if !errors.Is(fin.Result.DriverErr, ErrInvalidHeader) {
		t.Fatalf("DriverErr = %v, want ErrInvalidHeader", fin.Result.DriverErr)
	}
}
