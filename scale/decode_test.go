package scale

import (
	"bytes"
	"testing"
)

func TestLE64(t *testing.T) {
	tests := []struct {
		name    string
		in      []byte
		want    uint64
		wantErr bool
	}{
		{"zero", []byte{0, 0, 0, 0, 0, 0, 0, 0}, 0, false},
		{"one", []byte{1, 0, 0, 0, 0, 0, 0, 0}, 1, false},
		{"max", []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}, ^uint64(0), false},
		{"short", []byte{1, 2, 3}, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _, err := LE64(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("LE64(%v) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Fatalf("LE64(%v) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestCompactLen(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want int
		rest []byte
	}{
		{"single byte zero", []byte{0x00}, 0, nil},
		{"single byte 63", []byte{0xfc}, 63, nil},
		{"two byte 64", []byte{0x01, 0x01}, 64, nil},
		{"four byte", []byte{0x02, 0x00, 0x01, 0x00}, 16384, nil},
		{"trailing bytes preserved", []byte{0x00, 0xaa, 0xbb}, 0, []byte{0xaa, 0xbb}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, rest, err := CompactLen(tt.in)
			if err != nil {
				t.Fatalf("CompactLen(%v) unexpected error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Fatalf("CompactLen(%v) = %d, want %d", tt.in, got, tt.want)
			}
			if tt.rest != nil && !bytes.Equal(rest, tt.rest) {
				t.Fatalf("CompactLen(%v) rest = %v, want %v", tt.in, rest, tt.rest)
			}
		})
	}
}

func TestCompactLenBigModeOverflow(t *testing.T) {
	// mode 3 (big integer), payload length byte encodes 8 bytes (tag=4 -> n=8), fine.
	in := append([]byte{0x03 | (4 << 2)}, []byte{1, 2, 3, 4, 5, 6, 7, 8}...)
	if _, _, err := CompactLen(in); err != nil {
		t.Fatalf("8-byte big-mode compact int should decode, got %v", err)
	}

	// n = 9 bytes (tag=5) exceeds uint64 range.
	in9 := append([]byte{0x03 | (5 << 2)}, make([]byte, 9)...)
	if _, _, err := CompactLen(in9); err == nil {
		t.Fatalf("9-byte big-mode compact int should be rejected as malformed")
	}
}

func TestVarsizeU64(t *testing.T) {
	tests := []struct {
		name    string
		nBytes  int
		in      []byte
		want    uint64
		wantErr bool
	}{
		{"one byte", 1, []byte{0x2a}, 0x2a, false},
		{"four bytes", 4, []byte{0x31, 0xe7, 0x4d, 0x00}, 5105457, false},
		{"eight bytes", 8, []byte{1, 0, 0, 0, 0, 0, 0, 0}, 1, false},
		{"too short", 4, []byte{1, 2}, 0, true},
		{"zero width rejected", 0, []byte{}, 0, true},
		{"nine width rejected", 9, make([]byte, 9), 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _, err := VarsizeU64(tt.nBytes, tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("VarsizeU64(%d, %v) error = %v, wantErr %v", tt.nBytes, tt.in, err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Fatalf("VarsizeU64(%d, %v) = %d, want %d", tt.nBytes, tt.in, got, tt.want)
			}
		})
	}
}

func TestTakeExactZeroCopy(t *testing.T) {
	buf := []byte{1, 2, 3, 4, 5}
	got, rest, err := TakeExact(3, buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if &got[0] != &buf[0] {
		t.Fatalf("TakeExact did not borrow the original buffer")
	}
	if !bytes.Equal(rest, []byte{4, 5}) {
		t.Fatalf("rest = %v, want [4 5]", rest)
	}
}

func TestTakeExactIncomplete(t *testing.T) {
	if _, _, err := TakeExact(10, []byte{1, 2, 3}); err == nil {
		t.Fatalf("expected incomplete error")
	}
}
