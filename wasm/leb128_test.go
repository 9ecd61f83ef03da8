package wasm

import "testing"

func TestLebU32(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want uint32
		n    int
	}{
		{"single byte", []byte{0x08}, 8, 1},
		{"padded twelve", []byte{0x8c, 0x80, 0x80, 0x80, 0x00}, 12, 5},
		{"wikipedia example", []byte{0xe5, 0x8e, 0x26}, 624485, 3},
		{"max uint32", []byte{0xff, 0xff, 0xff, 0xff, 0x0f}, 0xffffffff, 5},
		{"trailing bytes ignored", []byte{0x03, 0xff, 0xff}, 3, 1},
	}
	for _, tt := range tests {
		got, n, err := lebU32(tt.in)
		if err != nil {
			t.Errorf("%s: unexpected error: %v", tt.name, err)
			continue
		}
		if got != tt.want || n != tt.n {
			t.Errorf("%s: got (%d, %d), want (%d, %d)", tt.name, got, n, tt.want, tt.n)
		}
	}
}

func TestLebU32Truncated(t *testing.T) {
	if _, _, err := lebU32([]byte{0x80, 0x80}); err == nil {
		t.Error("expected error for truncated varint")
	}
}

func TestLebU32TooLong(t *testing.T) {
	in := []byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x80}
	if _, _, err := lebU32(in); err == nil {
		t.Error("expected error for overlong varint")
	}
}

func TestLebU32Overflow(t *testing.T) {
	// Payload bits above bit 31 in the final byte must be zero.
	in := []byte{0xff, 0xff, 0xff, 0xff, 0x7f}
	if _, _, err := lebU32(in); err == nil {
		t.Error("expected error for varint wider than 32 bits")
	}
}

func TestLebI32Overflow(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
	}{
		{"unused bits disagree with sign", []byte{0xff, 0xff, 0xff, 0xff, 0x4f}},
		{"positive with high bits set", []byte{0xff, 0xff, 0xff, 0xff, 0x17}},
	}
	for _, tt := range tests {
		if _, _, err := lebI32(tt.in); err == nil {
			t.Errorf("%s: expected error", tt.name)
		}
	}
}

func TestLebI32MaxLengthMinusOne(t *testing.T) {
	// A non-canonical but bit-consistent five-byte -1 stays valid.
	got, n, err := lebI32([]byte{0xff, 0xff, 0xff, 0xff, 0x7f})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != -1 || n != 5 {
		t.Errorf("got (%d, %d), want (-1, 5)", got, n)
	}
}

func TestLebU64Overflow(t *testing.T) {
	in := []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x02}
	if _, _, err := lebU64(in); err == nil {
		t.Error("expected error for varint wider than 64 bits")
	}
}

func TestLebI64Overflow(t *testing.T) {
	in := []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x3f}
	if _, _, err := lebI64(in); err == nil {
		t.Error("expected error for unused bits disagreeing with sign")
	}
}

func TestLebI64MaxLengthMinusOne(t *testing.T) {
	in := []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x7f}
	got, n, err := lebI64(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != -1 || n != 10 {
		t.Errorf("got (%d, %d), want (-1, 10)", got, n)
	}
}

func TestLebI32(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want int32
		n    int
	}{
		{"zero", []byte{0x00}, 0, 1},
		{"positive", []byte{0x3f}, 63, 1},
		{"minus one", []byte{0x7f}, -1, 1},
		{"sign extension", []byte{0x41}, -63, 1},
		{"two byte negative", []byte{0xc0, 0x7f}, -64, 2},
		{"large positive", []byte{0xe5, 0x8e, 0x26}, 624485, 3},
	}
	for _, tt := range tests {
		got, n, err := lebI32(tt.in)
		if err != nil {
			t.Errorf("%s: unexpected error: %v", tt.name, err)
			continue
		}
		if got != tt.want || n != tt.n {
			t.Errorf("%s: got (%d, %d), want (%d, %d)", tt.name, got, n, tt.want, tt.n)
		}
	}
}

func TestLebI64(t *testing.T) {
	got, n, err := lebI64([]byte{0x7f})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != -1 || n != 1 {
		t.Errorf("got (%d, %d), want (-1, 1)", got, n)
	}
}

func TestLebU64(t *testing.T) {
	in := []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x01}
	got, n, err := lebU64(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 0xffffffffffffffff || n != 10 {
		t.Errorf("got (%d, %d), want (max, 10)", got, n)
	}
}
