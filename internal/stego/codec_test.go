package stego

import (
	"errors"
	"strings"
	"testing"
)

func TestEncode_BitOrder(t *testing.T) {
	bits, err := Encode("A", 0)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	// 'A' = 0x41, '%' = 0x25
	want := "01000001" + "00100101" + "00100101" + "00100101"
	if got := bits.String(); got != want {
		t.Errorf("Encode(\"A\", 0):\n got %s\nwant %s", got, want)
	}
}

func TestEncode_AppliesKey(t *testing.T) {
	bits, err := Encode("A", DefaultKey)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	// 0x41 ^ 0x1A = 0x5B, 0x25 ^ 0x1A = 0x3F
	want := "01011011" + strings.Repeat("00111111", 3)
	if got := bits.String(); got != want {
		t.Errorf("Encode(\"A\", 0x1A):\n got %s\nwant %s", got, want)
	}
}

func TestEncode_Length(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    int
	}{
		{"empty", "", 24},
		{"single", "x", 32},
		{"scenario", "Test%Message%123", 160},
		{"latin1", "café", 56},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bits, err := Encode(tt.message, DefaultKey)
			if err != nil {
				t.Fatalf("Encode failed: %v", err)
			}
			if len(bits) != tt.want {
				t.Errorf("len: got %d, want %d", len(bits), tt.want)
			}
			if n := EncodedBits(tt.message); n != tt.want {
				t.Errorf("EncodedBits: got %d, want %d", n, tt.want)
			}
		})
	}
}

func TestEncode_Unencodable(t *testing.T) {
	tests := []string{"日本", "ok Ā", "emoji 🙂", "bad \xff utf8"}

	for _, msg := range tests {
		_, err := Encode(msg, DefaultKey)
		if !errors.Is(err, ErrUnencodableMessage) {
			t.Errorf("Encode(%q): got %v, want ErrUnencodableMessage", msg, err)
		}
	}
}

func TestTryDecode_RoundTrip(t *testing.T) {
	messages := []string{"", "hello", "Test%Message%123", "café ½ ÿ", "tab\tnew\nline"}
	keys := []Key{0, DefaultKey, 0x7F, 0xFF}

	for _, msg := range messages {
		for _, key := range keys {
			bits, err := Encode(msg, key)
			if err != nil {
				t.Fatalf("Encode(%q, %v) failed: %v", msg, key, err)
			}
			got, err := TryDecode(bits, key)
			if err != nil {
				t.Errorf("TryDecode(%q, %v) failed: %v", msg, key, err)
				continue
			}
			if got != msg {
				t.Errorf("TryDecode with key %v: got %q, want %q", key, got, msg)
			}
		}
	}
}

func TestTryDecode_IgnoresTrailingBits(t *testing.T) {
	bits, err := Encode("abc", DefaultKey)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	bits = append(bits, 1, 0, 1)

	got, err := TryDecode(bits, DefaultKey)
	if err != nil {
		t.Fatalf("TryDecode failed: %v", err)
	}
	if got != "abc" {
		t.Errorf("got %q, want %q", got, "abc")
	}
}

func TestTryDecode_NoTerminator(t *testing.T) {
	tests := []struct {
		name string
		bits string
	}{
		{"empty", ""},
		{"partial byte", "0101"},
		{"two percent", "00100101" + "00100101"},
		{"text only", "01000001" + "01000010"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bits, err := ParseBitstream(tt.bits)
			if err != nil {
				t.Fatalf("ParseBitstream failed: %v", err)
			}
			if _, err := TryDecode(bits, 0); !errors.Is(err, ErrNoTerminator) {
				t.Errorf("got %v, want ErrNoTerminator", err)
			}
		})
	}
}

func TestTryDecode_FirstTerminatorWins(t *testing.T) {
	bits, err := Encode("a%%%b", 0)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	got, err := TryDecode(bits, 0)
	if err != nil {
		t.Fatalf("TryDecode failed: %v", err)
	}
	if got != "a" {
		t.Errorf("got %q, want %q", got, "a")
	}
}

func TestTryDecode_WrongKey(t *testing.T) {
	msg := "Test%Message%123"
	bits, err := Encode(msg, 0x1A)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	got, err := TryDecode(bits, 0x2B)
	if err == nil && got == msg {
		t.Errorf("decoding with the wrong key returned the original message")
	}
}

func TestParseBitstream(t *testing.T) {
	bits, err := ParseBitstream("0110")
	if err != nil {
		t.Fatalf("ParseBitstream failed: %v", err)
	}
	want := Bitstream{0, 1, 1, 0}
	if len(bits) != len(want) {
		t.Fatalf("len: got %d, want %d", len(bits), len(want))
	}
	for i := range want {
		if bits[i] != want[i] {
			t.Errorf("bit %d: got %d, want %d", i, bits[i], want[i])
		}
	}

	if _, err := ParseBitstream("01x0"); err == nil {
		t.Error("ParseBitstream should reject non-binary characters")
	}
}
