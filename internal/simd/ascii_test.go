package simd

import (
	"bytes"
	"testing"
)

func TestIsASCII(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected bool
	}{
		{"empty", nil, true},
		{"empty_slice", []byte{}, true},
		{"single_ascii", []byte{'a'}, true},
		{"single_non_ascii", []byte{0x80}, false},
		{"short_hello", []byte("hello"), true},
		{"short_utf8", []byte("hÃ©llo"), false},
		{"8_bytes_ascii", []byte("12345678"), true},
		{"8_bytes_non_ascii_last", append([]byte("1234567"), 0x80), false},
		{"32_bytes_ascii", []byte("12345678901234567890123456789012"), true},
		{"32_bytes_non_ascii_first", append([]byte{0x80}, bytes.Repeat([]byte{'a'}, 31)...), false},
		{"32_bytes_non_ascii_last", append(bytes.Repeat([]byte{'a'}, 31), 0x80), false},
		{"40_bytes_non_ascii_tail", append(bytes.Repeat([]byte{'a'}, 39), 0x80), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsASCII(tt.input); got != tt.expected {
				t.Errorf("IsASCII(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestFirstNonASCII(t *testing.T) {
	tests := []struct {
		input []byte
		want  int
	}{
		{[]byte("hello"), -1},
		{[]byte("hell\x80o"), 4},
		{[]byte{}, -1},
	}

	for _, tt := range tests {
		if got := FirstNonASCII(tt.input); got != tt.want {
			t.Errorf("FirstNonASCII(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}
