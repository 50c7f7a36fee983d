package alphabet

import "testing"

func TestUndefined(t *testing.T) {
	if got := Undefined[uint8](); got != 0xFF {
		t.Errorf("Undefined[uint8]() = %#x, want 0xff", got)
	}
	if got := Undefined[uint32](); got != 0xFFFFFFFF {
		t.Errorf("Undefined[uint32]() = %#x, want 0xffffffff", got)
	}
	if !IsUndefined[uint8](Undefined[uint8]()) {
		t.Errorf("IsUndefined should report true for the sentinel")
	}
	if IsUndefined[uint8](0) {
		t.Errorf("IsUndefined should report false for 0")
	}
}

func TestPhrase(t *testing.T) {
	p := Phrase{Offset: 2, Length: 3}
	if p.End() != 5 {
		t.Errorf("End() = %d, want 5", p.End())
	}
	if p.Empty() {
		t.Errorf("Empty() = true, want false")
	}
	if (Phrase{Offset: 4, Length: 0}).Empty() != true {
		t.Errorf("zero-length phrase should report Empty() == true")
	}
	if !UndefinedPhrase.IsUndefined() {
		t.Errorf("UndefinedPhrase.IsUndefined() = false, want true")
	}
}

func TestFoldASCII(t *testing.T) {
	tests := []struct {
		in, want byte
	}{
		{'A', 'a'},
		{'Z', 'z'},
		{'a', 'a'},
		{'0', '0'},
		{0xC0, 0xC0},
	}
	for _, tt := range tests {
		if got := FoldASCII(tt.in); got != tt.want {
			t.Errorf("FoldASCII(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
