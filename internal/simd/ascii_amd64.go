//go:build amd64

package simd

import "golang.org/x/sys/cpu"

// hasAVX2 indicates whether the CPU supports AVX2 instructions (256-bit
// SIMD). Used only to pick a wider pure-Go SWAR chunk size below; no
// assembly kernel is invoked (see DESIGN.md).
var hasAVX2 = cpu.X86.HasAVX2

// IsASCII checks if all bytes in the slice are ASCII (< 0x80).
// Returns true if all bytes have the high bit clear (values 0x00-0x7F).
//
// On AVX2-capable hosts, inputs at or above the wide-chunk threshold are
// checked 32 bytes at a time (four SWAR words) to cut the iteration count to
// a quarter; everything else falls back to the 8-byte-at-a-time generic path.
func IsASCII(data []byte) bool {
	if len(data) == 0 {
		return true
	}

	if hasAVX2 && len(data) >= 32 {
		return isASCIIWide(data)
	}

	return isASCIIGeneric(data)
}

// isASCIIWide checks 32 bytes per iteration using four interleaved SWAR
// words, trading a little register pressure for fewer loop-condition checks
// than the 8-byte generic path.
func isASCIIWide(data []byte) bool {
	const hi8 = uint64(0x8080808080808080)

	idx := 0
	for idx+32 <= len(data) {
		w0 := leUint64(data[idx:])
		w1 := leUint64(data[idx+8:])
		w2 := leUint64(data[idx+16:])
		w3 := leUint64(data[idx+24:])
		if (w0|w1|w2|w3)&hi8 != 0 {
			return false
		}
		idx += 32
	}

	return isASCIIGeneric(data[idx:])
}

func leUint64(b []byte) uint64 {
	_ = b[7]
	return uint64(b[0]) | uint64(b[1])<<8 | uint64(b[2])<<16 | uint64(b[3])<<24 |
		uint64(b[4])<<32 | uint64(b[5])<<40 | uint64(b[6])<<48 | uint64(b[7])<<56
}
