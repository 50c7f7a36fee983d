// Package simd provides ASCII fast-path detection over byte slices.
//
// TLS terminals and case-insensitive BKR targets fold ASCII letters A-Z to
// a-z on both sides of a comparison. The parser core does that fold one
// character at a time with alphabet.FoldASCII and does not call this
// package.
package simd

import (
	"encoding/binary"
)

// isASCIIGeneric implements pure Go ASCII detection using SWAR (SIMD Within A Register)
// technique. It processes 8 bytes at a time using uint64 bitwise operations.
//
// This function is used as a fallback on all platforms:
//   - On amd64: fallback for small inputs (below the wide-chunk threshold)
//   - On other platforms: primary implementation
//
// Algorithm:
//  1. Read 8 bytes from data as uint64
//  2. AND with 0x8080808080808080 to extract high bits
//  3. If result != 0, at least one byte has high bit set (non-ASCII)
//  4. If result == 0 for all chunks, all bytes are ASCII
//
// Performance: ~10 GB/s on modern CPUs (memory bandwidth limited for large inputs).
func isASCIIGeneric(data []byte) bool {
	dataLen := len(data)
	if dataLen == 0 {
		return true
	}

	// For small inputs, byte-by-byte is simpler and has no setup overhead
	if dataLen < 8 {
		for i := 0; i < dataLen; i++ {
			if data[i] >= 0x80 {
				return false
			}
		}
		return true
	}

	// SWAR technique: check high bit of 8 bytes at once
	// ASCII bytes have bit 7 clear (0x00-0x7F)
	// Non-ASCII bytes have bit 7 set (0x80-0xFF)
	// AND with 0x8080808080808080 extracts all high bits
	const hi8 = uint64(0x8080808080808080)

	idx := 0

	// Process aligned 8-byte chunks
	for idx+8 <= dataLen {
		// Read 8 bytes as little-endian uint64
		chunk := binary.LittleEndian.Uint64(data[idx:])

		// Check if any byte has high bit set
		// If (chunk & hi8) != 0, at least one byte >= 0x80
		if chunk&hi8 != 0 {
			return false
		}

		idx += 8
	}

	// Process remaining bytes (0-7 bytes) byte-by-byte
	for idx < dataLen {
		if data[idx] >= 0x80 {
			return false
		}
		idx++
	}

	return true
}

// FirstNonASCII returns the index of the first non-ASCII byte, or -1 if all bytes are ASCII.
func FirstNonASCII(data []byte) int {
	for i, b := range data {
		if b >= 0x80 {
			return i
		}
	}
	return -1
}
