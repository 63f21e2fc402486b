package position

import (
	"math"
	"unicode/utf16"
	"unicode/utf8"
)

// UTF16ToByteOffset converts a UTF-16 code unit offset to a byte offset in s.
// LSP positions count UTF-16 code units, Go strings are UTF-8 bytes.
// Offsets inside a surrogate pair clamp to the start of the rune.
func UTF16ToByteOffset(s string, utf16Col int) int {
	if utf16Col <= 0 {
		return 0
	}

	units := 0
	byteOffset := 0

	for byteOffset < len(s) && units < utf16Col {
		r, size := utf8.DecodeRuneInString(s[byteOffset:])
		if r == utf8.RuneError && size == 1 {
			// Invalid UTF-8 byte, count it as one unit
			byteOffset++
			units++
			continue
		}

		runeLen := utf16.RuneLen(r)
		if runeLen == 2 && units+1 == utf16Col {
			// Target falls inside a surrogate pair
			break
		}

		units += runeLen
		byteOffset += size
	}

	return byteOffset
}

// ByteOffsetToUTF16 converts a byte offset in s to a UTF-16 code unit offset.
func ByteOffsetToUTF16(s string, byteOffset int) int {
	if byteOffset <= 0 {
		return 0
	}
	if byteOffset > len(s) {
		byteOffset = len(s)
	}

	units := 0
	offset := 0

	for offset < byteOffset {
		r, size := utf8.DecodeRuneInString(s[offset:])
		if r == utf8.RuneError && size == 0 {
			break
		}
		if offset+size > byteOffset {
			// Target falls inside this rune
			break
		}
		units += utf16.RuneLen(r)
		offset += size
	}
	return units
}

// StringLengthUTF16 returns the length of s in UTF-16 code units
func StringLengthUTF16(s string) int {
	units := 0
	for _, r := range s {
		units += utf16.RuneLen(r)
	}
	return units
}

// ByteOffsetToUTF16Uint32 is ByteOffsetToUTF16 clamped to uint32 for LSP positions
func ByteOffsetToUTF16Uint32(s string, byteOffset int) uint32 {
	result := ByteOffsetToUTF16(s, byteOffset)
	if result < 0 {
		return 0
	}
	if result > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(result)
}

// StringLengthUTF16Uint32 is StringLengthUTF16 clamped to uint32 for LSP positions
func StringLengthUTF16Uint32(s string) uint32 {
	result := StringLengthUTF16(s)
	if result < 0 {
		return 0
	}
	if result > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(result)
}
