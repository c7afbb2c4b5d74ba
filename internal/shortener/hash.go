package shortener

import "unicode/utf16"

// HashCode computes the 32-bit polynomial string hash h = 31*h + c over the
// UTF-16 code units of s. Overflow wraps, so the result matches the
// conventional string hash code for the same character sequence.
func HashCode(s string) int32 {
	var h int32

	for _, unit := range utf16.Encode([]rune(s)) {
		h = 31*h + int32(unit)
	}

	return h
}

// Magnitude returns the absolute value of h as an unsigned integer.
// math.MinInt32 maps to 2147483648 instead of overflowing.
func Magnitude(h int32) uint32 {
	if h < 0 {
		return uint32(-int64(h))
	}

	return uint32(h)
}
