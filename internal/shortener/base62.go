package shortener

import "github.com/jxskiss/base62"

// Alphabet is the base62 digit set: digit 0 is '0', digit 61 is 'Z'.
const Alphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

var encoding = base62.NewEncoding(Alphabet)

// Encode returns the base62 representation of n, most significant digit first.
// Zero encodes to the empty string.
func Encode(n uint32) string {
	if n == 0 {
		return ""
	}

	return string(encoding.FormatUint(uint64(n)))
}
