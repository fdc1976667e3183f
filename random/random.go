package random

import (
	crand "crypto/rand"
	"math/big"
	"strings"
)

const (
	charset = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

	// upper is used for codes people read aloud or type, such as
	// certificate verification codes.
	upper = "0123456789ABCDEFGHJKLMNPQRSTUVWXYZ"
)

// StringSecure returns a random string of the given length drawn from
// crypto/rand.
func StringSecure(length int) (string, error) {
	return fromSet(charset, length)
}

// Code returns prefix followed by length random upper case characters.
func Code(prefix string, length int) (string, error) {
	s, err := fromSet(upper, length)
	if err != nil {
		return "", err
	}
	return prefix + s, nil
}

// Digits returns a random numeric string, used for barcode-like payloads.
func Digits(length int) (string, error) {
	return fromSet("0123456789", length)
}

func fromSet(set string, length int) (string, error) {
	var b strings.Builder
	b.Grow(length)

	l := big.NewInt(int64(len(set)))
	for i := 0; i < length; i++ {
		num, err := crand.Int(crand.Reader, l)
		if err != nil {
			return "", err
		}
		b.WriteByte(set[num.Int64()])
	}
	return b.String(), nil
}
