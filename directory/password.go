package directory

import (
	"crypto/rand"
	"math/big"
	"strings"
)

// Character classes for temporary passwords.
const (
	upperChars  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	lowerChars  = "abcdefghijklmnopqrstuvwxyz"
	digitChars  = "0123456789"
	symbolChars = "!@#$%^&*()_+"

	passwordLength = 12
)

// NewTemporaryPassword generates a 12-character credential built from
// repeating groups of one uppercase letter, one lowercase letter, one digit
// and one symbol, so it always satisfies password policies that demand at
// least one character of each class.
func NewTemporaryPassword() string {
	var b strings.Builder
	b.Grow(passwordLength)
	for i := 0; i < passwordLength/4; i++ {
		b.WriteByte(randFrom(upperChars))
		b.WriteByte(randFrom(lowerChars))
		b.WriteByte(randFrom(digitChars))
		b.WriteByte(randFrom(symbolChars))
	}
	return b.String()
}

func randFrom(set string) byte {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(set))))
	if err != nil {
		// crypto/rand only fails if the platform's entropy source is broken.
		panic(err)
	}
	return set[n.Int64()]
}
