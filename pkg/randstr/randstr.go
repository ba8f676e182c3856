package randstr

import (
	cryptorand "crypto/rand"
	"math/rand"
)

type Generator struct {
	letters []byte
}

func New(letters []byte) *Generator {
	return &Generator{letters: letters}
}

func (g Generator) GenerateRandomString(length int) string {
	b := make([]byte, length)
	for i := range b {
		b[i] = g.letters[rand.Intn(len(g.letters))]
	}

	return string(b)
}

// GenerateSecureToken draws from crypto/rand, for values that must not be
// guessable.
func (g Generator) GenerateSecureToken(length int) (string, error) {
	b := make([]byte, length)
	if _, err := cryptorand.Read(b); err != nil {
		return "", err
	}

	for i := range b {
		b[i] = g.letters[int(b[i])%len(g.letters)]
	}

	return string(b), nil
}
