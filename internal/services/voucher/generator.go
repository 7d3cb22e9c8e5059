package voucher

import (
	"crypto/rand"
	"math/big"
)

// DefaultCodeLength is the number of digits in a voucher code.
const DefaultCodeLength = 12

var ten = big.NewInt(10)

// Generator produces fixed-length numeric voucher codes. Codes are
// independent across calls; global uniqueness is enforced by the
// issuer against the store, not here.
type Generator struct {
	length int
}

// NewGenerator creates a code generator for codes of the given length.
func NewGenerator(length int) *Generator {
	if length <= 0 {
		length = DefaultCodeLength
	}
	return &Generator{length: length}
}

// Generate returns a new random decimal code.
func (g *Generator) Generate() (string, error) {
	buf := make([]byte, g.length)
	for i := range buf {
		n, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", err
		}
		buf[i] = byte('0' + n.Int64())
	}
	return string(buf), nil
}
