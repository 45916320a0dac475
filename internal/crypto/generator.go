package crypto

import (
	"crypto/rand"
	"io"
	"math/big"
)

const (
	lowercaseChars = "abcdefghijklmnopqrstuvwxyz"
	uppercaseChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	numberChars    = "0123456789"

	// SymbolChars is the punctuation appended to the alphabet when symbols are enabled.
	SymbolChars = "@#$%&_!*+~^[]{}-`"

	MinLength     = 5
	MaxLength     = 50
	DefaultLength = (MinLength + MaxLength) / 2
)

// GeneratorOptions is the user-facing generation config.
type GeneratorOptions struct {
	Length  int  `json:"length" yaml:"length"`
	Numbers bool `json:"numbers" yaml:"numbers"`
	Symbols bool `json:"symbols" yaml:"symbols"`
}

// DefaultOptions returns the startup config: midpoint length, letters only.
func DefaultOptions() GeneratorOptions {
	return GeneratorOptions{Length: DefaultLength}
}

// Normalize returns a copy of opts with Length clamped into [MinLength, MaxLength].
func (o GeneratorOptions) Normalize() GeneratorOptions {
	o.Length = ClampLength(o.Length)
	return o
}

// ClampLength pulls n to the nearest bound when it falls outside the allowed range.
func ClampLength(n int) int {
	if n < MinLength {
		return MinLength
	}
	if n > MaxLength {
		return MaxLength
	}
	return n
}

// Alphabet returns the ordered character pool for the given flags.
// Letters are always present so the result is never empty.
func Alphabet(numbers, symbols bool) string {
	pool := lowercaseChars + uppercaseChars
	if numbers {
		pool += numberChars
	}
	if symbols {
		pool += SymbolChars
	}
	return pool
}

// Generator draws passwords from a random source.
type Generator struct {
	rand io.Reader
}

// NewGenerator creates a Generator reading from r. A nil r means crypto/rand.Reader.
func NewGenerator(r io.Reader) *Generator {
	if r == nil {
		r = rand.Reader
	}
	return &Generator{rand: r}
}

var defaultGenerator = NewGenerator(nil)

// Generate creates a password using the default crypto/rand backed generator.
func Generate(opts GeneratorOptions) (string, error) {
	return defaultGenerator.Generate(opts)
}

// Generate creates a password of exactly opts.Length characters (after clamping),
// each drawn independently and uniformly from the alphabet built from opts.
func (g *Generator) Generate(opts GeneratorOptions) (string, error) {
	opts = opts.Normalize()
	pool := Alphabet(opts.Numbers, opts.Symbols)

	result := make([]byte, opts.Length)
	for i := range result {
		ch, err := g.randChar(pool)
		if err != nil {
			return "", err
		}
		result[i] = ch
	}

	return string(result), nil
}

// randChar picks a character from charset with a uniform draw in [0, len(charset)).
func (g *Generator) randChar(charset string) (byte, error) {
	n, err := rand.Int(g.rand, big.NewInt(int64(len(charset))))
	if err != nil {
		return 0, err
	}
	return charset[n.Int64()], nil
}
