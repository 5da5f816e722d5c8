// Package xrand provides deterministic random generators and string helpers
// for experiment bookkeeping.
//
// Determinism is per-generator: a Config yields an explicit *rand.Rand passed
// to whatever needs it, instead of seeding a process-wide source. Two
// generators built from the same Config produce the same sequence.
package xrand

import (
	"crypto/sha256"
	"math/big"
	"math/rand/v2"

	"github.com/google/uuid"
)

const alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Config holds the seed of a deterministic generator.
type Config struct {
	Seed uint64
}

// NewRand returns a new generator seeded from the config. Generators built
// from equal configs produce identical sequences.
func (c Config) NewRand() *rand.Rand {
	return rand.New(rand.NewPCG(c.Seed, c.Seed))
}

// RandomString returns a string of length characters drawn from
// [a-zA-Z0-9] using rng.
func RandomString(rng *rand.Rand, length int) string {
	b := make([]byte, length)
	for i := range b {
		b[i] = alphabet[rng.IntN(len(alphabet))]
	}
	return string(b)
}

var base62Divisor = big.NewInt(int64(len(alphabet)))

// HashBase62 maps s to a stable base62 string of the given length: equal
// inputs always produce equal outputs. It hashes s with sha256 and expresses
// the digest in base62, truncated to length characters.
func HashBase62(s string, length int) string {
	digest := sha256.Sum256([]byte(s))
	num := new(big.Int).SetBytes(digest[:])
	remainder := new(big.Int)
	out := make([]byte, length)
	for i := range out {
		num.QuoRem(num, base62Divisor, remainder)
		out[i] = alphabet[remainder.Int64()]
	}
	return string(out)
}

// NewRunID returns a fresh unique identifier for an experiment run.
func NewRunID() string {
	return uuid.NewString()
}
