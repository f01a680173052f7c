package enhance

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
)

// RandomSource abstracts the uniform draw so simulations can swap in a
// reproducible stream.
type RandomSource interface {
	Float64() float64 // [0, 1)
}

// crypto random: default when no seed is given
type cryptoRNG struct{}

func (cryptoRNG) Float64() float64 {
	// Read 53 random bits => [0, 1)
	var buf [8]byte
	if _, err := cryptoRand.Read(buf[:]); err != nil {
		// back to math/rand/v2
		return rand.Float64()
	}

	u := binary.BigEndian.Uint64(buf[:]) >> 11 // 53 bits
	return float64(u) / (1 << 53)
}

func DefaultRNG() RandomSource { return cryptoRNG{} }

// Replicable RNG for Monte Carlo
type seededRNG struct{ r *rand.Rand }

func NewSeededRNG(seed uint64) RandomSource {
	return &seededRNG{r: rand.New(rand.NewPCG(seed, 0))}
}

// NewRunRNG derives an independent stream for run index i of a batch.
// Every run owns its stream, so batch results do not depend on how many
// workers executed them.
func NewRunRNG(seed, run uint64) RandomSource {
	return &seededRNG{r: rand.New(rand.NewPCG(seed, run))}
}

func (s *seededRNG) Float64() float64 { return s.r.Float64() }

// RandomSeed produces a crypto-derived base seed for unseeded batches.
func RandomSeed() uint64 {
	var buf [8]byte
	if _, err := cryptoRand.Read(buf[:]); err != nil {
		return rand.Uint64()
	}
	return binary.BigEndian.Uint64(buf[:])
}
