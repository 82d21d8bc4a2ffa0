// Package rng provides the outcome random source used by wager settlement.
package rng

import (
	"crypto/rand"
	"encoding/binary"
	"sync"
)

// Source yields uniform draws in [0, 1). Implementations must be safe for
// concurrent use.
type Source interface {
	Float64() float64
}

// Crypto draws from crypto/rand.
type Crypto struct{}

func NewCrypto() Crypto { return Crypto{} }

func (Crypto) Float64() float64 {
	var b [8]byte
	_, err := rand.Read(b[:])
	if err != nil {
		// crypto/rand.Read is documented to never return an error on supported platforms.
		panic("rng: crypto/rand: " + err.Error())
	}

	// 53 random bits -> [0, 1)
	return float64(binary.BigEndian.Uint64(b[:])>>11) / (1 << 53)
}

// Fixed always returns the same value.
type Fixed float64

func (f Fixed) Float64() float64 { return float64(f) }

// Sequence returns its values in order, repeating the last one once exhausted.
type Sequence struct {
	mu     sync.Mutex
	values []float64
	next   int
}

func NewSequence(values ...float64) *Sequence {
	if len(values) == 0 {
		values = []float64{0}
	}

	return &Sequence{values: values}
}

func (s *Sequence) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := s.values[s.next]
	if s.next < len(s.values)-1 {
		s.next++
	}

	return v
}
