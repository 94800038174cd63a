// Package fingerprint reduces a validated sequence to a 64-bit perceptual
// fingerprint whose hamming distance tracks sequence similarity.
//
// The sequence is cut into overlapping windows of WindowSize bases. Every
// window is hashed with xxHash64 and counted in one of 64 buckets picked by
// the low six bits of its hash. The fingerprint sets the bits of the Bits/2
// fullest buckets, ties going to the lower bucket, leaving out empty buckets.
//
// Adding or removing one window changes a single count by one, which swaps at
// most one bucket in or out of the top half: at most 2 bits move. Appending a
// base therefore moves at most 2 bits, and a point substitution, which
// replaces at most WindowSize windows, moves a few.
//
// Long unrelated sequences differ in about half of the bits. A sequence of n
// bases has at most n-WindowSize+1 bits set, so short sequences are sparse:
// two unrelated 10-base sequences are at most 6 bits apart.
package fingerprint

import (
	"errors"
	"fmt"
	"math/bits"
	"sort"
	"strconv"

	"github.com/cespare/xxhash/v2"

	"github.com/luca-patrignani/helix/domain/sequence"
)

const (
	// Bits is the fingerprint width.
	Bits = 64
	// WindowSize is the k-mer length. Shorter sequences are hashed as a
	// single window.
	WindowSize = 8
)

var ErrSequenceTooShort = errors.New("sequence too short to fingerprint")

// Fingerprint is a fixed-width bit vector. It is not reversible and not a
// cryptographic commitment.
type Fingerprint uint64

// Of computes the fingerprint of seq.
func Of(seq sequence.Sequence) (Fingerprint, error) {
	s := string(seq)
	if len(s) == 0 {
		return 0, ErrSequenceTooShort
	}

	var counts [Bits]int
	windows := max(len(s)-WindowSize+1, 1)
	for i := 0; i < windows; i++ {
		counts[bucket(s[i:min(i+WindowSize, len(s))])]++
	}

	order := make([]int, Bits)
	for j := range order {
		order[j] = j
	}
	sort.Slice(order, func(a, b int) bool {
		ca, cb := counts[order[a]], counts[order[b]]
		if ca != cb {
			return ca > cb
		}
		return order[a] < order[b]
	})

	var fp Fingerprint
	for _, j := range order[:Bits/2] {
		if counts[j] > 0 {
			fp |= 1 << uint(j)
		}
	}
	return fp, nil
}

// MustOf is like Of but panics on error.
func MustOf(seq sequence.Sequence) Fingerprint {
	fp, err := Of(seq)
	if err != nil {
		panic(err)
	}
	return fp
}

func bucket(window string) int {
	return int(xxhash.Sum64String(window) & (Bits - 1))
}

// Distance is the number of differing bits between a and b.
func Distance(a, b Fingerprint) int {
	return bits.OnesCount64(uint64(a ^ b))
}

// Distance is the number of differing bits between f and other.
func (f Fingerprint) Distance(other Fingerprint) int {
	return Distance(f, other)
}

// String returns 16 lower-case hex digits.
func (f Fingerprint) String() string {
	return fmt.Sprintf("%016x", uint64(f))
}

func (f Fingerprint) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

func (f *Fingerprint) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// Parse decodes the hex form produced by String.
func Parse(s string) (Fingerprint, error) {
	if len(s) != 16 {
		return 0, fmt.Errorf("invalid fingerprint %q: expected 16 hex digits", s)
	}
	v, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid fingerprint %q: %w", s, err)
	}
	return Fingerprint(v), nil
}
