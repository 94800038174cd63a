// Package digest computes the one-way digests the ledger is built on: content
// digests of sequences, anonymized identity digests of submitter tokens, and
// the chain-linking digest of a record's canonical bytes.
package digest

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"go.dedis.ch/kyber/v4/suites"

	"github.com/luca-patrignani/helix/domain/sequence"
)

// Size is the width of a digest in bytes.
const Size = 32

// DefaultSuite is the kyber suite whose hash factory backs the default engine.
const DefaultSuite = "Ed25519"

var (
	ErrInvalidDigest = errors.New("invalid digest")
	ErrUnknownSuite  = errors.New("unknown digest suite")
)

// Digest is a fixed-width SHA-256 output.
type Digest [Size]byte

// Genesis is the reserved previous digest of the first record. It is the
// all-zero value and is not the digest of any data.
var Genesis = Digest{}

// IsGenesis reports whether d is the genesis sentinel.
func (d Digest) IsGenesis() bool {
	return d == Genesis
}

// String returns the upper-case hex encoding.
func (d Digest) String() string {
	return strings.ToUpper(hex.EncodeToString(d[:]))
}

// Short returns the first 12 hex digits, for display.
func (d Digest) Short() string {
	return d.String()[:12]
}

func (d Digest) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Digest) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Parse decodes a hex digest in either case.
func Parse(s string) (Digest, error) {
	var d Digest
	b, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return d, fmt.Errorf("%w: %v", ErrInvalidDigest, err)
	}
	if len(b) != Size {
		return d, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidDigest, Size, len(b))
	}
	copy(d[:], b)
	return d, nil
}

// Engine hashes bytes with the hash factory of a kyber suite.
type Engine struct {
	suite suites.Suite
}

// New returns the engine backed by DefaultSuite.
func New() *Engine {
	return &Engine{suite: suites.MustFind(DefaultSuite)}
}

// NewWithSuite returns an engine backed by the named kyber suite. The suite's
// hash must be exactly Size bytes wide.
func NewWithSuite(name string) (*Engine, error) {
	s, err := suites.Find(name)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrUnknownSuite, name, err)
	}
	if size := s.Hash().Size(); size != Size {
		return nil, fmt.Errorf("%w %q: hash is %d bytes, need %d", ErrUnknownSuite, name, size, Size)
	}
	return &Engine{suite: s}, nil
}

// Suite returns the name of the backing suite.
func (e *Engine) Suite() string {
	return e.suite.String()
}

// Sum digests b. Identical input always yields an identical digest.
func (e *Engine) Sum(b []byte) Digest {
	h := e.suite.Hash()
	h.Write(b)
	var d Digest
	copy(d[:], h.Sum(nil))
	return d
}

// Content digests the normalized bytes of a validated sequence.
func (e *Engine) Content(seq sequence.Sequence) Digest {
	return e.Sum(seq.Bytes())
}

// Identity anonymizes a submitter token. Surrounding whitespace is ignored so
// that a token typed with a trailing newline maps to the same identity.
func (e *Engine) Identity(token string) Digest {
	return e.Sum([]byte(strings.TrimSpace(token)))
}
