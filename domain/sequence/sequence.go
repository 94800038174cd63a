package sequence

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidAlphabet is matched by every alphabet failure, including
	// ErrEmptySequence.
	ErrInvalidAlphabet = errors.New("invalid nucleotide alphabet")
	ErrEmptySequence   = fmt.Errorf("%w: empty sequence", ErrInvalidAlphabet)
)

// InvalidAlphabetError reports the first character outside the accepted set.
// Position is 1-based and counted after surrounding whitespace is trimmed.
type InvalidAlphabetError struct {
	Position int
	Char     rune
}

func (e *InvalidAlphabetError) Error() string {
	return fmt.Sprintf("invalid base %q at %d; allowed: %s", e.Char, e.Position, strings.Join(strings.Split(Alphabet, ""), " "))
}

func (e *InvalidAlphabetError) Unwrap() error {
	return ErrInvalidAlphabet
}

// Sequence is an upper-case nucleotide sequence as returned by Validate.
type Sequence string

// Validate returns the normalized sequence or an error if raw is empty or
// contains a character outside the IUPAC alphabet.
func Validate(raw string) (Sequence, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", ErrEmptySequence
	}
	out := make([]byte, 0, len(s))
	pos := 0
	for _, r := range s {
		pos++
		if r > 'z' || !Accepts(byte(r)) {
			return "", &InvalidAlphabetError{Position: pos, Char: r}
		}
		out = append(out, upper(byte(r)))
	}
	return Sequence(out), nil
}

// MustValidate is like Validate but panics on error. It is meant for
// constants and tests.
func MustValidate(raw string) Sequence {
	s, err := Validate(raw)
	if err != nil {
		panic(err)
	}
	return s
}

// Bytes returns the normalized bytes that are digested and fingerprinted.
func (s Sequence) Bytes() []byte {
	return []byte(s)
}

func (s Sequence) Len() int {
	return len(s)
}

// Ambiguous counts the codes that stand for more than one base, plus gaps.
func (s Sequence) Ambiguous() int {
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '-' || IsAmbiguous(s[i]) {
			n++
		}
	}
	return n
}
