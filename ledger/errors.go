package ledger

import (
	"errors"
	"fmt"

	"github.com/luca-patrignani/helix/domain/digest"
)

var (
	ErrNoPendingSubmissions = errors.New("no pending submissions")
	ErrDuplicateContent     = errors.New("duplicate content")
	ErrCorrupt              = errors.New("corrupt chain")
	ErrNotEmpty             = errors.New("ledger is not empty")
)

// DuplicateContentError is returned by Commit when the submission's content
// digest is already on the chain.
type DuplicateContentError struct {
	ContentDigest digest.Digest
	ExistingIndex int
}

func (e *DuplicateContentError) Error() string {
	return fmt.Sprintf("duplicate content %s already committed at index %d", e.ContentDigest.Short(), e.ExistingIndex)
}

func (e *DuplicateContentError) Unwrap() error {
	return ErrDuplicateContent
}

// CorruptError reports the first record whose stored data disagrees with the
// chain.
type CorruptError struct {
	Index  int
	Reason string
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("corrupt chain at index %d: %s", e.Index, e.Reason)
}

func (e *CorruptError) Unwrap() error {
	return ErrCorrupt
}
