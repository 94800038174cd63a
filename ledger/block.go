package ledger

import (
	"encoding/json"

	"github.com/luca-patrignani/helix/domain/digest"
	"github.com/luca-patrignani/helix/domain/fingerprint"
	"github.com/luca-patrignani/helix/domain/sequence"
)

// Record is a committed entry of the chain. The JSON field order is the
// canonical serialization that the next record's PrevDigest is computed over.
type Record struct {
	Index          int                     `json:"index"`
	PrevDigest     digest.Digest           `json:"prev_digest"`
	IdentityDigest digest.Digest           `json:"identity_digest"`
	ContentDigest  digest.Digest           `json:"content_digest"`
	Fingerprint    fingerprint.Fingerprint `json:"fingerprint"`
}

// CanonicalBytes returns the bytes a successor links to.
func (r Record) CanonicalBytes() ([]byte, error) {
	return json.Marshal(r)
}

// PendingSubmission is a validated sequence waiting for the next Commit. Its
// digests are computed at submission time; the submitter token itself is not
// kept.
type PendingSubmission struct {
	Sequence       sequence.Sequence
	ContentDigest  digest.Digest
	IdentityDigest digest.Digest
}
