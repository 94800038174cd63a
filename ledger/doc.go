// Package ledger implements the append-only provenance ledger: an ordered chain
// of records, each linking to the digest of its predecessor, fed through a FIFO
// queue of pending submissions.
//
// # Core Components
//
// Ledger: Owns the committed chain and the pending queue. Submissions are
// validated and digested on Submit, checked for duplicate content and linked
// into the chain on Commit.
//
// Record: A committed entry holding the previous record's digest, the
// anonymized submitter digest, the content digest and the perceptual
// fingerprint of the sequence. Raw sequences and submitter tokens are never
// stored in a record.
//
// # Security Properties
//
// The chain provides:
//   - Append-only history: records are never mutated, removed or reordered
//   - Tamper detection: ValidateChain recomputes every link from the oldest
//     record forward and reports the first broken one
//   - Uniqueness: a content digest appears at most once in the chain
//
// # Usage
//
// Create a ledger with New, optionally Load a previously persisted chain, then
// alternate Submit and Commit. Similar answers approximate lookups through
// the fingerprint index the ledger maintains.
package ledger
