package ledger

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/luca-patrignani/helix/domain/digest"
	"github.com/luca-patrignani/helix/domain/fingerprint"
	"github.com/luca-patrignani/helix/domain/sequence"
	"github.com/luca-patrignani/helix/index"
)

// Ledger maintains the committed chain and the queue of pending submissions.
// A single RWMutex covers the chain, the queue and the fingerprint index:
// mutations take the write lock, lookups and validation the read lock.
type Ledger struct {
	mu         sync.RWMutex
	records    []Record
	pending    []PendingSubmission
	byContent  map[digest.Digest]int
	byIdentity map[digest.Digest][]int

	index    *index.Index
	engine   *digest.Engine
	logger   *slog.Logger
	observer Observer
}

type Option func(*Ledger)

func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) {
		l.logger = logger
	}
}

func WithDigestEngine(e *digest.Engine) Option {
	return func(l *Ledger) {
		l.engine = e
	}
}

func WithObserver(o Observer) Option {
	return func(l *Ledger) {
		l.observer = o
	}
}

// WithIndex makes the ledger feed an existing index. The index should be
// empty and must not be written to by anything else.
func WithIndex(x *index.Index) Option {
	return func(l *Ledger) {
		l.index = x
	}
}

// New creates an empty ledger. The first committed record will link to
// digest.Genesis.
func New(opts ...Option) *Ledger {
	l := &Ledger{
		records:    make([]Record, 0),
		byContent:  make(map[digest.Digest]int),
		byIdentity: make(map[digest.Digest][]int),
		index:      index.New(),
		engine:     digest.New(),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		observer:   nopObserver{},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Submit validates raw, digests it and the submitter token, and queues the
// result for the next Commit. Duplicates are not checked here: pending
// submissions are only ordered against the chain when they are committed.
func (l *Ledger) Submit(raw, token string) (PendingSubmission, error) {
	seq, err := sequence.Validate(raw)
	if err != nil {
		l.observer.ObserveSubmit(err)
		return PendingSubmission{}, fmt.Errorf("submit: %w", err)
	}
	sub := PendingSubmission{
		Sequence:       seq,
		ContentDigest:  l.engine.Content(seq),
		IdentityDigest: l.engine.Identity(token),
	}

	l.mu.Lock()
	l.pending = append(l.pending, sub)
	queued := len(l.pending)
	l.mu.Unlock()

	l.observer.ObserveSubmit(nil)
	l.logger.Debug("submission queued", "content", sub.ContentDigest.Short(), "pending", queued)
	return sub, nil
}

// Commit takes the oldest pending submission and appends it to the chain. The
// submission is consumed whether or not it is committed; a duplicate of
// already committed content is discarded with ErrDuplicateContent.
func (l *Ledger) Commit() (Record, error) {
	l.mu.Lock()
	rec, err := l.commit()
	l.mu.Unlock()

	l.observer.ObserveCommit(err)
	switch {
	case err == nil:
		l.logger.Debug("record committed", "index", rec.Index, "content", rec.ContentDigest.Short(), "fingerprint", rec.Fingerprint.String())
	case errors.Is(err, ErrNoPendingSubmissions):
	default:
		l.logger.Info("submission rejected", "error", err)
	}
	return rec, err
}

func (l *Ledger) commit() (Record, error) {
	if len(l.pending) == 0 {
		return Record{}, ErrNoPendingSubmissions
	}
	sub := l.pending[0]
	l.pending[0] = PendingSubmission{}
	l.pending = l.pending[1:]

	if existing, ok := l.byContent[sub.ContentDigest]; ok {
		return Record{}, &DuplicateContentError{ContentDigest: sub.ContentDigest, ExistingIndex: existing}
	}

	fp, err := fingerprint.Of(sub.Sequence)
	if err != nil {
		return Record{}, fmt.Errorf("commit: %w", err)
	}

	prev := digest.Genesis
	if n := len(l.records); n > 0 {
		prev, err = l.calculateHash(l.records[n-1])
		if err != nil {
			return Record{}, fmt.Errorf("failed to calculate previous record digest: %w", err)
		}
	}

	rec := Record{
		Index:          len(l.records),
		PrevDigest:     prev,
		IdentityDigest: sub.IdentityDigest,
		ContentDigest:  sub.ContentDigest,
		Fingerprint:    fp,
	}
	l.appendRecord(rec)
	return rec, nil
}

func (l *Ledger) appendRecord(rec Record) {
	l.records = append(l.records, rec)
	l.byContent[rec.ContentDigest] = rec.Index
	l.byIdentity[rec.IdentityDigest] = append(l.byIdentity[rec.IdentityDigest], rec.Index)
	l.index.Insert(rec.Index, rec.Fingerprint)
}

// ValidateChain walks the chain from the oldest record forward, recomputing
// every link. It returns nil or a *CorruptError for the first record whose
// PrevDigest, index or content uniqueness does not hold.
func (l *Ledger) ValidateChain() error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.validate(l.records)
}

func (l *Ledger) validate(records []Record) error {
	seen := make(map[digest.Digest]struct{}, len(records))
	for i, current := range records {
		if current.Index != i {
			return &CorruptError{Index: i, Reason: fmt.Sprintf("invalid index: expected %d, got %d", i, current.Index)}
		}

		expected := digest.Genesis
		if i > 0 {
			var err error
			expected, err = l.calculateHash(records[i-1])
			if err != nil {
				return &CorruptError{Index: i, Reason: fmt.Sprintf("failed to calculate hash: %v", err)}
			}
		}
		if current.PrevDigest != expected {
			return &CorruptError{Index: i, Reason: fmt.Sprintf("invalid prev digest: expected %s, got %s", expected.Short(), current.PrevDigest.Short())}
		}

		if current.ContentDigest.IsGenesis() {
			return &CorruptError{Index: i, Reason: "content digest is the genesis sentinel"}
		}
		if _, dup := seen[current.ContentDigest]; dup {
			return &CorruptError{Index: i, Reason: "duplicate content digest " + current.ContentDigest.Short()}
		}
		seen[current.ContentDigest] = struct{}{}
	}
	return nil
}

// calculateHash digests the canonical serialization of a record.
func (l *Ledger) calculateHash(r Record) (digest.Digest, error) {
	b, err := r.CanonicalBytes()
	if err != nil {
		return digest.Digest{}, err
	}
	return l.engine.Sum(b), nil
}

// Load adopts a previously persisted chain. The chain is validated first and
// the ledger is left untouched if it is corrupt. Only an empty ledger can be
// loaded into.
func (l *Ledger) Load(records []Record) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.records) > 0 || len(l.pending) > 0 {
		return ErrNotEmpty
	}
	if err := l.validate(records); err != nil {
		return fmt.Errorf("load: %w", err)
	}
	l.index.Reset()
	for _, rec := range records {
		l.appendRecord(rec)
	}
	l.logger.Debug("chain loaded", "records", len(records))
	return nil
}

// FindByContentDigest returns the record holding the given content digest.
func (l *Ledger) FindByContentDigest(d digest.Digest) (Record, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	i, ok := l.byContent[d]
	if !ok {
		return Record{}, false
	}
	return l.records[i], true
}

// FindBySequence validates and digests raw, then looks it up.
func (l *Ledger) FindBySequence(raw string) (Record, bool, error) {
	seq, err := sequence.Validate(raw)
	if err != nil {
		return Record{}, false, err
	}
	rec, ok := l.FindByContentDigest(l.engine.Content(seq))
	return rec, ok, nil
}

// FindByIdentityDigest returns every record of one anonymized submitter in
// chain order.
func (l *Ledger) FindByIdentityDigest(d digest.Digest) []Record {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Record, 0, len(l.byIdentity[d]))
	for _, i := range l.byIdentity[d] {
		out = append(out, l.records[i])
	}
	return out
}

// FindByIdentity digests token and looks up its records.
func (l *Ledger) FindByIdentity(token string) []Record {
	return l.FindByIdentityDigest(l.engine.Identity(token))
}

// Similar returns the committed records whose fingerprint is within
// threshold bits of fp.
func (l *Ledger) Similar(fp fingerprint.Fingerprint, threshold int) ([]index.Match, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.index.QueryWithin(fp, threshold)
}

// SimilarTo fingerprints raw and queries the index with it.
func (l *Ledger) SimilarTo(raw string, threshold int) ([]index.Match, error) {
	seq, err := sequence.Validate(raw)
	if err != nil {
		return nil, err
	}
	fp, err := fingerprint.Of(seq)
	if err != nil {
		return nil, err
	}
	return l.Similar(fp, threshold)
}

// Nearest returns the n committed records closest to fp.
func (l *Ledger) Nearest(fp fingerprint.Fingerprint, n int) []index.Match {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.index.Nearest(fp, n)
}

// Chain returns a copy of the committed records.
func (l *Ledger) Chain() []Record {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Record, len(l.records))
	copy(out, l.records)
	return out
}

// GetByIndex retrieves a record by its position in the chain.
func (l *Ledger) GetByIndex(i int) (Record, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if i < 0 || i >= len(l.records) {
		return Record{}, fmt.Errorf("index %d out of range", i)
	}
	return l.records[i], nil
}

// Head returns the most recently committed record.
func (l *Ledger) Head() (Record, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if len(l.records) == 0 {
		return Record{}, false
	}
	return l.records[len(l.records)-1], true
}

func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.records)
}

// Pending returns the number of queued submissions.
func (l *Ledger) Pending() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.pending)
}

// DropPending discards every queued submission and returns how many there
// were.
func (l *Ledger) DropPending() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := len(l.pending)
	l.pending = nil
	return n
}

// Engine returns the digest engine the ledger hashes with.
func (l *Ledger) Engine() *digest.Engine {
	return l.engine
}
