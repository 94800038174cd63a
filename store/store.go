// Package store persists committed ledger records in a badger key-value
// database. Only committed records are written: pending submissions, raw
// sequences and submitter tokens never reach disk.
package store

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/dgraph-io/badger/v4"

	"github.com/luca-patrignani/helix/ledger"
)

const recordPrefix = "record/"

var (
	ErrCorruptValue = errors.New("corrupt stored record")
	ErrOutOfOrder   = errors.New("record out of order")
	ErrClosed       = errors.New("store is closed")
)

type Options struct {
	// Path is the badger directory. Ignored when InMemory is set.
	Path     string
	InMemory bool
	Logger   *slog.Logger
}

// Store is an append-only record log keyed by chain index.
type Store struct {
	mu     sync.Mutex
	db     *badger.DB
	count  int
	logger *slog.Logger
}

func Open(opts Options) (*Store, error) {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if !opts.InMemory && opts.Path == "" {
		return nil, errors.New("store path is required")
	}

	bopts := badger.DefaultOptions(opts.Path)
	if opts.InMemory {
		bopts = badger.DefaultOptions("").WithInMemory(true)
	}
	bopts.Logger = badgerLogger{opts.Logger}
	bopts.SyncWrites = true

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("failed to open store at %q: %w", opts.Path, err)
	}
	s := &Store{db: db, logger: opts.Logger}
	if s.count, err = s.countKeys(); err != nil {
		_ = db.Close()
		return nil, err
	}
	s.logger.Debug("store opened", "path", opts.Path, "in_memory", opts.InMemory, "records", s.count)
	return s, nil
}

func recordKey(i int) []byte {
	key := make([]byte, len(recordPrefix)+8)
	copy(key, recordPrefix)
	binary.BigEndian.PutUint64(key[len(recordPrefix):], uint64(i))
	return key
}

func keyIndex(key []byte) (int, bool) {
	if len(key) != len(recordPrefix)+8 {
		return 0, false
	}
	return int(binary.BigEndian.Uint64(key[len(recordPrefix):])), true
}

func (s *Store) countKeys() (int, error) {
	n := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(recordPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			n++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return n, nil
}

// Append writes records in a single transaction. Each record's index must
// continue the stored sequence.
func (s *Store) Append(records ...ledger.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return ErrClosed
	}

	for i, rec := range records {
		if rec.Index != s.count+i {
			return fmt.Errorf("%w: expected index %d, got %d", ErrOutOfOrder, s.count+i, rec.Index)
		}
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		for _, rec := range records {
			value, err := rec.CanonicalBytes()
			if err != nil {
				return fmt.Errorf("failed to encode record %d: %w", rec.Index, err)
			}
			if err := txn.Set(recordKey(rec.Index), value); err != nil {
				return fmt.Errorf("failed to write record %d: %w", rec.Index, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.count += len(records)
	return nil
}

// Load returns every stored record in index order. It does not validate the
// chain links; ledger.Ledger.Load does.
func (s *Store) Load() ([]ledger.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil, ErrClosed
	}

	records := make([]ledger.Record, 0, s.count)
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(recordPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			i, ok := keyIndex(item.Key())
			if !ok {
				return fmt.Errorf("%w: malformed key %q", ErrCorruptValue, item.Key())
			}
			var rec ledger.Record
			err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			})
			if err != nil {
				return fmt.Errorf("%w at key %d: %v", ErrCorruptValue, i, err)
			}
			if rec.Index != i || i != len(records) {
				return fmt.Errorf("%w: key %d holds record %d", ErrCorruptValue, i, rec.Index)
			}
			records = append(records, rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// Sync appends the records of l that the store does not hold yet and returns
// how many were written.
func (s *Store) Sync(l *ledger.Ledger) (int, error) {
	chain := l.Chain()
	have := s.Count()
	if have > len(chain) {
		return 0, fmt.Errorf("store holds %d records, ledger only %d", have, len(chain))
	}
	missing := chain[have:]
	if len(missing) == 0 {
		return 0, nil
	}
	if err := s.Append(missing...); err != nil {
		return 0, err
	}
	s.logger.Debug("store synced", "written", len(missing), "records", have+len(missing))
	return len(missing), nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Restore loads the records held by s into the empty ledger l.
func Restore(s *Store, l *ledger.Ledger) error {
	records, err := s.Load()
	if err != nil {
		return err
	}
	return l.Load(records)
}
