// Package index keeps the fingerprints of committed records and answers
// hamming-distance similarity queries over them.
package index

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/luca-patrignani/helix/domain/fingerprint"
)

var ErrInvalidThreshold = errors.New("invalid similarity threshold")

// Match is a stored record and its distance to the query.
type Match struct {
	Index    int `json:"index"`
	Distance int `json:"distance"`
}

type entry struct {
	index int
	fp    fingerprint.Fingerprint
}

// Index is a denormalized copy of record fingerprints keyed by record index.
// Queries scan every entry.
type Index struct {
	mu      sync.RWMutex
	entries []entry
}

func New() *Index {
	return &Index{}
}

// Insert appends the fingerprint of the record at index i.
func (x *Index) Insert(i int, fp fingerprint.Fingerprint) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.entries = append(x.entries, entry{index: i, fp: fp})
}

// Len returns the number of stored fingerprints.
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.entries)
}

// Reset drops every stored fingerprint.
func (x *Index) Reset() {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.entries = nil
}

// QueryWithin returns every stored fingerprint within threshold bits of fp,
// closest first, ties by ascending record index. A threshold of 0 matches
// identical fingerprints only, which different sequences may share.
func (x *Index) QueryWithin(fp fingerprint.Fingerprint, threshold int) ([]Match, error) {
	if threshold < 0 || threshold > fingerprint.Bits {
		return nil, fmt.Errorf("%w: %d not in [0, %d]", ErrInvalidThreshold, threshold, fingerprint.Bits)
	}
	x.mu.RLock()
	defer x.mu.RUnlock()

	matches := []Match{}
	for _, e := range x.entries {
		if d := fingerprint.Distance(fp, e.fp); d <= threshold {
			matches = append(matches, Match{Index: e.index, Distance: d})
		}
	}
	sortMatches(matches)
	return matches, nil
}

// Nearest returns up to n stored fingerprints closest to fp, in the same
// order as QueryWithin.
func (x *Index) Nearest(fp fingerprint.Fingerprint, n int) []Match {
	if n <= 0 {
		return []Match{}
	}
	x.mu.RLock()
	matches := make([]Match, 0, len(x.entries))
	for _, e := range x.entries {
		matches = append(matches, Match{Index: e.index, Distance: fingerprint.Distance(fp, e.fp)})
	}
	x.mu.RUnlock()

	sortMatches(matches)
	if len(matches) > n {
		matches = matches[:n]
	}
	return matches
}

func sortMatches(m []Match) {
	sort.Slice(m, func(i, j int) bool {
		if m[i].Distance != m[j].Distance {
			return m[i].Distance < m[j].Distance
		}
		return m[i].Index < m[j].Index
	})
}
