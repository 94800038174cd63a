// Package metrics exposes the ledger's prometheus collectors and the HTTP
// server that publishes them.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/luca-patrignani/helix/domain/fingerprint"
	"github.com/luca-patrignani/helix/domain/sequence"
	"github.com/luca-patrignani/helix/ledger"
)

const namespace = "helix"

const (
	StatusSuccess   = "success"
	StatusInvalid   = "invalid"
	StatusDuplicate = "duplicate"
	StatusEmpty     = "empty"
	StatusError     = "error"
)

var (
	ledgerSubmissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "ledger",
		Name:      "submissions_total",
		Help:      "Count of sequence submissions by outcome.",
	}, []string{"status"})

	ledgerCommitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "ledger",
		Name:      "commits_total",
		Help:      "Count of commit attempts by outcome.",
	}, []string{"status"})
)

// Status maps a ledger error to the status label it is counted under.
func Status(err error) string {
	switch {
	case err == nil:
		return StatusSuccess
	case errors.Is(err, sequence.ErrInvalidAlphabet), errors.Is(err, fingerprint.ErrSequenceTooShort):
		return StatusInvalid
	case errors.Is(err, ledger.ErrDuplicateContent):
		return StatusDuplicate
	case errors.Is(err, ledger.ErrNoPendingSubmissions):
		return StatusEmpty
	default:
		return StatusError
	}
}

// Ledger implements ledger.Observer on the package counters.
type Ledger struct{}

var _ ledger.Observer = Ledger{}

func NewLedger() Ledger {
	return Ledger{}
}

func (Ledger) ObserveSubmit(err error) {
	ledgerSubmissionsTotal.WithLabelValues(Status(err)).Inc()
}

func (Ledger) ObserveCommit(err error) {
	ledgerCommitsTotal.WithLabelValues(Status(err)).Inc()
}
