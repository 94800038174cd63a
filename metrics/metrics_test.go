package metrics

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luca-patrignani/helix/domain/fingerprint"
	"github.com/luca-patrignani/helix/domain/sequence"
	"github.com/luca-patrignani/helix/ledger"
)

func delta(t *testing.T, collector prometheus.Collector, observe func()) float64 {
	t.Helper()

	before := testutil.ToFloat64(collector)
	observe()
	after := testutil.ToFloat64(collector)
	return after - before
}

func TestStatus(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, StatusSuccess},
		{&sequence.InvalidAlphabetError{Position: 4, Char: 'X'}, StatusInvalid},
		{fmt.Errorf("submit: %w", sequence.ErrEmptySequence), StatusInvalid},
		{fingerprint.ErrSequenceTooShort, StatusInvalid},
		{&ledger.DuplicateContentError{ExistingIndex: 0}, StatusDuplicate},
		{ledger.ErrNoPendingSubmissions, StatusEmpty},
		{errors.New("disk on fire"), StatusError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Status(tt.err), "%v", tt.err)
	}
}

// TestLedgerObserverCounts drives a real ledger and checks each counter.
func TestLedgerObserverCounts(t *testing.T) {
	l := ledger.New(ledger.WithObserver(NewLedger()))

	inc := delta(t, ledgerSubmissionsTotal.WithLabelValues(StatusSuccess), func() {
		_, err := l.Submit("ACTG", "user1")
		require.NoError(t, err)
	})
	assert.Equal(t, 1.0, inc)

	inc = delta(t, ledgerSubmissionsTotal.WithLabelValues(StatusInvalid), func() {
		_, _ = l.Submit("ACTX", "user1")
	})
	assert.Equal(t, 1.0, inc)

	inc = delta(t, ledgerCommitsTotal.WithLabelValues(StatusSuccess), func() {
		_, err := l.Commit()
		require.NoError(t, err)
	})
	assert.Equal(t, 1.0, inc)

	_, err := l.Submit("ACTG", "user2")
	require.NoError(t, err)
	inc = delta(t, ledgerCommitsTotal.WithLabelValues(StatusDuplicate), func() {
		_, _ = l.Commit()
	})
	assert.Equal(t, 1.0, inc)

	inc = delta(t, ledgerCommitsTotal.WithLabelValues(StatusEmpty), func() {
		_, _ = l.Commit()
	})
	assert.Equal(t, 1.0, inc)
}

func TestObserveStore(t *testing.T) {
	start := time.Now().Add(-10 * time.Millisecond)
	inc := delta(t, storeOperationsTotal.WithLabelValues("sync", StatusError), func() {
		ObserveStore("sync", errors.New("boom"), start)
	})
	assert.Equal(t, 1.0, inc)

	inc = delta(t, storeOperationsTotal.WithLabelValues("load", StatusSuccess), func() {
		ObserveStore("load", nil, start)
	})
	assert.Equal(t, 1.0, inc)
}

func TestServerServesRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "test_total", Help: "test"})
	reg.MustRegister(c)
	c.Add(3)

	s, err := NewServer(WithAddr("127.0.0.1:0"), WithPath("/scrape"), WithGatherer(reg))
	require.NoError(t, err)
	defer s.Close()

	resp, err := http.Get(s.URL())
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "helix_test_total 3")

	missing, err := http.Get("http://" + s.Addr() + "/metrics")
	require.NoError(t, err)
	missing.Body.Close()
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
}

func TestServerClose(t *testing.T) {
	s, err := NewServer(WithAddr("127.0.0.1:0"))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = http.Get(s.URL())
	assert.Error(t, err)
}

func TestServerAddrInUse(t *testing.T) {
	s, err := NewServer(WithAddr("127.0.0.1:0"))
	require.NoError(t, err)
	defer s.Close()

	_, err = NewServer(WithAddr(s.Addr()))
	assert.Error(t, err)
}
