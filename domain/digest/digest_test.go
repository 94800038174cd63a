package digest

import (
	"crypto/sha256"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luca-patrignani/helix/domain/sequence"
)

func TestSumMatchesSHA256(t *testing.T) {
	e := New()
	for _, in := range []string{"", "ACTG", "user1", "a much longer input than one block of sha256 ........................................"} {
		assert.Equal(t, Digest(sha256.Sum256([]byte(in))), e.Sum([]byte(in)), in)
	}
}

func TestKnownDigests(t *testing.T) {
	e := New()
	assert.Equal(t, "E432B64B72068A1DCDDEA5622D599CC572F517865B5B918A0FAB0BADF78BAC72",
		e.Content(sequence.MustValidate("actg")).String())
	assert.Equal(t, "0A041B9462CAA4A31BAC3567E0B6E6FD9100787DB2AB433D96F6D178CABFCE90",
		e.Identity("user1\n").String())
}

func TestSumIsDeterministic(t *testing.T) {
	a, b := New(), New()
	in := []byte("ACGTNNNN")
	assert.Equal(t, a.Sum(in), a.Sum(in))
	assert.Equal(t, a.Sum(in), b.Sum(in))
	assert.NotEqual(t, a.Sum(in), a.Sum([]byte("ACGTNNNA")))
}

func TestIdentityIgnoresSurroundingWhitespace(t *testing.T) {
	e := New()
	assert.Equal(t, e.Identity("user1"), e.Identity("  user1\r\n"))
	assert.NotEqual(t, e.Identity("user1"), e.Identity("user2"))
}

func TestGenesisIsReserved(t *testing.T) {
	e := New()
	assert.True(t, Genesis.IsGenesis())
	assert.False(t, e.Sum(nil).IsGenesis())
	assert.False(t, e.Sum(make([]byte, Size)).IsGenesis())
	assert.Equal(t, "0000000000000000000000000000000000000000000000000000000000000000", Genesis.String())
}

func TestParseRoundTrip(t *testing.T) {
	d := New().Sum([]byte("ACTG"))
	parsed, err := Parse(d.String())
	require.NoError(t, err)
	assert.Equal(t, d, parsed)

	lower, err := Parse("e432b64b72068a1dcddea5622d599cc572f517865b5b918a0fab0badf78bac72")
	require.NoError(t, err)
	assert.Equal(t, d, lower)
	assert.Equal(t, "E432B64B7206", d.Short())
}

func TestParseRejectsBadInput(t *testing.T) {
	for _, in := range []string{"", "zz", "ABCD", "E432B64B72068A1DCDDEA5622D599CC572F517865B5B918A0FAB0BADF78BAC7200"} {
		_, err := Parse(in)
		assert.ErrorIs(t, err, ErrInvalidDigest, in)
	}
}

func TestDigestJSON(t *testing.T) {
	d := New().Sum([]byte("ACTG"))
	b, err := json.Marshal(struct {
		D Digest `json:"d"`
	}{d})
	require.NoError(t, err)
	assert.JSONEq(t, `{"d":"E432B64B72068A1DCDDEA5622D599CC572F517865B5B918A0FAB0BADF78BAC72"}`, string(b))

	var out struct {
		D Digest `json:"d"`
	}
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Equal(t, d, out.D)

	assert.Error(t, json.Unmarshal([]byte(`{"d":"nothex"}`), &out))
}

func TestNewWithSuite(t *testing.T) {
	e, err := NewWithSuite(DefaultSuite)
	require.NoError(t, err)
	assert.Equal(t, New().Sum([]byte("x")), e.Sum([]byte("x")))
	assert.Equal(t, New().Suite(), e.Suite())

	_, err = NewWithSuite("no-such-suite")
	assert.ErrorIs(t, err, ErrUnknownSuite)
}
