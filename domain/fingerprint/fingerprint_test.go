package fingerprint

import (
	"encoding/json"
	"math/bits"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luca-patrignani/helix/domain/sequence"
)

func randomSequence(r *rand.Rand, n int) sequence.Sequence {
	const bases = "ACGT"
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = bases[r.Intn(len(bases))]
	}
	return sequence.MustValidate(string(buf))
}

func substitute(r *rand.Rand, s sequence.Sequence) sequence.Sequence {
	b := []byte(s)
	i := r.Intn(len(b))
	for {
		c := "ACGT"[r.Intn(4)]
		if c != b[i] {
			b[i] = c
			return sequence.Sequence(b)
		}
	}
}

func TestKnownFingerprints(t *testing.T) {
	tests := []struct {
		seq  string
		want string
	}{
		{"ACTG", "0004000000000000"},
		{"ACTT", "8000000000000000"},
		{"A", "0000000000000010"},
		{"ACGTACGTACGT", "1000000000108400"},
	}
	for _, tt := range tests {
		fp, err := Of(sequence.MustValidate(tt.seq))
		require.NoError(t, err)
		assert.Equal(t, tt.want, fp.String(), tt.seq)
	}
}

func TestOfIsDeterministic(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for i := 0; i < 20; i++ {
		s := randomSequence(r, 10+r.Intn(500))
		assert.Equal(t, MustOf(s), MustOf(s))
	}
}

func TestShortSequenceIsSingleWindow(t *testing.T) {
	for _, raw := range []string{"A", "ACTG", "ACGTACG"} {
		fp := MustOf(sequence.MustValidate(raw))
		assert.Equal(t, 1, bits.OnesCount64(uint64(fp)), raw)
		assert.Equal(t, Fingerprint(1)<<uint(bucket(raw)), fp, raw)
	}
}

func TestEmptySequenceIsTooShort(t *testing.T) {
	_, err := Of("")
	assert.ErrorIs(t, err, ErrSequenceTooShort)
}

func TestDistanceLaws(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 50; i++ {
		a := Fingerprint(r.Uint64())
		b := Fingerprint(r.Uint64())
		assert.Equal(t, Distance(a, b), Distance(b, a))
		assert.Equal(t, 0, Distance(a, a))
		assert.LessOrEqual(t, Distance(a, b), Bits)
		assert.Equal(t, Distance(a, b), a.Distance(b))
	}
	assert.Equal(t, 64, Distance(0, ^Fingerprint(0)))
	assert.Equal(t, 1, Distance(0, 1))
}

func TestPointSubstitutionIsClose(t *testing.T) {
	a := MustOf(sequence.MustValidate("ACTG"))
	b := MustOf(sequence.MustValidate("ACTT"))
	d := Distance(a, b)
	assert.Greater(t, d, 0)
	assert.LessOrEqual(t, d, 4)

	r := rand.New(rand.NewSource(3))
	total := 0
	const trials = 40
	for i := 0; i < trials; i++ {
		s := randomSequence(r, 1000)
		d := Distance(MustOf(s), MustOf(substitute(r, s)))
		// up to WindowSize windows leave and as many arrive, two bits each
		assert.LessOrEqual(t, d, 4*WindowSize)
		total += d
	}
	assert.Less(t, float64(total)/trials, 6.0)
}

// TestAppendMovesAtMostTwoBits walks lengths across multiples of 64 windows,
// where a per-window density cut-off would jump.
func TestAppendMovesAtMostTwoBits(t *testing.T) {
	r := rand.New(rand.NewSource(5))
	for _, n := range []int{8, 9, 69, 70, 71, 72, 133, 134, 135, 199, 1000} {
		for i := 0; i < 30; i++ {
			s := randomSequence(r, n)
			k := r.Intn(4)
			longer := s + sequence.Sequence("ACGT"[k:k+1])
			assert.LessOrEqual(t, Distance(MustOf(s), MustOf(longer)), 2, "length %d", n)
		}
	}
}

func TestUnrelatedSequencesAreUncorrelated(t *testing.T) {
	tests := []struct {
		length   int
		min, max float64
	}{
		// 3 windows: at most 3 bits set on each side
		{10, 4.0, 6.0},
		{20, 15.0, 26.0},
		{40, 24.0, 38.0},
		{1000, 24.0, 40.0},
	}
	r := rand.New(rand.NewSource(11))
	for _, tt := range tests {
		total := 0
		const trials = 50
		for i := 0; i < trials; i++ {
			total += Distance(MustOf(randomSequence(r, tt.length)), MustOf(randomSequence(r, tt.length)))
		}
		mean := float64(total) / trials
		assert.Greater(t, mean, tt.min, "length %d", tt.length)
		assert.LessOrEqual(t, mean, tt.max, "length %d", tt.length)
	}
}

func TestLongSequenceSetsHalfTheBits(t *testing.T) {
	r := rand.New(rand.NewSource(13))
	fp := MustOf(randomSequence(r, 1000))
	assert.Equal(t, Bits/2, bits.OnesCount64(uint64(fp)))
}

func TestParseRoundTrip(t *testing.T) {
	fp := MustOf(sequence.MustValidate("ACGTACGTACGT"))
	parsed, err := Parse(fp.String())
	require.NoError(t, err)
	assert.Equal(t, fp, parsed)

	_, err = Parse("123")
	assert.Error(t, err)
	_, err = Parse("zzzzzzzzzzzzzzzz")
	assert.Error(t, err)
}

func TestFingerprintJSON(t *testing.T) {
	fp := MustOf(sequence.MustValidate("ACTG"))
	b, err := json.Marshal(fp)
	require.NoError(t, err)
	assert.Equal(t, `"0004000000000000"`, string(b))

	var out Fingerprint
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Equal(t, fp, out)
}
