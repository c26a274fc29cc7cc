package trafficgen

import (
	"testing"

	"github.com/iti/rngstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"
)

// testRng gives each test its own deterministically seeded stream
func testRng(t *testing.T, seed uint64) *rngstream.RngStream {
	t.Helper()
	rngstream.SetRngStreamMasterSeed(seed)
	return rngstream.New(t.Name())
}

func TestCdfSamplerDrawsFollowTheCdf(t *testing.T) {
	rngstrm := testRng(t, 17)
	cm := CreateCdfModel()
	require.True(t, cm.SetCDF(refCdf()))
	cs := CreateCdfSampler(cm, rngstrm)

	const draws = 200000
	samples := make([]float64, draws)
	for idx := 0; idx < draws; idx++ {
		s, err := cs.Sample()
		require.NoError(t, err)
		require.GreaterOrEqual(t, s, 0.0)
		require.LessOrEqual(t, s, 2.0)
		samples[idx] = s
	}
	assert.InDelta(t, 1.0, stat.Mean(samples, nil), 0.01)
}

func TestCdfSamplerNeedsACdf(t *testing.T) {
	cs := CreateCdfSampler(CreateCdfModel(), testRng(t, 17))
	_, err := cs.Sample()
	assert.ErrorIs(t, err, ErrNoCDF)
}

func TestSampleInterArrival(t *testing.T) {
	pa := CreatePoissonArrivals(testRng(t, 31))

	const mean = 3.0
	const draws = 100000
	gaps := make([]float64, draws)
	for idx := 0; idx < draws; idx++ {
		gap := pa.SampleInterArrival(mean)
		require.Greater(t, gap, 0.0)
		gaps[idx] = gap
	}
	assert.InDelta(t, mean, stat.Mean(gaps, nil), 0.05)
}

func TestPeerChooserExcludesSelfAndStaysInRange(t *testing.T) {
	pc := CreatePeerChooser(testRng(t, 5))

	for _, nhost := range []int{2, 3, 16} {
		seen := make(map[int]int)
		for srcIdx := 0; srcIdx < nhost; srcIdx++ {
			for draw := 0; draw < 500; draw++ {
				dstIdx := pc.Choose(srcIdx, nhost)
				require.NotEqual(t, srcIdx, dstIdx)
				require.GreaterOrEqual(t, dstIdx, 0)
				require.Less(t, dstIdx, nhost)
				seen[dstIdx] += 1
			}
		}
		// with 500 draws per source every peer shows up somewhere
		assert.Len(t, seen, nhost)
	}
}

func TestExpRV(t *testing.T) {
	assert.Equal(t, 0.0, expRV(0.0, 10.0))
	assert.InDelta(t, 10.0*0.6931471805599453, expRV(0.5, 10.0), 1e-12)
}
