package trafficgen

// rng.go holds the sampling components of the generator: flow sizes
// drawn through an empirical CDF, exponential inter-arrival gaps, and
// uniform peer selection.  All of them draw from a single shared
// rngstream so that a fixed master seed reproduces a run exactly

import (
	"github.com/iti/rngstream"
	"math"
)

// expRV returns a sample of an exponentially distributed random number
// with the given mean, interpreting u01 as a U(0,1) draw
func expRV(u01, mean float64) float64 {
	return -math.Log(1.0-u01) * mean
}

// CdfSampler draws random values distributed according to a CdfModel
type CdfSampler struct {
	model   *CdfModel
	rngstrm *rngstream.RngStream
}

// CreateCdfSampler is a constructor
func CreateCdfSampler(model *CdfModel, rngstrm *rngstream.RngStream) *CdfSampler {
	cs := new(CdfSampler)
	cs.model = model
	cs.rngstrm = rngstrm
	return cs
}

// Sample draws a uniform percentile in [0,100) and inverts the model's
// CDF there.  It fails only when the model holds no CDF
func (cs *CdfSampler) Sample() (float64, error) {
	prct := cs.rngstrm.RandU01() * 100.0
	return cs.model.ValueAtPercentile(prct)
}

// PoissonArrivals samples the inter-arrival gaps of a Poisson process
type PoissonArrivals struct {
	rngstrm *rngstream.RngStream
}

// CreatePoissonArrivals is a constructor
func CreatePoissonArrivals(rngstrm *rngstream.RngStream) *PoissonArrivals {
	pa := new(PoissonArrivals)
	pa.rngstrm = rngstrm
	return pa
}

// SampleInterArrival returns the time to the next arrival of a Poisson
// process whose gaps have the given mean.  The result is strictly
// positive, and the empirical mean of many draws converges to mean
func (pa *PoissonArrivals) SampleInterArrival(mean float64) float64 {
	return expRV(pa.rngstrm.RandU01(), mean)
}

// PeerChooser picks flow destinations uniformly from the other hosts
type PeerChooser struct {
	rngstrm *rngstream.RngStream
}

// CreatePeerChooser is a constructor
func CreatePeerChooser(rngstrm *rngstream.RngStream) *PeerChooser {
	pc := new(PeerChooser)
	pc.rngstrm = rngstrm
	return pc
}

// Choose returns a host index drawn uniformly from [0, nhost) excluding
// srcIdx, redrawing until the draw differs from the source.  nhost must
// be at least 2 for a destination to exist
func (pc *PeerChooser) Choose(srcIdx, nhost int) int {
	dstIdx := pc.rngstrm.RandInt(0, nhost-1)
	for dstIdx == srcIdx {
		dstIdx = pc.rngstrm.RandInt(0, nhost-1)
	}
	return dstIdx
}
