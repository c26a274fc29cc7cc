package trafficgen

// flows.go holds the flow synthesizer, which combines CDF-driven size
// sampling, Poisson arrivals, and random peer selection to produce the
// time-ordered set of flows offered to the network over a run

import (
	"errors"
	"fmt"
	"github.com/iti/rngstream"
	"golang.org/x/exp/slices"
	"math"
)

// the synthesizer advances its clock in nanoseconds, and exports
// start times in seconds
const nsInS float64 = 1e9

const bitsPerByte float64 = 8.0

var ErrConfig error = errors.New("invalid synthesis configuration")

// A Flow is one synthesized unit of traffic: a transfer of SizeBytes
// bytes from host SrcIdx to host DstIdx, starting StartTime seconds
// into simulated time
type Flow struct {
	SrcIdx    int     `json:"srcidx" yaml:"srcidx"`
	DstIdx    int     `json:"dstidx" yaml:"dstidx"`
	SizeBytes int     `json:"sizebytes" yaml:"sizebytes"`
	StartTime float64 `json:"starttime" yaml:"starttime"`
}

// SynthesisCfg collects the parameters of one synthesis run
type SynthesisCfg struct {
	NumHosts     int     // number of hosts, at least 2
	Load         float64 // fraction of the link bandwidth to offer
	BandwidthBps float64 // host link bandwidth, bits per second
	BaseTime     float64 // when flows start arriving (s)
	SimDuration  float64 // length of the run window (s)
}

// Validate rejects degenerate parameter combinations.  The synthesizer
// calls it before any flow is drawn, so a bad run produces no output
func (cfg *SynthesisCfg) Validate() error {
	if cfg.NumHosts < 2 {
		return fmt.Errorf("%w: need at least 2 hosts, have %d", ErrConfig, cfg.NumHosts)
	}
	if cfg.BandwidthBps*cfg.Load <= 0.0 {
		return fmt.Errorf("%w: target load %v bps is not positive", ErrConfig, cfg.BandwidthBps*cfg.Load)
	}
	if cfg.SimDuration <= 0.0 {
		return fmt.Errorf("%w: run duration %v s is not positive", ErrConfig, cfg.SimDuration)
	}
	return nil
}

// FlowSynthesizer produces the full flow set for a run.  It owns the
// accumulating flow list until Synthesize hands it back to the caller
type FlowSynthesizer struct {
	cfg      SynthesisCfg
	model    *CdfModel
	sampler  *CdfSampler
	arrivals *PoissonArrivals
	chooser  *PeerChooser

	// mean gap between successive flow starts at one source host,
	// chosen so that each host offers load * bandwidth (ns)
	meanGapNs float64
}

// CreateFlowSynthesizer is a constructor.  It validates the
// configuration and the model eagerly, so a degenerate run fails here
// rather than part way through generation
func CreateFlowSynthesizer(cfg SynthesisCfg, model *CdfModel, rngstrm *rngstream.RngStream) (*FlowSynthesizer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	avgSizeBytes, err := model.AverageValue()
	if err != nil {
		return nil, err
	}

	fs := new(FlowSynthesizer)
	fs.cfg = cfg
	fs.model = model
	fs.sampler = CreateCdfSampler(model, rngstrm)
	fs.arrivals = CreatePoissonArrivals(rngstrm)
	fs.chooser = CreatePeerChooser(rngstrm)

	avgSizeBits := avgSizeBytes * bitsPerByte
	targetBps := cfg.BandwidthBps * cfg.Load
	fs.meanGapNs = avgSizeBits / targetBps * nsInS
	if fs.meanGapNs <= 0.0 {
		return nil, fmt.Errorf("%w: mean inter-arrival %v ns is not positive", ErrConfig, fs.meanGapNs)
	}
	return fs, nil
}

// MeanInterArrival reports the per-host mean gap between flow starts, in seconds
func (fs *FlowSynthesizer) MeanInterArrival() float64 {
	return fs.meanGapNs / nsInS
}

// Synthesize generates the flow set.  Each source host independently
// advances a clock by exponential gaps, emitting a flow with a random
// size and destination at each arrival until the clock leaves the run
// window.  The combined list is then stable-sorted by start time, so
// ties keep the source-major order they were generated in
func (fs *FlowSynthesizer) Synthesize() ([]Flow, error) {
	baseNs := fs.cfg.BaseTime * nsInS
	endNs := baseNs + fs.cfg.SimDuration*nsInS

	flowList := []Flow{}
	for srcIdx := 0; srcIdx < fs.cfg.NumHosts; srcIdx++ {
		clockNs := baseNs + math.Trunc(fs.arrivals.SampleInterArrival(fs.meanGapNs))
		for clockNs < endNs {
			dstIdx := fs.chooser.Choose(srcIdx, fs.cfg.NumHosts)
			size, err := fs.sampler.Sample()
			if err != nil {
				return nil, err
			}
			// sizes are whole bytes, never less than 1
			sizeBytes := int(size)
			if sizeBytes < 1 {
				sizeBytes = 1
			}
			flowList = append(flowList,
				Flow{SrcIdx: srcIdx, DstIdx: dstIdx, SizeBytes: sizeBytes, StartTime: clockNs / nsInS})
			clockNs += math.Trunc(fs.arrivals.SampleInterArrival(fs.meanGapNs))
		}
	}
	sortFlowsByStart(flowList)
	return flowList, nil
}

// sortFlowsByStart orders a flow list by increasing start time, stably
func sortFlowsByStart(flowList []Flow) {
	slices.SortStableFunc(flowList, func(a, b Flow) int {
		if a.StartTime < b.StartTime {
			return -1
		}
		if a.StartTime > b.StartTime {
			return 1
		}
		return 0
	})
}
