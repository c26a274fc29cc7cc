package trafficgen

// replay.go holds a virtual-time replay of a synthesized flow set.
// The replayer schedules every flow's arrival as an event and credits
// the bits each one offers to a fixed-width time bin, producing an
// empirical profile of the load the set actually offers over the run
// window

import (
	"errors"
	"fmt"
	"github.com/iti/evt/evtm"
	"github.com/iti/evt/vrtime"
	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/stat"
	"sort"
)

var ErrNoFlows error = errors.New("no flows to replay")

// LoadProfile reports the load a flow set offers over a run window,
// binned by flow start time
type LoadProfile struct {
	BinWidth   float64   // width of each bin (s)
	BaseTime   float64   // start of the first bin (s)
	BitsPerBin []float64 // bits offered by flows starting in each bin
}

// OfferedBps gives the per-bin offered load in bits per second
func (lp *LoadProfile) OfferedBps() []float64 {
	rates := make([]float64, len(lp.BitsPerBin))
	for idx, bits := range lp.BitsPerBin {
		rates[idx] = bits / lp.BinWidth
	}
	return rates
}

// MeanOfferedBps averages the offered rate across the bins
func (lp *LoadProfile) MeanOfferedBps() float64 {
	return stat.Mean(lp.OfferedBps(), nil)
}

// PeakOfferedBps gives the largest per-bin offered rate
func (lp *LoadProfile) PeakOfferedBps() float64 {
	return slices.Max(lp.OfferedBps())
}

// QuantileOfferedBps gives the q-quantile (q in [0,1]) of the per-bin
// offered rates
func (lp *LoadProfile) QuantileOfferedBps(q float64) float64 {
	rates := lp.OfferedBps()
	sort.Float64s(rates)
	return stat.Quantile(q, stat.Empirical, rates, nil)
}

// flowArrival is the event data carried by a scheduled flow arrival
type flowArrival struct {
	flowID int
	flow   Flow
}

// FlowReplayer walks an already-sorted flow set through virtual time
type FlowReplayer struct {
	evtMgr   *evtm.EventManager
	traceMgr *TraceManager
	profile  *LoadProfile
}

// CreateFlowReplayer is a constructor.  A nil traceMgr replays without
// gathering a trace
func CreateFlowReplayer(traceMgr *TraceManager) *FlowReplayer {
	fr := new(FlowReplayer)
	fr.evtMgr = evtm.New()
	if traceMgr == nil {
		traceMgr = CreateTraceManager("", false)
	}
	fr.traceMgr = traceMgr
	return fr
}

// flowArrivalEvent credits an arriving flow's bits to the bin covering
// its start time, and records the arrival when tracing is on
func flowArrivalEvent(evtMgr *evtm.EventManager, context any, data any) any {
	fr := context.(*FlowReplayer)
	arr := data.(*flowArrival)
	lp := fr.profile

	// virtual time 0 corresponds to the base time of the run window
	bin := int(evtMgr.CurrentSeconds() / lp.BinWidth)
	if bin < 0 {
		bin = 0
	}
	if bin >= len(lp.BitsPerBin) {
		bin = len(lp.BitsPerBin) - 1
	}
	lp.BitsPerBin[bin] += float64(arr.flow.SizeBytes) * bitsPerByte

	AddFlowTrace(fr.traceMgr, evtMgr.CurrentTime(), arr.flowID, arr.flow, "arrive")
	return nil
}

// Replay schedules every flow at its start time offset from baseTime,
// runs virtual time forward, and returns the binned load profile.
// Flow ids in the trace follow the list order, starting at 1, matching
// the ids of an exported connection matrix
func (fr *FlowReplayer) Replay(flowList []Flow, baseTime, simDuration float64, numBins int) (*LoadProfile, error) {
	if len(flowList) == 0 {
		return nil, ErrNoFlows
	}
	if numBins < 1 || simDuration <= 0.0 {
		return nil, fmt.Errorf("%w: %d bins over %v s", ErrConfig, numBins, simDuration)
	}

	lp := new(LoadProfile)
	lp.BinWidth = simDuration / float64(numBins)
	lp.BaseTime = baseTime
	lp.BitsPerBin = make([]float64, numBins)
	fr.profile = lp

	for idx := range flowList {
		arr := &flowArrival{flowID: idx + 1, flow: flowList[idx]}
		offset := flowList[idx].StartTime - baseTime
		if offset < 0.0 {
			offset = 0.0
		}
		fr.evtMgr.Schedule(fr, arr, flowArrivalEvent, vrtime.SecondsToTime(offset))
	}
	fr.evtMgr.Run(simDuration)
	return lp, nil
}
