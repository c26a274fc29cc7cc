package trafficgen

import (
	"encoding/json"
	"github.com/iti/evt/vrtime"
	"gopkg.in/yaml.v3"
	"os"
	"path"
	"strconv"
)

type TraceInst struct {
	TraceTime string
	TraceType string
	TraceStr  string
}

// TraceManager gathers information about an execution of a synthesized
// flow set, for post-run analysis
type TraceManager struct {
	// experiment uses trace
	InUse bool `json:"inuse" yaml:"inuse"`

	// name of experiment
	ExpName string `json:"expname" yaml:"expname"`

	// all trace records for this experiment, keyed by flow id
	Traces map[int][]TraceInst `json:"traces" yaml:"traces"`
}

// CreateTraceManager is a constructor.  It saves the name of the experiment
// and a flag indicating whether the trace manager is active.  By testing this
// flag we can inhibit the activity of gathering a trace when we don't want it,
// while embedding calls to its methods everywhere we need them when it is
func CreateTraceManager(expName string, active bool) *TraceManager {
	tm := new(TraceManager)
	tm.InUse = active
	tm.ExpName = expName
	tm.Traces = make(map[int][]TraceInst)
	return tm
}

// Active tells the caller whether the Trace Manager is actively being used
func (tm *TraceManager) Active() bool {
	return tm.InUse
}

// AddTrace creates a record of the trace using its calling arguments, and stores it
func (tm *TraceManager) AddTrace(vrt vrtime.Time, flowID int, trace TraceInst) {

	// return if we aren't using the trace manager
	if !tm.InUse {
		return
	}

	_, present := tm.Traces[flowID]
	if !present {
		tm.Traces[flowID] = make([]TraceInst, 0)
	}
	tm.Traces[flowID] = append(tm.Traces[flowID], trace)
}

// WriteToFile stores the Traces struct to the file whose name is given.
// Serialization to json or to yaml is selected based on the extension of this name.
func (tm *TraceManager) WriteToFile(filename string) bool {
	if !tm.InUse {
		return false
	}
	pathExt := path.Ext(filename)
	var bytes []byte
	var merr error = nil

	if pathExt == ".yaml" || pathExt == ".YAML" || pathExt == ".yml" {
		bytes, merr = yaml.Marshal(*tm)
	} else if pathExt == ".json" || pathExt == ".JSON" {
		bytes, merr = json.MarshalIndent(*tm, "", "\t")
	}

	if merr != nil {
		panic(merr)
	}

	f, cerr := os.Create(filename)
	if cerr != nil {
		panic(cerr)
	}
	_, werr := f.WriteString(string(bytes[:]))
	if werr != nil {
		panic(werr)
	}
	f.Close()
	return true
}

// FlowTrace saves information about one flow event observed in a replay
type FlowTrace struct {
	Time      float64 // time in float64
	Ticks     int64   // ticks variable of time
	FlowID    int     // identifier the flow carries in the exported connection matrix
	SrcIdx    int     // source host index
	DstIdx    int     // destination host index
	SizeBytes int     // flow size
	Op        string  // "arrive"
}

func (ft *FlowTrace) Serialize() string {
	var bytes []byte
	var merr error

	bytes, merr = yaml.Marshal(*ft)

	if merr != nil {
		panic(merr)
	}
	return string(bytes[:])
}

// AddFlowTrace creates a record of the trace using its calling arguments, and stores it
func AddFlowTrace(tm *TraceManager, vrt vrtime.Time, flowID int, flow Flow, op string) {
	if !tm.Active() {
		return
	}
	ft := new(FlowTrace)
	ft.Time = vrt.Seconds()
	ft.Ticks = vrt.Ticks()
	ft.FlowID = flowID
	ft.SrcIdx = flow.SrcIdx
	ft.DstIdx = flow.DstIdx
	ft.SizeBytes = flow.SizeBytes
	ft.Op = op

	ftStr := ft.Serialize()
	traceTime := strconv.FormatFloat(vrt.Seconds(), 'f', -1, 64)

	trcInst := TraceInst{TraceTime: traceTime, TraceType: "flow", TraceStr: ftStr}
	tm.AddTrace(vrt, flowID, trcInst)
}
