package main

// trafficgen synthesizes a set of network flows driven by an empirical
// flow-size CDF and Poisson arrivals, and writes the set out as a
// connection matrix file.  The run is reproducible under a fixed seed

import (
	"path"
	"time"

	"github.com/iti/cmdline"
	"github.com/iti/rngstream"
	"github.com/iti/trafficgen"
	"github.com/sirupsen/logrus"
)

var log = logrus.New()

// cmdlineParams defines the parameters recognized on the command line
func cmdlineParams() *cmdline.CmdParser {
	cp := cmdline.NewCmdParser()
	cp.AddFlag(cmdline.StringFlag, "exp", false)     // experiment desc file (.yaml/.json); flags below override it
	cp.AddFlag(cmdline.IntFlag, "nhost", false)      // number of hosts, at least 2
	cp.AddFlag(cmdline.StringFlag, "cdf", false)     // file holding the flow size CDF
	cp.AddFlag(cmdline.FloatFlag, "load", false)     // fraction of link capacity to offer
	cp.AddFlag(cmdline.StringFlag, "bndwdth", false) // host link bandwidth, K/M/G suffix
	cp.AddFlag(cmdline.FloatFlag, "basetime", false) // when flows begin arriving (s)
	cp.AddFlag(cmdline.FloatFlag, "duration", false) // length of the run window (s)
	cp.AddFlag(cmdline.IntFlag, "seed", false)       // rng master seed; system time when absent
	cp.AddFlag(cmdline.StringFlag, "output", false)  // connection matrix output file
	cp.AddFlag(cmdline.IntFlag, "bins", false)       // load-profile bins; 0 skips the replay
	cp.AddFlag(cmdline.StringFlag, "trace", false)   // trace output file (.yaml/.json), turns tracing on
	return cp
}

// buildDesc assembles the experiment description from a desc file if
// one is named, then lets individual command line flags override it
func buildDesc(cp *cmdline.CmdParser) *trafficgen.SynthesisDesc {
	desc := trafficgen.CreateSynthesisDesc("trafficgen")

	if cp.IsLoaded("exp") {
		expFile := cp.GetVar("exp").(string)
		ext := path.Ext(expFile)
		useYAML := ext == ".yaml" || ext == ".YAML" || ext == ".yml"
		fileDesc, err := trafficgen.ReadSynthesisDesc(expFile, useYAML, []byte{})
		if err != nil {
			log.WithError(err).Fatalf("cannot read experiment description %s", expFile)
		}
		desc = fileDesc
	}

	if cp.IsLoaded("nhost") {
		desc.NumHosts = cp.GetVar("nhost").(int)
	}
	if cp.IsLoaded("cdf") {
		desc.CdfFile = cp.GetVar("cdf").(string)
	}
	if cp.IsLoaded("load") {
		desc.Load = cp.GetVar("load").(float64)
	}
	if cp.IsLoaded("bndwdth") {
		desc.Bandwidth = cp.GetVar("bndwdth").(string)
	}
	if cp.IsLoaded("basetime") {
		desc.BaseTime = cp.GetVar("basetime").(float64)
	}
	if cp.IsLoaded("duration") {
		desc.SimDuration = cp.GetVar("duration").(float64)
	}
	if cp.IsLoaded("seed") {
		seedArg := cp.GetVar("seed").(int)
		if seedArg < 0 {
			log.Fatalf("seed %d is negative, use a non-negative seed", seedArg)
		}
		desc.Seed = uint64(seedArg)
	}
	if cp.IsLoaded("output") {
		desc.OutputFile = cp.GetVar("output").(string)
	}
	return desc
}

// main gives the entry point
func main() {
	cp := cmdlineParams()
	cp.Parse()

	desc := buildDesc(cp)
	if desc.NumHosts < 2 {
		log.Fatal("use -nhost (or an experiment file) to give a host count larger than 1")
	}
	if len(desc.CdfFile) == 0 {
		log.Fatal("use -cdf (or an experiment file) to name the flow size CDF file")
	}

	cfg, err := desc.Cfg()
	if err != nil {
		log.WithError(err).Fatal("bandwidth format incorrect")
	}

	// seed the process-wide rng source; every sampling component draws
	// from the one stream created here
	seed := desc.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	rngstream.SetRngStreamMasterSeed(seed)
	rngstrm := rngstream.New(desc.Name)

	model := trafficgen.CreateCdfModel()
	ok, err := model.SetCDFFromFile(desc.CdfFile)
	if err != nil {
		log.WithError(err).Fatalf("cannot read CDF file %s", desc.CdfFile)
	}
	if !ok {
		log.Fatalf("%s does not hold a valid CDF", desc.CdfFile)
	}

	fs, err := trafficgen.CreateFlowSynthesizer(cfg, model, rngstrm)
	if err != nil {
		log.WithError(err).Fatal("cannot configure the flow synthesizer")
	}
	log.WithFields(logrus.Fields{
		"hosts":    cfg.NumHosts,
		"load":     cfg.Load,
		"bndwdth":  desc.Bandwidth,
		"duration": cfg.SimDuration,
		"meanGap":  fs.MeanInterArrival(),
		"seed":     seed,
	}).Info("synthesizing flows")

	flowList, err := fs.Synthesize()
	if err != nil {
		log.WithError(err).Fatal("flow synthesis failed")
	}

	if err := trafficgen.ExportFlowsToFile(desc.OutputFile, cfg.NumHosts, flowList); err != nil {
		log.WithError(err).Fatalf("cannot write %s", desc.OutputFile)
	}
	log.Infof("wrote %d flows to %s", len(flowList), desc.OutputFile)

	// optionally replay the set in virtual time to profile the load it offers
	numBins := 0
	if cp.IsLoaded("bins") {
		numBins = cp.GetVar("bins").(int)
	}
	traceFile := ""
	if cp.IsLoaded("trace") {
		traceFile = cp.GetVar("trace").(string)
	}
	if numBins == 0 && len(traceFile) == 0 {
		return
	}
	if numBins == 0 {
		numBins = 10
	}

	traceMgr := trafficgen.CreateTraceManager(desc.Name, len(traceFile) > 0)
	replayer := trafficgen.CreateFlowReplayer(traceMgr)
	profile, err := replayer.Replay(flowList, cfg.BaseTime, cfg.SimDuration, numBins)
	if err != nil {
		log.WithError(err).Fatal("replay failed")
	}
	log.WithFields(logrus.Fields{
		"targetBps": cfg.BandwidthBps * cfg.Load * float64(cfg.NumHosts),
		"meanBps":   profile.MeanOfferedBps(),
		"peakBps":   profile.PeakOfferedBps(),
		"p95Bps":    profile.QuantileOfferedBps(0.95),
	}).Info("offered load profile")

	if len(traceFile) > 0 {
		if traceMgr.WriteToFile(traceFile) {
			log.Infof("wrote trace to %s", traceFile)
		}
	}
}
