package trafficgen

// desc.go holds the serializable description of a synthesis experiment,
// and the translation of the human-readable parameter formats it
// carries.  Serialization follows the extension of the file name, to
// json or to yaml

import (
	"encoding/json"
	"errors"
	"fmt"
	"gopkg.in/yaml.v3"
	"os"
	"path"
	"strconv"
)

var ErrBandwidthUnit error = errors.New("bandwidth unit must be K, M, or G")
var ErrBandwidthMagnitude error = errors.New("bandwidth magnitude is not numeric")

// bandwidth unit suffix -> multiplier to bits per second
var bndwdthUnits map[byte]float64 = map[byte]float64{'K': 1e3, 'M': 1e6, 'G': 1e9}

// TranslateBandwidth converts a bandwidth string, a numeric literal with
// an optional K, M, or G suffix, into bits per second.  A bad suffix and
// an unparsable magnitude are reported as distinct error kinds
func TranslateBandwidth(bndwdth string) (float64, error) {
	if len(bndwdth) == 0 {
		return 0.0, fmt.Errorf("empty bandwidth string: %w", ErrBandwidthMagnitude)
	}
	mag := bndwdth
	mult := 1.0
	last := bndwdth[len(bndwdth)-1]
	if last < '0' || last > '9' {
		m, present := bndwdthUnits[last]
		if !present {
			return 0.0, fmt.Errorf("bandwidth %q: %w", bndwdth, ErrBandwidthUnit)
		}
		mult = m
		mag = bndwdth[:len(bndwdth)-1]
	}
	value, err := strconv.ParseFloat(mag, 64)
	if err != nil {
		return 0.0, fmt.Errorf("bandwidth %q: %w", bndwdth, ErrBandwidthMagnitude)
	}
	return value * mult, nil
}

// SynthesisDesc is the serializable form of a synthesis experiment.
// The bandwidth keeps its string form so that desc files read the way
// the command line does
type SynthesisDesc struct {
	Name        string  `json:"name" yaml:"name"`
	NumHosts    int     `json:"numhosts" yaml:"numhosts"`
	CdfFile     string  `json:"cdffile" yaml:"cdffile"`
	Load        float64 `json:"load" yaml:"load"`
	Bandwidth   string  `json:"bandwidth" yaml:"bandwidth"`
	BaseTime    float64 `json:"basetime" yaml:"basetime"`
	SimDuration float64 `json:"simduration" yaml:"simduration"`
	Seed        uint64  `json:"seed" yaml:"seed"`
	OutputFile  string  `json:"outputfile" yaml:"outputfile"`
}

// CreateSynthesisDesc is a constructor, filling in the conventional
// defaults for everything but the host count and the CDF file
func CreateSynthesisDesc(name string) *SynthesisDesc {
	sd := new(SynthesisDesc)
	sd.Name = name
	sd.Load = 0.4
	sd.Bandwidth = "100G"
	sd.BaseTime = 0.0
	sd.SimDuration = 1.0
	sd.OutputFile = "cdf_traffic.txt"
	return sd
}

// Cfg translates the description into the synthesizer's configuration,
// converting the bandwidth string.  Range validation happens when the
// configuration is given to CreateFlowSynthesizer
func (sd *SynthesisDesc) Cfg() (SynthesisCfg, error) {
	bps, err := TranslateBandwidth(sd.Bandwidth)
	if err != nil {
		return SynthesisCfg{}, err
	}
	cfg := SynthesisCfg{
		NumHosts:     sd.NumHosts,
		Load:         sd.Load,
		BandwidthBps: bps,
		BaseTime:     sd.BaseTime,
		SimDuration:  sd.SimDuration,
	}
	return cfg, nil
}

// WriteToFile stores the SynthesisDesc struct to the file whose name is given.
// Serialization to json or to yaml is selected based on the extension of this name.
func (sd *SynthesisDesc) WriteToFile(filename string) error {
	pathExt := path.Ext(filename)
	var bytes []byte
	var merr error = nil

	if pathExt == ".yaml" || pathExt == ".YAML" || pathExt == ".yml" {
		bytes, merr = yaml.Marshal(*sd)
	} else if pathExt == ".json" || pathExt == ".JSON" {
		bytes, merr = json.MarshalIndent(*sd, "", "\t")
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

	return werr
}

// ReadSynthesisDesc deserializes a byte slice holding a representation of a
// SynthesisDesc struct.  If the input argument of dict (those bytes) is empty,
// the file whose name is given is read to acquire them.  A deserialized
// representation is returned, or an error if one is generated from a file
// read or the deserialization
func ReadSynthesisDesc(filename string, useYAML bool, dict []byte) (*SynthesisDesc, error) {
	var err error

	// if the dict slice of bytes is empty we get them from the file whose name is an argument
	if len(dict) == 0 {
		dict, err = os.ReadFile(filename)
		if err != nil {
			return nil, err
		}
	}

	example := SynthesisDesc{}

	if useYAML {
		err = yaml.Unmarshal(dict, &example)
	} else {
		err = json.Unmarshal(dict, &example)
	}

	if err != nil {
		return nil, err
	}

	return &example, nil
}
