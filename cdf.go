package trafficgen

// cdf.go holds the representation of an empirical cumulative distribution
// function, its validation, and the value <-> percentile queries used when
// sampling flow sizes

import (
	"errors"
	"fmt"
)

// A CdfPoint is one breakpoint of a piecewise-linear empirical CDF,
// pairing a value with the cumulative probability (as a percentage)
// of observing that value or less
type CdfPoint struct {
	Value             float64 `json:"value" yaml:"value"`
	CumulativeProbPct float64 `json:"cumulativeprobpct" yaml:"cumulativeprobpct"`
}

var ErrInvalidCDF error = errors.New("not a valid CDF")
var ErrNoCDF error = errors.New("no CDF has been set")
var ErrPercentileRange error = errors.New("percentile outside [0,100]")

// IsValidCDF reports whether points describes a usable empirical CDF:
// the cumulative probability starts at 0, ends at 100, and both the
// values and the probabilities are strictly increasing across every
// adjacent pair of breakpoints
func IsValidCDF(points []CdfPoint) bool {
	if len(points) < 2 {
		return false
	}
	if points[0].CumulativeProbPct != 0.0 || points[len(points)-1].CumulativeProbPct != 100.0 {
		return false
	}
	for idx := 1; idx < len(points); idx++ {
		if points[idx].Value <= points[idx-1].Value ||
			points[idx].CumulativeProbPct <= points[idx-1].CumulativeProbPct {
			return false
		}
	}
	return true
}

// CdfModel owns a validated CDF and answers queries against it.  The
// zero value holds no CDF, and SetCDF is the only mutator, so the model
// either holds a fully valid CDF or none at all
type CdfModel struct {
	cdf []CdfPoint
}

// CreateCdfModel is a constructor
func CreateCdfModel() *CdfModel {
	cm := new(CdfModel)
	cm.cdf = []CdfPoint{}
	return cm
}

// SetCDF installs a copy of points as the model's CDF if it validates,
// and reports whether it did.  A rejected input leaves any previously
// installed CDF untouched
func (cm *CdfModel) SetCDF(points []CdfPoint) bool {
	if !IsValidCDF(points) {
		return false
	}
	cm.cdf = append([]CdfPoint{}, points...)
	return true
}

// IsSet reports whether the model holds a CDF
func (cm *CdfModel) IsSet() bool {
	return len(cm.cdf) > 0
}

// Points returns a copy of the installed breakpoints
func (cm *CdfModel) Points() []CdfPoint {
	return append([]CdfPoint{}, cm.cdf...)
}

// AverageValue computes the mean of the distribution, integrating the
// trapezoid each segment contributes to the probability mass
func (cm *CdfModel) AverageValue() (float64, error) {
	if !cm.IsSet() {
		return 0.0, ErrNoCDF
	}
	total := 0.0
	prev := cm.cdf[0]
	for _, curr := range cm.cdf[1:] {
		total += (curr.Value + prev.Value) / 2.0 * (curr.CumulativeProbPct - prev.CumulativeProbPct)
		prev = curr
	}
	return total / 100.0, nil
}

// ValueAtPercentile inverts the CDF at percentile prct, interpolating
// linearly within the first segment whose upper breakpoint's probability
// reaches prct.  A percentile outside [0,100] is a range error
func (cm *CdfModel) ValueAtPercentile(prct float64) (float64, error) {
	if !cm.IsSet() {
		return 0.0, ErrNoCDF
	}
	if prct < 0.0 || prct > 100.0 {
		return 0.0, fmt.Errorf("percentile %v: %w", prct, ErrPercentileRange)
	}
	for idx := 1; idx < len(cm.cdf); idx++ {
		if prct <= cm.cdf[idx].CumulativeProbPct {
			lower := cm.cdf[idx-1]
			upper := cm.cdf[idx]
			return lower.Value + (prct-lower.CumulativeProbPct)*
				(upper.Value-lower.Value)/(upper.CumulativeProbPct-lower.CumulativeProbPct), nil
		}
	}
	// unreachable when a CDF is installed, its last breakpoint is at 100
	return 0.0, fmt.Errorf("percentile %v: %w", prct, ErrPercentileRange)
}

// PercentileAtValue gives the cumulative probability (as a percentage)
// of drawing value or less, or -1 if value lies outside the support of
// the distribution.  Callers check the sentinel explicitly
func (cm *CdfModel) PercentileAtValue(value float64) float64 {
	if !cm.IsSet() {
		return -1.0
	}
	if value < 0.0 || value > cm.cdf[len(cm.cdf)-1].Value {
		return -1.0
	}
	for idx := 1; idx < len(cm.cdf); idx++ {
		if value <= cm.cdf[idx].Value {
			lower := cm.cdf[idx-1]
			upper := cm.cdf[idx]
			return lower.CumulativeProbPct + (upper.CumulativeProbPct-lower.CumulativeProbPct)/
				(upper.Value-lower.Value)*(value-lower.Value)
		}
	}
	return -1.0
}
