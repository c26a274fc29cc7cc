package trafficgen

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func refCdf() []CdfPoint {
	return []CdfPoint{{Value: 0, CumulativeProbPct: 0}, {Value: 1, CumulativeProbPct: 50}, {Value: 2, CumulativeProbPct: 100}}
}

func TestIsValidCDF(t *testing.T) {
	for _, test := range []struct {
		msg    string
		points []CdfPoint
		valid  bool
	}{
		{"reference", refCdf(), true},
		{"empty", []CdfPoint{}, false},
		{"single point", []CdfPoint{{Value: 0, CumulativeProbPct: 0}}, false},
		{"first probability not 0", []CdfPoint{{0, 10}, {1, 100}}, false},
		{"last probability not 100", []CdfPoint{{0, 0}, {1, 90}}, false},
		{"value decreases", []CdfPoint{{0, 0}, {2, 50}, {1, 100}}, false},
		{"value repeats", []CdfPoint{{0, 0}, {1, 50}, {1, 100}}, false},
		{"probability repeats", []CdfPoint{{0, 0}, {1, 50}, {2, 50}, {3, 100}}, false},
	} {
		assert.Equal(t, test.valid, IsValidCDF(test.points), test.msg)
	}
}

func TestSetCDFKeepsPriorStateOnRejection(t *testing.T) {
	cm := CreateCdfModel()
	require.False(t, cm.IsSet())
	require.True(t, cm.SetCDF(refCdf()))
	require.True(t, cm.IsSet())

	require.False(t, cm.SetCDF([]CdfPoint{{0, 0}, {1, 50}}))
	avg, err := cm.AverageValue()
	require.NoError(t, err)
	assert.Equal(t, 1.0, avg, "rejected input must not disturb the installed CDF")
}

func TestAverageValue(t *testing.T) {
	cm := CreateCdfModel()
	require.True(t, cm.SetCDF(refCdf()))
	avg, err := cm.AverageValue()
	require.NoError(t, err)
	assert.Equal(t, 1.0, avg)

	require.True(t, cm.SetCDF([]CdfPoint{{0, 0}, {1, 25}, {2, 50}, {3, 75}, {4, 100}}))
	avg, err = cm.AverageValue()
	require.NoError(t, err)
	assert.Equal(t, 2.0, avg)

	_, err = CreateCdfModel().AverageValue()
	assert.ErrorIs(t, err, ErrNoCDF)
}

func TestValueAtPercentile(t *testing.T) {
	cm := CreateCdfModel()
	require.True(t, cm.SetCDF(refCdf()))

	for _, test := range []struct {
		prct float64
		want float64
	}{
		{0, 0},
		{10, 0.2},
		{50, 1},
		{75, 1.5},
		{100, 2},
	} {
		got, err := cm.ValueAtPercentile(test.prct)
		require.NoError(t, err)
		assert.InDelta(t, test.want, got, 1e-12, "percentile %v", test.prct)
	}
}

func TestValueAtPercentileRangeError(t *testing.T) {
	cm := CreateCdfModel()
	require.True(t, cm.SetCDF(refCdf()))

	_, err := cm.ValueAtPercentile(100.5)
	assert.ErrorIs(t, err, ErrPercentileRange)
	_, err = cm.ValueAtPercentile(-1)
	assert.ErrorIs(t, err, ErrPercentileRange)

	_, err = CreateCdfModel().ValueAtPercentile(50)
	assert.ErrorIs(t, err, ErrNoCDF)
}

func TestPercentileAtValue(t *testing.T) {
	cm := CreateCdfModel()
	require.True(t, cm.SetCDF(refCdf()))

	assert.Equal(t, 50.0, cm.PercentileAtValue(1))
	assert.Equal(t, 75.0, cm.PercentileAtValue(1.5))
	assert.Equal(t, 100.0, cm.PercentileAtValue(2))

	assert.Equal(t, -1.0, cm.PercentileAtValue(-0.1))
	assert.Equal(t, -1.0, cm.PercentileAtValue(2.1))
	assert.Equal(t, -1.0, CreateCdfModel().PercentileAtValue(1))
}

func TestValuePercentileRoundTrip(t *testing.T) {
	cm := CreateCdfModel()
	require.True(t, cm.SetCDF([]CdfPoint{{0, 0}, {100, 10}, {1500, 70}, {40000, 100}}))

	for _, v := range []float64{0, 1, 99.5, 100, 250, 1500, 20000, 40000} {
		prct := cm.PercentileAtValue(v)
		require.GreaterOrEqual(t, prct, 0.0)
		got, err := cm.ValueAtPercentile(prct)
		require.NoError(t, err)
		assert.InDelta(t, v, got, 1e-9*v+1e-9, "value %v", v)
	}
}

func TestCdfFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	filename := filepath.Join(dir, "sizes.cdf")
	points := []CdfPoint{{100, 0}, {895, 30}, {40000, 95}, {2000000, 100}}
	require.NoError(t, WriteCdfFile(filename, points))

	read, err := ReadCdfFile(filename)
	require.NoError(t, err)
	assert.Equal(t, points, read)

	cm := CreateCdfModel()
	ok, err := cm.SetCDFFromFile(filename)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestReadCdfFileErrors(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.cdf")
	require.NoError(t, writeTestFile(bad, "100 0\noops 50\n200 100\n"))
	_, err := ReadCdfFile(bad)
	assert.Error(t, err)

	short := filepath.Join(dir, "short.cdf")
	require.NoError(t, writeTestFile(short, "100 0 17\n"))
	_, err = ReadCdfFile(short)
	assert.Error(t, err)

	_, err = ReadCdfFile(filepath.Join(dir, "absent.cdf"))
	assert.Error(t, err)

	// file reads fine, but the contents are not a CDF
	invalid := filepath.Join(dir, "invalid.cdf")
	require.NoError(t, writeTestFile(invalid, "100 0\n200 50\n300 90\n"))
	cm := CreateCdfModel()
	ok, err := cm.SetCDFFromFile(invalid)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, cm.IsSet())
}

func writeTestFile(filename, contents string) error {
	return os.WriteFile(filename, []byte(contents), 0644)
}
