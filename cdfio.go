package trafficgen

// cdfio.go holds the reader and writer for the plain-text CDF file
// format: one "value cumulative-probability" pair per line, listed in
// increasing order, first probability 0 and last probability 100

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ReadCdfFile parses the named CDF file into an ordered breakpoint list.
// Each non-blank line holds two whitespace-separated floats.  The list
// is returned as read, validation happens when it is given to a model
func ReadCdfFile(filename string) ([]CdfPoint, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	points := []CdfPoint{}
	scanner := bufio.NewScanner(f)
	lineNum := 0
	for scanner.Scan() {
		lineNum += 1
		line := strings.TrimSpace(scanner.Text())
		if len(line) == 0 {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, fmt.Errorf("%s line %d: expected 'value probability', got %q", filename, lineNum, line)
		}
		value, verr := strconv.ParseFloat(fields[0], 64)
		prob, perr := strconv.ParseFloat(fields[1], 64)
		if verr != nil || perr != nil {
			return nil, fmt.Errorf("%s line %d: non-numeric CDF entry %q", filename, lineNum, line)
		}
		points = append(points, CdfPoint{Value: value, CumulativeProbPct: prob})
	}
	if serr := scanner.Err(); serr != nil {
		return nil, serr
	}
	return points, nil
}

// SetCDFFromFile reads the named CDF file and installs its contents in
// the model.  The bool return reports whether the file held a valid CDF,
// the error reports problems getting breakpoints out of the file at all
func (cm *CdfModel) SetCDFFromFile(filename string) (bool, error) {
	points, err := ReadCdfFile(filename)
	if err != nil {
		return false, err
	}
	return cm.SetCDF(points), nil
}

// WriteCdfFile stores breakpoints in the text format ReadCdfFile consumes
func WriteCdfFile(filename string, points []CdfPoint) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, pnt := range points {
		fmt.Fprintf(w, "%s %s\n",
			strconv.FormatFloat(pnt.Value, 'f', -1, 64),
			strconv.FormatFloat(pnt.CumulativeProbPct, 'f', -1, 64))
	}
	return w.Flush()
}
