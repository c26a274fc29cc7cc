package trafficgen

// export.go holds the connection-matrix representation of a flow set,
// the text format downstream simulators consume:
//
//	Nodes <hostCount>
//	Connections <flowCount>
//	<src>-><dst> id <flowID> start <startTime> size <sizeBytes>
//
// with flow ids starting at 1 and following sorted order

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// connectionMatrixLine formats one flow for the connection matrix,
// e.g. "14->9 id 3 start 0.2 size 1000000"
func connectionMatrixLine(flow Flow, flowID int) string {
	return fmt.Sprintf("%d->%d id %d start %v size %d",
		flow.SrcIdx, flow.DstIdx, flowID, flow.StartTime, flow.SizeBytes)
}

// ExportFlows writes the host count and flow list to w in connection
// matrix form.  The flow list is expected in its final sorted order
func ExportFlows(w io.Writer, numHosts int, flowList []Flow) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "Nodes %d\nConnections %d\n", numHosts, len(flowList))
	for idx, flow := range flowList {
		fmt.Fprintln(bw, connectionMatrixLine(flow, idx+1))
	}
	return bw.Flush()
}

// ExportFlowsToFile stores the connection matrix in the named file
func ExportFlowsToFile(filename string, numHosts int, flowList []Flow) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()
	return ExportFlows(f, numHosts, flowList)
}

// ReadFlowFile parses a connection matrix file back into a host count
// and flow list, e.g. to replay a stored flow set
func ReadFlowFile(filename string) (int, []Flow, error) {
	f, err := os.Open(filename)
	if err != nil {
		return 0, nil, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)

	numHosts, err := readHeaderLine(scanner, filename, "Nodes")
	if err != nil {
		return 0, nil, err
	}
	numFlows, err := readHeaderLine(scanner, filename, "Connections")
	if err != nil {
		return 0, nil, err
	}

	flowList := make([]Flow, 0, numFlows)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if len(line) == 0 {
			continue
		}
		var flow Flow
		var flowID int
		_, serr := fmt.Sscanf(line, "%d->%d id %d start %g size %d",
			&flow.SrcIdx, &flow.DstIdx, &flowID, &flow.StartTime, &flow.SizeBytes)
		if serr != nil {
			return 0, nil, fmt.Errorf("%s: bad connection line %q: %w", filename, line, serr)
		}
		flowList = append(flowList, flow)
	}
	if serr := scanner.Err(); serr != nil {
		return 0, nil, serr
	}
	if len(flowList) != numFlows {
		return 0, nil, fmt.Errorf("%s: header promises %d connections, file holds %d",
			filename, numFlows, len(flowList))
	}
	return numHosts, flowList, nil
}

// readHeaderLine consumes one "<keyword> <count>" header line
func readHeaderLine(scanner *bufio.Scanner, filename, keyword string) (int, error) {
	if !scanner.Scan() {
		return 0, fmt.Errorf("%s: missing %s header", filename, keyword)
	}
	var count int
	_, err := fmt.Sscanf(scanner.Text(), keyword+" %d", &count)
	if err != nil {
		return 0, fmt.Errorf("%s: bad %s header %q: %w", filename, keyword, scanner.Text(), err)
	}
	return count, nil
}
