package output

import (
	"bufio"
	"fmt"
	"io"

	"github.com/mrzor/tracelog/internal/tracelog"
)

// WriteEvents prints the decoded events of tl, one per line, prefixed with
// their index.
func WriteEvents(w io.Writer, tl *tracelog.TraceLog) error {
	bw := bufio.NewWriter(w)
	for i, event := range tl.Events {
		if _, err := fmt.Fprintf(bw, "%5d  %s\n", i, event); err != nil {
			return err
		}
	}
	return bw.Flush()
}
