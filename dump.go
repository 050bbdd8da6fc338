package gcptr

import (
	"io"

	cerrors "github.com/cockroachdb/errors"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
)

// DumpJSON writes a diagnostic snapshot of c's live heap: one object per
// active block with its size and element count, encoded into an in-memory
// buffer and then written to w in a single Write call. This is
// output-only diagnostics, never read back by this module.
func DumpJSON(w io.Writer, c *Collector) error {
	writer := jwriter.NewWriter()

	arr := writer.Array()
	for _, b := range c.Snapshot() {
		if !b.IsActive() {
			continue
		}
		obj := arr.Object()
		obj.Name("Handle").Int(int(b.Handle()))
		obj.Name("Elements").Int(b.N())
		obj.Name("Bytes").Int(b.Size())
		obj.End()
	}
	arr.End()

	if err := writer.Error(); err != nil {
		return cerrors.Wrap(err, "gcptr: dump heap")
	}
	_, err := w.Write(writer.Bytes())
	return err
}
