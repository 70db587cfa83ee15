// FILE: lixenwraith/nvconfig/dump.go
package nvconfig

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
)

// Dump logs every field of rec, one record per field, on the store's logger.
// It has no effect on rec or on storage.
func (s *ConfigStore) Dump(rec *Record) {
	for _, f := range rec.Fields() {
		s.logger.Info("dump", "field", f.Path, "value", formatValue(f.Value))
	}
}

// WriteTo writes a "path=value" listing of the record, one field per line.
func (r Record) WriteTo(w io.Writer) (int64, error) {
	var buf bytes.Buffer
	for _, f := range r.Fields() {
		fmt.Fprintf(&buf, "%s=%s\n", f.Path, formatValue(f.Value))
	}
	return buf.WriteTo(w)
}

func formatValue(v any) string {
	switch x := v.(type) {
	case [4]byte:
		return markString(x)
	case uint8:
		return strconv.FormatUint(uint64(x), 10)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(v)
	}
}

// markString renders the mark as the C string it is on the node, quoted.
func markString(m [4]byte) string {
	n := bytes.IndexByte(m[:], 0)
	if n < 0 {
		n = len(m)
	}
	return strconv.Quote(string(m[:n]))
}
