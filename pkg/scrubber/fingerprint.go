// pkg/scrubber/fingerprint.go
package scrubber

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cast"

	"github.com/smart-store/analytics-pipeline/pkg/table"
)

// rowFingerprint builds a comparison key for row i across all columns in
// table order. Cells of different representational types never collide:
// each value is tagged with a type prefix, and the missing marker has its
// own tag so nil is never confused with "" or zero.
func rowFingerprint(t *table.Table, i int) string {
	var b strings.Builder
	for _, v := range t.Row(i) {
		switch val := v.(type) {
		case nil:
			b.WriteString("_|")
		case string:
			b.WriteString("s:")
			b.WriteString(val)
		case int64:
			b.WriteString("i:")
			b.WriteString(strconv.FormatInt(val, 10))
		case float64:
			b.WriteString("f:")
			b.WriteString(strconv.FormatFloat(val, 'g', -1, 64))
		case time.Time:
			b.WriteString("t:")
			b.WriteString(val.Format(time.RFC3339Nano))
		case bool:
			b.WriteString("b:")
			b.WriteString(strconv.FormatBool(val))
		default:
			b.WriteString(fmt.Sprintf("x:%T:", val))
			b.WriteString(cast.ToString(val))
		}
		b.WriteByte('\x1f')
	}
	return b.String()
}
