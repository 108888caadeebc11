// pkg/cube/aggregate.go
package cube

import (
	"github.com/smart-store/analytics-pipeline/pkg/table"
)

// accumulator folds the non-missing values of one metric column within one
// group. Missing values are ignored by every function; count counts
// present values, not rows.
type accumulator struct {
	count int64 // non-missing values seen
	n     int64 // numeric values folded into sum/min/max
	sum   float64
	min   float64
	max   float64
}

func (a *accumulator) add(v any) {
	if v == nil {
		return
	}
	a.count++
	f, err := table.CoerceFloat64(v)
	if err != nil {
		// Non-numeric metric cell: counted, excluded from arithmetic
		return
	}
	if a.n == 0 || f < a.min {
		a.min = f
	}
	if a.n == 0 || f > a.max {
		a.max = f
	}
	a.n++
	a.sum += f
}

// result produces the aggregate value; an accumulator that saw no numeric
// values yields the missing marker for arithmetic functions and the
// non-missing count for count
func (a *accumulator) result(fn Aggregate) any {
	switch fn {
	case AggCount:
		return a.count
	case AggSum:
		if a.n == 0 {
			return nil
		}
		return a.sum
	case AggMean:
		if a.n == 0 {
			return nil
		}
		return a.sum / float64(a.n)
	case AggMin:
		if a.n == 0 {
			return nil
		}
		return a.min
	case AggMax:
		if a.n == 0 {
			return nil
		}
		return a.max
	default:
		return nil
	}
}
