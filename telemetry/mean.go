package telemetry

import (
	"github.com/pkg/errors"
)

// TimeUnit selects the unit of a mean path length
type TimeUnit uint8

const (
	Seconds TimeUnit = iota
	Milliseconds
)

// ErrInvalidTimeUnit is returned by ParseTimeUnit for unknown names
var ErrInvalidTimeUnit = errors.New("Invalid time unit")

// ParseTimeUnit accepts "seconds" and "milliseconds"
func ParseTimeUnit(s string) (TimeUnit, error) {
	switch s {
	case "seconds":
		return Seconds, nil
	case "milliseconds":
		return Milliseconds, nil
	default:
		return 0, ErrInvalidTimeUnit
	}
}

func (u TimeUnit) String() string {
	switch u {
	case Seconds:
		return "seconds"
	case Milliseconds:
		return "milliseconds"
	default:
		return "unknown"
	}
}

// MeanPathLength sums every value of every record and divides by the
// number of records. Values are seconds; Milliseconds scales by 1000.
func MeanPathLength(records []Values, unit TimeUnit) float64 {
	if len(records) == 0 {
		return 0
	}

	var sum int64
	for i := range records {
		for _, v := range records[i] {
			sum += int64(v)
		}
	}

	mean := float64(sum) / float64(len(records))
	if unit == Milliseconds {
		mean *= 1000
	}
	return mean
}
