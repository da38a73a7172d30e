package telemetry

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeUnit(t *testing.T) {
	unit, err := ParseTimeUnit("seconds")
	require.NoError(t, err)
	assert.Equal(t, Seconds, unit)

	unit, err = ParseTimeUnit("milliseconds")
	require.NoError(t, err)
	assert.Equal(t, Milliseconds, unit)

	for _, bad := range []string{"", "Seconds", "ms", "minutes"} {
		_, err = ParseTimeUnit(bad)
		assert.True(t, errors.Is(err, ErrInvalidTimeUnit), bad)
	}
}

func TestTimeUnitString(t *testing.T) {
	assert.Equal(t, "seconds", Seconds.String())
	assert.Equal(t, "milliseconds", Milliseconds.String())
	assert.Equal(t, "unknown", TimeUnit(9).String())
}

func TestMeanPathLength(t *testing.T) {
	tests := []struct {
		name    string
		records []Values
		unit    TimeUnit
		want    float64
	}{
		{"empty", nil, Seconds, 0},
		{"empty millis", []Values{}, Milliseconds, 0},
		{"one record", []Values{values(1)}, Seconds, 10},
		{"one record millis", []Values{values(1)}, Milliseconds, 10000},
		{"two records", []Values{values(1), values(2)}, Seconds, 15},
		{"negative values", []Values{values(-1), values(3)}, Seconds, 10},
		{"uneven", []Values{{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}}, Seconds, 55},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, MeanPathLength(tt.records, tt.unit), 1e-9)
		})
	}
}

// Mean of a union scales back to the per-part sums
func TestMeanPathLength_Additive(t *testing.T) {
	a := []Values{values(1), values(4)}
	b := []Values{values(2), values(9), values(5)}
	union := append(append([]Values{}, a...), b...)

	weighted := (MeanPathLength(a, Seconds)*float64(len(a)) +
		MeanPathLength(b, Seconds)*float64(len(b))) / float64(len(union))

	assert.InDelta(t, weighted, MeanPathLength(union, Seconds), 1e-9)
}
