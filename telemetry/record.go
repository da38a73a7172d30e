package telemetry

// ValuesLen is the fixed number of values in one interaction
const ValuesLen = 10

// Values holds the per-interaction path lengths
type Values = [ValuesLen]int32

// Record is one interaction of an event at a point in time
type Record struct {
	Date   uint64
	Values Values
}

// Store keeps interaction records per event name.
// Implementations must be safe for concurrent use.
type Store interface {
	// StoreEvent records r under name, replacing a record with the same Date
	StoreEvent(name string, r Record)

	// EventInteractions returns the values of every record with
	// from <= Date <= to, ordered by Date
	EventInteractions(name string, from, to uint64) []Values
}
