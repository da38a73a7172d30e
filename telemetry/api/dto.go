package api

import (
	"math"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"

	"github.com/searchktools/fast-telemetry/telemetry"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// InteractionEventDTO is the body of POST /paths/{event}
type InteractionEventDTO struct {
	Date   *uint64 `json:"date"`
	Values []int32 `json:"values"`
}

// MeanLengthQueryDTO is the body of GET /paths/{event}/meanLength
type MeanLengthQueryDTO struct {
	ResultUnit     *string `json:"resultUnit"`
	StartTimestamp *uint64 `json:"startTimestamp,omitempty"`
	EndTimestamp   *uint64 `json:"endTimestamp,omitempty"`
}

// MeanLengthDTO is the reply of GET /paths/{event}/meanLength
type MeanLengthDTO struct {
	Mean float64 `json:"mean"`
}

var (
	errMissingDate = errors.New("Missing field: date")
	errMissingUnit = errors.New("Missing field: resultUnit")
	errInvalidLen  = errors.New("Invalid values len")
	errNoEventName = errors.New("No event name")
	errNotAnObject = errors.New("Body is not a JSON object")
)

// decodeObject rejects bodies that are not a single JSON object
func decodeObject(body []byte, v any) error {
	if !json.Valid(body) {
		return errors.New("Malformed JSON body")
	}
	if json.Get(body).ValueType() != jsoniter.ObjectValue {
		return errNotAnObject
	}
	return json.Unmarshal(body, v)
}

// Record converts the DTO into a store record
func (d *InteractionEventDTO) Record() (telemetry.Record, error) {
	if d.Date == nil {
		return telemetry.Record{}, errMissingDate
	}
	if len(d.Values) != telemetry.ValuesLen {
		return telemetry.Record{}, errInvalidLen
	}

	r := telemetry.Record{Date: *d.Date}
	copy(r.Values[:], d.Values)
	return r, nil
}

// MeanLengthQuery is a validated mean-length request
type MeanLengthQuery struct {
	Unit  telemetry.TimeUnit
	Start uint64
	End   uint64
}

// Query validates the DTO and applies the timestamp defaults
func (d *MeanLengthQueryDTO) Query() (MeanLengthQuery, error) {
	if d.ResultUnit == nil {
		return MeanLengthQuery{}, errMissingUnit
	}
	unit, err := telemetry.ParseTimeUnit(*d.ResultUnit)
	if err != nil {
		return MeanLengthQuery{}, err
	}

	q := MeanLengthQuery{Unit: unit, Start: 0, End: math.MaxUint64}
	if d.StartTimestamp != nil {
		q.Start = *d.StartTimestamp
	}
	if d.EndTimestamp != nil {
		q.End = *d.EndTimestamp
	}
	return q, nil
}
