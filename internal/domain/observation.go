package domain

import "time"

// LocationList is the ordered set of city names requested in one run.
type LocationList []string

// RawMain holds the "main" block of a current-weather response.
type RawMain struct {
	Temp     *float64 `json:"temp" validate:"required"`
	Humidity *float64 `json:"humidity" validate:"required"`
	Pressure *float64 `json:"pressure" validate:"required"`
}

// RawCondition is one entry of the "weather" array.
type RawCondition struct {
	Description *string `json:"description" validate:"required"`
}

// RawObservation is the decoded response for one location. Fields are pointers
// so that an absent key can be told apart from a zero value. Only the first
// weather condition is read; later entries are not validated.
type RawObservation struct {
	Name    *string        `json:"name" validate:"required"`
	Dt      *float64       `json:"dt" validate:"required"` // epoch seconds, may be fractional
	Main    *RawMain       `json:"main" validate:"required"`
	Weather []RawCondition `json:"weather" validate:"required,min=1"`

	Payload []byte `json:"-"`
}

// ObservationBatch is the Extractor's output: one entry per successfully
// fetched location, in request order.
type ObservationBatch []RawObservation

// ObservationRecord is the normalized row written to the sink.
type ObservationRecord struct {
	City        string    `json:"city"`
	Timestamp   time.Time `json:"timestamp"`
	Temperature float64   `json:"temperature"`
	Humidity    float64   `json:"humidity"`
	Pressure    float64   `json:"pressure"`
	Weather     string    `json:"weather"`
}

// ObservationTable is the Transformer's output, densely ordered from zero.
type ObservationTable []ObservationRecord

// FetchResult is the outcome of fetching a single location. Exactly one of
// Observation or Err is meaningful.
type FetchResult struct {
	Location    string
	Observation RawObservation
	Err         error
}

// OK reports whether the fetch succeeded.
func (r FetchResult) OK() bool {
	return r.Err == nil
}
