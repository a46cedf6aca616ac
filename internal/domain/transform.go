package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report JSON names so errors read as payload paths ("main.temp").
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ParseObservation decodes a current-weather response body. It does not check
// for required fields; that happens in NormalizeObservation so that absent
// fields surface as MissingFieldError at transform time.
func ParseObservation(body []byte) (RawObservation, error) {
	var obs RawObservation
	if err := json.Unmarshal(body, &obs); err != nil {
		return RawObservation{}, fmt.Errorf("parse observation: %w", err)
	}
	obs.Payload = body
	return obs, nil
}

// NormalizeObservation projects a RawObservation into its tabular form.
// index is the observation's position in the batch and is only used for
// error reporting.
func NormalizeObservation(index int, obs RawObservation) (ObservationRecord, error) {
	if err := validate.Struct(obs); err != nil {
		return ObservationRecord{}, missingField(index, "", err)
	}
	if err := validate.Struct(obs.Weather[0]); err != nil {
		return ObservationRecord{}, missingField(index, "weather[0].", err)
	}

	return ObservationRecord{
		City:        *obs.Name,
		Timestamp:   epochUTC(*obs.Dt),
		Temperature: *obs.Main.Temp,
		Humidity:    *obs.Main.Humidity,
		Pressure:    *obs.Main.Pressure,
		Weather:     *obs.Weather[0].Description,
	}, nil
}

// TransformBatch normalizes every observation and removes exact duplicates.
// A single invalid observation fails the whole batch; no partial table is
// returned.
func TransformBatch(batch ObservationBatch) (ObservationTable, error) {
	table := make(ObservationTable, 0, len(batch))
	for i, obs := range batch {
		rec, err := NormalizeObservation(i, obs)
		if err != nil {
			return nil, err
		}
		table = append(table, rec)
	}
	return Dedupe(table), nil
}

// epochUTC converts epoch seconds to a UTC time, keeping any fractional part
// to the nanosecond.
func epochUTC(sec float64) time.Time {
	whole := math.Floor(sec)
	nsec := int64(math.Round((sec - whole) * 1e9))
	return time.Unix(int64(whole), nsec).UTC()
}

// recordKey is the comparable identity of a record. time.Time is reduced to
// its instant so that equal times in different locations compare equal.
type recordKey struct {
	city        string
	unixNano    int64
	temperature float64
	humidity    float64
	pressure    float64
	weather     string
}

func keyOf(r ObservationRecord) recordKey {
	return recordKey{
		city:        r.City,
		unixNano:    r.Timestamp.UnixNano(),
		temperature: r.Temperature,
		humidity:    r.Humidity,
		pressure:    r.Pressure,
		weather:     r.Weather,
	}
}

// Dedupe returns the table with exact duplicates removed, keeping the first
// occurrence of each row. Applying it twice yields the same table.
func Dedupe(table ObservationTable) ObservationTable {
	seen := make(map[recordKey]struct{}, len(table))
	out := make(ObservationTable, 0, len(table))
	for _, rec := range table {
		k := keyOf(rec)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, rec)
	}
	return out
}

// missingField converts the first validation failure into a MissingFieldError.
// prefix is the JSON path of the validated struct within the payload.
func missingField(index int, prefix string, err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("observation %d: %w", index, err)
	}

	fe := verrs[0]
	// Namespace is "RawObservation.main.temp"; drop the root type name.
	_, path, _ := strings.Cut(fe.Namespace(), ".")
	path = prefix + path
	if fe.Tag() == "min" && path == "weather" {
		// An empty weather array has no description to read.
		path = "weather[0].description"
	}
	return &MissingFieldError{Index: index, Field: path}
}
