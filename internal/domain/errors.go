package domain

import "fmt"

// FetchFailure reports that one location could not be fetched. It is never
// fatal to a run.
type FetchFailure struct {
	Location   string
	StatusCode int // 0 when the request never got a response
	Err        error
}

func (e *FetchFailure) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %q: status %d: %v", e.Location, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %q: %v", e.Location, e.Err)
}

func (e *FetchFailure) Unwrap() error { return e.Err }

// MissingFieldError reports a required field absent from an upstream payload.
type MissingFieldError struct {
	Index int    // position in the batch
	Field string // JSON path, e.g. "main.temp"
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("observation %d: missing required field %q", e.Index, e.Field)
}

// SinkConnectionError reports that the relational sink could not be reached.
type SinkConnectionError struct {
	Addr string
	Err  error
}

func (e *SinkConnectionError) Error() string {
	return fmt.Sprintf("connect to sink %s: %v", e.Addr, e.Err)
}

func (e *SinkConnectionError) Unwrap() error { return e.Err }

// SinkWriteError reports a failed table creation or append.
type SinkWriteError struct {
	Table string
	Rows  int
	Err   error
}

func (e *SinkWriteError) Error() string {
	return fmt.Sprintf("write %d rows to %q: %v", e.Rows, e.Table, e.Err)
}

func (e *SinkWriteError) Unwrap() error { return e.Err }
