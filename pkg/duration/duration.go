package duration

import (
	"encoding/json"
	"fmt"
	"time"
)

// Duration :
// A wrapper around the standard library duration to provide
// custom `JSON` marshalling so that it can support something
// else than nanoseconds. It is typically used in the answers
// produced by the server to report remaining build, research
// or flight times in a human readable way.
// This element extends the behavior provided by the standard
// `time.Duration` object.
type Duration struct {
	time.Duration
}

// ErrInvalidInput :
// Indicates that the value provided as input cannot be
// unmarshalled into a valid duration.
var ErrInvalidInput = fmt.Errorf("could not unmarshal value to duration")

// NewDuration :
// Creates a new duration from a base time.Duration.
//
// The `t` defines the wrapped duration.
//
// Returns the created duration.
func NewDuration(t time.Duration) Duration {
	return Duration{
		t,
	}
}

// MarshalJSON :
// Implementation of the marshaller interface to be able to
// use this object out-of-the-box with the `encoding/json`
// package provided by the standard library.
//
// Returns the marshalled bytes corresponding to this object
// along with any errors.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON :
// Second facet of the marshaller interface which allows to
// extract the duration from raw bytes. Both numeric values
// (interpreted as nanoseconds) and duration strings (such
// as "30s") are supported.
//
// The `b` defines the bytes to unmarshal.
//
// Returns any error.
func (d *Duration) UnmarshalJSON(b []byte) error {
	// Unmarshal the content using the base encoder. We will
	// then detect which actual datatype is represented by
	// the input bytes and convert it accordingly.
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		d.Duration = time.Duration(value)
		return nil
	case string:
		var err error
		d.Duration, err = time.ParseDuration(value)
		if err != nil {
			return err
		}
		return nil
	default:
		return ErrInvalidInput
	}
}
