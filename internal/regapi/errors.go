package regapi

import (
	"errors"
	"fmt"
)

// ErrRejected is returned when create_user answers false instead of an account.
var ErrRejected = errors.New("registration rejected by server")

// ErrNoLastNames is returned when get_last_names offers nothing to pick from.
var ErrNoLastNames = errors.New("no last names available")

// TransportError reports an unreachable endpoint or a non-success status.
type TransportError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("request to %s failed with status %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("request to %s failed: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// DecodeError reports a response body that is not LLSD of the expected shape.
type DecodeError struct {
	URL string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding response from %s: %v", e.URL, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
