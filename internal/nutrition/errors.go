package nutrition

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyQuery indicates the query was blank after trimming. No request
	// is made.
	ErrEmptyQuery = errors.New("please enter a food item")

	// ErrFetch indicates the nutrition service could not be reached or
	// answered with a non-success status.
	ErrFetch = errors.New("failed to fetch data")
)

// FetchError carries the detail behind an ErrFetch.
type FetchError struct {
	StatusCode int // 0 when the request never got a response
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d", ErrFetch, e.StatusCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", ErrFetch, e.Err)
	}
	return ErrFetch.Error()
}

func (e *FetchError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrFetch}
	}
	return []error{ErrFetch, e.Err}
}
