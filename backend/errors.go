package backend

import (
	"errors"
	"fmt"
)

// NetworkError is a failed call to the backend: transport failure or non-2xx status.
type NetworkError struct {
	Op      string
	URL     string
	Status  int
	Message string
	Err     error
}

func (e *NetworkError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
	case e.Message != "":
		return fmt.Sprintf("%s %s: status %d: %s", e.Op, e.URL, e.Status, e.Message)
	default:
		return fmt.Sprintf("%s %s: status %d", e.Op, e.URL, e.Status)
	}
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ParseError is a payload that does not satisfy the content contract.
type ParseError struct {
	ID     string
	Field  string
	Reason string
}

func (e *ParseError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("content: %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("content %s: %s: %s", e.ID, e.Field, e.Reason)
}

// IsNetwork reports whether err is, or wraps, a NetworkError.
func IsNetwork(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

// IsParse reports whether err is, or wraps, a ParseError.
func IsParse(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}
