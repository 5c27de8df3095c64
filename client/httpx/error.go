package httpx

import (
	"errors"
	"fmt"
)

// Error is any non-2xx response. Data carries the parsed body for
// programmatic inspection.
type Error struct {
	Status  int
	Message string
	Data    any
}

func (e *Error) Error() string {
	return fmt.Sprintf("http %d: %s", e.Status, e.Message)
}

// StatusOf returns the HTTP status carried by err, or 0 when err is not
// an *Error.
func StatusOf(err error) int {
	var he *Error
	if errors.As(err, &he) {
		return he.Status
	}
	return 0
}
