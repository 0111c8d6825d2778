package ports

import (
	"errors"
	"fmt"
)

// ErrRouteTimeout marks a provider call that hit its own deadline while the
// caller's context was still live. Distinguished from caller cancellation by
// identity, not by inspecting the context.
var ErrRouteTimeout = errors.New("route provider timed out")

// RouteServiceError is a recoverable failure of the external routing service:
// a non-success HTTP status, an error code in the body, or an empty route set.
type RouteServiceError struct {
	Status int
	Detail string
}

func (e *RouteServiceError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("route service error (HTTP %d): %s", e.Status, e.Detail)
	}
	return "route service error: " + e.Detail
}

// RecoverableRouteError reports whether a provider failure should be recorded
// against one combination rather than abort a bulk run.
func RecoverableRouteError(err error) bool {
	var se *RouteServiceError
	return errors.Is(err, ErrRouteTimeout) || errors.As(err, &se)
}
