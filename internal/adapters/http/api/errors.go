package api

import (
	"errors"
	"net/http"

	reportqueue "github.com/okian/teacheval/internal/adapters/mq/queue"
	"github.com/okian/teacheval/internal/adapters/repository"
	"github.com/okian/teacheval/internal/domain/model"
)

// Sentinel kinds for API errors.
var (
	ErrRouteNotFound = errors.New("route not found")
	ErrReload        = errors.New("catalog reload failed")
)

// Error records the handler operation that failed, the kind of failure and
// the underlying cause.
type Error struct {
	Op   string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	return e.Op + ": " + e.message()
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.Kind != nil {
		out = append(out, e.Kind)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

// message is the text returned to clients; the operation stays in logs.
func (e *Error) message() string {
	switch {
	case e.Kind != nil && e.Err != nil:
		return e.Kind.Error() + ": " + e.Err.Error()
	case e.Err != nil:
		return e.Err.Error()
	case e.Kind != nil:
		return e.Kind.Error()
	default:
		return "unknown error"
	}
}

// NewKind returns an error of the given kind with no further cause.
func NewKind(op string, kind error) error {
	return &Error{Op: op, Kind: kind}
}

// WrapKind classifies err under kind.
func WrapKind(op string, kind, err error) error {
	return &Error{Op: op, Kind: kind, Err: err}
}

// Wrap attaches op to err and leaves the classification to err itself.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Err: err}
}

// statusFor maps a service error to its HTTP status and response code.
// Validation failures are reported as not found, like unknown teachers.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, ErrRouteNotFound),
		errors.Is(err, model.ErrNotFound),
		errors.Is(err, model.ErrValidation):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, reportqueue.ErrQueueFull):
		return http.StatusTooManyRequests, "backpressure"
	case errors.Is(err, repository.ErrNotLoaded):
		return http.StatusServiceUnavailable, "catalog_not_loaded"
	case errors.Is(err, reportqueue.ErrClosed):
		return http.StatusServiceUnavailable, "unavailable"
	case errors.Is(err, ErrReload):
		return http.StatusInternalServerError, "reload_failed"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
