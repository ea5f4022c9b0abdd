package remote

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/nikolayk812/lpg-cart/internal/port"
)

var ErrUnauthenticated = errors.New("no credential available")

// Problem is an RFC 7807 problem details body returned by the order-service.
type Problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// StatusError reports a non-2xx answer.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Problem    *Problem
}

func (e *StatusError) Error() string {
	msg := http.StatusText(e.StatusCode)
	if e.Problem != nil {
		switch {
		case e.Problem.Detail != "":
			msg = e.Problem.Detail
		case e.Problem.Title != "":
			msg = e.Problem.Title
		}
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.StatusCode, msg)
}

// Is lets callers match port.ErrNotFound and port.ErrRejected without importing this package.
func (e *StatusError) Is(target error) bool {
	switch target {
	case port.ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case port.ErrRejected:
		return e.StatusCode >= http.StatusBadRequest && e.StatusCode < http.StatusInternalServerError &&
			e.StatusCode != http.StatusUnauthorized &&
			e.StatusCode != http.StatusRequestTimeout &&
			e.StatusCode != http.StatusTooManyRequests
	default:
		return false
	}
}

// IsRetryable reports whether err may succeed if the same call is repeated later:
// transport failures, 5xx, 408 and 429. Other 4xx answers are final.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		return !errors.Is(err, ErrUnauthenticated)
	}
	switch {
	case statusErr.StatusCode >= http.StatusInternalServerError:
		return true
	case statusErr.StatusCode == http.StatusRequestTimeout, statusErr.StatusCode == http.StatusTooManyRequests:
		return true
	default:
		return false
	}
}
