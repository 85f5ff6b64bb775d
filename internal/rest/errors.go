package rest

import "fmt"

// APIError is the error type returned for every failed backend call.
//
// Status carries the HTTP status code of the response. Transport-level
// failures (no response obtained at all) use Status 0 so callers can tell
// connectivity problems apart from server rejections.
type APIError struct {
	Status  int
	Message string
	Detail  string
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("network error: %s", e.Message)
	}
	if e.Detail != "" && e.Detail != e.Message {
		return fmt.Sprintf("api error %d: %s (%s)", e.Status, e.Message, e.Detail)
	}
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// IsStatus reports whether err is an *APIError with the given HTTP status.
func IsStatus(err error, status int) bool {
	apiErr, ok := err.(*APIError)
	return ok && apiErr.Status == status
}
