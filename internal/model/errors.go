package model

import "fmt"

// HTTPError wraps a non-success HTTP status so callers can tell a transport
// failure apart from a structural parse failure when logging.
type HTTPError struct {
	StatusCode int
	URL        string
	Err        error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("HTTP %d from %s: %v", e.StatusCode, e.URL, e.Err)
	}
	return fmt.Sprintf("HTTP %d from %s", e.StatusCode, e.URL)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}
