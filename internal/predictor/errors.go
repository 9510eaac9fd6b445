package predictor

import (
	"errors"
	"fmt"
)

// errHTTPClientUnavailable is returned, wrapped in a FetchError, when a
// fetch is attempted with no HTTP client configured.
var errHTTPClientUnavailable = errors.New("http client not available")

// FetchError reports a failure to retrieve image bytes from a URL, either
// a transport problem or a non-2xx response.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetching %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetching %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// DecodeError reports bytes that were retrieved but could not be decoded
// as an image.
type DecodeError struct {
	URL string
	Err error
}

func (e *DecodeError) Error() string {
	if e.URL == "" {
		return fmt.Sprintf("decoding image: %v", e.Err)
	}
	return fmt.Sprintf("decoding image from %s: %v", e.URL, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
