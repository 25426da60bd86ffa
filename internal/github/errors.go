package github

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/go-github/v45/github"
)

// FetchError reports a request the API rejected, or one that never got a
// response (StatusCode 0).
type FetchError struct {
	Path       string
	StatusCode int
	Body       string
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("request %s failed: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("request %s failed with status %d: %s", e.Path, e.StatusCode, e.Body)
}

func (e *FetchError) Unwrap() error { return e.Err }

// IsNotFound reports whether err is a FetchError for a 404 response.
func IsNotFound(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe) && fe.StatusCode == http.StatusNotFound
}

func newFetchError(path string, resp *github.Response, err error) *FetchError {
	fe := &FetchError{Path: path, Err: err}
	if resp != nil && resp.Response != nil {
		fe.StatusCode = resp.StatusCode
		// go-github re-populates the body after decoding the error.
		if resp.Body != nil {
			if data, readErr := io.ReadAll(resp.Body); readErr == nil {
				fe.Body = strings.TrimSpace(string(data))
			}
		}
	}
	if fe.Body == "" {
		var er *github.ErrorResponse
		if errors.As(err, &er) {
			fe.Body = er.Message
		}
	}
	return fe
}
