package tracker

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/go-github/v68/github"
	"github.com/pkg/errors"
)

// FetchFailedError is returned when the tracker answers with a non-success status
type FetchFailedError struct {
	StatusCode int
	What       string
}

func (e *FetchFailedError) Error() string {
	return fmt.Sprintf("Fetching %s failed with status %d", e.What, e.StatusCode)
}

// ParseFailedError is returned when a tracker answer can't be decoded or is missing
// required fields
type ParseFailedError struct {
	What   string
	Reason string
}

func (e *ParseFailedError) Error() string {
	return fmt.Sprintf("Parsing %s failed: %s", e.What, e.Reason)
}

// classify converts go-github errors to a FetchFailedError or ParseFailedError when
// possible and wraps anything else
func classify(err error, what string) error {
	if status, ok := statusOf(err); ok {
		return &FetchFailedError{StatusCode: status, What: what}
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) || errors.Is(err, io.ErrUnexpectedEOF) {
		return &ParseFailedError{What: what, Reason: err.Error()}
	}

	return errors.Wrapf(err, "Error fetching %s", what)
}

// statusOf returns the http status carried by a go-github error
func statusOf(err error) (status int, ok bool) {
	var resp *http.Response

	var errResp *github.ErrorResponse
	var rateErr *github.RateLimitError
	var abuseErr *github.AbuseRateLimitError
	var acceptedErr *github.AcceptedError

	switch {
	case errors.As(err, &errResp):
		resp = errResp.Response
	case errors.As(err, &rateErr):
		resp = rateErr.Response
	case errors.As(err, &abuseErr):
		resp = abuseErr.Response
	case errors.As(err, &acceptedErr):
		return http.StatusAccepted, true
	}

	if resp == nil {
		return 0, false
	}

	return resp.StatusCode, true
}
