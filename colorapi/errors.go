package colorapi

import (
	"fmt"
)

// FetchFailedError is returned when the color api answers with a non-success status
type FetchFailedError struct {
	StatusCode int
	Code       string
}

func (e *FetchFailedError) Error() string {
	return fmt.Sprintf("Fetching color #%s failed with status %d", e.Code, e.StatusCode)
}

// ParseFailedError is returned when a color api answer can't be decoded or is missing
// required fields
type ParseFailedError struct {
	Code   string
	Reason string
}

func (e *ParseFailedError) Error() string {
	return fmt.Sprintf("Parsing color #%s failed: %s", e.Code, e.Reason)
}
