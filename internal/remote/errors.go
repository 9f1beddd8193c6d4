package remote

import (
	"errors"
	"fmt"
)

// Common errors returned by repository clients.
var (
	// ErrNetwork indicates a connectivity failure reaching a repository.
	ErrNetwork = errors.New("network error reaching repository")

	// ErrInvalidResponse indicates a response that could not be parsed.
	ErrInvalidResponse = errors.New("invalid repository response")

	// ErrNoDownload indicates that no related repository offers a file
	// download for the record.
	ErrNoDownload = errors.New("no download available")
)

// APIError represents a non-success HTTP status from a repository.
type APIError struct {
	Repo       string
	StatusCode int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API error: HTTP %d", e.Repo, e.StatusCode)
}

// IsNetwork reports whether err is a connectivity failure, as opposed to a
// well-formed negative answer from a repository.
func IsNetwork(err error) bool {
	return errors.Is(err, ErrNetwork)
}
