package client

import (
	"errors"
	"fmt"
	"time"
)

// Source argument errors, reported before any network I/O is attempted.
var (
	ErrSourceConflict = errors.New("provide either a file path or a presigned URL, not both")
	ErrSourceMissing  = errors.New("either a file path or a presigned URL must be provided")
)

// APIError is a structured response indicating a non-2xx HTTP response.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api request failed: status=%d body=%s", e.StatusCode, e.Body)
}

// JobFailedError indicates a job reached the terminal failed status.
// Message carries the server-supplied failure message.
type JobFailedError struct {
	JobID   string
	Message string
}

func (e *JobFailedError) Error() string {
	return fmt.Sprintf("job %s failed: %s", e.JobID, e.Message)
}

// JobTimedOutError indicates the local polling budget elapsed before the job
// reached a terminal status. The remote job may still be running; there is no
// cancellation capability in the remote contract.
type JobTimedOutError struct {
	JobID   string
	Elapsed time.Duration
	Budget  time.Duration
}

func (e *JobTimedOutError) Error() string {
	return fmt.Sprintf("job %s timed out after %s (budget %s); remote outcome unknown",
		e.JobID, e.Elapsed.Round(time.Second), e.Budget)
}

// DownloadError indicates a single result artifact could not be fetched or
// written. Other artifacts in the same batch are unaffected.
type DownloadError struct {
	FileType string
	URL      string
	Err      error
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("download of %s artifact failed: %v", e.FileType, e.Err)
}

func (e *DownloadError) Unwrap() error {
	return e.Err
}
