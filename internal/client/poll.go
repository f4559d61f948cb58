package client

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Status is a job status as reported by the API
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusUnknown    Status = "unknown"
)

// ParseStatus maps a wire status string onto the known status set.
// Unrecognized strings map to StatusUnknown and are treated as transient.
func ParseStatus(s string) Status {
	switch Status(s) {
	case StatusPending, StatusProcessing, StatusCompleted, StatusFailed:
		return Status(s)
	default:
		return StatusUnknown
	}
}

// Terminal reports whether no further transition can occur from this status
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// JobStatus is a single observation of a job's state
type JobStatus struct {
	Status   Status
	Progress float64
	Message  string
}

// statusResponse is the status endpoint response
type statusResponse struct {
	Status   string  `json:"status"`
	Progress float64 `json:"progress"`
	Message  string  `json:"message"`
}

// GetJobStatus fetches the current status of a job
func (c *Client) GetJobStatus(ctx context.Context, jobID string) (JobStatus, error) {
	var resp statusResponse
	if err := c.do(ctx, http.MethodGet, "/api/v1/jobs/"+jobID+"/status", "", nil, &resp); err != nil {
		return JobStatus{}, err
	}

	return JobStatus{
		Status:   ParseStatus(resp.Status),
		Progress: resp.Progress,
		Message:  resp.Message,
	}, nil
}

// PollPolicy controls the poll loop: fixed interval, overall wall-clock
// budget, and an optional cap on status calls (0 means unbounded, matching
// the reference behavior of retrying transient errors indefinitely within
// the budget).
type PollPolicy struct {
	Interval    time.Duration
	Timeout     time.Duration
	MaxAttempts int
}

// withDefaults fills in the reference poll policy values
func (p PollPolicy) withDefaults() PollPolicy {
	if p.Interval <= 0 {
		p.Interval = 10 * time.Second
	}
	if p.Timeout <= 0 {
		p.Timeout = 30 * time.Minute
	}
	return p
}

// Outcome is the tri-state result of waiting for a job
type Outcome string

const (
	OutcomeCompleted Outcome = "completed"
	OutcomeFailed    Outcome = "failed"
	OutcomeTimedOut  Outcome = "timed_out"
)

// PollResult describes how a poll loop ended
type PollResult struct {
	JobID   string
	Outcome Outcome
	Message string  // server-supplied message for failed jobs
	Polls   int     // number of status calls issued
	Elapsed time.Duration
	Budget  time.Duration
}

// Err converts a non-success result into its error form. A completed result
// returns nil.
func (r PollResult) Err() error {
	switch r.Outcome {
	case OutcomeFailed:
		return &JobFailedError{JobID: r.JobID, Message: r.Message}
	case OutcomeTimedOut:
		return &JobTimedOutError{JobID: r.JobID, Elapsed: r.Elapsed, Budget: r.Budget}
	default:
		return nil
	}
}

// PollUntilTerminal polls the job status endpoint at a fixed interval until
// the job completes, fails, or the wall-clock budget elapses. Transport
// errors and unrecognized statuses are logged and retried; only a terminal
// status or the budget ends the loop. The returned error is non-nil only for
// context cancellation. Safe for concurrent use across distinct job IDs.
func (c *Client) PollUntilTerminal(ctx context.Context, jobID string, policy PollPolicy) (PollResult, error) {
	policy = policy.withDefaults()

	c.logger.Info("Waiting for job completion",
		slog.String("job_id", jobID),
		slog.Duration("interval", policy.Interval),
		slog.Duration("timeout", policy.Timeout),
	)

	start := time.Now()
	polls := 0

	result := func(outcome Outcome, message string) PollResult {
		elapsed := time.Since(start)
		c.recordOutcome(outcome, elapsed)
		return PollResult{
			JobID:   jobID,
			Outcome: outcome,
			Message: message,
			Polls:   polls,
			Elapsed: elapsed,
			Budget:  policy.Timeout,
		}
	}

	for {
		if time.Since(start) > policy.Timeout {
			c.logger.Warn("Job polling timed out",
				slog.String("job_id", jobID),
				slog.Duration("elapsed", time.Since(start)),
			)
			return result(OutcomeTimedOut, ""), nil
		}

		status, err := c.GetJobStatus(ctx, jobID)
		polls++
		if c.metrics != nil {
			c.metrics.RecordPoll()
		}

		switch {
		case err != nil:
			if ctx.Err() != nil {
				return PollResult{}, ctx.Err()
			}
			// Transient by policy: a single failed poll never aborts the
			// loop, only the wall-clock budget does.
			if c.metrics != nil {
				c.metrics.RecordPollError()
			}
			c.logger.Warn("Status poll failed, retrying",
				slog.String("job_id", jobID),
				slog.String("error", err.Error()),
			)

		case status.Status == StatusCompleted:
			c.logger.Info("Job completed",
				slog.String("job_id", jobID),
				slog.Int("polls", polls),
				slog.Duration("elapsed", time.Since(start)),
			)
			return result(OutcomeCompleted, status.Message), nil

		case status.Status == StatusFailed:
			c.logger.Warn("Job failed",
				slog.String("job_id", jobID),
				slog.String("message", status.Message),
			)
			return result(OutcomeFailed, status.Message), nil

		case status.Status == StatusUnknown:
			c.logger.Warn("Unknown job status, retrying",
				slog.String("job_id", jobID),
			)

		default:
			c.logger.Info("Job in progress",
				slog.String("job_id", jobID),
				slog.String("status", string(status.Status)),
				slog.Float64("progress", status.Progress),
			)
		}

		if policy.MaxAttempts > 0 && polls >= policy.MaxAttempts {
			c.logger.Warn("Job polling attempt budget exhausted",
				slog.String("job_id", jobID),
				slog.Int("polls", polls),
			)
			return result(OutcomeTimedOut, ""), nil
		}

		select {
		case <-ctx.Done():
			return PollResult{}, ctx.Err()
		case <-time.After(policy.Interval):
		}
	}
}

// recordOutcome records the terminal outcome when metrics are enabled
func (c *Client) recordOutcome(outcome Outcome, elapsed time.Duration) {
	if c.metrics == nil {
		return
	}
	switch outcome {
	case OutcomeCompleted:
		c.metrics.RecordJobCompleted(elapsed.Seconds())
	case OutcomeFailed:
		c.metrics.RecordJobFailed(elapsed.Seconds())
	case OutcomeTimedOut:
		c.metrics.RecordJobTimedOut(elapsed.Seconds())
	}
}
