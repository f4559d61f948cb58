// Package streams implements the one-shot live stream start and schedule
// calls of the Lingopal streaming API. These are independent of the job
// submit/poll/download flow.
package streams
