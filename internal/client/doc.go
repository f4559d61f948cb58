// Package client implements the Lingopal job client: submitting transcription
// and translation jobs, polling job status until a terminal state, and
// downloading result artifacts.
package client
