// Package pipeline orchestrates the transcribe-and-translate flow: submit a
// transcription, wait for it, download its artifacts, feed the resulting
// subtitle file into a translation job, wait again, and download the
// translated files.
package pipeline
