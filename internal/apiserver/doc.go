// Package apiserver implements an in-memory mock of the Lingopal job API for
// local development and end-to-end tests. Jobs advance through the pending,
// processing and completed statuses as their status endpoint is polled.
package apiserver
