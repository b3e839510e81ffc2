package models

import "errors"

var (
	// ErrSourceUnavailable signals that the initial fetch or subscription of a
	// source failed and no trustworthy data is available yet. Recoverable by
	// retry; surfaced to callers as a report-unavailable state.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrMalformedRecord marks a raw record missing a required identity field.
	// Such records are dropped and logged, never aborting the batch.
	ErrMalformedRecord = errors.New("malformed record")

	// ErrInvalidFilter rejects a caller-supplied filter before aggregation runs.
	ErrInvalidFilter = errors.New("invalid filter")
)
