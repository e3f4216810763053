package domain

import "errors"

var (
	// ErrSourceUnavailable: the breach source could not be reached or
	// returned an unusable response. Fatal for the run.
	ErrSourceUnavailable = errors.New("breach source unavailable")

	// ErrSourceIndeterminate: a single lookup returned an ambiguous
	// status. The email is skipped for the run, never reported clean.
	ErrSourceIndeterminate = errors.New("breach source indeterminate")

	// ErrStorageCorrupt: a durable store could not be read back.
	ErrStorageCorrupt = errors.New("storage corrupt")

	// ErrNotificationFailed: delivery failed after durable state was
	// already written; dedup entries and watermark are never rolled back.
	ErrNotificationFailed = errors.New("notification failed")
)
