package service

import "errors"

var (
	// ErrFeedbackUnavailable signals that the completion service failed, timed
	// out, or returned an empty critique. The submission is not recorded.
	ErrFeedbackUnavailable = errors.New("feedback unavailable")

	// ErrAccessDenied signals a /collect request from an identity outside the
	// configured allow-list. No store read happens.
	ErrAccessDenied = errors.New("access denied")

	// ErrNoRecordsToday signals that a collection matched zero rows for the
	// current UTC day. No document is produced.
	ErrNoRecordsToday = errors.New("no records today")
)
