package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidFormat signals that an inbound message does not carry the five
// expected semicolon-separated fields.
var ErrInvalidFormat = errors.New("invalid submission format")

// FieldCount is the number of semicolon-separated fields in a raw submission.
const FieldCount = 5

// Submission is a validated homework message, before feedback and persistence.
type Submission struct {
	FullName  string
	Group     string
	TaskType  string
	SeminarNo string
	TaskText  string
}

// ParseSubmission splits raw text on ";" into the five submission fields,
// trimming surrounding whitespace from each. The split is limited to the first
// four delimiters so a task text may itself contain semicolons. Fewer than
// five parts, or any part empty after trimming, is ErrInvalidFormat.
func ParseSubmission(raw string) (*Submission, error) {
	parts := strings.SplitN(raw, ";", FieldCount)
	if len(parts) < FieldCount {
		return nil, fmt.Errorf("%w: expected %d fields, got %d", ErrInvalidFormat, FieldCount, len(parts))
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
		if parts[i] == "" {
			return nil, fmt.Errorf("%w: field %d is empty", ErrInvalidFormat, i+1)
		}
	}
	return &Submission{
		FullName:  parts[0],
		Group:     parts[1],
		TaskType:  parts[2],
		SeminarNo: parts[3],
		TaskText:  parts[4],
	}, nil
}
