package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCount marks a count field that is not a non-negative integer.
	ErrInvalidCount = errors.New("invalid count")
	// ErrInvalidTimestamp marks a timestamp that does not match d/M/yyyy H:mm.
	ErrInvalidTimestamp = errors.New("invalid timestamp")
	// ErrOutOfOrder marks a row whose timestamp is not after the previous row's.
	ErrOutOfOrder = errors.New("timestamp out of order")
)

// FeedParseError reports a well-formed row (enough fields) whose content could
// not be parsed. It aborts the whole feed.
type FeedParseError struct {
	Line  int // 1-based, header is line 1
	Field string
	Value string
	Err   error
}

func (e *FeedParseError) Error() string {
	return fmt.Sprintf("parse feed line %d: field %s %q: %v", e.Line, e.Field, e.Value, e.Err)
}

func (e *FeedParseError) Unwrap() error { return e.Err }

// MergeError reports that the weather series does not line up with the days.
type MergeError struct {
	Days         int
	Observations int
}

func (e *MergeError) Error() string {
	return fmt.Sprintf("merge weather: %d days but %d observations", e.Days, e.Observations)
}
