package feed

import (
	"errors"
	"fmt"
	"strings"
)

// ErrFeedNotFound is returned when the feed file does not exist at the
// configured path. No import transaction is opened in that case.
var ErrFeedNotFound = errors.New("feed file not found")

// MalformedFeedError is returned when the feed content is not well-formed
// XML even after sanitization.
type MalformedFeedError struct {
	Path string
	Err  error
}

func (e *MalformedFeedError) Error() string {
	return fmt.Sprintf("malformed feed %s: %v", e.Path, e.Err)
}

func (e *MalformedFeedError) Unwrap() error {
	return e.Err
}

// InvalidRecordError reports a record missing one or more required fields.
// It is a per-record defect: the record is skipped and the batch continues.
type InvalidRecordError struct {
	MissingFields []string
}

func (e *InvalidRecordError) Error() string {
	return fmt.Sprintf("record missing required fields: %s", strings.Join(e.MissingFields, ","))
}

// InvalidPriceError reports a price string that is not decimal-parseable
// after cleanup. Per-record defect, never fatal to the batch.
type InvalidPriceError struct {
	Raw string
}

func (e *InvalidPriceError) Error() string {
	return fmt.Sprintf("invalid price value %q", e.Raw)
}
