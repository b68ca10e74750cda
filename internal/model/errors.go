package model

import "errors"

var (
	// ErrMalformedRecord is returned when a CSV row has the wrong column count
	// or a numeric column that cannot be coerced to an integer.
	ErrMalformedRecord = errors.New("malformed record")

	// ErrMissingHeader is returned when a CSV fragment is empty or does not
	// start with the takeout header row.
	ErrMissingHeader = errors.New("missing header")

	// ErrLinkMismatch is returned when a record and a tag set disagree on
	// album or title after backfill.
	ErrLinkMismatch = errors.New("tag and record are not the same song")
)
