package domain

import "errors"

var (
	// ErrNotFound marks an empty result: no address, no match.
	ErrNotFound = errors.New("not found")
	// ErrMalformedResponse marks a payload missing the fields we rely on.
	ErrMalformedResponse = errors.New("malformed response")
	// ErrCancelled marks a request superseded before it completed.
	ErrCancelled = errors.New("request cancelled")
)
