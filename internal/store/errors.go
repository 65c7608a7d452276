package store

import "errors"

var (
	// ErrItemNotFound is returned by GetItem and UpdateItem when no item
	// exists at the requested key.
	ErrItemNotFound = errors.New("store: item not found")

	// ErrConditionFailed is returned by UpdateItem when the stored item no
	// longer matches the caller's condition attributes. Callers doing a
	// read-modify-write should re-read and retry.
	ErrConditionFailed = errors.New("store: condition failed")

	// ErrUnknownIndex is returned by Query for an unrecognized index name.
	ErrUnknownIndex = errors.New("store: unknown index")
)
