package storage

import (
	"errors"
)

var (
	// ErrNotFound is returned when no record exists for the requested key.
	// Backends translate their native not-found errors (e.g. badger.ErrKeyNotFound
	// or fs.ErrNotExist) into this error.
	ErrNotFound = errors.New("key not found")

	ErrAlreadyExists = errors.New("key already exists")

	// ErrIncompleteCommit is returned when an update would create a record
	// without the full approve/salt/commit hash triple, or would replace only
	// part of that triple.
	ErrIncompleteCommit = errors.New("commit record requires approve, salt and commit hash together")
)
