package model

import "errors"

var (
	// ErrNotFound means a blob or an entry is absent.
	ErrNotFound = errors.New("not found")
	// ErrIO wraps file read, write and delete failures.
	ErrIO = errors.New("i/o failure")
	// ErrSerialization means the persisted aggregate is corrupt.
	ErrSerialization = errors.New("corrupt history")
	// ErrInvalidIndex means a caller supplied a malformed id.
	ErrInvalidIndex = errors.New("invalid index")
	// ErrInsufficientHistory means last or second-last was asked of a too short history.
	ErrInsufficientHistory = errors.New("insufficient history")
	// ErrEmptyInput means store was handed nothing worth keeping.
	ErrEmptyInput = errors.New("empty input")
)
