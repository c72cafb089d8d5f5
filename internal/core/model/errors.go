package model

import (
	"errors"
	"fmt"
)

var (
	ErrRoomNotFound     = errors.New("room not found")
	ErrNoCandidates     = errors.New("no candidate locations to compare against")
	ErrMalformedSample  = errors.New("malformed fingerprint sample")
	ErrStoreUnavailable = errors.New("room store unavailable")
)

// StoreError reports a storage failure that is not a timeout or connectivity problem.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("room store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
