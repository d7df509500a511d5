package listsync

import (
	"errors"
	"fmt"
)

var (
	// ErrStale marks a response for a request that has since been superseded
	// or invalidated. It is discarded, never shown.
	ErrStale = errors.New("listsync: stale response discarded")

	ErrMutationInFlight = errors.New("listsync: a mutation for this record is already in flight")
	ErrRecordNotFound   = errors.New("listsync: record is not cached")
)

// NetworkFailure is a transport-level failure: the request never produced an
// HTTP response.
type NetworkFailure struct {
	Op  string
	Err error
}

func (e *NetworkFailure) Error() string {
	return fmt.Sprintf("%s: network failure: %v", e.Op, e.Err)
}

func (e *NetworkFailure) Unwrap() error {
	return e.Err
}

// ServerRejection is a non-2xx response. It is never read as an empty page.
type ServerRejection struct {
	Status  int
	Message string
}

func (e *ServerRejection) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server rejected request with status %d", e.Status)
	}
	return fmt.Sprintf("server rejected request with status %d: %s", e.Status, e.Message)
}

// IsStatus reports whether err is a ServerRejection carrying status.
func IsStatus(err error, status int) bool {
	var rej *ServerRejection
	return errors.As(err, &rej) && rej.Status == status
}
