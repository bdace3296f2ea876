package feedsync

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrFetchFailed        = errors.New("feedsync: feed fetch failed")
	ErrFeedInvalid        = errors.New("feedsync: invalid feed document")
	ErrMappingFailed      = errors.New("feedsync: product mapping failed")
	ErrPersistenceFailed  = errors.New("feedsync: product persistence failed")
	ErrRunAborted         = errors.New("feedsync: sync run aborted")
	ErrSyncAlreadyRunning = errors.New("feedsync: sync already running")
	ErrUnknownFormat      = errors.New("feedsync: unknown feed format")
	ErrInvalidSource      = errors.New("feedsync: invalid feed source")
	ErrInvalidProduct     = errors.New("feedsync: invalid product")
	ErrResponseTooLarge   = errors.New("feedsync: feed response too large")
	ErrShuttingDown       = errors.New("feedsync: sync is shutting down")
)

// FetchError reports a failed retrieval of one feed source.
// StatusCode is zero when no HTTP response was received.
type FetchError struct {
	Source     string
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: HTTP %d", e.Source, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.Source, e.Err)
}

// Unwrap returns the underlying transport error
func (e *FetchError) Unwrap() error { return e.Err }

// Is matches ErrFetchFailed
func (e *FetchError) Is(target error) bool { return target == ErrFetchFailed }

// FeedError reports a feed that could not be parsed or that carried a vendor error marker
type FeedError struct {
	Source        string
	VendorMessage string
	Err           error
}

func (e *FeedError) Error() string {
	if e.VendorMessage != "" {
		return fmt.Sprintf("feed %s: vendor error: %s", e.Source, e.VendorMessage)
	}
	return fmt.Sprintf("feed %s: %v", e.Source, e.Err)
}

// Unwrap returns the underlying parse error
func (e *FeedError) Unwrap() error { return e.Err }

// Is matches ErrFeedInvalid
func (e *FeedError) Is(target error) bool { return target == ErrFeedInvalid }

// MappingError reports a feed item that could not be turned into a product
type MappingError struct {
	Source string
	Index  int
	Err    error
}

func (e *MappingError) Error() string {
	return fmt.Sprintf("map %s item %d: %v", e.Source, e.Index, e.Err)
}

// Unwrap returns the underlying mapping error
func (e *MappingError) Unwrap() error { return e.Err }

// Is matches ErrMappingFailed
func (e *MappingError) Is(target error) bool { return target == ErrMappingFailed }

// PersistenceError reports a failed read or write of one product row
type PersistenceError struct {
	Op         string
	TenantID   uuid.UUID
	ExternalID string
	Err        error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s product %s for tenant %s: %v", e.Op, e.ExternalID, e.TenantID, e.Err)
}

// Unwrap returns the underlying repository error
func (e *PersistenceError) Unwrap() error { return e.Err }

// Is matches ErrPersistenceFailed
func (e *PersistenceError) Is(target error) bool { return target == ErrPersistenceFailed }

// FatalError reports a failure that leaves the run without a plan and aborts it
type FatalError struct {
	Op  string
	Err error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("sync aborted: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error
func (e *FatalError) Unwrap() error { return e.Err }

// Is matches ErrRunAborted
func (e *FatalError) Is(target error) bool { return target == ErrRunAborted }
