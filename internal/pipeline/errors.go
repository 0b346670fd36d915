package pipeline

import "fmt"

// FetchError reports a failure to materialize the source asset into the
// scratch workspace. Nothing downstream can proceed without the source.
type FetchError struct {
	Key string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Key, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// PublishError reports a failure while pushing produced artifacts to
// durable storage. Files published before the failure stay in place;
// there is no rollback across the storage backend.
type PublishError struct {
	Key string
	Err error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("publish %s: %v", e.Key, e.Err)
}

func (e *PublishError) Unwrap() error { return e.Err }

// RecordWriteError reports that derived fields could not be persisted
// back to the record layer. All media artifacts were already durably
// published when this occurs; the run is retriable since artifact keys
// are deterministic.
type RecordWriteError struct {
	AssetID string
	Err     error
}

func (e *RecordWriteError) Error() string {
	return fmt.Sprintf("write record %s: %v", e.AssetID, e.Err)
}

func (e *RecordWriteError) Unwrap() error { return e.Err }
