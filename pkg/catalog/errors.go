package catalog

import (
	"errors"
	"fmt"
)

// FailureMessage is shown to users when the index cannot be loaded.
const FailureMessage = "There was a problem loading the catalog data."

var (
	// ErrIndexFetch matches every index-level failure.
	ErrIndexFetch = errors.New("catalog index fetch failed")

	// ErrDetailFetch matches every per-entry failure.
	ErrDetailFetch = errors.New("catalog detail fetch failed")

	// ErrMissingResults is wrapped when the index body has no results array.
	ErrMissingResults = errors.New("index response has no results")
)

// IndexFetchError reports a failed or unparseable index request.
type IndexFetchError struct {
	URL string
	Err error
}

func (e *IndexFetchError) Error() string {
	return fmt.Sprintf("fetch catalog index %s: %v", e.URL, e.Err)
}

func (e *IndexFetchError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrIndexFetch) true.
func (e *IndexFetchError) Is(target error) bool { return target == ErrIndexFetch }

// DetailFetchError reports a failed detail request for one entry.
type DetailFetchError struct {
	Name string
	URL  string
	Err  error
}

func (e *DetailFetchError) Error() string {
	return fmt.Sprintf("fetch detail for %q from %s: %v", e.Name, e.URL, e.Err)
}

func (e *DetailFetchError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrDetailFetch) true.
func (e *DetailFetchError) Is(target error) bool { return target == ErrDetailFetch }
