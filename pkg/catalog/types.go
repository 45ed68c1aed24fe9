// Package catalog loads a paginated entity index from a remote API, fans out
// one detail request per entry and assembles an ordered list of summaries.
//
// A load either fails as a whole, when the index request fails, or becomes
// ready with every entry whose detail request succeeded. Detail failures are
// logged and dropped; they never fail the load.
package catalog

// EntitySummary is the normalized view of one catalog entity.
type EntitySummary struct {
	Name string `json:"name" yaml:"name"`

	// Type is the comma-and-space joined list of category names.
	Type string `json:"type" yaml:"type"`

	// Image is the sprite URL, empty when the API has none.
	Image string `json:"image,omitempty" yaml:"image,omitempty"`
}

// IndexEntry is one row of the index response.
type IndexEntry struct {
	Name      string `json:"name"`
	DetailURL string `json:"url"`
}

// Status is the lifecycle phase of a load.
type Status string

const (
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusFailed  Status = "failed"
)

// LoadState is the externally observable result of one load.
type LoadState struct {
	// ID identifies the invocation that produced this state.
	ID string `json:"id" yaml:"id"`

	Status Status `json:"status" yaml:"status"`

	// Error is the user-facing message, set only when Status is StatusFailed.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`

	// Entries holds the surviving summaries in index order. Nil unless ready.
	Entries []EntitySummary `json:"entries" yaml:"entries"`

	// Cause keeps the underlying index failure for diagnostics.
	Cause error `json:"-" yaml:"-"`
}

// Loading reports whether the load has not settled yet.
func (s LoadState) Loading() bool {
	return s.Status == StatusLoading
}

// DetailResult is the settled outcome of one detail request, before
// failed entries are filtered out. Exactly one of Summary or Err is meaningful.
type DetailResult struct {
	Entry   IndexEntry
	Summary EntitySummary
	Err     error
}

// OK reports whether the detail request produced a summary.
func (r DetailResult) OK() bool {
	return r.Err == nil
}
