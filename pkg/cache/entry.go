// Package cache stores catalog API responses in Redis so repeated loads can
// revalidate with If-None-Match / If-Modified-Since instead of downloading
// every detail document again.
//
// The cache never answers a request on its own: the client always asks the
// upstream API and only reuses a stored body when it replies 304 Not Modified.
package cache

import (
	"net/http"
	"time"
)

// Entry represents a cached HTTP response.
type Entry struct {
	// Data is the response body
	Data []byte `json:"data"`

	// ETag for conditional requests (If-None-Match)
	ETag string `json:"etag"`

	// Expires is when the entry is dropped from Redis
	Expires time.Time `json:"expires"`

	// LastModified from the Last-Modified header, used for If-Modified-Since
	LastModified time.Time `json:"last_modified"`

	StatusCode int         `json:"status_code"`
	Headers    http.Header `json:"headers"`
	CachedAt   time.Time   `json:"cached_at"`
}

// IsExpired returns true if the entry has expired.
func (e *Entry) IsExpired() bool {
	return time.Now().After(e.Expires)
}

// TTL returns the time until expiration, or 0 if already expired.
func (e *Entry) TTL() time.Duration {
	ttl := time.Until(e.Expires)
	if ttl < 0 {
		return 0
	}
	return ttl
}
