package cache

import (
	"net/url"
	"sort"
	"strings"
)

// KeyPrefix namespaces every key this package writes.
const KeyPrefix = "catalog:http"

// Key identifies a cached response by request target.
type Key struct {
	// Host is the upstream host including port (e.g. "pokeapi.co")
	Host string

	// Path is the request path (e.g. "/api/v2/pokemon/25/")
	Path string

	// Query holds the request query parameters
	Query url.Values
}

// KeyFromURL builds a Key from a request URL.
func KeyFromURL(u *url.URL) Key {
	if u == nil {
		return Key{}
	}
	return Key{
		Host:  u.Host,
		Path:  u.Path,
		Query: u.Query(),
	}
}

// String generates a deterministic Redis key.
// Format: catalog:http:host:path:q1=v1:q2=v2a,v2b
//
// Example:
//
//	catalog:http:pokeapi.co:api/v2/pokemon:limit=1302
func (k Key) String() string {
	parts := []string{KeyPrefix}

	if k.Host != "" {
		parts = append(parts, strings.ToLower(k.Host))
	}

	if path := strings.Trim(k.Path, "/"); path != "" {
		parts = append(parts, path)
	}

	if len(k.Query) > 0 {
		names := make([]string, 0, len(k.Query))
		for name := range k.Query {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			parts = append(parts, name+"="+strings.Join(k.Query[name], ","))
		}
	}

	return strings.Join(parts, ":")
}
