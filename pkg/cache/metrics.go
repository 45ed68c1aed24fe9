package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Hits counts lookups that found a live entry.
	Hits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_cache_hits_total",
		Help: "Total number of response cache hits",
	})

	// Misses counts lookups that found nothing or an expired entry.
	Misses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_cache_misses_total",
		Help: "Total number of response cache misses",
	})

	// StoredBytes tracks the bytes written to Redis by this process.
	StoredBytes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_cache_stored_bytes_total",
		Help: "Total bytes written to the response cache",
	})

	// NotModified counts 304 responses answered from the cache.
	NotModified = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_cache_not_modified_total",
		Help: "Total number of 304 Not Modified responses served from cache",
	})

	// ConditionalRequests counts requests sent with a validator.
	ConditionalRequests = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_cache_conditional_requests_total",
		Help: "Total number of conditional requests sent",
	})

	// Errors tracks cache operation errors by operation.
	Errors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_cache_errors_total",
		Help: "Total number of response cache operation errors",
	}, []string{"operation"}) // "get", "set", "delete"
)
