// Package metrics exposes the Prometheus registry the catalog loader records into.
// Metrics are defined in their own packages (catalog, client, cache) via promauto
// and land in the default registry; this package serves them.
package metrics

import (
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the registerer every package's promauto metrics use.
var Registry = prometheus.DefaultRegisterer

// Gatherer is the gatherer paired with Registry.
var Gatherer = prometheus.DefaultGatherer

// Handler serves Gatherer in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Gatherer, promhttp.HandlerOpts{})
}

// Names returns the names of all metric families currently gathered that
// start with prefix.
func Names(prefix string) ([]string, error) {
	families, err := Gatherer.Gather()
	if err != nil {
		return nil, err
	}
	var names []string
	for _, f := range families {
		if strings.HasPrefix(f.GetName(), prefix) {
			names = append(names, f.GetName())
		}
	}
	return names, nil
}

// Metrics Documentation
//
// Load Metrics (pkg/catalog):
//   - catalog_loads_total{status} (Counter): Completed loads by terminal status (ready, failed)
//   - catalog_load_duration_seconds (Histogram): Wall time of one load
//   - catalog_detail_results_total{result} (Counter): Detail outcomes (ok, dropped)
//   - catalog_entries_loaded (Gauge): Survivors of the most recent ready load
//
// Request Metrics (pkg/client):
//   - catalog_http_requests_total{host, status} (Counter): Requests by host and HTTP status
//   - catalog_http_request_duration_seconds{host} (Histogram): Request duration by host
//   - catalog_http_errors_total{class} (Counter): Errors by class (client, server, network, decode)
//
// Cache Metrics (pkg/cache):
//   - catalog_cache_hits_total (Counter): Cache hits
//   - catalog_cache_misses_total (Counter): Cache misses
//   - catalog_cache_stored_bytes_total (Counter): Bytes written to Redis
//   - catalog_cache_not_modified_total (Counter): 304 responses answered from the cache
//   - catalog_cache_conditional_requests_total (Counter): Requests sent with validators
//   - catalog_cache_errors_total{operation} (Counter): Cache operation errors
//
// Example Prometheus Queries:
//
//   # Share of dropped entries
//   sum(rate(catalog_detail_results_total{result="dropped"}[5m])) /
//   sum(rate(catalog_detail_results_total[5m]))
//
//   # Failed loads
//   rate(catalog_loads_total{status="failed"}[15m])
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(catalog_http_request_duration_seconds_bucket[5m]))
//
//   # Revalidation rate
//   rate(catalog_cache_not_modified_total[5m]) / rate(catalog_cache_conditional_requests_total[5m])
