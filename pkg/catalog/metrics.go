package catalog

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	loadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_loads_total",
		Help: "Total catalog loads by terminal status",
	}, []string{"status"})

	loadDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "catalog_load_duration_seconds",
		Help:    "Wall time of a catalog load from index request to join point",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
	})

	detailResultsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_detail_results_total",
		Help: "Detail requests by outcome",
	}, []string{"result"}) // "ok", "dropped"

	entriesLoaded = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "catalog_entries_loaded",
		Help: "Number of entries in the most recent ready load",
	})
)
