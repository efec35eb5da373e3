package resource

import "github.com/prometheus/client_golang/prometheus"

const (
	metricsNamespace = "lse"
	storeSubsystem   = "resource_store"
)

var (
	// AcquireHits counts acquisitions served from the cache.
	AcquireHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: storeSubsystem,
			Name:      "acquire_hits_total",
			Help:      "Total number of acquisitions that returned a cached resource.",
		},
		[]string{"store"},
	)

	// AcquireMisses counts acquisitions that created a resource.
	AcquireMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: storeSubsystem,
			Name:      "acquire_misses_total",
			Help:      "Total number of acquisitions that created and loaded a resource.",
		},
		[]string{"store"},
	)

	// Loads counts completed loads by result (ready or error).
	Loads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: storeSubsystem,
			Name:      "loads_total",
			Help:      "Total number of completed loads by result.",
		},
		[]string{"store", "result"},
	)

	// Evictions counts entries removed after their last release.
	Evictions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: storeSubsystem,
			Name:      "evictions_total",
			Help:      "Total number of entries evicted after their last release.",
		},
		[]string{"store"},
	)

	// Items tracks the number of cached entries.
	Items = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: storeSubsystem,
			Name:      "items",
			Help:      "Number of resources currently cached by a store.",
		},
		[]string{"store"},
	)
)

// RegisterMetrics registers the store metrics with a prometheus registerer.
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(AcquireHits)
	reg.MustRegister(AcquireMisses)
	reg.MustRegister(Loads)
	reg.MustRegister(Evictions)
	reg.MustRegister(Items)
}
