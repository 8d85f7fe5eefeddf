package redlease

import "github.com/prometheus/client_golang/prometheus"

var (
	// AcquireAttempts tracks every acquisition round trip, retries included.
	AcquireAttempts = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "redlease_acquire_attempts_total",
		Help: "Total number of lease acquisition attempts",
	})
	// AcquireContended tracks attempts that found the resource held.
	AcquireContended = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "redlease_acquire_contended_total",
		Help: "Total number of acquisition attempts that hit a held resource",
	})
	// Acquired tracks successfully obtained leases.
	Acquired = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "redlease_acquired_total",
		Help: "Total number of leases obtained",
	})
	// Released tracks successfully released leases.
	Released = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "redlease_released_total",
		Help: "Total number of leases released",
	})
	// Extensions tracks successful lease extensions.
	Extensions = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "redlease_extensions_total",
		Help: "Total number of lease extensions",
	})
	// ExtensionFailures tracks extensions refused by the store or lost to
	// transport errors.
	ExtensionFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "redlease_extension_failures_total",
		Help: "Total number of failed lease extensions",
	})
)

// RegisterMetrics registers the engine metrics on the provided registry.
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(AcquireAttempts, AcquireContended, Acquired, Released, Extensions, ExtensionFailures)
}
