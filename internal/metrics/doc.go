// Package metrics defines the Prometheus instrumentation for the conversion
// pipeline. Metrics are registered on the default registry via promauto;
// exposition is opt-in (METRICS_ADDR).
package metrics
