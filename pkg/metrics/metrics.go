package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "themeserver"

	metricLabelRoute  = "route"
	metricLabelStatus = "status"
	metricLabelSource = "source"
)

// Metrics is the structure that holds all prometheus metrics
var (
	// ServiceRequestCounter count the number of requests for each route
	ServiceRequestCounter = newCounterVec(
		"service_request_count",
		"Count of requests for each route",
		metricLabelRoute, metricLabelStatus,
	)
	// ServiceRequestDuration observe the duration of requests for each route
	ServiceRequestDuration = newSummaryVec(
		"service_request_duration_seconds",
		"Seconds to unmarshal requests, execute a service function and marshal its reponses",
		metricLabelRoute, metricLabelStatus,
	)
	// ImportedAssetsCounter count the assets written by archive imports
	ImportedAssetsCounter = newCounterVec(
		"imported_assets_count",
		"Number of assets persisted from theme archives",
	)
	// ImportsFailedCounter count the archive imports that were aborted
	ImportsFailedCounter = newCounterVec(
		"imports_failed_count",
		"Number of theme archive imports that failed due to an error",
	)
	// ImportDuration observe the duration of each archive import
	ImportDuration = newSummaryVec(
		"import_duration_seconds",
		"Duration in seconds for each theme archive import",
	)
	// SeededItemsCounter count the content items written by default theme seeding
	SeededItemsCounter = newCounterVec(
		"seeded_items_count",
		"Number of content items written while seeding default themes",
		metricLabelSource,
	)
	// OpenRepositoryHandlesGauge keep track of the repository handles in use
	OpenRepositoryHandlesGauge = newGaugeVec(
		"open_repository_handles_total",
		"Total number of currently open repository handles",
	)
)

func newSummaryVec(name, help string, labels ...string) *prometheus.SummaryVec {
	vec := prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		}, labels)
	prometheus.MustRegister(vec)
	return vec
}

func newCounterVec(name, help string, labels ...string) *prometheus.CounterVec {
	vec := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		}, labels)
	prometheus.MustRegister(vec)
	return vec
}

func newGaugeVec(name, help string, labels ...string) *prometheus.GaugeVec {
	vec := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		}, labels)
	prometheus.MustRegister(vec)
	return vec
}
