package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the document registry.
type Metrics struct {
	// Successful uploads by MIME type
	Uploads *prometheus.CounterVec

	// Uploads rejected before storage, by reason
	UploadsRejected *prometheus.CounterVec

	// Document deletions, single and cascaded alike
	Deletes prometheus.Counter
}

// New creates a Metrics instance with all registry metrics registered.
func New() *Metrics {
	return &Metrics{
		Uploads: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "admitly_document_uploads_total",
			Help: "Total documents attached, by MIME type",
		}, []string{"file_type"}),

		UploadsRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "admitly_document_uploads_rejected_total",
			Help: "Total uploads rejected by policy, by reason",
		}, []string{"reason"}), // reason: "unsupported_file", "file_too_large"

		Deletes: promauto.NewCounter(prometheus.CounterOpts{
			Name: "admitly_document_deletes_total",
			Help: "Total documents removed, including application cascades",
		}),
	}
}

// IncrementUploaded records a stored document.
func (m *Metrics) IncrementUploaded(fileType string) {
	if m != nil {
		m.Uploads.WithLabelValues(fileType).Inc()
	}
}

// IncrementRejected records an upload refused by the type or size policy.
func (m *Metrics) IncrementRejected(reason string) {
	if m != nil {
		m.UploadsRejected.WithLabelValues(reason).Inc()
	}
}

// IncrementDeleted records a removed document.
func (m *Metrics) IncrementDeleted() {
	if m != nil {
		m.Deletes.Inc()
	}
}
