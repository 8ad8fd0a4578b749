package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	globalMetrics *Metrics
	metricsOnce   sync.Once
)

// Metrics holds the service's Prometheus collectors.
type Metrics struct {
	ExtractionsTotal     *prometheus.CounterVec
	ExtractionConfidence prometheus.Histogram
	TransactionsSaved    prometheus.Counter
	RateLimitedTotal     *prometheus.CounterVec
}

// New returns the process-wide collectors, registering them on first call.
//
// Metrics:
//   - fin_extractor_extractions_total{type} - extractions by resulting direction
//   - fin_extractor_extraction_confidence - distribution of confidence scores
//   - fin_extractor_transactions_saved_total - persisted transactions
//   - fin_extractor_rate_limited_total{route} - requests rejected with 429
func New() *Metrics {
	metricsOnce.Do(func() {
		globalMetrics = &Metrics{
			ExtractionsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "fin_extractor_extractions_total",
					Help: "Total number of text extractions",
				},
				[]string{"type"},
			),
			ExtractionConfidence: promauto.NewHistogram(
				prometheus.HistogramOpts{
					Name:    "fin_extractor_extraction_confidence",
					Help:    "Confidence score of extraction results",
					Buckets: []float64{0.2, 0.4, 0.6, 0.8, 1.0},
				},
			),
			TransactionsSaved: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "fin_extractor_transactions_saved_total",
					Help: "Total number of saved transactions",
				},
			),
			RateLimitedTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "fin_extractor_rate_limited_total",
					Help: "Total number of requests rejected by the rate limiter",
				},
				[]string{"route"},
			),
		}
	})
	return globalMetrics
}

func (m *Metrics) ObserveExtraction(txType string, confidence float64) {
	m.ExtractionsTotal.WithLabelValues(txType).Inc()
	m.ExtractionConfidence.Observe(confidence)
}
