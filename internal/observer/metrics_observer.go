package observer

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsObserver exports session events as Prometheus series and keeps an
// in-process summary for the health endpoint
type MetricsObserver struct {
	analyses     *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	issues       prometheus.Counter
	alternatives *prometheus.CounterVec
	seeks        prometheus.Counter
	reports      *prometheus.CounterVec

	mu                  sync.RWMutex
	totalAnalyses       int64
	successfulAnalyses  int64
	failedAnalyses      int64
	totalIssues         int64
	abandonedSeeks      int64
	totalProcessingTime time.Duration
}

// NewMetricsObserver registers the collectors with reg
func NewMetricsObserver(reg prometheus.Registerer) *MetricsObserver {
	o := &MetricsObserver{
		analyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "localens",
			Name:      "analyses_total",
			Help:      "Analysis runs by provider, input type and outcome.",
		}, []string{"provider", "input_type", "result"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "localens",
			Name:      "analysis_duration_seconds",
			Help:      "Wall time of successful analysis runs.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		}, []string{"provider", "input_type"}),
		issues: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "localens",
			Name:      "issues_detected_total",
			Help:      "Localization issues returned by completed analyses.",
		}),
		alternatives: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "localens",
			Name:      "alternatives_requests_total",
			Help:      "Alternative text generations by outcome.",
		}, []string{"result"}),
		seeks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "localens",
			Name:      "seeks_abandoned_total",
			Help:      "Video seeks that never reported completion.",
		}),
		reports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "localens",
			Name:      "reports_exported_total",
			Help:      "Reports written by format.",
		}, []string{"format"}),
	}
	if reg != nil {
		reg.MustRegister(o.analyses, o.duration, o.issues, o.alternatives, o.seeks, o.reports)
	}
	return o
}

// OnEvent handles session events by collecting metrics
func (o *MetricsObserver) OnEvent(ctx context.Context, event Event) {
	switch event.EventType {
	case AnalysisCompleted:
		o.analyses.WithLabelValues(event.Provider, event.InputType, "success").Inc()
		o.duration.WithLabelValues(event.Provider, event.InputType).Observe(event.ProcessingTime.Seconds())
		o.issues.Add(float64(event.IssueCount))
	case AnalysisFailed:
		o.analyses.WithLabelValues(event.Provider, event.InputType, "failure").Inc()
	case AlternativesGenerated:
		o.alternatives.WithLabelValues("success").Inc()
	case AlternativesFailed:
		o.alternatives.WithLabelValues("failure").Inc()
	case SeekAbandoned:
		o.seeks.Inc()
	case ReportExported:
		format, _ := event.Metadata["format"].(string)
		o.reports.WithLabelValues(format).Inc()
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	switch event.EventType {
	case AnalysisStarted:
		o.totalAnalyses++
	case AnalysisCompleted:
		o.successfulAnalyses++
		o.totalIssues += int64(event.IssueCount)
		o.totalProcessingTime += event.ProcessingTime
	case AnalysisFailed:
		o.failedAnalyses++
	case SeekAbandoned:
		o.abandonedSeeks++
	}
}

// GetObserverName returns the observer name
func (o *MetricsObserver) GetObserverName() string {
	return "metrics_observer"
}

// GetMetrics returns current metrics
func (o *MetricsObserver) GetMetrics() map[string]interface{} {
	o.mu.RLock()
	defer o.mu.RUnlock()

	avgProcessingTime := time.Duration(0)
	if o.successfulAnalyses > 0 {
		avgProcessingTime = o.totalProcessingTime / time.Duration(o.successfulAnalyses)
	}

	return map[string]interface{}{
		"total_analyses":        o.totalAnalyses,
		"successful_analyses":   o.successfulAnalyses,
		"failed_analyses":       o.failedAnalyses,
		"total_issues":          o.totalIssues,
		"abandoned_seeks":       o.abandonedSeeks,
		"total_processing_time": o.totalProcessingTime,
		"avg_processing_time":   avgProcessingTime,
	}
}
