package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SchedulerJobMetrics records metadata for scheduled jobs.
type SchedulerJobMetrics struct {
	duration *prometheus.HistogramVec
	success  *prometheus.CounterVec
	failure  *prometheus.CounterVec
}

// NewSchedulerJobMetrics registers the scheduler job metrics on the provided registerer.
func NewSchedulerJobMetrics(reg prometheus.Registerer) *SchedulerJobMetrics {
	if reg == nil {
		return &SchedulerJobMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "job_duration_seconds",
		Help:    "Duration of scheduler jobs in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"job"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "job_success",
		Help: "Successful scheduler job executions.",
	}, []string{"job"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "job_failure",
		Help: "Failed scheduler job executions.",
	}, []string{"job"})
	reg.MustRegister(duration, success, failure)
	return &SchedulerJobMetrics{
		duration: duration,
		success:  success,
		failure:  failure,
	}
}

// ObserveDuration records the duration for the named job.
func (s *SchedulerJobMetrics) ObserveDuration(job string, duration time.Duration) {
	if s == nil || s.duration == nil {
		return
	}
	s.duration.WithLabelValues(normalizeLabel(job)).Observe(duration.Seconds())
}

// IncSuccess increments the success counter for the named job.
func (s *SchedulerJobMetrics) IncSuccess(job string) {
	if s == nil || s.success == nil {
		return
	}
	s.success.WithLabelValues(normalizeLabel(job)).Inc()
}

// IncFailure increments the failure counter for the named job.
func (s *SchedulerJobMetrics) IncFailure(job string) {
	if s == nil || s.failure == nil {
		return
	}
	s.failure.WithLabelValues(normalizeLabel(job)).Inc()
}

// DeliveryMetrics tracks per-channel delivery outcomes.
type DeliveryMetrics struct {
	delivered *prometheus.CounterVec
	failed    *prometheus.CounterVec
	skipped   *prometheus.CounterVec
}

// NewDeliveryMetrics registers the delivery counters on the provided registerer.
func NewDeliveryMetrics(reg prometheus.Registerer) *DeliveryMetrics {
	if reg == nil {
		return &DeliveryMetrics{}
	}
	delivered := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "delivery_success",
		Help: "Successful channel delivery attempts.",
	}, []string{"channel"})
	failed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "delivery_failure",
		Help: "Failed channel delivery attempts.",
	}, []string{"channel"})
	skipped := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "delivery_skipped",
		Help: "Delivery attempts skipped because the channel was unavailable.",
	}, []string{"channel"})
	reg.MustRegister(delivered, failed, skipped)
	return &DeliveryMetrics{
		delivered: delivered,
		failed:    failed,
		skipped:   skipped,
	}
}

// IncDelivered increments the success counter for the channel.
func (d *DeliveryMetrics) IncDelivered(channel string) {
	if d == nil || d.delivered == nil {
		return
	}
	d.delivered.WithLabelValues(normalizeLabel(channel)).Inc()
}

// IncFailed increments the failure counter for the channel.
func (d *DeliveryMetrics) IncFailed(channel string) {
	if d == nil || d.failed == nil {
		return
	}
	d.failed.WithLabelValues(normalizeLabel(channel)).Inc()
}

// IncSkipped increments the skip counter for the channel.
func (d *DeliveryMetrics) IncSkipped(channel string) {
	if d == nil || d.skipped == nil {
		return
	}
	d.skipped.WithLabelValues(normalizeLabel(channel)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
