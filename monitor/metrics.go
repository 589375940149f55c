package monitor

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "chat_relay"

var (
	// RelayRequests counts finished chat relays by provider profile and outcome.
	RelayRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "relay_requests_total",
		Help:      "Chat relay requests by provider profile and outcome.",
	}, []string{"profile", "outcome"})

	// StreamedBytes counts text bytes written to clients.
	StreamedBytes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "streamed_bytes_total",
		Help:      "Bytes of generated text streamed to clients.",
	}, []string{"profile"})

	// TimeToFirstByte observes the delay between dispatch and the first streamed delta.
	TimeToFirstByte = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "time_to_first_byte_seconds",
		Help:      "Delay between upstream dispatch and the first streamed delta.",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 4, 8, 16, 32},
	}, []string{"profile"})

	// AttachmentResolutions counts attachment resolutions by kind and outcome.
	AttachmentResolutions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "attachment_resolutions_total",
		Help:      "Attachment resolutions by kind and outcome.",
	}, []string{"kind", "outcome"})

	// TruncatedMessages counts history messages dropped to fit the token budget.
	TruncatedMessages = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "truncated_messages_total",
		Help:      "History messages dropped to fit the token budget.",
	})

	// HTTPRequests counts served HTTP requests.
	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by route, method and status code.",
	}, []string{"route", "method", "code"})

	// HTTPDuration observes handler latency, including the whole stream for /api/chat.
	HTTPDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route.",
		Buckets:   prometheus.ExponentialBuckets(0.01, 2, 14),
	}, []string{"route"})

	// RateLimited counts requests rejected by the rate limiter.
	RateLimited = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limited_total",
		Help:      "Requests rejected by the rate limiter.",
	}, []string{"route"})

	buildInfo = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "build_info",
		Help:      "Build information, constant 1.",
	}, []string{"version", "go_version", "start_time"})
)

var registerOnce sync.Once

// InitPrometheusMonitoring registers every collector with the default registry.
// Repeated calls are no-ops.
func InitPrometheusMonitoring(version, goVersion string, startTime time.Time) (err error) {
	registerOnce.Do(func() {
		for _, c := range []prometheus.Collector{
			RelayRequests, StreamedBytes, TimeToFirstByte, AttachmentResolutions,
			TruncatedMessages, HTTPRequests, HTTPDuration, RateLimited, buildInfo,
		} {
			if err = prometheus.Register(c); err != nil {
				return
			}
		}
		buildInfo.WithLabelValues(version, goVersion, startTime.Format(time.RFC3339)).Set(1)
	})
	return err
}

// ObserveRelay records the outcome of one relay.
func ObserveRelay(profile, outcome string, bytes int64) {
	RelayRequests.WithLabelValues(profile, outcome).Inc()
	if bytes > 0 {
		StreamedBytes.WithLabelValues(profile).Add(float64(bytes))
	}
}

// ObserveAttachment records one attachment resolution.
func ObserveAttachment(kind string, ok bool) {
	outcome := "ok"
	if !ok {
		outcome = "failed"
	}
	AttachmentResolutions.WithLabelValues(kind, outcome).Inc()
}
