package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type PrometheusCollector struct {
	// Counters
	authAttemptsTotal  *prometheus.CounterVec
	gateDecisionsTotal *prometheus.CounterVec
	sessionsIssued     prometheus.Counter
	sessionsCleared    prometheus.Counter
	otpIssuedTotal     *prometheus.CounterVec

	// Gauges
	usersTotal        prometheus.Gauge
	usersApprovedTotal prometheus.Gauge
	videosTotal       prometheus.Gauge
}

func NewPrometheusCollector() *PrometheusCollector {
	return &PrometheusCollector{
		authAttemptsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "streamgate_auth_attempts_total",
			Help: "Identity hand-off attempts by outcome",
		}, []string{"outcome"}),

		gateDecisionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "streamgate_gate_decisions_total",
			Help: "Access gate decisions by kind",
		}, []string{"decision"}),

		sessionsIssued: promauto.NewCounter(prometheus.CounterOpts{
			Name: "streamgate_sessions_issued_total",
			Help: "Session cookies minted after successful hand-offs",
		}),

		sessionsCleared: promauto.NewCounter(prometheus.CounterOpts{
			Name: "streamgate_sessions_cleared_total",
			Help: "Session cookies cleared (logout or stale)",
		}),

		otpIssuedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "streamgate_playback_otp_issued_total",
			Help: "Playback OTPs issued by outcome",
		}, []string{"outcome"}),

		usersTotal: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "streamgate_users_total",
			Help: "Number of registered users",
		}),

		usersApprovedTotal: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "streamgate_users_approved_total",
			Help: "Number of approved users",
		}),

		videosTotal: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "streamgate_videos_total",
			Help: "Number of catalog entries",
		}),
	}
}

func (p *PrometheusCollector) RecordAuthAttempt(outcome string) {
	p.authAttemptsTotal.WithLabelValues(outcome).Inc()
}

func (p *PrometheusCollector) RecordGateDecision(decision string) {
	p.gateDecisionsTotal.WithLabelValues(decision).Inc()
}

func (p *PrometheusCollector) RecordSessionIssued() {
	p.sessionsIssued.Inc()
}

func (p *PrometheusCollector) RecordSessionCleared() {
	p.sessionsCleared.Inc()
}

func (p *PrometheusCollector) RecordOTPIssued(outcome string) {
	p.otpIssuedTotal.WithLabelValues(outcome).Inc()
}

func (p *PrometheusCollector) SetUserCounts(total, approved int) {
	p.usersTotal.Set(float64(total))
	p.usersApprovedTotal.Set(float64(approved))
}

func (p *PrometheusCollector) SetVideoCount(total int) {
	p.videosTotal.Set(float64(total))
}
