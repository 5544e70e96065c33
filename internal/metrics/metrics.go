package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// 解析结果标签
const (
	OutcomeRedirect         = "redirect"
	OutcomePasswordRequired = "password_required"
	OutcomeNotFound         = "not_found"
	OutcomeGone             = "gone"
	OutcomeUnauthorized     = "unauthorized"
	OutcomeError            = "error"
)

// Metrics 重定向与点击采集的运行指标
type Metrics struct {
	Resolutions              *prometheus.CounterVec
	ClicksRecorded           prometheus.Counter
	ClicksDropped            prometheus.Counter
	ClickCountIncrementFails prometheus.Counter
	VisitCounterFailures     prometheus.Counter
}

// New 创建并注册指标，reg 为 nil 时不注册（测试用）
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shortlink",
			Name:      "resolutions_total",
			Help:      "Short code resolutions by outcome.",
		}, []string{"outcome"}),
		ClicksRecorded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "shortlink",
			Name:      "clicks_recorded_total",
			Help:      "Click events persisted.",
		}),
		ClicksDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "shortlink",
			Name:      "clicks_dropped_total",
			Help:      "Click events that could not be persisted.",
		}),
		ClickCountIncrementFails: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "shortlink",
			Name:      "click_count_increment_failures_total",
			Help:      "Failed atomic click_count increments.",
		}),
		VisitCounterFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "shortlink",
			Name:      "visit_counter_failures_total",
			Help:      "Failed PV/UV counter updates in redis.",
		}),
	}
	if reg != nil {
		reg.MustRegister(
			m.Resolutions,
			m.ClicksRecorded,
			m.ClicksDropped,
			m.ClickCountIncrementFails,
			m.VisitCounterFailures,
		)
	}
	return m
}

// ObserveResolution 记录一次解析结果
func (m *Metrics) ObserveResolution(outcome string) {
	m.Resolutions.WithLabelValues(outcome).Inc()
}
