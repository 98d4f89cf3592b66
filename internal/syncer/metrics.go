package syncer

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// 同步结果标签
const (
	resultSuccess  = "success"
	resultDegraded = "degraded"
	resultFailed   = "failed"
	resultOffline  = "offline"
)

// Metrics 同步控制器指标；nil 接收者上的方法均为空操作
type Metrics struct {
	syncs          *prometheus.CounterVec
	duration       prometheus.Histogram
	coalesced      prometheus.Counter
	versionChanges prometheus.Counter
	classes        prometheus.Gauge
}

// NewMetrics 创建并注册指标；reg 为 nil 时不注册
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		syncs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "routine_hub",
			Subsystem: "sync",
			Name:      "runs_total",
			Help:      "Sync attempts by result.",
		}, []string{"result"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "routine_hub",
			Subsystem: "sync",
			Name:      "duration_seconds",
			Help:      "Duration of remote sync attempts.",
			Buckets:   prometheus.DefBuckets,
		}),
		coalesced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "routine_hub",
			Subsystem: "sync",
			Name:      "coalesced_total",
			Help:      "Sync triggers folded into a pending run.",
		}),
		versionChanges: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "routine_hub",
			Subsystem: "sync",
			Name:      "version_changes_total",
			Help:      "Observed routine version transitions.",
		}),
		classes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "routine_hub",
			Name:      "classes",
			Help:      "Class sessions currently held in memory.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.syncs, m.duration, m.coalesced, m.versionChanges, m.classes)
	}
	return m
}

func (m *Metrics) observeSync(result string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.syncs.WithLabelValues(result).Inc()
	if result != resultOffline {
		m.duration.Observe(elapsed.Seconds())
	}
}

func (m *Metrics) incCoalesced() {
	if m == nil {
		return
	}
	m.coalesced.Inc()
}

func (m *Metrics) incVersionChange() {
	if m == nil {
		return
	}
	m.versionChanges.Inc()
}

func (m *Metrics) setClasses(n int) {
	if m == nil {
		return
	}
	m.classes.Set(float64(n))
}
