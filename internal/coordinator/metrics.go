package coordinator

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes Prometheus collectors that report coordinator activity.
type Metrics struct {
	taskDuration *prometheus.HistogramVec
	tasksTotal   *prometheus.CounterVec
	queueDepth   prometheus.Gauge
	agents       prometheus.Gauge
}

var (
	defaultMetricsOnce sync.Once
	sharedMetrics      *Metrics
)

// defaultMetrics returns the package-level metrics instance registered with
// the global Prometheus registry. The collectors are created only once to
// avoid duplicate registration panics when several coordinators exist in
// one process.
func defaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		sharedMetrics = MustNewMetrics(prometheus.DefaultRegisterer)
	})
	return sharedMetrics
}

// MustNewMetrics constructs a Metrics instance using the provided
// registerer. Callers that need isolated metric names (tests, mostly)
// supply a fresh registry. Registration errors other than duplicates panic,
// mirroring promauto semantics.
func MustNewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	taskDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "semforge",
			Subsystem: "coordinator",
			Name:      "task_duration_seconds",
			Help:      "Duration of one full optimize-evaluate-gate task cycle.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"status"},
	)
	tasksTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "semforge",
			Subsystem: "coordinator",
			Name:      "tasks_total",
			Help:      "Total number of executed tasks by terminal status.",
		},
		[]string{"status"},
	)
	queueDepth := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "semforge",
			Subsystem: "coordinator",
			Name:      "queue_depth",
			Help:      "Number of tasks waiting in the shared FIFO queue.",
		},
	)
	agents := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "semforge",
			Subsystem: "coordinator",
			Name:      "agents_registered",
			Help:      "Number of registered agents.",
		},
	)

	collectors := []prometheus.Collector{taskDuration, tasksTotal, queueDepth, agents}
	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
				switch collector.(type) {
				case *prometheus.HistogramVec:
					taskDuration = already.ExistingCollector.(*prometheus.HistogramVec)
				case *prometheus.CounterVec:
					tasksTotal = already.ExistingCollector.(*prometheus.CounterVec)
				case prometheus.Gauge:
					switch collector {
					case queueDepth:
						queueDepth = already.ExistingCollector.(prometheus.Gauge)
					case agents:
						agents = already.ExistingCollector.(prometheus.Gauge)
					}
				}
				continue
			}
			panic(err)
		}
	}

	return &Metrics{
		taskDuration: taskDuration,
		tasksTotal:   tasksTotal,
		queueDepth:   queueDepth,
		agents:       agents,
	}
}

// ObserveTask records one terminal task with its cycle duration.
func (m *Metrics) ObserveTask(status TaskStatus, duration time.Duration) {
	if m == nil || m.tasksTotal == nil {
		return
	}
	m.tasksTotal.WithLabelValues(string(status)).Inc()
	m.taskDuration.WithLabelValues(string(status)).Observe(duration.Seconds())
}

// SetQueueDepth reports the current queue length.
func (m *Metrics) SetQueueDepth(depth int) {
	if m == nil || m.queueDepth == nil {
		return
	}
	m.queueDepth.Set(float64(depth))
}

// IncAgents counts one more registered agent.
func (m *Metrics) IncAgents() {
	if m == nil || m.agents == nil {
		return
	}
	m.agents.Inc()
}
