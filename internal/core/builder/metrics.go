package builder

import "github.com/prometheus/client_golang/prometheus"

// These are process-wide so every Builder in a process shares one set of
// series, matching how a long-lived rigforge serve-metrics process wraps
// repeated Builder.Run invocations against one Prometheus registry.
var (
	phaseDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "rigforge",
			Subsystem: "builder",
			Name:      "phase_duration_seconds",
			Help:      "Wall time spent in each pipeline phase.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"phase"},
	)

	componentCount = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "rigforge",
			Subsystem: "builder",
			Name:      "components",
			Help:      "Number of components in the most recently loaded rig.",
		},
	)
)

func init() {
	prometheus.MustRegister(phaseDuration, componentCount)
}
