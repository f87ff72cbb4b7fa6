package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

type MetricBuilder struct {
	Namespace  string
	Subsystem  string
	Name       string
	Help       string
	InstanceID string
}

func NewMetricBuilder(namespace, subsystem, name, help, instanceID string) *MetricBuilder {
	return &MetricBuilder{
		Namespace:  namespace,
		Subsystem:  subsystem,
		Name:       name,
		Help:       help,
		InstanceID: instanceID,
	}
}

// Build registers a response time summary and an in-flight gauge on reg.
func (m *MetricBuilder) Build(reg prometheus.Registerer) gin.HandlerFunc {
	summary := prometheus.NewSummaryVec(prometheus.SummaryOpts{
		Namespace: m.Namespace,
		Subsystem: m.Subsystem,
		Name:      m.Name + "_resp_time",
		Help:      m.Help,
		ConstLabels: prometheus.Labels{
			"instance_id": m.InstanceID,
		},
		Objectives: map[float64]float64{
			0.5:  0.01,
			0.9:  0.01,
			0.99: 0.005,
		},
	}, []string{"method", "pattern", "status"})

	gauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: m.Namespace,
		Subsystem: m.Subsystem,
		Name:      m.Name + "_active_req",
		Help:      m.Help,
		ConstLabels: prometheus.Labels{
			"instance_id": m.InstanceID,
		},
	})
	reg.MustRegister(summary, gauge)

	return func(c *gin.Context) {
		start := time.Now()
		gauge.Inc()
		defer func() {
			gauge.Dec()
			// unmatched routes share one label value
			pattern := c.FullPath()
			if pattern == "" {
				pattern = "unknown"
			}
			summary.WithLabelValues(c.Request.Method, pattern, strconv.Itoa(c.Writer.Status())).
				Observe(float64(time.Since(start).Milliseconds()))
		}()
		c.Next()
	}
}
