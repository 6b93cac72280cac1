package monitoring

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	// 构建技能树时被丢弃的孤儿节点
	OrphanSkills = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "skilltree_orphan_skills_total",
			Help: "Skills left out of a built tree because their parent was missing",
		},
	)

	OrderConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "skilltree_order_conflicts_total",
			Help: "Sibling moves rejected because the order changed concurrently",
		},
	)

	OrderRepairs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skilltree_order_repairs_total",
			Help: "Sibling order values rewritten by the repair pass",
		},
		[]string{"trigger"},
	)

	DeletedRecords = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skilltree_deleted_records_total",
			Help: "Records removed by recursive deletion",
		},
		[]string{"collection"},
	)
)

var initOnce sync.Once

func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(RequestCounter)
		prometheus.MustRegister(RequestDuration)
		prometheus.MustRegister(OrphanSkills)
		prometheus.MustRegister(OrderConflicts)
		prometheus.MustRegister(OrderRepairs)
		prometheus.MustRegister(DeletedRecords)
	})
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		RequestCounter.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
