package monitoring

import (
	"strconv"
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

	ActiveSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "classroom_active_sessions",
			Help: "Classroom sessions currently running",
		},
	)

	TimelineAdvances = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "classroom_timeline_advances_total",
			Help: "Timeline advances by item type",
		},
		[]string{"item_type"},
	)

	QuizSubmissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "classroom_quiz_submissions_total",
			Help: "Quiz submissions, split by forced (time expiry) vs manual",
		},
		[]string{"forced"},
	)

	CameraLockouts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "classroom_camera_lockouts_total",
			Help: "Camera compliance lockouts entered",
		},
	)

	BreakoutRounds = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "classroom_breakout_rounds_total",
			Help: "Breakout rounds broadcast",
		},
	)

	ChatMessages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "classroom_chat_messages_total",
			Help: "AI side-channel messages by sender",
		},
		[]string{"sender"},
	)
)

func Init() {
	prometheus.MustRegister(RequestCounter)
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(ActiveSessions)
	prometheus.MustRegister(TimelineAdvances)
	prometheus.MustRegister(QuizSubmissions)
	prometheus.MustRegister(CameraLockouts)
	prometheus.MustRegister(BreakoutRounds)
	prometheus.MustRegister(ChatMessages)
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
