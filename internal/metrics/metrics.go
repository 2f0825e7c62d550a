package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// 注文送信の失敗段階
const (
	StageHeader = "header"
	StageItems  = "items"
)

// Metricsはnilでも呼べる（計測しないだけ）
type Metrics struct {
	registry *prometheus.Registry

	ordersSubmitted    prometheus.Counter
	orderSubmitFailed  *prometheus.CounterVec
	orderStatusUpdated *prometheus.CounterVec
	orphansDeleted     prometheus.Counter
	httpDuration       *prometheus.HistogramVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		ordersSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cafe",
			Name:      "orders_submitted_total",
			Help:      "Orders whose header and items were both written.",
		}),
		orderSubmitFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cafe",
			Name:      "order_submit_failures_total",
			Help:      "Order submissions that failed, by write stage.",
		}, []string{"stage"}),
		orderStatusUpdated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cafe",
			Name:      "order_status_updates_total",
			Help:      "Order status changes, by new status.",
		}, []string{"status"}),
		orphansDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cafe",
			Name:      "orphan_orders_deleted_total",
			Help:      "Order headers without items removed by reconciliation.",
		}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "cafe",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
	reg.MustRegister(
		m.ordersSubmitted,
		m.orderSubmitFailed,
		m.orderStatusUpdated,
		m.orphansDeleted,
		m.httpDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) OrderSubmitted() {
	if m == nil {
		return
	}
	m.ordersSubmitted.Inc()
}

func (m *Metrics) OrderSubmitFailed(stage string) {
	if m == nil {
		return
	}
	m.orderSubmitFailed.WithLabelValues(stage).Inc()
}

func (m *Metrics) OrderStatusUpdated(status string) {
	if m == nil {
		return
	}
	m.orderStatusUpdated.WithLabelValues(status).Inc()
}

func (m *Metrics) OrphansDeleted(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.orphansDeleted.Add(float64(n))
}

// /metrics
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// リクエストごとのレイテンシ
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			}
			route := c.Path()
			if route == "" {
				route = "unknown"
			}
			m.httpDuration.
				WithLabelValues(c.Request().Method, route, strconv.Itoa(status)).
				Observe(time.Since(start).Seconds())
			return err
		}
	}
}
