package middleware

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the HTTP collectors. Register them on a registry with Register.
type Metrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	authRejections  *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	return &Metrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"path", "method", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"path", "method"},
		),
		authRejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auth_rejections_total",
				Help: "Total number of unauthorized requests",
			},
			[]string{"reason"},
		),
	}
}

func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{m.requestsTotal, m.requestDuration, m.authRejections} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// Handler records every request under its route template, so /api/challenges/:id
// is one series no matter how many challenges exist.
func (m *Metrics) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		// Label values outlive the request; fiber reuses the buffer behind c.Method().
		path := c.Route().Path
		method := utils.CopyString(c.Method())
		m.requestsTotal.WithLabelValues(path, method, strconv.Itoa(status)).Inc()
		m.requestDuration.WithLabelValues(path, method).Observe(time.Since(start).Seconds())

		switch status {
		case fiber.StatusUnauthorized:
			m.authRejections.WithLabelValues("401_unauthorized").Inc()
		case fiber.StatusForbidden:
			m.authRejections.WithLabelValues("403_forbidden").Inc()
		}
		return err
	}
}
