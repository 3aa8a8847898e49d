package middleware

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsUseRouteTemplates(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics()
	require.NoError(t, m.Register(reg))

	app := fiber.New()
	app.Use(m.Handler())
	app.Get("/items/:id", func(c *fiber.Ctx) error { return c.SendString(c.Params("id")) })
	app.Get("/private", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusUnauthorized) })
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	for _, path := range []string{"/items/1", "/items/2", "/private"} {
		_, err := app.Test(httptest.NewRequest("GET", path, nil))
		require.NoError(t, err)
	}

	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	text := string(body)
	assert.Contains(t, text, `http_requests_total{method="GET",path="/items/:id",status="200"} 2`)
	assert.Contains(t, text, `auth_rejections_total{reason="401_unauthorized"} 1`)
	assert.NotContains(t, text, `path="/items/1"`)
}

func TestMetricsRegisterTwiceFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NoError(t, NewMetrics().Register(reg))
	assert.Error(t, NewMetrics().Register(reg))
}

func TestMetricsKeepMethodLabelsAcrossRequests(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics()
	require.NoError(t, m.Register(reg))

	app := fiber.New()
	app.Use(m.Handler())
	app.All("/items", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	for _, method := range []string{"GET", "DELETE", "PUT", "POST", "GET"} {
		_, err := app.Test(httptest.NewRequest(method, "/items", nil))
		require.NoError(t, err)
	}

	families, err := reg.Gather()
	require.NoError(t, err)

	counts := map[string]float64{}
	for _, mf := range families {
		if mf.GetName() != "http_requests_total" {
			continue
		}
		for _, metric := range mf.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == "method" {
					counts[label.GetValue()] += metric.GetCounter().GetValue()
				}
			}
		}
	}

	assert.Equal(t, map[string]float64{"GET": 2, "DELETE": 1, "PUT": 1, "POST": 1}, counts)
}
