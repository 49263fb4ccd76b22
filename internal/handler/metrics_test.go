package handler_test

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mathieu-neron/vidsource/internal/handler"
)

func TestMetricsMiddleware_PanicReleasesInFlight(t *testing.T) {
	handler.InitMetrics(nil, func() int { return 0 })

	app := fiber.New()
	app.Use(recoverer.New())
	app.Use(handler.MetricsMiddleware())
	app.Get("/boom", func(c fiber.Ctx) error {
		panic("boom")
	})
	app.Get("/ok", func(c fiber.Ctx) error {
		return c.SendString("ok")
	})

	before := testutil.ToFloat64(handler.Metrics.RequestsInFlight)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/boom", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, before, testutil.ToFloat64(handler.Metrics.RequestsInFlight))

	resp, err = app.Test(httptest.NewRequest(fiber.MethodGet, "/ok", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, before, testutil.ToFloat64(handler.Metrics.RequestsInFlight))
}
