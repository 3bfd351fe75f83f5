package middleware

import (
	"sync"

	"socialhub/internal/observability"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
)

// RedisErrors counts Redis command failures by command name.
var RedisErrors = observability.RedisErrorRate

var (
	promOnce sync.Once
	prom     *fiberprometheus.FiberPrometheus
)

// InitMetrics creates the HTTP metrics collector for the service. The
// collector registers with the default registry, so it is built once per
// process and shared by every app.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	promOnce.Do(func() {
		prom = fiberprometheus.New(serviceName)
	})
	return prom
}

// MetricsMiddleware registers /metrics and returns the request instrumentation handler.
func MetricsMiddleware(app *fiber.App, prom *fiberprometheus.FiberPrometheus) fiber.Handler {
	prom.RegisterAt(app, "/metrics")
	return prom.Middleware
}
