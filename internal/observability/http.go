package observability

import (
	"net/http"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	scrapeOnce    sync.Once
	scrapeHandler http.Handler
)

// MetricsHandler exposes the Prometheus scrape endpoint via Fiber.
// A failing collector does not fail the whole scrape.
func MetricsHandler() fiber.Handler {
	RegisterMetrics()
	scrapeOnce.Do(func() {
		scrapeHandler = promhttp.InstrumentMetricHandler(
			prometheus.DefaultRegisterer,
			promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{
				ErrorHandling: promhttp.ContinueOnError,
			}),
		)
	})
	return adaptor.HTTPHandler(scrapeHandler)
}
