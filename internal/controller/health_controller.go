package controller

import (
	"rag-chat-be/internal/metrics"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type IHealthController interface {
	RegisterRoutes(r fiber.Router)
	Health(ctx *fiber.Ctx) error
}

type healthController struct {
	metrics *metrics.Metrics
}

func NewHealthController(m *metrics.Metrics) IHealthController {
	return &healthController{metrics: m}
}

func (c *healthController) RegisterRoutes(r fiber.Router) {
	r.Get("/health", c.Health)
	if c.metrics != nil {
		r.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(c.metrics.Registry, promhttp.HandlerOpts{})))
	}
}

func (c *healthController) Health(ctx *fiber.Ctx) error {
	return ctx.JSON(fiber.Map{"status": "ok"})
}
