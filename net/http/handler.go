package http

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/wizarding-anonymous/cryo-sub004/cache"
	"github.com/wizarding-anonymous/cryo-sub004/circuitbreaker"
	"github.com/wizarding-anonymous/cryo-sub004/health"
)

// CircuitStats returns a handler that lists every registered circuit with
// its state, counts, and last failure time.
func CircuitStats(manager circuitbreaker.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.Status(http.StatusOK).JSON(manager.AllStats())
	}
}

// CircuitReset returns a handler that force-resets the circuit named by the
// "name" route parameter. Unknown names are a 404; only registered
// dependencies can be reset.
func CircuitReset(manager circuitbreaker.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		dep := circuitbreaker.Dependency(c.Params("name"))

		if _, registered := manager.AllStats()[dep]; !registered {
			return c.Status(http.StatusNotFound).JSON(fiber.Map{
				"error": "unknown dependency: " + string(dep),
			})
		}

		manager.Reset(dep)

		return c.SendStatus(http.StatusNoContent)
	}
}

// Health returns a readiness handler: 200 with per-dependency detail when
// every critical dependency is healthy, 503 otherwise.
func Health(monitor *health.Monitor) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ready := monitor.AreAllCriticalServicesHealthy()

		status := "ready"
		code := http.StatusOK

		if !ready {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}

		return c.Status(code).JSON(fiber.Map{
			"status":       status,
			"dependencies": monitor.HealthStatus(),
		})
	}
}

// CacheStats returns a handler that reports cache operation counts and hit
// rate.
func CacheStats(store *cache.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.Status(http.StatusOK).JSON(store.Stats())
	}
}

type invalidateRequest struct {
	Keys []string `json:"keys"`
}

// CacheInvalidate returns a handler that deletes a known key set from the
// cache. The request body is {"keys": ["...", ...]}.
func CacheInvalidate(store *cache.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req invalidateRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{
				"error": "malformed request body",
			})
		}

		if len(req.Keys) == 0 {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{
				"error": "keys must not be empty",
			})
		}

		store.Invalidate(c.UserContext(), req.Keys...)

		return c.SendStatus(http.StatusNoContent)
	}
}
