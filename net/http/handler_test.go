package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	nethttp "net/http"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wizarding-anonymous/cryo-sub004/cache"
	"github.com/wizarding-anonymous/cryo-sub004/circuitbreaker"
	"github.com/wizarding-anonymous/cryo-sub004/health"
	"github.com/wizarding-anonymous/cryo-sub004/log"
)

func newTestStore(t *testing.T) *cache.Store {
	t.Helper()

	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return cache.New(client, &log.NoneLogger{})
}

func decodeBody(t *testing.T, resp *nethttp.Response, out any) {
	t.Helper()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.NoError(t, json.Unmarshal(raw, out))
}

func TestCircuitStats(t *testing.T) {
	manager := circuitbreaker.NewManager(&log.NoneLogger{})
	manager.Register(circuitbreaker.UserService, circuitbreaker.DefaultConfig())
	manager.Register(circuitbreaker.NotificationService, circuitbreaker.DefaultConfig())

	app := fiber.New()
	app.Get("/admin/circuits", CircuitStats(manager))

	resp, err := app.Test(newRequest(t, nethttp.MethodGet, "/admin/circuits", ""))
	require.NoError(t, err)
	assert.Equal(t, nethttp.StatusOK, resp.StatusCode)

	var stats map[string]circuitbreaker.Stats
	decodeBody(t, resp, &stats)

	require.Len(t, stats, 2)
	assert.Equal(t, circuitbreaker.StateClosed, stats["user-service"].State)
	assert.Equal(t, circuitbreaker.StateClosed, stats["notification-service"].State)
}

func TestCircuitReset(t *testing.T) {
	manager := circuitbreaker.NewManager(&log.NoneLogger{})
	manager.Register(circuitbreaker.UserService, circuitbreaker.Config{
		FailureThreshold: 1,
		ResetTimeout:     time.Hour,
	})

	// Trip the circuit.
	_, err := manager.Execute(circuitbreaker.UserService, func() (any, error) {
		return nil, errors.New("down")
	})
	require.Error(t, err)
	require.False(t, manager.IsAvailable(circuitbreaker.UserService))

	app := fiber.New()
	app.Post("/admin/circuits/:name/reset", CircuitReset(manager))

	resp, err := app.Test(newRequest(t, nethttp.MethodPost, "/admin/circuits/user-service/reset", ""))
	require.NoError(t, err)
	assert.Equal(t, nethttp.StatusNoContent, resp.StatusCode)

	assert.True(t, manager.IsAvailable(circuitbreaker.UserService))
}

func TestCircuitReset_UnknownDependency(t *testing.T) {
	manager := circuitbreaker.NewManager(&log.NoneLogger{})

	app := fiber.New()
	app.Post("/admin/circuits/:name/reset", CircuitReset(manager))

	resp, err := app.Test(newRequest(t, nethttp.MethodPost, "/admin/circuits/nope/reset", ""))
	require.NoError(t, err)
	assert.Equal(t, nethttp.StatusNotFound, resp.StatusCode)

	var body map[string]string
	decodeBody(t, resp, &body)
	assert.Contains(t, body["error"], "nope")
}

func TestHealth_ReadyAndDegraded(t *testing.T) {
	breaker := circuitbreaker.NewManager(&log.NoneLogger{})

	monitor, err := health.NewMonitor(breaker, 10*time.Millisecond, 100*time.Millisecond, &log.NoneLogger{})
	require.NoError(t, err)

	monitor.Register(circuitbreaker.UserService, func(ctx context.Context) error {
		return nil
	}, true)

	app := fiber.New()
	app.Get("/health/dependencies", Health(monitor))

	// Before the first probe round the critical dependency is unknown.
	resp, err := app.Test(newRequest(t, nethttp.MethodGet, "/health/dependencies", ""))
	require.NoError(t, err)
	assert.Equal(t, nethttp.StatusServiceUnavailable, resp.StatusCode)

	var degraded struct {
		Status       string                           `json:"status"`
		Dependencies map[string]health.ServiceHealth `json:"dependencies"`
	}
	decodeBody(t, resp, &degraded)
	assert.Equal(t, "degraded", degraded.Status)
	assert.Contains(t, degraded.Dependencies, "user-service")

	monitor.Start()
	defer monitor.Stop()

	require.Eventually(t, func() bool {
		return monitor.AreAllCriticalServicesHealthy()
	}, 2*time.Second, 5*time.Millisecond)

	resp, err = app.Test(newRequest(t, nethttp.MethodGet, "/health/dependencies", ""))
	require.NoError(t, err)
	assert.Equal(t, nethttp.StatusOK, resp.StatusCode)

	var ready struct {
		Status string `json:"status"`
	}
	decodeBody(t, resp, &ready)
	assert.Equal(t, "ready", ready.Status)
}

func TestCacheStats(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	store.Set(ctx, "k", "v", time.Minute)
	_, _ = store.Get(ctx, "k")
	_, _ = store.Get(ctx, "absent")

	app := fiber.New()
	app.Get("/admin/cache/stats", CacheStats(store))

	resp, err := app.Test(newRequest(t, nethttp.MethodGet, "/admin/cache/stats", ""))
	require.NoError(t, err)
	assert.Equal(t, nethttp.StatusOK, resp.StatusCode)

	var stats cache.Stats
	decodeBody(t, resp, &stats)
	assert.Equal(t, uint64(1), stats.Hits)
	assert.Equal(t, uint64(1), stats.Misses)
	assert.Equal(t, uint64(1), stats.Sets)
}

func TestCacheInvalidate(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	store.Set(ctx, "users:id:1", "v", time.Minute)

	app := fiber.New()
	app.Post("/admin/cache/invalidate", CacheInvalidate(store))

	resp, err := app.Test(newRequest(t, nethttp.MethodPost, "/admin/cache/invalidate", `{"keys":["users:id:1"]}`))
	require.NoError(t, err)
	assert.Equal(t, nethttp.StatusNoContent, resp.StatusCode)

	_, ok := store.Get(ctx, "users:id:1")
	assert.False(t, ok)
}

func TestCacheInvalidate_RejectsBadRequests(t *testing.T) {
	store := newTestStore(t)

	app := fiber.New()
	app.Post("/admin/cache/invalidate", CacheInvalidate(store))

	for _, body := range []string{``, `{not json`, `{"keys":[]}`} {
		resp, err := app.Test(newRequest(t, nethttp.MethodPost, "/admin/cache/invalidate", body))
		require.NoError(t, err)
		assert.Equal(t, nethttp.StatusBadRequest, resp.StatusCode, "body %q", body)
	}
}

func newRequest(t *testing.T, method, target, body string) *nethttp.Request {
	t.Helper()

	req, err := nethttp.NewRequest(method, target, strings.NewReader(body))
	require.NoError(t, err)

	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	return req
}
