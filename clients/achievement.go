package clients

import (
	"context"

	"github.com/google/uuid"

	"github.com/wizarding-anonymous/cryo-sub004/circuitbreaker"
	"github.com/wizarding-anonymous/cryo-sub004/httpclient"
	"github.com/wizarding-anonymous/cryo-sub004/log"
)

// AchievementClient calls the peer achievement service. Progress reporting
// is non-critical and swallowed on failure; the achievements listing is a
// read with a documented empty-list fallback.
type AchievementClient struct {
	http   *httpclient.Client
	deps   Deps
	logger log.Logger
}

// NewAchievementClient creates the achievement-service client and registers
// its circuit.
func NewAchievementClient(http *httpclient.Client, deps Deps, breakerCfg circuitbreaker.Config) *AchievementClient {
	deps.Breaker.Register(circuitbreaker.AchievementService, breakerCfg)

	return &AchievementClient{
		http:   http,
		deps:   deps,
		logger: deps.logger().WithFields("client", string(circuitbreaker.AchievementService)),
	}
}

// ReportProgress submits achievement progress through the retry/circuit
// stack. Best-effort: a failed report is logged and swallowed, never
// surfaced into the caller's transaction.
func (c *AchievementClient) ReportProgress(ctx context.Context, event ProgressEvent) {
	_, err := call(ctx, c.deps, circuitbreaker.AchievementService, func(ctx context.Context) (any, error) {
		return nil, c.http.Post(ctx, "/api/v1/progress", event, nil)
	})
	if err != nil {
		c.logger.Warnf("Progress report failed for user %s achievement %s: %v", event.UserID, event.AchievementID, err)
	}
}

// ListPlayerAchievements returns the player's achievements, cached for two
// minutes. On total failure it falls back to an empty list: achievement
// panels are decorative next to the caller's primary work.
func (c *AchievementClient) ListPlayerAchievements(ctx context.Context, playerID uuid.UUID) ([]Achievement, error) {
	key := achievementsKey(playerID)

	var cached []Achievement
	if c.deps.Cache.GetJSON(ctx, key, &cached) {
		return cached, nil
	}

	result, err := call(ctx, c.deps, circuitbreaker.AchievementService, func(ctx context.Context) (any, error) {
		var response struct {
			Achievements []Achievement `json:"achievements"`
		}

		if err := c.http.Get(ctx, "/api/v1/players/"+playerID.String()+"/achievements", nil, &response); err != nil {
			return nil, err
		}

		return response.Achievements, nil
	})
	if err != nil {
		c.logger.Warnf("Achievements lookup failed for player %s, returning empty list: %v", playerID, err)

		return []Achievement{}, nil
	}

	achievements := result.([]Achievement)
	c.deps.Cache.Set(ctx, key, achievements, achievementsTTL)

	return achievements, nil
}

// InvalidatePlayer drops the cached achievements for one player.
func (c *AchievementClient) InvalidatePlayer(ctx context.Context, playerID uuid.UUID) {
	c.deps.Cache.Invalidate(ctx, achievementsKey(playerID))
}

// Ping is the lightweight representative call used by the health monitor.
func (c *AchievementClient) Ping(ctx context.Context) error {
	return c.http.Get(ctx, "/health", nil, nil)
}
