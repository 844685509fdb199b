package clients

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/google/uuid"

	"github.com/wizarding-anonymous/cryo-sub004/circuitbreaker"
	"github.com/wizarding-anonymous/cryo-sub004/httpclient"
	"github.com/wizarding-anonymous/cryo-sub004/log"
)

const (
	defaultSearchLimit = 20
	maxSearchLimit     = 100
)

// UserClient calls the peer user service. User identity is the platform's
// critical dependency: reads without a safe fallback propagate their error.
type UserClient struct {
	http   *httpclient.Client
	deps   Deps
	logger log.Logger
}

// NewUserClient creates the user-service client and registers its circuit.
func NewUserClient(http *httpclient.Client, deps Deps, breakerCfg circuitbreaker.Config) *UserClient {
	deps.Breaker.Register(circuitbreaker.UserService, breakerCfg)

	return &UserClient{
		http:   http,
		deps:   deps,
		logger: deps.logger().WithFields("client", string(circuitbreaker.UserService)),
	}
}

// GetUser fetches a single user by ID. Cached for 5 minutes; no fallback.
func (c *UserClient) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	key := userKey(id)

	var cached User
	if c.deps.Cache.GetJSON(ctx, key, &cached) {
		return &cached, nil
	}

	result, err := call(ctx, c.deps, circuitbreaker.UserService, func(ctx context.Context) (any, error) {
		var user User
		if err := c.http.Get(ctx, "/api/v1/users/"+id.String(), nil, &user); err != nil {
			return nil, err
		}

		return &user, nil
	})
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", id, err)
	}

	user := result.(*User)
	c.deps.Cache.Set(ctx, key, user, userTTL)

	return user, nil
}

// GetUsersByIDs fetches a batch of users. The cache key is derived from the
// sorted, deduplicated ID list so request ordering does not fragment the
// cache. No fallback.
func (c *UserClient) GetUsersByIDs(ctx context.Context, ids []uuid.UUID) ([]User, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	key, unique := userBatchKey(ids)

	var cached []User
	if c.deps.Cache.GetJSON(ctx, key, &cached) {
		return cached, nil
	}

	result, err := call(ctx, c.deps, circuitbreaker.UserService, func(ctx context.Context) (any, error) {
		request := struct {
			IDs []uuid.UUID `json:"ids"`
		}{IDs: unique}

		var response struct {
			Users []User `json:"users"`
		}

		if err := c.http.Post(ctx, "/api/v1/users/batch", request, &response); err != nil {
			return nil, err
		}

		return response.Users, nil
	})
	if err != nil {
		return nil, fmt.Errorf("get users batch (%d ids): %w", len(unique), err)
	}

	users := result.([]User)
	c.deps.Cache.Set(ctx, key, users, userTTL)

	return users, nil
}

// CheckUserExists reports whether the user exists. On total failure it
// returns true: blocking unrelated critical-path work on an unreachable user
// service is worse than occasionally acting on a deleted user. This
// availability-over-consistency trade-off is specific to this operation.
func (c *UserClient) CheckUserExists(ctx context.Context, id uuid.UUID) (bool, error) {
	key := userExistsKey(id)

	var cached bool
	if c.deps.Cache.GetJSON(ctx, key, &cached) {
		return cached, nil
	}

	result, err := call(ctx, c.deps, circuitbreaker.UserService, func(ctx context.Context) (any, error) {
		var response struct {
			Exists bool `json:"exists"`
		}

		if err := c.http.Get(ctx, "/api/v1/users/"+id.String()+"/exists", nil, &response); err != nil {
			return nil, err
		}

		return response.Exists, nil
	})
	if err != nil {
		c.logger.Warnf("User existence check failed for %s, assuming exists: %v", id, err)

		return true, nil
	}

	exists := result.(bool)
	c.deps.Cache.Set(ctx, key, exists, existsTTL)

	return exists, nil
}

// SearchUsers searches users by (case-folded) query. Results are cached for
// one minute; no fallback.
func (c *UserClient) SearchUsers(ctx context.Context, query string, limit int) ([]User, error) {
	if limit <= 0 {
		limit = defaultSearchLimit
	} else if limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	key, folded := searchKey(query, limit)

	var cached []User
	if c.deps.Cache.GetJSON(ctx, key, &cached) {
		return cached, nil
	}

	result, err := call(ctx, c.deps, circuitbreaker.UserService, func(ctx context.Context) (any, error) {
		params := url.Values{}
		params.Set("q", folded)
		params.Set("limit", strconv.Itoa(limit))

		var response struct {
			Users []User `json:"users"`
		}

		if err := c.http.Get(ctx, "/api/v1/users/search", params, &response); err != nil {
			return nil, err
		}

		return response.Users, nil
	})
	if err != nil {
		return nil, fmt.Errorf("search users %q: %w", folded, err)
	}

	users := result.([]User)
	c.deps.Cache.Set(ctx, key, users, searchTTL)

	return users, nil
}

// InvalidateUser drops every cached form of one user this client writes.
// Batch and search entries cannot be enumerated per user; they age out via
// their shorter TTLs.
func (c *UserClient) InvalidateUser(ctx context.Context, id uuid.UUID) {
	c.deps.Cache.Invalidate(ctx, userKey(id), userExistsKey(id))
}

// Ping is the lightweight representative call used by the health monitor.
func (c *UserClient) Ping(ctx context.Context) error {
	return c.http.Get(ctx, "/health", nil, nil)
}
