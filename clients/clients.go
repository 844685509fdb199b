package clients

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wizarding-anonymous/cryo-sub004/cache"
	"github.com/wizarding-anonymous/cryo-sub004/circuitbreaker"
	"github.com/wizarding-anonymous/cryo-sub004/log"
	"github.com/wizarding-anonymous/cryo-sub004/retry"
)

// Cache TTLs are operation-specific: volatile search results expire fast,
// single-entity lookups live longer.
const (
	userTTL         = 5 * time.Minute
	existsTTL       = 5 * time.Minute
	searchTTL       = time.Minute
	achievementsTTL = 2 * time.Minute
)

// Deps are the shared collaborators every peer client composes.
type Deps struct {
	Breaker circuitbreaker.Manager
	Retry   *retry.Executor
	Cache   *cache.Store
	Logger  log.Logger
}

func (d *Deps) logger() log.Logger {
	if d.Logger == nil {
		return &log.NoneLogger{}
	}

	return d.Logger
}

// call runs a network operation through the dependency's circuit, with the
// retry loop inside the breaker so one logical call records one breaker
// outcome. Cache hits never reach this path.
func call(ctx context.Context, deps Deps, dep circuitbreaker.Dependency, op retry.Operation) (any, error) {
	return deps.Breaker.Execute(dep, func() (any, error) {
		return deps.Retry.Do(ctx, op)
	})
}

// User is the peer user-service representation consumed by this layer.
type User struct {
	ID          uuid.UUID `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	AvatarURL   string    `json:"avatar_url,omitempty"`
}

// Notification is an outbound notification payload.
type Notification struct {
	UserID uuid.UUID `json:"user_id"`
	Type   string    `json:"type"`
	Title  string    `json:"title"`
	Body   string    `json:"body"`
}

// ProgressEvent reports achievement progress for a player.
type ProgressEvent struct {
	UserID        uuid.UUID `json:"user_id"`
	AchievementID string    `json:"achievement_id"`
	Progress      int       `json:"progress"`
}

// Achievement is the peer achievement-service representation.
type Achievement struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Progress    int        `json:"progress"`
	UnlockedAt  *time.Time `json:"unlocked_at,omitempty"`
}

func userKey(id uuid.UUID) string {
	return "users:id:" + id.String()
}

func userExistsKey(id uuid.UUID) string {
	return "users:exists:" + id.String()
}

// userBatchKey derives a deterministic key from an ID list: the list is
// sorted and deduplicated before hashing so every ordering of the same set
// hits the same entry.
func userBatchKey(ids []uuid.UUID) (string, []uuid.UUID) {
	normalized := make([]string, 0, len(ids))

	seen := make(map[uuid.UUID]struct{}, len(ids))
	unique := make([]uuid.UUID, 0, len(ids))

	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}

		seen[id] = struct{}{}
		unique = append(unique, id)
		normalized = append(normalized, id.String())
	}

	sort.Strings(normalized)

	sum := sha256.Sum256([]byte(strings.Join(normalized, ",")))

	return "users:batch:" + hex.EncodeToString(sum[:16]), unique
}

// searchKey case-folds and trims the query so trivially different spellings
// share one entry.
func searchKey(query string, limit int) (string, string) {
	folded := strings.Join(strings.Fields(strings.ToLower(query)), " ")

	sum := sha256.Sum256([]byte(folded))

	return "users:search:" + hex.EncodeToString(sum[:16]) + ":" + strconv.Itoa(limit), folded
}

func achievementsKey(playerID uuid.UUID) string {
	return "achievements:player:" + playerID.String()
}
