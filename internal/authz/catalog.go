package authz

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// PermissionSet is the set of (resource type, action) pairs a role grants.
type PermissionSet map[ResourceType]map[Action]struct{}

// NewPermissionSet builds a set from "resource:action" pairs, skipping
// malformed or unknown entries.
func NewPermissionSet(pairs []string) PermissionSet {
	ps := make(PermissionSet)
	for _, pair := range pairs {
		resource, action, ok := strings.Cut(pair, ":")
		if !ok {
			continue
		}
		ps.Add(ResourceType(resource), Action(action))
	}
	return ps
}

// Add records a single grant. Unknown resource types or actions are ignored
// so a corrupt catalog row can never widen access.
func (ps PermissionSet) Add(resource ResourceType, action Action) {
	if !resource.Valid() || !action.Valid() {
		return
	}
	if ps[resource] == nil {
		ps[resource] = make(map[Action]struct{})
	}
	ps[resource][action] = struct{}{}
}

// Grants reports whether the set contains (resource, action) directly or via
// the manage wildcard, which implies create/read/update/delete.
func (ps PermissionSet) Grants(resource ResourceType, action Action) bool {
	actions, ok := ps[resource]
	if !ok {
		return false
	}
	if _, ok := actions[action]; ok {
		return true
	}
	_, wildcard := actions[ActionManage]
	return wildcard
}

// HasWildcard reports whether the set holds manage for the resource type.
func (ps PermissionSet) HasWildcard(resource ResourceType) bool {
	_, ok := ps[resource][ActionManage]
	return ok
}

// Pairs flattens the set into sorted-order-free "resource:action" strings.
func (ps PermissionSet) Pairs() []string {
	var pairs []string
	for resource, actions := range ps {
		for action := range actions {
			pairs = append(pairs, string(resource)+":"+string(action))
		}
	}
	return pairs
}

// CatalogSource loads a role's permission set from durable storage.
type CatalogSource interface {
	RolePermissions(ctx context.Context, roleID int64) (PermissionSet, error)
}

// Catalog answers permission queries for roles, caching permission sets in
// Redis. Role mutations call Invalidate to drop the cached entry.
type Catalog struct {
	source CatalogSource
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
	group  singleflight.Group
}

// NewCatalog constructs a Catalog. The Redis client is optional; without it
// every query hits the source.
func NewCatalog(source CatalogSource, client *redis.Client, ttl time.Duration, logger *slog.Logger) *Catalog {
	return &Catalog{source: source, client: client, ttl: ttl, logger: logger}
}

// HasPermission reports whether the role grants (resource, action).
func (c *Catalog) HasPermission(ctx context.Context, roleID int64, resource ResourceType, action Action) (bool, error) {
	ps, err := c.permissions(ctx, roleID)
	if err != nil {
		return false, err
	}
	return ps.Grants(resource, action), nil
}

// HasWildcard reports whether the role holds the manage wildcard for the
// resource type. The ownership evaluator uses this as its bypass.
func (c *Catalog) HasWildcard(ctx context.Context, roleID int64, resource ResourceType) (bool, error) {
	ps, err := c.permissions(ctx, roleID)
	if err != nil {
		return false, err
	}
	return ps.HasWildcard(resource), nil
}

// Invalidate drops the cached permission set for a role.
func (c *Catalog) Invalidate(ctx context.Context, roleID int64) {
	if c.client == nil {
		return
	}
	if err := c.client.Del(ctx, c.cacheKey(roleID)).Err(); err != nil && c.logger != nil {
		c.logger.Warn("catalog invalidate", slog.Int64("role_id", roleID), slog.Any("error", err))
	}
}

func (c *Catalog) permissions(ctx context.Context, roleID int64) (PermissionSet, error) {
	if c.client != nil {
		payload, err := c.client.Get(ctx, c.cacheKey(roleID)).Bytes()
		if err == nil {
			var pairs []string
			if err := json.Unmarshal(payload, &pairs); err == nil {
				return NewPermissionSet(pairs), nil
			}
		} else if !errors.Is(err, redis.Nil) && c.logger != nil {
			c.logger.Warn("catalog cache read", slog.Int64("role_id", roleID), slog.Any("error", err))
		}
	}

	// Concurrent misses for the same role collapse into one source load.
	resultChan := c.group.DoChan(c.cacheKey(roleID), func() (any, error) {
		return c.source.RolePermissions(ctx, roleID)
	})
	var ps PermissionSet
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-resultChan:
		if res.Err != nil {
			return nil, res.Err
		}
		ps = res.Val.(PermissionSet)
	}

	if c.client != nil {
		payload, err := json.Marshal(ps.Pairs())
		if err == nil {
			if err := c.client.Set(ctx, c.cacheKey(roleID), payload, c.ttl).Err(); err != nil && c.logger != nil {
				c.logger.Warn("catalog cache write", slog.Int64("role_id", roleID), slog.Any("error", err))
			}
		}
	}
	return ps, nil
}

func (c *Catalog) cacheKey(roleID int64) string {
	return "authz:role:" + strconv.FormatInt(roleID, 10)
}
