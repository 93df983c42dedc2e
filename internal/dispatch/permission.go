package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/agritechlabs/agroalert-backend/pkg/redis"
	"github.com/google/uuid"
)

const permissionGranted = "granted"

// PermissionBackend is the slice of the redis client the permission store
// uses.
type PermissionBackend interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	PermissionKey(userID string) string
}

// RedisPermissions keeps the per-user push permission flag in redis so every
// worker sees the same grant state.
type RedisPermissions struct {
	backend PermissionBackend
	ttl     time.Duration
}

// NewRedisPermissions builds the permission store. A zero TTL makes grants
// permanent.
func NewRedisPermissions(backend PermissionBackend, ttl time.Duration) (*RedisPermissions, error) {
	if backend == nil {
		return nil, fmt.Errorf("redis backend required")
	}
	return &RedisPermissions{backend: backend, ttl: ttl}, nil
}

// Granted reports whether the user has granted push permission.
func (r *RedisPermissions) Granted(ctx context.Context, userID uuid.UUID) (bool, error) {
	value, err := r.backend.Get(ctx, r.backend.PermissionKey(userID.String()))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	return value == permissionGranted, nil
}

// Grant records the user's permission grant.
func (r *RedisPermissions) Grant(ctx context.Context, userID uuid.UUID) error {
	return r.backend.Set(ctx, r.backend.PermissionKey(userID.String()), permissionGranted, r.ttl)
}
