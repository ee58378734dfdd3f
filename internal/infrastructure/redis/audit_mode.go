package redis

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

const DefaultAuditModeKey = "haccp:audit_mode"

// AuditModeFlag keeps the global audit-mode switch in a single key so every
// instance of the service sees the same value.
type AuditModeFlag struct {
	client *redis.Client
	key    string
}

func NewAuditModeFlag(client *redis.Client, key string) *AuditModeFlag {
	if key == "" {
		key = DefaultAuditModeKey
	}
	return &AuditModeFlag{client: client, key: key}
}

// Enabled reports false when the key was never set.
func (f *AuditModeFlag) Enabled(ctx context.Context) (bool, error) {
	v, err := f.client.Get(ctx, f.key).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return v == "1", nil
}

func (f *AuditModeFlag) Set(ctx context.Context, enabled bool) error {
	v := "0"
	if enabled {
		v = "1"
	}
	return f.client.Set(ctx, f.key, v, 0).Err()
}
