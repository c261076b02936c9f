package cache

import (
	"context"
	"encoding/json"
	"time"

	"energydash/ports"
)

// GetJSON decodes a cached JSON value into dest. A value that no longer
// decodes is treated as a miss.
func GetJSON(ctx context.Context, c ports.Cache, key string, dest interface{}) (bool, error) {
	data, found, err := c.Get(ctx, key)
	if err != nil || !found {
		return false, err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, nil
	}
	return true, nil
}

// SetJSON stores value as JSON.
func SetJSON(ctx context.Context, c ports.Cache, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.Set(ctx, key, data, ttl)
}
