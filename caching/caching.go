// Package caching keeps a small Redis-backed cache of fetched object
// metadata so repeated links skip the HeadObject round trip.
package caching

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vidmerge/vidmerge-bot/models"
)

const metadataTTL = 10 * time.Minute

type MetadataCache struct {
	client *redis.Client
}

// NewMetadataCache returns nil when addr is empty; a nil cache is a no-op.
func NewMetadataCache(addr string) *MetadataCache {
	if addr == "" {
		return nil
	}
	return &MetadataCache{
		client: redis.NewClient(&redis.Options{Addr: addr}),
	}
}

func (c *MetadataCache) GetFileRef(ctx context.Context, key string) (*models.FileRef, bool) {
	if c == nil {
		return nil, false
	}

	raw, err := c.client.Get(ctx, cacheKey(key)).Bytes()
	if err != nil {
		return nil, false
	}

	var ref models.FileRef
	if err := json.Unmarshal(raw, &ref); err != nil {
		return nil, false
	}
	return &ref, true
}

func (c *MetadataCache) SetFileRef(ctx context.Context, key string, ref *models.FileRef) error {
	if c == nil || ref == nil {
		return nil
	}

	raw, err := json.Marshal(ref)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, cacheKey(key), raw, metadataTTL).Err()
}

func (c *MetadataCache) IsReady(ctx context.Context) error {
	if c == nil {
		return errors.New("cache disabled")
	}
	return c.client.Ping(ctx).Err()
}

func (c *MetadataCache) Name() string {
	return "Cache[metadata]"
}

func (c *MetadataCache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}

func cacheKey(objectKey string) string {
	return fmt.Sprintf("vidmerge:meta:%s", objectKey)
}
