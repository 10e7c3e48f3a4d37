package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/subtitleops/captionlint/pkg/models"
)

// Cache provides caching functionality using Redis
type Cache struct {
	client *redis.Client
}

// NewCache creates a new cache instance
func NewCache(host string, port int, password string, db int) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: password,
		DB:       db,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Cache{client: client}, nil
}

// Close closes the Redis connection
func (c *Cache) Close() error {
	return c.client.Close()
}

// Report Cache Operations
//
// Reports are derived values, recomputed from the documents on demand; the
// cache key is the pair of content hashes, so a re-upload of identical bytes
// reuses the previous result without trusting any stale state.

// SetReport caches a validation report under the reference/translated
// content-hash pair
func (c *Cache) SetReport(ctx context.Context, refHash, docHash string, report *models.Report, ttl time.Duration) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	key := fmt.Sprintf("report:%s:%s", refHash, docHash)
	return c.client.Set(ctx, key, data, ttl).Err()
}

// GetReport retrieves a cached report for a content-hash pair
func (c *Cache) GetReport(ctx context.Context, refHash, docHash string) (*models.Report, error) {
	key := fmt.Sprintf("report:%s:%s", refHash, docHash)
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Cache miss
		}
		return nil, fmt.Errorf("failed to get report from cache: %w", err)
	}

	var report models.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report: %w", err)
	}

	return &report, nil
}

// Run Cache Operations

// SetRun caches run metadata
func (c *Cache) SetRun(ctx context.Context, run *models.ValidationRun, ttl time.Duration) error {
	data, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to marshal run: %w", err)
	}

	key := fmt.Sprintf("run:%s", run.ID)
	return c.client.Set(ctx, key, data, ttl).Err()
}

// GetRun retrieves run metadata from cache
func (c *Cache) GetRun(ctx context.Context, runID string) (*models.ValidationRun, error) {
	key := fmt.Sprintf("run:%s", runID)
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Cache miss
		}
		return nil, fmt.Errorf("failed to get run from cache: %w", err)
	}

	var run models.ValidationRun
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run: %w", err)
	}

	return &run, nil
}

// DeleteRun removes a run from cache
func (c *Cache) DeleteRun(ctx context.Context, runID string) error {
	key := fmt.Sprintf("run:%s", runID)
	return c.client.Del(ctx, key).Err()
}

// SetRunProgress caches run progress for quick status polling
func (c *Cache) SetRunProgress(ctx context.Context, runID string, completed, total int, ttl time.Duration) error {
	key := fmt.Sprintf("run:progress:%s", runID)
	return c.client.Set(ctx, key, fmt.Sprintf("%d/%d", completed, total), ttl).Err()
}

// GetRunProgress retrieves run progress from cache
func (c *Cache) GetRunProgress(ctx context.Context, runID string) (string, error) {
	key := fmt.Sprintf("run:progress:%s", runID)
	progress, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return "", nil // Cache miss
		}
		return "", fmt.Errorf("failed to get run progress: %w", err)
	}
	return progress, nil
}

// Stats Cache Operations

// IncrementStat increments a statistic counter
func (c *Cache) IncrementStat(ctx context.Context, stat string) error {
	key := fmt.Sprintf("stats:%s", stat)
	return c.client.Incr(ctx, key).Err()
}

// GetStat retrieves a statistic value
func (c *Cache) GetStat(ctx context.Context, stat string) (int64, error) {
	key := fmt.Sprintf("stats:%s", stat)
	return c.client.Get(ctx, key).Int64()
}

// Rate Limiting Operations

// CheckRateLimit checks if a rate limit has been exceeded
func (c *Cache) CheckRateLimit(ctx context.Context, key string, limit int64, window time.Duration) (bool, error) {
	rateLimitKey := fmt.Sprintf("ratelimit:%s", key)

	// Increment counter
	count, err := c.client.Incr(ctx, rateLimitKey).Result()
	if err != nil {
		return false, fmt.Errorf("failed to increment rate limit: %w", err)
	}

	// Set expiry on first request
	if count == 1 {
		if err := c.client.Expire(ctx, rateLimitKey, window).Err(); err != nil {
			return false, fmt.Errorf("failed to set expiry: %w", err)
		}
	}

	// Check if limit exceeded
	return count <= limit, nil
}

// Locking Operations

// AcquireLock attempts to acquire a distributed lock. Used to keep two
// workers from validating the same document when a job gets redelivered.
func (c *Cache) AcquireLock(ctx context.Context, resource string, ttl time.Duration) (bool, error) {
	key := fmt.Sprintf("lock:%s", resource)
	return c.client.SetNX(ctx, key, "locked", ttl).Result()
}

// ReleaseLock releases a distributed lock
func (c *Cache) ReleaseLock(ctx context.Context, resource string) error {
	key := fmt.Sprintf("lock:%s", resource)
	return c.client.Del(ctx, key).Err()
}

// Exists checks if a key exists
func (c *Cache) Exists(ctx context.Context, key string) (bool, error) {
	result, err := c.client.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return result > 0, nil
}

// Health check
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
