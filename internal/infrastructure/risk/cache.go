package risk

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/protecta/backend/internal/domain/proposal"
	"github.com/protecta/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const tierKeyPrefix = "risk:tier:"

// Classifier is the classification source the cache wraps
type Classifier interface {
	Classify(ctx context.Context, customerID uuid.UUID) (proposal.RiskTier, error)
}

// TierCache stores customer tiers for a bounded time
type TierCache interface {
	Get(ctx context.Context, customerID uuid.UUID) (proposal.RiskTier, bool, error)
	Set(ctx context.Context, customerID uuid.UUID, tier proposal.RiskTier) error
}

// CachedClassifier wraps a Classifier with a TierCache. Cache failures are
// logged and absorbed; classification always falls through to the source.
type CachedClassifier struct {
	source Classifier
	cache  TierCache
	logger *zap.Logger
}

// NewCachedClassifier creates a caching decorator around source
func NewCachedClassifier(source Classifier, cache TierCache, logger *zap.Logger) *CachedClassifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedClassifier{source: source, cache: cache, logger: logger}
}

// Classify returns the cached tier when present, otherwise consults the
// source and caches the result
func (c *CachedClassifier) Classify(ctx context.Context, customerID uuid.UUID) (proposal.RiskTier, error) {
	tier, hit, err := c.cache.Get(ctx, customerID)
	if err != nil {
		c.logger.Warn("risk tier cache read failed",
			zap.String("customer_id", customerID.String()),
			zap.Error(err))
	} else if hit {
		return tier, nil
	}

	tier, err = c.source.Classify(ctx, customerID)
	if err != nil {
		return "", err
	}

	if err := c.cache.Set(ctx, customerID, tier); err != nil {
		c.logger.Warn("risk tier cache write failed",
			zap.String("customer_id", customerID.String()),
			zap.Error(err))
	}
	return tier, nil
}

// RedisTierCache implements TierCache on Redis
type RedisTierCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisTierCache creates a Redis-backed tier cache using an existing client
func NewRedisTierCache(client *redis.Client, ttl time.Duration) *RedisTierCache {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &RedisTierCache{client: client, ttl: ttl}
}

// NewRedisTierCacheFromConfig connects to Redis and returns a tier cache
func NewRedisTierCacheFromConfig(redisCfg config.RedisConfig, riskCfg config.RiskConfig) (*RedisTierCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     redisCfg.Addr(),
		Password: redisCfg.Password,
		DB:       redisCfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisTierCache(client, riskCfg.CacheTTL), nil
}

// Get reads a cached tier; a stored value outside the known tiers counts
// as a miss
func (c *RedisTierCache) Get(ctx context.Context, customerID uuid.UUID) (proposal.RiskTier, bool, error) {
	value, err := c.client.Get(ctx, tierKeyPrefix+customerID.String()).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	tier := proposal.RiskTier(value)
	if !tier.IsValid() {
		return "", false, nil
	}
	return tier, true, nil
}

// Set caches the tier with the configured TTL
func (c *RedisTierCache) Set(ctx context.Context, customerID uuid.UUID, tier proposal.RiskTier) error {
	return c.client.Set(ctx, tierKeyPrefix+customerID.String(), tier.String(), c.ttl).Err()
}

// Close closes the underlying Redis client
func (c *RedisTierCache) Close() error {
	return c.client.Close()
}

var _ Classifier = (*HTTPClient)(nil)
var _ Classifier = (*CachedClassifier)(nil)
