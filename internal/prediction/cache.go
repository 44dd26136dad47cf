package prediction

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Tesis-SiembraSmart/api-modelos/internal/common/logger"
	"github.com/Tesis-SiembraSmart/api-modelos/internal/common/metrics"
	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "prediction:"

// ScopedPredictor is a Predictor that can say how a crop is currently
// served. The Dispatcher implements it.
type ScopedPredictor interface {
	Predictor
	CacheScope(crop string) (string, bool)
}

// CachedPredictor memoises successful predictions in Redis. Cache failures
// are logged and never fail a request.
type CachedPredictor struct {
	next   ScopedPredictor
	redis  redis.Cmdable
	ttl    time.Duration
	logger logger.Logger
}

func NewCachedPredictor(next ScopedPredictor, client redis.Cmdable, ttl time.Duration, log logger.Logger) *CachedPredictor {
	return &CachedPredictor{
		next:   next,
		redis:  client,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "prediction-cache"}),
	}
}

func (c *CachedPredictor) Predict(ctx context.Context, crop string, params map[string]interface{}) (*Result, error) {
	scope, ok := c.next.CacheScope(crop)
	if !ok {
		// Unserved crops bypass the cache.
		return c.next.Predict(ctx, crop, params)
	}

	key, err := CacheKey(scope, params)
	if err != nil {
		// Parameters that cannot be encoded are never cacheable; the
		// dispatcher reports them as invalid.
		return c.next.Predict(ctx, crop, params)
	}

	if res, ok := c.lookup(ctx, key); ok {
		return res, nil
	}

	res, err := c.next.Predict(ctx, crop, params)
	if err != nil {
		return nil, err
	}

	c.store(ctx, key, res)
	return res, nil
}

func (c *CachedPredictor) lookup(ctx context.Context, key string) (*Result, bool) {
	cached, err := c.redis.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		metrics.CacheLookups.WithLabelValues("miss").Inc()
		return nil, false
	}
	if err != nil {
		metrics.CacheLookups.WithLabelValues("error").Inc()
		c.logger.Warn("cache read failed", map[string]interface{}{"key": key, "error": err.Error()})
		return nil, false
	}

	var res Result
	if err := json.Unmarshal([]byte(cached), &res); err != nil {
		metrics.CacheLookups.WithLabelValues("error").Inc()
		c.logger.Warn("cache entry corrupt", map[string]interface{}{"key": key, "error": err.Error()})
		return nil, false
	}
	metrics.CacheLookups.WithLabelValues("hit").Inc()
	return &res, true
}

func (c *CachedPredictor) store(ctx context.Context, key string, res *Result) {
	payload, err := json.Marshal(res)
	if err != nil {
		c.logger.Warn("cache encode failed", map[string]interface{}{"key": key, "error": err.Error()})
		return
	}
	if err := c.redis.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.logger.Warn("cache write failed", map[string]interface{}{"key": key, "error": err.Error()})
	}
}

// CacheKey is prediction:<scope>:<sha256 of the params JSON>. encoding/json
// sorts map keys, so equal parameter sets hash equally.
func CacheKey(scope string, params map[string]interface{}) (string, error) {
	raw, err := json.Marshal(params)
	if err != nil {
		return "", fmt.Errorf("encode params: %w", err)
	}
	return cacheKeyPrefix + strings.ToLower(scope) + ":" + digest(raw), nil
}

func digest(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
