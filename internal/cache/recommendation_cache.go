// Package cache はレコメンド結果の Redis キャッシュを提供します。
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ajaykrishnavemula/Career-Hub-API/internal/port"
)

const (
	jobsKeyPrefix       = "rec:jobs"
	candidatesKeyPrefix = "rec:candidates"
)

var allModes = []port.SearchMode{port.SearchModePrimaryIndex, port.SearchModeFallbackStore}

// RedisOptions は Redis への接続設定です。
type RedisOptions struct {
	Address  string
	Password string
	DB       int
}

// NewRedisClient は Redis クライアントを生成し、疎通を確認します。
func NewRedisClient(ctx context.Context, opts RedisOptions) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Address,
		Password: opts.Password,
		DB:       opts.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", opts.Address, err)
	}
	return client, nil
}

type recommendationCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRecommendationCache は port.RecommendationCache の Redis 実装を生成します。
// キャッシュの失敗はログに残すのみで、呼び出し側はミスとして扱います。
func NewRecommendationCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) port.RecommendationCache {
	return &recommendationCache{client: client, ttl: ttl, logger: logger}
}

func jobsKey(mode port.SearchMode, applicantID string) string {
	return fmt.Sprintf("%s:%s:%s", jobsKeyPrefix, mode, applicantID)
}

func candidatesKey(mode port.SearchMode, jobID string) string {
	return fmt.Sprintf("%s:%s:%s", candidatesKeyPrefix, mode, jobID)
}

func (c *recommendationCache) JobsForApplicant(ctx context.Context, mode port.SearchMode, applicantID string) ([]port.JobHit, bool) {
	var hits []port.JobHit
	if !c.get(ctx, jobsKey(mode, applicantID), &hits) {
		return nil, false
	}
	return hits, true
}

func (c *recommendationCache) StoreJobsForApplicant(ctx context.Context, mode port.SearchMode, applicantID string, hits []port.JobHit) {
	c.set(ctx, jobsKey(mode, applicantID), hits)
}

func (c *recommendationCache) CandidatesForJob(ctx context.Context, mode port.SearchMode, jobID string) ([]port.ApplicantHit, bool) {
	var hits []port.ApplicantHit
	if !c.get(ctx, candidatesKey(mode, jobID), &hits) {
		return nil, false
	}
	return hits, true
}

func (c *recommendationCache) StoreCandidatesForJob(ctx context.Context, mode port.SearchMode, jobID string, hits []port.ApplicantHit) {
	c.set(ctx, candidatesKey(mode, jobID), hits)
}

// InvalidateApplicant は応募者の求人レコメンドを全モード分削除します。
func (c *recommendationCache) InvalidateApplicant(ctx context.Context, applicantID string) {
	keys := make([]string, 0, len(allModes))
	for _, m := range allModes {
		keys = append(keys, jobsKey(m, applicantID))
	}
	c.del(ctx, keys)
}

// InvalidateJob は求人の候補者レコメンドを全モード分削除します。
func (c *recommendationCache) InvalidateJob(ctx context.Context, jobID string) {
	keys := make([]string, 0, len(allModes))
	for _, m := range allModes {
		keys = append(keys, candidatesKey(m, jobID))
	}
	c.del(ctx, keys)
}

func (c *recommendationCache) get(ctx context.Context, key string, dst any) bool {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("recommendation cache read failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		c.logger.Warn("discarding undecodable cache entry", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (c *recommendationCache) set(ctx context.Context, key string, value any) {
	raw, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("failed to encode cache entry", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("recommendation cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (c *recommendationCache) del(ctx context.Context, keys []string) {
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn("recommendation cache invalidation failed", zap.Strings("keys", keys), zap.Error(err))
	}
}
