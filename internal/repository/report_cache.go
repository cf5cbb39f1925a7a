package repository

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
)

const (
	reportKeyPrefix    = "grading:report:"
	reportGenKeyPrefix = "grading:report-gen:"
)

// ReportCache 学生成绩报告缓存。报告按 (学生, 代数) 存储，
// 成绩写入时 INCR 代数，旧代数下的报告不再被读到，等 TTL 过期
type ReportCache struct {
	Redis *redis.Client
}

func NewReportCache(rdb *redis.Client) *ReportCache {
	return &ReportCache{Redis: rdb}
}

func reportKey(studentID string, gen int64) string {
	return reportKeyPrefix + studentID + ":" + strconv.FormatInt(gen, 10)
}

func reportGenKey(studentID string) string {
	return reportGenKeyPrefix + studentID
}

// Generation 当前代数，从未失效过的学生为 0
func (c *ReportCache) Generation(ctx context.Context, studentID string) (int64, error) {
	gen, err := c.Redis.Get(ctx, reportGenKey(studentID)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, errors.Wrap(err, "get report generation")
	}
	return gen, nil
}

// Get 命中时解码到 dst 并返回 true
func (c *ReportCache) Get(ctx context.Context, studentID string, gen int64, dst interface{}) (bool, error) {
	raw, err := c.Redis.Get(ctx, reportKey(studentID, gen)).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrap(err, "get cached report")
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, errors.Wrap(err, "decode cached report")
	}
	return true, nil
}

func (c *ReportCache) Set(ctx context.Context, studentID string, gen int64, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return errors.Wrap(err, "encode report")
	}
	return errors.Wrap(c.Redis.Set(ctx, reportKey(studentID, gen), raw, ttl).Err(), "cache report")
}

func (c *ReportCache) Invalidate(ctx context.Context, studentID string) error {
	return errors.Wrap(c.Redis.Incr(ctx, reportGenKey(studentID)).Err(), "invalidate cached report")
}
