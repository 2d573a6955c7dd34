package utils

import (
	"context"       // Context for Redis operations
	"encoding/json" // JSON encoding/decoding
	"strconv"       // Key formatting
	"time"          // Time durations

	"github.com/redis/go-redis/v9" // Redis client
)

const (
	examListKeyPrefix  = "exams:list"             // Exam listings, optionally per owner
	cacheGenerationKey = "cache:exams:generation" // Bumped by every invalidation
)

// ExamListCacheKey is the key of the exam listing, filtered by owner when ownerID is non-zero
func ExamListCacheKey(ownerID uint) string {
	if ownerID == 0 {
		return examListKeyPrefix
	}
	return examListKeyPrefix + ":owner=" + strconv.FormatUint(uint64(ownerID), 10)
}

// ExamQuestionsCacheKey is the key of the question listing of one exam
func ExamQuestionsCacheKey(examID uint) string {
	return "exam:" + strconv.FormatUint(uint64(examID), 10) + ":questions"
}

// GetCache retrieves a value from Redis and unmarshals it into dest. A nil client is a permanent miss.
func GetCache(ctx context.Context, rdb *redis.Client, key string, dest any) (bool, error) {
	if rdb == nil {
		return false, nil // Caching disabled
	}
	val, err := rdb.Get(ctx, key).Result() // Get value from Redis
	if err == redis.Nil {
		return false, nil // Key does not exist
	} else if err != nil {
		return false, err // Other Redis error
	}
	return true, json.Unmarshal([]byte(val), dest) // Unmarshal JSON into dest
}

// SetCache sets a value in Redis with a specified TTL
func SetCache(ctx context.Context, rdb *redis.Client, key string, value any, ttl time.Duration) error {
	if rdb == nil {
		return nil // Caching disabled
	}
	b, err := json.Marshal(value) // Marshal value to JSON
	if err != nil {
		return err // Return error if marshaling fails
	}
	return rdb.Set(ctx, key, b, ttl).Err() // Set value in Redis with TTL
}

// CacheGeneration returns the current invalidation counter. Read it before loading a listing and pass it
// to SetCacheIfCurrent.
func CacheGeneration(ctx context.Context, rdb *redis.Client) (int64, error) {
	if rdb == nil {
		return 0, nil // Caching disabled
	}
	gen, err := rdb.Get(ctx, cacheGenerationKey).Int64()
	if err == redis.Nil {
		return 0, nil // Never invalidated
	}
	return gen, err
}

// SetCacheIfCurrent stores value only when no invalidation happened since gen was read, so a listing
// loaded before a concurrent write is never written back over the invalidation. It reports whether
// the value was stored.
func SetCacheIfCurrent(ctx context.Context, rdb *redis.Client, key string, value any, ttl time.Duration, gen int64) (bool, error) {
	if rdb == nil {
		return false, nil // Caching disabled
	}
	b, err := json.Marshal(value) // Marshal value to JSON
	if err != nil {
		return false, err
	}
	stored := false
	err = rdb.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, cacheGenerationKey).Int64()
		if err != nil && err != redis.Nil {
			return err
		}
		if current != gen {
			return nil // Invalidated while loading
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, b, ttl)
			return nil
		})
		stored = err == nil
		return err
	}, cacheGenerationKey)
	if err == redis.TxFailedErr {
		return false, nil // Invalidation raced the write
	}
	return stored, err
}

// DeleteCache deletes keys from Redis
func DeleteCache(ctx context.Context, rdb *redis.Client, keys ...string) error {
	if rdb == nil || len(keys) == 0 {
		return nil // Nothing to delete
	}
	return rdb.Del(ctx, keys...).Err() // Delete keys from Redis
}

// DeleteCachePrefix deletes every key starting with prefix
func DeleteCachePrefix(ctx context.Context, rdb *redis.Client, prefix string) error {
	if rdb == nil {
		return nil // Caching disabled
	}
	var keys []string
	iter := rdb.Scan(ctx, 0, prefix+"*", 100).Iterator() // Walk matching keys
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	return DeleteCache(ctx, rdb, keys...)
}

// InvalidateExamCaches drops every exam listing and the question listings of the given exams
func InvalidateExamCaches(ctx context.Context, rdb *redis.Client, examIDs ...uint) error {
	if rdb == nil {
		return nil // Caching disabled
	}
	if err := rdb.Incr(ctx, cacheGenerationKey).Err(); err != nil {
		return err // Fence off listings loaded before this point
	}
	if err := DeleteCachePrefix(ctx, rdb, examListKeyPrefix); err != nil {
		return err
	}
	keys := make([]string, 0, len(examIDs))
	for _, id := range examIDs {
		keys = append(keys, ExamQuestionsCacheKey(id))
	}
	return DeleteCache(ctx, rdb, keys...)
}
