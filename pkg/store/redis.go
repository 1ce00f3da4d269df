package store

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ovokpus/PostAssist/pkg/apperr"
	"github.com/ovokpus/PostAssist/pkg/models"
)

// RedisStore persists tasks in Redis as JSON values under "task:" keys
// with a TTL applied on every write.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a store from a redis URL
// (redis://[user:pass@]host:port/db).
func NewRedisStore(url string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, err, "parsing store URL")
	}
	return &RedisStore{client: redis.NewClient(opts)}, nil
}

// NewRedisStoreFromClient wraps an existing client. Used by tests.
func NewRedisStoreFromClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// backendError classifies a failed Redis command. Context errors bubbled up
// from the caller keep their own kinds so the fallback adapter only degrades
// on genuine backend unavailability.
func backendError(err error, format string, args ...any) error {
	switch {
	case errors.Is(err, context.Canceled):
		return apperr.Wrap(apperr.KindCancelled, err, format, args...)
	case errors.Is(err, context.DeadlineExceeded):
		return apperr.Wrap(apperr.KindTimeout, err, format, args...)
	default:
		return apperr.Wrap(apperr.KindUnavailable, err, format, args...)
	}
}

// Put implements Store.
func (s *RedisStore) Put(ctx context.Context, task *models.Task, ttl time.Duration) error {
	data, err := encodeTask(task)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, taskKey(task.TaskID), data, ttl).Err(); err != nil {
		return backendError(err, "redis SET %s", task.TaskID)
	}
	return nil
}

// Create implements Store using SETNX semantics.
func (s *RedisStore) Create(ctx context.Context, task *models.Task, ttl time.Duration) error {
	data, err := encodeTask(task)
	if err != nil {
		return err
	}
	ok, err := s.client.SetNX(ctx, taskKey(task.TaskID), data, ttl).Result()
	if err != nil {
		return backendError(err, "redis SETNX %s", task.TaskID)
	}
	if !ok {
		return apperr.New(apperr.KindAlreadyExists, "task %s already exists", task.TaskID)
	}
	return nil
}

// Get implements Store.
func (s *RedisStore) Get(ctx context.Context, taskID string) (*models.Task, error) {
	data, err := s.client.Get(ctx, taskKey(taskID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, apperr.New(apperr.KindNotFound, "task %s not found", taskID)
	}
	if err != nil {
		return nil, backendError(err, "redis GET %s", taskID)
	}
	return decodeTask(data)
}

// List implements Store by scanning the "task:" prefix.
func (s *RedisStore) List(ctx context.Context) ([]*models.Task, error) {
	var tasks []*models.Task
	iter := s.client.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		data, err := s.client.Get(ctx, iter.Val()).Bytes()
		if errors.Is(err, redis.Nil) {
			continue // expired between SCAN and GET
		}
		if err != nil {
			return nil, backendError(err, "redis GET %s", iter.Val())
		}
		task, err := decodeTask(data)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	if err := iter.Err(); err != nil {
		return nil, backendError(err, "redis SCAN")
	}
	return tasks, nil
}

// Delete implements Store.
func (s *RedisStore) Delete(ctx context.Context, taskID string) error {
	if err := s.client.Del(ctx, taskKey(taskID)).Err(); err != nil {
		return backendError(err, "redis DEL %s", taskID)
	}
	return nil
}

// Ping checks backend reachability.
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return backendError(err, "redis PING")
	}
	return nil
}

// Close releases the underlying client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
