package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"recipe-chat/internal/pkg/common"

	"github.com/go-redis/redis/v8"
)

const redisKeyPrefix = "chat:session:"

// RedisStore redis 後端的狀態存放，供多副本部署共用
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore 建立 redis 後端並測試連線
func NewRedisStore(addr, password string, db int, ttl time.Duration) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	// 測試連接
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStore{
		client: client,
		ttl:    ttl,
	}, nil
}

// Get 取得狀態
func (s *RedisStore) Get(ctx context.Context, sid string) (State, bool, error) {
	data, err := s.client.Get(ctx, redisKeyPrefix+sid).Bytes()
	if err != nil {
		if err == redis.Nil {
			return State{}, false, nil
		}
		return State{}, false, fmt.Errorf("failed to get session: %w", err)
	}

	var st State
	if err := common.ParseJSONBytes(data, &st); err != nil {
		return State{}, false, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return st, true, nil
}

// Save 寫入狀態並展延存活時間
func (s *RedisStore) Save(ctx context.Context, sid string, st State) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := s.client.Set(ctx, redisKeyPrefix+sid, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Delete 移除狀態
func (s *RedisStore) Delete(ctx context.Context, sid string) error {
	if err := s.client.Del(ctx, redisKeyPrefix+sid).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Close 關閉連線
func (s *RedisStore) Close() error {
	return s.client.Close()
}
