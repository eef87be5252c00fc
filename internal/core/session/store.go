// Package session 保管 sid → 對話狀態的對應。
// 核心引擎不碰這張表：每一輪只拿到、也只交回單一 session 的狀態值。
package session

import (
	"context"
	"sync"
	"time"

	"recipe-chat/internal/core/dialogue"
	"recipe-chat/internal/pkg/common"

	"go.uber.org/zap"
)

// State 單一對話的持久化狀態
type State struct {
	Dialogue dialogue.State  `json:"state"`
	Memory   dialogue.Memory `json:"memory"`
}

// NewState 新對話的初始狀態
func NewState() State {
	return State{Dialogue: dialogue.StateIdle}
}

// Store 狀態存放介面；memory 與 redis 兩種後端
type Store interface {
	// Get 取得狀態；第二個回傳值為 false 表示 session 不存在
	Get(ctx context.Context, sid string) (State, bool, error)
	Save(ctx context.Context, sid string, st State) error
	Delete(ctx context.Context, sid string) error
	Close() error
}

// memoryEntry 記憶體後端的單筆條目
type memoryEntry struct {
	state     State
	expiresAt time.Time
}

// MemoryStore 行程內的狀態存放；單機部署的預設後端
type MemoryStore struct {
	mu    sync.RWMutex
	store map[string]memoryEntry
	ttl   time.Duration
	done  chan struct{}
}

// NewMemoryStore 建立記憶體後端並啟動過期清理
func NewMemoryStore(ttl time.Duration, cleanupInterval time.Duration) *MemoryStore {
	s := &MemoryStore{
		store: make(map[string]memoryEntry),
		ttl:   ttl,
		done:  make(chan struct{}),
	}
	go s.startCleanup(cleanupInterval)
	return s
}

// Get 取得狀態
func (s *MemoryStore) Get(ctx context.Context, sid string) (State, bool, error) {
	s.mu.RLock()
	entry, ok := s.store[sid]
	s.mu.RUnlock()

	if !ok || time.Now().After(entry.expiresAt) {
		return State{}, false, nil
	}
	return entry.state, true, nil
}

// Save 寫入狀態並展延存活時間
func (s *MemoryStore) Save(ctx context.Context, sid string, st State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store[sid] = memoryEntry{
		state:     st,
		expiresAt: time.Now().Add(s.ttl),
	}
	return nil
}

// Delete 移除狀態
func (s *MemoryStore) Delete(ctx context.Context, sid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.store, sid)
	return nil
}

// Close 停止清理協程
func (s *MemoryStore) Close() error {
	close(s.done)
	return nil
}

// startCleanup 週期性移除過期 session
func (s *MemoryStore) startCleanup(interval time.Duration) {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			now := time.Now()
			count := 0
			s.mu.Lock()
			for sid, entry := range s.store {
				if now.After(entry.expiresAt) {
					delete(s.store, sid)
					count++
				}
			}
			remaining := len(s.store)
			s.mu.Unlock()

			if count > 0 {
				common.LogInfo("過期 session 已清理",
					zap.Int("清理數量", count),
					zap.Int("剩餘數量", remaining),
				)
			}
		}
	}
}
