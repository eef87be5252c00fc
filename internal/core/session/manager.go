package session

import (
	"context"
	"sync"
)

// Manager 以 sid 為單位序列化對話輪：同一個 session 一次只允許
// 一輪在處理中；不同 session 完全獨立、可並行。
type Manager struct {
	store Store

	mu    sync.Mutex
	locks map[string]*sidLock
}

// sidLock 附帶引用計數，最後一個持有者離開時回收
type sidLock struct {
	mu   sync.Mutex
	refs int
}

// NewManager 包裝一個 Store
func NewManager(store Store) *Manager {
	return &Manager{
		store: store,
		locks: make(map[string]*sidLock),
	}
}

// Turn 在 sid 的鎖內執行一輪：讀出現況（不存在則為初始狀態）、
// 呼叫 fn、把回傳的新狀態寫回。fn 回傳錯誤時不寫回。
func (m *Manager) Turn(ctx context.Context, sid string, fn func(State) (State, error)) error {
	lock := m.acquire(sid)
	lock.mu.Lock()
	defer func() {
		lock.mu.Unlock()
		m.release(sid)
	}()

	st, ok, err := m.store.Get(ctx, sid)
	if err != nil {
		return err
	}
	if !ok {
		st = NewState()
	}

	next, err := fn(st)
	if err != nil {
		return err
	}

	return m.store.Save(ctx, sid, next)
}

// Peek 只讀取現況，不加 per-sid 鎖
func (m *Manager) Peek(ctx context.Context, sid string) (State, bool, error) {
	return m.store.Get(ctx, sid)
}

// Reset 丟棄 session 狀態
func (m *Manager) Reset(ctx context.Context, sid string) error {
	return m.store.Delete(ctx, sid)
}

// Close 關閉底層 Store
func (m *Manager) Close() error {
	return m.store.Close()
}

func (m *Manager) acquire(sid string) *sidLock {
	m.mu.Lock()
	defer m.mu.Unlock()
	lock, ok := m.locks[sid]
	if !ok {
		lock = &sidLock{}
		m.locks[sid] = lock
	}
	lock.refs++
	return lock
}

func (m *Manager) release(sid string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	lock, ok := m.locks[sid]
	if !ok {
		return
	}
	lock.refs--
	if lock.refs <= 0 {
		delete(m.locks, sid)
	}
}
