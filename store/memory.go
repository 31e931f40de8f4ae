package store

import (
	"context"
	"sync"
	"time"

	"github.com/rushteam/shoprec/core"
)

// MemoryStore 是进程内的 core.Store，适合测试和单进程 CLI。
// 过期 key 在读取时视为不存在，写入时顺带清理；Close 之后数据清空。
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]memValue
	now    func() time.Time
}

// memValue 的 expireAt 为零值表示永不过期。
type memValue struct {
	data     []byte
	expireAt time.Time
}

func (v memValue) expired(now time.Time) bool {
	return !v.expireAt.IsZero() && now.After(v.expireAt)
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		values: make(map[string]memValue),
		now:    time.Now,
	}
}

func (m *MemoryStore) Name() string { return "memory" }

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.values[key]
	if !ok || v.expired(m.now()) {
		return nil, core.ErrStoreNotFound
	}
	return v.data, nil
}

func (m *MemoryStore) Set(_ context.Context, key string, value []byte, ttl ...int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.sweepLocked(now)
	m.values[key] = memValue{data: value, expireAt: expireAt(now, ttl)}
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

func (m *MemoryStore) BatchGet(_ context.Context, keys []string) (map[string][]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	now := m.now()
	out := make(map[string][]byte, len(keys))
	for _, k := range keys {
		if v, ok := m.values[k]; ok && !v.expired(now) {
			out[k] = v.data
		}
	}
	return out, nil
}

func (m *MemoryStore) BatchSet(_ context.Context, kvs map[string][]byte, ttl ...int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.sweepLocked(now)
	exp := expireAt(now, ttl)
	for k, v := range kvs {
		m.values[k] = memValue{data: v, expireAt: exp}
	}
	return nil
}

// Close 清空数据，可重复调用。
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.values)
	return nil
}

func (m *MemoryStore) sweepLocked(now time.Time) {
	for k, v := range m.values {
		if v.expired(now) {
			delete(m.values, k)
		}
	}
}

// expireAt 把秒级 ttl 换算为过期时间，ttl 缺省或 <= 0 表示不过期。
func expireAt(now time.Time, ttl []int) time.Time {
	if len(ttl) == 0 || ttl[0] <= 0 {
		return time.Time{}
	}
	return now.Add(time.Duration(ttl[0]) * time.Second)
}

var _ core.Store = (*MemoryStore)(nil)
