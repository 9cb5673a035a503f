package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"time"
)

// memoryItem stores a serialized value with optional expiration.
type memoryItem struct {
	data     []byte
	expireAt time.Time
}

func (m *memoryItem) expired() bool {
	return !m.expireAt.IsZero() && time.Now().After(m.expireAt)
}

// MemoryCache implements Service in memory. Values round-trip through JSON so
// it behaves like RedisCache; used as an embedded fallback and as a test double.
type MemoryCache struct {
	mu   sync.RWMutex
	data map[string]*memoryItem
}

// NewMemoryCache creates an in-memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{data: make(map[string]*memoryItem)}
}

func (mc *MemoryCache) Set(_ context.Context, key string, value interface{}, expiration time.Duration) error {
	var data []byte
	switch v := value.(type) {
	case string:
		data = []byte(v)
	default:
		var err error
		data, err = json.Marshal(value)
		if err != nil {
			return err
		}
	}

	var expireAt time.Time
	if expiration > 0 {
		expireAt = time.Now().Add(expiration)
	}

	mc.mu.Lock()
	mc.data[key] = &memoryItem{data: data, expireAt: expireAt}
	mc.mu.Unlock()
	return nil
}

func (mc *MemoryCache) Get(_ context.Context, key string, dest interface{}) error {
	mc.mu.Lock()
	item, exists := mc.data[key]
	if exists && item.expired() {
		delete(mc.data, key)
		exists = false
	}
	mc.mu.Unlock()

	if !exists {
		return ErrCacheMiss
	}

	if strPtr, ok := dest.(*string); ok {
		*strPtr = string(item.data)
		return nil
	}
	return json.Unmarshal(item.data, dest)
}

func (mc *MemoryCache) Delete(_ context.Context, keys ...string) error {
	mc.mu.Lock()
	for _, key := range keys {
		delete(mc.data, key)
	}
	mc.mu.Unlock()
	return nil
}

func (mc *MemoryCache) Exists(_ context.Context, keys ...string) (bool, error) {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	for _, key := range keys {
		if item, ok := mc.data[key]; ok && !item.expired() {
			return true, nil
		}
	}
	return false, nil
}

func (mc *MemoryCache) Increment(_ context.Context, key string) (int64, error) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	var count int64
	if item, ok := mc.data[key]; ok && !item.expired() {
		parsed, err := strconv.ParseInt(string(item.data), 10, 64)
		if err != nil {
			return 0, err
		}
		count = parsed
	}
	count++

	expireAt := time.Time{}
	if item, ok := mc.data[key]; ok {
		expireAt = item.expireAt
	}
	mc.data[key] = &memoryItem{data: []byte(strconv.FormatInt(count, 10)), expireAt: expireAt}
	return count, nil
}

func (mc *MemoryCache) Expire(_ context.Context, key string, expiration time.Duration) (bool, error) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	if item, ok := mc.data[key]; ok && !item.expired() {
		item.expireAt = time.Now().Add(expiration)
		return true, nil
	}
	return false, nil
}
