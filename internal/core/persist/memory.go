package persist

import (
	"context"
	"sync"
	"time"

	"cocktail-recommender/internal/pkg/common"

	"go.uber.org/zap"
)

// MemoryStore 行程內的持久化策略，支援 TTL 與 LRU 淘汰
type MemoryStore struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	store   map[string]memoryEntry
	stats   memoryStats
	now     func() time.Time
}

// memoryEntry 快取條目
type memoryEntry struct {
	data        []byte
	expiresAt   time.Time
	lastAccess  time.Time
	accessCount int
}

// memoryStats 快取統計
type memoryStats struct {
	hits      int64
	misses    int64
	evictions int64
}

// NewMemoryStore 創建記憶體持久化策略，ttl 為 0 表示不過期
func NewMemoryStore(maxSize int, ttl time.Duration) *MemoryStore {
	if maxSize <= 0 {
		maxSize = 1000
	}
	return &MemoryStore{
		maxSize: maxSize,
		ttl:     ttl,
		store:   make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Load 讀取網域資料
func (m *MemoryStore) Load(_ context.Context, domain string, v any) (bool, error) {
	m.mu.Lock()
	entry, exists := m.store[domain]
	if !exists {
		m.stats.misses++
		m.mu.Unlock()
		common.LogCacheMiss("memory", domain)
		return false, nil
	}

	// 檢查是否過期
	if m.expired(entry) {
		delete(m.store, domain)
		m.stats.evictions++
		m.stats.misses++
		m.mu.Unlock()
		common.LogDebug("快取已過期", zap.String("鍵", domain))
		return false, nil
	}

	// 更新訪問統計
	entry.lastAccess = m.now()
	entry.accessCount++
	m.store[domain] = entry
	m.stats.hits++
	data := entry.data
	m.mu.Unlock()

	common.LogCacheHit("memory", domain)
	if err := decode(domain, data, v); err != nil {
		return false, err
	}
	return true, nil
}

// Save 寫入網域資料
func (m *MemoryStore) Save(_ context.Context, domain string, v any) error {
	data, err := encode(v)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.store[domain]; !exists && len(m.store) >= m.maxSize {
		// 先清理過期項目，仍超過則執行 LRU
		m.cleanup()
		if len(m.store) >= m.maxSize {
			m.evictLRU()
		}
	}

	now := m.now()
	entry := memoryEntry{
		data:       data,
		lastAccess: now,
	}
	if m.ttl > 0 {
		entry.expiresAt = now.Add(m.ttl)
	}
	m.store[domain] = entry
	return nil
}

// Delete 刪除網域資料
func (m *MemoryStore) Delete(_ context.Context, domain string) error {
	m.mu.Lock()
	delete(m.store, domain)
	m.mu.Unlock()
	return nil
}

// Len 目前條目數
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.store)
}

// GetStats 獲取快取統計信息
func (m *MemoryStore) GetStats() map[string]interface{} {
	m.mu.Lock()
	defer m.mu.Unlock()

	ratio := 0.0
	if total := m.stats.hits + m.stats.misses; total > 0 {
		ratio = float64(m.stats.hits) / float64(total)
	}
	return map[string]interface{}{
		"size":      len(m.store),
		"max_size":  m.maxSize,
		"hits":      m.stats.hits,
		"misses":    m.stats.misses,
		"evictions": m.stats.evictions,
		"hit_ratio": ratio,
	}
}

func (m *MemoryStore) expired(entry memoryEntry) bool {
	return !entry.expiresAt.IsZero() && m.now().After(entry.expiresAt)
}

// cleanup 清理過期的條目，呼叫者需持有鎖
func (m *MemoryStore) cleanup() int {
	count := 0
	for key, entry := range m.store {
		if m.expired(entry) {
			delete(m.store, key)
			count++
			m.stats.evictions++
		}
	}
	if count > 0 {
		common.LogDebug("清理過期快取", zap.Int("count", count), zap.Int("remaining_size", len(m.store)))
	}
	return count
}

// evictLRU 淘汰最少使用的條目，呼叫者需持有鎖
func (m *MemoryStore) evictLRU() {
	var oldestKey string
	var oldestAccess time.Time
	var lowestAccessCount int

	for key, entry := range m.store {
		if oldestKey == "" ||
			entry.accessCount < lowestAccessCount ||
			(entry.accessCount == lowestAccessCount && entry.lastAccess.Before(oldestAccess)) {
			oldestKey = key
			oldestAccess = entry.lastAccess
			lowestAccessCount = entry.accessCount
		}
	}

	if oldestKey != "" {
		delete(m.store, oldestKey)
		m.stats.evictions++
		common.LogDebug("快取已淘汰(LRU)", zap.String("鍵", oldestKey))
	}
}
