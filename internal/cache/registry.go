package cache

import (
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// Registry 按标识聚合各 provider 自有的 ContentCache，把路径失效事件广播给
// 全部缓存或定向到单个缓存。Registry 不负责缓存的生命周期：注销只断开引用，
// 不会清空缓存本身。
type Registry struct {
	mu     sync.RWMutex
	caches map[string]*ContentCache
	closed bool
	logger logrus.FieldLogger
}

type namedCache struct {
	id    string
	cache *ContentCache
}

// NewRegistry 创建处于活动状态的空注册表。
func NewRegistry(logger logrus.FieldLogger) *Registry {
	if logger == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		logger = discard
	}
	return &Registry{
		caches: make(map[string]*ContentCache),
		logger: logger,
	}
}

// RegisterCache 以 id 注册缓存；id 为空白或 c 为 nil 时忽略，重复 id 直接覆盖。
// id 去除首尾空白后作为键，所有按 id 的操作同样先 trim，" x" 与 "x" 指向同一缓存。
func (r *Registry) RegisterCache(id string, c *ContentCache) {
	key := normalizeID(id)
	if r == nil || key == "" || c == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.caches[key] = c
}

// UnregisterCache 移除 id 对应的映射，未知或空白 id 无操作。
func (r *Registry) UnregisterCache(id string) {
	key := normalizeID(id)
	if r == nil || key == "" {
		return
	}

	r.mu.Lock()
	delete(r.caches, key)
	r.mu.Unlock()
}

// Lookup 返回 id 对应的缓存。
func (r *Registry) Lookup(id string) (*ContentCache, bool) {
	key := normalizeID(id)
	if r == nil || key == "" {
		return nil, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.caches[key]
	return c, ok
}

// IDs 返回排序后的已注册标识。
func (r *Registry) IDs() []string {
	items := r.snapshot()
	if len(items) == 0 {
		return nil
	}
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.id
	}
	return ids
}

// Snapshot 返回每个已注册缓存的统计信息。
func (r *Registry) Snapshot() map[string]Stats {
	items := r.snapshot()
	out := make(map[string]Stats, len(items))
	for _, item := range items {
		out[item.id] = item.cache.Stats()
	}
	return out
}

// Flush 从全部缓存中移除 path。
func (r *Registry) Flush(path string) {
	for _, item := range r.snapshot() {
		item.cache.Remove(path)
	}
}

// FlushCache 仅从 id 对应的缓存中移除 path，id 未注册时无操作。
func (r *Registry) FlushCache(id, path string) {
	if c, ok := r.Lookup(id); ok {
		c.Remove(path)
	}
}

// Refresh 让全部缓存重新解析 path（仅对已缓存的条目生效）。
func (r *Registry) Refresh(path string) {
	for _, item := range r.snapshot() {
		r.refreshOne(item.id, item.cache, path)
	}
}

// RefreshCache 仅刷新 id 对应缓存中的 path，id 未注册时无操作。
func (r *Registry) RefreshCache(id, path string) {
	if c, ok := r.Lookup(id); ok {
		r.refreshOne(normalizeID(id), c, path)
	}
}

// Close 丢弃全部映射并进入关闭状态；之后的调用均为安全的空操作。
func (r *Registry) Close() {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.caches = make(map[string]*ContentCache)
	r.closed = true
	r.mu.Unlock()
}

// Len 返回已注册缓存数量。
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.caches)
}

func (r *Registry) refreshOne(id string, c *ContentCache, path string) {
	if err := c.Refresh(path); err != nil {
		r.logger.WithFields(logrus.Fields{
			"action":   "cache_refresh",
			"cache_id": id,
			"path":     path,
		}).WithError(err).Warn("refresh failed, keeping previous entry")
	}
}

// snapshot 在读锁内复制映射，遍历与缓存调用均在锁外进行。
func (r *Registry) snapshot() []namedCache {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	items := make([]namedCache, 0, len(r.caches))
	for id, c := range r.caches {
		items = append(items, namedCache{id: id, cache: c})
	}
	r.mu.RUnlock()

	sort.Slice(items, func(i, j int) bool {
		return items[i].id < items[j].id
	})
	return items
}

func normalizeID(id string) string {
	return strings.TrimSpace(id)
}
