package cache

import (
	"errors"
	"io"
	"sync"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/any-hub/fsprovider/internal/content"
)

// Loader 负责把源文件解析成 Element。返回 (nil, nil) 表示“没有内容”，
// 普通错误同样按“没有内容”处理；只有经 Escalate 包装的错误会透传给调用方。
type Loader func(file string, hint content.Type) (*content.Element, error)

// entry 是缓存值的带标签表示：element 为 nil 即“已查找、确认无内容”。
// source/hint 在 absent 情况下同样保留，供 Refresh 重新解析。
type entry struct {
	element *content.Element
	source  string
	hint    content.Type
}

func (e entry) absent() bool {
	return e.element == nil
}

// Stats 汇总单个缓存的计数器，供诊断接口与 Prometheus 输出。
type Stats struct {
	Capacity     int    `json:"capacity"`
	Size         int    `json:"size"`
	Hits         uint64 `json:"hits"`
	NegativeHits uint64 `json:"negative_hits"`
	Misses       uint64 `json:"misses"`
	Loads        uint64 `json:"loads"`
	LoadFailures uint64 `json:"load_failures"`
	Evictions    uint64 `json:"evictions"`
	Refreshes    uint64 `json:"refreshes"`
}

type counters struct {
	hits         atomic.Uint64
	negativeHits atomic.Uint64
	misses       atomic.Uint64
	loads        atomic.Uint64
	loadFailures atomic.Uint64
	evictions    atomic.Uint64
	refreshes    atomic.Uint64
}

// ContentCache 是按逻辑路径索引的有界 LRU 缓存。capacity <= 0 时缓存关闭，
// 每次 Get 都直接调用 Loader。所有方法均可并发调用，nil 接收者等价于关闭的缓存。
type ContentCache struct {
	capacity int
	loader   Loader
	logger   logrus.FieldLogger

	// mu 只保护“检查后写入”的复合操作（Refresh 提交、Remove、Clear、写回），
	// Loader 的 I/O 永远不在锁内执行。
	mu      sync.Mutex
	entries *lru.Cache[string, entry]
	group   singleflight.Group
	stats   counters
}

// New 构建内容缓存；logger 为空时丢弃日志。
func New(capacity int, loader Loader, logger logrus.FieldLogger) *ContentCache {
	if logger == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		logger = discard
	}
	c := &ContentCache{
		capacity: capacity,
		loader:   loader,
		logger:   logger,
	}
	if capacity > 0 {
		entries, err := lru.New[string, entry](capacity)
		if err != nil {
			logger.WithError(err).Warn("content cache disabled")
			return c
		}
		c.entries = entries
	}
	return c
}

// Enabled 表示缓存是否真正存储条目。
func (c *ContentCache) Enabled() bool {
	return c != nil && c.entries != nil
}

// Capacity 返回构造时的容量上限。
func (c *ContentCache) Capacity() int {
	if !c.Enabled() {
		return 0
	}
	return c.capacity
}

// Get 返回 path 对应的内容；absent 条目返回 (nil, nil)。未命中时解析 file，
// hint 为 TypeAuto 时由 Loader 自动识别格式。同一 path 的并发未命中只解析一次，
// 不同 path 之间互不阻塞。
func (c *ContentCache) Get(path, file string, hint content.Type) (*content.Element, error) {
	if c == nil {
		return nil, nil
	}
	if !c.Enabled() {
		c.stats.misses.Add(1)
		result, err := c.load(path, file, hint)
		if err != nil {
			return nil, err
		}
		return result.element, nil
	}

	if cached, ok := c.entries.Get(path); ok {
		if cached.absent() {
			c.stats.negativeHits.Add(1)
			return nil, nil
		}
		c.stats.hits.Add(1)
		return cached.element, nil
	}

	c.stats.misses.Add(1)
	value, err, _ := c.group.Do(flightKey(path, file, hint), func() (interface{}, error) {
		result, err := c.load(path, file, hint)
		if err != nil {
			return nil, err
		}
		c.store(path, result)
		return result, nil
	})
	if err != nil {
		return nil, err
	}
	return value.(entry).element, nil
}

// Refresh 针对已缓存（含 absent）的 path 重新解析其记录的源文件并替换条目。
// 未缓存的 path 不会被加入，缓存关闭时直接返回。
func (c *ContentCache) Refresh(path string) error {
	if !c.Enabled() {
		return nil
	}
	cached, ok := c.entries.Peek(path)
	if !ok || cached.source == "" {
		return nil
	}

	result, err := c.load(path, cached.source, cached.hint)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.entries.Contains(path) {
		// 解析期间已被 Remove，刷新不应重新引入该键。
		return nil
	}
	c.entries.Add(path, result)
	c.stats.refreshes.Add(1)
	return nil
}

// Remove 移除单个条目，不存在时无操作。
func (c *ContentCache) Remove(path string) {
	if !c.Enabled() {
		return
	}
	c.mu.Lock()
	c.entries.Remove(path)
	c.mu.Unlock()
}

// Clear 清空全部条目。
func (c *ContentCache) Clear() {
	if !c.Enabled() {
		return
	}
	c.mu.Lock()
	c.entries.Purge()
	c.mu.Unlock()
}

// Size 返回当前条目数，缓存关闭时为 0。
func (c *ContentCache) Size() int {
	if !c.Enabled() {
		return 0
	}
	return c.entries.Len()
}

// Stats 返回计数器快照。
func (c *ContentCache) Stats() Stats {
	if c == nil {
		return Stats{}
	}
	return Stats{
		Capacity:     c.Capacity(),
		Size:         c.Size(),
		Hits:         c.stats.hits.Load(),
		NegativeHits: c.stats.negativeHits.Load(),
		Misses:       c.stats.misses.Load(),
		Loads:        c.stats.loads.Load(),
		LoadFailures: c.stats.loadFailures.Load(),
		Evictions:    c.stats.evictions.Load(),
		Refreshes:    c.stats.refreshes.Load(),
	}
}

func (c *ContentCache) load(path, file string, hint content.Type) (entry, error) {
	result := entry{source: file, hint: hint}
	if c.loader == nil || file == "" {
		return result, nil
	}

	c.stats.loads.Add(1)
	elem, err := c.loader(file, hint)
	if err != nil {
		c.stats.loadFailures.Add(1)
		var escalated *escalatedError
		if errors.As(err, &escalated) {
			return entry{}, err
		}
		c.logger.WithFields(logrus.Fields{
			"action": "content_load",
			"path":   path,
			"file":   file,
		}).WithError(err).Debug("content load failed, caching absent entry")
		return result, nil
	}
	result.element = elem
	return result, nil
}

func (c *ContentCache) store(path string, result entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if evicted := c.entries.Add(path, result); evicted {
		c.stats.evictions.Add(1)
	}
}

func flightKey(path, file string, hint content.Type) string {
	return path + "\x00" + file + "\x00" + string(hint)
}
