package monitor

import (
	"context"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/sirupsen/logrus"

	"github.com/any-hub/fsprovider/internal/logging"
)

// EventKind 标识文件变化类型。
type EventKind string

const (
	EventAdded   EventKind = "added"
	EventChanged EventKind = "changed"
	EventRemoved EventKind = "removed"
)

// Event 描述一次文件变化及其映射的逻辑路径。
type Event struct {
	Kind EventKind `json:"kind"`
	// Path 为逻辑路径；内容文件去掉后缀，"page.json" 对应 "<root>/page"。
	Path    string `json:"path"`
	File    string `json:"file"`
	Content bool   `json:"content"`
}

// Listener 在每个事件完成缓存失效后被调用。
type Listener func(Event)

// Invalidator 接收失效通知，*cache.Registry 满足该接口。
type Invalidator interface {
	FlushCache(id, path string)
	RefreshCache(id, path string)
}

// Options 描述一个 Provider 的监控参数。
type Options struct {
	CacheID     string
	Root        string
	FS          billy.Filesystem
	Suffixes    []string
	Interval    time.Duration
	Invalidator Invalidator
	Listener    Listener
	Logger      logrus.FieldLogger
}

type fileState struct {
	modTime time.Time
	size    int64
	dir     bool
}

// Monitor 以固定间隔轮询文件系统。Scan 可同步调用，与后台轮询互斥执行。
type Monitor struct {
	opts Options

	scanMu   sync.Mutex
	snapshot map[string]fileState

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	stopped bool
}

// New 创建监控器并立即记录初始快照，此后只报告相对该快照的变化。
func New(opts Options) *Monitor {
	if opts.Logger == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		opts.Logger = discard
	}
	opts.Root = strings.TrimSuffix(opts.Root, "/")
	if opts.Root == "" {
		opts.Root = "/"
	}
	m := &Monitor{opts: opts}
	m.snapshot = m.walk()
	return m
}

// Start 启动后台轮询；重复调用或 Stop 之后调用均无效果。
func (m *Monitor) Start(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel != nil || m.stopped || m.opts.Interval <= 0 {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.done = make(chan struct{})
	go m.run(ctx, m.done)

	m.opts.Logger.WithFields(logging.ProviderFields(m.opts.CacheID, m.opts.Root)).
		WithField("interval", m.opts.Interval.String()).
		Info("monitor_started")
}

// Stop 停止轮询并等待当前一轮扫描结束，可重复调用。
func (m *Monitor) Stop() {
	m.mu.Lock()
	cancel, done := m.cancel, m.done
	alreadyStopped := m.stopped
	m.stopped = true
	m.mu.Unlock()

	if alreadyStopped || cancel == nil {
		return
	}
	cancel()
	<-done
	m.opts.Logger.WithFields(logging.ProviderFields(m.opts.CacheID, m.opts.Root)).Info("monitor_stopped")
}

func (m *Monitor) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(m.opts.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Scan()
		}
	}
}

// Scan 执行一轮同步扫描，分发并返回本轮检测到的事件（按文件路径排序）。
func (m *Monitor) Scan() []Event {
	m.scanMu.Lock()
	defer m.scanMu.Unlock()

	current := m.walk()
	events := m.diff(m.snapshot, current)
	m.snapshot = current

	for _, ev := range events {
		m.dispatch(ev)
	}
	return events
}

func (m *Monitor) dispatch(ev Event) {
	op := "flush"
	if inv := m.opts.Invalidator; inv != nil {
		if ev.Content && ev.Kind == EventChanged {
			op = "refresh"
			inv.RefreshCache(m.opts.CacheID, ev.Path)
		} else {
			inv.FlushCache(m.opts.CacheID, ev.Path)
		}
	}

	m.opts.Logger.WithFields(logging.CacheFields(m.opts.CacheID, ev.Path, op)).
		WithFields(logrus.Fields{"file": ev.File, "event": string(ev.Kind)}).
		Debug("file_change")

	if m.opts.Listener != nil {
		m.opts.Listener(ev)
	}
}

func (m *Monitor) walk() map[string]fileState {
	out := make(map[string]fileState)
	if m.opts.FS == nil {
		return out
	}
	err := util.Walk(m.opts.FS, "/", func(name string, info os.FileInfo, err error) error {
		if err != nil {
			// 扫描过程中被删除的文件在下一轮按删除处理。
			return nil
		}
		rel := strings.Trim(name, "/")
		if rel == "" {
			return nil
		}
		out[rel] = fileState{modTime: info.ModTime(), size: info.Size(), dir: info.IsDir()}
		return nil
	})
	if err != nil {
		m.opts.Logger.WithFields(logging.ProviderFields(m.opts.CacheID, m.opts.Root)).
			WithError(err).Warn("monitor_walk_failed")
	}
	return out
}

func (m *Monitor) diff(prev, current map[string]fileState) []Event {
	var events []Event
	for rel, state := range current {
		old, ok := prev[rel]
		switch {
		case !ok:
			events = append(events, m.event(EventAdded, rel, state.dir))
		case old.dir != state.dir:
			events = append(events, m.event(EventRemoved, rel, old.dir), m.event(EventAdded, rel, state.dir))
		case !state.dir && (!old.modTime.Equal(state.modTime) || old.size != state.size):
			events = append(events, m.event(EventChanged, rel, false))
		}
	}
	for rel, old := range prev {
		if _, ok := current[rel]; !ok {
			events = append(events, m.event(EventRemoved, rel, old.dir))
		}
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].File < events[j].File
	})
	return events
}

func (m *Monitor) event(kind EventKind, rel string, dir bool) Event {
	ev := Event{Kind: kind, File: rel}
	logicalRel := rel
	if !dir {
		if suffix, ok := contentSuffix(rel, m.opts.Suffixes); ok {
			ev.Content = true
			logicalRel = rel[:len(rel)-len(suffix)]
		}
	}
	if m.opts.Root == "/" {
		ev.Path = "/" + logicalRel
	} else {
		ev.Path = m.opts.Root + "/" + logicalRel
	}
	return ev
}

func contentSuffix(name string, suffixes []string) (string, bool) {
	base := name[strings.LastIndex(name, "/")+1:]
	for _, suffix := range suffixes {
		if len(base) > len(suffix) && strings.HasSuffix(base, suffix) {
			return suffix, true
		}
	}
	return "", false
}
