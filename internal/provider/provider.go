package provider

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/go-git/go-billy/v5"
	"github.com/sirupsen/logrus"

	"github.com/any-hub/fsprovider/internal/cache"
	"github.com/any-hub/fsprovider/internal/config"
	"github.com/any-hub/fsprovider/internal/ignorefs"
	"github.com/any-hub/fsprovider/internal/logging"
	"github.com/any-hub/fsprovider/internal/mapper"
	"github.com/any-hub/fsprovider/internal/monitor"
	"github.com/any-hub/fsprovider/internal/parser"
)

var (
	// ErrNotFound 表示逻辑路径既不对应内容节点也不对应文件。
	ErrNotFound = errors.New("resource not found")
	// ErrInactive 表示 Provider 已停用。
	ErrInactive = errors.New("provider is not active")
)

// Option 调整 Activate 的可选行为。
type Option func(*options)

type options struct {
	listener monitor.Listener
	ctx      context.Context
}

// WithEventListener 订阅监控器产生的文件事件。
func WithEventListener(listener monitor.Listener) Option {
	return func(o *options) {
		o.listener = listener
	}
}

// WithContext 指定监控循环的父 context，取消时监控随之退出。
func WithContext(ctx context.Context) Option {
	return func(o *options) {
		if ctx != nil {
			o.ctx = ctx
		}
	}
}

// Provider 是一次激活后的挂载实例。
type Provider struct {
	runtime  config.ProviderRuntime
	root     string
	fsys     billy.Filesystem
	registry *cache.Registry
	cache    *cache.ContentCache
	files    *mapper.FileMapper
	contents *mapper.ContentFileMapper
	monitor  *monitor.Monitor
	logger   logrus.FieldLogger

	mu     sync.RWMutex
	active bool
}

// Activate 构建缓存并以 Provider 名称注册到 registry，挂载映射器，
// 检查间隔大于 100ms 时启动轮询监控。
func Activate(rt config.ProviderRuntime, fsys billy.Filesystem, registry *cache.Registry, logger logrus.FieldLogger, opts ...Option) (*Provider, error) {
	if rt.Config.Name == "" {
		return nil, errors.New("provider name is required")
	}
	if fsys == nil {
		return nil, errors.New("provider filesystem is required")
	}
	if logger == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		logger = discard
	}
	o := options{ctx: context.Background()}
	for _, opt := range opts {
		opt(&o)
	}

	fsys = ignorefs.New(fsys, rt.Ignore)
	root := mapper.NormalizeRoot(rt.Config.Root)
	fields := logging.ProviderFields(rt.Config.Name, root)

	p := &Provider{
		runtime:  rt,
		root:     root,
		fsys:     fsys,
		registry: registry,
		files:    mapper.NewFileMapper(root, fsys, rt.Suffixes),
		logger:   logger.WithFields(fields),
		active:   true,
	}

	if rt.Config.ContentEnabled() && len(rt.Suffixes) > 0 {
		p.cache = cache.New(rt.CacheSize, parser.NewLoader(fsys), p.logger)
		p.contents = mapper.NewContentFileMapper(root, fsys, rt.Suffixes, p.cache)
		registry.RegisterCache(rt.Config.Name, p.cache)
	}

	if rt.MonitorEnabled() {
		p.monitor = monitor.New(monitor.Options{
			CacheID:     rt.Config.Name,
			Root:        root,
			FS:          fsys,
			Suffixes:    rt.Suffixes,
			Interval:    rt.CheckInterval,
			Invalidator: registry,
			Listener:    o.listener,
			Logger:      p.logger,
		})
		p.monitor.Start(o.ctx)
	}

	p.logger.WithFields(logrus.Fields{
		"action":         "provider_activate",
		"mode":           rt.Config.Mode,
		"cache_size":     p.cache.Capacity(),
		"check_interval": rt.CheckInterval.String(),
		"monitor":        p.monitor != nil,
	}).Info("provider activated")
	return p, nil
}

// Name 返回 Provider 名称，同时也是缓存在 registry 中的 id。
func (p *Provider) Name() string {
	return p.runtime.Config.Name
}

// Root 返回规范化后的逻辑根路径。
func (p *Provider) Root() string {
	return p.root
}

// Runtime 返回激活时使用的运行时参数。
func (p *Provider) Runtime() config.ProviderRuntime {
	return p.runtime
}

// Cache 返回内容缓存；files-folders 模式下为 nil。
func (p *Provider) Cache() *cache.ContentCache {
	return p.cache
}

// Active 表示 Provider 是否仍在服务。
func (p *Provider) Active() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.active
}

// Scan 立即执行一轮文件检查，未启用监控时返回 nil。
func (p *Provider) Scan() []monitor.Event {
	if p.monitor == nil || !p.Active() {
		return nil
	}
	return p.monitor.Scan()
}

// GetResource 优先返回内容节点，其次返回文件或目录。
func (p *Provider) GetResource(path string) (*mapper.Resource, error) {
	if !p.Active() {
		return nil, ErrInactive
	}
	if p.contents != nil {
		res, err := p.contents.Resource(path)
		if err != nil {
			return nil, err
		}
		if res != nil {
			return res, nil
		}
	}
	if res, ok := p.files.Resource(path); ok {
		return res, nil
	}
	return nil, ErrNotFound
}

// ListChildren 合并内容子节点与文件子节点，同名时内容节点优先。
func (p *Provider) ListChildren(path string) ([]*mapper.Resource, error) {
	if _, err := p.GetResource(path); err != nil {
		return nil, err
	}

	var merged []*mapper.Resource
	seen := make(map[string]struct{})
	add := func(resources []*mapper.Resource) {
		for _, res := range resources {
			if _, dup := seen[res.Name]; dup {
				continue
			}
			seen[res.Name] = struct{}{}
			merged = append(merged, res)
		}
	}

	if p.contents != nil {
		children, err := p.contents.Children(path)
		if err != nil {
			return nil, err
		}
		add(children)
	}
	add(p.files.Children(path))
	return merged, nil
}

// Deactivate 停止监控、从 registry 注销缓存并清空缓存，可重复调用。
func (p *Provider) Deactivate() {
	p.mu.Lock()
	if !p.active {
		p.mu.Unlock()
		return
	}
	p.active = false
	p.mu.Unlock()

	if p.monitor != nil {
		p.monitor.Stop()
	}
	if p.cache != nil {
		p.registry.UnregisterCache(p.runtime.Config.Name)
		p.cache.Clear()
	}
	p.logger.WithField("action", "provider_deactivate").Info("provider deactivated")
}
