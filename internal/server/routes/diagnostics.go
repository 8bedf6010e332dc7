package routes

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/sirupsen/logrus"

	"github.com/any-hub/fsprovider/internal/cache"
	"github.com/any-hub/fsprovider/internal/logging"
	"github.com/any-hub/fsprovider/internal/server"
	"github.com/any-hub/fsprovider/internal/version"
)

// DiagnosticsOptions 汇总诊断接口依赖的组件。
type DiagnosticsOptions struct {
	Logger    *logrus.Logger
	Providers *server.ProviderRegistry
	Caches    *cache.Registry
	// Metrics 为空时不注册 /-/metrics。
	Metrics http.Handler
}

// RegisterDiagnosticsRoutes 暴露 /-/version、/-/providers、/-/caches 与手动失效接口。
func RegisterDiagnosticsRoutes(app *fiber.App, opts DiagnosticsOptions) {
	if app == nil || opts.Providers == nil || opts.Caches == nil {
		return
	}
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	app.Get("/-/version", func(c fiber.Ctx) error {
		return c.JSON(version.Get())
	})

	app.Get("/-/providers", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"providers": encodeProviders(opts.Providers)})
	})

	app.Get("/-/caches", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"ids":    opts.Caches.IDs(),
			"caches": opts.Caches.Snapshot(),
		})
	})

	app.Post("/-/caches/flush", func(c fiber.Ctx) error {
		return invalidate(c, logger, opts.Caches, "flush")
	})

	app.Post("/-/caches/refresh", func(c fiber.Ctx) error {
		return invalidate(c, logger, opts.Caches, "refresh")
	})

	if opts.Metrics != nil {
		app.Get("/-/metrics", adaptor.HTTPHandler(opts.Metrics))
	}
}

// invalidate 按 path 向全部缓存或 id 指定的单个缓存发送 flush/refresh。
func invalidate(c fiber.Ctx, logger *logrus.Logger, caches *cache.Registry, op string) error {
	target := strings.TrimSpace(c.Query("path"))
	if target == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "path_required"})
	}
	id := strings.TrimSpace(c.Query("id"))
	if id != "" {
		if _, ok := caches.Lookup(id); !ok {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "cache_not_found"})
		}
	}

	switch {
	case op == "flush" && id == "":
		caches.Flush(target)
	case op == "flush":
		caches.FlushCache(id, target)
	case id == "":
		caches.Refresh(target)
	default:
		caches.RefreshCache(id, target)
	}

	logger.WithFields(logging.CacheFields(id, target, op)).
		WithField("request_id", server.RequestID(c)).
		Info("cache invalidated")
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"op":   op,
		"id":   id,
		"path": target,
	})
}

type providerPayload struct {
	Name          string   `json:"name"`
	Root          string   `json:"root"`
	File          string   `json:"file"`
	Mode          string   `json:"mode"`
	CacheSize     int      `json:"cache_size"`
	CheckInterval string   `json:"check_interval"`
	Monitor       bool     `json:"monitor"`
	Active        bool     `json:"active"`
	Ignore        []string `json:"ignore,omitempty"`
}

func encodeProviders(providers *server.ProviderRegistry) []providerPayload {
	list := providers.List()
	if len(list) == 0 {
		return nil
	}
	result := make([]providerPayload, 0, len(list))
	for _, p := range list {
		rt := p.Runtime()
		result = append(result, providerPayload{
			Name:          p.Name(),
			Root:          p.Root(),
			File:          rt.Config.File,
			Mode:          rt.Config.Mode,
			CacheSize:     p.Cache().Capacity(),
			CheckInterval: rt.CheckInterval.String(),
			Monitor:       rt.MonitorEnabled(),
			Active:        p.Active(),
			Ignore:        rt.Ignore.Patterns(),
		})
	}
	return result
}
