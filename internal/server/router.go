package server

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/any-hub/fsprovider/internal/provider"
)

// ResourceHandler describes the component rendering resources of the provider
// mounted at the request path. It allows injecting fake handlers during tests.
type ResourceHandler interface {
	Handle(fiber.Ctx, *provider.Provider) error
}

// ResourceHandlerFunc adapts a function to the ResourceHandler interface.
type ResourceHandlerFunc func(fiber.Ctx, *provider.Provider) error

// Handle makes ResourceHandlerFunc satisfy ResourceHandler.
func (f ResourceHandlerFunc) Handle(c fiber.Ctx, p *provider.Provider) error {
	return f(c, p)
}

// RequestObserver receives the outcome of every resource request.
type RequestObserver interface {
	ObserveRequest(provider string, status int, elapsed time.Duration)
}

// AppOptions controls how the Fiber application should behave on a specific port.
type AppOptions struct {
	Logger    *logrus.Logger
	Providers *ProviderRegistry
	// Handler defaults to the JSON resource handler when nil.
	Handler    ResourceHandler
	Observer   RequestObserver
	ListenPort int
}

const (
	contextKeyProvider  = "_fsprovider_provider"
	contextKeyRequestID = "_fsprovider_request_id"
)

// NewApp builds a Fiber application with path-prefix routing middleware and
// structured error handling.
func NewApp(opts AppOptions) (*fiber.App, error) {
	if opts.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if opts.Providers == nil {
		return nil, errors.New("provider registry is required")
	}
	if opts.ListenPort <= 0 {
		return nil, fmt.Errorf("invalid listen port: %d", opts.ListenPort)
	}
	if opts.Handler == nil {
		opts.Handler = NewResourceHandler(opts.Logger)
	}

	app := fiber.New(fiber.Config{
		CaseSensitive: true,
	})

	app.Use(recover.New())
	app.Use(requestContextMiddleware(opts))

	app.Get("/*", func(c fiber.Ctx) error {
		if isDiagnosticsPath(c.Path()) {
			return c.Next()
		}
		p, _ := getProviderFromContext(c)
		if p == nil {
			return renderPathUnmapped(c, opts.Logger, c.Path())
		}

		started := time.Now()
		err := opts.Handler.Handle(c, p)
		if opts.Observer != nil {
			opts.Observer.ObserveRequest(p.Name(), c.Response().StatusCode(), time.Since(started))
		}
		return err
	})

	return app, nil
}

// requestContextMiddleware 负责生成请求 ID，并基于请求路径查找挂载的 Provider。
func requestContextMiddleware(opts AppOptions) fiber.Handler {
	return func(c fiber.Ctx) error {
		reqID := uuid.NewString()
		c.Locals(contextKeyRequestID, reqID)
		c.Set("X-Request-ID", reqID)

		if isDiagnosticsPath(c.Path()) {
			return c.Next()
		}

		p, ok := opts.Providers.Lookup(c.Path())
		if !ok {
			return renderPathUnmapped(c, opts.Logger, c.Path())
		}

		c.Locals(contextKeyProvider, p)
		return c.Next()
	}
}

func renderPathUnmapped(c fiber.Ctx, logger *logrus.Logger, resourcePath string) error {
	fields := logrus.Fields{
		"action": "provider_lookup",
		"path":   resourcePath,
	}
	logger.WithFields(fields).Warn("path unmapped")

	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"error": "provider_unmapped",
	})
}

func getProviderFromContext(c fiber.Ctx) (*provider.Provider, bool) {
	if value := c.Locals(contextKeyProvider); value != nil {
		if p, ok := value.(*provider.Provider); ok {
			return p, true
		}
	}
	return nil, false
}

// RequestID returns the request identifier stored by the router middleware.
func RequestID(c fiber.Ctx) string {
	if value := c.Locals(contextKeyRequestID); value != nil {
		if reqID, ok := value.(string); ok {
			return reqID
		}
	}
	return ""
}

func isDiagnosticsPath(path string) bool {
	return strings.HasPrefix(path, "/-/")
}
