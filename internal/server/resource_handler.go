package server

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"

	"github.com/any-hub/fsprovider/internal/logging"
	"github.com/any-hub/fsprovider/internal/mapper"
	"github.com/any-hub/fsprovider/internal/provider"
)

type resourceHandler struct {
	logger *logrus.Logger
}

// NewResourceHandler renders resources as JSON. "?children=1" adds the merged
// child list of the resource.
func NewResourceHandler(logger *logrus.Logger) ResourceHandler {
	return &resourceHandler{logger: logger}
}

type resourcePayload struct {
	*mapper.Resource
	Children []*mapper.Resource `json:"children,omitempty"`
}

func (h *resourceHandler) Handle(c fiber.Ctx, p *provider.Provider) error {
	resourcePath := normalizePath(c.Path())
	withChildren := wantChildren(c.Query("children"))

	res, err := p.GetResource(resourcePath)
	if err != nil {
		return h.renderError(c, p, resourcePath, err)
	}

	payload := resourcePayload{Resource: res}
	if withChildren {
		children, err := p.ListChildren(resourcePath)
		if err != nil {
			return h.renderError(c, p, resourcePath, err)
		}
		payload.Children = children
	}

	h.logger.WithFields(logging.RequestFields(p.Name(), resourcePath, true, len(payload.Children))).
		WithField("request_id", RequestID(c)).
		Debug("resource served")
	return c.JSON(payload)
}

func (h *resourceHandler) renderError(c fiber.Ctx, p *provider.Provider, resourcePath string, err error) error {
	fields := logging.RequestFields(p.Name(), resourcePath, false, 0)
	fields["request_id"] = RequestID(c)

	switch {
	case errors.Is(err, provider.ErrNotFound):
		h.logger.WithFields(fields).Debug("resource not found")
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "resource_not_found"})
	case errors.Is(err, provider.ErrInactive):
		h.logger.WithFields(fields).Warn("provider inactive")
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "provider_inactive"})
	default:
		h.logger.WithFields(fields).WithError(err).Error("resource lookup failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "resource_error"})
	}
}

func wantChildren(raw string) bool {
	if raw == "" {
		return false
	}
	enabled, err := strconv.ParseBool(raw)
	return err == nil && enabled
}
