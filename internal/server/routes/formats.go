package routes

import (
	"sort"
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/any-hub/fsprovider/internal/content"
	"github.com/any-hub/fsprovider/internal/parser"
	"github.com/any-hub/fsprovider/internal/server"
)

// RegisterFormatRoutes 暴露 /-/formats 诊断接口，查询已注册的内容格式及各 Provider 启用的后缀。
func RegisterFormatRoutes(app *fiber.App, providers *server.ProviderRegistry) {
	if app == nil || providers == nil {
		return
	}

	app.Get("/-/formats", func(c fiber.Ctx) error {
		payload := fiber.Map{
			"formats":   encodeFormats(parser.List()),
			"providers": encodeFormatBindings(providers),
		}
		return c.JSON(payload)
	})

	app.Get("/-/formats/:type", func(c fiber.Ctx) error {
		key := strings.ToLower(strings.TrimSpace(c.Params("type")))
		if key == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "format_type_required"})
		}
		format, ok := parser.Resolve(content.Type(key))
		if !ok {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "format_not_found"})
		}
		return c.JSON(encodeFormat(format))
	})
}

type formatPayload struct {
	Type        string   `json:"type"`
	Description string   `json:"description"`
	Suffixes    []string `json:"suffixes"`
}

type formatBindingPayload struct {
	Provider string   `json:"provider"`
	Root     string   `json:"root"`
	Mode     string   `json:"mode"`
	Suffixes []string `json:"suffixes"`
}

func encodeFormats(formats []parser.Format) []formatPayload {
	if len(formats) == 0 {
		return nil
	}
	sort.Slice(formats, func(i, j int) bool {
		return formats[i].Type < formats[j].Type
	})
	result := make([]formatPayload, 0, len(formats))
	for _, format := range formats {
		result = append(result, encodeFormat(format))
	}
	return result
}

func encodeFormat(format parser.Format) formatPayload {
	return formatPayload{
		Type:        string(format.Type),
		Description: format.Description,
		Suffixes:    append([]string(nil), format.Suffixes...),
	}
}

func encodeFormatBindings(providers *server.ProviderRegistry) []formatBindingPayload {
	list := providers.List()
	if len(list) == 0 {
		return nil
	}
	result := make([]formatBindingPayload, 0, len(list))
	for _, p := range list {
		rt := p.Runtime()
		result = append(result, formatBindingPayload{
			Provider: p.Name(),
			Root:     p.Root(),
			Mode:     rt.Config.Mode,
			Suffixes: append([]string{}, rt.Suffixes...),
		})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Provider < result[j].Provider
	})
	return result
}
