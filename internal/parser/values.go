package parser

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/any-hub/fsprovider/internal/content"
)

const (
	propResourceType = "sling:resourceType"
	propPrimaryType  = "jcr:primaryType"
	binaryPrefix     = ":"
)

// ecmaDateLayout 对应 "Wed Mar 06 2024 10:00:00 GMT+0100" 形式的日期字符串。
const ecmaDateLayout = "Mon Jan 02 2006 15:04:05 GMT-0700"

// elementBuilder 按声明顺序累积属性与子节点，build 时一次性生成不可变 Element。
type elementBuilder struct {
	name         string
	source       string
	resourceType string
	primaryType  string
	properties   []content.Property
	children     []*content.Element
}

func newElementBuilder(name, source string) *elementBuilder {
	return &elementBuilder{name: name, source: source}
}

func (b *elementBuilder) addProperty(key string, raw any) error {
	if raw == nil {
		return nil
	}
	name := key
	binary := false
	if strings.HasPrefix(key, binaryPrefix) && len(key) > len(binaryPrefix) {
		name = strings.TrimPrefix(key, binaryPrefix)
		binary = true
	}

	value, err := normalizeValue(raw, binary)
	if err != nil {
		return fmt.Errorf("property %s: %w", key, err)
	}

	switch name {
	case propResourceType:
		if s, ok := value.(string); ok {
			b.resourceType = s
		}
	case propPrimaryType:
		if s, ok := value.(string); ok {
			b.primaryType = s
		}
	}
	b.properties = append(b.properties, content.Property{Name: name, Value: value})
	return nil
}

func (b *elementBuilder) addChild(child *content.Element) {
	b.children = append(b.children, child)
}

func (b *elementBuilder) build() *content.Element {
	resourceType := b.resourceType
	if resourceType == "" {
		resourceType = b.primaryType
	}
	return content.NewElement(b.name, resourceType, b.properties, b.children, b.source)
}

func normalizeValue(raw any, binary bool) (any, error) {
	switch v := raw.(type) {
	case []any:
		out := make([]any, 0, len(v))
		for _, item := range v {
			if item == nil {
				continue
			}
			normalized, err := normalizeValue(item, binary)
			if err != nil {
				return nil, err
			}
			out = append(out, normalized)
		}
		return out, nil
	case string:
		if binary {
			return content.Binary{Path: v}, nil
		}
		if t, ok := parseDate(v); ok {
			return t, nil
		}
		return v, nil
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i, nil
		}
		f, err := v.Float64()
		if err != nil {
			return nil, fmt.Errorf("invalid number %s", v)
		}
		return f, nil
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	case uint64:
		return int64(v), nil
	case float64:
		return v, nil
	case bool:
		return v, nil
	case time.Time:
		return v, nil
	default:
		return nil, fmt.Errorf("unsupported value type %T", raw)
	}
}

func parseDate(s string) (time.Time, bool) {
	if len(s) < len("2006-01-02T15:04:05Z") {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(ecmaDateLayout, s); err == nil {
		return t, true
	}
	return time.Time{}, false
}
