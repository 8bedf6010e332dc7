package parser

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/tidwall/jsonc"

	"github.com/any-hub/fsprovider/internal/content"
)

func init() {
	MustRegister(Format{
		Type:        content.TypeJSON,
		Description: "JSON content descriptor (comments and trailing commas allowed)",
		Suffixes:    []string{".json"},
		Decode:      decodeJSON,
	})
}

// decodeJSON 使用 Token 流式解码以保留属性与子节点的声明顺序。
func decodeJSON(data []byte, name, source string) (*content.Element, error) {
	dec := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, errors.New("content root must be a JSON object")
	}

	elem, err := decodeJSONObject(dec, name, source)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after content root")
	}
	return elem, nil
}

func decodeJSONObject(dec *json.Decoder, name, source string) (*content.Element, error) {
	builder := newElementBuilder(name, source)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v", keyTok)
		}

		valueTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
		switch v := valueTok.(type) {
		case json.Delim:
			switch v {
			case '{':
				child, err := decodeJSONObject(dec, key, source)
				if err != nil {
					return nil, err
				}
				builder.addChild(child)
			case '[':
				values, err := decodeJSONArray(dec)
				if err != nil {
					return nil, fmt.Errorf("property %s: %w", key, err)
				}
				if err := builder.addProperty(key, values); err != nil {
					return nil, err
				}
			default:
				return nil, fmt.Errorf("unexpected delimiter %v", v)
			}
		default:
			if err := builder.addProperty(key, v); err != nil {
				return nil, err
			}
		}
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	return builder.build(), nil
}

func decodeJSONArray(dec *json.Decoder) ([]any, error) {
	values := []any{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
		if delim, ok := tok.(json.Delim); ok {
			return nil, fmt.Errorf("nested %v is not allowed in multi-value property", delim)
		}
		values = append(values, tok)
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	return values, nil
}
