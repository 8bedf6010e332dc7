package parser

import (
	"testing"

	"github.com/any-hub/fsprovider/internal/content"
)

func replaceRegistry(t *testing.T) func() {
	t.Helper()
	prev := globalRegistry
	globalRegistry = newRegistry()
	return func() { globalRegistry = prev }
}

func noopDecode(_ []byte, name, source string) (*content.Element, error) {
	return content.NewElement(name, "", nil, nil, source), nil
}

func TestRegisterResolveAndList(t *testing.T) {
	cleanup := replaceRegistry(t)
	defer cleanup()

	if err := Register(Format{Type: "beta", Suffixes: []string{"b"}, Decode: noopDecode}); err != nil {
		t.Fatalf("register beta failed: %v", err)
	}
	if err := Register(Format{Type: "alpha", Suffixes: []string{".a", ".alpha.b"}, Decode: noopDecode}); err != nil {
		t.Fatalf("register alpha failed: %v", err)
	}

	if _, ok := Resolve("BETA"); !ok {
		t.Fatalf("resolve should be case-insensitive")
	}
	list := List()
	if len(list) != 2 || list[0].Type != "alpha" || list[1].Type != "beta" {
		t.Fatalf("unexpected order: %+v", list)
	}
	if format, ok := ForFile("x/item.alpha.b"); !ok || format.Type != "alpha" {
		t.Fatalf("longest suffix should win, got %+v", format)
	}
	if format, ok := ForFile("x/item.b"); !ok || format.Type != "beta" {
		t.Fatalf("suffix without dot should be normalized, got %+v", format)
	}
	if _, ok := ForFile(".b"); ok {
		t.Fatalf("bare suffix is not a content file")
	}

	suffixes := Suffixes("alpha")
	if len(suffixes) != 1 || suffixes[0] != ".b" {
		t.Fatalf("ignored format should be skipped: %v", suffixes)
	}
}

func TestRegisterRejectsInvalidFormats(t *testing.T) {
	cleanup := replaceRegistry(t)
	defer cleanup()

	bad := []Format{
		{Type: "", Suffixes: []string{".x"}, Decode: noopDecode},
		{Type: "x", Suffixes: []string{".x"}},
		{Type: "x", Decode: noopDecode},
	}
	for _, format := range bad {
		if err := Register(format); err == nil {
			t.Fatalf("expected error for %+v", format)
		}
	}

	if err := Register(Format{Type: "x", Suffixes: []string{".x"}, Decode: noopDecode}); err != nil {
		t.Fatalf("first registration should succeed: %v", err)
	}
	if err := Register(Format{Type: "x", Suffixes: []string{".y"}, Decode: noopDecode}); err == nil {
		t.Fatalf("duplicate type should fail")
	}
	if err := Register(Format{Type: "z", Suffixes: []string{".X"}, Decode: noopDecode}); err == nil {
		t.Fatalf("duplicate suffix should fail")
	}
}

func TestBuiltinFormatsRegistered(t *testing.T) {
	for _, typ := range []content.Type{content.TypeJSON, content.TypeYAML} {
		if _, ok := Resolve(typ); !ok {
			t.Fatalf("%s should be registered", typ)
		}
	}
}
