package mapper

import (
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"

	"github.com/any-hub/fsprovider/internal/cache"
	"github.com/any-hub/fsprovider/internal/parser"
)

const siteJSON = `{
	"jcr:primaryType": "app:Page",
	"title": "Site",
	"jcr:content": {
		"sling:resourceType": "app/page",
		"teaser": { "text": "hi" }
	}
}`

func newTestFS(t *testing.T) billy.Filesystem {
	t.Helper()
	fsys := memfs.New()
	files := map[string]string{
		"site.json":            siteJSON,
		"site/images/logo.png": "png",
		"readme.txt":           "hello",
		"blog/post.yaml":       "title: Post\n",
		"blog/broken.json":     "{",
	}
	for name, data := range files {
		if err := util.WriteFile(fsys, name, []byte(data), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return fsys
}

func newContentMapper(t *testing.T, fsys billy.Filesystem) (*ContentFileMapper, *cache.ContentCache) {
	t.Helper()
	c := cache.New(16, parser.NewLoader(fsys), nil)
	return NewContentFileMapper("/content/", fsys, parser.Suffixes(), c), c
}

func names(resources []*Resource) []string {
	out := make([]string, len(resources))
	for i, res := range resources {
		out[i] = res.Name
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestFileMapperResource(t *testing.T) {
	m := NewFileMapper("/content", newTestFS(t), parser.Suffixes())

	res, ok := m.Resource("/content/readme.txt")
	if !ok {
		t.Fatalf("expected readme.txt resource")
	}
	if res.ResourceType != ResourceTypeFile || res.Directory || res.Name != "readme.txt" {
		t.Fatalf("unexpected file resource: %+v", res)
	}
	if size := res.Properties["jcr:contentLength"]; size != int64(5) {
		t.Fatalf("unexpected content length: %v", size)
	}

	root, ok := m.Resource("/content")
	if !ok || !root.Directory || root.ResourceType != ResourceTypeFolder {
		t.Fatalf("expected root folder, got %+v", root)
	}

	if _, ok := m.Resource("/content/site.json"); ok {
		t.Fatalf("content files must stay hidden")
	}
	if _, ok := m.Resource("/other/readme.txt"); ok {
		t.Fatalf("paths outside the root must not resolve")
	}
	if _, ok := m.Resource("/content/nope"); ok {
		t.Fatalf("missing file must not resolve")
	}
}

func TestFileMapperChildren(t *testing.T) {
	m := NewFileMapper("/content", newTestFS(t), parser.Suffixes())

	got := names(m.Children("/content"))
	want := []string{"blog", "readme.txt", "site"}
	if !equalStrings(got, want) {
		t.Fatalf("children mismatch: got %v want %v", got, want)
	}
	if children := m.Children("/content/blog"); len(children) != 0 {
		t.Fatalf("blog only holds content files, got %v", names(children))
	}
}

func TestContentFileMapperResource(t *testing.T) {
	m, c := newContentMapper(t, newTestFS(t))

	res, err := m.Resource("/content/site")
	if err != nil || res == nil {
		t.Fatalf("expected site resource, err=%v", err)
	}
	if res.ResourceType != "app:Page" || res.Properties["title"] != "Site" {
		t.Fatalf("unexpected site resource: %+v", res)
	}
	if res.FilePath == "" {
		t.Fatalf("expected source file path")
	}

	teaser, err := m.Resource("/content/site/jcr:content/teaser")
	if err != nil || teaser == nil {
		t.Fatalf("expected nested resource, err=%v", err)
	}
	if teaser.Name != "teaser" || teaser.ResourceType != ResourceTypeUnstructured || teaser.Properties["text"] != "hi" {
		t.Fatalf("unexpected nested resource: %+v", teaser)
	}

	if res, err := m.Resource("/content/site/images/logo.png"); err != nil || res != nil {
		t.Fatalf("plain files below a content node are not content: %+v, %v", res, err)
	}
	if res, err := m.Resource("/content/readme.txt"); err != nil || res != nil {
		t.Fatalf("unexpected content resource: %+v, %v", res, err)
	}

	if c.Size() != 1 {
		t.Fatalf("expected a single cached content file, got %d", c.Size())
	}
	if stats := c.Stats(); stats.Loads != 1 {
		t.Fatalf("expected one load for repeated lookups, got %d", stats.Loads)
	}
}

func TestContentFileMapperBrokenFileIsAbsent(t *testing.T) {
	m, c := newContentMapper(t, newTestFS(t))

	for i := 0; i < 2; i++ {
		res, err := m.Resource("/content/blog/broken")
		if err != nil || res != nil {
			t.Fatalf("broken file should resolve to nothing: %+v, %v", res, err)
		}
	}
	if stats := c.Stats(); stats.Loads != 1 || stats.NegativeHits != 1 {
		t.Fatalf("expected negative caching, got %+v", stats)
	}
}

func TestContentFileMapperChildren(t *testing.T) {
	m, _ := newContentMapper(t, newTestFS(t))

	children, err := m.Children("/content")
	if err != nil {
		t.Fatalf("children: %v", err)
	}
	if got := names(children); !equalStrings(got, []string{"site"}) {
		t.Fatalf("unexpected root children: %v", got)
	}

	children, err = m.Children("/content/site")
	if err != nil {
		t.Fatalf("children: %v", err)
	}
	if got := names(children); !equalStrings(got, []string{"jcr:content"}) {
		t.Fatalf("unexpected site children: %v", got)
	}
	if children[0].Path != "/content/site/jcr:content" {
		t.Fatalf("unexpected child path: %s", children[0].Path)
	}

	children, err = m.Children("/content/blog")
	if err != nil {
		t.Fatalf("children: %v", err)
	}
	if got := names(children); !equalStrings(got, []string{"post"}) {
		t.Fatalf("broken content must be skipped, got %v", got)
	}
}

func TestContentFileMapperServesCachedUntilRefresh(t *testing.T) {
	fsys := newTestFS(t)
	m, c := newContentMapper(t, fsys)

	if _, err := m.Resource("/content/site"); err != nil {
		t.Fatalf("resource: %v", err)
	}
	if err := util.WriteFile(fsys, "site.json", []byte(`{"title": "Changed"}`), 0o644); err != nil {
		t.Fatalf("rewrite: %v", err)
	}

	res, _ := m.Resource("/content/site")
	if res.Properties["title"] != "Site" {
		t.Fatalf("expected cached content before refresh, got %v", res.Properties["title"])
	}

	if err := c.Refresh("/content/site"); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	res, _ = m.Resource("/content/site")
	if res.Properties["title"] != "Changed" {
		t.Fatalf("expected refreshed content, got %v", res.Properties["title"])
	}
}

func TestNormalizeRoot(t *testing.T) {
	cases := map[string]string{
		"":          "/",
		"/":         "/",
		"content":   "/content",
		"/content/": "/content",
		" /a//b ":   "/a/b",
	}
	for in, want := range cases {
		if got := NormalizeRoot(in); got != want {
			t.Fatalf("NormalizeRoot(%q)=%q want %q", in, got, want)
		}
	}
}
