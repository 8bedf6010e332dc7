package server

import (
	"io"
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/sirupsen/logrus"

	"github.com/any-hub/fsprovider/internal/cache"
	"github.com/any-hub/fsprovider/internal/config"
	"github.com/any-hub/fsprovider/internal/provider"
)

func newContentFS(t *testing.T) billy.Filesystem {
	t.Helper()
	fsys := memfs.New()
	files := map[string]string{
		"home.json":  `{"jcr:primaryType": "app:Page", "title": "Home", "teaser": {"text": "hi"}}`,
		"readme.txt": "hello",
	}
	for name, data := range files {
		if err := util.WriteFile(fsys, name, []byte(data), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return fsys
}

func newTestProvider(t *testing.T, name, root string, fsys billy.Filesystem, caches *cache.Registry) *provider.Provider {
	t.Helper()
	cfg := &config.Config{Global: config.GlobalConfig{CacheSize: 16}}
	rt := cfg.BuildProviderRuntime(config.ProviderConfig{Name: name, Root: root, File: "/srv/" + name})
	p, err := provider.Activate(rt, fsys, caches, nil)
	if err != nil {
		t.Fatalf("activate %s: %v", name, err)
	}
	t.Cleanup(p.Deactivate)
	return p
}

func discardLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
