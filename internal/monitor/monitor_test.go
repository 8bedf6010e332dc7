package monitor

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"

	"github.com/any-hub/fsprovider/internal/cache"
	"github.com/any-hub/fsprovider/internal/content"
	"github.com/any-hub/fsprovider/internal/parser"
)

type call struct {
	op   string
	id   string
	path string
}

type recordingInvalidator struct {
	mu    sync.Mutex
	calls []call
}

func (r *recordingInvalidator) FlushCache(id, path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call{"flush", id, path})
}

func (r *recordingInvalidator) RefreshCache(id, path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call{"refresh", id, path})
}

func (r *recordingInvalidator) snapshot() []call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]call(nil), r.calls...)
}

func writeFile(t *testing.T, fsys billy.Filesystem, name, data string) {
	t.Helper()
	if err := util.WriteFile(fsys, name, []byte(data), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func newTestMonitor(t *testing.T, fsys billy.Filesystem, inv Invalidator) *Monitor {
	t.Helper()
	return New(Options{
		CacheID:     "apps",
		Root:        "/apps",
		FS:          fsys,
		Suffixes:    parser.Suffixes(),
		Invalidator: inv,
	})
}

func TestScanReportsNothingWithoutChanges(t *testing.T) {
	fsys := memfs.New()
	writeFile(t, fsys, "home.json", `{"title": "Home"}`)
	m := newTestMonitor(t, fsys, &recordingInvalidator{})

	if events := m.Scan(); len(events) != 0 {
		t.Fatalf("expected no events, got %+v", events)
	}
}

func TestScanMapsChangesToInvalidations(t *testing.T) {
	fsys := memfs.New()
	writeFile(t, fsys, "home.json", `{"title": "Home"}`)
	writeFile(t, fsys, "old.yaml", "title: Old\n")
	writeFile(t, fsys, "static/site.css", "body{}")

	inv := &recordingInvalidator{}
	m := newTestMonitor(t, fsys, inv)

	writeFile(t, fsys, "home.json", `{"title": "Home, changed"}`)
	writeFile(t, fsys, "about.json", `{"title": "About"}`)
	if err := fsys.Remove("old.yaml"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	writeFile(t, fsys, "static/site.css", "body{color:red}")

	events := m.Scan()
	want := []Event{
		{Kind: EventAdded, Path: "/apps/about", File: "about.json", Content: true},
		{Kind: EventChanged, Path: "/apps/home", File: "home.json", Content: true},
		{Kind: EventRemoved, Path: "/apps/old", File: "old.yaml", Content: true},
		{Kind: EventChanged, Path: "/apps/static/site.css", File: "static/site.css"},
	}
	if len(events) != len(want) {
		t.Fatalf("expected %d events, got %+v", len(want), events)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Fatalf("event %d mismatch: got %+v want %+v", i, events[i], want[i])
		}
	}

	calls := inv.snapshot()
	wantCalls := []call{
		{"flush", "apps", "/apps/about"},
		{"refresh", "apps", "/apps/home"},
		{"flush", "apps", "/apps/old"},
		{"flush", "apps", "/apps/static/site.css"},
	}
	if len(calls) != len(wantCalls) {
		t.Fatalf("expected %d invalidations, got %+v", len(wantCalls), calls)
	}
	for i := range wantCalls {
		if calls[i] != wantCalls[i] {
			t.Fatalf("invalidation %d mismatch: got %+v want %+v", i, calls[i], wantCalls[i])
		}
	}

	if events := m.Scan(); len(events) != 0 {
		t.Fatalf("second scan should be quiet, got %+v", events)
	}
}

func TestScanWithoutSuffixesTreatsEverythingAsFiles(t *testing.T) {
	fsys := memfs.New()
	inv := &recordingInvalidator{}
	m := New(Options{CacheID: "assets", Root: "/", FS: fsys, Invalidator: inv})

	writeFile(t, fsys, "data.json", "{}")
	events := m.Scan()
	if len(events) != 1 || events[0].Content || events[0].Path != "/data.json" {
		t.Fatalf("unexpected events: %+v", events)
	}
}

func TestListenerReceivesEvents(t *testing.T) {
	fsys := memfs.New()
	var got []Event
	m := New(Options{
		CacheID:  "apps",
		Root:     "/apps",
		FS:       fsys,
		Suffixes: parser.Suffixes(),
		Listener: func(ev Event) { got = append(got, ev) },
	})

	writeFile(t, fsys, "page.yml", "title: Page\n")
	m.Scan()
	if len(got) != 1 || got[0].Path != "/apps/page" || got[0].Kind != EventAdded {
		t.Fatalf("unexpected listener events: %+v", got)
	}
}

func TestScanRefreshesRegisteredCache(t *testing.T) {
	fsys := memfs.New()
	writeFile(t, fsys, "home.json", `{"title": "Home"}`)

	c := cache.New(8, parser.NewLoader(fsys), nil)
	registry := cache.NewRegistry(nil)
	registry.RegisterCache("apps", c)
	m := newTestMonitor(t, fsys, registry)

	elem, err := c.Get("/apps/home", "home.json", content.TypeJSON)
	if err != nil || elem == nil {
		t.Fatalf("initial load failed: %v", err)
	}

	writeFile(t, fsys, "home.json", `{"title": "Home, updated"}`)
	m.Scan()

	elem, err = c.Get("/apps/home", "home.json", content.TypeJSON)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if title, _ := elem.Property("title"); title != "Home, updated" {
		t.Fatalf("expected refreshed content, got %v", title)
	}
	if stats := c.Stats(); stats.Refreshes != 1 {
		t.Fatalf("expected one refresh, got %+v", stats)
	}

	if err := fsys.Remove("home.json"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	m.Scan()
	if c.Size() != 0 {
		t.Fatalf("removed content file should flush its entry, size=%d", c.Size())
	}
}

func TestStartStop(t *testing.T) {
	fsys := memfs.New()
	events := make(chan Event, 4)
	m := New(Options{
		CacheID:  "apps",
		Root:     "/apps",
		FS:       fsys,
		Suffixes: parser.Suffixes(),
		Interval: 10 * time.Millisecond,
		Listener: func(ev Event) { events <- ev },
	})
	writeFile(t, fsys, "late.json", "{}")
	m.Start(context.Background())
	m.Start(context.Background())

	select {
	case ev := <-events:
		if ev.Path != "/apps/late" {
			t.Fatalf("unexpected event: %+v", ev)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("monitor did not report the new file")
	}

	m.Stop()
	m.Stop()
}

func TestStopWithoutStart(t *testing.T) {
	m := New(Options{FS: memfs.New()})
	m.Stop()
	m.Start(context.Background())
	if m.cancel != nil {
		t.Fatalf("start after stop must not launch the loop")
	}
}
