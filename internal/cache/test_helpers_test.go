package cache

import (
	"sync"

	"github.com/any-hub/fsprovider/internal/content"
)

// stubLoader 以文件名为键返回预设结果，并记录调用次数。
type stubLoader struct {
	mu      sync.Mutex
	calls   map[string]int
	hints   []content.Type
	results map[string]*content.Element
	errs    map[string]error
}

func newStubLoader() *stubLoader {
	return &stubLoader{
		calls:   make(map[string]int),
		results: make(map[string]*content.Element),
		errs:    make(map[string]error),
	}
}

func (s *stubLoader) set(file string, elem *content.Element) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[file] = elem
	delete(s.errs, file)
}

func (s *stubLoader) fail(file string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs[file] = err
	delete(s.results, file)
}

func (s *stubLoader) count(file string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[file]
}

func (s *stubLoader) total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	sum := 0
	for _, n := range s.calls {
		sum += n
	}
	return sum
}

func (s *stubLoader) load(file string, hint content.Type) (*content.Element, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[file]++
	s.hints = append(s.hints, hint)
	if err, ok := s.errs[file]; ok {
		return nil, err
	}
	return s.results[file], nil
}

func element(name, file string) *content.Element {
	return content.NewElement(name, "test/type", []content.Property{{Name: "title", Value: name}}, nil, file)
}
