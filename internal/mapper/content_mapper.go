package mapper

import (
	"path"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5"

	"github.com/any-hub/fsprovider/internal/cache"
	"github.com/any-hub/fsprovider/internal/content"
	"github.com/any-hub/fsprovider/internal/parser"
)

// ContentFileMapper 解析内容文件描述的资源。"<dir>/page.json" 描述逻辑路径
// "<root>/<dir>/page" 及其全部嵌套节点，解析结果经 ContentCache 缓存。
type ContentFileMapper struct {
	root     string
	fsys     billy.Filesystem
	suffixes []string
	cache    *cache.ContentCache
}

// NewContentFileMapper 构造内容映射器，缓存键为内容文件对应的逻辑路径。
func NewContentFileMapper(root string, fsys billy.Filesystem, suffixes []string, contentCache *cache.ContentCache) *ContentFileMapper {
	return &ContentFileMapper{
		root:     NormalizeRoot(root),
		fsys:     fsys,
		suffixes: suffixes,
		cache:    contentCache,
	}
}

// Resource 返回 logical 对应的内容节点；没有内容文件覆盖该路径时返回 (nil, nil)。
func (m *ContentFileMapper) Resource(logical string) (*Resource, error) {
	rel, ok := relativePath(m.root, logical)
	if !ok {
		return nil, nil
	}
	elem, err := m.lookup(rel)
	if err != nil || elem == nil {
		return nil, err
	}
	return elementResource(logicalPath(m.root, rel), elem), nil
}

// Children 返回内容节点的子节点，以及目录中内容文件描述的资源。
func (m *ContentFileMapper) Children(logical string) ([]*Resource, error) {
	rel, ok := relativePath(m.root, logical)
	if !ok {
		return nil, nil
	}
	parent := logicalPath(m.root, rel)

	var out []*Resource
	elem, err := m.lookup(rel)
	if err != nil {
		return nil, err
	}
	for _, child := range elem.Children() {
		out = append(out, elementResource(path.Join(parent, child.Name()), child))
	}

	entries, err := m.fsys.ReadDir(fsName(rel))
	if err != nil {
		return out, nil
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})
	for _, info := range entries {
		if info.IsDir() {
			continue
		}
		suffix, ok := matchSuffix(info.Name(), m.suffixes)
		if !ok {
			continue
		}
		name := info.Name()[:len(info.Name())-len(suffix)]
		childRel := m.fsys.Join(rel, name)
		childElem, err := m.load(childRel, m.fsys.Join(rel, info.Name()))
		if err != nil {
			return nil, err
		}
		if childElem == nil {
			continue
		}
		out = append(out, elementResource(logicalPath(m.root, childRel), childElem))
	}
	return out, nil
}

// lookup 从 rel 开始逐级向上寻找 "<祖先><后缀>" 内容文件，再在其中定位剩余路径。
func (m *ContentFileMapper) lookup(rel string) (*content.Element, error) {
	candidate := rel
	for candidate != "" {
		for _, suffix := range m.suffixes {
			file := candidate + suffix
			info, err := m.fsys.Stat(file)
			if err != nil || info.IsDir() {
				continue
			}
			elem, err := m.load(candidate, file)
			if err != nil || elem == nil {
				return nil, err
			}
			remainder := strings.TrimPrefix(strings.TrimPrefix(rel, candidate), "/")
			child, ok := elem.Child(remainder)
			if !ok {
				return nil, nil
			}
			return child, nil
		}
		candidate = parentOf(candidate)
	}
	return nil, nil
}

func (m *ContentFileMapper) load(rel, file string) (*content.Element, error) {
	hint := content.TypeAuto
	if format, ok := parser.ForFile(file); ok {
		hint = format.Type
	}
	return m.cache.Get(logicalPath(m.root, rel), file, hint)
}

func parentOf(rel string) string {
	parent := path.Dir(rel)
	if parent == "." || parent == "/" {
		return ""
	}
	return parent
}
