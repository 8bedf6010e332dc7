package mapper

import (
	"sort"

	"github.com/go-git/go-billy/v5"
)

// FileMapper 将逻辑路径映射到普通文件与目录，内容文件本身不对外暴露。
type FileMapper struct {
	root     string
	fsys     billy.Filesystem
	suffixes []string
}

// NewFileMapper 构造文件映射器；suffixes 为需要隐藏的内容文件后缀。
func NewFileMapper(root string, fsys billy.Filesystem, suffixes []string) *FileMapper {
	return &FileMapper{
		root:     NormalizeRoot(root),
		fsys:     fsys,
		suffixes: suffixes,
	}
}

// Resource 返回 logical 对应的文件或目录资源。
func (m *FileMapper) Resource(logical string) (*Resource, bool) {
	rel, ok := relativePath(m.root, logical)
	if !ok {
		return nil, false
	}
	info, err := m.fsys.Stat(fsName(rel))
	if err != nil {
		return nil, false
	}
	if !info.IsDir() && IsContentFile(info.Name(), m.suffixes) {
		return nil, false
	}
	return fileResource(logicalPath(m.root, rel), info, m.fsys.Join(m.fsys.Root(), rel)), true
}

// Children 列出目录下的文件与子目录，按名称排序。
func (m *FileMapper) Children(logical string) []*Resource {
	rel, ok := relativePath(m.root, logical)
	if !ok {
		return nil
	}
	entries, err := m.fsys.ReadDir(fsName(rel))
	if err != nil {
		return nil
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	parent := logicalPath(m.root, rel)
	var out []*Resource
	for _, info := range entries {
		if !info.IsDir() && IsContentFile(info.Name(), m.suffixes) {
			continue
		}
		childRel := m.fsys.Join(rel, info.Name())
		out = append(out, fileResource(logicalPath(parent, info.Name()), info, m.fsys.Join(m.fsys.Root(), childRel)))
	}
	return out
}
