package ignorefs

import (
	"os"

	"github.com/go-git/go-billy/v5"
)

// Filesystem 包装 billy.Filesystem：被忽略的路径在读取侧表现为不存在。
// 写操作原样透传。
type Filesystem struct {
	billy.Filesystem
	matcher *Matcher
}

// New 在 matcher 为空时直接返回 fsys。
func New(fsys billy.Filesystem, matcher *Matcher) billy.Filesystem {
	if fsys == nil || matcher == nil {
		return fsys
	}
	return &Filesystem{Filesystem: fsys, matcher: matcher}
}

// Ignored 报告 name 是否被隐藏。
func (f *Filesystem) Ignored(name string) bool {
	return f.matcher.Match(name)
}

func (f *Filesystem) Open(name string) (billy.File, error) {
	if f.Ignored(name) {
		return nil, notExist("open", name)
	}
	return f.Filesystem.Open(name)
}

func (f *Filesystem) OpenFile(name string, flag int, perm os.FileMode) (billy.File, error) {
	if flag&(os.O_WRONLY|os.O_RDWR|os.O_CREATE) == 0 && f.Ignored(name) {
		return nil, notExist("open", name)
	}
	return f.Filesystem.OpenFile(name, flag, perm)
}

func (f *Filesystem) Stat(name string) (os.FileInfo, error) {
	if f.Ignored(name) {
		return nil, notExist("stat", name)
	}
	return f.Filesystem.Stat(name)
}

func (f *Filesystem) Lstat(name string) (os.FileInfo, error) {
	if f.Ignored(name) {
		return nil, notExist("lstat", name)
	}
	return f.Filesystem.Lstat(name)
}

func (f *Filesystem) ReadDir(name string) ([]os.FileInfo, error) {
	if f.Ignored(name) {
		return nil, notExist("readdir", name)
	}
	infos, err := f.Filesystem.ReadDir(name)
	if err != nil {
		return nil, err
	}
	out := infos[:0]
	for _, info := range infos {
		if f.Ignored(f.Join(name, info.Name())) {
			continue
		}
		out = append(out, info)
	}
	return out, nil
}

func notExist(op, name string) error {
	return &os.PathError{Op: op, Path: name, Err: os.ErrNotExist}
}
