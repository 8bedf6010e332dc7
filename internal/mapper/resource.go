package mapper

import (
	"os"
	"path"
	"strings"

	"github.com/any-hub/fsprovider/internal/content"
)

const (
	ResourceTypeFolder = "nt:folder"
	ResourceTypeFile   = "nt:file"
	// ResourceTypeUnstructured 用于未声明类型的内容节点。
	ResourceTypeUnstructured = "nt:unstructured"
)

// Resource 是逻辑路径解析后的结果，供 HTTP 层直接序列化。
type Resource struct {
	Path         string         `json:"path"`
	Name         string         `json:"name"`
	ResourceType string         `json:"resource_type"`
	Properties   map[string]any `json:"properties,omitempty"`
	Directory    bool           `json:"directory,omitempty"`
	FilePath     string         `json:"-"`
}

func fileResource(logical string, info os.FileInfo, filePath string) *Resource {
	res := &Resource{
		Path:     logical,
		Name:     resourceName(logical),
		FilePath: filePath,
		Properties: map[string]any{
			"jcr:lastModified": info.ModTime().UTC(),
		},
	}
	if info.IsDir() {
		res.ResourceType = ResourceTypeFolder
		res.Directory = true
		return res
	}
	res.ResourceType = ResourceTypeFile
	res.Properties["jcr:contentLength"] = info.Size()
	return res
}

func elementResource(logical string, elem *content.Element) *Resource {
	resourceType := elem.ResourceType()
	if resourceType == "" {
		resourceType = ResourceTypeUnstructured
	}
	return &Resource{
		Path:         logical,
		Name:         resourceName(logical),
		ResourceType: resourceType,
		Properties:   elem.Properties(),
		FilePath:     elem.SourcePath(),
	}
}

func resourceName(logical string) string {
	if logical == "/" {
		return ""
	}
	return path.Base(logical)
}

// relativePath 返回 logical 相对 root 的路径；不在 root 之下时返回 false。
func relativePath(root, logical string) (string, bool) {
	logical = path.Clean("/" + logical)
	if logical == root {
		return "", true
	}
	prefix := root
	if root != "/" {
		prefix = root + "/"
	}
	if !strings.HasPrefix(logical, prefix) {
		return "", false
	}
	return strings.TrimPrefix(logical, prefix), true
}

func logicalPath(root, rel string) string {
	if rel == "" {
		return root
	}
	return path.Join(root, rel)
}

func fsName(rel string) string {
	if rel == "" {
		return "/"
	}
	return rel
}

// NormalizeRoot 把配置中的逻辑根统一为以 "/" 开头、无尾部 "/" 的形式。
func NormalizeRoot(root string) string {
	return path.Clean("/" + strings.TrimSpace(root))
}

// IsContentFile 判断文件名是否带有任一内容文件后缀。
func IsContentFile(name string, suffixes []string) bool {
	_, ok := matchSuffix(name, suffixes)
	return ok
}

// matchSuffix 区分大小写，与 lookup 中 Stat(candidate+suffix) 的解析规则一致。
func matchSuffix(name string, suffixes []string) (string, bool) {
	for _, suffix := range suffixes {
		if len(name) > len(suffix) && strings.HasSuffix(name, suffix) {
			return suffix, true
		}
	}
	return "", false
}
