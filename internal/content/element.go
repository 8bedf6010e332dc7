package content

import (
	"path"
	"strings"
)

// Property 是有序属性列表中的一项。
type Property struct {
	Name  string
	Value any
}

// Element 是一个内容文件（或其中一个子节点）解析后的不可变表示。
type Element struct {
	name         string
	resourceType string
	properties   []Property
	index        map[string]int
	children     []*Element
	sourcePath   string
}

// NewElement 构造 Element，并复制 properties/children，调用方之后修改入参不会影响结果。
func NewElement(name, resourceType string, properties []Property, children []*Element, sourcePath string) *Element {
	e := &Element{
		name:         name,
		resourceType: resourceType,
		sourcePath:   sourcePath,
		index:        make(map[string]int, len(properties)),
	}
	for _, prop := range properties {
		if i, ok := e.index[prop.Name]; ok {
			e.properties[i].Value = copyValue(prop.Value)
			continue
		}
		e.index[prop.Name] = len(e.properties)
		e.properties = append(e.properties, Property{Name: prop.Name, Value: copyValue(prop.Value)})
	}
	for _, child := range children {
		if child != nil {
			e.children = append(e.children, child)
		}
	}
	return e
}

// Name 返回节点名称；内容文件根节点的名称由解析器根据文件名推导。
func (e *Element) Name() string {
	if e == nil {
		return ""
	}
	return e.name
}

// ResourceType 返回资源类型，未声明时为空字符串。
func (e *Element) ResourceType() string {
	if e == nil {
		return ""
	}
	return e.resourceType
}

// SourcePath 返回解析来源的绝对文件路径。
func (e *Element) SourcePath() string {
	if e == nil {
		return ""
	}
	return e.sourcePath
}

// Property 按名称读取单个属性。
func (e *Element) Property(name string) (any, bool) {
	if e == nil {
		return nil, false
	}
	i, ok := e.index[name]
	if !ok {
		return nil, false
	}
	return copyValue(e.properties[i].Value), true
}

// Properties 以 map 形式返回属性副本。
func (e *Element) Properties() map[string]any {
	if e == nil {
		return map[string]any{}
	}
	out := make(map[string]any, len(e.properties))
	for _, prop := range e.properties {
		out[prop.Name] = copyValue(prop.Value)
	}
	return out
}

// PropertyNames 按声明顺序返回属性名。
func (e *Element) PropertyNames() []string {
	if e == nil {
		return nil
	}
	names := make([]string, len(e.properties))
	for i, prop := range e.properties {
		names[i] = prop.Name
	}
	return names
}

// Children 返回子节点切片的副本（子节点本身同样不可变，可直接共享）。
func (e *Element) Children() []*Element {
	if e == nil || len(e.children) == 0 {
		return nil
	}
	return append([]*Element(nil), e.children...)
}

// Child 按 "a/b/c" 形式的相对路径逐级查找子节点，空路径返回自身。
func (e *Element) Child(relPath string) (*Element, bool) {
	if e == nil {
		return nil, false
	}
	relPath = strings.Trim(path.Clean("/"+relPath), "/")
	if relPath == "" {
		return e, true
	}
	current := e
	for _, segment := range strings.Split(relPath, "/") {
		var next *Element
		for _, child := range current.children {
			if child.name == segment {
				next = child
				break
			}
		}
		if next == nil {
			return nil, false
		}
		current = next
	}
	return current, true
}

func copyValue(v any) any {
	if seq, ok := v.([]any); ok {
		out := make([]any, len(seq))
		for i, item := range seq {
			out[i] = copyValue(item)
		}
		return out
	}
	return v
}
