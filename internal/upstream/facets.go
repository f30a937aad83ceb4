package upstream

import "encoding/json"

// FacetSet 以插入顺序保存搜索过滤条件，并序列化为 Modrinth 搜索 API
// 要求的嵌套数组形式，例如 [["categories:forge"],["versions:1.20.1"]]。
type FacetSet struct {
	pairs [][2]string
}

// NewFacetSet 创建空的过滤集合。
func NewFacetSet() *FacetSet {
	return &FacetSet{}
}

// Add 追加一个 key:value 条件并返回自身，支持链式调用。
func (f *FacetSet) Add(key, value string) *FacetSet {
	f.pairs = append(f.pairs, [2]string{key, value})
	return f
}

// Empty 报告集合是否不含任何条件。
func (f *FacetSet) Empty() bool {
	return f == nil || len(f.pairs) == 0
}

// Encode 输出嵌套 JSON 数组字符串，顺序与插入顺序一致。
func (f *FacetSet) Encode() (string, error) {
	if f.Empty() {
		return "", nil
	}
	nested := make([][]string, 0, len(f.pairs))
	for _, pair := range f.pairs {
		nested = append(nested, []string{pair[0] + ":" + pair[1]})
	}
	encoded, err := json.Marshal(nested)
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}
