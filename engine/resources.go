package engine

import (
	"sort"

	"github.com/ByLCY/quire/block"
)

// ResourceStore 保存别名到资源数据的映射。
type ResourceStore struct {
	data map[string]any
}

// NewResourceStore 创建空的资源表。
func NewResourceStore() *ResourceStore {
	return &ResourceStore{data: make(map[string]any)}
}

// Register 登记资源。别名已存在且新旧数据都是映射时按顶层键合并（新值覆盖同名键），
// 否则整体替换并返回 replaced=true。存入的是深拷贝。
func (s *ResourceStore) Register(alias string, data any) (replaced bool) {
	data = block.Clone(data)
	old, exists := s.data[alias]
	if !exists {
		s.data[alias] = data
		return false
	}
	oldMap, okOld := old.(map[string]any)
	newMap, okNew := data.(map[string]any)
	if !okOld || !okNew {
		s.data[alias] = data
		return true
	}
	for k, v := range newMap {
		oldMap[k] = v
	}
	return false
}

// Lookup 返回别名对应的数据。
func (s *ResourceStore) Lookup(alias string) (any, bool) {
	v, ok := s.data[alias]
	return v, ok
}

// Aliases 返回全部别名（按字母序）。
func (s *ResourceStore) Aliases() []string {
	out := make([]string, 0, len(s.data))
	for alias := range s.data {
		out = append(out, alias)
	}
	sort.Strings(out)
	return out
}

// Len 返回已登记的别名数量。
func (s *ResourceStore) Len() int { return len(s.data) }
