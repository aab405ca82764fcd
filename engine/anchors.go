package engine

// Anchor 是可被引用的书签目标。
type Anchor struct {
	Name  string `json:"name"`
	Label string `json:"label"`
}

// AnchorTable 按名称保存锚点，并记录首次注册的顺序。
type AnchorTable struct {
	byName map[string]int
	list   []Anchor
}

// NewAnchorTable 创建空的锚点表。
func NewAnchorTable() *AnchorTable {
	return &AnchorTable{byName: make(map[string]int)}
}

// Register 登记锚点；同名锚点被覆盖时返回 true，位置保持首次注册时的顺序。
func (t *AnchorTable) Register(name, label string) (overwritten bool) {
	if idx, ok := t.byName[name]; ok {
		t.list[idx].Label = label
		return true
	}
	t.byName[name] = len(t.list)
	t.list = append(t.list, Anchor{Name: name, Label: label})
	return false
}

// Lookup 返回名称对应的锚点。
func (t *AnchorTable) Lookup(name string) (Anchor, bool) {
	idx, ok := t.byName[name]
	if !ok {
		return Anchor{}, false
	}
	return t.list[idx], true
}

// Names 按注册顺序返回锚点名称。
func (t *AnchorTable) Names() []string {
	out := make([]string, len(t.list))
	for i, a := range t.list {
		out[i] = a.Name
	}
	return out
}

// All 按注册顺序返回全部锚点的副本。
func (t *AnchorTable) All() []Anchor {
	out := make([]Anchor, len(t.list))
	copy(out, t.list)
	return out
}
