package syntax

// MemNode is an in-memory Node, used to feed hand-built trees to consumers
// of this package.
type MemNode struct {
	NodeKind string
	Fields   map[string]*MemNode
	Children []*MemNode
	Source   string
	AtLine   int
}

func (m *MemNode) Kind() string { return m.NodeKind }

func (m *MemNode) Field(name string) Node {
	if f, ok := m.Fields[name]; ok && f != nil {
		return f
	}
	return nil
}

func (m *MemNode) NamedChildren() []Node {
	out := make([]Node, 0, len(m.Children))
	for _, c := range m.Children {
		if c != nil {
			out = append(out, c)
		}
	}
	return out
}

func (m *MemNode) Text() string { return m.Source }

func (m *MemNode) Line() int { return m.AtLine }

// Ident returns an identifier leaf.
func Ident(name string) *MemNode {
	return &MemNode{NodeKind: "identifier", Source: name}
}
