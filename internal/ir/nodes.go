package ir

import (
	"strconv"
	"strings"
)

// NodeType tags an IR node variant.
type NodeType string

const (
	NodeNamespace NodeType = "Namespace"
	NodeClass     NodeType = "Class"
	NodeMethod    NodeType = "Method"
	NodeGeneric   NodeType = "Generic"
)

// Placeholder names used when a declaration has no identifier.
const (
	UnnamedNamespace   = "UnnamedNamespace"
	UnnamedClass       = "UnnamedClass"
	UnnamedMethod      = "UnnamedMethod"
	UnnamedDeclaration = "UnnamedDeclaration"
)

// Node is one IR node. The set of implementations is closed to this package.
type Node interface {
	Type() NodeType
	NodeName() string
	SourceLine() int
	irNode()
}

// Namespace is a namespace declaration and the declarations nested in it.
type Namespace struct {
	Name     string `json:"name"`
	Line     int    `json:"line,omitempty"`
	Children []Node `json:"children"`
}

// Class is a class declaration. Namespace is the dotted enclosing namespace
// path and Outer the enclosing class, both empty at root level.
type Class struct {
	Name      string `json:"name"`
	Namespace string `json:"namespace,omitempty"`
	Outer     string `json:"outer,omitempty"`
	Line      int    `json:"line,omitempty"`
	Children  []Node `json:"children"`
}

// Method is a method signature. Bodies are not represented.
type Method struct {
	Name       string      `json:"name"`
	Class      string      `json:"class,omitempty"`
	ReturnType string      `json:"return_type"`
	Parameters []Parameter `json:"parameters"`
	Static     bool        `json:"static,omitempty"`
	Line       int         `json:"line,omitempty"`
}

// Parameter is one method parameter in declaration order.
type Parameter struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Generic is a declaration kind the emitter has no dedicated handler for.
// Kind carries the syntax kind it came from.
type Generic struct {
	Kind     string `json:"kind"`
	Name     string `json:"name"`
	Line     int    `json:"line,omitempty"`
	Children []Node `json:"children"`
}

func (*Namespace) Type() NodeType { return NodeNamespace }
func (*Class) Type() NodeType     { return NodeClass }
func (*Method) Type() NodeType    { return NodeMethod }
func (*Generic) Type() NodeType   { return NodeGeneric }

func (n *Namespace) NodeName() string { return n.Name }
func (n *Class) NodeName() string     { return n.Name }
func (n *Method) NodeName() string    { return n.Name }
func (n *Generic) NodeName() string   { return n.Name }

func (n *Namespace) SourceLine() int { return n.Line }
func (n *Class) SourceLine() int     { return n.Line }
func (n *Method) SourceLine() int    { return n.Line }
func (n *Generic) SourceLine() int   { return n.Line }

func (*Namespace) irNode() {}
func (*Class) irNode()     {}
func (*Method) irNode()    {}
func (*Generic) irNode()   {}

// NewNamespace creates a namespace node. An empty name becomes
// UnnamedNamespace; Children is never nil.
func NewNamespace(name string, line int, children ...Node) *Namespace {
	return &Namespace{
		Name:     nameOr(name, UnnamedNamespace),
		Line:     line,
		Children: nonNil(children),
	}
}

// NewClass creates a class node. An empty name becomes UnnamedClass.
func NewClass(name string, scope Scope, line int, children ...Node) *Class {
	return &Class{
		Name:      nameOr(name, UnnamedClass),
		Namespace: scope.Namespace(),
		Outer:     scope.Class(),
		Line:      line,
		Children:  nonNil(children),
	}
}

// NewMethod creates a method node. The enclosing class is taken from scope.
// Parameters without a name, or repeating an earlier name, are numbered
// arg1, arg2, ... by position, with underscores appended until unique.
func NewMethod(name, returnType string, params []Parameter, scope Scope, line int) *Method {
	ps := make([]Parameter, len(params))
	seen := make(map[string]bool, len(params))
	for i, p := range params {
		pname := strings.TrimSpace(p.Name)
		if pname == "" || seen[pname] {
			pname = "arg" + strconv.Itoa(i+1)
			for seen[pname] {
				pname += "_"
			}
		}
		seen[pname] = true
		ps[i] = Parameter{Name: pname, Type: strings.TrimSpace(p.Type)}
	}
	return &Method{
		Name:       nameOr(name, UnnamedMethod),
		Class:      scope.Class(),
		ReturnType: nameOr(returnType, "void"),
		Parameters: ps,
		Line:       line,
	}
}

// NewGeneric creates a stub node for an unhandled declaration kind.
func NewGeneric(kind, name string, line int, children ...Node) *Generic {
	return &Generic{
		Kind:     nameOr(kind, "declaration"),
		Name:     nameOr(name, UnnamedDeclaration),
		Line:     line,
		Children: nonNil(children),
	}
}

// Children returns the ordered children of n. Methods have none.
func Children(n Node) []Node {
	switch v := n.(type) {
	case *Namespace:
		return v.Children
	case *Class:
		return v.Children
	case *Generic:
		return v.Children
	default:
		return nil
	}
}

// Unit is the normalized form of one source file.
type Unit struct {
	Path   string   `json:"path,omitempty"`
	Usings []string `json:"usings"`
	Nodes  []Node   `json:"nodes"`
}

// Walk visits n and its descendants depth-first in order. Returning false
// from fn skips the node's children.
func Walk(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range Children(n) {
		Walk(c, fn)
	}
}

func nameOr(name, fallback string) string {
	if s := strings.TrimSpace(name); s != "" {
		return s
	}
	return fallback
}

func nonNil(nodes []Node) []Node {
	if nodes == nil {
		return []Node{}
	}
	return nodes
}
