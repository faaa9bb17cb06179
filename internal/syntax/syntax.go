// Package syntax parses C# source into a syntax tree and exposes it through a
// narrow read-only Node interface.
//
// Parsing is done by tree-sitter with the C# grammar. The parser is error
// tolerant: malformed regions become ERROR nodes and the rest of the tree is
// still usable, so Parse only fails for input it cannot read at all.
package syntax

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/csharp"
)

// ErrInvalidEncoding is returned for source that is not valid UTF-8.
var ErrInvalidEncoding = errors.New("source is not valid UTF-8")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Node is a read-only syntax node.
type Node interface {
	// Kind is the grammar node type, e.g. "class_declaration".
	Kind() string
	// Field returns the child stored under a grammar field name, or nil.
	Field(name string) Node
	// NamedChildren returns the named children in source order.
	NamedChildren() []Node
	// Text is the source text spanned by the node.
	Text() string
	// Line is the 1-based line the node starts on.
	Line() int
}

// Tree is one parsed source file. Close releases the native tree.
type Tree struct {
	tree *sitter.Tree
	src  []byte
}

// Parse parses C# source. A leading byte order mark is ignored.
func Parse(ctx context.Context, src []byte) (*Tree, error) {
	src = bytes.TrimPrefix(src, utf8BOM)
	if !utf8.Valid(src) {
		return nil, ErrInvalidEncoding
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(csharp.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("parsing: %w", err)
	}
	return &Tree{tree: tree, src: src}, nil
}

// Root returns the compilation_unit node.
func (t *Tree) Root() Node {
	return wrap(t.tree.RootNode(), t.src)
}

// HasErrors reports whether tree-sitter had to recover from syntax errors.
func (t *Tree) HasErrors() bool {
	return t.tree.RootNode().HasError()
}

// Close releases the tree. The tree and its nodes must not be used after.
func (t *Tree) Close() {
	if t.tree != nil {
		t.tree.Close()
		t.tree = nil
	}
}

type tsNode struct {
	n   *sitter.Node
	src []byte
}

func wrap(n *sitter.Node, src []byte) Node {
	if n == nil || n.IsNull() {
		return nil
	}
	return &tsNode{n: n, src: src}
}

func (t *tsNode) Kind() string { return t.n.Type() }

func (t *tsNode) Field(name string) Node {
	return wrap(t.n.ChildByFieldName(name), t.src)
}

func (t *tsNode) NamedChildren() []Node {
	count := int(t.n.NamedChildCount())
	out := make([]Node, 0, count)
	for i := 0; i < count; i++ {
		if c := wrap(t.n.NamedChild(i), t.src); c != nil {
			out = append(out, c)
		}
	}
	return out
}

func (t *tsNode) Text() string { return t.n.Content(t.src) }

func (t *tsNode) Line() int { return int(t.n.StartPoint().Row) + 1 }
