package compiler

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/luasharp/internal/ir"
	"github.com/roach88/luasharp/internal/syntax"
)

// Syntax kinds the normalizer understands.
const (
	kindCompilationUnit     = "compilation_unit"
	kindNamespace           = "namespace_declaration"
	kindFileScopedNamespace = "file_scoped_namespace_declaration"
	kindClass               = "class_declaration"
	kindMethod              = "method_declaration"
	kindUsing               = "using_directive"
	kindParameter           = "parameter"
	kindModifier            = "modifier"
)

// stubKinds are type declarations the emitter has no handler for. They are
// kept as ir.Generic nodes so the output shows where they were.
var stubKinds = map[string]bool{
	"struct_declaration":        true,
	"interface_declaration":     true,
	"enum_declaration":          true,
	"record_declaration":        true,
	"record_struct_declaration": true,
	"delegate_declaration":      true,
}

// nameKinds are the node kinds that can spell a using directive target.
var nameKinds = map[string]bool{
	"identifier":           true,
	"qualified_name":       true,
	"generic_name":         true,
	"alias_qualified_name": true,
}

// Normalize converts the root of one parsed file into an IR unit.
//
// Unit.Nodes holds the namespaces in source order followed by the root-level
// classes in source order. Syntax kinds other than namespaces, classes,
// methods, usings and the type declarations in stubKinds are skipped without
// error; partial language coverage is expected.
func Normalize(root syntax.Node) (*ir.Unit, error) {
	if root == nil {
		return nil, &CompileError{Field: "root", Message: "syntax tree is empty"}
	}
	if root.Kind() != kindCompilationUnit {
		return nil, &CompileError{
			Field:   "root",
			Message: fmt.Sprintf("expected %s, got %s", kindCompilationUnit, root.Kind()),
			Line:    root.Line(),
		}
	}

	n := &normalizer{unit: &ir.Unit{Usings: []string{}, Nodes: []ir.Node{}}}
	n.compilationUnit(root)
	n.unit.Nodes = append(n.unit.Nodes, n.namespaces...)
	n.unit.Nodes = append(n.unit.Nodes, n.roots...)
	return n.unit, nil
}

type normalizer struct {
	unit       *ir.Unit
	namespaces []ir.Node
	roots      []ir.Node
}

func (n *normalizer) compilationUnit(root syntax.Node) {
	// A file-scoped namespace owns every type declared after it. Depending
	// on the grammar version those declarations are its children or its
	// following siblings.
	var fileNS *ir.Namespace
	var fileScope ir.Scope

	for _, child := range root.NamedChildren() {
		switch kind := child.Kind(); {
		case kind == kindUsing:
			n.using(child)
		case kind == kindNamespace:
			n.namespaces = append(n.namespaces, n.namespace(child, ir.Scope{}))
		case kind == kindFileScopedNamespace:
			fileNS = n.namespace(child, ir.Scope{})
			fileScope = ir.Scope{}.Push(ir.ScopeNamespace, fileNS.Name)
			n.namespaces = append(n.namespaces, fileNS)
		case kind == kindClass || stubKinds[kind]:
			if fileNS != nil {
				fileNS.Children = append(fileNS.Children, n.member(child, fileScope))
				continue
			}
			n.roots = append(n.roots, n.member(child, ir.Scope{}))
		}
	}
}

// member normalizes a class or stub declaration. Type declarations nested
// in a stub become its children but keep the stub's enclosing scope: the
// stub gets no Lua table, so they belong to the nearest one that does.
func (n *normalizer) member(node syntax.Node, scope ir.Scope) ir.Node {
	if node.Kind() == kindClass {
		return n.class(node, scope)
	}
	g := ir.NewGeneric(node.Kind(), identText(node.Field("name")), node.Line())
	if body := node.Field("body"); body != nil {
		for _, m := range body.NamedChildren() {
			if kind := m.Kind(); kind == kindClass || stubKinds[kind] {
				g.Children = append(g.Children, n.member(m, scope))
			}
		}
	}
	return g
}

func (n *normalizer) namespace(node syntax.Node, scope ir.Scope) *ir.Namespace {
	ns := ir.NewNamespace(identText(node.Field("name")), node.Line())
	inner := scope.Push(ir.ScopeNamespace, ns.Name)

	members := node.NamedChildren()
	if body := node.Field("body"); body != nil {
		members = body.NamedChildren()
	}

	for _, m := range members {
		switch kind := m.Kind(); {
		case kind == kindUsing:
			n.using(m)
		case kind == kindNamespace:
			ns.Children = append(ns.Children, n.namespace(m, inner))
		case kind == kindClass || stubKinds[kind]:
			ns.Children = append(ns.Children, n.member(m, inner))
		}
	}
	return ns
}

func (n *normalizer) class(node syntax.Node, scope ir.Scope) *ir.Class {
	cls := ir.NewClass(identText(node.Field("name")), scope, node.Line())
	inner := scope.Push(ir.ScopeClass, cls.Name)

	body := node.Field("body")
	if body == nil {
		return cls
	}
	for _, m := range body.NamedChildren() {
		switch kind := m.Kind(); {
		case kind == kindMethod:
			cls.Children = append(cls.Children, n.method(m, inner))
		case kind == kindClass || stubKinds[kind]:
			cls.Children = append(cls.Children, n.member(m, inner))
		}
	}
	return cls
}

func (n *normalizer) method(node syntax.Node, scope ir.Scope) *ir.Method {
	// Newer grammars name the return type field "returns".
	ret := node.Field("returns")
	if ret == nil {
		ret = node.Field("type")
	}

	var params []ir.Parameter
	if list := node.Field("parameters"); list != nil {
		for _, p := range list.NamedChildren() {
			if p.Kind() != kindParameter {
				continue
			}
			params = append(params, ir.Parameter{
				Name: identText(p.Field("name")),
				Type: typeText(p.Field("type")),
			})
		}
	}

	m := ir.NewMethod(identText(node.Field("name")), typeText(ret), params, scope, node.Line())
	m.Static = hasModifier(node, "static")
	return m
}

func (n *normalizer) using(node syntax.Node) {
	target := node.Field("name")
	if target == nil {
		for _, c := range node.NamedChildren() {
			if nameKinds[c.Kind()] {
				target = c
			}
		}
	}
	if name := typeText(target); name != "" {
		n.unit.Usings = append(n.unit.Usings, name)
	}
}

func hasModifier(node syntax.Node, modifier string) bool {
	for _, c := range node.NamedChildren() {
		if c.Kind() == kindModifier && strings.TrimSpace(c.Text()) == modifier {
			return true
		}
	}
	return false
}

// identText returns a declaration name: NFC normalised, verbatim prefix
// stripped, whitespace removed from dotted names.
func identText(node syntax.Node) string {
	if node == nil {
		return ""
	}
	parts := strings.Split(compact(node.Text()), ".")
	for i, p := range parts {
		parts[i] = strings.TrimPrefix(p, "@")
	}
	return norm.NFC.String(strings.Join(parts, "."))
}

// typeText returns a type name with whitespace runs collapsed.
func typeText(node syntax.Node) string {
	if node == nil {
		return ""
	}
	return norm.NFC.String(strings.Join(strings.Fields(node.Text()), " "))
}

func compact(s string) string {
	return strings.Join(strings.Fields(s), "")
}
