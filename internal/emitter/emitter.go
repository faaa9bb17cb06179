// Package emitter generates Lua source from the luasharp IR.
//
// Namespaces and classes become tables with a self-referencing __index so
// they can serve as metatables. Methods become function fields on their class
// table. A class nested in a namespace or another class is attached to it
// after the class and all of its methods have been emitted, so the generated
// chunk never references a table before it exists.
//
// Method bodies are not translated. Each function gets a placeholder comment
// and, for non-void methods, a return of the mapped placeholder value.
package emitter

import (
	"fmt"
	"strings"

	"github.com/roach88/luasharp/internal/ir"
	"github.com/roach88/luasharp/internal/typemap"
)

// Header is the first line of every generated file.
const Header = "-- Generated by luasharp. Do not edit."

// BodyPlaceholder marks a method whose body was not translated.
const BodyPlaceholder = "-- method body not translated"

// Emitter renders IR units as Lua. It holds no per-file state and may be
// reused across files.
type Emitter struct {
	types  *typemap.Mapper
	indent string
}

// Option configures an Emitter.
type Option func(*Emitter)

// WithIndent sets the string used for one indentation level.
func WithIndent(indent string) Option {
	return func(e *Emitter) { e.indent = indent }
}

// New creates an emitter. A nil mapper uses typemap.Default.
func New(types *typemap.Mapper, opts ...Option) *Emitter {
	if types == nil {
		types = typemap.Default()
	}
	e := &Emitter{types: types, indent: DefaultIndent}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Emit renders one unit into a fresh buffer and returns the Lua text.
func (e *Emitter) Emit(unit *ir.Unit) string {
	buf := NewBuffer()
	buf.indent = e.indent
	e.EmitInto(buf, unit)
	return buf.String()
}

// EmitInto appends one unit to buf. Tables declared by earlier units in the
// same buffer are not declared again.
func (e *Emitter) EmitInto(buf *Buffer, unit *ir.Unit) {
	buf.blank()
	buf.line(Header)
	for _, u := range unit.Usings {
		buf.line("-- using " + u)
	}
	for _, n := range unit.Nodes {
		e.emitNode(buf, ir.Scope{}, n)
	}
}

// emitNode dispatches on the node variant.
func (e *Emitter) emitNode(buf *Buffer, scope ir.Scope, n ir.Node) {
	if n == nil {
		return
	}
	switch v := n.(type) {
	case *ir.Namespace:
		e.emitNamespace(buf, scope, v)
	case *ir.Class:
		e.emitClass(buf, scope, v)
	case *ir.Method:
		buf.blank()
		e.emitMethod(buf, scope, v)
	default:
		e.emitGeneric(buf, scope, n)
	}
}

func (e *Emitter) emitNamespace(buf *Buffer, scope ir.Scope, ns *ir.Namespace) {
	var segments []string
	if outer := scope.Namespace(); outer != "" {
		segments = strings.Split(luaPath(outer), ".")
	}
	name := nameOr(ns.Name, ir.UnnamedNamespace)
	segments = append(segments, strings.Split(luaPath(name), ".")...)

	buf.blank()
	for i := range segments {
		table := strings.Join(segments[:i+1], ".")
		if !buf.declare(table) {
			continue
		}
		if i == 0 {
			buf.line(fmt.Sprintf("local %s = {}", table))
		} else {
			buf.line(fmt.Sprintf("%s = {}", table))
		}
		buf.line(fmt.Sprintf("%s.__index = %s", table, table))
	}

	inner := scope.Push(ir.ScopeNamespace, name)
	for _, c := range ns.Children {
		e.emitNode(buf, inner, c)
	}
}

func (e *Emitter) emitClass(buf *Buffer, scope ir.Scope, cls *ir.Class) {
	clsName := nameOr(cls.Name, ir.UnnamedClass)
	name := luaIdent(clsName)
	target := attachTarget(scope, cls)

	buf.blank()

	// A class named like a declared namespace root would shadow that table
	// for the rest of the chunk. Its block gets its own Lua scope and
	// attaches through a local captured before the class local exists.
	shadows := buf.declared[name]
	if shadows {
		buf.line("do")
		buf.push()
		if target != "" {
			owner := ownerLocal(name)
			buf.line(fmt.Sprintf("local %s = %s", owner, target))
			target = owner
		}
	}

	buf.line(fmt.Sprintf("local %s = {}", name))
	buf.line(fmt.Sprintf("%s.__index = %s", name, name))

	inner := scope.Push(ir.ScopeClass, clsName)

	// Methods first: the attachment line must follow all of them.
	for _, c := range cls.Children {
		if m, ok := c.(*ir.Method); ok {
			buf.blank()
			e.emitMethod(buf, inner, m)
		}
	}
	for _, c := range cls.Children {
		if _, ok := c.(*ir.Method); !ok {
			e.emitNode(buf, inner, c)
		}
	}

	if target != "" {
		buf.blank()
		buf.line(fmt.Sprintf("%s.%s = %s", target, name, name))
	}

	if shadows {
		buf.pop()
		buf.line("end")
	}
}

// ownerLocal names the local holding a shadowed class's attachment target.
func ownerLocal(class string) string {
	owner := "__owner"
	for owner == class {
		owner += "_"
	}
	return owner
}

// attachTarget is the table a class is stored on: the innermost enclosing
// class, else the enclosing namespace path. A class emitted on its own falls
// back to the enclosing names recorded on the node.
func attachTarget(scope ir.Scope, cls *ir.Class) string {
	if inner, ok := scope.Innermost(); ok {
		if inner.Kind == ir.ScopeClass {
			return luaIdent(inner.Name)
		}
		return luaPath(scope.Namespace())
	}
	if cls.Outer != "" {
		return luaIdent(cls.Outer)
	}
	if cls.Namespace != "" {
		return luaPath(cls.Namespace)
	}
	return ""
}

func (e *Emitter) emitMethod(buf *Buffer, scope ir.Scope, m *ir.Method) {
	owner := scope.Class()
	if owner == "" {
		owner = m.Class
	}
	if owner == "" {
		owner = ir.UnnamedClass
	}

	params := make([]string, len(m.Parameters))
	for i, p := range m.Parameters {
		params[i] = luaIdent(p.Name)
	}

	method := nameOr(m.Name, ir.UnnamedMethod)
	buf.line(fmt.Sprintf("%s.%s = function(%s)", luaIdent(owner), luaIdent(method), strings.Join(params, ", ")))
	buf.push()
	buf.line(BodyPlaceholder)
	if stmt, ok := e.types.ReturnStatement(m.ReturnType); ok {
		buf.line(stmt)
	}
	buf.pop()
	buf.line("end")
}

// emitGeneric is the fallback for nodes without a dedicated handler: a
// comment naming the node, then its children.
func (e *Emitter) emitGeneric(buf *Buffer, scope ir.Scope, n ir.Node) {
	kind := string(n.Type())
	if g, ok := n.(*ir.Generic); ok {
		kind = g.Kind
	}
	name := nameOr(n.NodeName(), ir.UnnamedDeclaration)

	buf.blank()
	buf.line(fmt.Sprintf("-- %s %s: no emitter for this declaration", kind, name))
	for _, c := range ir.Children(n) {
		e.emitNode(buf, scope, c)
	}
}

func nameOr(name, fallback string) string {
	if strings.TrimSpace(name) == "" {
		return fallback
	}
	return name
}
