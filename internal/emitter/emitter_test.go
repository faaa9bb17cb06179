package emitter

import (
	"context"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/luasharp/internal/compiler"
	"github.com/roach88/luasharp/internal/ir"
	"github.com/roach88/luasharp/internal/typemap"
)

const endToEndSource = `
namespace A
{
    class B
    {
        int Foo(string x) { return x.Length; }
    }
}
`

const collisionSource = `
namespace Game
{
    class Game
    {
        void Run() { }
    }

    class Player { }
}
`

const mixedSource = `
using System;
using UnityEngine;

namespace Game.Core
{
    public class Player
    {
        public void Jump(float height, bool force) { }
        public string GetName() { return name; }
        public Vector3 Position() { return pos; }

        class Stats
        {
            int Level() { return 1; }
        }
    }

    struct Point { }
}

public class Util
{
    public static bool end(int then) { return true; }
}
`

func transpile(t *testing.T, src string) string {
	t.Helper()
	unit, err := compiler.CompileSource(context.Background(), "test.cs", []byte(src))
	require.NoError(t, err)
	return New(typemap.Default()).Emit(unit)
}

func newGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

// indexOf returns the index of the first line equal to want, or -1.
func indexOf(lines []string, want string) int {
	for i, l := range lines {
		if strings.TrimSpace(l) == want {
			return i
		}
	}
	return -1
}

func TestEmitGolden(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"end_to_end", endToEndSource},
		{"mixed_declarations", mixedSource},
		{"namespace_collision", collisionSource},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			newGoldie(t).Assert(t, tt.name, []byte(transpile(t, tt.src)))
		})
	}
}

func TestEmitEndToEndOrdering(t *testing.T) {
	lines := strings.Split(transpile(t, endToEndSource), "\n")

	order := []string{
		"local A = {}",
		"local B = {}",
		"B.Foo = function(x)",
		"return 0",
		"A.B = B",
	}
	last := -1
	for _, want := range order {
		idx := indexOf(lines, want)
		require.NotEqual(t, -1, idx, "missing line %q", want)
		assert.Greater(t, idx, last, "line %q out of order", want)
		last = idx
	}
}

func TestEmitAttachmentFollowsAllMethods(t *testing.T) {
	out := transpile(t, `
namespace NS
{
    class C
    {
        void A() { }
        void B() { }
        void D() { }
    }
}
`)
	lines := strings.Split(out, "\n")
	attach := indexOf(lines, "NS.C = C")
	require.NotEqual(t, -1, attach)

	assert.Greater(t, attach, indexOf(lines, "local C = {}"))
	for _, m := range []string{"C.A = function()", "C.B = function()", "C.D = function()"} {
		idx := indexOf(lines, m)
		require.NotEqual(t, -1, idx, m)
		assert.Greater(t, attach, idx, "attachment must follow %s", m)
	}
	// The closing "end" of the last method also precedes the attachment.
	assert.Equal(t, "end", lines[attach-2])
}

func TestEmitTopLevelDeclarationCount(t *testing.T) {
	out := transpile(t, `
namespace One { class X { } }
namespace Two { }
class Three { }
class Four { }
`)

	var topLevel []string
	for _, l := range strings.Split(out, "\n") {
		if strings.HasPrefix(l, "local ") {
			topLevel = append(topLevel, l)
		}
	}
	// Four top-level declarations plus the nested class X.
	assert.Equal(t, []string{
		"local One = {}",
		"local X = {}",
		"local Two = {}",
		"local Three = {}",
		"local Four = {}",
	}, topLevel)
	assert.Contains(t, out, "One.X = X\n")
	assert.NotRegexp(t, `\w\.Three = Three`, out)
}

func TestEmitIsIdempotent(t *testing.T) {
	assert.Equal(t, transpile(t, mixedSource), transpile(t, mixedSource))
}

func TestEmitRootClassHasNoAttachment(t *testing.T) {
	out := transpile(t, "class Solo { void Run() { } }")
	assert.Equal(t, Header+"\n\nlocal Solo = {}\nSolo.__index = Solo\n\nSolo.Run = function()\n\t"+BodyPlaceholder+"\nend\n", out)
}

func TestEmitGenericFallback(t *testing.T) {
	unit := &ir.Unit{Nodes: []ir.Node{
		ir.NewGeneric("interface_declaration", "IShape", 1),
		ir.NewGeneric("future_declaration", "", 2, ir.NewClass("Inner", ir.Scope{}, 3)),
	}}
	out := New(nil).Emit(unit)

	assert.Contains(t, out, "-- interface_declaration IShape: no emitter for this declaration\n")
	assert.Contains(t, out, "-- future_declaration UnnamedDeclaration: no emitter for this declaration\n")
	// Children of a stubbed node are still emitted.
	assert.Contains(t, out, "local Inner = {}\n")
}

func TestEmitPlaceholdersForMissingNames(t *testing.T) {
	unit := &ir.Unit{Nodes: []ir.Node{
		&ir.Namespace{Children: []ir.Node{
			&ir.Class{Children: []ir.Node{&ir.Method{ReturnType: "bool"}}},
		}},
	}}
	out := New(nil).Emit(unit)

	assert.Contains(t, out, "local UnnamedNamespace = {}\n")
	assert.Contains(t, out, "local UnnamedClass = {}\n")
	assert.Contains(t, out, "UnnamedClass.UnnamedMethod = function()\n")
	assert.Contains(t, out, "\treturn false\n")
	assert.Contains(t, out, "UnnamedNamespace.UnnamedClass = UnnamedClass\n")
}

func TestEmitStandaloneClassUsesRecordedNamespace(t *testing.T) {
	scope := ir.Scope{}.Push(ir.ScopeNamespace, "Game")
	cls := ir.NewClass("Player", scope, 1)
	out := New(nil).Emit(&ir.Unit{Nodes: []ir.Node{cls}})

	assert.True(t, strings.HasSuffix(out, "Game.Player = Player\n"), out)
}

func TestEmitOrphanMethodUsesRecordedClass(t *testing.T) {
	m := ir.NewMethod("Tick", "void", nil, ir.Scope{}.Push(ir.ScopeClass, "World"), 1)
	out := New(nil).Emit(&ir.Unit{Nodes: []ir.Node{m}})
	assert.Contains(t, out, "World.Tick = function()\n")
}

func TestEmitRepeatedNamespaceDeclaredOnce(t *testing.T) {
	out := transpile(t, `
namespace A { class X { } }
namespace A { class Y { } }
namespace A.B { class Z { } }
`)
	assert.Equal(t, 1, strings.Count(out, "local A = {}"))
	assert.Equal(t, 1, strings.Count(out, "A.B = {}"))
	assert.Contains(t, out, "A.X = X\n")
	assert.Contains(t, out, "A.Y = Y\n")
	assert.Contains(t, out, "A.B.Z = Z\n")
}

func TestEmitClassNamedLikeNamespaceRoot(t *testing.T) {
	out := transpile(t, collisionSource)
	assert.Equal(t, 1, strings.Count(out, "\nlocal Game = {}\n"), "namespace table declared once at chunk level")
	assert.Contains(t, out, "do\n\tlocal __owner = Game\n\tlocal Game = {}\n")
	assert.Contains(t, out, "\t__owner.Game = Game\nend\n")
	assert.NotContains(t, out, "\nGame.Game = Game")
	assert.True(t, strings.HasSuffix(out, "\nGame.Player = Player\n"), out)
}

func TestEmitClassNamedLikeDottedNamespaceRoot(t *testing.T) {
	out := transpile(t, "namespace A.B { class A { int F() { return 1; } } class C { } }")

	assert.Contains(t, out, "local A = {}\nA.__index = A\nA.B = {}\nA.B.__index = A.B\n")
	assert.Contains(t, out, "do\n\tlocal __owner = A.B\n\tlocal A = {}\n")
	assert.Contains(t, out, "\tA.F = function()\n")
	assert.Contains(t, out, "\t__owner.A = A\nend\n")
	assert.NotContains(t, out, "\nA.B.A = A")
	// Siblings after the block see the namespace table again.
	assert.True(t, strings.HasSuffix(out, "\nA.B.C = C\n"), out)
}

func TestEmitNestedClassNamedLikeNamespaceRoot(t *testing.T) {
	out := transpile(t, "namespace Game { class World { class Game { } } }")

	assert.Contains(t, out, "do\n\tlocal __owner = World\n\tlocal Game = {}\n")
	assert.Contains(t, out, "\t__owner.Game = Game\nend\n")
	assert.True(t, strings.HasSuffix(out, "\nGame.World = World\n"), out)
}

func TestOwnerLocal(t *testing.T) {
	assert.Equal(t, "__owner", ownerLocal("Game"))
	assert.Equal(t, "__owner_", ownerLocal("__owner"))
}

func TestEmitTypesNestedInStub(t *testing.T) {
	out := transpile(t, "namespace N { struct S { class Inner { int F() { return 1; } } } }")

	lines := strings.Split(out, "\n")
	order := []string{
		"local N = {}",
		"-- struct_declaration S: no emitter for this declaration",
		"local Inner = {}",
		"Inner.F = function()",
		"return 0",
		"N.Inner = Inner",
	}
	last := -1
	for _, want := range order {
		idx := indexOf(lines, want)
		require.NotEqual(t, -1, idx, "missing line %q", want)
		assert.Greater(t, idx, last, "line %q out of order", want)
		last = idx
	}
}

func TestEmitTypesNestedInRootStub(t *testing.T) {
	out := transpile(t, "struct S { class Inner { } }")
	assert.Contains(t, out, "local Inner = {}\n")
	assert.NotContains(t, out, "S.Inner", "a stub has no table to attach to")
}

func TestEmitIntoSharedBuffer(t *testing.T) {
	e := New(nil)
	buf := NewBuffer()

	first, err := compiler.CompileSource(context.Background(), "a.cs", []byte("namespace Shared { class A { } }"))
	require.NoError(t, err)
	second, err := compiler.CompileSource(context.Background(), "b.cs", []byte("namespace Shared { class B { } }"))
	require.NoError(t, err)

	e.EmitInto(buf, first)
	e.EmitInto(buf, second)
	out := buf.String()

	assert.Equal(t, 2, strings.Count(out, Header))
	assert.Equal(t, 1, strings.Count(out, "local Shared = {}"))
	assert.Contains(t, out, "Shared.A = A\n")
	assert.Contains(t, out, "Shared.B = B\n")
}

func TestEmitWithIndent(t *testing.T) {
	unit := &ir.Unit{Nodes: []ir.Node{
		ir.NewClass("C", ir.Scope{}, 1, ir.NewMethod("M", "int", nil, ir.Scope{}.Push(ir.ScopeClass, "C"), 2)),
	}}
	out := New(nil, WithIndent("  ")).Emit(unit)
	assert.Contains(t, out, "\n  return 0\n")
}

func TestEmitTypeMapOverrides(t *testing.T) {
	unit := &ir.Unit{Nodes: []ir.Node{
		ir.NewClass("C", ir.Scope{}, 1, ir.NewMethod("Pos", "Vector3", nil, ir.Scope{}.Push(ir.ScopeClass, "C"), 2)),
	}}
	out := New(typemap.New(map[string]string{"Vector3": "Vector3.new()"})).Emit(unit)
	assert.Contains(t, out, "\treturn Vector3.new()\n")
}

func TestLuaIdent(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Foo", "Foo"},
		{"end", "end_"},
		{"local", "local_"},
		{"_x1", "_x1"},
		{"1x", "_1x"},
		{"naïve", "na_u00EFve"},
		{"Café", "Caf_u00E9"},
		{"Cafè", "Caf_u00E8"},
		{"a-b", "a_u002Db"},
		{"x𝔸", "x_U0001D538"},
		{"", "_"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, luaIdent(tt.in))
		})
	}
	assert.Equal(t, "Game.end_.Core", luaPath("Game.end.Core"))
}

func TestBufferString(t *testing.T) {
	b := NewBuffer()
	assert.Equal(t, "", b.String())

	b.blank()
	assert.Equal(t, 0, b.Len(), "leading blank lines are suppressed")

	b.line("a")
	b.blank()
	b.blank()
	b.push()
	b.line("b")
	b.pop()
	b.pop()
	b.line("c")
	b.blank()
	assert.Equal(t, "a\n\n\tb\nc\n", b.String())
}
