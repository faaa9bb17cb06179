// Package compiler normalizes C# syntax trees into the luasharp IR.
//
// The normalizer is a single recursive descent over the syntax tree. It
// models namespaces, classes, methods and using directives. Type
// declarations without a Lua rendering (structs, interfaces, enums, records,
// delegates) become ir.Generic stubs. Every other syntax kind is skipped
// silently: partial coverage degrades to missing members, never to a failed
// file.
//
// Only signatures are captured. Method bodies are never read.
package compiler
