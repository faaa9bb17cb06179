// Package build drives the transpiler over a source tree.
//
// Files are enumerated recursively in lexical order and processed strictly
// one at a time: read, parse and normalize, emit, write. A file that fails
// at any stage, including by panicking, is recorded in the Report and the
// batch moves on. Only enumeration failures and context cancellation stop a
// build early.
//
// When a Cache is configured, a file whose source hash and generated output
// are unchanged since the last successful build is skipped.
package build
