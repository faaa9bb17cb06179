// Package ir provides the intermediate representation produced by the
// normalizer and consumed by the Lua emitter.
//
// This package contains type definitions and small value helpers only. All
// other internal packages import ir; ir imports nothing internal.
//
// Key design constraints:
//   - Node is a closed sum: Namespace, Class, Method and Generic are the only
//     variants, enforced by an unexported marker method
//   - The forest is a tree: children are owned by exactly one parent
//   - Name is never empty; constructors substitute a deterministic placeholder
//   - Scope is an immutable value; Push returns a new chain
//   - All JSON tags use snake_case
package ir
