package ir

import "strings"

// ScopeKind distinguishes namespace entries from class entries in a Scope.
type ScopeKind int

const (
	ScopeNamespace ScopeKind = iota
	ScopeClass
)

// String returns the lowercase kind name.
func (k ScopeKind) String() string {
	switch k {
	case ScopeNamespace:
		return "namespace"
	case ScopeClass:
		return "class"
	default:
		return "unknown"
	}
}

// ScopeEntry is one enclosing declaration.
type ScopeEntry struct {
	Kind ScopeKind
	Name string
}

// Scope is the chain of enclosing namespaces and classes, outermost first.
//
// Scope is a value: Push copies, so a chain handed to a recursive call can
// never be changed by that call. The zero value is the root scope.
type Scope struct {
	entries []ScopeEntry
}

// Push returns a new chain with the entry appended. The receiver is unchanged.
func (s Scope) Push(kind ScopeKind, name string) Scope {
	entries := make([]ScopeEntry, len(s.entries), len(s.entries)+1)
	copy(entries, s.entries)
	return Scope{entries: append(entries, ScopeEntry{Kind: kind, Name: name})}
}

// Pop returns the chain without its innermost entry. Popping the root scope
// returns the root scope.
func (s Scope) Pop() Scope {
	if len(s.entries) == 0 {
		return s
	}
	return Scope{entries: s.entries[:len(s.entries)-1:len(s.entries)-1]}
}

// Depth is the number of enclosing declarations.
func (s Scope) Depth() int { return len(s.entries) }

// IsRoot reports whether the chain is empty.
func (s Scope) IsRoot() bool { return len(s.entries) == 0 }

// Entries returns a copy of the chain, outermost first.
func (s Scope) Entries() []ScopeEntry {
	out := make([]ScopeEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Innermost returns the innermost entry and false at root.
func (s Scope) Innermost() (ScopeEntry, bool) {
	if len(s.entries) == 0 {
		return ScopeEntry{}, false
	}
	return s.entries[len(s.entries)-1], true
}

// Namespace returns the dotted path of all namespace entries, or "" when the
// chain contains none.
func (s Scope) Namespace() string {
	var parts []string
	for _, e := range s.entries {
		if e.Kind == ScopeNamespace {
			parts = append(parts, e.Name)
		}
	}
	return strings.Join(parts, ".")
}

// Class returns the innermost enclosing class, or "" when not inside one.
func (s Scope) Class() string {
	for i := len(s.entries) - 1; i >= 0; i-- {
		if s.entries[i].Kind == ScopeClass {
			return s.entries[i].Name
		}
	}
	return ""
}

// Qualify joins the chain and name with dots.
func (s Scope) Qualify(name string) string {
	if len(s.entries) == 0 {
		return name
	}
	return s.String() + "." + name
}

// String returns the dotted chain, "" at root.
func (s Scope) String() string {
	parts := make([]string, len(s.entries))
	for i, e := range s.entries {
		parts[i] = e.Name
	}
	return strings.Join(parts, ".")
}
