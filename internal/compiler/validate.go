package compiler

import (
	"fmt"
	"strings"

	"github.com/roach88/luasharp/internal/ir"
)

// Validation error codes (E100-E199)
const (
	ErrNilNode            = "E100" // nil node in the forest
	ErrEmptyName          = "E101" // node name is empty
	ErrSharedNode         = "E102" // node reachable from two parents
	ErrInvalidChild       = "E103" // child variant not allowed under parent
	ErrMissingReturnType  = "E104" // method without return type
	ErrEmptyParameterName = "E105" // parameter without a name
	ErrDuplicateParameter = "E106" // two parameters with the same name
)

// ValidationError represents an IR invariant violation.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks the structural invariants of a unit.
// Returns all errors found (does not fail-fast).
func Validate(unit *ir.Unit) []ValidationError {
	v := &validator{seen: make(map[ir.Node]bool)}
	for i, n := range unit.Nodes {
		v.node(n, fmt.Sprintf("nodes[%d]", i), nil)
	}
	return v.errs
}

type validator struct {
	seen map[ir.Node]bool
	errs []ValidationError
}

func (v *validator) add(code, field, message string, line int) {
	v.errs = append(v.errs, ValidationError{Field: field, Message: message, Code: code, Line: line})
}

func (v *validator) node(n ir.Node, path string, parent ir.Node) {
	if n == nil {
		v.add(ErrNilNode, path, "node is nil", 0)
		return
	}

	// E102: the forest must be a tree
	if v.seen[n] {
		v.add(ErrSharedNode, path, fmt.Sprintf("%s %q already has a parent", n.Type(), n.NodeName()), n.SourceLine())
		return
	}
	v.seen[n] = true

	// E101: names are never empty
	if strings.TrimSpace(n.NodeName()) == "" {
		v.add(ErrEmptyName, path+".name", "name is required", n.SourceLine())
	}

	// E103: children must be allowed under their parent
	if parent != nil && !allowedChild(parent, n) {
		v.add(ErrInvalidChild, path, fmt.Sprintf("%s cannot be nested in %s", n.Type(), parent.Type()), n.SourceLine())
	}

	if m, ok := n.(*ir.Method); ok {
		v.method(m, path)
	}

	for i, c := range ir.Children(n) {
		v.node(c, fmt.Sprintf("%s.children[%d]", path, i), n)
	}
}

func (v *validator) method(m *ir.Method, path string) {
	// E104
	if strings.TrimSpace(m.ReturnType) == "" {
		v.add(ErrMissingReturnType, path+".return_type", fmt.Sprintf("method %q has no return type", m.Name), m.Line)
	}

	names := make(map[string]bool)
	for i, p := range m.Parameters {
		field := fmt.Sprintf("%s.parameters[%d]", path, i)
		// E105
		if strings.TrimSpace(p.Name) == "" {
			v.add(ErrEmptyParameterName, field+".name", "parameter name is required", m.Line)
			continue
		}
		// E106
		if names[p.Name] {
			v.add(ErrDuplicateParameter, field+".name", fmt.Sprintf("duplicate parameter name: %q", p.Name), m.Line)
		}
		names[p.Name] = true
	}
}

func allowedChild(parent, child ir.Node) bool {
	switch parent.(type) {
	case *ir.Namespace:
		switch child.(type) {
		case *ir.Namespace, *ir.Class, *ir.Generic:
			return true
		}
	case *ir.Class:
		switch child.(type) {
		case *ir.Method, *ir.Class, *ir.Generic:
			return true
		}
	case *ir.Generic:
		return true
	}
	return false
}
