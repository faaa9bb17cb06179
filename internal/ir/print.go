package ir

import (
	"fmt"
	"strings"
)

// FormatTree renders a unit as an indented outline, one node per line.
func FormatTree(u *Unit) string {
	var sb strings.Builder
	for _, name := range u.Usings {
		fmt.Fprintf(&sb, "Using %s\n", name)
	}
	for _, n := range u.Nodes {
		formatNode(&sb, n, 0)
	}
	return sb.String()
}

func formatNode(sb *strings.Builder, n Node, depth int) {
	indent := strings.Repeat("  ", depth)
	switch v := n.(type) {
	case *Namespace:
		fmt.Fprintf(sb, "%sNamespace %s\n", indent, v.Name)
	case *Class:
		fmt.Fprintf(sb, "%sClass %s", indent, v.Name)
		if v.Outer != "" {
			fmt.Fprintf(sb, " (in %s)", v.Outer)
		} else if v.Namespace != "" {
			fmt.Fprintf(sb, " (in %s)", v.Namespace)
		}
		sb.WriteString("\n")
	case *Method:
		params := make([]string, len(v.Parameters))
		for i, p := range v.Parameters {
			params[i] = p.Name + ": " + p.Type
		}
		fmt.Fprintf(sb, "%sMethod %s(%s) %s\n", indent, v.Name, strings.Join(params, ", "), v.ReturnType)
	case *Generic:
		fmt.Fprintf(sb, "%s%s %s\n", indent, v.Kind, v.Name)
	}
	for _, c := range Children(n) {
		formatNode(sb, c, depth+1)
	}
}
