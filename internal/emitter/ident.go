package emitter

import (
	"fmt"
	"strings"
)

var luaKeywords = map[string]bool{
	"and": true, "break": true, "do": true, "else": true, "elseif": true,
	"end": true, "false": true, "for": true, "function": true, "goto": true,
	"if": true, "in": true, "local": true, "nil": true, "not": true,
	"or": true, "repeat": true, "return": true, "then": true, "true": true,
	"until": true, "while": true,
}

// luaIdent turns a C# identifier into a valid Lua name. Characters outside
// [A-Za-z0-9_] are written as _uXXXX (or _UXXXXXXXX above the BMP) so
// distinct names stay distinct, and reserved words get a trailing underscore.
func luaIdent(name string) string {
	var sb strings.Builder
	for i, r := range name {
		switch {
		case r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
			sb.WriteRune(r)
		case r >= '0' && r <= '9':
			if i == 0 {
				sb.WriteByte('_')
			}
			sb.WriteRune(r)
		case r > 0xFFFF:
			fmt.Fprintf(&sb, "_U%08X", r)
		default:
			fmt.Fprintf(&sb, "_u%04X", r)
		}
	}
	out := sb.String()
	if out == "" {
		return "_"
	}
	if luaKeywords[out] {
		return out + "_"
	}
	return out
}

// luaPath sanitizes each segment of a dotted name.
func luaPath(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = luaIdent(p)
	}
	return strings.Join(parts, ".")
}
