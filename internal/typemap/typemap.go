// Package typemap maps C# type names to Lua placeholder expressions.
//
// The mapping is a fixed table of primitive types plus optional project
// overrides. Names not in the table pass through unchanged. Generic and
// array types are not interpreted.
package typemap

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// NoValue is the mapping for types that produce no return statement.
const NoValue = ""

const (
	numberPlaceholder = "0"
	boolPlaceholder   = "false"
	stringPlaceholder = `""`
	nilPlaceholder    = "nil"
)

var defaults = map[string]string{
	"void":        NoValue,
	"System.Void": NoValue,

	"bool":           boolPlaceholder,
	"Boolean":        boolPlaceholder,
	"System.Boolean": boolPlaceholder,

	"string":        stringPlaceholder,
	"String":        stringPlaceholder,
	"System.String": stringPlaceholder,
	"char":          stringPlaceholder,
	"Char":          stringPlaceholder,
	"System.Char":   stringPlaceholder,

	"object":        nilPlaceholder,
	"Object":        nilPlaceholder,
	"System.Object": nilPlaceholder,
	"dynamic":       nilPlaceholder,
}

var numericTypes = [][3]string{
	{"int", "Int32", "System.Int32"},
	{"uint", "UInt32", "System.UInt32"},
	{"long", "Int64", "System.Int64"},
	{"ulong", "UInt64", "System.UInt64"},
	{"short", "Int16", "System.Int16"},
	{"ushort", "UInt16", "System.UInt16"},
	{"byte", "Byte", "System.Byte"},
	{"sbyte", "SByte", "System.SByte"},
	{"nint", "IntPtr", "System.IntPtr"},
	{"nuint", "UIntPtr", "System.UIntPtr"},
	{"float", "Single", "System.Single"},
	{"double", "Double", "System.Double"},
	{"decimal", "Decimal", "System.Decimal"},
}

func init() {
	for _, names := range numericTypes {
		for _, n := range names {
			defaults[n] = numberPlaceholder
		}
	}
}

// Mapper maps type names. The zero value is not usable; use Default or New.
type Mapper struct {
	table map[string]string
}

// Default returns a mapper with the built-in table only.
func Default() *Mapper {
	return New(nil)
}

// New returns a mapper with the built-in table plus overrides. An override
// with an empty value makes that type produce no return statement.
func New(overrides map[string]string) *Mapper {
	table := make(map[string]string, len(defaults)+len(overrides))
	for k, v := range defaults {
		table[k] = v
	}
	for k, v := range overrides {
		table[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return &Mapper{table: table}
}

// Map returns the Lua expression for a C# type name. Nullable value types
// map to nil; unknown names are returned unchanged.
func (m *Mapper) Map(typeName string) string {
	name := strings.TrimSpace(typeName)
	if v, ok := m.table[name]; ok {
		return v
	}
	if strings.HasSuffix(name, "?") {
		return nilPlaceholder
	}
	return name
}

// ReturnStatement returns the placeholder return statement for a method
// returning typeName, and false when the type produces no value.
func (m *Mapper) ReturnStatement(typeName string) (string, bool) {
	if strings.TrimSpace(typeName) == "" {
		return "", false
	}
	v := m.Map(typeName)
	if v == NoValue {
		return "", false
	}
	return "return " + v, true
}

// Fingerprint identifies the table contents. Two mappers with equal
// fingerprints map every name identically.
func (m *Mapper) Fingerprint() string {
	keys := make([]string, 0, len(m.table))
	for k := range m.table {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	h := sha256.New()
	for _, k := range keys {
		h.Write([]byte(k))
		h.Write([]byte{0x00})
		h.Write([]byte(m.table[k]))
		h.Write([]byte{0x00})
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}
