package emitter

import "strings"

// DefaultIndent is one indentation level in generated Lua.
const DefaultIndent = "\t"

// Buffer accumulates generated lines for one emission pass. It also
// remembers which tables were declared so a namespace that appears more than
// once is only declared the first time.
type Buffer struct {
	lines    []string
	depth    int
	indent   string
	declared map[string]bool
}

// NewBuffer returns an empty buffer using DefaultIndent.
func NewBuffer() *Buffer {
	return &Buffer{indent: DefaultIndent, declared: make(map[string]bool)}
}

func (b *Buffer) line(s string) {
	if s == "" {
		b.lines = append(b.lines, "")
		return
	}
	b.lines = append(b.lines, strings.Repeat(b.indent, b.depth)+s)
}

// blank separates blocks. It never produces two blank lines in a row or a
// leading blank line.
func (b *Buffer) blank() {
	if len(b.lines) == 0 || b.lines[len(b.lines)-1] == "" {
		return
	}
	b.lines = append(b.lines, "")
}

func (b *Buffer) push() { b.depth++ }

func (b *Buffer) pop() {
	if b.depth > 0 {
		b.depth--
	}
}

func (b *Buffer) declare(table string) bool {
	if b.declared[table] {
		return false
	}
	b.declared[table] = true
	return true
}

// Len is the number of lines written so far.
func (b *Buffer) Len() int { return len(b.lines) }

// String returns the text with a single trailing newline.
func (b *Buffer) String() string {
	end := len(b.lines)
	for end > 0 && b.lines[end-1] == "" {
		end--
	}
	if end == 0 {
		return ""
	}
	return strings.Join(b.lines[:end], "\n") + "\n"
}
