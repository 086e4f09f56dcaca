package regtext

import "strings"

// ValueKind classifies a parsed value.
type ValueKind int

const (
	// KindString is a quoted REG_SZ ("name"="data" or hex(1):...).
	KindString ValueKind = iota
	// KindExpandString is REG_EXPAND_SZ (hex(2):...), decoded to text.
	KindExpandString
	// KindRaw is any other payload (dword:, hex:, hex(7):, ...) kept verbatim
	// so that round-tripping a document never loses data.
	KindRaw
)

// Value is one assignment inside a section.
type Value struct {
	Name   string // "" for the default value (@)
	Kind   ValueKind
	Data   string // decoded text for KindString/KindExpandString
	Raw    string // payload text for KindRaw, e.g. "dword:00000001"
	Delete bool   // "name"=-
}

// Section is one [key] block.
type Section struct {
	Path   string // full key path as written, without brackets
	Delete bool   // [-path]
	Values []Value
}

// Document is a parsed .reg file.
type Document struct {
	// ANSI is true for REGEDIT4 input and selects REGEDIT4 output.
	ANSI     bool
	Sections []Section
}

// Lookup returns the section whose path matches case-insensitively.
func (d *Document) Lookup(path string) (*Section, bool) {
	for i := range d.Sections {
		if strings.EqualFold(d.Sections[i].Path, path) {
			return &d.Sections[i], true
		}
	}
	return nil, false
}
