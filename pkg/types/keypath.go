package types

import "strings"

// Separator joins KeyPath segments when rendered.
const Separator = `\`

// KeyPath addresses a key relative to the per-user scope root. The zero value
// is the empty path, which no store operation accepts.
type KeyPath struct {
	segs []string
}

// NewKeyPath builds a path from segments. Each argument may itself contain
// separators ("shell\open\command"), which are split. No validation happens
// here; see Validate.
func NewKeyPath(segs ...string) KeyPath {
	out := make([]string, 0, len(segs))
	for _, s := range segs {
		out = append(out, strings.Split(s, Separator)...)
	}
	return KeyPath{segs: out}
}

// ParseKeyPath parses a backslash-joined path and validates it.
func ParseKeyPath(s string) (KeyPath, error) {
	if s == "" {
		return KeyPath{}, Errorf(ErrKindInvalidArgument, "parse-path", s, "empty key path")
	}
	p := NewKeyPath(s)
	if err := p.Validate(); err != nil {
		return KeyPath{}, err
	}
	return p, nil
}

// Validate checks the KeyPath invariants: at least one segment, no empty
// segments (which also rules out leading or trailing separators).
func (p KeyPath) Validate() error {
	if len(p.segs) == 0 {
		return Errorf(ErrKindInvalidArgument, "validate-path", "", "empty key path")
	}
	for i, s := range p.segs {
		if s == "" {
			switch i {
			case len(p.segs) - 1:
				return Errorf(ErrKindInvalidArgument, "validate-path", p.String(), "trailing separator")
			case 0:
				return Errorf(ErrKindInvalidArgument, "validate-path", p.String(), "leading separator")
			default:
				return Errorf(ErrKindInvalidArgument, "validate-path", p.String(), "empty segment at %d", i)
			}
		}
	}
	return nil
}

// String renders the path backslash-joined.
func (p KeyPath) String() string { return strings.Join(p.segs, Separator) }

// Len returns the number of segments.
func (p KeyPath) Len() int { return len(p.segs) }

// IsZero reports whether p has no segments.
func (p KeyPath) IsZero() bool { return len(p.segs) == 0 }

// Segments returns a copy of the path segments.
func (p KeyPath) Segments() []string {
	out := make([]string, len(p.segs))
	copy(out, p.segs)
	return out
}

// Base returns the last segment, or "" for the empty path.
func (p KeyPath) Base() string {
	if len(p.segs) == 0 {
		return ""
	}
	return p.segs[len(p.segs)-1]
}

// Parent returns the path without its last segment. ok is false when p has
// fewer than two segments (the scope root has no addressable parent).
func (p KeyPath) Parent() (KeyPath, bool) {
	if len(p.segs) < 2 {
		return KeyPath{}, false
	}
	return KeyPath{segs: p.segs[:len(p.segs)-1 : len(p.segs)-1]}, true
}

// Child returns a new path with segs appended.
func (p KeyPath) Child(segs ...string) KeyPath {
	tail := NewKeyPath(segs...)
	out := make([]string, 0, len(p.segs)+len(tail.segs))
	out = append(out, p.segs...)
	out = append(out, tail.segs...)
	return KeyPath{segs: out}
}

// Equal compares paths case-insensitively, matching registry key lookup.
func (p KeyPath) Equal(o KeyPath) bool {
	if len(p.segs) != len(o.segs) {
		return false
	}
	for i := range p.segs {
		if !strings.EqualFold(p.segs[i], o.segs[i]) {
			return false
		}
	}
	return true
}

// HasPrefix reports whether prefix is an ancestor of (or equal to) p.
func (p KeyPath) HasPrefix(prefix KeyPath) bool {
	if len(prefix.segs) > len(p.segs) {
		return false
	}
	return KeyPath{segs: p.segs[:len(prefix.segs)]}.Equal(prefix)
}
