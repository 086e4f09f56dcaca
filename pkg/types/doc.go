// Package types defines the addressing and error vocabulary shared by the
// registry store and the association manager.
//
// Keys are addressed by KeyPath, an ordered list of segments rooted at the
// per-user scope and rendered backslash-joined ("Classes\.plt"). Values are
// addressed by (KeyPath, name) with the empty name meaning the key's default
// value. All values are strings.
//
// Errors carry a stable ErrKind so callers can branch on intent rather than
// text:
//
//	if types.IsNotFound(err) {
//	    // key or value absent
//	}
//
// This package has no dependencies beyond the standard library.
package types
