// Package regstore provides handle-safe access to a hierarchical, per-user,
// string-valued key store.
//
// A Backend binds the store to a concrete technology: the live Windows
// registry (OpenNative, rooted at HKEY_CURRENT_USER\Software), a .reg file
// (OpenRegFile) or process memory (NewMemory). Store layers the path-based
// operations on top of a Backend and guarantees that every handle it opens is
// closed exactly once, on every exit path.
//
//	st := regstore.New(regstore.NewMemory())
//	p, _ := types.ParseKeyPath(`Classes\.plt`)
//	parent, _ := p.Parent()
//	if err := st.CreateKey(parent); err != nil { ... }
//	if err := st.CreateKey(p); err != nil { ... }
//	if err := st.WriteValue(p, "", "Prog_PLT_File"); err != nil { ... }
//	v, ok, err := st.ReadValue(p, "")
//
// CreateKey requires the parent key to exist.
//
// Keys are never deleted recursively: DeleteKey on a key with subkeys fails
// with an ErrKindInvalidState error and leaves the store unchanged.
package regstore
