//go:build windows

package regstore

import (
	"errors"
	"syscall"

	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/registry"

	"github.com/joshuapare/regassoc/pkg/types"
)

// NativeBase is the per-user scope every native path is rooted at.
const NativeBase = `Software`

type native struct {
	root registry.Key
	base string
}

// OpenNative binds to the live registry of the current user, rooted at
// HKEY_CURRENT_USER\Software.
func OpenNative() (Backend, error) {
	return &native{root: registry.CURRENT_USER, base: NativeBase}, nil
}

func (n *native) full(p types.KeyPath) string {
	return n.base + types.Separator + p.String()
}

func accessMask(a types.Access) uint32 {
	mask := uint32(registry.QUERY_VALUE | registry.ENUMERATE_SUB_KEYS)
	if a.CanWrite() {
		mask |= registry.SET_VALUE
	}
	return mask
}

// mapErr converts a native status into a typed error.
func mapErr(op Op, p types.KeyPath, err error) error {
	if err == nil {
		return nil
	}
	e := &types.Error{Kind: types.ErrKindStore, Op: string(op), Path: p.String(), Err: err}
	var errno syscall.Errno
	if errors.As(err, &errno) {
		e.Code = uint32(errno)
		switch errno {
		case windows.ERROR_FILE_NOT_FOUND, windows.ERROR_PATH_NOT_FOUND:
			e.Kind = types.ErrKindNotFound
		case windows.ERROR_ACCESS_DENIED:
			e.Kind = types.ErrKindAccessDenied
		}
	}
	return e
}

func (n *native) OpenKey(p types.KeyPath, access types.Access) (Handle, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	k, err := registry.OpenKey(n.root, n.full(p), accessMask(access))
	if err != nil {
		return nil, mapErr(OpOpen, p, err)
	}
	return &nativeHandle{k: k, path: p, access: access}, nil
}

func (n *native) CreateKey(p types.KeyPath) error {
	if err := p.Validate(); err != nil {
		return err
	}
	// RegCreateKeyEx creates missing ancestors; the store contract does not.
	if parent, ok := p.Parent(); ok {
		pk, err := registry.OpenKey(n.root, n.full(parent), registry.QUERY_VALUE)
		if err != nil {
			if e := mapErr(OpCreateKey, p, err); !types.IsNotFound(e) {
				return e
			}
			return &types.Error{Kind: types.ErrKindStore, Op: string(OpCreateKey), Path: p.String(), Code: types.CodeFileNotFound, Msg: "parent key does not exist"}
		}
		pk.Close()
	}
	k, _, err := registry.CreateKey(n.root, n.full(p), registry.QUERY_VALUE)
	if err != nil {
		return mapErr(OpCreateKey, p, err)
	}
	return mapErr(OpClose, p, k.Close())
}

func (n *native) DeleteKey(p types.KeyPath) error {
	if err := p.Validate(); err != nil {
		return err
	}
	return mapErr(OpDeleteKey, p, registry.DeleteKey(n.root, n.full(p)))
}

type nativeHandle struct {
	k      registry.Key
	path   types.KeyPath
	access types.Access
	closed bool
}

func (h *nativeHandle) live(op Op) error {
	if h.closed {
		return &types.Error{Kind: types.ErrKindInvalidState, Op: string(op), Path: h.path.String(), Code: types.CodeInvalidHandle, Msg: "handle already closed"}
	}
	return nil
}

func (h *nativeHandle) ReadString(name string) (string, bool, error) {
	if err := h.live(OpRead); err != nil {
		return "", false, err
	}
	v, _, err := h.k.GetStringValue(name)
	switch {
	case err == nil:
		return v, true, nil
	case errors.Is(err, registry.ErrNotExist), errors.Is(err, registry.ErrUnexpectedType):
		return "", false, nil
	default:
		return "", false, mapErr(OpRead, h.path, err)
	}
}

func (h *nativeHandle) WriteString(name, value string) error {
	if err := h.live(OpWrite); err != nil {
		return err
	}
	if !h.access.CanWrite() {
		return &types.Error{Kind: types.ErrKindAccessDenied, Op: string(OpWrite), Path: h.path.String(), Code: types.CodeAccessDenied, Msg: "key opened read-only"}
	}
	return mapErr(OpWrite, h.path, h.k.SetStringValue(name, value))
}

func (h *nativeHandle) DeleteValue(name string) error {
	if err := h.live(OpDeleteValue); err != nil {
		return err
	}
	if !h.access.CanWrite() {
		return &types.Error{Kind: types.ErrKindAccessDenied, Op: string(OpDeleteValue), Path: h.path.String(), Code: types.CodeAccessDenied, Msg: "key opened read-only"}
	}
	return mapErr(OpDeleteValue, h.path, h.k.DeleteValue(name))
}

func (h *nativeHandle) SubkeyNames() ([]string, error) {
	if err := h.live(OpList); err != nil {
		return nil, err
	}
	names, err := h.k.ReadSubKeyNames(-1)
	if err != nil {
		return nil, mapErr(OpList, h.path, err)
	}
	return names, nil
}

func (h *nativeHandle) ValueNames() ([]string, error) {
	if err := h.live(OpList); err != nil {
		return nil, err
	}
	names, err := h.k.ReadValueNames(-1)
	if err != nil {
		return nil, mapErr(OpList, h.path, err)
	}
	return names, nil
}

func (h *nativeHandle) Close() error {
	if err := h.live(OpClose); err != nil {
		return err
	}
	h.closed = true
	return mapErr(OpClose, h.path, h.k.Close())
}
