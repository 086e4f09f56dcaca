package regstore

import (
	"strings"
	"sync"

	"github.com/joshuapare/regassoc/internal/regtext"
	"github.com/joshuapare/regassoc/pkg/types"
)

type valueKind int

const (
	kindSZ valueKind = iota
	kindExpandSZ
	kindRaw // non-string payload preserved verbatim (.reg text)
)

type memValue struct {
	name string
	kind valueKind
	data []byte // NUL-terminated UTF-16LE for kindSZ/kindExpandSZ
	raw  string
}

type memNode struct {
	name     string
	parent   *memNode
	children []*memNode
	values   []*memValue
	deleted  bool
}

func (n *memNode) child(name string) *memNode {
	for _, c := range n.children {
		if strings.EqualFold(c.name, name) {
			return c
		}
	}
	return nil
}

func (n *memNode) value(name string) (int, *memValue) {
	for i, v := range n.values {
		if strings.EqualFold(v.name, name) {
			return i, v
		}
	}
	return -1, nil
}

func (n *memNode) path() string {
	var segs []string
	for c := n; c.parent != nil; c = c.parent {
		segs = append(segs, c.name)
	}
	for i, j := 0, len(segs)-1; i < j; i, j = i+1, j-1 {
		segs[i], segs[j] = segs[j], segs[i]
	}
	return strings.Join(segs, types.Separator)
}

type fault struct {
	op   Op
	path string
}

// Memory is an in-process Backend. Key and value names compare
// case-insensitively and keep their original casing; enumeration follows
// insertion order. It is safe for concurrent use.
type Memory struct {
	mu     sync.Mutex
	root   *memNode
	open   int
	faults map[fault]uint32
}

// NewMemory returns an empty store.
func NewMemory() *Memory {
	return &Memory{root: &memNode{}, faults: make(map[fault]uint32)}
}

// FailOn makes every subsequent op on path fail with an ErrKindStore error
// carrying code. Paths compare case-insensitively.
func (m *Memory) FailOn(op Op, path string, code uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.faults[fault{op: op, path: strings.ToLower(path)}] = code
}

// ClearFaults removes all injected failures.
func (m *Memory) ClearFaults() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.faults = make(map[fault]uint32)
}

// OpenHandles returns the number of handles opened and not yet closed.
func (m *Memory) OpenHandles() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.open
}

// Snapshot returns every key path mapped to its values. Default values are
// keyed by "" and non-string values by their raw text.
func (m *Memory) Snapshot() map[string]map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]map[string]string)
	var walk func(n *memNode)
	walk = func(n *memNode) {
		if n != m.root {
			vals := make(map[string]string, len(n.values))
			for _, v := range n.values {
				vals[v.name] = v.display()
			}
			out[n.path()] = vals
		}
		for _, c := range n.children {
			walk(c)
		}
	}
	walk(m.root)
	return out
}

func (v *memValue) display() string {
	if v.kind == kindRaw {
		return v.raw
	}
	s, err := regtext.DecodeUTF16Z(v.data)
	if err != nil {
		return ""
	}
	return s
}

func (m *Memory) injected(op Op, path types.KeyPath) error {
	code, ok := m.faults[fault{op: op, path: strings.ToLower(path.String())}]
	if !ok {
		return nil
	}
	return &types.Error{Kind: types.ErrKindStore, Op: string(op), Path: path.String(), Code: code, Msg: "injected failure"}
}

// lookup walks path from the root. Callers hold m.mu.
func (m *Memory) lookup(path types.KeyPath) *memNode {
	n := m.root
	for _, seg := range path.Segments() {
		if n = n.child(seg); n == nil {
			return nil
		}
	}
	return n
}

func notFound(op Op, path types.KeyPath, msg string) error {
	return &types.Error{Kind: types.ErrKindNotFound, Op: string(op), Path: path.String(), Code: types.CodeFileNotFound, Msg: msg}
}

// OpenKey implements Backend.
func (m *Memory) OpenKey(path types.KeyPath, access types.Access) (Handle, error) {
	if err := path.Validate(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.injected(OpOpen, path); err != nil {
		return nil, err
	}
	n := m.lookup(path)
	if n == nil {
		return nil, notFound(OpOpen, path, "key not found")
	}
	m.open++
	return &memHandle{m: m, n: n, path: path, access: access}, nil
}

// CreateKey implements Backend.
func (m *Memory) CreateKey(path types.KeyPath) error {
	if err := path.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.injected(OpCreateKey, path); err != nil {
		return err
	}
	parent := m.root
	if pp, ok := path.Parent(); ok {
		if parent = m.lookup(pp); parent == nil {
			return &types.Error{Kind: types.ErrKindStore, Op: string(OpCreateKey), Path: path.String(), Code: types.CodeFileNotFound, Msg: "parent key does not exist"}
		}
	}
	if parent.child(path.Base()) != nil {
		return nil
	}
	parent.children = append(parent.children, &memNode{name: path.Base(), parent: parent})
	return nil
}

// DeleteKey implements Backend.
func (m *Memory) DeleteKey(path types.KeyPath) error {
	if err := path.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.injected(OpDeleteKey, path); err != nil {
		return err
	}
	n := m.lookup(path)
	if n == nil {
		return notFound(OpDeleteKey, path, "key not found")
	}
	if len(n.children) > 0 {
		return &types.Error{Kind: types.ErrKindInvalidState, Op: string(OpDeleteKey), Path: path.String(), Code: types.CodeKeyHasChildren, Msg: "key has subkeys"}
	}
	p := n.parent
	for i, c := range p.children {
		if c == n {
			p.children = append(p.children[:i], p.children[i+1:]...)
			break
		}
	}
	n.deleted = true
	return nil
}

// ensure creates every missing segment of path. Callers hold m.mu. Used when
// loading documents whose sections omit intermediate keys.
func (m *Memory) ensure(path types.KeyPath) *memNode {
	n := m.root
	for _, seg := range path.Segments() {
		c := n.child(seg)
		if c == nil {
			c = &memNode{name: seg, parent: n}
			n.children = append(n.children, c)
		}
		n = c
	}
	return n
}

func (n *memNode) set(v *memValue) {
	if i, _ := n.value(v.name); i >= 0 {
		n.values[i] = v
		return
	}
	n.values = append(n.values, v)
}

type memHandle struct {
	m      *Memory
	n      *memNode
	path   types.KeyPath
	access types.Access
	closed bool
}

// check validates the handle and applies fault injection. Callers hold m.mu.
func (h *memHandle) check(op Op, write bool) error {
	if h.closed {
		return &types.Error{Kind: types.ErrKindInvalidState, Op: string(op), Path: h.path.String(), Code: types.CodeInvalidHandle, Msg: "handle already closed"}
	}
	if h.n.deleted {
		return &types.Error{Kind: types.ErrKindStore, Op: string(op), Path: h.path.String(), Code: types.CodeKeyDeleted, Msg: "key was deleted"}
	}
	if write && !h.access.CanWrite() {
		return &types.Error{Kind: types.ErrKindAccessDenied, Op: string(op), Path: h.path.String(), Code: types.CodeAccessDenied, Msg: "key opened read-only"}
	}
	return h.m.injected(op, h.path)
}

func (h *memHandle) ReadString(name string) (string, bool, error) {
	h.m.mu.Lock()
	defer h.m.mu.Unlock()
	if err := h.check(OpRead, false); err != nil {
		return "", false, err
	}
	_, v := h.n.value(name)
	if v == nil || v.kind == kindRaw {
		return "", false, nil
	}
	s, err := regtext.DecodeUTF16Z(v.data)
	if err != nil {
		return "", false, &types.Error{Kind: types.ErrKindStore, Op: string(OpRead), Path: h.path.String(), Msg: "undecodable string", Err: err}
	}
	return s, true, nil
}

func (h *memHandle) WriteString(name, value string) error {
	h.m.mu.Lock()
	defer h.m.mu.Unlock()
	if err := h.check(OpWrite, true); err != nil {
		return err
	}
	if strings.ContainsAny(name, "\r\n") {
		return types.Errorf(types.ErrKindInvalidArgument, string(OpWrite), h.path.String(), "value name %q contains a line break", name)
	}
	data, err := regtext.EncodeUTF16Z(value)
	if err != nil {
		return &types.Error{Kind: types.ErrKindInvalidArgument, Op: string(OpWrite), Path: h.path.String(), Msg: "unencodable string", Err: err}
	}
	if _, old := h.n.value(name); old != nil {
		name = old.name
	}
	h.n.set(&memValue{name: name, kind: kindSZ, data: data})
	return nil
}

func (h *memHandle) DeleteValue(name string) error {
	h.m.mu.Lock()
	defer h.m.mu.Unlock()
	if err := h.check(OpDeleteValue, true); err != nil {
		return err
	}
	i, _ := h.n.value(name)
	if i < 0 {
		return notFound(OpDeleteValue, h.path, "value "+quoteName(name)+" not found")
	}
	h.n.values = append(h.n.values[:i], h.n.values[i+1:]...)
	return nil
}

func (h *memHandle) SubkeyNames() ([]string, error) {
	h.m.mu.Lock()
	defer h.m.mu.Unlock()
	if err := h.check(OpList, false); err != nil {
		return nil, err
	}
	names := make([]string, len(h.n.children))
	for i, c := range h.n.children {
		names[i] = c.name
	}
	return names, nil
}

func (h *memHandle) ValueNames() ([]string, error) {
	h.m.mu.Lock()
	defer h.m.mu.Unlock()
	if err := h.check(OpList, false); err != nil {
		return nil, err
	}
	names := make([]string, len(h.n.values))
	for i, v := range h.n.values {
		names[i] = v.name
	}
	return names, nil
}

func (h *memHandle) Close() error {
	h.m.mu.Lock()
	defer h.m.mu.Unlock()
	if h.closed {
		return &types.Error{Kind: types.ErrKindInvalidState, Op: string(OpClose), Path: h.path.String(), Code: types.CodeInvalidHandle, Msg: "handle already closed"}
	}
	h.closed = true
	h.m.open--
	return nil
}

func quoteName(name string) string {
	if name == "" {
		return "(default)"
	}
	return `"` + name + `"`
}
