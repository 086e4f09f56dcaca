package regstore

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/joshuapare/regassoc/pkg/types"
)

// Op names a store operation. It appears in errors and in fault injection.
type Op string

const (
	OpOpen        Op = "open"
	OpClose       Op = "close"
	OpCreateKey   Op = "create-key"
	OpDeleteKey   Op = "delete-key"
	OpRead        Op = "read-value"
	OpWrite       Op = "write-value"
	OpDeleteValue Op = "delete-value"
	OpList        Op = "list"
)

// Backend is a binding to a concrete key store. Implementations report
// failures as *types.Error values.
type Backend interface {
	// OpenKey opens an existing key. A missing key yields ErrKindNotFound.
	OpenKey(path types.KeyPath, access types.Access) (Handle, error)
	// CreateKey creates path; it succeeds if the key exists. The parent must
	// exist.
	CreateKey(path types.KeyPath) error
	// DeleteKey deletes a key without subkeys.
	DeleteKey(path types.KeyPath) error
}

// Handle is an open key. Close must be called exactly once.
type Handle interface {
	// ReadString returns the string value called name. ok is false when the
	// value is absent or is not a string.
	ReadString(name string) (value string, ok bool, err error)
	WriteString(name, value string) error
	DeleteValue(name string) error
	SubkeyNames() ([]string, error)
	ValueNames() ([]string, error)
	Close() error
}

// Flusher is implemented by backends that buffer mutations (RegFile).
type Flusher interface {
	Flush() error
}

// Store exposes path-addressed operations over a Backend. It keeps no state
// between calls; every operation performs its own open/use/close cycle.
type Store struct {
	b   Backend
	log zerolog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for mutation tracing.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) { s.log = l }
}

// New wraps a backend.
func New(b Backend, opts ...Option) *Store {
	s := &Store{b: b, log: zerolog.Nop()}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Backend returns the underlying binding.
func (s *Store) Backend() Backend { return s.b }

// Flush persists buffered mutations when the backend buffers them. It is a
// no-op for backends that write through.
func (s *Store) Flush() error {
	if f, ok := s.b.(Flusher); ok {
		return f.Flush()
	}
	return nil
}

// OpenKey opens path. The caller owns the handle and must pass it to
// CloseKey exactly once.
func (s *Store) OpenKey(path types.KeyPath, access types.Access) (Handle, error) {
	if err := path.Validate(); err != nil {
		return nil, err
	}
	return s.b.OpenKey(path, access)
}

// CloseKey releases a handle obtained from OpenKey.
func (s *Store) CloseKey(h Handle) error {
	if h == nil {
		return types.Errorf(types.ErrKindInvalidArgument, string(OpClose), "", "nil handle")
	}
	return h.Close()
}

// withKey opens path, runs fn and always closes the handle. A close failure
// is reported only when fn succeeded.
func (s *Store) withKey(path types.KeyPath, access types.Access, fn func(Handle) error) (err error) {
	h, err := s.OpenKey(path, access)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := h.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(h)
}

// CreateKey creates path if absent. The parent must exist.
func (s *Store) CreateKey(path types.KeyPath) error {
	if err := path.Validate(); err != nil {
		return err
	}
	if err := s.b.CreateKey(path); err != nil {
		return err
	}
	s.log.Debug().Str("op", string(OpCreateKey)).Str("path", path.String()).Msg("registry mutation")
	return nil
}

// DeleteKey deletes path. A key with subkeys is never deleted: the call fails
// with ErrKindInvalidState and nothing changes.
func (s *Store) DeleteKey(path types.KeyPath) error {
	has, err := s.HasSubkeys(path)
	if err != nil {
		return err
	}
	if has {
		return &types.Error{
			Kind: types.ErrKindInvalidState,
			Op:   string(OpDeleteKey),
			Path: path.String(),
			Code: types.CodeKeyHasChildren,
			Msg:  "key has subkeys",
		}
	}
	if err := s.b.DeleteKey(path); err != nil {
		return err
	}
	s.log.Debug().Str("op", string(OpDeleteKey)).Str("path", path.String()).Msg("registry mutation")
	return nil
}

// ReadValue returns the string stored at (path, name), trimmed of its
// terminator and surrounding whitespace. A missing key or value is reported
// as ok == false with a nil error.
func (s *Store) ReadValue(path types.KeyPath, name string) (value string, ok bool, err error) {
	err = s.withKey(path, types.AccessRead, func(h Handle) error {
		v, found, rerr := h.ReadString(name)
		if rerr != nil {
			return rerr
		}
		value, ok = trimValue(v), found
		return nil
	})
	if types.IsNotFound(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, ok, nil
}

// WriteValue creates or overwrites (path, name). The key must exist.
func (s *Store) WriteValue(path types.KeyPath, name, value string) error {
	err := s.withKey(path, types.AccessReadWrite, func(h Handle) error {
		return h.WriteString(name, value)
	})
	if err != nil {
		return err
	}
	s.log.Debug().Str("op", string(OpWrite)).Str("path", path.String()).Str("name", name).Msg("registry mutation")
	return nil
}

// DeleteValue removes (path, name); it fails with ErrKindNotFound when the
// key or the value is absent.
func (s *Store) DeleteValue(path types.KeyPath, name string) error {
	err := s.withKey(path, types.AccessReadWrite, func(h Handle) error {
		return h.DeleteValue(name)
	})
	if err != nil {
		return err
	}
	s.log.Debug().Str("op", string(OpDeleteValue)).Str("path", path.String()).Str("name", name).Msg("registry mutation")
	return nil
}

// ListSubkeyNames returns the names of path's direct children in store
// order. A key without subkeys yields an empty, non-nil slice.
func (s *Store) ListSubkeyNames(path types.KeyPath) ([]string, error) {
	var names []string
	err := s.withKey(path, types.AccessRead, func(h Handle) error {
		var lerr error
		names, lerr = h.SubkeyNames()
		return lerr
	})
	if err != nil {
		return nil, err
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}

// ListValueNames returns the value names under path in store order.
func (s *Store) ListValueNames(path types.KeyPath) ([]string, error) {
	var names []string
	err := s.withKey(path, types.AccessRead, func(h Handle) error {
		var lerr error
		names, lerr = h.ValueNames()
		return lerr
	})
	if err != nil {
		return nil, err
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}

// KeyExists reports whether path can be opened.
func (s *Store) KeyExists(path types.KeyPath) (bool, error) {
	err := s.withKey(path, types.AccessRead, func(Handle) error { return nil })
	if types.IsNotFound(err) {
		return false, nil
	}
	return err == nil, err
}

// HasSubkeys reports whether path has at least one child key.
func (s *Store) HasSubkeys(path types.KeyPath) (bool, error) {
	names, err := s.ListSubkeyNames(path)
	if err != nil {
		return false, err
	}
	return len(names) > 0, nil
}

func trimValue(v string) string {
	return strings.TrimSpace(strings.TrimRight(v, "\x00"))
}
