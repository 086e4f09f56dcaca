package regstore

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joshuapare/regassoc/internal/regtext"
	"github.com/joshuapare/regassoc/pkg/types"
)

// DefaultRegFileRoot is the section prefix that maps to the store root.
const DefaultRegFileRoot = `HKEY_CURRENT_USER\Software`

// RegFileOptions controls OpenRegFile.
type RegFileOptions struct {
	// Root is the key path in the file that corresponds to the store root.
	// Default: DefaultRegFileRoot.
	Root string

	// Encoding for Flush: "UTF-16LE" (regedit default), "UTF-8" or "ANSI"
	// (REGEDIT4). Empty keeps the encoding family of the loaded file.
	Encoding string

	// CreateIfMissing starts with an empty store when the file does not exist.
	CreateIfMissing bool
}

// RegFile is a Memory backend loaded from and flushed to a .reg file.
// Sections outside Root are carried through unchanged.
type RegFile struct {
	*Memory
	path    string
	prefix  string
	enc     string
	ansi    bool
	foreign []regtext.Section
}

// OpenRegFile loads path into memory.
func OpenRegFile(path string, opts RegFileOptions) (*RegFile, error) {
	r := &RegFile{
		Memory: NewMemory(),
		path:   path,
		prefix: strings.TrimSuffix(opts.Root, types.Separator),
		enc:    opts.Encoding,
	}
	if r.prefix == "" {
		r.prefix = DefaultRegFileRoot
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) && opts.CreateIfMissing {
		return r, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read reg file %s: %w", path, err)
	}
	doc, err := regtext.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse reg file %s: %w", path, err)
	}
	if err := r.load(doc); err != nil {
		return nil, fmt.Errorf("failed to load reg file %s: %w", path, err)
	}
	return r, nil
}

// Path returns the backing file.
func (r *RegFile) Path() string { return r.path }

func (r *RegFile) rel(sectionPath string) (types.KeyPath, bool) {
	prefix := r.prefix + types.Separator
	if len(sectionPath) <= len(prefix) || !strings.EqualFold(sectionPath[:len(prefix)], prefix) {
		return types.KeyPath{}, false
	}
	p := types.NewKeyPath(sectionPath[len(prefix):])
	return p, p.Validate() == nil
}

func (r *RegFile) load(doc *regtext.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ansi = doc.ANSI

	for _, sec := range doc.Sections {
		if sec.Delete {
			return types.Errorf(types.ErrKindInvalidArgument, "load", sec.Path, "key deletion directives are not allowed in a store file")
		}
		p, ok := r.rel(sec.Path)
		if !ok {
			r.foreign = append(r.foreign, sec)
			continue
		}
		n := r.ensure(p)
		for _, v := range sec.Values {
			if v.Delete {
				return types.Errorf(types.ErrKindInvalidArgument, "load", sec.Path, "value deletion directives are not allowed in a store file")
			}
			mv := &memValue{name: v.Name, raw: v.Raw}
			switch v.Kind {
			case regtext.KindString, regtext.KindExpandString:
				data, err := regtext.EncodeUTF16Z(v.Data)
				if err != nil {
					return err
				}
				mv.data = data
				mv.kind = kindSZ
				if v.Kind == regtext.KindExpandString {
					mv.kind = kindExpandSZ
				}
			default:
				mv.kind = kindRaw
			}
			n.set(mv)
		}
	}
	return nil
}

// Document renders the current contents as a .reg document, keys in
// depth-first order followed by the sections outside Root.
func (r *RegFile) Document() (*regtext.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc := &regtext.Document{ANSI: r.ansi}
	var walk func(n *memNode) error
	walk = func(n *memNode) error {
		if n != r.Memory.root {
			sec := regtext.Section{Path: r.prefix + types.Separator + n.path()}
			for _, v := range n.values {
				rv := regtext.Value{Name: v.name}
				switch v.kind {
				case kindRaw:
					rv.Kind = regtext.KindRaw
					rv.Raw = v.raw
				default:
					s, err := regtext.DecodeUTF16Z(v.data)
					if err != nil {
						return err
					}
					rv.Kind = regtext.KindString
					if v.kind == kindExpandSZ {
						rv.Kind = regtext.KindExpandString
					}
					rv.Data = s
				}
				sec.Values = append(sec.Values, rv)
			}
			doc.Sections = append(doc.Sections, sec)
		}
		for _, c := range n.children {
			if err := walk(c); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(r.Memory.root); err != nil {
		return nil, err
	}
	doc.Sections = append(doc.Sections, r.foreign...)
	return doc, nil
}

// Flush writes the store back to its file atomically (temp file + rename).
func (r *RegFile) Flush() error {
	doc, err := r.Document()
	if err != nil {
		return fmt.Errorf("failed to render %s: %w", r.path, err)
	}
	out, err := regtext.Encode(doc, regtext.EncodeOptions{Encoding: r.enc})
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", r.path, err)
	}

	if dir := filepath.Dir(r.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory for %s: %w", r.path, err)
		}
	}
	tempPath := r.path + ".tmp"
	if err := os.WriteFile(tempPath, out, 0o644); err != nil {
		return fmt.Errorf("failed to write temporary file: %w", err)
	}
	if err := os.Rename(tempPath, r.path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to replace %s: %w", r.path, err)
	}
	return nil
}
