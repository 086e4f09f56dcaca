package assoc

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/joshuapare/regassoc/pkg/regstore"
	"github.com/joshuapare/regassoc/pkg/types"
)

// ClassesKey is the per-user classes tree.
const ClassesKey = "Classes"

// Options configures a Manager.
type Options struct {
	// Program names the claiming application; it becomes part of every
	// ProgID and of the backup slot name.
	Program string

	// FS is used to check executables and look up icons. Default: afero.NewOsFs().
	FS afero.Fs

	// Logger receives step tracing (debug) and outcomes (info). Default: disabled.
	Logger *zerolog.Logger

	// Notifier is told about successful changes. Default: NopNotifier.
	Notifier Notifier
}

// Manager implements the association protocol on top of a regstore.Store.
type Manager struct {
	st       *regstore.Store
	program  string
	fs       afero.Fs
	log      zerolog.Logger
	notifier Notifier
	classes  types.KeyPath
}

// New returns a Manager for opts.Program.
func New(st *regstore.Store, opts Options) (*Manager, error) {
	if st == nil {
		return nil, types.Errorf(types.ErrKindInvalidArgument, "new-manager", "", "nil store")
	}
	if err := validateProgram(opts.Program); err != nil {
		return nil, err
	}
	m := &Manager{
		st:       st,
		program:  opts.Program,
		fs:       opts.FS,
		log:      zerolog.Nop(),
		notifier: opts.Notifier,
		classes:  types.NewKeyPath(ClassesKey),
	}
	if m.fs == nil {
		m.fs = afero.NewOsFs()
	}
	if opts.Logger != nil {
		m.log = opts.Logger.With().Str("component", "assoc").Str("program", opts.Program).Logger()
	}
	if m.notifier == nil {
		m.notifier = NopNotifier{}
	}
	return m, nil
}

func validateProgram(p string) error {
	if p == "" {
		return types.Errorf(types.ErrKindInvalidArgument, "new-manager", "", "program name is empty")
	}
	if strings.ContainsAny(p, `\/.`) || strings.IndexFunc(p, unicode.IsSpace) >= 0 {
		return types.Errorf(types.ErrKindInvalidArgument, "new-manager", "", "program name %q must not contain separators, dots or spaces", p)
	}
	return nil
}

// Program returns the configured program name.
func (m *Manager) Program() string { return m.program }

// ProgID returns the ProgID this program uses for ext.
func (m *Manager) ProgID(ext string) string { return ProgID(m.program, ext) }

// BackupKeyName returns the name of this program's backup slot.
func (m *Manager) BackupKeyName() string { return BackupKeyName(m.program) }

// validateExt checks the extension without its leading dot.
func validateExt(op, ext string) error {
	switch {
	case ext == "":
		return types.Errorf(types.ErrKindInvalidArgument, op, "", "extension is empty")
	case strings.Contains(ext, "."):
		return types.Errorf(types.ErrKindInvalidArgument, op, "", "extension %q must not contain '.'", ext)
	case strings.ContainsAny(ext, `\/`) || strings.IndexFunc(ext, unicode.IsSpace) >= 0:
		return types.Errorf(types.ErrKindInvalidArgument, op, "", "extension %q must not contain separators or spaces", ext)
	}
	return nil
}

func (m *Manager) validateExec(execPath string) error {
	if execPath == "" {
		return types.Errorf(types.ErrKindInvalidArgument, "associate", "", "executable path is empty")
	}
	fi, err := m.fs.Stat(execPath)
	if err != nil {
		return &types.Error{Kind: types.ErrKindInvalidArgument, Op: "associate", Msg: fmt.Sprintf("executable %q not found", execPath), Err: err}
	}
	if fi.IsDir() {
		return types.Errorf(types.ErrKindInvalidArgument, "associate", "", "executable %q is a directory", execPath)
	}
	return nil
}

// keys groups the paths involved in one extension's association.
type keys struct {
	progID string
	prog   types.KeyPath // Classes\<ProgID>
	open   types.KeyPath // ...\shell\open\command
	icon   types.KeyPath // ...\DefaultIcon
	ext    types.KeyPath // Classes\.<ext>
	backup types.KeyPath // Classes\.<ext>\Backup_by_<Program>
}

func (m *Manager) keysFor(ext string) keys {
	progID := m.ProgID(ext)
	prog := m.classes.Child(progID)
	extKey := m.classes.Child("." + ext)
	return keys{
		progID: progID,
		prog:   prog,
		open:   prog.Child("shell", "open", "command"),
		icon:   prog.Child("DefaultIcon"),
		ext:    extKey,
		backup: extKey.Child(m.BackupKeyName()),
	}
}

// createChain creates every key from base down to leaf, one level at a time.
func (m *Manager) createChain(base, leaf types.KeyPath) error {
	segs := leaf.Segments()
	for i := base.Len(); i <= len(segs); i++ {
		if err := m.st.CreateKey(types.NewKeyPath(segs[:i]...)); err != nil {
			return err
		}
	}
	return nil
}

// Associate makes execPath the program that opens files with extension ext
// (given without its dot). Preconditions are checked before anything is
// written. A failure part-way leaves the steps already done in place; every
// step is idempotent, so calling Associate again is safe.
func (m *Manager) Associate(ext, execPath string) error {
	if err := validateExt("associate", ext); err != nil {
		return err
	}
	if err := m.validateExec(execPath); err != nil {
		return err
	}

	k := m.keysFor(ext)
	log := m.log.With().Str("ext", ext).Str("prog_id", k.progID).Logger()

	// ProgID and its default value.
	if err := m.createChain(m.classes, k.prog); err != nil {
		return fmt.Errorf("associate .%s: create %s: %w", ext, k.prog, err)
	}
	if err := m.st.WriteValue(k.prog, "", k.progID); err != nil {
		return fmt.Errorf("associate .%s: name %s: %w", ext, k.prog, err)
	}
	log.Debug().Str("step", "prog-id").Msg("registered ProgID")

	// Open verb.
	if err := m.createChain(k.prog, k.open); err != nil {
		return fmt.Errorf("associate .%s: create %s: %w", ext, k.open, err)
	}
	if err := m.st.WriteValue(k.open, "", CommandLine(execPath)); err != nil {
		return fmt.Errorf("associate .%s: write command: %w", ext, err)
	}
	log.Debug().Str("step", "command").Str("command", CommandLine(execPath)).Msg("registered open verb")

	// Icon, when shipped next to the executable.
	iconPath := filepath.Join(filepath.Dir(execPath), IconFileName(ext))
	if ok, _ := afero.Exists(m.fs, iconPath); ok {
		if err := m.st.CreateKey(k.icon); err != nil {
			return fmt.Errorf("associate .%s: create %s: %w", ext, k.icon, err)
		}
		if err := m.st.WriteValue(k.icon, "", iconPath); err != nil {
			return fmt.Errorf("associate .%s: write icon: %w", ext, err)
		}
		log.Debug().Str("step", "icon").Str("icon", iconPath).Msg("registered icon")
	}

	// Back up a foreign owner, or create the extension key.
	exists, err := m.st.KeyExists(k.ext)
	if err != nil {
		return fmt.Errorf("associate .%s: probe %s: %w", ext, k.ext, err)
	}
	if !exists {
		if err := m.st.CreateKey(k.ext); err != nil {
			return fmt.Errorf("associate .%s: create %s: %w", ext, k.ext, err)
		}
	} else if err := m.backup(k, log); err != nil {
		return fmt.Errorf("associate .%s: %w", ext, err)
	}

	// Claim.
	if err := m.st.WriteValue(k.ext, "", k.progID); err != nil {
		return fmt.Errorf("associate .%s: claim: %w", ext, err)
	}
	log.Info().Str("exec", execPath).Msg("extension associated")

	m.notify(log)
	return nil
}

// backup preserves the current owner of k.ext in the backup slot. A slot
// that already holds a value is left alone: it records the owner from before
// the first claim.
func (m *Manager) backup(k keys, log zerolog.Logger) error {
	prior, ok, err := m.st.ReadValue(k.ext, "")
	if err != nil {
		return fmt.Errorf("read current owner: %w", err)
	}
	if !ok || prior == "" || strings.EqualFold(prior, k.progID) {
		return nil
	}
	if kept, ok, err := m.st.ReadValue(k.backup, ""); err != nil {
		return fmt.Errorf("read backup: %w", err)
	} else if ok && kept != "" {
		log.Debug().Str("step", "backup").Str("kept", kept).Str("current", prior).Msg("backup slot already holds a previous owner")
		return nil
	}
	if err := m.st.CreateKey(k.backup); err != nil {
		return fmt.Errorf("create %s: %w", k.backup, err)
	}
	if err := m.st.WriteValue(k.backup, "", prior); err != nil {
		return fmt.Errorf("write backup: %w", err)
	}
	log.Debug().Str("step", "backup").Str("previous", prior).Msg("backed up previous owner")
	return nil
}

// Unassociate releases ext. ProgID keys are removed bottom-up and only while
// empty; the extension's previous owner is restored from the backup slot.
// Open-with history cleanup is best-effort and never fails the call.
func (m *Manager) Unassociate(ext string) error {
	if err := validateExt("unassociate", ext); err != nil {
		return err
	}
	k := m.keysFor(ext)
	log := m.log.With().Str("ext", ext).Str("prog_id", k.progID).Logger()

	// The command is gone after removeProgID; keep the executable name for
	// the open-with cleanup.
	command, _, err := m.st.ReadValue(k.open, "")
	if err != nil {
		log.Debug().Err(err).Msg("could not read open command")
	}
	exeName := ExecutableName(command)

	if err := m.removeProgID(k, log); err != nil {
		return fmt.Errorf("unassociate .%s: %w", ext, err)
	}

	current, ok, err := m.st.ReadValue(k.ext, "")
	if err != nil {
		return fmt.Errorf("unassociate .%s: read owner: %w", ext, err)
	}
	if ok && strings.EqualFold(current, k.progID) {
		if err := m.st.DeleteValue(k.ext, ""); err != nil {
			return fmt.Errorf("unassociate .%s: release: %w", ext, err)
		}
		log.Debug().Str("step", "release").Msg("released extension")
	}

	if err := m.restore(k, log); err != nil {
		return fmt.Errorf("unassociate .%s: %w", ext, err)
	}

	m.forgetOpenWith(ext, k.progID, exeName, log)
	log.Info().Msg("extension unassociated")
	m.notify(log)
	return nil
}

// removeProgID deletes DefaultIcon, then walks shell\open\command up to the
// ProgID key, stopping at the first key that still has subkeys.
func (m *Manager) removeProgID(k keys, log zerolog.Logger) error {
	if err := m.deleteDefault(k.icon); err != nil {
		return fmt.Errorf("clear icon: %w", err)
	}
	if _, err := m.deleteIfEmpty(k.icon, log); err != nil {
		return err
	}
	if err := m.deleteDefault(k.open); err != nil {
		return fmt.Errorf("clear command: %w", err)
	}
	return m.pruneUpward(k.open, k.prog, log)
}

// pruneUpward deletes leaf and then each ancestor up to and including top,
// stopping at the first key that still has subkeys.
func (m *Manager) pruneUpward(leaf, top types.KeyPath, log zerolog.Logger) error {
	p := leaf
	for {
		gone, err := m.deleteIfEmpty(p, log)
		if err != nil {
			return err
		}
		if !gone {
			log.Debug().Str("kept", p.String()).Msg("key still has subkeys, stopping cleanup")
			return nil
		}
		if p.Equal(top) {
			return nil
		}
		var ok bool
		if p, ok = p.Parent(); !ok {
			return nil
		}
	}
}

// deleteIfEmpty deletes path when it exists and has no subkeys. gone is true
// when the key no longer exists afterwards.
func (m *Manager) deleteIfEmpty(path types.KeyPath, log zerolog.Logger) (gone bool, err error) {
	names, err := m.st.ListSubkeyNames(path)
	if types.IsNotFound(err) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("list %s: %w", path, err)
	}
	if len(names) > 0 {
		return false, nil
	}
	if err := m.st.DeleteKey(path); err != nil {
		return false, fmt.Errorf("delete %s: %w", path, err)
	}
	log.Debug().Str("step", "delete-key").Str("path", path.String()).Msg("deleted key")
	return true, nil
}

// deleteDefault removes path's default value if both exist.
func (m *Manager) deleteDefault(path types.KeyPath) error {
	_, ok, err := m.st.ReadValue(path, "")
	if err != nil || !ok {
		return err
	}
	return m.st.DeleteValue(path, "")
}

// restore moves a backed-up owner back into the extension's default value
// and consumes the backup slot.
func (m *Manager) restore(k keys, log zerolog.Logger) error {
	prior, ok, err := m.st.ReadValue(k.backup, "")
	if err != nil {
		return fmt.Errorf("read backup: %w", err)
	}
	if ok && prior != "" {
		if err := m.st.CreateKey(k.ext); err != nil {
			return fmt.Errorf("create %s: %w", k.ext, err)
		}
		if err := m.st.WriteValue(k.ext, "", prior); err != nil {
			return fmt.Errorf("restore %q: %w", prior, err)
		}
		if err := m.st.DeleteValue(k.backup, ""); err != nil {
			return fmt.Errorf("consume backup: %w", err)
		}
		log.Debug().Str("step", "restore").Str("owner", prior).Msg("restored previous owner")
	} else if ok {
		if err := m.st.DeleteValue(k.backup, ""); err != nil {
			return fmt.Errorf("consume backup: %w", err)
		}
	}
	if _, err := m.deleteIfEmpty(k.backup, log); err != nil {
		return err
	}
	return nil
}

func (m *Manager) notify(log zerolog.Logger) {
	if err := m.notifier.AssocChanged(); err != nil {
		log.Warn().Err(err).Msg("shell change notification failed")
	}
}

// IsAssociated reports whether ext currently opens with execPath through
// this program's ProgID. It never fails: missing keys or store errors yield
// false.
func (m *Manager) IsAssociated(ext, execPath string) bool {
	if validateExt("is-associated", ext) != nil || execPath == "" {
		return false
	}
	k := m.keysFor(ext)
	cmd, ok, err := m.st.ReadValue(k.open, "")
	if err != nil || !ok || !strings.HasPrefix(strings.ToLower(cmd), strings.ToLower(execPath)) {
		return false
	}
	owner, ok, err := m.st.ReadValue(k.ext, "")
	if err != nil || !ok {
		return false
	}
	return strings.EqualFold(owner, k.progID)
}

// Status reports the association state of ext.
func (m *Manager) Status(ext string) (State, error) {
	if err := validateExt("status", ext); err != nil {
		return Unassociated, err
	}
	k := m.keysFor(ext)
	owner, ok, err := m.st.ReadValue(k.ext, "")
	if err != nil {
		return Unassociated, fmt.Errorf("status .%s: %w", ext, err)
	}
	switch {
	case !ok || owner == "":
		return Unassociated, nil
	case !strings.EqualFold(owner, k.progID):
		return AssociatedByOther, nil
	}
	prior, ok, err := m.st.ReadValue(k.backup, "")
	if err != nil {
		return Unassociated, fmt.Errorf("status .%s: %w", ext, err)
	}
	if ok && prior != "" {
		return AssociatedByAppWithBackup, nil
	}
	return AssociatedByApp, nil
}

// Record reconstructs this program's association for ext. found is false
// when no ProgID key exists; Backup is filled in either way, since the
// backup slot lives under the extension key.
func (m *Manager) Record(ext string) (rec Record, found bool, err error) {
	if err := validateExt("record", ext); err != nil {
		return Record{}, false, err
	}
	k := m.keysFor(ext)
	rec = Record{Extension: ext, ProgID: k.progID}
	if rec.Backup, _, err = m.st.ReadValue(k.backup, ""); err != nil {
		return Record{}, false, err
	}
	exists, err := m.st.KeyExists(k.prog)
	if err != nil {
		return Record{}, false, err
	}
	if !exists {
		return rec, false, nil
	}
	if rec.CommandLine, _, err = m.st.ReadValue(k.open, ""); err != nil {
		return Record{}, false, err
	}
	if rec.IconPath, _, err = m.st.ReadValue(k.icon, ""); err != nil {
		return Record{}, false, err
	}
	owner, _, err := m.st.ReadValue(k.ext, "")
	if err != nil {
		return Record{}, false, err
	}
	rec.Claimed = strings.EqualFold(owner, k.progID)
	return rec, true, nil
}
