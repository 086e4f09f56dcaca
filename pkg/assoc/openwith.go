package assoc

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/joshuapare/regassoc/pkg/types"
)

// FileExtsKey holds Explorer's per-extension open-with history.
const FileExtsKey = `Microsoft\Windows\CurrentVersion\Explorer\FileExts`

const (
	openWithProgIDs = "OpenWithProgids"
	openWithList    = "OpenWithList"
	userChoice      = "UserChoice"
	mruListValue    = "MRUList"
	progIDValue     = "ProgId"
	hashValue       = "Hash"
)

// forgetOpenWith removes references to progID (and, in OpenWithList, to the
// executable file name exeName) from the Explorer history of ext. Every
// failure is logged and dropped.
func (m *Manager) forgetOpenWith(ext, progID, exeName string, log zerolog.Logger) {
	base := types.NewKeyPath(FileExtsKey, "."+ext)
	for _, err := range m.cleanOpenWith(base, progID, exeName, log) {
		log.Warn().Err(err).Str("step", "open-with").Msg("open-with history cleanup failed")
	}
}

// cleanOpenWith returns every failure it encountered; it keeps going after
// each one.
func (m *Manager) cleanOpenWith(base types.KeyPath, progID, exeName string, log zerolog.Logger) []error {
	var errs []error
	keep := func(err error) {
		if err != nil && !types.IsNotFound(err) {
			errs = append(errs, err)
		}
	}

	// OpenWithProgids lists ProgIDs as value names.
	progids := base.Child(openWithProgIDs)
	if names, err := m.st.ListValueNames(progids); err == nil {
		for _, n := range names {
			if strings.EqualFold(n, progID) {
				keep(m.st.DeleteValue(progids, n))
				log.Debug().Str("step", "open-with").Str("path", progids.String()).Msg("removed ProgID")
			}
		}
	} else {
		keep(err)
	}

	keep(m.cleanMRU(base.Child(openWithList), progID, exeName, log))

	// UserChoice pins the default handler; it is usually ACL protected.
	choice := base.Child(userChoice)
	if v, ok, err := m.st.ReadValue(choice, progIDValue); err != nil {
		keep(err)
	} else if ok && strings.EqualFold(v, progID) {
		if err := m.st.DeleteValue(choice, progIDValue); err != nil {
			keep(err)
			return errs
		}
		if _, ok, _ := m.st.ReadValue(choice, hashValue); ok {
			keep(m.st.DeleteValue(choice, hashValue))
		}
		if _, err := m.deleteIfEmpty(choice, log); err != nil {
			keep(err)
		}
	}
	return errs
}

// cleanMRU drops OpenWithList entries whose data is progID or exeName and
// removes their letters from MRUList. Explorer records executable file
// names there.
func (m *Manager) cleanMRU(list types.KeyPath, progID, exeName string, log zerolog.Logger) error {
	names, err := m.st.ListValueNames(list)
	if err != nil {
		return err
	}
	var dropped []string
	for _, n := range names {
		if strings.EqualFold(n, mruListValue) {
			continue
		}
		v, ok, err := m.st.ReadValue(list, n)
		if err != nil {
			return err
		}
		if ok && (strings.EqualFold(v, progID) || (exeName != "" && strings.EqualFold(v, exeName))) {
			if err := m.st.DeleteValue(list, n); err != nil {
				return err
			}
			dropped = append(dropped, n)
		}
	}
	if len(dropped) == 0 {
		return nil
	}
	mru, ok, err := m.st.ReadValue(list, mruListValue)
	if err != nil || !ok {
		return err
	}
	for _, d := range dropped {
		mru = strings.ReplaceAll(mru, d, "")
	}
	log.Debug().Str("step", "open-with").Strs("entries", dropped).Msg("removed MRU entries")
	return m.st.WriteValue(list, mruListValue, mru)
}
