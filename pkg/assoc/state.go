package assoc

// State is the association state of one extension.
type State int

const (
	Unassociated State = iota
	AssociatedByOther
	AssociatedByApp
	AssociatedByAppWithBackup
)

func (s State) String() string {
	switch s {
	case Unassociated:
		return "unassociated"
	case AssociatedByOther:
		return "associated-by-other"
	case AssociatedByApp:
		return "associated"
	case AssociatedByAppWithBackup:
		return "associated-with-backup"
	default:
		return "unknown"
	}
}

// OwnedByApp reports whether the program owns the extension in s.
func (s State) OwnedByApp() bool {
	return s == AssociatedByApp || s == AssociatedByAppWithBackup
}

// Record is the association this program registered for an extension,
// reconstructed from the store.
type Record struct {
	Extension   string `json:"extension"`
	ProgID      string `json:"prog_id"`
	CommandLine string `json:"command_line,omitempty"`
	IconPath    string `json:"icon_path,omitempty"`
	Backup      string `json:"backup,omitempty"` // previous owner kept in the backup slot
	Claimed     bool   `json:"claimed"`          // Classes\.ext points at ProgID
}
