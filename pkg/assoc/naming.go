package assoc

import "strings"

const (
	// BackupPrefix starts the name of the backup slot key.
	BackupPrefix = "Backup_by_"

	progIDSuffix = "_File"
	iconPrefix   = "Icon_"
	iconSuffix   = ".ico"
)

// ProgID returns "<program>_<EXT>_File".
func ProgID(program, ext string) string {
	return program + "_" + strings.ToUpper(ext) + progIDSuffix
}

// BackupKeyName returns "Backup_by_<program>".
func BackupKeyName(program string) string {
	return BackupPrefix + program
}

// CommandLine returns the open verb command for execPath: `<execPath> "%1"`.
func CommandLine(execPath string) string {
	return execPath + ` "%1"`
}

// ExecutableName returns the file name of the executable in a command line
// built by CommandLine, splitting on either path separator. It is empty for
// any other form.
func ExecutableName(command string) string {
	exe, ok := strings.CutSuffix(command, ` "%1"`)
	if !ok {
		return ""
	}
	if i := strings.LastIndexAny(exe, `\/`); i >= 0 {
		exe = exe[i+1:]
	}
	return exe
}

// IconFileName returns the icon looked up next to the executable.
func IconFileName(ext string) string {
	return iconPrefix + strings.ToLower(ext) + iconSuffix
}
