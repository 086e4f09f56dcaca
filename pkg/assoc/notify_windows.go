//go:build windows

package assoc

import "golang.org/x/sys/windows"

const (
	shcneAssocChanged = 0x08000000
	shcnfIDList       = 0x0000
)

var procSHChangeNotify = windows.NewLazySystemDLL("shell32.dll").NewProc("SHChangeNotify")

type shellNotifier struct{}

// SystemNotifier broadcasts SHCNE_ASSOCCHANGED through shell32.
func SystemNotifier() Notifier { return shellNotifier{} }

func (shellNotifier) AssocChanged() error {
	if err := procSHChangeNotify.Find(); err != nil {
		return err
	}
	// SHChangeNotify returns void; the call cannot fail once resolved.
	procSHChangeNotify.Call(shcneAssocChanged, shcnfIDList, 0, 0)
	return nil
}
