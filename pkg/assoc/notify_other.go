//go:build !windows

package assoc

// SystemNotifier returns a no-op notifier outside Windows.
func SystemNotifier() Notifier { return NopNotifier{} }
