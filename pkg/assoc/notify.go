package assoc

// Notifier tells the shell that associations changed so that icons and
// verbs refresh without a logoff.
type Notifier interface {
	AssocChanged() error
}

// NopNotifier does nothing.
type NopNotifier struct{}

func (NopNotifier) AssocChanged() error { return nil }
