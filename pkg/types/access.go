package types

// Access selects how a key is opened.
type Access int

const (
	AccessRead      Access = iota // query values and enumerate subkeys
	AccessReadWrite               // additionally set and delete values
)

func (a Access) String() string {
	switch a {
	case AccessRead:
		return "read"
	case AccessReadWrite:
		return "read-write"
	default:
		return "unknown"
	}
}

// CanWrite reports whether the mode permits value mutation.
func (a Access) CanWrite() bool { return a == AccessReadWrite }
