package predicate

// Target is the part of a stored record a predicate compares.
type Target int

const (
	// TargetVersion compares the modification revision. A missing record
	// has revision 0.
	TargetVersion Target = iota
	// TargetValue compares the raw value bytes. Values are unordered.
	TargetValue
)

// Supports reports whether op can be applied to the target.
func (t Target) Supports(op Op) bool {
	switch t {
	case TargetVersion:
		return op.Symbol() != ""
	case TargetValue:
		return op == OpEqual || op == OpNotEqual
	default:
		return false
	}
}

func (t Target) String() string {
	switch t {
	case TargetVersion:
		return "Version"
	case TargetValue:
		return "Value"
	default:
		return "Unknown"
	}
}
