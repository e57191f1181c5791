package types

type Visibility uint8

const (
	VisibilityPublic Visibility = iota
	VisibilityPrivate
	// VisibilityTypePrivate symbols are only available inside the type
	// defining them.
	VisibilityTypePrivate
)

// PublicIf returns Public when public is true, Private otherwise.
func PublicIf(public bool) Visibility {
	if public {
		return VisibilityPublic
	}
	return VisibilityPrivate
}

func (v Visibility) IsPrivate() bool { return v != VisibilityPublic }

func (v Visibility) String() string {
	switch v {
	case VisibilityPublic:
		return "public"
	case VisibilityPrivate:
		return "private"
	default:
		return "type-private"
	}
}
