package model

// Visibility of a project or a group.
type Visibility int

const (
	VisibilityPrivate  Visibility = 0
	VisibilityInternal Visibility = 10
	VisibilityPublic   Visibility = 20
)

func (v Visibility) String() string {
	switch v {
	case VisibilityPrivate:
		return "private"
	case VisibilityInternal:
		return "internal"
	case VisibilityPublic:
		return "public"
	default:
		return "unknown"
	}
}

// ResolveVisibility returns the visibility of the imported project:
// the more restrictive of the exported and the destination group visibility.
// Internal visibility is downgraded to private if it is globally restricted.
func ResolveVisibility(exported, destinationGroup Visibility, internalRestricted bool) Visibility {
	visibility := exported
	if destinationGroup < visibility {
		visibility = destinationGroup
	}
	if visibility == VisibilityInternal && internalRestricted {
		visibility = VisibilityPrivate
	}
	return visibility
}
