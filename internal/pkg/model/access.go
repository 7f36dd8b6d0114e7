package model

// AccessLevel of a member or a protected-ref grant.
type AccessLevel int

const (
	NoAccess   AccessLevel = 0
	Guest      AccessLevel = 10
	Reporter   AccessLevel = 20
	Developer  AccessLevel = 30
	Maintainer AccessLevel = 40
	Owner      AccessLevel = 50
)

func (l AccessLevel) Known() bool {
	switch l {
	case NoAccess, Guest, Reporter, Developer, Maintainer, Owner:
		return true
	}
	return false
}

func (l AccessLevel) String() string {
	switch l {
	case NoAccess:
		return "no access"
	case Guest:
		return "guest"
	case Reporter:
		return "reporter"
	case Developer:
		return "developer"
	case Maintainer:
		return "maintainer"
	case Owner:
		return "owner"
	default:
		return "unknown"
	}
}
