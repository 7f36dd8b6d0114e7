package model

// MemberMap resolves an exported member's natural identity
// (username or email) to a destination user id.
// It is provided by the caller, see the restore package.
type MemberMap interface {
	UserID(username, email string) (userID int64, found bool)
}

// StaticMemberMap is a MemberMap backed by a plain map,
// keyed by username and/or email.
type StaticMemberMap map[string]int64

func (m StaticMemberMap) UserID(username, email string) (int64, bool) {
	if id, found := m[username]; found && username != "" {
		return id, true
	}
	if id, found := m[email]; found && email != "" {
		return id, true
	}
	return 0, false
}

// UserMap maps source-tenant user ids to destination user ids.
// It is derived from the exported members relation and a MemberMap.
type UserMap map[int64]int64

func (m UserMap) Map(sourceID int64) (int64, bool) {
	id, found := m[sourceID]
	return id, found
}
