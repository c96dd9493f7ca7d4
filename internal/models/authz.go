package models

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

type RoleSet map[Role]struct{}

func NewRoleSet(roles ...Role) RoleSet {
	set := make(RoleSet, len(roles))
	for _, role := range roles {
		set[role] = struct{}{}
	}
	return set
}

// HasRole reports whether role is a member of allowed.
func HasRole(role Role, allowed RoleSet) bool {
	_, ok := allowed[role]
	return ok
}

// CanMutate is the owner-or-admin rule guarding post update and delete.
func CanMutate(actor *User, ownerID string) bool {
	if actor == nil {
		return false
	}
	return actor.UserID == ownerID || actor.Role == RoleAdmin
}

// CanRemoveComment allows the comment's author or the parent post's author.
func CanRemoveComment(actor *User, commentAuthorID, postAuthorID string) bool {
	if actor == nil {
		return false
	}
	return actor.UserID == commentAuthorID || actor.UserID == postAuthorID
}
