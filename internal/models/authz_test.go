package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var (
	owner    = &User{UserID: "owner", Role: RoleUser}
	other    = &User{UserID: "other", Role: RoleUser}
	superior = &User{UserID: "boss", Role: RoleAdmin}
)

func TestCanMutate(t *testing.T) {
	assert.True(t, CanMutate(owner, "owner"))
	assert.True(t, CanMutate(superior, "owner"))
	assert.False(t, CanMutate(other, "owner"))
	assert.False(t, CanMutate(nil, "owner"))
}

func TestCanRemoveComment(t *testing.T) {
	tests := []struct {
		name          string
		actor         *User
		commentAuthor string
		postAuthor    string
		want          bool
	}{
		{name: "comment author", actor: other, commentAuthor: "other", postAuthor: "owner", want: true},
		{name: "post author", actor: owner, commentAuthor: "other", postAuthor: "owner", want: true},
		{name: "admin is not enough", actor: superior, commentAuthor: "other", postAuthor: "owner", want: false},
		{name: "anonymous", actor: nil, commentAuthor: "other", postAuthor: "owner", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanRemoveComment(tt.actor, tt.commentAuthor, tt.postAuthor))
		})
	}
}

func TestHasRole(t *testing.T) {
	admins := NewRoleSet(RoleAdmin)

	assert.True(t, HasRole(RoleAdmin, admins))
	assert.False(t, HasRole(RoleUser, admins))
	assert.False(t, HasRole(RoleUser, NewRoleSet()))
	assert.True(t, RoleUser.Valid())
	assert.False(t, Role("root").Valid())
}
