package policy

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"inkwell/internal/apperror"
)

func TestAuthorize(t *testing.T) {
	admin := Principal{ID: "admin-1", IsAdmin: true}
	user := Principal{ID: "user-1"}
	other := Principal{ID: "user-2"}
	anon := Principal{}

	tests := []struct {
		name   string
		p      Principal
		action Action
		owner  string
		want   Decision
	}{
		{"user updates self", user, UserUpdate, "user-1", Allow},
		{"user updates someone else", user, UserUpdate, "user-2", Deny},
		{"admin cannot update someone else", admin, UserUpdate, "user-1", Deny},
		{"user deletes self", user, UserDelete, "user-1", Allow},
		{"admin deletes anyone", admin, UserDelete, "user-1", Allow},
		{"user deletes someone else", other, UserDelete, "user-1", Deny},
		{"admin lists users", admin, UserList, "", Allow},
		{"user lists users", user, UserList, "", Deny},
		{"admin creates post", admin, PostCreate, "", Allow},
		{"user creates post", user, PostCreate, "", Deny},
		{"admin author updates post", admin, PostUpdate, "admin-1", Allow},
		{"admin non-author updates post", admin, PostUpdate, "user-1", Deny},
		{"non-admin author updates post", user, PostUpdate, "user-1", Deny},
		{"stranger updates post", other, PostUpdate, "user-1", Deny},
		{"admin author deletes post", admin, PostDelete, "admin-1", Allow},
		{"non-admin author deletes post", user, PostDelete, "user-1", Deny},
		{"author edits comment", user, CommentEdit, "user-1", Allow},
		{"admin edits others comment", admin, CommentEdit, "user-1", Deny},
		{"author deletes comment", user, CommentDelete, "user-1", Allow},
		{"admin deletes others comment", admin, CommentDelete, "user-1", Deny},
		{"admin lists comments", admin, CommentList, "", Allow},
		{"user lists comments", user, CommentList, "", Deny},
		{"anonymous never allowed", anon, CommentEdit, "", Deny},
		{"unknown action denied", admin, Action("post.publish"), "admin-1", Deny},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Authorize(tt.p, tt.action, Resource{OwnerID: tt.owner})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCheckReturnsForbidden(t *testing.T) {
	err := Check(Principal{ID: "user-1"}, PostUpdate, Resource{OwnerID: "user-1"})
	assert.True(t, errors.Is(err, apperror.ErrForbidden))
	assert.Equal(t, "You are not allowed to update this post", err.Error())

	assert.NoError(t, Check(Principal{ID: "a", IsAdmin: true}, PostUpdate, Resource{OwnerID: "a"}))
}
