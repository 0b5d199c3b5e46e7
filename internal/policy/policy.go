// Package policy decides who may act on which blog resource. Decisions are
// pure: no store access, no logging, no side effects.
package policy

import "inkwell/internal/apperror"

// Principal is the caller of a request. The zero value is the anonymous
// caller.
type Principal struct {
	ID      string
	IsAdmin bool
}

// Anonymous reports whether no identity was resolved for the request.
func (p Principal) Anonymous() bool {
	return p.ID == ""
}

// Action names a guarded operation.
type Action string

const (
	UserUpdate    Action = "user.update"
	UserDelete    Action = "user.delete"
	UserList      Action = "user.list"
	PostCreate    Action = "post.create"
	PostUpdate    Action = "post.update"
	PostDelete    Action = "post.delete"
	CommentEdit   Action = "comment.edit"
	CommentDelete Action = "comment.delete"
	CommentList   Action = "comment.list"
)

// Resource is what an action targets. OwnerID is the user id for users and
// the author id for posts and comments; collection actions leave it empty.
type Resource struct {
	OwnerID string
}

// Decision is the outcome of Authorize.
type Decision bool

const (
	Deny  Decision = false
	Allow Decision = true
)

var denyMessages = map[Action]string{
	UserUpdate:    "You are not allowed to update this user",
	UserDelete:    "You are not allowed to delete this user",
	UserList:      "You are not allowed to see all users",
	PostCreate:    "You are not allowed to create a post",
	PostUpdate:    "You are not allowed to update this post",
	PostDelete:    "You are not allowed to delete this post",
	CommentEdit:   "You are not allowed to edit this comment",
	CommentDelete: "You are not allowed to delete this comment",
	CommentList:   "You are not allowed to get all comments",
}

// Authorize evaluates the rule for action. There is no implicit admin
// override: admins win only where a rule names them.
func Authorize(p Principal, action Action, r Resource) Decision {
	if p.Anonymous() {
		return Deny
	}

	owns := r.OwnerID != "" && p.ID == r.OwnerID

	switch action {
	case UserUpdate:
		return Decision(owns)
	case UserDelete:
		return Decision(p.IsAdmin || owns)
	case UserList, PostCreate, CommentList:
		return Decision(p.IsAdmin)
	case PostUpdate, PostDelete:
		// Both conditions: an admin who did not write the post is refused, and
		// so is a non-admin author.
		return Decision(p.IsAdmin && owns)
	case CommentEdit, CommentDelete:
		return Decision(owns)
	default:
		return Deny
	}
}

// Check is Authorize as an error: nil on Allow, a Forbidden AppError on Deny.
func Check(p Principal, action Action, r Resource) error {
	if Authorize(p, action, r) == Allow {
		return nil
	}
	msg, ok := denyMessages[action]
	if !ok {
		msg = "You are not allowed to perform this action"
	}
	return apperror.Forbidden(msg)
}
