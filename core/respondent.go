package core

import "strings"

// Roles
const (
	RoleAdmin   = "admin:"
	RoleTeacher = "teacher:"
	RoleStudent = "student:"
)

// Respondent is an identity already resolved by the authentication layer.
// It is handed to every operation that acts on behalf of someone; nothing in core looks it up.
type Respondent struct {
	ID       string   `json:"id"`
	Username string   `json:"username,omitempty"`
	Email    string   `json:"email,omitempty"`
	Roles    []string `json:"roles,omitempty"`
}

func (r Respondent) hasRolePrefix(prefix string) bool {
	for _, role := range r.Roles {
		if strings.HasPrefix(role, prefix) {
			return true
		}
	}
	return false
}

func (r Respondent) IsAdmin() bool { return r.hasRolePrefix(RoleAdmin) }

// IsAuthor reports whether r may author quizzes and folders.
func (r Respondent) IsAuthor() bool { return r.IsAdmin() || r.hasRolePrefix(RoleTeacher) }
