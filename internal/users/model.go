package users

import "time"

const (
	RoleAnalyst  = "analis"
	RoleApprover = "approver"
	RoleAdmin    = "admin"
)

type User struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	FullName   string    `json:"fullName"`
	GivenName  string    `json:"givenName"`
	FamilyName string    `json:"familyName"`
	PictureURL string    `json:"pictureUrl"`
	Role       string    `json:"role"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// ValidRole reports whether role is one of the recognized account roles.
func ValidRole(role string) bool {
	switch role {
	case RoleAnalyst, RoleApprover, RoleAdmin:
		return true
	}
	return false
}
