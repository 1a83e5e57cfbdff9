package users

import "github.com/mcdev12/icetime/go/internal/models"

// CreateUserRequest represents the data needed to create a new member
type CreateUserRequest struct {
	Username  string  `json:"username" validate:"required,max=64"`
	Email     string  `json:"email" validate:"required,email"`
	FirstName string  `json:"first_name" validate:"max=100"`
	LastName  string  `json:"last_name" validate:"max=100"`
	Nickname  *string `json:"nickname,omitempty" validate:"omitempty,max=64"`
	IsAdmin   bool    `json:"is_admin"`
}

// UpdateProfileRequest carries the display fields a member may change. Nil fields
// are left as they are.
type UpdateProfileRequest struct {
	FirstName     *string `json:"first_name,omitempty" validate:"omitempty,max=100"`
	LastName      *string `json:"last_name,omitempty" validate:"omitempty,max=100"`
	Nickname      *string `json:"nickname,omitempty" validate:"omitempty,max=64"`
	ClearNickname bool    `json:"clear_nickname"`
}

type UserIDRequest struct {
	UserID string `json:"user_id" validate:"required,uuid"`
}

type UserResponse struct {
	User *models.User `json:"user"`
}

type Empty struct{}
