package user

import (
	userDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/user"
)

type Role string

const (
	RoleEmployee   Role = "employee"
	RoleSupervisor Role = "supervisor"
)

// User is the wire and domain shape of an account. Password material never leaves the backend.
type User struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       Role   `json:"role"`
	Department string `json:"department,omitempty"`
	Position   string `json:"position,omitempty"`
}

func (u *User) IsSupervisor() bool {
	return u.Role == RoleSupervisor
}

func (u *User) Clone() *User {
	c := *u
	return &c
}

// AuthResult is what a successful login yields.
type AuthResult struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

// TokenIssuer mints the bearer credential handed out on login.
type TokenIssuer interface {
	IssueToken(u *User) (string, error)
}

func ToDataModel(u *User, passwordHash string) *userDatamodel.User {
	return &userDatamodel.User{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		PasswordHash: passwordHash,
		Role:         string(u.Role),
		Department:   u.Department,
		Position:     u.Position,
	}
}

func FromDataModel(m *userDatamodel.User) *User {
	return &User{
		ID:         m.ID,
		Name:       m.Name,
		Email:      m.Email,
		Role:       Role(m.Role),
		Department: m.Department,
		Position:   m.Position,
	}
}
