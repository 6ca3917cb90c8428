package user

import (
	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/core/common/validation"
)

type RegisterUserDTO struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	Role            Role   `json:"role"`
	Department      string `json:"department,omitempty"`
	Position        string `json:"position,omitempty"`
}

func (d RegisterUserDTO) Validate() error {
	validator := validation.NewValidator()
	validator.Field("name", d.Name).Required().MaxLength(255)
	validator.Field("email", d.Email).Required().Email()
	validator.Field("role", string(d.Role)).
		Required().
		OneOf(internal.ErrCodeInvalidValue, string(RoleEmployee), string(RoleSupervisor))
	if err := validator.Validate(); err != nil {
		return err
	}
	if err := validation.ValidatePassword("password", d.Password, d.ConfirmPassword); err != nil {
		return err
	}
	return nil
}

// NewUser builds the account described by the DTO under the given id.
func (d RegisterUserDTO) NewUser(id string) *User {
	return &User{
		ID:         id,
		Name:       d.Name,
		Email:      d.Email,
		Role:       d.Role,
		Department: d.Department,
		Position:   d.Position,
	}
}

// LoginDTO is the transport shape used to accept login requests.
type LoginDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (d LoginDTO) Validate() error {
	validator := validation.NewValidator()
	validator.Field("email", d.Email).Required()
	validator.Field("password", d.Password).Required()
	if err := validator.Validate(); err != nil {
		return err
	}
	return nil
}

type ChangePasswordDTO struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

func (d ChangePasswordDTO) Validate() error {
	validator := validation.NewValidator()
	validator.Field("currentPassword", d.CurrentPassword).Required()
	if err := validator.Validate(); err != nil {
		return err
	}
	if err := validation.ValidatePassword("newPassword", d.NewPassword, d.ConfirmPassword); err != nil {
		return err
	}
	return nil
}
