package core

import (
	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
)

// PasswordChange is sent by a principal changing their own password.
type PasswordChange struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required"`
	Username    string `json:"-"` // checked for similarity
}

func (pc *PasswordChange) Validate(validate *validator.Validate) error {
	return validate.Struct(pc)
}

// PasswordReset is sent by an admin force-setting someone's password.
type PasswordReset struct {
	NewPassword string `json:"newPassword" validate:"required"`
	Username    string `json:"-"`
}

func (pr *PasswordReset) Validate(validate *validator.Validate) error {
	return validate.Struct(pr)
}

func HashPassword(pwd string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
}

func CheckPasswordHash(hash []byte, pwd string) error {
	return bcrypt.CompareHashAndPassword(hash, []byte(pwd))
}
