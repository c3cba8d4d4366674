package echoapi

import (
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/trezcool/tuitioncenter/core"
	"github.com/trezcool/tuitioncenter/core/access"
	"github.com/trezcool/tuitioncenter/core/staff"
	"github.com/trezcool/tuitioncenter/core/student"
)

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (data *LoginRequest) Validate(validate *validator.Validate) error {
	data.Username = core.CleanString(data.Username, true /* lower */)
	return validate.Struct(data)
}

type LoginResponse struct {
	Token string      `json:"token"`
	User  interface{} `json:"user"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type PasswordResetResponse struct {
	Message     string `json:"message"`
	Username    string `json:"username"`
	NewPassword string `json:"newPassword"`
}

type RegistrationResponse struct {
	Student     student.Student      `json:"student"`
	Credentials *student.Credentials `json:"credentials"`
}

// StaffUser is the user object returned at staff login.
type StaffUser struct {
	ID       int         `json:"id"`
	Username string      `json:"username"`
	Role     access.Role `json:"role"`
	FullName string      `json:"fullName"`
}

func newStaffUser(s staff.Staff) StaffUser {
	id := s.Identity()
	return StaffUser{ID: id.ID, Username: id.Username, Role: id.Role, FullName: id.FullName}
}

// StudentUser is the user object returned at student login.
type StudentUser struct {
	StaffUser
	Grade string  `json:"grade"`
	Phone *string `json:"phone"`
}

func newStudentUser(s student.Student) StudentUser {
	id := s.Identity()
	return StudentUser{
		StaffUser: StaffUser{ID: id.ID, Username: id.Username, Role: id.Role, FullName: id.FullName},
		Grade:     s.Grade,
		Phone:     s.Phone,
	}
}

func paramID(ctx echo.Context) (int, error) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil || id <= 0 {
		return 0, errHttpNotFound
	}
	return id, nil
}

func requiredFile(field string) error {
	return core.NewValidationError(nil, core.FieldError{Field: field, Error: "this field is required"})
}
