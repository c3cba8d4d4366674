package staff

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/tuitioncenter/core"
	"github.com/trezcool/tuitioncenter/core/access"
)

// Roles
const (
	RoleAdmin   = string(access.RoleAdmin)
	RoleTeacher = string(access.RoleTeacher)
)

var Roles = []string{RoleAdmin, RoleTeacher}

// Staff is an admin or a teacher.
type Staff struct {
	ID             int       `json:"id"`
	Username       string    `json:"username"`
	Role           string    `json:"role"`
	FullName       string    `json:"fullName"`
	ProfilePicture *string   `json:"profilePicture"`
	PasswordHash   []byte    `json:"-"`
	CreatedAt      time.Time `json:"createdAt"` // UTC
	UpdatedAt      time.Time `json:"updatedAt"` // UTC
}

var _ access.Principal = Staff{}

func (s Staff) Identity() access.Identity {
	return access.Identity{
		ID:       s.ID,
		Username: s.Username,
		Role:     access.Role(s.Role),
		FullName: s.FullName,
	}
}

func (s *Staff) SetPassword(pwd string) error {
	hash, err := core.HashPassword(pwd)
	if err != nil {
		return err
	}
	s.PasswordHash = hash
	return nil
}

func (s *Staff) CheckPassword(pwd string) error {
	return core.CheckPasswordHash(s.PasswordHash, pwd)
}

func (s Staff) IsAdmin() bool   { return s.Role == RoleAdmin }
func (s Staff) IsTeacher() bool { return s.Role == RoleTeacher }

// NewStaff contains information needed to create a staff member (seed / admin CLI).
type NewStaff struct {
	Username string `json:"username" validate:"required,min=3,alphanum_"`
	FullName string `json:"fullName" validate:"required"`
	Role     string `json:"role" validate:"required,oneof=admin teacher"`
	Password string `json:"password" validate:"required,min=6"`
}

func (ns *NewStaff) Validate(validate *validator.Validate) error {
	ns.Username = core.CleanString(ns.Username, true /* lower */)
	ns.FullName = core.CleanString(ns.FullName)
	return validate.Struct(ns)
}

// UpdateProfile defines what a staff member may change on their own profile.
type UpdateProfile struct {
	FullName string `json:"fullName"`
	Username string `json:"username" validate:"omitempty,min=3,alphanum_"`
}

func (up *UpdateProfile) Validate(orig Staff, validate *validator.Validate) error {
	if name := core.CleanString(up.FullName); name != "" {
		up.FullName = name
	} else {
		up.FullName = orig.FullName
	}
	if uname := core.CleanString(up.Username, true /* lower */); uname != "" {
		up.Username = uname
	} else {
		up.Username = orig.Username
	}
	return validate.Struct(up)
}
