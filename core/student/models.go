package student

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/tuitioncenter/core"
	"github.com/trezcool/tuitioncenter/core/access"
	"github.com/trezcool/tuitioncenter/core/subject"
)

type Student struct {
	ID           int               `json:"id"`
	FullName     string            `json:"fullName"`
	Grade        string            `json:"grade"`
	Phone        *string           `json:"phone"`
	Username     *string           `json:"username"`
	IsActive     bool              `json:"isActive"`
	PasswordHash []byte            `json:"-"`
	Subjects     []subject.Subject `json:"subjects"`
	CreatedAt    time.Time         `json:"createdAt"`
	UpdatedAt    time.Time         `json:"updatedAt"`
}

var _ access.Principal = Student{}

func (s Student) Identity() access.Identity {
	var uname string
	if s.Username != nil {
		uname = *s.Username
	}
	return access.Identity{
		ID:       s.ID,
		Username: uname,
		Role:     access.RoleStudent,
		FullName: s.FullName,
	}
}

func (s *Student) SetPassword(pwd string) error {
	hash, err := core.HashPassword(pwd)
	if err != nil {
		return err
	}
	s.PasswordHash = hash
	return nil
}

func (s *Student) CheckPassword(pwd string) error {
	if len(s.PasswordHash) == 0 {
		return ErrNoCredentials
	}
	return core.CheckPasswordHash(s.PasswordHash, pwd)
}

// NewStudent is a registration request.
type NewStudent struct {
	FullName   string  `json:"fullName" validate:"required,max=255"`
	Grade      string  `json:"grade" validate:"required,max=50"`
	Phone      *string `json:"phone" validate:"omitempty,uzphone"`
	SubjectIDs []int   `json:"subjectIds" validate:"omitempty,dive,gt=0"`
}

func (ns *NewStudent) Validate(validate *validator.Validate) error {
	ns.FullName = core.CleanString(ns.FullName)
	ns.Grade = core.CleanString(ns.Grade)
	ns.Phone = core.CleanStringPtr(ns.Phone)
	return validate.Struct(ns)
}

// UpdateStudent is the admin edit; nil fields are left untouched.
type UpdateStudent struct {
	FullName *string `json:"fullName" validate:"omitempty,max=255"`
	Grade    *string `json:"grade" validate:"omitempty,max=50"`
	IsActive *bool   `json:"isActive"`
}

func (us *UpdateStudent) Validate(validate *validator.Validate) error {
	us.FullName = core.CleanStringPtr(us.FullName)
	us.Grade = core.CleanStringPtr(us.Grade)
	return validate.Struct(us)
}

// UpdateProfile is what a student may change on their own profile.
// The phone is contact data only; it does not re-derive credentials.
type UpdateProfile struct {
	FullName string  `json:"fullName" validate:"max=255"`
	Phone    *string `json:"phone" validate:"omitempty,uzphone"`
}

func (up *UpdateProfile) Validate(orig Student, validate *validator.Validate) error {
	if name := core.CleanString(up.FullName); name != "" {
		up.FullName = name
	} else {
		up.FullName = orig.FullName
	}
	up.Phone = core.CleanStringPtr(up.Phone)
	return validate.Struct(up)
}

// Credentials are shown once, at registration.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
