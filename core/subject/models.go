package subject

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/tuitioncenter/core"
)

// Subject is a course with a monthly price (currency units).
type Subject struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Price     int       `json:"price"`
	TeacherID *int      `json:"teacherId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type NewSubject struct {
	Name      string `json:"name" validate:"required,max=255"`
	Price     int    `json:"price" validate:"gte=0"`
	TeacherID *int   `json:"teacherId" validate:"omitempty,gt=0"`
}

func (ns *NewSubject) Validate(validate *validator.Validate) error {
	ns.Name = core.CleanString(ns.Name)
	return validate.Struct(ns)
}

// UpdateSubject holds the editable fields; nil fields are left untouched.
// ClearTeacher unassigns the subject's teacher.
type UpdateSubject struct {
	Name         *string `json:"name" validate:"omitempty,max=255"`
	Price        *int    `json:"price" validate:"omitempty,gte=0"`
	TeacherID    *int    `json:"teacherId" validate:"omitempty,gt=0"`
	ClearTeacher bool    `json:"clearTeacher"`
}

func (us *UpdateSubject) Validate(validate *validator.Validate) error {
	if us.Name != nil {
		name := core.CleanString(*us.Name)
		if name == "" {
			return core.NewValidationError(nil, core.FieldError{Field: "name", Error: "this field may not be blank"})
		}
		us.Name = &name
	}
	if us.ClearTeacher && us.TeacherID != nil {
		return core.NewValidationError(nil, core.FieldError{Field: "clearTeacher", Error: "cannot be combined with teacherId"})
	}
	return validate.Struct(us)
}
