package attendance

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/tuitioncenter/core"
	"github.com/trezcool/tuitioncenter/core/student"
	"github.com/trezcool/tuitioncenter/core/subject"
)

type Status string

const (
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
	StatusLate    Status = "late"
)

// Record is one attendance mark. Records are never updated.
type Record struct {
	ID        int              `json:"id"`
	StudentID int              `json:"studentId"`
	SubjectID int              `json:"subjectId"`
	Date      core.Date        `json:"date"`
	Status    Status           `json:"status"`
	CreatedAt time.Time        `json:"createdAt"`
	Student   *student.Student `json:"student,omitempty"`
	Subject   *subject.Subject `json:"subject,omitempty"`
}

type NewRecord struct {
	StudentID int       `json:"studentId" validate:"required,gt=0"`
	SubjectID int       `json:"subjectId" validate:"required,gt=0"`
	Date      core.Date `json:"date"`
	Status    Status    `json:"status" validate:"omitempty,oneof=present absent late"`
}

func (nr *NewRecord) Validate(validate *validator.Validate) error {
	if nr.Status == "" {
		nr.Status = StatusPresent
	}
	if err := validate.Struct(nr); err != nil {
		return err
	}
	if nr.Date.IsZero() {
		return core.NewValidationError(nil, core.FieldError{Field: "date", Error: "this field is required"})
	}
	return nil
}

// Filter narrows a listing; zero fields are ignored.
type Filter struct {
	Date      core.Date `query:"date"`
	SubjectID int       `query:"subjectId"`
	StudentID int       `query:"studentId"`
}

// Summary is the attendance of one student: present records over all records.
type Summary struct {
	Present int
	Total   int
}

func (s Summary) String() string {
	return fmt.Sprintf("%d/%d", s.Present, s.Total)
}

// Summarize counts present records. Late and absent count towards the total only.
func Summarize(records []Record) Summary {
	var sum Summary
	for _, r := range records {
		sum.Total++
		if r.Status == StatusPresent {
			sum.Present++
		}
	}
	return sum
}
