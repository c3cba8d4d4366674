package attendance

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/tuitioncenter/core"
	"github.com/trezcool/tuitioncenter/core/access"
	"github.com/trezcool/tuitioncenter/core/student"
	"github.com/trezcool/tuitioncenter/core/subject"
)

var (
	errUnknownStudent = core.NewValidationError(nil, core.FieldError{Field: "studentId", Error: "unknown student"})
	errUnknownSubject = core.NewValidationError(nil, core.FieldError{Field: "subjectId", Error: "unknown subject"})
)

type (
	Repository interface {
		CreateRecord(ctx context.Context, r Record) (Record, error)
		// QueryRecords returns the records matching filter within scope,
		// newest date first, with their student and subject.
		QueryRecords(ctx context.Context, filter Filter, scope access.Scope) ([]Record, error)
	}

	Service struct {
		repo        Repository
		studentRepo student.Repository
		subjectRepo subject.Repository
	}
)

func NewService(repo Repository, studentRepo student.Repository, subjectRepo subject.Repository) *Service {
	return &Service{repo: repo, studentRepo: studentRepo, subjectRepo: subjectRepo}
}

// Mark records attendance. Teachers may only mark attendance for subjects they own.
// Several records for the same student, subject and day are allowed.
func (svc *Service) Mark(ctx context.Context, id access.Identity, nr NewRecord) (Record, error) {
	scope, err := access.Authorize(id, access.Attendance, access.Create)
	if err != nil {
		return Record{}, err
	}

	sub, err := svc.subjectRepo.GetSubjectByID(ctx, nr.SubjectID)
	if err != nil {
		if core.IsNotFound(err) {
			return Record{}, errUnknownSubject
		}
		return Record{}, errors.Wrap(err, "finding subject")
	}
	if scope.IsTeacher() && (sub.TeacherID == nil || *sub.TeacherID != scope.TeacherID) {
		return Record{}, core.ErrForbidden
	}

	st, err := svc.studentRepo.GetStudentByID(ctx, nr.StudentID, access.Unrestricted())
	if err != nil {
		if core.IsNotFound(err) {
			return Record{}, errUnknownStudent
		}
		return Record{}, errors.Wrap(err, "finding student")
	}

	r, err := svc.repo.CreateRecord(ctx, Record{
		StudentID: st.ID,
		SubjectID: sub.ID,
		Date:      nr.Date,
		Status:    nr.Status,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return Record{}, errors.Wrap(err, "creating record")
	}
	return r, nil
}

func (svc *Service) Query(ctx context.Context, id access.Identity, filter Filter) ([]Record, error) {
	scope, err := access.Authorize(id, access.Attendance, access.Read)
	if err != nil {
		return nil, err
	}
	return svc.repo.QueryRecords(ctx, filter, scope)
}

// History returns the records of one student. A student can only read their own.
func (svc *Service) History(ctx context.Context, id access.Identity, studentID int) ([]Record, error) {
	scope, err := access.Authorize(id, access.Attendance, access.Read)
	if err != nil {
		return nil, err
	}
	if scope.IsStudent() && scope.StudentID != studentID {
		return nil, core.ErrForbidden
	}
	return svc.repo.QueryRecords(ctx, Filter{StudentID: studentID}, scope)
}

// StudentRecords returns every record of a student, unscoped (derived views).
func (svc *Service) StudentRecords(ctx context.Context, studentID int) ([]Record, error) {
	return svc.repo.QueryRecords(ctx, Filter{StudentID: studentID}, access.Unrestricted())
}
