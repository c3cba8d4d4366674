package subject

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/tuitioncenter/core"
	"github.com/trezcool/tuitioncenter/core/access"
	"github.com/trezcool/tuitioncenter/core/staff"
)

var (
	// errors
	ErrNotFound   = core.NewNotFoundError("subject")
	ErrNameExists = core.NewConflictError("name", "a subject with this name already exists")
	errNotTeacher = core.NewValidationError(nil, core.FieldError{Field: "teacherId", Error: "teacherId must reference a teacher"})
)

type (
	Repository interface {
		CreateSubject(ctx context.Context, s Subject) (Subject, error)
		GetSubjectByID(ctx context.Context, id int) (Subject, error)
		GetSubjectByName(ctx context.Context, name string) (Subject, error)
		// QuerySubjectsByID returns the subjects matching ids; unknown ids are skipped.
		QuerySubjectsByID(ctx context.Context, ids ...int) ([]Subject, error)
		// QuerySubjects returns the subjects visible in scope ordered by id.
		QuerySubjects(ctx context.Context, scope access.Scope) ([]Subject, error)
		UpdateSubject(ctx context.Context, s Subject) (Subject, error)
	}

	Service struct {
		repo      Repository
		staffRepo staff.Repository
	}
)

func NewService(repo Repository, staffRepo staff.Repository) *Service {
	return &Service{repo: repo, staffRepo: staffRepo}
}

func (svc *Service) checkTeacher(ctx context.Context, teacherID *int) error {
	if teacherID == nil {
		return nil
	}
	t, err := svc.staffRepo.GetStaffByID(ctx, *teacherID)
	if err != nil {
		if core.IsNotFound(err) {
			return errNotTeacher
		}
		return errors.Wrap(err, "finding teacher")
	}
	if !t.IsTeacher() {
		return errNotTeacher
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, id access.Identity, ns NewSubject) (Subject, error) {
	if _, err := access.Authorize(id, access.Subjects, access.Create); err != nil {
		return Subject{}, err
	}
	if err := svc.checkTeacher(ctx, ns.TeacherID); err != nil {
		return Subject{}, err
	}
	now := time.Now().UTC()
	return svc.repo.CreateSubject(ctx, Subject{
		Name:      ns.Name,
		Price:     ns.Price,
		TeacherID: ns.TeacherID,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (svc *Service) Query(ctx context.Context, id access.Identity) ([]Subject, error) {
	scope, err := access.Authorize(id, access.Subjects, access.Read)
	if err != nil {
		return nil, err
	}
	return svc.repo.QuerySubjects(ctx, scope)
}

func (svc *Service) Update(ctx context.Context, id access.Identity, subjectID int, us UpdateSubject) (Subject, error) {
	if _, err := access.Authorize(id, access.Subjects, access.Update); err != nil {
		return Subject{}, err
	}
	s, err := svc.repo.GetSubjectByID(ctx, subjectID)
	if err != nil {
		return Subject{}, err
	}
	if err = svc.checkTeacher(ctx, us.TeacherID); err != nil {
		return Subject{}, err
	}
	if us.Name != nil {
		s.Name = *us.Name
	}
	if us.Price != nil {
		s.Price = *us.Price
	}
	switch {
	case us.ClearTeacher:
		s.TeacherID = nil
	case us.TeacherID != nil:
		s.TeacherID = us.TeacherID
	}
	s.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateSubject(ctx, s)
}

// Resolve returns the subjects for ids, failing if any of them does not exist.
func (svc *Service) Resolve(ctx context.Context, ids []int) ([]Subject, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	subjects, err := svc.repo.QuerySubjectsByID(ctx, ids...)
	if err != nil {
		return nil, errors.Wrap(err, "querying subjects")
	}
	found := make(map[int]bool, len(subjects))
	for _, s := range subjects {
		found[s.ID] = true
	}
	for _, id := range ids {
		if !found[id] {
			return nil, core.NewValidationError(nil, core.FieldError{Field: "subjectIds", Error: "unknown subject id"})
		}
	}
	return subjects, nil
}

// EnsureByName creates the subject unless one with the same name exists (seed).
func (svc *Service) EnsureByName(ctx context.Context, ns NewSubject) (Subject, bool, error) {
	s, err := svc.repo.GetSubjectByName(ctx, ns.Name)
	if err == nil {
		return s, false, nil
	}
	if !core.IsNotFound(err) {
		return Subject{}, false, errors.Wrap(err, "finding subject")
	}
	now := time.Now().UTC()
	s, err = svc.repo.CreateSubject(ctx, Subject{
		Name:      ns.Name,
		Price:     ns.Price,
		TeacherID: ns.TeacherID,
		CreatedAt: now,
		UpdatedAt: now,
	})
	return s, err == nil, err
}
