package student

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/tuitioncenter/core"
	"github.com/trezcool/tuitioncenter/core/access"
	"github.com/trezcool/tuitioncenter/core/subject"
)

var (
	// errors
	ErrNotFound        = core.NewNotFoundError("student")
	ErrUsernameExists  = core.NewConflictError("username", "a student with this username already exists")
	ErrAccountDisabled = errors.New("account disabled")
	ErrNoCredentials   = errors.New("student has no credentials")
	ErrWrongPassword   = core.NewValidationError(nil, core.FieldError{Field: "oldPassword", Error: "current password is incorrect"})
)

type (
	Repository interface {
		// CreateStudent inserts the student and its enrollments atomically.
		CreateStudent(ctx context.Context, s Student, subjectIDs []int) (Student, error)
		// GetStudentByID returns the student if visible in scope, with its subjects
		// (only the teacher's own subjects for a teacher scope).
		GetStudentByID(ctx context.Context, id int, scope access.Scope) (Student, error)
		GetStudentByUsername(ctx context.Context, username string) (Student, error)
		// QueryStudents returns the students visible in scope ordered by id.
		QueryStudents(ctx context.Context, scope access.Scope) ([]Student, error)
		// UpdateStudent saves the student's own columns; enrollments are left untouched.
		UpdateStudent(ctx context.Context, s Student) (Student, error)
	}

	SubjectResolver interface {
		Resolve(ctx context.Context, ids []int) ([]subject.Subject, error)
	}

	Service struct {
		repo     Repository
		subjects SubjectResolver
	}
)

func NewService(repo Repository, subjects SubjectResolver) *Service {
	return &Service{repo: repo, subjects: subjects}
}

// Register creates a student enrolled in the given subjects.
// When a phone is given, login credentials are derived from it and returned in plaintext, once.
func (svc *Service) Register(ctx context.Context, id access.Identity, ns NewStudent) (Student, *Credentials, error) {
	if _, err := access.Authorize(id, access.Students, access.Create); err != nil {
		return Student{}, nil, err
	}
	subjects, err := svc.subjects.Resolve(ctx, ns.SubjectIDs)
	if err != nil {
		return Student{}, nil, err
	}

	now := time.Now().UTC()
	s := Student{
		FullName:  ns.FullName,
		Grade:     ns.Grade,
		Phone:     ns.Phone,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	var creds *Credentials
	if ns.Phone != nil {
		if c, ok := DeriveCredentials(*ns.Phone); ok {
			if err = s.SetPassword(c.Password); err != nil {
				return Student{}, nil, errors.Wrap(err, "hashing password")
			}
			s.Username = &c.Username
			creds = &c
		}
	}

	ids := make([]int, 0, len(subjects))
	for _, sub := range subjects {
		ids = append(ids, sub.ID)
	}
	s, err = svc.repo.CreateStudent(ctx, s, ids)
	if err != nil {
		return Student{}, nil, err
	}
	return s, creds, nil
}

// Authenticate returns the student matching the credentials.
// Unknown usernames and wrong passwords both return ErrNotFound;
// inactive students get ErrAccountDisabled once the password matched, so a
// disabled account with a wrong password reads as bad credentials rather
// than as disabled (the disabled state is not revealed without the password).
func (svc *Service) Authenticate(ctx context.Context, uname, pwd string) (Student, error) {
	s, err := svc.repo.GetStudentByUsername(ctx, core.CleanString(uname, true /* lower */))
	if err != nil {
		return Student{}, err
	}
	if err = s.CheckPassword(pwd); err != nil {
		return Student{}, ErrNotFound
	}
	if !s.IsActive {
		return Student{}, ErrAccountDisabled
	}
	return s, nil
}

func (svc *Service) Query(ctx context.Context, id access.Identity) ([]Student, error) {
	scope, err := access.Authorize(id, access.Students, access.Read)
	if err != nil {
		return nil, err
	}
	return svc.repo.QueryStudents(ctx, scope)
}

func (svc *Service) Get(ctx context.Context, id access.Identity, studentID int) (Student, error) {
	scope, err := access.Authorize(id, access.Students, access.Read)
	if err != nil {
		return Student{}, err
	}
	return svc.repo.GetStudentByID(ctx, studentID, scope)
}

func (svc *Service) Update(ctx context.Context, id access.Identity, studentID int, us UpdateStudent) (Student, error) {
	scope, err := access.Authorize(id, access.Students, access.Update)
	if err != nil {
		return Student{}, err
	}
	s, err := svc.repo.GetStudentByID(ctx, studentID, scope)
	if err != nil {
		return Student{}, err
	}
	if us.FullName != nil {
		s.FullName = *us.FullName
	}
	if us.Grade != nil {
		s.Grade = *us.Grade
	}
	if us.IsActive != nil {
		s.IsActive = *us.IsActive
	}
	s.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateStudent(ctx, s)
}

// Lookup returns any student by id, for existence checks of other services.
func (svc *Service) Lookup(ctx context.Context, studentID int) (Student, error) {
	return svc.repo.GetStudentByID(ctx, studentID, access.Unrestricted())
}

func (svc *Service) GetProfile(ctx context.Context, id access.Identity) (Student, error) {
	if _, err := access.Authorize(id, access.Profile, access.Read); err != nil {
		return Student{}, err
	}
	return svc.repo.GetStudentByID(ctx, id.ID, access.Scope{StudentID: id.ID})
}

func (svc *Service) UpdateProfile(ctx context.Context, orig Student, up UpdateProfile) (Student, error) {
	if _, err := access.Authorize(orig.Identity(), access.Profile, access.Update); err != nil {
		return Student{}, err
	}
	orig.FullName = up.FullName
	if up.Phone != nil {
		orig.Phone = up.Phone
	}
	orig.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateStudent(ctx, orig)
}

func (svc *Service) ChangePassword(ctx context.Context, orig Student, pc core.PasswordChange) error {
	if _, err := access.Authorize(orig.Identity(), access.Profile, access.Update); err != nil {
		return err
	}
	if err := orig.CheckPassword(pc.OldPassword); err != nil {
		return ErrWrongPassword
	}
	if err := orig.SetPassword(pc.NewPassword); err != nil {
		return errors.Wrap(err, "hashing password")
	}
	orig.UpdatedAt = time.Now().UTC()
	_, err := svc.repo.UpdateStudent(ctx, orig)
	return err
}
