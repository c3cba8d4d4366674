package staff

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/tuitioncenter/core"
	"github.com/trezcool/tuitioncenter/core/access"
)

var (
	// errors
	ErrNotFound       = core.NewNotFoundError("user")
	ErrUsernameExists = core.NewConflictError("username", "username already taken")
	ErrNotTeacher     = core.NewValidationError(errors.New("user is not a teacher"))
	ErrWrongPassword  = core.NewValidationError(nil, core.FieldError{Field: "oldPassword", Error: "current password is incorrect"})
)

type (
	Repository interface {
		CreateStaff(ctx context.Context, s Staff) (Staff, error)
		GetStaffByID(ctx context.Context, id int) (Staff, error)
		GetStaffByUsername(ctx context.Context, username string) (Staff, error)
		// QueryStaffByRole returns staff members with the given role ordered by full name.
		QueryStaffByRole(ctx context.Context, role string) ([]Staff, error)
		UpdateStaff(ctx context.Context, s Staff) (Staff, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, ns NewStaff) (Staff, error) {
	now := time.Now().UTC()
	s := Staff{
		Username:  ns.Username,
		Role:      ns.Role,
		FullName:  ns.FullName,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.SetPassword(ns.Password); err != nil {
		return Staff{}, errors.Wrap(err, "hashing password")
	}
	return svc.repo.CreateStaff(ctx, s)
}

func (svc *Service) GetByID(ctx context.Context, id int) (Staff, error) {
	return svc.repo.GetStaffByID(ctx, id)
}

func (svc *Service) GetByUsername(ctx context.Context, uname string) (Staff, error) {
	return svc.repo.GetStaffByUsername(ctx, core.CleanString(uname, true /* lower */))
}

// Authenticate returns the staff member matching the credentials.
// Unknown usernames and wrong passwords both return ErrNotFound.
func (svc *Service) Authenticate(ctx context.Context, uname, pwd string) (Staff, error) {
	s, err := svc.GetByUsername(ctx, uname)
	if err != nil {
		return Staff{}, err
	}
	if err = s.CheckPassword(pwd); err != nil {
		return Staff{}, ErrNotFound
	}
	return s, nil
}

func (svc *Service) QueryTeachers(ctx context.Context, id access.Identity) ([]Staff, error) {
	if _, err := access.Authorize(id, access.Teachers, access.Read); err != nil {
		return nil, err
	}
	return svc.repo.QueryStaffByRole(ctx, RoleTeacher)
}

// ResetTeacherPassword force-sets a teacher's password. Only teachers can be reset this way.
func (svc *Service) ResetTeacherPassword(ctx context.Context, id access.Identity, teacherID int, pr core.PasswordReset) (Staff, error) {
	if _, err := access.Authorize(id, access.Teachers, access.Update); err != nil {
		return Staff{}, err
	}
	s, err := svc.repo.GetStaffByID(ctx, teacherID)
	if err != nil {
		return Staff{}, err
	}
	if !s.IsTeacher() {
		return Staff{}, ErrNotTeacher
	}
	if err = s.SetPassword(pr.NewPassword); err != nil {
		return Staff{}, errors.Wrap(err, "hashing password")
	}
	s.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateStaff(ctx, s)
}

func (svc *Service) GetProfile(ctx context.Context, id access.Identity) (Staff, error) {
	if _, err := access.Authorize(id, access.Profile, access.Read); err != nil {
		return Staff{}, err
	}
	return svc.repo.GetStaffByID(ctx, id.ID)
}

func (svc *Service) UpdateProfile(ctx context.Context, orig Staff, up UpdateProfile) (Staff, error) {
	if _, err := access.Authorize(orig.Identity(), access.Profile, access.Update); err != nil {
		return Staff{}, err
	}
	if up.Username != orig.Username {
		if _, err := svc.repo.GetStaffByUsername(ctx, up.Username); err == nil {
			return Staff{}, ErrUsernameExists
		} else if !core.IsNotFound(err) {
			return Staff{}, errors.Wrap(err, "checking username")
		}
	}
	orig.FullName = up.FullName
	orig.Username = up.Username
	orig.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateStaff(ctx, orig)
}

func (svc *Service) ChangePassword(ctx context.Context, orig Staff, pc core.PasswordChange) error {
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
	_, err := svc.repo.UpdateStaff(ctx, orig)
	return err
}

func (svc *Service) SetProfilePicture(ctx context.Context, orig Staff, filename string) (Staff, error) {
	if _, err := access.Authorize(orig.Identity(), access.ProfilePicture, access.Update); err != nil {
		return Staff{}, err
	}
	orig.ProfilePicture = &filename
	orig.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateStaff(ctx, orig)
}

// ResetPassword sets the password of the given username (admin CLI).
func (svc *Service) ResetPassword(ctx context.Context, uname, pwd string) error {
	s, err := svc.GetByUsername(ctx, uname)
	if err != nil {
		return err
	}
	if err = s.SetPassword(pwd); err != nil {
		return errors.Wrap(err, "hashing password")
	}
	s.UpdatedAt = time.Now().UTC()
	_, err = svc.repo.UpdateStaff(ctx, s)
	return err
}
