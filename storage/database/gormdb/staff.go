package gormdb

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/trezcool/tuitioncenter/core/staff"
)

type staffRepository struct {
	db *gorm.DB
}

var _ staff.Repository = (*staffRepository)(nil)

func NewStaffRepository(db *gorm.DB) staff.Repository {
	return &staffRepository{db: db}
}

func (repo *staffRepository) CreateStaff(ctx context.Context, s staff.Staff) (staff.Staff, error) {
	row := boilStaff(s)
	if err := repo.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return staff.Staff{}, staff.ErrUsernameExists
		}
		return staff.Staff{}, errors.Wrap(err, "inserting staff")
	}
	return row.unboil(), nil
}

func (repo *staffRepository) get(ctx context.Context, query string, arg interface{}) (staff.Staff, error) {
	var row userRow
	if err := repo.db.WithContext(ctx).Where(query, arg).First(&row).Error; err != nil {
		if isNotFound(err) {
			return staff.Staff{}, staff.ErrNotFound
		}
		return staff.Staff{}, errors.Wrap(err, "selecting staff")
	}
	return row.unboil(), nil
}

func (repo *staffRepository) GetStaffByID(ctx context.Context, id int) (staff.Staff, error) {
	return repo.get(ctx, "id = ?", id)
}

func (repo *staffRepository) GetStaffByUsername(ctx context.Context, username string) (staff.Staff, error) {
	return repo.get(ctx, "username = ?", username)
}

func (repo *staffRepository) QueryStaffByRole(ctx context.Context, role string) ([]staff.Staff, error) {
	var rows []userRow
	err := repo.db.WithContext(ctx).
		Where("role = ?", role).
		Order("full_name ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "selecting staff")
	}
	members := make([]staff.Staff, 0, len(rows))
	for _, r := range rows {
		members = append(members, r.unboil())
	}
	return members, nil
}

func (repo *staffRepository) UpdateStaff(ctx context.Context, s staff.Staff) (staff.Staff, error) {
	row := boilStaff(s)
	res := repo.db.WithContext(ctx).Model(&userRow{ID: s.ID}).
		Select("username", "role", "full_name", "profile_picture", "password_hash", "updated_at").
		Updates(&row)
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return staff.Staff{}, staff.ErrUsernameExists
		}
		return staff.Staff{}, errors.Wrap(res.Error, "updating staff")
	}
	if res.RowsAffected == 0 {
		return staff.Staff{}, staff.ErrNotFound
	}
	return repo.GetStaffByID(ctx, s.ID)
}
