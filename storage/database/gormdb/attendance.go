package gormdb

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/trezcool/tuitioncenter/core/access"
	"github.com/trezcool/tuitioncenter/core/attendance"
)

type attendanceRepository struct {
	db *gorm.DB
}

var _ attendance.Repository = (*attendanceRepository)(nil)

func NewAttendanceRepository(db *gorm.DB) attendance.Repository {
	return &attendanceRepository{db: db}
}

func (repo *attendanceRepository) CreateRecord(ctx context.Context, r attendance.Record) (attendance.Record, error) {
	row := boilRecord(r)
	if err := repo.db.WithContext(ctx).Omit("Student", "Subject").Create(&row).Error; err != nil {
		return attendance.Record{}, errors.Wrap(err, "inserting attendance")
	}
	return row.unboil(), nil
}

func (repo *attendanceRepository) QueryRecords(ctx context.Context, filter attendance.Filter, scope access.Scope) ([]attendance.Record, error) {
	q := repo.db.WithContext(ctx).Model(&attendanceRow{})
	if !filter.Date.IsZero() {
		q = q.Where("attendances.date = ?", filter.Date.String())
	}
	if filter.SubjectID > 0 {
		q = q.Where("attendances.subject_id = ?", filter.SubjectID)
	}
	if filter.StudentID > 0 {
		q = q.Where("attendances.student_id = ?", filter.StudentID)
	}
	switch {
	case scope.IsTeacher():
		q = q.Where("attendances.subject_id IN (SELECT id FROM subjects WHERE teacher_id = ?)", scope.TeacherID)
	case scope.IsStudent():
		q = q.Where("attendances.student_id = ?", scope.StudentID)
	}

	var rows []attendanceRow
	err := q.Preload("Student").Preload("Subject").
		Order("attendances.date DESC, attendances.id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "selecting attendance")
	}
	records := make([]attendance.Record, 0, len(rows))
	for _, r := range rows {
		records = append(records, r.unboil())
	}
	return records, nil
}
