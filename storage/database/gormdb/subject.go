package gormdb

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/trezcool/tuitioncenter/core/access"
	"github.com/trezcool/tuitioncenter/core/subject"
)

type subjectRepository struct {
	db *gorm.DB
}

var _ subject.Repository = (*subjectRepository)(nil)

func NewSubjectRepository(db *gorm.DB) subject.Repository {
	return &subjectRepository{db: db}
}

func (repo *subjectRepository) CreateSubject(ctx context.Context, s subject.Subject) (subject.Subject, error) {
	row := boilSubject(s)
	if err := repo.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return subject.Subject{}, subject.ErrNameExists
		}
		return subject.Subject{}, errors.Wrap(err, "inserting subject")
	}
	return row.unboil(), nil
}

func (repo *subjectRepository) get(ctx context.Context, query string, arg interface{}) (subject.Subject, error) {
	var row subjectRow
	if err := repo.db.WithContext(ctx).Where(query, arg).First(&row).Error; err != nil {
		if isNotFound(err) {
			return subject.Subject{}, subject.ErrNotFound
		}
		return subject.Subject{}, errors.Wrap(err, "selecting subject")
	}
	return row.unboil(), nil
}

func (repo *subjectRepository) GetSubjectByID(ctx context.Context, id int) (subject.Subject, error) {
	return repo.get(ctx, "id = ?", id)
}

func (repo *subjectRepository) GetSubjectByName(ctx context.Context, name string) (subject.Subject, error) {
	return repo.get(ctx, "name = ?", name)
}

func (repo *subjectRepository) find(q *gorm.DB) ([]subject.Subject, error) {
	var rows []subjectRow
	if err := q.Order("id ASC").Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "selecting subjects")
	}
	return unboilSubjects(rows), nil
}

func (repo *subjectRepository) QuerySubjectsByID(ctx context.Context, ids ...int) ([]subject.Subject, error) {
	if len(ids) == 0 {
		return []subject.Subject{}, nil
	}
	return repo.find(repo.db.WithContext(ctx).Where("id IN ?", ids))
}

func (repo *subjectRepository) QuerySubjects(ctx context.Context, scope access.Scope) ([]subject.Subject, error) {
	q := repo.db.WithContext(ctx)
	switch {
	case scope.IsTeacher():
		q = q.Where("teacher_id = ?", scope.TeacherID)
	case scope.IsStudent():
		q = q.Where("id IN (SELECT subject_id FROM student_subjects WHERE student_id = ?)", scope.StudentID)
	}
	return repo.find(q)
}

func (repo *subjectRepository) UpdateSubject(ctx context.Context, s subject.Subject) (subject.Subject, error) {
	row := boilSubject(s)
	res := repo.db.WithContext(ctx).Model(&subjectRow{ID: s.ID}).
		Select("name", "price", "teacher_id", "updated_at").
		Updates(&row)
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return subject.Subject{}, subject.ErrNameExists
		}
		return subject.Subject{}, errors.Wrap(res.Error, "updating subject")
	}
	if res.RowsAffected == 0 {
		return subject.Subject{}, subject.ErrNotFound
	}
	return repo.GetSubjectByID(ctx, s.ID)
}
