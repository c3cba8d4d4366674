package gormdb

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/trezcool/tuitioncenter/core/access"
	"github.com/trezcool/tuitioncenter/core/student"
)

const teacherStudentsSQL = `SELECT ss.student_id FROM student_subjects ss
	JOIN subjects s ON s.id = ss.subject_id
	WHERE s.teacher_id = ?`

type studentRepository struct {
	db *gorm.DB
}

var _ student.Repository = (*studentRepository)(nil)

func NewStudentRepository(db *gorm.DB) student.Repository {
	return &studentRepository{db: db}
}

// scoped restricts a students query to scope and preloads the subjects visible in it.
func scoped(q *gorm.DB, scope access.Scope) *gorm.DB {
	switch {
	case scope.IsTeacher():
		return q.Where("students.id IN ("+teacherStudentsSQL+")", scope.TeacherID).
			Preload("Subjects", func(db *gorm.DB) *gorm.DB {
				return db.Where("subjects.teacher_id = ?", scope.TeacherID).Order("subjects.id")
			})
	case scope.IsStudent():
		q = q.Where("students.id = ?", scope.StudentID)
	}
	return q.Preload("Subjects", func(db *gorm.DB) *gorm.DB {
		return db.Order("subjects.id")
	})
}

func (repo *studentRepository) CreateStudent(ctx context.Context, s student.Student, subjectIDs []int) (student.Student, error) {
	row := boilStudent(s)
	err := repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&row).Error; err != nil {
			return err
		}
		if len(subjectIDs) == 0 {
			return nil
		}
		enrollments := make([]enrollmentRow, 0, len(subjectIDs))
		for _, id := range subjectIDs {
			enrollments = append(enrollments, enrollmentRow{StudentID: row.ID, SubjectID: id})
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&enrollments).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			return student.Student{}, student.ErrUsernameExists
		}
		return student.Student{}, errors.Wrap(err, "inserting student")
	}
	return repo.GetStudentByID(ctx, row.ID, access.Unrestricted())
}

func (repo *studentRepository) get(q *gorm.DB) (student.Student, error) {
	var row studentRow
	if err := q.First(&row).Error; err != nil {
		if isNotFound(err) {
			return student.Student{}, student.ErrNotFound
		}
		return student.Student{}, errors.Wrap(err, "selecting student")
	}
	return row.unboil(), nil
}

func (repo *studentRepository) GetStudentByID(ctx context.Context, id int, scope access.Scope) (student.Student, error) {
	q := scoped(repo.db.WithContext(ctx).Model(&studentRow{}), scope)
	return repo.get(q.Where("students.id = ?", id))
}

func (repo *studentRepository) GetStudentByUsername(ctx context.Context, username string) (student.Student, error) {
	q := scoped(repo.db.WithContext(ctx).Model(&studentRow{}), access.Unrestricted())
	return repo.get(q.Where("students.username = ?", username))
}

func (repo *studentRepository) QueryStudents(ctx context.Context, scope access.Scope) ([]student.Student, error) {
	var rows []studentRow
	q := scoped(repo.db.WithContext(ctx).Model(&studentRow{}), scope)
	if err := q.Order("students.id ASC").Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "selecting students")
	}
	students := make([]student.Student, 0, len(rows))
	for _, r := range rows {
		students = append(students, r.unboil())
	}
	return students, nil
}

func (repo *studentRepository) UpdateStudent(ctx context.Context, s student.Student) (student.Student, error) {
	row := boilStudent(s)
	res := repo.db.WithContext(ctx).Model(&studentRow{ID: s.ID}).
		Omit(clause.Associations).
		Select("full_name", "grade", "phone", "username", "password_hash", "is_active", "updated_at").
		Updates(&row)
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return student.Student{}, student.ErrUsernameExists
		}
		return student.Student{}, errors.Wrap(res.Error, "updating student")
	}
	if res.RowsAffected == 0 {
		return student.Student{}, student.ErrNotFound
	}
	return repo.GetStudentByID(ctx, s.ID, access.Unrestricted())
}
