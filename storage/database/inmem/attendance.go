package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/tuitioncenter/core/access"
	"github.com/trezcool/tuitioncenter/core/attendance"
)

type attendanceRepository struct {
	db *DB
}

var _ attendance.Repository = (*attendanceRepository)(nil)

func NewAttendanceRepository(db *DB) attendance.Repository {
	return &attendanceRepository{db: db}
}

func (repo *attendanceRepository) CreateRecord(_ context.Context, r attendance.Record) (attendance.Record, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	r.ID = repo.db.nextID()
	r.Student, r.Subject = nil, nil
	repo.db.attendance[r.ID] = r
	return r, nil
}

func (repo *attendanceRepository) QueryRecords(_ context.Context, filter attendance.Filter, scope access.Scope) ([]attendance.Record, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	records := make([]attendance.Record, 0)
	for _, r := range repo.db.attendance {
		if !filter.Date.IsZero() && !r.Date.Equal(filter.Date) {
			continue
		}
		if filter.SubjectID > 0 && r.SubjectID != filter.SubjectID {
			continue
		}
		if filter.StudentID > 0 && r.StudentID != filter.StudentID {
			continue
		}
		switch {
		case scope.IsTeacher():
			sub, ok := repo.db.subjects[r.SubjectID]
			if !ok || sub.TeacherID == nil || *sub.TeacherID != scope.TeacherID {
				continue
			}
		case scope.IsStudent():
			if r.StudentID != scope.StudentID {
				continue
			}
		}

		r.Student = repo.db.bare(r.StudentID)
		if sub, ok := repo.db.subjects[r.SubjectID]; ok {
			r.Subject = &sub
		}
		records = append(records, r)
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].Date.Equal(records[j].Date) {
			return records[i].ID > records[j].ID
		}
		return records[i].Date.After(records[j].Date.Time)
	})
	return records, nil
}
