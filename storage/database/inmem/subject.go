package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/tuitioncenter/core/access"
	"github.com/trezcool/tuitioncenter/core/subject"
)

type subjectRepository struct {
	db *DB
}

var _ subject.Repository = (*subjectRepository)(nil)

func NewSubjectRepository(db *DB) subject.Repository {
	return &subjectRepository{db: db}
}

// nameTaken must be called with a lock held.
func (repo *subjectRepository) nameTaken(name string, excludedID int) bool {
	for _, s := range repo.db.subjects {
		if s.Name == name && s.ID != excludedID {
			return true
		}
	}
	return false
}

func (repo *subjectRepository) CreateSubject(_ context.Context, s subject.Subject) (subject.Subject, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if repo.nameTaken(s.Name, 0) {
		return subject.Subject{}, subject.ErrNameExists
	}
	s.ID = repo.db.nextID()
	repo.db.subjects[s.ID] = s
	return s, nil
}

func (repo *subjectRepository) GetSubjectByID(_ context.Context, id int) (subject.Subject, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if s, ok := repo.db.subjects[id]; ok {
		return s, nil
	}
	return subject.Subject{}, subject.ErrNotFound
}

func (repo *subjectRepository) GetSubjectByName(_ context.Context, name string) (subject.Subject, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, s := range repo.db.subjects {
		if s.Name == name {
			return s, nil
		}
	}
	return subject.Subject{}, subject.ErrNotFound
}

func sortSubjects(subjects []subject.Subject) []subject.Subject {
	sort.Slice(subjects, func(i, j int) bool { return subjects[i].ID < subjects[j].ID })
	return subjects
}

func (repo *subjectRepository) QuerySubjectsByID(_ context.Context, ids ...int) ([]subject.Subject, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	subjects := make([]subject.Subject, 0, len(ids))
	seen := make(map[int]bool, len(ids))
	for _, id := range ids {
		if s, ok := repo.db.subjects[id]; ok && !seen[id] {
			seen[id] = true
			subjects = append(subjects, s)
		}
	}
	return sortSubjects(subjects), nil
}

func (repo *subjectRepository) QuerySubjects(_ context.Context, scope access.Scope) ([]subject.Subject, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	subjects := make([]subject.Subject, 0)
	for _, s := range repo.db.subjects {
		switch {
		case scope.IsTeacher():
			if s.TeacherID == nil || *s.TeacherID != scope.TeacherID {
				continue
			}
		case scope.IsStudent():
			if !repo.db.enrollments[scope.StudentID][s.ID] {
				continue
			}
		}
		subjects = append(subjects, s)
	}
	return sortSubjects(subjects), nil
}

func (repo *subjectRepository) UpdateSubject(_ context.Context, s subject.Subject) (subject.Subject, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.subjects[s.ID]
	if !ok {
		return subject.Subject{}, subject.ErrNotFound
	}
	if repo.nameTaken(s.Name, s.ID) {
		return subject.Subject{}, subject.ErrNameExists
	}
	s.CreatedAt = orig.CreatedAt
	repo.db.subjects[s.ID] = s
	return s, nil
}
