package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/tuitioncenter/core/access"
	"github.com/trezcool/tuitioncenter/core/student"
	"github.com/trezcool/tuitioncenter/core/subject"
)

type studentRepository struct {
	db *DB
}

var _ student.Repository = (*studentRepository)(nil)

func NewStudentRepository(db *DB) student.Repository {
	return &studentRepository{db: db}
}

// usernameTaken must be called with a lock held.
func (repo *studentRepository) usernameTaken(username *string, excludedID int) bool {
	if username == nil {
		return false
	}
	for _, s := range repo.db.students {
		if s.Username != nil && *s.Username == *username && s.ID != excludedID {
			return true
		}
	}
	return false
}

// visible must be called with a lock held.
func (repo *studentRepository) visible(s student.Student, scope access.Scope) bool {
	switch {
	case scope.IsTeacher():
		return repo.db.teachesStudent(scope.TeacherID, s.ID)
	case scope.IsStudent():
		return s.ID == scope.StudentID
	}
	return true
}

// hydrate attaches the subjects visible in scope. Must be called with a lock held.
func (repo *studentRepository) hydrate(s student.Student, scope access.Scope) student.Student {
	s.Subjects = make([]subject.Subject, 0, len(repo.db.enrollments[s.ID]))
	for subID := range repo.db.enrollments[s.ID] {
		sub, ok := repo.db.subjects[subID]
		if !ok {
			continue
		}
		if scope.IsTeacher() && (sub.TeacherID == nil || *sub.TeacherID != scope.TeacherID) {
			continue
		}
		s.Subjects = append(s.Subjects, sub)
	}
	s.Subjects = sortSubjects(s.Subjects)
	return s
}

func (repo *studentRepository) CreateStudent(_ context.Context, s student.Student, subjectIDs []int) (student.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if repo.usernameTaken(s.Username, 0) {
		return student.Student{}, student.ErrUsernameExists
	}
	enrolled := make(map[int]bool, len(subjectIDs))
	for _, id := range subjectIDs {
		if _, ok := repo.db.subjects[id]; !ok {
			return student.Student{}, subject.ErrNotFound
		}
		enrolled[id] = true
	}

	s.ID = repo.db.nextID()
	s.Subjects = nil
	repo.db.students[s.ID] = s
	repo.db.enrollments[s.ID] = enrolled
	return repo.hydrate(s, access.Unrestricted()), nil
}

func (repo *studentRepository) GetStudentByID(_ context.Context, id int, scope access.Scope) (student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	s, ok := repo.db.students[id]
	if !ok || !repo.visible(s, scope) {
		return student.Student{}, student.ErrNotFound
	}
	return repo.hydrate(s, scope), nil
}

func (repo *studentRepository) GetStudentByUsername(_ context.Context, username string) (student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, s := range repo.db.students {
		if s.Username != nil && *s.Username == username {
			return repo.hydrate(s, access.Unrestricted()), nil
		}
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) QueryStudents(_ context.Context, scope access.Scope) ([]student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	students := make([]student.Student, 0)
	for _, s := range repo.db.students {
		if repo.visible(s, scope) {
			students = append(students, repo.hydrate(s, scope))
		}
	}
	sort.Slice(students, func(i, j int) bool { return students[i].ID < students[j].ID })
	return students, nil
}

func (repo *studentRepository) UpdateStudent(_ context.Context, s student.Student) (student.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.students[s.ID]
	if !ok {
		return student.Student{}, student.ErrNotFound
	}
	if repo.usernameTaken(s.Username, s.ID) {
		return student.Student{}, student.ErrUsernameExists
	}
	s.CreatedAt = orig.CreatedAt
	s.Subjects = nil
	repo.db.students[s.ID] = s
	return repo.hydrate(s, access.Unrestricted()), nil
}

// bare returns a student without its subjects. Must be called with a lock held.
func (db *DB) bare(id int) *student.Student {
	s, ok := db.students[id]
	if !ok {
		return nil
	}
	s.Subjects = []subject.Subject{}
	return &s
}
