// Package inmemdb implements the core repositories in memory, for tests.
package inmemdb

import (
	"sync"

	"github.com/trezcool/tuitioncenter/core/attendance"
	"github.com/trezcool/tuitioncenter/core/payment"
	"github.com/trezcool/tuitioncenter/core/staff"
	"github.com/trezcool/tuitioncenter/core/student"
	"github.com/trezcool/tuitioncenter/core/subject"
)

type (
	// DB holds every table behind one lock, so scoped reads see consistent joins.
	DB struct {
		sync.RWMutex
		pk          int
		staff       map[int]staff.Staff
		subjects    map[int]subject.Subject
		students    map[int]student.Student
		enrollments map[int]map[int]bool // student id -> subject ids
		attendance  map[int]attendance.Record
		payments    map[int]payment.Payment
	}
)

func Open() *DB {
	return &DB{
		staff:       make(map[int]staff.Staff),
		subjects:    make(map[int]subject.Subject),
		students:    make(map[int]student.Student),
		enrollments: make(map[int]map[int]bool),
		attendance:  make(map[int]attendance.Record),
		payments:    make(map[int]payment.Payment),
	}
}

// nextID must be called with the write lock held.
func (db *DB) nextID() int {
	db.pk++
	return db.pk
}

// Flush empties every table.
func (db *DB) Flush() {
	db.Lock()
	defer db.Unlock()

	db.staff = make(map[int]staff.Staff)
	db.subjects = make(map[int]subject.Subject)
	db.students = make(map[int]student.Student)
	db.enrollments = make(map[int]map[int]bool)
	db.attendance = make(map[int]attendance.Record)
	db.payments = make(map[int]payment.Payment)
}

// teachesStudent must be called with the read lock held.
func (db *DB) teachesStudent(teacherID, studentID int) bool {
	for subID := range db.enrollments[studentID] {
		if sub, ok := db.subjects[subID]; ok && sub.TeacherID != nil && *sub.TeacherID == teacherID {
			return true
		}
	}
	return false
}
