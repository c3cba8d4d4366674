package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/trezcool/tuitioncenter/core"
	"github.com/trezcool/tuitioncenter/core/attendance"
	"github.com/trezcool/tuitioncenter/core/payment"
	"github.com/trezcool/tuitioncenter/core/staff"
	"github.com/trezcool/tuitioncenter/core/student"
	"github.com/trezcool/tuitioncenter/core/subject"
)

func CreateStaff(t *testing.T, repo staff.Repository, fullName, uname, pwd, role string) staff.Staff {
	t.Helper()
	now := time.Now().UTC()
	s := staff.Staff{
		Username:  uname,
		Role:      role,
		FullName:  fullName,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.SetPassword(pwd); err != nil {
		t.Fatalf("CreateStaff() failed: %v", err)
	}
	s, err := repo.CreateStaff(context.Background(), s)
	if err != nil {
		t.Fatalf("CreateStaff() failed: %v", err)
	}
	return s
}

func CreateSubject(t *testing.T, repo subject.Repository, name string, price int, teacherID *int) subject.Subject {
	t.Helper()
	now := time.Now().UTC()
	s, err := repo.CreateSubject(context.Background(), subject.Subject{
		Name:      name,
		Price:     price,
		TeacherID: teacherID,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateSubject() failed: %v", err)
	}
	return s
}

// CreateStudent creates a student enrolled in subjectIDs.
// When phone is set, credentials are derived from it the same way registration does.
func CreateStudent(t *testing.T, repo student.Repository, fullName, phone string, isActive bool, subjectIDs ...int) student.Student {
	t.Helper()
	now := time.Now().UTC()
	s := student.Student{
		FullName:  fullName,
		Grade:     "9",
		IsActive:  isActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if phone != "" {
		s.Phone = &phone
		if creds, ok := student.DeriveCredentials(phone); ok {
			s.Username = &creds.Username
			if err := s.SetPassword(creds.Password); err != nil {
				t.Fatalf("CreateStudent() failed: %v", err)
			}
		}
	}
	s, err := repo.CreateStudent(context.Background(), s, subjectIDs)
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return s
}

func CreateRecord(t *testing.T, repo attendance.Repository, studentID, subjectID int, date core.Date, status attendance.Status) attendance.Record {
	t.Helper()
	r, err := repo.CreateRecord(context.Background(), attendance.Record{
		StudentID: studentID,
		SubjectID: subjectID,
		Date:      date,
		Status:    status,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateRecord() failed: %v", err)
	}
	return r
}

func CreatePayment(t *testing.T, repo payment.Repository, studentID, amount int, status payment.Status, date ...time.Time) payment.Payment {
	t.Helper()
	now := time.Now().UTC()
	if len(date) > 0 {
		now = date[0].UTC()
	}
	receipt := "uploads/receipt.jpg"
	p, err := repo.CreatePayment(context.Background(), payment.Payment{
		StudentID:    studentID,
		Amount:       amount,
		Date:         now,
		ReceiptImage: &receipt,
		Status:       status,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		t.Fatalf("CreatePayment() failed: %v", err)
	}
	return p
}

func IntPtr(i int) *int { return &i }
