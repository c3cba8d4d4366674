package gormdb

import (
	"time"

	"github.com/trezcool/tuitioncenter/core"
	"github.com/trezcool/tuitioncenter/core/attendance"
	"github.com/trezcool/tuitioncenter/core/payment"
	"github.com/trezcool/tuitioncenter/core/staff"
	"github.com/trezcool/tuitioncenter/core/student"
	"github.com/trezcool/tuitioncenter/core/subject"
)

type userRow struct {
	ID             int `gorm:"primaryKey"`
	Username       string
	Role           string
	FullName       string
	ProfilePicture *string
	PasswordHash   []byte
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (userRow) TableName() string { return "users" }

func boilStaff(s staff.Staff) userRow {
	return userRow{
		ID:             s.ID,
		Username:       s.Username,
		Role:           s.Role,
		FullName:       s.FullName,
		ProfilePicture: s.ProfilePicture,
		PasswordHash:   s.PasswordHash,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}
}

func (r userRow) unboil() staff.Staff {
	return staff.Staff{
		ID:             r.ID,
		Username:       r.Username,
		Role:           r.Role,
		FullName:       r.FullName,
		ProfilePicture: r.ProfilePicture,
		PasswordHash:   r.PasswordHash,
		CreatedAt:      r.CreatedAt.UTC(),
		UpdatedAt:      r.UpdatedAt.UTC(),
	}
}

type subjectRow struct {
	ID        int `gorm:"primaryKey"`
	Name      string
	Price     int
	TeacherID *int
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (subjectRow) TableName() string { return "subjects" }

func boilSubject(s subject.Subject) subjectRow {
	return subjectRow{
		ID:        s.ID,
		Name:      s.Name,
		Price:     s.Price,
		TeacherID: s.TeacherID,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

func (r subjectRow) unboil() subject.Subject {
	return subject.Subject{
		ID:        r.ID,
		Name:      r.Name,
		Price:     r.Price,
		TeacherID: r.TeacherID,
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
	}
}

func unboilSubjects(rows []subjectRow) []subject.Subject {
	subjects := make([]subject.Subject, 0, len(rows))
	for _, r := range rows {
		subjects = append(subjects, r.unboil())
	}
	return subjects
}

type studentRow struct {
	ID           int `gorm:"primaryKey"`
	FullName     string
	Grade        string
	Phone        *string
	Username     *string
	PasswordHash []byte
	IsActive     bool
	Subjects     []subjectRow `gorm:"many2many:student_subjects;joinForeignKey:StudentID;joinReferences:SubjectID"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (studentRow) TableName() string { return "students" }

type enrollmentRow struct {
	StudentID int `gorm:"primaryKey"`
	SubjectID int `gorm:"primaryKey"`
}

func (enrollmentRow) TableName() string { return "student_subjects" }

func boilStudent(s student.Student) studentRow {
	return studentRow{
		ID:           s.ID,
		FullName:     s.FullName,
		Grade:        s.Grade,
		Phone:        s.Phone,
		Username:     s.Username,
		PasswordHash: s.PasswordHash,
		IsActive:     s.IsActive,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
}

func (r studentRow) unboil() student.Student {
	return student.Student{
		ID:           r.ID,
		FullName:     r.FullName,
		Grade:        r.Grade,
		Phone:        r.Phone,
		Username:     r.Username,
		IsActive:     r.IsActive,
		PasswordHash: r.PasswordHash,
		Subjects:     unboilSubjects(r.Subjects),
		CreatedAt:    r.CreatedAt.UTC(),
		UpdatedAt:    r.UpdatedAt.UTC(),
	}
}

type attendanceRow struct {
	ID        int `gorm:"primaryKey"`
	StudentID int
	SubjectID int
	Date      time.Time `gorm:"type:date"`
	Status    string
	CreatedAt time.Time
	Student   *studentRow `gorm:"foreignKey:StudentID"`
	Subject   *subjectRow `gorm:"foreignKey:SubjectID"`
}

func (attendanceRow) TableName() string { return "attendances" }

func boilRecord(r attendance.Record) attendanceRow {
	return attendanceRow{
		ID:        r.ID,
		StudentID: r.StudentID,
		SubjectID: r.SubjectID,
		Date:      r.Date.Time,
		Status:    string(r.Status),
		CreatedAt: r.CreatedAt,
	}
}

func (r attendanceRow) unboil() attendance.Record {
	rec := attendance.Record{
		ID:        r.ID,
		StudentID: r.StudentID,
		SubjectID: r.SubjectID,
		Date:      core.DateOf(r.Date),
		Status:    attendance.Status(r.Status),
		CreatedAt: r.CreatedAt.UTC(),
	}
	if r.Student != nil {
		st := r.Student.unboil()
		rec.Student = &st
	}
	if r.Subject != nil {
		sub := r.Subject.unboil()
		rec.Subject = &sub
	}
	return rec
}

type paymentRow struct {
	ID           int `gorm:"primaryKey"`
	StudentID    int
	Amount       int
	Date         time.Time
	ReceiptImage *string
	Status       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Student      *studentRow `gorm:"foreignKey:StudentID"`
}

func (paymentRow) TableName() string { return "payments" }

func boilPayment(p payment.Payment) paymentRow {
	return paymentRow{
		ID:           p.ID,
		StudentID:    p.StudentID,
		Amount:       p.Amount,
		Date:         p.Date,
		ReceiptImage: p.ReceiptImage,
		Status:       string(p.Status),
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func (r paymentRow) unboil() payment.Payment {
	p := payment.Payment{
		ID:           r.ID,
		StudentID:    r.StudentID,
		Amount:       r.Amount,
		Date:         r.Date.UTC(),
		ReceiptImage: r.ReceiptImage,
		Status:       payment.Status(r.Status),
		CreatedAt:    r.CreatedAt.UTC(),
		UpdatedAt:    r.UpdatedAt.UTC(),
	}
	if r.Student != nil {
		st := r.Student.unboil()
		p.Student = &st
	}
	return p
}
