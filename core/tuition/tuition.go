// Package tuition computes what a student owes from their attendance.
package tuition

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/tuitioncenter/core"
	"github.com/trezcool/tuitioncenter/core/access"
	"github.com/trezcool/tuitioncenter/core/attendance"
	"github.com/trezcool/tuitioncenter/core/payment"
	"github.com/trezcool/tuitioncenter/core/student"
)

// DailyRate is charged per present day, whatever the subject price.
const DailyRate = 19231

// Due is the tuition owed for presentDays days of attendance.
func Due(presentDays int) int {
	return presentDays * DailyRate
}

// Summary is the derived financial and attendance view of one student.
type Summary struct {
	StudentID     int    `json:"studentId"`
	Attendance    string `json:"attendance"` // "present/total"
	PresentDays   int    `json:"presentDays"`
	TotalDays     int    `json:"totalDays"`
	PaymentsTotal int    `json:"paymentsTotal"`
	TuitionDue    int    `json:"tuitionDue"`
}

// Summarize builds a Summary from raw records.
func Summarize(studentID int, records []attendance.Record, payments []payment.Payment) Summary {
	att := attendance.Summarize(records)
	return Summary{
		StudentID:     studentID,
		Attendance:    att.String(),
		PresentDays:   att.Present,
		TotalDays:     att.Total,
		PaymentsTotal: payment.Total(payments),
		TuitionDue:    Due(att.Present),
	}
}

type (
	StudentFinder interface {
		Get(ctx context.Context, id access.Identity, studentID int) (student.Student, error)
	}

	RecordSource interface {
		StudentRecords(ctx context.Context, studentID int) ([]attendance.Record, error)
	}

	PaymentSource interface {
		StudentPayments(ctx context.Context, studentID int) ([]payment.Payment, error)
	}

	Service struct {
		students   StudentFinder
		attendance RecordSource
		payments   PaymentSource
	}
)

func NewService(students StudentFinder, att RecordSource, payments PaymentSource) *Service {
	return &Service{students: students, attendance: att, payments: payments}
}

// StudentSummary is the summary of any student visible to the principal.
func (svc *Service) StudentSummary(ctx context.Context, id access.Identity, studentID int) (Summary, error) {
	scope, err := access.Authorize(id, access.Summaries, access.Read)
	if err != nil {
		return Summary{}, err
	}
	if scope.IsStudent() {
		if scope.StudentID != studentID {
			return Summary{}, core.ErrForbidden
		}
	} else if _, err = svc.students.Get(ctx, id, studentID); err != nil {
		// 404 for unknown students and students outside a teacher's subjects
		return Summary{}, err
	}
	return svc.summarize(ctx, studentID)
}

// OwnSummary is the student's view of their own summary.
func (svc *Service) OwnSummary(ctx context.Context, id access.Identity) (Summary, error) {
	scope, err := access.Authorize(id, access.Summaries, access.Read)
	if err != nil {
		return Summary{}, err
	}
	if !scope.IsStudent() {
		return Summary{}, core.ErrForbidden
	}
	return svc.summarize(ctx, scope.StudentID)
}

func (svc *Service) summarize(ctx context.Context, studentID int) (Summary, error) {
	records, err := svc.attendance.StudentRecords(ctx, studentID)
	if err != nil {
		return Summary{}, errors.Wrap(err, "querying attendance")
	}
	payments, err := svc.payments.StudentPayments(ctx, studentID)
	if err != nil {
		return Summary{}, errors.Wrap(err, "querying payments")
	}
	return Summarize(studentID, records, payments), nil
}
