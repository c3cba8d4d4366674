package payment

import (
	"context"
	"io"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/tuitioncenter/core"
	"github.com/trezcool/tuitioncenter/core/access"
	"github.com/trezcool/tuitioncenter/core/student"
)

const receiptUploadedTmpl = "receipt_uploaded"

var (
	// errors
	ErrNotFound       = core.NewNotFoundError("payment")
	ErrStatusChanged  = core.NewConflictError("status", "payment status changed concurrently")
	errUnknownStudent = core.NewValidationError(nil, core.FieldError{Field: "studentId", Error: "unknown student"})
)

func init() {
	core.RegisterEmailTemplate(receiptUploadedTmpl,
		`A new payment receipt was uploaded.

Student: {{.StudentName}} (#{{.StudentID}})
Amount: {{.Amount}}
Receipt: {{.Receipt}}

It is pending review.
`,
		`<p>A new payment receipt was uploaded.</p>
<ul>
<li>Student: {{.StudentName}} (#{{.StudentID}})</li>
<li>Amount: {{.Amount}}</li>
<li>Receipt: {{.Receipt}}</li>
</ul>
<p>It is pending review.</p>
`)
}

type (
	Repository interface {
		CreatePayment(ctx context.Context, p Payment) (Payment, error)
		GetPaymentByID(ctx context.Context, id int) (Payment, error)
		// QueryPayments returns the payments visible in scope (optionally of one student),
		// newest first, with their student.
		QueryPayments(ctx context.Context, studentID int, scope access.Scope) ([]Payment, error)
		// UpdatePaymentStatus changes the status only if it still is `from`, else ErrStatusChanged.
		UpdatePaymentStatus(ctx context.Context, id int, from, to Status, updatedAt time.Time) (Payment, error)
	}

	// ReceiptStore persists receipt files and returns the stored name.
	ReceiptStore interface {
		SaveReceipt(originalName string, content io.Reader) (string, error)
	}

	Service struct {
		repo        Repository
		studentRepo student.Repository
		store       ReceiptStore
		mailSvc     core.EmailService
		notifyTo    string
	}
)

func NewService(
	repo Repository,
	studentRepo student.Repository,
	store ReceiptStore,
	mailSvc core.EmailService,
	notifyTo string,
) *Service {
	return &Service{
		repo:        repo,
		studentRepo: studentRepo,
		store:       store,
		mailSvc:     mailSvc,
		notifyTo:    notifyTo,
	}
}

// Submit stores the receipt file, if any, then records a pending payment.
// A nil receipt leaves ReceiptImage nil.
// A stored file is not removed if recording the payment fails.
func (svc *Service) Submit(ctx context.Context, id access.Identity, np NewPayment, filename string, receipt io.Reader) (Payment, error) {
	scope, err := access.Authorize(id, access.Payments, access.Create)
	if err != nil {
		return Payment{}, err
	}
	if scope.IsStudent() && scope.StudentID != np.StudentID {
		return Payment{}, core.ErrForbidden
	}

	st, err := svc.studentRepo.GetStudentByID(ctx, np.StudentID, access.Unrestricted())
	if err != nil {
		if core.IsNotFound(err) {
			return Payment{}, errUnknownStudent
		}
		return Payment{}, errors.Wrap(err, "finding student")
	}

	var stored *string
	if receipt != nil {
		name, err := svc.store.SaveReceipt(filename, receipt)
		if err != nil {
			return Payment{}, errors.Wrap(err, "saving receipt")
		}
		stored = &name
	}

	now := time.Now().UTC()
	p, err := svc.repo.CreatePayment(ctx, Payment{
		StudentID:    st.ID,
		Amount:       np.Amount,
		Date:         now,
		ReceiptImage: stored,
		Status:       StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return Payment{}, errors.Wrap(err, "creating payment")
	}

	svc.notify(st, p)
	return p, nil
}

func (svc *Service) notify(st student.Student, p Payment) {
	if svc.mailSvc == nil || svc.notifyTo == "" {
		return
	}
	receipt := "none"
	if p.ReceiptImage != nil {
		receipt = *p.ReceiptImage
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Address: svc.notifyTo}},
		Subject:      "New payment receipt",
		TemplateName: receiptUploadedTmpl,
		TemplateData: map[string]interface{}{
			"StudentName": st.FullName,
			"StudentID":   st.ID,
			"Amount":      p.Amount,
			"Receipt":     receipt,
		},
	})
}

func (svc *Service) Query(ctx context.Context, id access.Identity) ([]Payment, error) {
	scope, err := access.Authorize(id, access.Payments, access.Read)
	if err != nil {
		return nil, err
	}
	return svc.repo.QueryPayments(ctx, 0, scope)
}

// Review moves a pending payment to approved or rejected.
func (svc *Service) Review(ctx context.Context, id access.Identity, paymentID int, su StatusUpdate) (Payment, error) {
	if _, err := access.Authorize(id, access.Payments, access.Update); err != nil {
		return Payment{}, err
	}
	p, err := svc.repo.GetPaymentByID(ctx, paymentID)
	if err != nil {
		return Payment{}, err
	}
	if !CanTransition(p.Status, su.Status) {
		return Payment{}, core.NewConflictError("status", "cannot change a "+string(p.Status)+" payment to "+string(su.Status))
	}
	return svc.repo.UpdatePaymentStatus(ctx, p.ID, p.Status, su.Status, time.Now().UTC())
}

// StudentPayments returns every payment of a student, unscoped (derived views).
func (svc *Service) StudentPayments(ctx context.Context, studentID int) ([]Payment, error) {
	return svc.repo.QueryPayments(ctx, studentID, access.Unrestricted())
}
