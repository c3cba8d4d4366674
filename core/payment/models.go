package payment

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/tuitioncenter/core"
	"github.com/trezcool/tuitioncenter/core/student"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

var transitions = map[Status][]Status{
	StatusPending: {StatusApproved, StatusRejected},
}

// CanTransition reports whether a receipt may move from one status to another.
// Only pending receipts can be reviewed; reviewed receipts are final.
func CanTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Payment is an uploaded receipt waiting for (or past) review.
type Payment struct {
	ID           int              `json:"id"`
	StudentID    int              `json:"studentId"`
	Amount       int              `json:"amount"`
	Date         time.Time        `json:"date"`
	ReceiptImage *string          `json:"receiptImage"`
	Status       Status           `json:"status"`
	CreatedAt    time.Time        `json:"createdAt"`
	UpdatedAt    time.Time        `json:"updatedAt"`
	Student      *student.Student `json:"student,omitempty"`
}

type NewPayment struct {
	StudentID int `form:"studentId" json:"studentId" validate:"required,gt=0"`
	Amount    int `form:"amount" json:"amount" validate:"required,gt=0"`
}

func (np *NewPayment) Validate(validate *validator.Validate) error {
	return validate.Struct(np)
}

type StatusUpdate struct {
	Status Status `json:"status" validate:"required,oneof=approved rejected"`
}

func (su *StatusUpdate) Validate(validate *validator.Validate) error {
	su.Status = Status(core.CleanString(string(su.Status), true /* lower */))
	return validate.Struct(su)
}

// Total sums the amounts of all payments, whatever their status.
func Total(payments []Payment) int {
	var sum int
	for _, p := range payments {
		sum += p.Amount
	}
	return sum
}
