package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/trezcool/tuitioncenter/core/access"
	"github.com/trezcool/tuitioncenter/core/payment"
)

type paymentRepository struct {
	db *DB
}

var _ payment.Repository = (*paymentRepository)(nil)

func NewPaymentRepository(db *DB) payment.Repository {
	return &paymentRepository{db: db}
}

func (repo *paymentRepository) CreatePayment(_ context.Context, p payment.Payment) (payment.Payment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	p.ID = repo.db.nextID()
	p.Student = nil
	repo.db.payments[p.ID] = p
	return p, nil
}

// withStudent must be called with a lock held.
func (repo *paymentRepository) withStudent(p payment.Payment) payment.Payment {
	p.Student = repo.db.bare(p.StudentID)
	return p
}

func (repo *paymentRepository) GetPaymentByID(_ context.Context, id int) (payment.Payment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if p, ok := repo.db.payments[id]; ok {
		return repo.withStudent(p), nil
	}
	return payment.Payment{}, payment.ErrNotFound
}

func (repo *paymentRepository) QueryPayments(_ context.Context, studentID int, scope access.Scope) ([]payment.Payment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	payments := make([]payment.Payment, 0)
	for _, p := range repo.db.payments {
		if studentID > 0 && p.StudentID != studentID {
			continue
		}
		switch {
		case scope.IsTeacher():
			if !repo.db.teachesStudent(scope.TeacherID, p.StudentID) {
				continue
			}
		case scope.IsStudent():
			if p.StudentID != scope.StudentID {
				continue
			}
		}
		payments = append(payments, repo.withStudent(p))
	}
	sort.Slice(payments, func(i, j int) bool {
		if payments[i].Date.Equal(payments[j].Date) {
			return payments[i].ID > payments[j].ID
		}
		return payments[i].Date.After(payments[j].Date)
	})
	return payments, nil
}

func (repo *paymentRepository) UpdatePaymentStatus(_ context.Context, id int, from, to payment.Status, updatedAt time.Time) (payment.Payment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	p, ok := repo.db.payments[id]
	if !ok {
		return payment.Payment{}, payment.ErrNotFound
	}
	if p.Status != from {
		return payment.Payment{}, payment.ErrStatusChanged
	}
	p.Status = to
	p.UpdatedAt = updatedAt
	repo.db.payments[id] = p
	return repo.withStudent(p), nil
}
