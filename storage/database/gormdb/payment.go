package gormdb

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/trezcool/tuitioncenter/core/access"
	"github.com/trezcool/tuitioncenter/core/payment"
)

type paymentRepository struct {
	db *gorm.DB
}

var _ payment.Repository = (*paymentRepository)(nil)

func NewPaymentRepository(db *gorm.DB) payment.Repository {
	return &paymentRepository{db: db}
}

func (repo *paymentRepository) CreatePayment(ctx context.Context, p payment.Payment) (payment.Payment, error) {
	row := boilPayment(p)
	if err := repo.db.WithContext(ctx).Omit("Student").Create(&row).Error; err != nil {
		return payment.Payment{}, errors.Wrap(err, "inserting payment")
	}
	return row.unboil(), nil
}

func (repo *paymentRepository) GetPaymentByID(ctx context.Context, id int) (payment.Payment, error) {
	var row paymentRow
	if err := repo.db.WithContext(ctx).Preload("Student").Where("id = ?", id).First(&row).Error; err != nil {
		if isNotFound(err) {
			return payment.Payment{}, payment.ErrNotFound
		}
		return payment.Payment{}, errors.Wrap(err, "selecting payment")
	}
	return row.unboil(), nil
}

func (repo *paymentRepository) QueryPayments(ctx context.Context, studentID int, scope access.Scope) ([]payment.Payment, error) {
	q := repo.db.WithContext(ctx).Model(&paymentRow{})
	if studentID > 0 {
		q = q.Where("payments.student_id = ?", studentID)
	}
	switch {
	case scope.IsTeacher():
		q = q.Where("payments.student_id IN ("+teacherStudentsSQL+")", scope.TeacherID)
	case scope.IsStudent():
		q = q.Where("payments.student_id = ?", scope.StudentID)
	}

	var rows []paymentRow
	err := q.Preload("Student").
		Order("payments.date DESC, payments.id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "selecting payments")
	}
	payments := make([]payment.Payment, 0, len(rows))
	for _, r := range rows {
		payments = append(payments, r.unboil())
	}
	return payments, nil
}

func (repo *paymentRepository) UpdatePaymentStatus(ctx context.Context, id int, from, to payment.Status, updatedAt time.Time) (payment.Payment, error) {
	res := repo.db.WithContext(ctx).Model(&paymentRow{}).
		Where("id = ? AND status = ?", id, string(from)).
		Updates(map[string]interface{}{"status": string(to), "updated_at": updatedAt})
	if res.Error != nil {
		return payment.Payment{}, errors.Wrap(res.Error, "updating payment")
	}
	if res.RowsAffected == 0 {
		if _, err := repo.GetPaymentByID(ctx, id); err != nil {
			return payment.Payment{}, err
		}
		return payment.Payment{}, payment.ErrStatusChanged
	}
	return repo.GetPaymentByID(ctx, id)
}
