package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/trabach-softwares/ouro-rifa-api/internal/entity"
	"github.com/trabach-softwares/ouro-rifa-api/pkg/xcontext"
	"gorm.io/gorm"
)

type GetListPaymentFilter struct {
	UserID    string
	RaffleIDs []string
	Status    entity.PaymentStatus
	Offset    int
	Limit     int
}

type PaymentRepository interface {
	Create(ctx context.Context, payment *entity.Payment) error
	GetByID(ctx context.Context, id string) (*entity.Payment, error)
	GetByTicketID(ctx context.Context, ticketID string) (*entity.Payment, error)
	GetOpenByTicketID(ctx context.Context, ticketID string) (*entity.Payment, error)
	GetList(ctx context.Context, filter GetListPaymentFilter) ([]entity.Payment, error)
	UpdateInstrument(ctx context.Context, id string, amount float64, pixData entity.Map) error
	CancelOpenByTicketID(ctx context.Context, ticketID string) error
	MarkCompleted(ctx context.Context, id, transactionID string) error
}

type paymentRepository struct{}

func NewPaymentRepository() *paymentRepository {
	return &paymentRepository{}
}

func (r *paymentRepository) Create(ctx context.Context, payment *entity.Payment) error {
	return xcontext.DB(ctx).Create(payment).Error
}

func (r *paymentRepository) GetByID(ctx context.Context, id string) (*entity.Payment, error) {
	var result entity.Payment
	if err := xcontext.DB(ctx).Take(&result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *paymentRepository) GetByTicketID(ctx context.Context, ticketID string) (*entity.Payment, error) {
	var result entity.Payment
	err := xcontext.DB(ctx).
		Where("ticket_id=?", ticketID).
		Order("created_at DESC").
		Take(&result).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

// GetOpenByTicketID returns the active payment of a ticket, if any. At most
// one open payment exists per ticket.
func (r *paymentRepository) GetOpenByTicketID(ctx context.Context, ticketID string) (*entity.Payment, error) {
	var result entity.Payment
	err := xcontext.DB(ctx).
		Where("ticket_id=? AND status IN (?)",
			ticketID, []entity.PaymentStatus{entity.PaymentPending, entity.PaymentProcessing}).
		Take(&result).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *paymentRepository) GetList(ctx context.Context, filter GetListPaymentFilter) ([]entity.Payment, error) {
	tx := xcontext.DB(ctx)

	if filter.UserID != "" {
		tx = tx.Where("user_id=?", filter.UserID)
	}

	if filter.RaffleIDs != nil {
		tx = tx.Where("raffle_id IN (?)", filter.RaffleIDs)
	}

	if filter.Status != "" {
		tx = tx.Where("status=?", filter.Status)
	}

	if filter.Limit > 0 {
		tx = tx.Offset(filter.Offset).Limit(filter.Limit)
	}

	var result []entity.Payment
	if err := tx.Order("created_at DESC").Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *paymentRepository) UpdateInstrument(ctx context.Context, id string, amount float64, pixData entity.Map) error {
	return xcontext.DB(ctx).
		Model(&entity.Payment{}).
		Where("id=?", id).
		Updates(map[string]any{
			"amount":   amount,
			"status":   entity.PaymentPending,
			"pix_data": pixData,
		}).Error
}

func (r *paymentRepository) CancelOpenByTicketID(ctx context.Context, ticketID string) error {
	return xcontext.DB(ctx).
		Model(&entity.Payment{}).
		Where("ticket_id=? AND status IN (?)",
			ticketID, []entity.PaymentStatus{entity.PaymentPending, entity.PaymentProcessing}).
		Update("status", entity.PaymentCancelled).Error
}

// MarkCompleted finalizes a payment at most once. Completed rows never match
// the guard again, so duplicate webhook deliveries fall out as
// gorm.ErrRecordNotFound.
func (r *paymentRepository) MarkCompleted(ctx context.Context, id, transactionID string) error {
	tx := xcontext.DB(ctx).
		Model(&entity.Payment{}).
		Where("id=? AND status IN (?)",
			id, []entity.PaymentStatus{entity.PaymentPending, entity.PaymentProcessing}).
		Updates(map[string]any{
			"status":         entity.PaymentCompleted,
			"transaction_id": transactionID,
			"processed_at":   sql.NullTime{Time: time.Now(), Valid: true},
		})
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
