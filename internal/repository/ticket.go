package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/trabach-softwares/ouro-rifa-api/internal/entity"
	"github.com/trabach-softwares/ouro-rifa-api/pkg/xcontext"
	"gorm.io/gorm"
)

type GetListTicketFilter struct {
	RaffleID string
	UserID   string
	Status   entity.TicketPaymentStatus
}

type RaffleSales struct {
	SoldTickets int
	Revenue     float64
}

type UserSpending struct {
	UserID     string
	TotalSpent float64
}

type TicketRepository interface {
	Create(ctx context.Context, ticket *entity.Ticket) error
	GetByID(ctx context.Context, id string) (*entity.Ticket, error)
	GetList(ctx context.Context, filter GetListTicketFilter) ([]entity.Ticket, error)
	GetActiveByRaffleID(ctx context.Context, raffleID string) ([]entity.Ticket, error)
	GetRecentPaid(ctx context.Context, raffleIDs []string, limit int) ([]entity.Ticket, error)
	SumQuantity(ctx context.Context, raffleID, userID string, status entity.TicketPaymentStatus) (int, error)
	AggregateSales(ctx context.Context, raffleID string) (*RaffleSales, error)
	AggregateSpending(ctx context.Context) ([]UserSpending, error)
	ConfirmPayment(ctx context.Context, id, transactionID string) error
	Cancel(ctx context.Context, id string) error
	MarkAsWinner(ctx context.Context, id string) error
}

type ticketRepository struct{}

func NewTicketRepository() *ticketRepository {
	return &ticketRepository{}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *entity.Ticket) error {
	return xcontext.DB(ctx).Create(ticket).Error
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*entity.Ticket, error) {
	var result entity.Ticket
	if err := xcontext.DB(ctx).Take(&result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *ticketRepository) GetList(ctx context.Context, filter GetListTicketFilter) ([]entity.Ticket, error) {
	tx := xcontext.DB(ctx)

	if filter.RaffleID != "" {
		tx = tx.Where("raffle_id=?", filter.RaffleID)
	}

	if filter.UserID != "" {
		tx = tx.Where("user_id=?", filter.UserID)
	}

	if filter.Status != "" {
		tx = tx.Where("payment_status=?", filter.Status)
	}

	var result []entity.Ticket
	if err := tx.Order("created_at DESC").Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}

// GetActiveByRaffleID returns the tickets whose numbers are off the market,
// the pending reservations plus the paid ones.
func (r *ticketRepository) GetActiveByRaffleID(ctx context.Context, raffleID string) ([]entity.Ticket, error) {
	var result []entity.Ticket
	err := xcontext.DB(ctx).
		Where("raffle_id=? AND payment_status IN (?)",
			raffleID, []entity.TicketPaymentStatus{entity.TicketPending, entity.TicketPaid}).
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *ticketRepository) GetRecentPaid(
	ctx context.Context, raffleIDs []string, limit int,
) ([]entity.Ticket, error) {
	var result []entity.Ticket
	err := xcontext.DB(ctx).
		Where("raffle_id IN (?) AND payment_status=?", raffleIDs, entity.TicketPaid).
		Order("payment_date DESC").
		Limit(limit).
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *ticketRepository) SumQuantity(
	ctx context.Context, raffleID, userID string, status entity.TicketPaymentStatus,
) (int, error) {
	var total sql.NullInt64
	err := xcontext.DB(ctx).
		Model(&entity.Ticket{}).
		Select("SUM(quantity)").
		Where("raffle_id=? AND user_id=? AND payment_status=?", raffleID, userID, status).
		Take(&total).Error
	if err != nil {
		return 0, err
	}

	return int(total.Int64), nil
}

// AggregateSales recomputes the raffle's sale counters from its paid tickets,
// the source of truth for the denormalized raffle columns.
func (r *ticketRepository) AggregateSales(ctx context.Context, raffleID string) (*RaffleSales, error) {
	var result struct {
		SoldTickets sql.NullInt64
		Revenue     sql.NullFloat64
	}

	err := xcontext.DB(ctx).
		Model(&entity.Ticket{}).
		Select("SUM(quantity) AS sold_tickets, SUM(total_amount) AS revenue").
		Where("raffle_id=? AND payment_status=?", raffleID, entity.TicketPaid).
		Take(&result).Error
	if err != nil {
		return nil, err
	}

	return &RaffleSales{
		SoldTickets: int(result.SoldTickets.Int64),
		Revenue:     result.Revenue.Float64,
	}, nil
}

// AggregateSpending recomputes the lifetime spend of every buyer from their
// paid tickets.
func (r *ticketRepository) AggregateSpending(ctx context.Context) ([]UserSpending, error) {
	var result []UserSpending
	err := xcontext.DB(ctx).
		Model(&entity.Ticket{}).
		Select("user_id, SUM(total_amount) AS total_spent").
		Where("payment_status=?", entity.TicketPaid).
		Group("user_id").
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

// ConfirmPayment moves a pending ticket to paid. The status guard makes the
// transition happen at most once; a zero-row update reports
// gorm.ErrRecordNotFound and the caller decides between a duplicate delivery
// and an invalid state.
func (r *ticketRepository) ConfirmPayment(ctx context.Context, id, transactionID string) error {
	tx := xcontext.DB(ctx).
		Model(&entity.Ticket{}).
		Where("id=? AND payment_status=?", id, entity.TicketPending).
		Updates(map[string]any{
			"payment_status": entity.TicketPaid,
			"payment_date":   sql.NullTime{Time: time.Now(), Valid: true},
			"transaction_id": transactionID,
		})
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

// Cancel releases a reservation. Only pending tickets can be cancelled.
func (r *ticketRepository) Cancel(ctx context.Context, id string) error {
	tx := xcontext.DB(ctx).
		Model(&entity.Ticket{}).
		Where("id=? AND payment_status=?", id, entity.TicketPending).
		Update("payment_status", entity.TicketCancelled)
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *ticketRepository) MarkAsWinner(ctx context.Context, id string) error {
	return xcontext.DB(ctx).
		Model(&entity.Ticket{}).
		Where("id=?", id).
		Update("is_winner", true).Error
}
