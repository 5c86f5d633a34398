package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/trabach-softwares/ouro-rifa-api/internal/entity"
	"github.com/trabach-softwares/ouro-rifa-api/pkg/xcontext"
	"gorm.io/gorm"
)

type GetListRaffleFilter struct {
	Status entity.RaffleStatus
	Search string
	Offset int
	Limit  int
}

type RaffleRepository interface {
	Create(ctx context.Context, raffle *entity.Raffle) error
	GetByID(ctx context.Context, id string) (*entity.Raffle, error)
	GetList(ctx context.Context, filter GetListRaffleFilter) ([]entity.Raffle, error)
	GetByOwnerID(ctx context.Context, ownerID string) ([]entity.Raffle, error)
	UpdateByID(ctx context.Context, id string, raffle entity.Raffle) error
	UpdateStatus(ctx context.Context, id string, status entity.RaffleStatus) error
	DeleteByID(ctx context.Context, id string) error
	AddSold(ctx context.Context, id string, quantity int, amount float64) error
	SetStatistics(ctx context.Context, id string, soldTickets int, revenue float64) error
	SetWinner(ctx context.Context, id, winnerUserID, winnerTicket string) error
}

type raffleRepository struct{}

func NewRaffleRepository() *raffleRepository {
	return &raffleRepository{}
}

func (r *raffleRepository) Create(ctx context.Context, raffle *entity.Raffle) error {
	return xcontext.DB(ctx).Create(raffle).Error
}

func (r *raffleRepository) GetByID(ctx context.Context, id string) (*entity.Raffle, error) {
	var result entity.Raffle
	if err := xcontext.DB(ctx).Take(&result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *raffleRepository) GetList(ctx context.Context, filter GetListRaffleFilter) ([]entity.Raffle, error) {
	tx := xcontext.DB(ctx)

	if filter.Status != "" {
		tx = tx.Where("status=?", filter.Status)
	}

	if filter.Search != "" {
		search := "%" + filter.Search + "%"
		tx = tx.Where("title LIKE ? OR description LIKE ?", search, search)
	}

	if filter.Limit > 0 {
		tx = tx.Offset(filter.Offset).Limit(filter.Limit)
	}

	var result []entity.Raffle
	if err := tx.Order("created_at DESC").Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *raffleRepository) GetByOwnerID(ctx context.Context, ownerID string) ([]entity.Raffle, error) {
	var result []entity.Raffle
	err := xcontext.DB(ctx).
		Where("owner_id=?", ownerID).
		Order("created_at DESC").
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *raffleRepository) UpdateByID(ctx context.Context, id string, raffle entity.Raffle) error {
	return xcontext.DB(ctx).
		Model(&entity.Raffle{}).
		Where("id=?", id).
		Omit("id", "created_at", "owner_id", "sold_tickets", "revenue",
			"status", "winner_user_id", "winner_ticket", "draw_date").
		Updates(raffle).Error
}

func (r *raffleRepository) UpdateStatus(ctx context.Context, id string, status entity.RaffleStatus) error {
	return xcontext.DB(ctx).
		Model(&entity.Raffle{}).
		Where("id=?", id).
		Update("status", status).Error
}

func (r *raffleRepository) DeleteByID(ctx context.Context, id string) error {
	return xcontext.DB(ctx).Delete(&entity.Raffle{}, "id=?", id).Error
}

// AddSold increments the denormalized sale counters. The guard keeps the
// sold_tickets <= total_tickets invariant even under concurrent confirms; a
// zero-row update reports gorm.ErrRecordNotFound so the caller can hand the
// drift to reconciliation.
func (r *raffleRepository) AddSold(ctx context.Context, id string, quantity int, amount float64) error {
	tx := xcontext.DB(ctx).
		Model(&entity.Raffle{}).
		Where("id=? AND sold_tickets + ? <= total_tickets", id, quantity).
		Updates(map[string]any{
			"sold_tickets": gorm.Expr("sold_tickets+?", quantity),
			"revenue":      gorm.Expr("revenue+?", amount),
		})
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *raffleRepository) SetStatistics(ctx context.Context, id string, soldTickets int, revenue float64) error {
	return xcontext.DB(ctx).
		Model(&entity.Raffle{}).
		Where("id=?", id).
		Updates(map[string]any{
			"sold_tickets": soldTickets,
			"revenue":      revenue,
		}).Error
}

// SetWinner writes the winner pair exactly once. A second call finds no row
// with a null winner and reports gorm.ErrRecordNotFound.
func (r *raffleRepository) SetWinner(ctx context.Context, id, winnerUserID, winnerTicket string) error {
	tx := xcontext.DB(ctx).
		Model(&entity.Raffle{}).
		Where("id=? AND winner_user_id IS NULL", id).
		Updates(map[string]any{
			"status":         entity.RaffleCompleted,
			"winner_user_id": winnerUserID,
			"winner_ticket":  winnerTicket,
			"draw_date":      sql.NullTime{Time: time.Now(), Valid: true},
		})
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
