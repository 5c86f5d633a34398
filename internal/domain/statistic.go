package domain

import (
	"context"
	"errors"

	"github.com/trabach-softwares/ouro-rifa-api/internal/entity"
	"github.com/trabach-softwares/ouro-rifa-api/internal/model"
	"github.com/trabach-softwares/ouro-rifa-api/internal/repository"
	"github.com/trabach-softwares/ouro-rifa-api/pkg/errorx"
	"github.com/trabach-softwares/ouro-rifa-api/pkg/numberutil"
	"github.com/trabach-softwares/ouro-rifa-api/pkg/xcontext"
	"gorm.io/gorm"
)

type StatisticDomain interface {
	GetRaffleStatistics(ctx context.Context, req *model.GetRaffleStatisticsRequest) (*model.GetRaffleStatisticsResponse, error)
	GetDashboard(ctx context.Context, req *model.GetDashboardRequest) (*model.GetDashboardResponse, error)
	RecomputeRaffle(ctx context.Context, raffleID string) error
}

type statisticDomain struct {
	raffleRepo repository.RaffleRepository
	ticketRepo repository.TicketRepository
	userRepo   repository.UserRepository
}

func NewStatisticDomain(
	raffleRepo repository.RaffleRepository,
	ticketRepo repository.TicketRepository,
	userRepo repository.UserRepository,
) *statisticDomain {
	return &statisticDomain{
		raffleRepo: raffleRepo,
		ticketRepo: ticketRepo,
		userRepo:   userRepo,
	}
}

func raffleStatistics(raffle *entity.Raffle) model.RaffleStatistics {
	progress := 0.0
	if raffle.TotalTickets > 0 {
		progress = numberutil.Round2(
			float64(raffle.SoldTickets) / float64(raffle.TotalTickets) * 100)
	}

	return model.RaffleStatistics{
		SoldTickets:      raffle.SoldTickets,
		AvailableTickets: raffle.TotalTickets - raffle.SoldTickets,
		Revenue:          numberutil.Round2(raffle.Revenue),
		ProgressPercent:  progress,
	}
}

// GetRaffleStatistics recomputes the counters from paid tickets instead of
// trusting the denormalized raffle columns.
func (d *statisticDomain) GetRaffleStatistics(
	ctx context.Context, req *model.GetRaffleStatisticsRequest,
) (*model.GetRaffleStatisticsResponse, error) {
	raffle, err := d.raffleRepo.GetByID(ctx, req.RaffleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found raffle")
		}

		xcontext.Logger(ctx).Errorf("Cannot get raffle: %v", err)
		return nil, errorx.Unknown
	}

	sales, err := d.ticketRepo.AggregateSales(ctx, req.RaffleID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot aggregate sales: %v", err)
		return nil, errorx.Unknown
	}

	progress := 0.0
	if raffle.TotalTickets > 0 {
		progress = numberutil.Round2(
			float64(sales.SoldTickets) / float64(raffle.TotalTickets) * 100)
	}

	return &model.GetRaffleStatisticsResponse{
		Statistics: model.RaffleStatistics{
			SoldTickets:      sales.SoldTickets,
			AvailableTickets: raffle.TotalTickets - sales.SoldTickets,
			Revenue:          numberutil.Round2(sales.Revenue),
			ProgressPercent:  progress,
		},
	}, nil
}

// GetDashboard summarizes the raffles owned by the caller.
func (d *statisticDomain) GetDashboard(
	ctx context.Context, req *model.GetDashboardRequest,
) (*model.GetDashboardResponse, error) {
	raffles, err := d.raffleRepo.GetByOwnerID(ctx, xcontext.RequestUserID(ctx))
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get owned raffles: %v", err)
		return nil, errorx.Unknown
	}

	resp := &model.GetDashboardResponse{
		TotalRaffles: len(raffles),
		RecentSales:  []model.DashboardSale{},
	}

	if len(raffles) == 0 {
		return resp, nil
	}

	raffleTitles := map[string]string{}
	raffleIDs := make([]string, 0, len(raffles))
	for i := range raffles {
		raffleIDs = append(raffleIDs, raffles[i].ID)
		raffleTitles[raffles[i].ID] = raffles[i].Title

		if raffles[i].Status == entity.RaffleActive {
			resp.ActiveRaffles++
		}
	}

	for _, id := range raffleIDs {
		sales, err := d.ticketRepo.AggregateSales(ctx, id)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot aggregate sales: %v", err)
			return nil, errorx.Unknown
		}

		resp.SoldTickets += sales.SoldTickets
		resp.Revenue += sales.Revenue
	}
	resp.Revenue = numberutil.Round2(resp.Revenue)

	recentTickets, err := d.ticketRepo.GetRecentPaid(ctx, raffleIDs, 10)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get recent sales: %v", err)
		return nil, errorx.Unknown
	}

	customerIDs := make([]string, 0, len(recentTickets))
	for i := range recentTickets {
		customerIDs = append(customerIDs, recentTickets[i].UserID)
	}

	customers, err := d.userRepo.GetByIDs(ctx, customerIDs)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get customers: %v", err)
		return nil, errorx.Unknown
	}

	customerNames := map[string]string{}
	for i := range customers {
		customerNames[customers[i].ID] = customers[i].Name
	}

	for i := range recentTickets {
		ticket := &recentTickets[i]

		soldAt := ""
		if ticket.PaymentDate.Valid {
			soldAt = formatTime(ticket.PaymentDate.Time)
		}

		resp.RecentSales = append(resp.RecentSales, model.DashboardSale{
			RaffleTitle: raffleTitles[ticket.RaffleID],
			Customer:    customerNames[ticket.UserID],
			Quantity:    ticket.Quantity,
			Amount:      ticket.TotalAmount,
			SoldAt:      soldAt,
		})
	}

	return resp, nil
}

// RecomputeRaffle writes the aggregated counters back to the raffle row. The
// reconciliation job calls this for every raffle to repair drift left behind
// by failed best effort updates.
func (d *statisticDomain) RecomputeRaffle(ctx context.Context, raffleID string) error {
	sales, err := d.ticketRepo.AggregateSales(ctx, raffleID)
	if err != nil {
		return err
	}

	return d.raffleRepo.SetStatistics(ctx, raffleID, sales.SoldTickets, numberutil.Round2(sales.Revenue))
}
