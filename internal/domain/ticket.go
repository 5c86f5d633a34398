package domain

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/trabach-softwares/ouro-rifa-api/internal/common"
	"github.com/trabach-softwares/ouro-rifa-api/internal/domain/ticketnum"
	"github.com/trabach-softwares/ouro-rifa-api/internal/entity"
	"github.com/trabach-softwares/ouro-rifa-api/internal/model"
	"github.com/trabach-softwares/ouro-rifa-api/internal/repository"
	"github.com/trabach-softwares/ouro-rifa-api/pkg/enum"
	"github.com/trabach-softwares/ouro-rifa-api/pkg/errorx"
	"github.com/trabach-softwares/ouro-rifa-api/pkg/numberutil"
	"github.com/trabach-softwares/ouro-rifa-api/pkg/xcontext"
	"golang.org/x/exp/slices"
	"gorm.io/gorm"
)

type TicketDomain interface {
	BuyTickets(ctx context.Context, req *model.BuyTicketsRequest) (*model.BuyTicketsResponse, error)
	Cancel(ctx context.Context, req *model.CancelTicketRequest) (*model.CancelTicketResponse, error)
	Get(ctx context.Context, req *model.GetTicketRequest) (*model.GetTicketResponse, error)
	GetMy(ctx context.Context, req *model.GetMyTicketsRequest) (*model.GetMyTicketsResponse, error)
}

type ticketDomain struct {
	ticketRepo   repository.TicketRepository
	raffleRepo   repository.RaffleRepository
	userRepo     repository.UserRepository
	paymentRepo  repository.PaymentRepository
	raffleLocker *common.RaffleLocker
}

func NewTicketDomain(
	ticketRepo repository.TicketRepository,
	raffleRepo repository.RaffleRepository,
	userRepo repository.UserRepository,
	paymentRepo repository.PaymentRepository,
	raffleLocker *common.RaffleLocker,
) *ticketDomain {
	return &ticketDomain{
		ticketRepo:   ticketRepo,
		raffleRepo:   raffleRepo,
		userRepo:     userRepo,
		paymentRepo:  paymentRepo,
		raffleLocker: raffleLocker,
	}
}

// BuyTickets reserves numbers for the caller. The raffle lock serializes
// allocation, so two concurrent purchases can never receive overlapping
// numbers. The reservation stays pending until its payment is confirmed.
func (d *ticketDomain) BuyTickets(
	ctx context.Context, req *model.BuyTicketsRequest,
) (*model.BuyTicketsResponse, error) {
	userID := xcontext.RequestUserID(ctx)

	if req.Quantity <= 0 {
		return nil, errorx.New(errorx.BadRequest, "Quantity must be positive")
	}

	maxPerPurchase := xcontext.Configs(ctx).Raffle.MaxTicketsPerPurchase
	if maxPerPurchase > 0 && req.Quantity > maxPerPurchase {
		return nil, errorx.New(errorx.BadRequest,
			"Cannot buy more than %d tickets at once", maxPerPurchase)
	}

	d.raffleLocker.Lock(req.RaffleID)
	defer d.raffleLocker.Unlock(req.RaffleID)

	raffle, err := d.raffleRepo.GetByID(ctx, req.RaffleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found raffle")
		}

		xcontext.Logger(ctx).Errorf("Cannot get raffle: %v", err)
		return nil, errorx.Unknown
	}

	if raffle.Status != entity.RaffleActive {
		return nil, errorx.New(errorx.BadRequest, "Raffle is not open for purchase")
	}

	activeTickets, err := d.ticketRepo.GetActiveByRaffleID(ctx, req.RaffleID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get active tickets: %v", err)
		return nil, errorx.Unknown
	}

	taken := map[string]bool{}
	for _, ticket := range activeTickets {
		for _, number := range ticket.TicketNumbers {
			taken[number] = true
		}
	}

	available := ticketnum.Available(raffle.TotalTickets, taken)
	if len(available) < req.Quantity {
		return nil, errorx.New(errorx.InsufficientSupply,
			"Not enough tickets, %d available", len(available))
	}

	if raffle.MaxTicketsPerPerson > 0 {
		held, err := d.heldQuantity(ctx, req.RaffleID, userID)
		if err != nil {
			return nil, err
		}

		if held+req.Quantity > raffle.MaxTicketsPerPerson {
			return nil, errorx.New(errorx.PerPersonLimitExceeded,
				"Limit of %d tickets per person", raffle.MaxTicketsPerPerson)
		}
	}

	numbers, err := ticketnum.Pick(available, req.Quantity)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot pick ticket numbers: %v", err)
		return nil, errorx.Unknown
	}

	ticket := &entity.Ticket{
		Base:          entity.Base{ID: uuid.NewString()},
		RaffleID:      req.RaffleID,
		UserID:        userID,
		TicketNumbers: numbers,
		Quantity:      req.Quantity,
		TotalAmount:   numberutil.Round2(float64(req.Quantity) * raffle.TicketPrice),
		PaymentStatus: entity.TicketPending,
		PaymentMethod: req.PaymentMethod,
	}

	if err := d.ticketRepo.Create(ctx, ticket); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create ticket: %v", err)
		return nil, errorx.Unknown
	}

	return &model.BuyTicketsResponse{
		Ticket:   convertTicket(ticket),
		NextStep: "payment",
	}, nil
}

func (d *ticketDomain) heldQuantity(ctx context.Context, raffleID, userID string) (int, error) {
	held := 0
	for _, status := range []entity.TicketPaymentStatus{entity.TicketPending, entity.TicketPaid} {
		sum, err := d.ticketRepo.SumQuantity(ctx, raffleID, userID, status)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot sum ticket quantity: %v", err)
			return 0, errorx.Unknown
		}

		held += sum
	}

	return held, nil
}

// Cancel releases a pending reservation and voids its open payment.
func (d *ticketDomain) Cancel(
	ctx context.Context, req *model.CancelTicketRequest,
) (*model.CancelTicketResponse, error) {
	userID := xcontext.RequestUserID(ctx)

	ticket, err := d.ticketRepo.GetByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found ticket")
		}

		xcontext.Logger(ctx).Errorf("Cannot get ticket: %v", err)
		return nil, errorx.Unknown
	}

	if ticket.UserID != userID {
		if err := d.verifyAdmin(ctx, userID); err != nil {
			return nil, err
		}
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	if err := d.ticketRepo.Cancel(ctx, req.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.InvalidPaymentState,
				"Only pending tickets can be cancelled")
		}

		xcontext.Logger(ctx).Errorf("Cannot cancel ticket: %v", err)
		return nil, errorx.Unknown
	}

	if err := d.paymentRepo.CancelOpenByTicketID(ctx, req.ID); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot cancel open payment: %v", err)
		return nil, errorx.Unknown
	}

	xcontext.WithCommitDBTransaction(ctx)

	ticket, err = d.ticketRepo.GetByID(ctx, req.ID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot reload ticket: %v", err)
		return nil, errorx.Unknown
	}

	return &model.CancelTicketResponse{Ticket: convertTicket(ticket)}, nil
}

func (d *ticketDomain) Get(
	ctx context.Context, req *model.GetTicketRequest,
) (*model.GetTicketResponse, error) {
	userID := xcontext.RequestUserID(ctx)

	ticket, err := d.ticketRepo.GetByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found ticket")
		}

		xcontext.Logger(ctx).Errorf("Cannot get ticket: %v", err)
		return nil, errorx.Unknown
	}

	raffle, err := d.raffleRepo.GetByID(ctx, ticket.RaffleID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get raffle of ticket: %v", err)
		return nil, errorx.Unknown
	}

	if ticket.UserID != userID && raffle.OwnerID != userID {
		if err := d.verifyAdmin(ctx, userID); err != nil {
			return nil, err
		}
	}

	summary := convertRaffleSummary(raffle)
	return &model.GetTicketResponse{
		Ticket: convertTicket(ticket),
		Raffle: &summary,
	}, nil
}

func (d *ticketDomain) GetMy(
	ctx context.Context, req *model.GetMyTicketsRequest,
) (*model.GetMyTicketsResponse, error) {
	filter := repository.GetListTicketFilter{
		RaffleID: req.RaffleID,
		UserID:   xcontext.RequestUserID(ctx),
	}

	if req.Status != "" {
		status, err := enum.ToEnum[entity.TicketPaymentStatus](req.Status)
		if err != nil {
			return nil, errorx.New(errorx.BadRequest, "Invalid status %s", req.Status)
		}

		filter.Status = status
	}

	tickets, err := d.ticketRepo.GetList(ctx, filter)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get tickets: %v", err)
		return nil, errorx.Unknown
	}

	raffleSummaries := map[string]*model.RaffleSummary{}
	converted := []model.Ticket{}
	for i := range tickets {
		ticket := convertTicket(&tickets[i])

		summary, ok := raffleSummaries[tickets[i].RaffleID]
		if !ok {
			raffle, err := d.raffleRepo.GetByID(ctx, tickets[i].RaffleID)
			if err != nil {
				xcontext.Logger(ctx).Errorf("Cannot get raffle of ticket: %v", err)
				return nil, errorx.Unknown
			}

			s := convertRaffleSummary(raffle)
			summary = &s
			raffleSummaries[tickets[i].RaffleID] = summary
		}

		ticket.RaffleInfo = summary
		converted = append(converted, ticket)
	}

	return &model.GetMyTicketsResponse{Tickets: converted}, nil
}

func (d *ticketDomain) verifyAdmin(ctx context.Context, userID string) error {
	user, err := d.userRepo.GetByID(ctx, userID)
	if err != nil {
		return errorx.New(errorx.PermissionDenied, "Permission denied")
	}

	if !slices.Contains(entity.GlobalAdminRoles, user.Role) {
		return errorx.New(errorx.PermissionDenied, "Permission denied")
	}

	return nil
}
