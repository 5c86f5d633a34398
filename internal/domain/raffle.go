package domain

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/trabach-softwares/ouro-rifa-api/internal/common"
	"github.com/trabach-softwares/ouro-rifa-api/internal/domain/ticketnum"
	"github.com/trabach-softwares/ouro-rifa-api/internal/entity"
	"github.com/trabach-softwares/ouro-rifa-api/internal/model"
	"github.com/trabach-softwares/ouro-rifa-api/internal/repository"
	"github.com/trabach-softwares/ouro-rifa-api/pkg/enum"
	"github.com/trabach-softwares/ouro-rifa-api/pkg/errorx"
	"github.com/trabach-softwares/ouro-rifa-api/pkg/xcontext"
	"gorm.io/gorm"
)

type RaffleDomain interface {
	Create(ctx context.Context, req *model.CreateRaffleRequest) (*model.CreateRaffleResponse, error)
	Update(ctx context.Context, req *model.UpdateRaffleRequest) (*model.UpdateRaffleResponse, error)
	Delete(ctx context.Context, req *model.DeleteRaffleRequest) (*model.DeleteRaffleResponse, error)
	UpdateStatus(ctx context.Context, req *model.UpdateRaffleStatusRequest) (*model.UpdateRaffleStatusResponse, error)
	Get(ctx context.Context, req *model.GetRaffleRequest) (*model.GetRaffleResponse, error)
	GetList(ctx context.Context, req *model.GetRafflesRequest) (*model.GetRafflesResponse, error)
	GetMy(ctx context.Context, req *model.GetMyRafflesRequest) (*model.GetMyRafflesResponse, error)
	GetAll(ctx context.Context, req *model.GetAllRafflesRequest) (*model.GetAllRafflesResponse, error)
	Draw(ctx context.Context, req *model.DrawRaffleRequest) (*model.DrawRaffleResponse, error)
}

// completed and cancelled are terminal, and completed is only reachable
// through a draw.
var allowedStatusTransitions = map[entity.RaffleStatus][]entity.RaffleStatus{
	entity.RafflePending: {entity.RaffleActive, entity.RaffleCancelled},
	entity.RaffleActive:  {entity.RafflePaused, entity.RaffleCancelled},
	entity.RafflePaused:  {entity.RaffleActive, entity.RaffleCancelled},
}

type raffleDomain struct {
	raffleRepo    repository.RaffleRepository
	ticketRepo    repository.TicketRepository
	userRepo      repository.UserRepository
	ownerVerifier *common.RaffleOwnerVerifier
	roleVerifier  *common.GlobalRoleVerifier
	raffleLocker  *common.RaffleLocker
}

func NewRaffleDomain(
	raffleRepo repository.RaffleRepository,
	ticketRepo repository.TicketRepository,
	userRepo repository.UserRepository,
	raffleLocker *common.RaffleLocker,
) *raffleDomain {
	return &raffleDomain{
		raffleRepo:    raffleRepo,
		ticketRepo:    ticketRepo,
		userRepo:      userRepo,
		ownerVerifier: common.NewRaffleOwnerVerifier(raffleRepo, userRepo),
		roleVerifier:  common.NewGlobalRoleVerifier(userRepo),
		raffleLocker:  raffleLocker,
	}
}

func (d *raffleDomain) Create(
	ctx context.Context, req *model.CreateRaffleRequest,
) (*model.CreateRaffleResponse, error) {
	title := strings.TrimSpace(req.Title)
	if len(title) < 5 || len(title) > 100 {
		return nil, errorx.New(errorx.BadRequest, "Title must have between 5 and 100 characters")
	}

	description := strings.TrimSpace(req.Description)
	if len(description) < 10 || len(description) > 1000 {
		return nil, errorx.New(errorx.BadRequest,
			"Description must have between 10 and 1000 characters")
	}

	if req.TicketPrice <= 0 {
		return nil, errorx.New(errorx.BadRequest, "Ticket price must be positive")
	}

	cfg := xcontext.Configs(ctx).Raffle
	if req.TotalTickets < cfg.MinTickets || req.TotalTickets > cfg.MaxTickets {
		return nil, errorx.New(errorx.BadRequest,
			"Total tickets must be between %d and %d", cfg.MinTickets, cfg.MaxTickets)
	}

	if req.MaxTicketsPerPerson < 0 || req.MaxTicketsPerPerson > req.TotalTickets {
		return nil, errorx.New(errorx.BadRequest, "Invalid per person limit")
	}

	raffle := &entity.Raffle{
		Base:                entity.Base{ID: uuid.NewString()},
		OwnerID:             xcontext.RequestUserID(ctx),
		Title:               title,
		Description:         description,
		Image:               req.Image,
		Category:            req.Category,
		TicketPrice:         req.TicketPrice,
		TotalTickets:        req.TotalTickets,
		Status:              entity.RafflePending,
		StartDate:           time.Now(),
		MaxTicketsPerPerson: req.MaxTicketsPerPerson,
	}

	if req.EndDate != "" {
		endDate, err := time.Parse(defaultTimeLayout, req.EndDate)
		if err != nil {
			return nil, errorx.New(errorx.BadRequest, "Invalid end date")
		}

		raffle.EndDate = sql.NullTime{Time: endDate, Valid: true}
	}

	if err := d.raffleRepo.Create(ctx, raffle); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create raffle: %v", err)
		return nil, errorx.Unknown
	}

	owner, err := d.userRepo.GetByID(ctx, raffle.OwnerID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get raffle owner: %v", err)
		return nil, errorx.Unknown
	}

	return &model.CreateRaffleResponse{Raffle: convertRaffle(raffle, owner, nil)}, nil
}

func (d *raffleDomain) Update(
	ctx context.Context, req *model.UpdateRaffleRequest,
) (*model.UpdateRaffleResponse, error) {
	if err := d.ownerVerifier.Verify(ctx, req.ID); err != nil {
		return nil, errorx.New(errorx.PermissionDenied, "Permission denied")
	}

	raffle, err := d.raffleRepo.GetByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found raffle")
		}

		xcontext.Logger(ctx).Errorf("Cannot get raffle: %v", err)
		return nil, errorx.Unknown
	}

	if raffle.Status == entity.RaffleCompleted || raffle.Status == entity.RaffleCancelled {
		return nil, errorx.New(errorx.BadRequest, "Raffle can no longer be updated")
	}

	update := entity.Raffle{
		Title:       req.Title,
		Description: req.Description,
		Image:       req.Image,
		Category:    req.Category,
	}

	if req.TicketPrice != nil {
		if raffle.SoldTickets > 0 {
			return nil, errorx.New(errorx.BadRequest, "Cannot change price after tickets were sold")
		}

		if *req.TicketPrice <= 0 {
			return nil, errorx.New(errorx.BadRequest, "Ticket price must be positive")
		}

		update.TicketPrice = *req.TicketPrice
	}

	if req.TotalTickets != nil {
		heldTickets, err := d.ticketRepo.GetActiveByRaffleID(ctx, req.ID)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot get raffle tickets: %v", err)
			return nil, errorx.Unknown
		}

		if raffle.SoldTickets > 0 || len(heldTickets) > 0 {
			return nil, errorx.New(errorx.BadRequest,
				"Cannot change total tickets after tickets were sold")
		}

		cfg := xcontext.Configs(ctx).Raffle
		if *req.TotalTickets < cfg.MinTickets || *req.TotalTickets > cfg.MaxTickets {
			return nil, errorx.New(errorx.BadRequest,
				"Total tickets must be between %d and %d", cfg.MinTickets, cfg.MaxTickets)
		}

		update.TotalTickets = *req.TotalTickets
	}

	if req.MaxTicketsPerPerson != nil {
		update.MaxTicketsPerPerson = *req.MaxTicketsPerPerson
	}

	if req.EndDate != "" {
		endDate, err := time.Parse(defaultTimeLayout, req.EndDate)
		if err != nil {
			return nil, errorx.New(errorx.BadRequest, "Invalid end date")
		}

		update.EndDate = sql.NullTime{Time: endDate, Valid: true}
	}

	if err := d.raffleRepo.UpdateByID(ctx, req.ID, update); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot update raffle: %v", err)
		return nil, errorx.Unknown
	}

	raffle, err = d.raffleRepo.GetByID(ctx, req.ID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot reload raffle: %v", err)
		return nil, errorx.Unknown
	}

	converted, err := d.convertWithUsers(ctx, raffle)
	if err != nil {
		return nil, err
	}

	return &model.UpdateRaffleResponse{Raffle: *converted}, nil
}

func (d *raffleDomain) Delete(
	ctx context.Context, req *model.DeleteRaffleRequest,
) (*model.DeleteRaffleResponse, error) {
	if err := d.ownerVerifier.Verify(ctx, req.ID); err != nil {
		return nil, errorx.New(errorx.PermissionDenied, "Permission denied")
	}

	raffle, err := d.raffleRepo.GetByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found raffle")
		}

		xcontext.Logger(ctx).Errorf("Cannot get raffle: %v", err)
		return nil, errorx.Unknown
	}

	if raffle.SoldTickets > 0 {
		return nil, errorx.New(errorx.BadRequest, "Cannot delete a raffle with sold tickets")
	}

	if err := d.raffleRepo.DeleteByID(ctx, req.ID); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot delete raffle: %v", err)
		return nil, errorx.Unknown
	}

	return &model.DeleteRaffleResponse{}, nil
}

func (d *raffleDomain) UpdateStatus(
	ctx context.Context, req *model.UpdateRaffleStatusRequest,
) (*model.UpdateRaffleStatusResponse, error) {
	if err := d.ownerVerifier.Verify(ctx, req.ID); err != nil {
		return nil, errorx.New(errorx.PermissionDenied, "Permission denied")
	}

	newStatus, err := enum.ToEnum[entity.RaffleStatus](req.Status)
	if err != nil {
		return nil, errorx.New(errorx.BadRequest, "Invalid status %s", req.Status)
	}

	raffle, err := d.raffleRepo.GetByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found raffle")
		}

		xcontext.Logger(ctx).Errorf("Cannot get raffle: %v", err)
		return nil, errorx.Unknown
	}

	allowed := false
	for _, status := range allowedStatusTransitions[raffle.Status] {
		if status == newStatus {
			allowed = true
			break
		}
	}

	if !allowed {
		return nil, errorx.New(errorx.BadRequest,
			"Cannot change status from %s to %s", raffle.Status, newStatus)
	}

	if newStatus == entity.RaffleActive && !raffle.EndDate.Valid {
		return nil, errorx.New(errorx.BadRequest, "An end date is required before activation")
	}

	if err := d.raffleRepo.UpdateStatus(ctx, req.ID, newStatus); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot update raffle status: %v", err)
		return nil, errorx.Unknown
	}

	raffle, err = d.raffleRepo.GetByID(ctx, req.ID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot reload raffle: %v", err)
		return nil, errorx.Unknown
	}

	converted, err := d.convertWithUsers(ctx, raffle)
	if err != nil {
		return nil, err
	}

	return &model.UpdateRaffleStatusResponse{Raffle: *converted}, nil
}

func (d *raffleDomain) Get(
	ctx context.Context, req *model.GetRaffleRequest,
) (*model.GetRaffleResponse, error) {
	raffle, err := d.raffleRepo.GetByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found raffle")
		}

		xcontext.Logger(ctx).Errorf("Cannot get raffle: %v", err)
		return nil, errorx.Unknown
	}

	converted, err := d.convertWithUsers(ctx, raffle)
	if err != nil {
		return nil, err
	}

	return &model.GetRaffleResponse{
		Raffle:     *converted,
		Statistics: raffleStatistics(raffle),
	}, nil
}

func (d *raffleDomain) GetList(
	ctx context.Context, req *model.GetRafflesRequest,
) (*model.GetRafflesResponse, error) {
	filter := repository.GetListRaffleFilter{
		Search: req.Search,
		Offset: req.Offset,
		Limit:  req.Limit,
	}

	if req.Status != "" {
		status, err := enum.ToEnum[entity.RaffleStatus](req.Status)
		if err != nil {
			return nil, errorx.New(errorx.BadRequest, "Invalid status %s", req.Status)
		}

		filter.Status = status
	} else {
		// The public listing only shows raffles open for purchase.
		filter.Status = entity.RaffleActive
	}

	raffles, err := d.raffleRepo.GetList(ctx, filter)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get raffles: %v", err)
		return nil, errorx.Unknown
	}

	converted, err := d.convertList(ctx, raffles)
	if err != nil {
		return nil, err
	}

	return &model.GetRafflesResponse{Raffles: converted}, nil
}

func (d *raffleDomain) GetMy(
	ctx context.Context, req *model.GetMyRafflesRequest,
) (*model.GetMyRafflesResponse, error) {
	raffles, err := d.raffleRepo.GetByOwnerID(ctx, xcontext.RequestUserID(ctx))
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get raffles: %v", err)
		return nil, errorx.Unknown
	}

	converted, err := d.convertList(ctx, raffles)
	if err != nil {
		return nil, err
	}

	return &model.GetMyRafflesResponse{Raffles: converted}, nil
}

func (d *raffleDomain) GetAll(
	ctx context.Context, req *model.GetAllRafflesRequest,
) (*model.GetAllRafflesResponse, error) {
	if err := d.roleVerifier.Verify(ctx, entity.GlobalAdminRoles...); err != nil {
		return nil, errorx.New(errorx.PermissionDenied, "Permission denied")
	}

	raffles, err := d.raffleRepo.GetList(ctx, repository.GetListRaffleFilter{
		Offset: req.Offset,
		Limit:  req.Limit,
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get raffles: %v", err)
		return nil, errorx.Unknown
	}

	converted, err := d.convertList(ctx, raffles)
	if err != nil {
		return nil, err
	}

	return &model.GetAllRafflesResponse{Raffles: converted}, nil
}

// Draw picks the winner uniformly over every sold number, so the chance of a
// ticket is proportional to how many numbers it holds. The winner columns are
// guarded by a conditional update, a raffle can never be drawn twice.
func (d *raffleDomain) Draw(
	ctx context.Context, req *model.DrawRaffleRequest,
) (*model.DrawRaffleResponse, error) {
	if err := d.ownerVerifier.Verify(ctx, req.ID); err != nil {
		return nil, errorx.New(errorx.PermissionDenied, "Permission denied")
	}

	d.raffleLocker.Lock(req.ID)
	defer d.raffleLocker.Unlock(req.ID)

	raffle, err := d.raffleRepo.GetByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found raffle")
		}

		xcontext.Logger(ctx).Errorf("Cannot get raffle: %v", err)
		return nil, errorx.Unknown
	}

	if raffle.Status == entity.RaffleCompleted || raffle.WinnerUserID.Valid {
		return nil, errorx.New(errorx.AlreadyDrawn, "Raffle was already drawn")
	}

	if raffle.Status != entity.RaffleActive {
		return nil, errorx.New(errorx.BadRequest, "Raffle is not active")
	}

	paidTickets, err := d.ticketRepo.GetList(ctx, repository.GetListTicketFilter{
		RaffleID: req.ID,
		Status:   entity.TicketPaid,
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get paid tickets: %v", err)
		return nil, errorx.Unknown
	}

	pool := make([]ticketnum.PoolEntry, 0, len(paidTickets))
	for _, ticket := range paidTickets {
		pool = append(pool, ticketnum.PoolEntry{
			TicketID: ticket.ID,
			UserID:   ticket.UserID,
			Numbers:  ticket.TicketNumbers,
		})
	}

	winner, err := ticketnum.Draw(pool)
	if err != nil {
		return nil, errorx.New(errorx.BadRequest, "No paid tickets to draw from")
	}

	if err := d.raffleRepo.SetWinner(ctx, req.ID, winner.UserID, winner.Number); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.AlreadyDrawn, "Raffle was already drawn")
		}

		xcontext.Logger(ctx).Errorf("Cannot set raffle winner: %v", err)
		return nil, errorx.Unknown
	}

	if err := d.ticketRepo.MarkAsWinner(ctx, winner.TicketID); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot mark winning ticket: %v", err)
	}

	raffle, err = d.raffleRepo.GetByID(ctx, req.ID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot reload raffle: %v", err)
		return nil, errorx.Unknown
	}

	winnerUser, err := d.userRepo.GetByID(ctx, winner.UserID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get winner user: %v", err)
		return nil, errorx.Unknown
	}

	converted, err := d.convertWithUsers(ctx, raffle)
	if err != nil {
		return nil, err
	}

	return &model.DrawRaffleResponse{
		Raffle: *converted,
		Winner: model.DrawWinner{
			User:         convertShortUser(winnerUser),
			TicketNumber: winner.Number,
		},
	}, nil
}

func (d *raffleDomain) convertWithUsers(
	ctx context.Context, raffle *entity.Raffle,
) (*model.Raffle, error) {
	owner, err := d.userRepo.GetByID(ctx, raffle.OwnerID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get raffle owner: %v", err)
		return nil, errorx.Unknown
	}

	var winner *entity.User
	if raffle.WinnerUserID.Valid {
		winner, err = d.userRepo.GetByID(ctx, raffle.WinnerUserID.String)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot get raffle winner: %v", err)
			return nil, errorx.Unknown
		}
	}

	converted := convertRaffle(raffle, owner, winner)
	return &converted, nil
}

func (d *raffleDomain) convertList(
	ctx context.Context, raffles []entity.Raffle,
) ([]model.Raffle, error) {
	ownerIDs := make([]string, 0, len(raffles))
	for i := range raffles {
		ownerIDs = append(ownerIDs, raffles[i].OwnerID)
	}

	owners, err := d.userRepo.GetByIDs(ctx, ownerIDs)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get raffle owners: %v", err)
		return nil, errorx.Unknown
	}

	ownerMap := map[string]*entity.User{}
	for i := range owners {
		ownerMap[owners[i].ID] = &owners[i]
	}

	converted := []model.Raffle{}
	for i := range raffles {
		converted = append(converted, convertRaffle(&raffles[i], ownerMap[raffles[i].OwnerID], nil))
	}

	return converted, nil
}
