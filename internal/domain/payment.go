package domain

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fatih/structs"
	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"
	"github.com/trabach-softwares/ouro-rifa-api/internal/common"
	"github.com/trabach-softwares/ouro-rifa-api/internal/entity"
	"github.com/trabach-softwares/ouro-rifa-api/internal/model"
	"github.com/trabach-softwares/ouro-rifa-api/internal/repository"
	"github.com/trabach-softwares/ouro-rifa-api/pkg/enum"
	"github.com/trabach-softwares/ouro-rifa-api/pkg/errorx"
	"github.com/trabach-softwares/ouro-rifa-api/pkg/xcontext"
	"github.com/trabach-softwares/ouro-rifa-api/pkg/xredis"
	"gorm.io/gorm"
)

type PaymentDomain interface {
	GeneratePix(ctx context.Context, req *model.GeneratePixRequest) (*model.GeneratePixResponse, error)
	Confirm(ctx context.Context, req *model.ConfirmPaymentRequest) (*model.ConfirmPaymentResponse, error)
	Get(ctx context.Context, req *model.GetPaymentRequest) (*model.GetPaymentResponse, error)
	GetMy(ctx context.Context, req *model.GetMyPaymentsRequest) (*model.GetMyPaymentsResponse, error)
	GetSales(ctx context.Context, req *model.GetSalesPaymentsRequest) (*model.GetSalesPaymentsResponse, error)
	GetAll(ctx context.Context, req *model.GetAllPaymentsRequest) (*model.GetAllPaymentsResponse, error)
}

type paymentDomain struct {
	paymentRepo  repository.PaymentRepository
	ticketRepo   repository.TicketRepository
	raffleRepo   repository.RaffleRepository
	userRepo     repository.UserRepository
	roleVerifier *common.GlobalRoleVerifier
	raffleLocker *common.RaffleLocker
	redisClient  xredis.Client
}

func NewPaymentDomain(
	paymentRepo repository.PaymentRepository,
	ticketRepo repository.TicketRepository,
	raffleRepo repository.RaffleRepository,
	userRepo repository.UserRepository,
	raffleLocker *common.RaffleLocker,
	redisClient xredis.Client,
) *paymentDomain {
	return &paymentDomain{
		paymentRepo:  paymentRepo,
		ticketRepo:   ticketRepo,
		raffleRepo:   raffleRepo,
		userRepo:     userRepo,
		roleVerifier: common.NewGlobalRoleVerifier(userRepo),
		raffleLocker: raffleLocker,
		redisClient:  redisClient,
	}
}

// pixInstrument is the document stored as the payment's pix_data.
type pixInstrument struct {
	Key        string  `structs:"key"`
	Amount     float64 `structs:"amount"`
	Identifier string  `structs:"identifier"`
	Payload    string  `structs:"payload"`
	QRCode     string  `structs:"qr_code"`
	ExpiresAt  string  `structs:"expires_at"`
}

// GeneratePix issues (or refreshes) the pix instrument of a pending ticket.
// Repeated calls reuse the open payment instead of stacking new ones.
func (d *paymentDomain) GeneratePix(
	ctx context.Context, req *model.GeneratePixRequest,
) (*model.GeneratePixResponse, error) {
	userID := xcontext.RequestUserID(ctx)

	ticket, err := d.ticketRepo.GetByID(ctx, req.TicketID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found ticket")
		}

		xcontext.Logger(ctx).Errorf("Cannot get ticket: %v", err)
		return nil, errorx.Unknown
	}

	if ticket.UserID != userID {
		return nil, errorx.New(errorx.PermissionDenied, "Permission denied")
	}

	if ticket.PaymentStatus != entity.TicketPending {
		return nil, errorx.New(errorx.InvalidPaymentState,
			"Ticket is %s, nothing to pay", ticket.PaymentStatus)
	}

	raffle, err := d.raffleRepo.GetByID(ctx, ticket.RaffleID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get raffle of ticket: %v", err)
		return nil, errorx.Unknown
	}

	pixKey := xcontext.Configs(ctx).Payment.DefaultPixKey
	owner, err := d.userRepo.GetByID(ctx, raffle.OwnerID)
	if err == nil && owner.PaymentSettings.PixKey != "" {
		pixKey = owner.PaymentSettings.PixKey
	}

	payment, err := d.paymentRepo.GetOpenByTicketID(ctx, ticket.ID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			xcontext.Logger(ctx).Errorf("Cannot get open payment: %v", err)
			return nil, errorx.Unknown
		}

		payment = &entity.Payment{
			Base:     entity.Base{ID: uuid.NewString()},
			TicketID: ticket.ID,
			UserID:   ticket.UserID,
			RaffleID: ticket.RaffleID,
			Amount:   ticket.TotalAmount,
			Method:   "pix",
			Status:   entity.PaymentPending,
		}

		if err := d.paymentRepo.Create(ctx, payment); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot create payment: %v", err)
			return nil, errorx.Unknown
		}
	}

	instrument, err := buildPixInstrument(ctx, pixKey, raffle, ticket)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot build pix instrument: %v", err)
		return nil, errorx.Unknown
	}

	pixData := entity.Map(structs.Map(instrument))
	if err := d.paymentRepo.UpdateInstrument(ctx, payment.ID, ticket.TotalAmount, pixData); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot update payment instrument: %v", err)
		return nil, errorx.Unknown
	}

	payment, err = d.paymentRepo.GetByID(ctx, payment.ID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot reload payment: %v", err)
		return nil, errorx.Unknown
	}

	return &model.GeneratePixResponse{Payment: convertPayment(payment)}, nil
}

func buildPixInstrument(
	ctx context.Context, pixKey string, raffle *entity.Raffle, ticket *entity.Ticket,
) (*pixInstrument, error) {
	identifier := pixIdentifier(raffle.ID, ticket.ID)
	payload := fmt.Sprintf("PIX|%s|%.2f|%s|%s", pixKey, ticket.TotalAmount, identifier, raffle.Title)

	png, err := qrcode.Encode(payload, qrcode.Medium, 256)
	if err != nil {
		return nil, err
	}

	expiresAt := time.Now().Add(xcontext.Configs(ctx).Payment.PixExpiration)
	return &pixInstrument{
		Key:        pixKey,
		Amount:     ticket.TotalAmount,
		Identifier: identifier,
		Payload:    payload,
		QRCode:     base64.StdEncoding.EncodeToString(png),
		ExpiresAt:  expiresAt.Format(defaultTimeLayout),
	}, nil
}

func pixIdentifier(raffleID, ticketID string) string {
	short := func(s string) string {
		if len(s) > 4 {
			s = s[:4]
		}
		return s
	}

	return strings.ToUpper("RIFA" + short(raffleID) + short(ticketID))
}

// Confirm applies a payment confirmation exactly once. The id may reference
// the payment itself or its ticket; providers call back with whichever they
// were handed. Replays of an applied confirmation answer successfully with
// AlreadyConfirmed set instead of failing, but a confirmation can never move
// a cancelled reservation to paid.
func (d *paymentDomain) Confirm(
	ctx context.Context, req *model.ConfirmPaymentRequest,
) (*model.ConfirmPaymentResponse, error) {
	payment, ticket, err := d.resolveConfirmTarget(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if ticket.UserID != xcontext.RequestUserID(ctx) {
		if err := d.roleVerifier.Verify(ctx, entity.GlobalAdminRoles...); err != nil {
			return nil, errorx.New(errorx.PermissionDenied, "Permission denied")
		}
	}

	d.raffleLocker.Lock(ticket.RaffleID)
	defer d.raffleLocker.Unlock(ticket.RaffleID)

	if payment == nil {
		payment, err = d.createManualPayment(ctx, ticket)
		if err != nil {
			return nil, err
		}
	}

	if payment.Status == entity.PaymentCompleted {
		return &model.ConfirmPaymentResponse{
			Payment:          convertPayment(payment),
			Ticket:           convertTicket(ticket),
			AlreadyConfirmed: true,
		}, nil
	}

	if ticket.PaymentStatus == entity.TicketCancelled {
		return nil, errorx.New(errorx.InvalidPaymentState,
			"Cannot confirm a cancelled reservation")
	}

	transactionID := req.TransactionID
	if transactionID == "" {
		transactionID = uuid.NewString()
	}

	alreadyConfirmed, err := d.applyConfirmation(ctx, payment, ticket, transactionID)
	if err != nil {
		return nil, err
	}

	if !alreadyConfirmed {
		d.applyAggregates(ctx, ticket)
	}

	payment, err = d.paymentRepo.GetByID(ctx, payment.ID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot reload payment: %v", err)
		return nil, errorx.Unknown
	}

	ticket, err = d.ticketRepo.GetByID(ctx, ticket.ID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot reload ticket: %v", err)
		return nil, errorx.Unknown
	}

	return &model.ConfirmPaymentResponse{
		Payment:          convertPayment(payment),
		Ticket:           convertTicket(ticket),
		AlreadyConfirmed: alreadyConfirmed,
	}, nil
}

// resolveConfirmTarget finds the payment and ticket behind a confirmation id
// without touching either. A ticket id that has no payment yet resolves to a
// nil payment, the caller creates one after the authorization checks.
func (d *paymentDomain) resolveConfirmTarget(
	ctx context.Context, id string,
) (*entity.Payment, *entity.Ticket, error) {
	payment, err := d.paymentRepo.GetByID(ctx, id)
	if err == nil {
		ticket, err := d.ticketRepo.GetByID(ctx, payment.TicketID)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot get ticket of payment: %v", err)
			return nil, nil, errorx.Unknown
		}

		return payment, ticket, nil
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		xcontext.Logger(ctx).Errorf("Cannot get payment: %v", err)
		return nil, nil, errorx.Unknown
	}

	ticket, err := d.ticketRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, errorx.New(errorx.NotFound, "Not found payment")
		}

		xcontext.Logger(ctx).Errorf("Cannot get ticket: %v", err)
		return nil, nil, errorx.Unknown
	}

	payment, err = d.paymentRepo.GetOpenByTicketID(ctx, ticket.ID)
	if err == nil {
		return payment, ticket, nil
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		xcontext.Logger(ctx).Errorf("Cannot get open payment: %v", err)
		return nil, nil, errorx.Unknown
	}

	// A completed payment means this confirmation is a replay.
	payment, err = d.paymentRepo.GetByTicketID(ctx, ticket.ID)
	if err == nil {
		return payment, ticket, nil
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		xcontext.Logger(ctx).Errorf("Cannot get latest payment: %v", err)
		return nil, nil, errorx.Unknown
	}

	return nil, ticket, nil
}

// createManualPayment backs a confirmation that arrived before GeneratePix
// was ever called for the ticket.
func (d *paymentDomain) createManualPayment(
	ctx context.Context, ticket *entity.Ticket,
) (*entity.Payment, error) {
	payment := &entity.Payment{
		Base:     entity.Base{ID: uuid.NewString()},
		TicketID: ticket.ID,
		UserID:   ticket.UserID,
		RaffleID: ticket.RaffleID,
		Amount:   ticket.TotalAmount,
		Method:   ticket.PaymentMethod,
		Status:   entity.PaymentProcessing,
	}

	if err := d.paymentRepo.Create(ctx, payment); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create payment: %v", err)
		return nil, errorx.Unknown
	}

	return payment, nil
}

// applyConfirmation moves the payment and its ticket in one transaction. The
// guarded updates make the pair transition at most once even when two
// confirmations race past the status reads above.
func (d *paymentDomain) applyConfirmation(
	ctx context.Context, payment *entity.Payment, ticket *entity.Ticket, transactionID string,
) (bool, error) {
	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	if err := d.paymentRepo.MarkCompleted(ctx, payment.ID, transactionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// The guard only skips completed and dead payments. Tell
			// them apart before answering a replay.
			current, err := d.paymentRepo.GetByID(ctx, payment.ID)
			if err != nil {
				xcontext.Logger(ctx).Errorf("Cannot reload payment: %v", err)
				return false, errorx.Unknown
			}

			if current.Status == entity.PaymentCompleted {
				return true, nil
			}

			return false, errorx.New(errorx.InvalidPaymentState,
				"Cannot confirm a %s payment", current.Status)
		}

		xcontext.Logger(ctx).Errorf("Cannot complete payment: %v", err)
		return false, errorx.Unknown
	}

	if err := d.ticketRepo.ConfirmPayment(ctx, ticket.ID, transactionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// The payment guard passed but the ticket one did not. A
			// paid ticket means another path already confirmed it.
			if ticket.PaymentStatus == entity.TicketPaid {
				xcontext.WithCommitDBTransaction(ctx)
				return true, nil
			}

			return false, errorx.New(errorx.InvalidPaymentState,
				"Cannot confirm a %s reservation", ticket.PaymentStatus)
		}

		xcontext.Logger(ctx).Errorf("Cannot confirm ticket: %v", err)
		return false, errorx.Unknown
	}

	xcontext.WithCommitDBTransaction(ctx)
	return false, nil
}

// applyAggregates folds a confirmed sale into the denormalized counters. They
// are best effort, the reconciliation job repairs any drift from the ticket
// table.
func (d *paymentDomain) applyAggregates(ctx context.Context, ticket *entity.Ticket) {
	err := d.raffleRepo.AddSold(ctx, ticket.RaffleID, ticket.Quantity, ticket.TotalAmount)
	if err != nil {
		xcontext.Logger(ctx).Warnf(
			"Cannot add sold counters of raffle %s, requires reconciliation: %v",
			ticket.RaffleID, err)
	}

	if err := d.userRepo.AddSpent(ctx, ticket.UserID, ticket.TotalAmount); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot add user spending: %v", err)
	}

	if d.redisClient != nil {
		err := d.redisClient.ZIncrBy(ctx, common.RedisKeyTopBuyers(), ticket.TotalAmount, ticket.UserID)
		if err != nil {
			xcontext.Logger(ctx).Warnf("Cannot update buyer leaderboard: %v", err)
		}
	}
}

func (d *paymentDomain) Get(
	ctx context.Context, req *model.GetPaymentRequest,
) (*model.GetPaymentResponse, error) {
	userID := xcontext.RequestUserID(ctx)

	payment, err := d.paymentRepo.GetByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found payment")
		}

		xcontext.Logger(ctx).Errorf("Cannot get payment: %v", err)
		return nil, errorx.Unknown
	}

	if payment.UserID != userID {
		raffle, err := d.raffleRepo.GetByID(ctx, payment.RaffleID)
		if err != nil || raffle.OwnerID != userID {
			if err := d.roleVerifier.Verify(ctx, entity.GlobalAdminRoles...); err != nil {
				return nil, errorx.New(errorx.PermissionDenied, "Permission denied")
			}
		}
	}

	return &model.GetPaymentResponse{Payment: convertPayment(payment)}, nil
}

func (d *paymentDomain) GetMy(
	ctx context.Context, req *model.GetMyPaymentsRequest,
) (*model.GetMyPaymentsResponse, error) {
	filter := repository.GetListPaymentFilter{UserID: xcontext.RequestUserID(ctx)}
	if req.Status != "" {
		status, err := enum.ToEnum[entity.PaymentStatus](req.Status)
		if err != nil {
			return nil, errorx.New(errorx.BadRequest, "Invalid status %s", req.Status)
		}

		filter.Status = status
	}

	payments, err := d.paymentRepo.GetList(ctx, filter)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get payments: %v", err)
		return nil, errorx.Unknown
	}

	converted, err := d.enrich(ctx, payments)
	if err != nil {
		return nil, err
	}

	return &model.GetMyPaymentsResponse{Payments: converted}, nil
}

// GetSales lists the payments received by the raffles the caller owns.
func (d *paymentDomain) GetSales(
	ctx context.Context, req *model.GetSalesPaymentsRequest,
) (*model.GetSalesPaymentsResponse, error) {
	raffles, err := d.raffleRepo.GetByOwnerID(ctx, xcontext.RequestUserID(ctx))
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get owned raffles: %v", err)
		return nil, errorx.Unknown
	}

	if len(raffles) == 0 {
		return &model.GetSalesPaymentsResponse{Payments: []model.Payment{}}, nil
	}

	raffleIDs := make([]string, 0, len(raffles))
	for i := range raffles {
		raffleIDs = append(raffleIDs, raffles[i].ID)
	}

	filter := repository.GetListPaymentFilter{RaffleIDs: raffleIDs}
	if req.Status != "" {
		status, err := enum.ToEnum[entity.PaymentStatus](req.Status)
		if err != nil {
			return nil, errorx.New(errorx.BadRequest, "Invalid status %s", req.Status)
		}

		filter.Status = status
	}

	payments, err := d.paymentRepo.GetList(ctx, filter)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get payments: %v", err)
		return nil, errorx.Unknown
	}

	converted, err := d.enrich(ctx, payments)
	if err != nil {
		return nil, err
	}

	return &model.GetSalesPaymentsResponse{Payments: converted}, nil
}

func (d *paymentDomain) GetAll(
	ctx context.Context, req *model.GetAllPaymentsRequest,
) (*model.GetAllPaymentsResponse, error) {
	if err := d.roleVerifier.Verify(ctx, entity.GlobalAdminRoles...); err != nil {
		return nil, errorx.New(errorx.PermissionDenied, "Permission denied")
	}

	filter := repository.GetListPaymentFilter{
		Offset: req.Offset,
		Limit:  req.Limit,
	}

	if req.Status != "" {
		status, err := enum.ToEnum[entity.PaymentStatus](req.Status)
		if err != nil {
			return nil, errorx.New(errorx.BadRequest, "Invalid status %s", req.Status)
		}

		filter.Status = status
	}

	payments, err := d.paymentRepo.GetList(ctx, filter)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get payments: %v", err)
		return nil, errorx.Unknown
	}

	converted, err := d.enrich(ctx, payments)
	if err != nil {
		return nil, err
	}

	return &model.GetAllPaymentsResponse{Payments: converted}, nil
}

// enrich attaches customer and raffle display data to a payment list.
func (d *paymentDomain) enrich(
	ctx context.Context, payments []entity.Payment,
) ([]model.Payment, error) {
	userIDs := make([]string, 0, len(payments))
	for i := range payments {
		userIDs = append(userIDs, payments[i].UserID)
	}

	users, err := d.userRepo.GetByIDs(ctx, userIDs)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get payment customers: %v", err)
		return nil, errorx.Unknown
	}

	userMap := map[string]*entity.User{}
	for i := range users {
		userMap[users[i].ID] = &users[i]
	}

	raffleSummaries := map[string]*model.RaffleSummary{}
	converted := []model.Payment{}
	for i := range payments {
		payment := convertPayment(&payments[i])

		if user, ok := userMap[payments[i].UserID]; ok {
			customer := convertShortUser(user)
			payment.Customer = &customer
		}

		summary, ok := raffleSummaries[payments[i].RaffleID]
		if !ok {
			raffle, err := d.raffleRepo.GetByID(ctx, payments[i].RaffleID)
			if err != nil {
				xcontext.Logger(ctx).Errorf("Cannot get raffle of payment: %v", err)
				return nil, errorx.Unknown
			}

			s := convertRaffleSummary(raffle)
			summary = &s
			raffleSummaries[payments[i].RaffleID] = summary
		}

		payment.Raffle = summary
		converted = append(converted, payment)
	}

	return converted, nil
}
