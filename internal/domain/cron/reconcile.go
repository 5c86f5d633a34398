package cron

import (
	"context"
	"errors"
	"time"

	"github.com/trabach-softwares/ouro-rifa-api/internal/domain"
	"github.com/trabach-softwares/ouro-rifa-api/internal/entity"
	"github.com/trabach-softwares/ouro-rifa-api/internal/repository"
	"github.com/trabach-softwares/ouro-rifa-api/pkg/xcontext"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// ReconcileCronJob repairs drift between the ticket table and everything
// derived from it. Confirmation applies the payment and ticket transition
// atomically but updates the denormalized counters best effort afterwards, so
// the job recomputes every raffle and every buyer's lifetime spend from the
// paid tickets and rolls forward pending tickets whose payment already
// completed. It never rolls a paid ticket back.
type ReconcileCronJob struct {
	raffleRepo      repository.RaffleRepository
	ticketRepo      repository.TicketRepository
	paymentRepo     repository.PaymentRepository
	userRepo        repository.UserRepository
	statisticDomain domain.StatisticDomain
}

func NewReconcileCronJob(
	raffleRepo repository.RaffleRepository,
	ticketRepo repository.TicketRepository,
	paymentRepo repository.PaymentRepository,
	userRepo repository.UserRepository,
	statisticDomain domain.StatisticDomain,
) *ReconcileCronJob {
	return &ReconcileCronJob{
		raffleRepo:      raffleRepo,
		ticketRepo:      ticketRepo,
		paymentRepo:     paymentRepo,
		userRepo:        userRepo,
		statisticDomain: statisticDomain,
	}
}

func (job *ReconcileCronJob) Do(ctx context.Context) {
	raffles, err := job.raffleRepo.GetList(ctx, repository.GetListRaffleFilter{})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get raffles to reconcile: %v", err)
		return
	}

	g, groupCtx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	for i := range raffles {
		raffle := &raffles[i]
		g.Go(func() error {
			job.reconcileRaffle(groupCtx, raffle)
			return nil
		})
	}

	// Jobs never return an error, each raffle logs its own problems.
	_ = g.Wait()

	// Spending covers tickets rolled forward above, so it runs last.
	job.reconcileSpending(ctx)
}

// reconcileSpending recomputes every buyer's lifetime spend from their paid
// tickets. A lost best effort update after confirmation drifts the counter
// until this runs.
func (job *ReconcileCronJob) reconcileSpending(ctx context.Context) {
	spending, err := job.ticketRepo.AggregateSpending(ctx)
	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot aggregate buyer spending: %v", err)
		return
	}

	for _, row := range spending {
		if err := job.userRepo.SetSpent(ctx, row.UserID, row.TotalSpent); err != nil {
			xcontext.Logger(ctx).Warnf("Cannot set spending of user %s: %v", row.UserID, err)
		}
	}
}

func (job *ReconcileCronJob) reconcileRaffle(ctx context.Context, raffle *entity.Raffle) {
	pendingTickets, err := job.ticketRepo.GetList(ctx, repository.GetListTicketFilter{
		RaffleID: raffle.ID,
		Status:   entity.TicketPending,
	})
	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot get pending tickets of %s: %v", raffle.ID, err)
		return
	}

	for i := range pendingTickets {
		job.rollForward(ctx, &pendingTickets[i])
	}

	if err := job.statisticDomain.RecomputeRaffle(ctx, raffle.ID); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot recompute statistics of %s: %v", raffle.ID, err)
	}
}

// rollForward confirms a pending ticket whose payment already completed.
func (job *ReconcileCronJob) rollForward(ctx context.Context, ticket *entity.Ticket) {
	payment, err := job.paymentRepo.GetByTicketID(ctx, ticket.ID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			xcontext.Logger(ctx).Warnf("Cannot get payment of ticket %s: %v", ticket.ID, err)
		}
		return
	}

	if payment.Status != entity.PaymentCompleted {
		return
	}

	err = job.ticketRepo.ConfirmPayment(ctx, ticket.ID, payment.TransactionID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		xcontext.Logger(ctx).Warnf("Cannot roll forward ticket %s: %v", ticket.ID, err)
		return
	}

	if err == nil {
		xcontext.Logger(ctx).Infof("Rolled forward ticket %s of completed payment %s",
			ticket.ID, payment.ID)
	}
}

func (job *ReconcileCronJob) RunNow() bool {
	return true
}

func (job *ReconcileCronJob) Next() time.Time {
	return time.Now().Add(10 * time.Minute)
}
