package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/trabach-softwares/ouro-rifa-api/internal/common"
	"github.com/trabach-softwares/ouro-rifa-api/internal/entity"
	"github.com/trabach-softwares/ouro-rifa-api/internal/model"
	"github.com/trabach-softwares/ouro-rifa-api/internal/repository"
	"github.com/trabach-softwares/ouro-rifa-api/pkg/errorx"
	"github.com/trabach-softwares/ouro-rifa-api/pkg/testutil"
	"github.com/trabach-softwares/ouro-rifa-api/pkg/xcontext"
)

func newTestTicketDomain() *ticketDomain {
	return NewTicketDomain(
		repository.NewTicketRepository(),
		repository.NewRaffleRepository(),
		repository.NewUserRepository(),
		repository.NewPaymentRepository(),
		common.NewRaffleLocker(),
	)
}

func Test_ticketDomain_BuyTickets(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.User2.ID)
	testutil.CreateFixture(ctx)
	ticketDomain := newTestTicketDomain()

	resp, err := ticketDomain.BuyTickets(ctx, &model.BuyTicketsRequest{
		RaffleID:      testutil.Raffle1.ID,
		Quantity:      3,
		PaymentMethod: "pix",
	})
	require.NoError(t, err)
	require.Equal(t, "payment", resp.NextStep)
	require.Equal(t, 3, resp.Ticket.Quantity)
	require.Len(t, resp.Ticket.TicketNumbers, 3)
	require.Equal(t, 15.0, resp.Ticket.TotalAmount)
	require.Equal(t, string(entity.TicketPending), resp.Ticket.PaymentStatus)

	seen := map[string]bool{}
	for _, number := range resp.Ticket.TicketNumbers {
		require.Len(t, number, 4)
		require.False(t, seen[number])
		seen[number] = true
	}
}

func Test_ticketDomain_BuyTickets_notActive(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.User2.ID)
	testutil.CreateFixture(ctx)
	ticketDomain := newTestTicketDomain()

	_, err := ticketDomain.BuyTickets(ctx, &model.BuyTicketsRequest{
		RaffleID: testutil.Raffle2.ID,
		Quantity: 1,
	})
	require.Error(t, err)

	var errx errorx.Error
	require.True(t, errors.As(err, &errx))
	require.Equal(t, errorx.BadRequest, errx.Code)
}

func Test_ticketDomain_BuyTickets_insufficientSupply(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.User2.ID)
	testutil.CreateFixture(ctx)

	// A raffle with only 7 numbers left.
	raffleRepo := repository.NewRaffleRepository()
	require.NoError(t, raffleRepo.Create(ctx, &entity.Raffle{
		Base:         entity.Base{ID: "small_raffle"},
		OwnerID:      testutil.User1.ID,
		Title:        "Small",
		TicketPrice:  1,
		TotalTickets: 7,
		Status:       entity.RaffleActive,
	}))

	ticketDomain := newTestTicketDomain()
	_, err := ticketDomain.BuyTickets(ctx, &model.BuyTicketsRequest{
		RaffleID: "small_raffle",
		Quantity: 8,
	})
	require.Error(t, err)

	var errx errorx.Error
	require.True(t, errors.As(err, &errx))
	require.Equal(t, errorx.InsufficientSupply, errx.Code)
	require.Equal(t, "Not enough tickets, 7 available", errx.Message)
}

func Test_ticketDomain_BuyTickets_perPersonLimit(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.User2.ID)
	testutil.CreateFixture(ctx)
	ticketDomain := newTestTicketDomain()

	// Raffle1 caps at 10 tickets per person.
	_, err := ticketDomain.BuyTickets(ctx, &model.BuyTicketsRequest{
		RaffleID: testutil.Raffle1.ID,
		Quantity: 8,
	})
	require.NoError(t, err)

	_, err = ticketDomain.BuyTickets(ctx, &model.BuyTicketsRequest{
		RaffleID: testutil.Raffle1.ID,
		Quantity: 3,
	})
	require.Error(t, err)

	var errx errorx.Error
	require.True(t, errors.As(err, &errx))
	require.Equal(t, errorx.PerPersonLimitExceeded, errx.Code)

	// Up to the cap is still fine.
	_, err = ticketDomain.BuyTickets(ctx, &model.BuyTicketsRequest{
		RaffleID: testutil.Raffle1.ID,
		Quantity: 2,
	})
	require.NoError(t, err)
}

func Test_ticketDomain_BuyTickets_disjointAcrossBuyers(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixture(ctx)
	ticketDomain := newTestTicketDomain()

	seen := map[string]bool{}
	for _, userID := range []string{testutil.User1.ID, testutil.User2.ID, testutil.Admin.ID} {
		userCtx := xcontext.WithRequestUserID(ctx, userID)
		resp, err := ticketDomain.BuyTickets(userCtx, &model.BuyTicketsRequest{
			RaffleID: testutil.Raffle1.ID,
			Quantity: 10,
		})
		require.NoError(t, err)

		for _, number := range resp.Ticket.TicketNumbers {
			require.False(t, seen[number], "number %s allocated twice", number)
			seen[number] = true
		}
	}

	require.Len(t, seen, 30)
}

func Test_ticketDomain_Cancel(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.User2.ID)
	testutil.CreateFixture(ctx)
	ticketDomain := newTestTicketDomain()

	buyResp, err := ticketDomain.BuyTickets(ctx, &model.BuyTicketsRequest{
		RaffleID: testutil.Raffle1.ID,
		Quantity: 2,
	})
	require.NoError(t, err)

	cancelResp, err := ticketDomain.Cancel(ctx, &model.CancelTicketRequest{ID: buyResp.Ticket.ID})
	require.NoError(t, err)
	require.Equal(t, string(entity.TicketCancelled), cancelResp.Ticket.PaymentStatus)

	// A cancelled ticket cannot be cancelled again.
	_, err = ticketDomain.Cancel(ctx, &model.CancelTicketRequest{ID: buyResp.Ticket.ID})
	require.Error(t, err)

	var errx errorx.Error
	require.True(t, errors.As(err, &errx))
	require.Equal(t, errorx.InvalidPaymentState, errx.Code)
}

func Test_ticketDomain_Cancel_releasesNumbers(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.User2.ID)
	testutil.CreateFixture(ctx)

	raffleRepo := repository.NewRaffleRepository()
	require.NoError(t, raffleRepo.Create(ctx, &entity.Raffle{
		Base:         entity.Base{ID: "tiny_raffle"},
		OwnerID:      testutil.User1.ID,
		Title:        "Tiny",
		TicketPrice:  1,
		TotalTickets: 2,
		Status:       entity.RaffleActive,
	}))

	ticketDomain := newTestTicketDomain()
	buyResp, err := ticketDomain.BuyTickets(ctx, &model.BuyTicketsRequest{
		RaffleID: "tiny_raffle",
		Quantity: 2,
	})
	require.NoError(t, err)

	_, err = ticketDomain.BuyTickets(ctx, &model.BuyTicketsRequest{
		RaffleID: "tiny_raffle",
		Quantity: 1,
	})
	require.Error(t, err)

	_, err = ticketDomain.Cancel(ctx, &model.CancelTicketRequest{ID: buyResp.Ticket.ID})
	require.NoError(t, err)

	resp, err := ticketDomain.BuyTickets(ctx, &model.BuyTicketsRequest{
		RaffleID: "tiny_raffle",
		Quantity: 2,
	})
	require.NoError(t, err)
	require.Len(t, resp.Ticket.TicketNumbers, 2)
}

func Test_ticketDomain_GetMy(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.User2.ID)
	testutil.CreateFixture(ctx)
	ticketDomain := newTestTicketDomain()

	_, err := ticketDomain.BuyTickets(ctx, &model.BuyTicketsRequest{
		RaffleID: testutil.Raffle1.ID,
		Quantity: 2,
	})
	require.NoError(t, err)

	resp, err := ticketDomain.GetMy(ctx, &model.GetMyTicketsRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Tickets, 1)
	require.NotNil(t, resp.Tickets[0].RaffleInfo)
	require.Equal(t, testutil.Raffle1.Title, resp.Tickets[0].RaffleInfo.Title)

	// Another user sees nothing.
	otherCtx := xcontext.WithRequestUserID(ctx, testutil.User1.ID)
	otherResp, err := ticketDomain.GetMy(otherCtx, &model.GetMyTicketsRequest{})
	require.NoError(t, err)
	require.Empty(t, otherResp.Tickets)
}
