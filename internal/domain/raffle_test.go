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

func newTestRaffleDomain() *raffleDomain {
	return NewRaffleDomain(
		repository.NewRaffleRepository(),
		repository.NewTicketRepository(),
		repository.NewUserRepository(),
		common.NewRaffleLocker(),
	)
}

func Test_raffleDomain_Create(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.User1.ID)
	testutil.CreateFixture(ctx)
	raffleDomain := newTestRaffleDomain()

	resp, err := raffleDomain.Create(ctx, &model.CreateRaffleRequest{
		Title:        "Weekend Getaway",
		Description:  "Two nights for two",
		TicketPrice:  10,
		TotalTickets: 200,
	})
	require.NoError(t, err)
	require.Equal(t, "Weekend Getaway", resp.Raffle.Title)
	require.Equal(t, string(entity.RafflePending), resp.Raffle.Status)
	require.Equal(t, testutil.User1.ID, resp.Raffle.Owner.ID)
	require.Equal(t, 0, resp.Raffle.SoldTickets)
	require.NotEmpty(t, resp.Raffle.StartDate)
}

func Test_raffleDomain_Create_invalid(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.User1.ID)
	testutil.CreateFixture(ctx)
	raffleDomain := newTestRaffleDomain()

	valid := model.CreateRaffleRequest{
		Title:        "Weekend Getaway",
		Description:  "Two nights for two",
		TicketPrice:  1,
		TotalTickets: 100,
	}

	testcases := []struct {
		name   string
		modify func(req *model.CreateRaffleRequest)
	}{
		{
			name:   "short title",
			modify: func(req *model.CreateRaffleRequest) { req.Title = "x" },
		},
		{
			name:   "short description",
			modify: func(req *model.CreateRaffleRequest) { req.Description = "short" },
		},
		{
			name:   "non positive price",
			modify: func(req *model.CreateRaffleRequest) { req.TicketPrice = 0 },
		},
		{
			name:   "too few tickets",
			modify: func(req *model.CreateRaffleRequest) { req.TotalTickets = 5 },
		},
		{
			name:   "too many tickets",
			modify: func(req *model.CreateRaffleRequest) { req.TotalTickets = 20000 },
		},
		{
			name:   "per person cap above total",
			modify: func(req *model.CreateRaffleRequest) { req.MaxTicketsPerPerson = 101 },
		},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			req := valid
			tc.modify(&req)

			_, err := raffleDomain.Create(ctx, &req)
			require.Error(t, err)

			var errx errorx.Error
			require.True(t, errors.As(err, &errx))
			require.Equal(t, errorx.BadRequest, errx.Code)
		})
	}
}

func Test_raffleDomain_UpdateStatus(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.User1.ID)
	testutil.CreateFixture(ctx)
	raffleDomain := newTestRaffleDomain()

	// Raffle2 starts pending; activate, pause, resume, cancel.
	for _, status := range []entity.RaffleStatus{
		entity.RaffleActive,
		entity.RafflePaused,
		entity.RaffleActive,
		entity.RaffleCancelled,
	} {
		resp, err := raffleDomain.UpdateStatus(ctx, &model.UpdateRaffleStatusRequest{
			ID:     testutil.Raffle2.ID,
			Status: string(status),
		})
		require.NoError(t, err)
		require.Equal(t, string(status), resp.Raffle.Status)
	}

	// Cancelled is terminal.
	_, err := raffleDomain.UpdateStatus(ctx, &model.UpdateRaffleStatusRequest{
		ID:     testutil.Raffle2.ID,
		Status: string(entity.RaffleActive),
	})
	require.Error(t, err)

	var errx errorx.Error
	require.True(t, errors.As(err, &errx))
	require.Equal(t, errorx.BadRequest, errx.Code)
}

func Test_raffleDomain_UpdateStatus_cannotComplete(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.User1.ID)
	testutil.CreateFixture(ctx)
	raffleDomain := newTestRaffleDomain()

	// Completion happens through the draw, never through a status update.
	_, err := raffleDomain.UpdateStatus(ctx, &model.UpdateRaffleStatusRequest{
		ID:     testutil.Raffle1.ID,
		Status: string(entity.RaffleCompleted),
	})
	require.Error(t, err)
}

func Test_raffleDomain_UpdateStatus_notOwner(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.User2.ID)
	testutil.CreateFixture(ctx)
	raffleDomain := newTestRaffleDomain()

	_, err := raffleDomain.UpdateStatus(ctx, &model.UpdateRaffleStatusRequest{
		ID:     testutil.Raffle1.ID,
		Status: string(entity.RafflePaused),
	})
	require.Error(t, err)

	var errx errorx.Error
	require.True(t, errors.As(err, &errx))
	require.Equal(t, errorx.PermissionDenied, errx.Code)

	// The admin can manage any raffle.
	adminCtx := xcontext.WithRequestUserID(ctx, testutil.Admin.ID)
	_, err = raffleDomain.UpdateStatus(adminCtx, &model.UpdateRaffleStatusRequest{
		ID:     testutil.Raffle1.ID,
		Status: string(entity.RafflePaused),
	})
	require.NoError(t, err)
}

func Test_raffleDomain_Update(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.User1.ID)
	testutil.CreateFixture(ctx)
	raffleDomain := newTestRaffleDomain()

	newPrice := 7.5
	resp, err := raffleDomain.Update(ctx, &model.UpdateRaffleRequest{
		ID:          testutil.Raffle1.ID,
		Title:       "Gold Bar Raffle v2",
		TicketPrice: &newPrice,
	})
	require.NoError(t, err)
	require.Equal(t, "Gold Bar Raffle v2", resp.Raffle.Title)
	require.Equal(t, 7.5, resp.Raffle.TicketPrice)
}

func Test_raffleDomain_Update_priceFrozenAfterSale(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.User2.ID)
	testutil.CreateFixture(ctx)
	raffleDomain := newTestRaffleDomain()

	ticket := buyFixtureTicket(t, ctx, 1)
	_, err := newTestPaymentDomain(nil).Confirm(ctx, &model.ConfirmPaymentRequest{ID: ticket.ID})
	require.NoError(t, err)

	ownerCtx := xcontext.WithRequestUserID(ctx, testutil.User1.ID)
	newPrice := 9.0
	_, err = raffleDomain.Update(ownerCtx, &model.UpdateRaffleRequest{
		ID:          testutil.Raffle1.ID,
		TicketPrice: &newPrice,
	})
	require.Error(t, err)

	var errx errorx.Error
	require.True(t, errors.As(err, &errx))
	require.Equal(t, errorx.BadRequest, errx.Code)

	// Other fields remain editable.
	_, err = raffleDomain.Update(ownerCtx, &model.UpdateRaffleRequest{
		ID:          testutil.Raffle1.ID,
		Description: "Now with one buyer",
	})
	require.NoError(t, err)
}

func Test_raffleDomain_Update_totalTicketsFrozenAfterSale(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.User2.ID)
	testutil.CreateFixture(ctx)
	raffleDomain := newTestRaffleDomain()

	// An open reservation already holds numbers, so it freezes the range too.
	buyFixtureTicket(t, ctx, 3)

	ownerCtx := xcontext.WithRequestUserID(ctx, testutil.User1.ID)
	newTotal := 500
	_, err := raffleDomain.Update(ownerCtx, &model.UpdateRaffleRequest{
		ID:           testutil.Raffle1.ID,
		TotalTickets: &newTotal,
	})
	require.Error(t, err)

	var errx errorx.Error
	require.True(t, errors.As(err, &errx))
	require.Equal(t, errorx.BadRequest, errx.Code)

	raffle, err := repository.NewRaffleRepository().GetByID(ctx, testutil.Raffle1.ID)
	require.NoError(t, err)
	require.Equal(t, testutil.Raffle1.TotalTickets, raffle.TotalTickets)

	// A raffle without any ticket can still be resized.
	_, err = raffleDomain.Update(ownerCtx, &model.UpdateRaffleRequest{
		ID:           testutil.Raffle2.ID,
		TotalTickets: &newTotal,
	})
	require.NoError(t, err)
}

func Test_raffleDomain_Delete(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.User1.ID)
	testutil.CreateFixture(ctx)
	raffleDomain := newTestRaffleDomain()

	_, err := raffleDomain.Delete(ctx, &model.DeleteRaffleRequest{ID: testutil.Raffle2.ID})
	require.NoError(t, err)

	_, err = repository.NewRaffleRepository().GetByID(ctx, testutil.Raffle2.ID)
	require.Error(t, err)
}

func Test_raffleDomain_Delete_blockedAfterSale(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.User2.ID)
	testutil.CreateFixture(ctx)
	raffleDomain := newTestRaffleDomain()

	ticket := buyFixtureTicket(t, ctx, 1)
	_, err := newTestPaymentDomain(nil).Confirm(ctx, &model.ConfirmPaymentRequest{ID: ticket.ID})
	require.NoError(t, err)

	ownerCtx := xcontext.WithRequestUserID(ctx, testutil.User1.ID)
	_, err = raffleDomain.Delete(ownerCtx, &model.DeleteRaffleRequest{ID: testutil.Raffle1.ID})
	require.Error(t, err)

	var errx errorx.Error
	require.True(t, errors.As(err, &errx))
	require.Equal(t, errorx.BadRequest, errx.Code)
}

func Test_raffleDomain_GetList_defaultsToActive(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixture(ctx)
	raffleDomain := newTestRaffleDomain()

	resp, err := raffleDomain.GetList(ctx, &model.GetRafflesRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Raffles, 1)
	require.Equal(t, testutil.Raffle1.ID, resp.Raffles[0].ID)

	all, err := raffleDomain.GetList(ctx, &model.GetRafflesRequest{
		Status: string(entity.RafflePending),
	})
	require.NoError(t, err)
	require.Len(t, all.Raffles, 1)
	require.Equal(t, testutil.Raffle2.ID, all.Raffles[0].ID)
}

func Test_raffleDomain_GetAll_adminOnly(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.User1.ID)
	testutil.CreateFixture(ctx)
	raffleDomain := newTestRaffleDomain()

	_, err := raffleDomain.GetAll(ctx, &model.GetAllRafflesRequest{})
	require.Error(t, err)

	adminCtx := xcontext.WithRequestUserID(ctx, testutil.Admin.ID)
	resp, err := raffleDomain.GetAll(adminCtx, &model.GetAllRafflesRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Raffles, 2)
}

func Test_raffleDomain_Draw(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.User2.ID)
	testutil.CreateFixture(ctx)
	raffleDomain := newTestRaffleDomain()

	ticket := buyFixtureTicket(t, ctx, 3)
	_, err := newTestPaymentDomain(nil).Confirm(ctx, &model.ConfirmPaymentRequest{ID: ticket.ID})
	require.NoError(t, err)

	ownerCtx := xcontext.WithRequestUserID(ctx, testutil.User1.ID)
	resp, err := raffleDomain.Draw(ownerCtx, &model.DrawRaffleRequest{ID: testutil.Raffle1.ID})
	require.NoError(t, err)
	require.Equal(t, string(entity.RaffleCompleted), resp.Raffle.Status)
	require.Equal(t, testutil.User2.ID, resp.Winner.User.ID)
	require.Contains(t, ticket.TicketNumbers, resp.Winner.TicketNumber)
	require.NotNil(t, resp.Raffle.Winner)
	require.NotEmpty(t, resp.Raffle.DrawDate)

	// The winning ticket is flagged.
	winnerTicket, err := repository.NewTicketRepository().GetByID(ctx, ticket.ID)
	require.NoError(t, err)
	require.True(t, winnerTicket.IsWinner)
}

func Test_raffleDomain_Draw_alreadyDrawn(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.User2.ID)
	testutil.CreateFixture(ctx)
	raffleDomain := newTestRaffleDomain()

	ticket := buyFixtureTicket(t, ctx, 1)
	_, err := newTestPaymentDomain(nil).Confirm(ctx, &model.ConfirmPaymentRequest{ID: ticket.ID})
	require.NoError(t, err)

	ownerCtx := xcontext.WithRequestUserID(ctx, testutil.User1.ID)
	_, err = raffleDomain.Draw(ownerCtx, &model.DrawRaffleRequest{ID: testutil.Raffle1.ID})
	require.NoError(t, err)

	_, err = raffleDomain.Draw(ownerCtx, &model.DrawRaffleRequest{ID: testutil.Raffle1.ID})
	require.Error(t, err)

	var errx errorx.Error
	require.True(t, errors.As(err, &errx))
	require.Equal(t, errorx.AlreadyDrawn, errx.Code)
}

func Test_raffleDomain_Draw_noPaidTickets(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.User2.ID)
	testutil.CreateFixture(ctx)
	raffleDomain := newTestRaffleDomain()

	// A pending reservation is not enough to draw.
	buyFixtureTicket(t, ctx, 2)

	ownerCtx := xcontext.WithRequestUserID(ctx, testutil.User1.ID)
	_, err := raffleDomain.Draw(ownerCtx, &model.DrawRaffleRequest{ID: testutil.Raffle1.ID})
	require.Error(t, err)

	var errx errorx.Error
	require.True(t, errors.As(err, &errx))
	require.Equal(t, errorx.BadRequest, errx.Code)
}
