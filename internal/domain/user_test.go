package domain

import (
	"context"
	"errors"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/trabach-softwares/ouro-rifa-api/internal/model"
	"github.com/trabach-softwares/ouro-rifa-api/internal/repository"
	"github.com/trabach-softwares/ouro-rifa-api/pkg/errorx"
	"github.com/trabach-softwares/ouro-rifa-api/pkg/testutil"
	"github.com/trabach-softwares/ouro-rifa-api/pkg/xredis"
)

func newTestUserDomain(redisClient xredis.Client) *userDomain {
	return NewUserDomain(repository.NewUserRepository(), redisClient)
}

func Test_userDomain_UpdateProfile(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.User2.ID)
	testutil.CreateFixture(ctx)
	userDomain := newTestUserDomain(nil)

	resp, err := userDomain.UpdateProfile(ctx, &model.UpdateProfileRequest{
		Name:  "Buyer Renamed",
		Phone: "+5511999990000",
		PaymentSettings: &model.PaymentSettings{
			PixKey: "buyer@example.com",
		},
	})
	require.NoError(t, err)
	require.Equal(t, "Buyer Renamed", resp.User.Name)
	require.Equal(t, "+5511999990000", resp.User.Phone)
	require.Equal(t, "buyer@example.com", resp.User.PaymentSettings.PixKey)

	// The email and role never change through the profile.
	require.Equal(t, testutil.User2.Email, resp.User.Email)
	require.Equal(t, string(testutil.User2.Role), resp.User.Role)
}

func Test_userDomain_ChangePassword(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.User2.ID)
	testutil.CreateFixture(ctx)
	userDomain := newTestUserDomain(nil)
	authDomain := newTestAuthDomain(nil)

	_, err := userDomain.ChangePassword(ctx, &model.ChangePasswordRequest{
		CurrentPassword: "wrong",
		NewPassword:     "another-secret",
	})
	require.Error(t, err)

	var errx errorx.Error
	require.True(t, errors.As(err, &errx))
	require.Equal(t, errorx.Unauthenticated, errx.Code)

	_, err = userDomain.ChangePassword(ctx, &model.ChangePasswordRequest{
		CurrentPassword: testutil.Password,
		NewPassword:     "another-secret",
	})
	require.NoError(t, err)

	_, err = authDomain.Login(ctx, &model.LoginRequest{
		Email:    testutil.User2.Email,
		Password: "another-secret",
	})
	require.NoError(t, err)
}

func Test_userDomain_GetTopBuyers(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.User2.ID)
	testutil.CreateFixture(ctx)

	redisClient := &testutil.MockRedisClient{
		ZRevRangeWithScoresFunc: func(ctx context.Context, key string, offset, limit int) ([]redis.Z, error) {
			return []redis.Z{
				{Member: testutil.User2.ID, Score: 40},
				{Member: testutil.User1.ID, Score: 15},
			}, nil
		},
	}
	userDomain := newTestUserDomain(redisClient)

	// Only admins read the leaderboard.
	_, err := userDomain.GetTopBuyers(ctx, &model.GetTopBuyersRequest{})
	require.Error(t, err)

	var errx errorx.Error
	require.True(t, errors.As(err, &errx))
	require.Equal(t, errorx.PermissionDenied, errx.Code)

	adminCtx := testutil.MockContextWithUserID(testutil.Admin.ID)
	testutil.CreateFixture(adminCtx)

	resp, err := userDomain.GetTopBuyers(adminCtx, &model.GetTopBuyersRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Buyers, 2)
	require.Equal(t, testutil.User2.ID, resp.Buyers[0].User.ID)
	require.Equal(t, 40.0, resp.Buyers[0].TotalSpent)
	require.Equal(t, testutil.User1.ID, resp.Buyers[1].User.ID)
}

func Test_userDomain_GetTopBuyers_databaseFallback(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.Admin.ID)
	testutil.CreateFixture(ctx)
	userDomain := newTestUserDomain(nil)

	require.NoError(t, repository.NewUserRepository().AddSpent(ctx, testutil.User2.ID, 30))
	require.NoError(t, repository.NewUserRepository().AddSpent(ctx, testutil.User1.ID, 10))

	resp, err := userDomain.GetTopBuyers(ctx, &model.GetTopBuyersRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Buyers, 2)
	require.Equal(t, testutil.User2.ID, resp.Buyers[0].User.ID)
	require.Equal(t, 30.0, resp.Buyers[0].TotalSpent)
}
