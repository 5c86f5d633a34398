package domain

import (
	"context"
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
	"github.com/trabach-softwares/ouro-rifa-api/pkg/xredis"
)

func newTestAuthDomain(redisClient xredis.Client) *authDomain {
	return NewAuthDomain(
		repository.NewUserRepository(),
		common.NewLoginLimiter(redisClient),
	)
}

func Test_authDomain_RegisterAndLogin(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixture(ctx)
	authDomain := newTestAuthDomain(nil)

	registered, err := authDomain.Register(ctx, &model.RegisterRequest{
		Name:     "New User",
		Email:    "  New.User@Example.COM ",
		Password: "super-secret",
	})
	require.NoError(t, err)
	require.Equal(t, "new.user@example.com", registered.User.Email)
	require.Equal(t, "user", registered.User.Role)

	resp, err := authDomain.Login(ctx, &model.LoginRequest{
		Email:    "new.user@example.com",
		Password: "super-secret",
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.AccessToken)
	require.Equal(t, registered.User.ID, resp.User.ID)

	accessToken, err := xcontext.TokenEngine(ctx).Verify(resp.AccessToken)
	require.NoError(t, err)
	require.Equal(t, registered.User.ID, accessToken.ID)
	require.Equal(t, "new.user@example.com", accessToken.Email)
}

func Test_authDomain_Register_duplicateEmail(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixture(ctx)
	authDomain := newTestAuthDomain(nil)

	_, err := authDomain.Register(ctx, &model.RegisterRequest{
		Name:     "Someone Else",
		Email:    testutil.User1.Email,
		Password: "super-secret",
	})
	require.Error(t, err)

	var errx errorx.Error
	require.True(t, errors.As(err, &errx))
	require.Equal(t, errorx.AlreadyExists, errx.Code)
}

func Test_authDomain_Register_weakPassword(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixture(ctx)
	authDomain := newTestAuthDomain(nil)

	_, err := authDomain.Register(ctx, &model.RegisterRequest{
		Name:     "New User",
		Email:    "new@example.com",
		Password: "12345",
	})
	require.Error(t, err)

	var errx errorx.Error
	require.True(t, errors.As(err, &errx))
	require.Equal(t, errorx.BadRequest, errx.Code)
}

func Test_authDomain_Login_wrongPassword(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixture(ctx)
	authDomain := newTestAuthDomain(nil)

	_, err := authDomain.Login(ctx, &model.LoginRequest{
		Email:    testutil.User1.Email,
		Password: "not-the-password",
	})
	require.Error(t, err)

	var errx errorx.Error
	require.True(t, errors.As(err, &errx))
	require.Equal(t, errorx.Unauthenticated, errx.Code)

	// Unknown accounts fail the same way.
	_, err = authDomain.Login(ctx, &model.LoginRequest{
		Email:    "nobody@example.com",
		Password: testutil.Password,
	})
	require.Error(t, err)
	require.True(t, errors.As(err, &errx))
	require.Equal(t, errorx.Unauthenticated, errx.Code)
}

func Test_authDomain_Login_rateLimited(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixture(ctx)

	// The attempt counter is already at the limit.
	redisClient := &testutil.MockRedisClient{
		GetFunc: func(ctx context.Context, key string) (string, error) {
			return "5", nil
		},
	}
	authDomain := newTestAuthDomain(redisClient)

	_, err := authDomain.Login(ctx, &model.LoginRequest{
		Email:    testutil.User1.Email,
		Password: testutil.Password,
	})
	require.Error(t, err)

	var errx errorx.Error
	require.True(t, errors.As(err, &errx))
	require.Equal(t, errorx.TooManyRequests, errx.Code)
}

func Test_authDomain_Login_recordsAndResetsAttempts(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixture(ctx)

	var incremented, deleted int
	redisClient := &testutil.MockRedisClient{
		IncrFunc: func(ctx context.Context, key string) (int64, error) {
			incremented++
			return int64(incremented), nil
		},
		DelFunc: func(ctx context.Context, keys ...string) error {
			deleted++
			return nil
		},
	}
	authDomain := newTestAuthDomain(redisClient)

	_, err := authDomain.Login(ctx, &model.LoginRequest{
		Email:    testutil.User1.Email,
		Password: "not-the-password",
	})
	require.Error(t, err)
	require.Equal(t, 1, incremented)

	_, err = authDomain.Login(ctx, &model.LoginRequest{
		Email:    testutil.User1.Email,
		Password: testutil.Password,
	})
	require.NoError(t, err)
	require.Equal(t, 1, deleted)
}

func Test_authDomain_Login_deactivatedAccount(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixture(ctx)
	authDomain := newTestAuthDomain(nil)

	require.NoError(t, xcontext.DB(ctx).Model(&entity.User{}).
		Where("id = ?", testutil.User1.ID).
		Update("is_active", false).Error)

	_, err := authDomain.Login(ctx, &model.LoginRequest{
		Email:    testutil.User1.Email,
		Password: testutil.Password,
	})
	require.Error(t, err)

	var errx errorx.Error
	require.True(t, errors.As(err, &errx))
	require.Equal(t, errorx.PermissionDenied, errx.Code)
}
