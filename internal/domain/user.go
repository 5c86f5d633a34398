package domain

import (
	"context"

	"github.com/trabach-softwares/ouro-rifa-api/internal/common"
	"github.com/trabach-softwares/ouro-rifa-api/internal/entity"
	"github.com/trabach-softwares/ouro-rifa-api/internal/model"
	"github.com/trabach-softwares/ouro-rifa-api/internal/repository"
	"github.com/trabach-softwares/ouro-rifa-api/pkg/errorx"
	"github.com/trabach-softwares/ouro-rifa-api/pkg/xcontext"
	"github.com/trabach-softwares/ouro-rifa-api/pkg/xredis"
	"golang.org/x/crypto/bcrypt"
)

type UserDomain interface {
	GetProfile(ctx context.Context, req *model.GetProfileRequest) (*model.GetProfileResponse, error)
	UpdateProfile(ctx context.Context, req *model.UpdateProfileRequest) (*model.UpdateProfileResponse, error)
	ChangePassword(ctx context.Context, req *model.ChangePasswordRequest) (*model.ChangePasswordResponse, error)
	GetTopBuyers(ctx context.Context, req *model.GetTopBuyersRequest) (*model.GetTopBuyersResponse, error)
}

type userDomain struct {
	userRepo     repository.UserRepository
	roleVerifier *common.GlobalRoleVerifier
	redisClient  xredis.Client
}

func NewUserDomain(
	userRepo repository.UserRepository,
	redisClient xredis.Client,
) *userDomain {
	return &userDomain{
		userRepo:     userRepo,
		roleVerifier: common.NewGlobalRoleVerifier(userRepo),
		redisClient:  redisClient,
	}
}

func (d *userDomain) GetProfile(
	ctx context.Context, req *model.GetProfileRequest,
) (*model.GetProfileResponse, error) {
	user, err := d.userRepo.GetByID(ctx, xcontext.RequestUserID(ctx))
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get user: %v", err)
		return nil, errorx.Unknown
	}

	return &model.GetProfileResponse{User: convertUser(user)}, nil
}

func (d *userDomain) UpdateProfile(
	ctx context.Context, req *model.UpdateProfileRequest,
) (*model.UpdateProfileResponse, error) {
	userID := xcontext.RequestUserID(ctx)

	update := entity.User{
		Name:  req.Name,
		Phone: req.Phone,
	}

	if req.PaymentSettings != nil {
		update.PaymentSettings = entity.PaymentSettings{
			PixKey:      req.PaymentSettings.PixKey,
			BankName:    req.PaymentSettings.BankName,
			Agency:      req.PaymentSettings.Agency,
			Account:     req.PaymentSettings.Account,
			AccountType: req.PaymentSettings.AccountType,
		}
	}

	if req.NotificationSettings != nil {
		update.NotificationSettings = entity.NotificationSettings{
			EmailNewPurchase:    req.NotificationSettings.EmailNewPurchase,
			EmailRaffleComplete: req.NotificationSettings.EmailRaffleComplete,
			SmsNewPurchase:      req.NotificationSettings.SmsNewPurchase,
			SmsRaffleComplete:   req.NotificationSettings.SmsRaffleComplete,
			PushNotifications:   req.NotificationSettings.PushNotifications,
		}
	}

	if err := d.userRepo.UpdateByID(ctx, userID, update); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot update user: %v", err)
		return nil, errorx.Unknown
	}

	user, err := d.userRepo.GetByID(ctx, userID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get updated user: %v", err)
		return nil, errorx.Unknown
	}

	return &model.UpdateProfileResponse{User: convertUser(user)}, nil
}

func (d *userDomain) ChangePassword(
	ctx context.Context, req *model.ChangePasswordRequest,
) (*model.ChangePasswordResponse, error) {
	if len(req.NewPassword) < 6 {
		return nil, errorx.New(errorx.BadRequest, "Password must have at least 6 characters")
	}

	user, err := d.userRepo.GetByID(ctx, xcontext.RequestUserID(ctx))
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get user: %v", err)
		return nil, errorx.Unknown
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.CurrentPassword))
	if err != nil {
		return nil, errorx.New(errorx.Unauthenticated, "Current password is incorrect")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot hash password: %v", err)
		return nil, errorx.Unknown
	}

	if err := d.userRepo.UpdatePassword(ctx, user.ID, string(hashedPassword)); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot update password: %v", err)
		return nil, errorx.Unknown
	}

	return &model.ChangePasswordResponse{}, nil
}

// GetTopBuyers serves the buyer leaderboard. The redis sorted set is a cache
// maintained at payment confirmation; the user table is the fallback.
func (d *userDomain) GetTopBuyers(
	ctx context.Context, req *model.GetTopBuyersRequest,
) (*model.GetTopBuyersResponse, error) {
	if err := d.roleVerifier.Verify(ctx, entity.GlobalAdminRoles...); err != nil {
		return nil, errorx.New(errorx.PermissionDenied, "Permission denied")
	}

	limit := req.Limit
	if limit <= 0 || limit > 50 {
		limit = 10
	}

	if buyers := d.topBuyersFromRedis(ctx, limit); buyers != nil {
		return &model.GetTopBuyersResponse{Buyers: buyers}, nil
	}

	users, err := d.userRepo.GetTopSpenders(ctx, limit)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get top spenders: %v", err)
		return nil, errorx.Unknown
	}

	buyers := []model.TopBuyer{}
	for i := range users {
		buyers = append(buyers, model.TopBuyer{
			User:       convertShortUser(&users[i]),
			TotalSpent: users[i].TotalSpent,
		})
	}

	return &model.GetTopBuyersResponse{Buyers: buyers}, nil
}

func (d *userDomain) topBuyersFromRedis(ctx context.Context, limit int) []model.TopBuyer {
	if d.redisClient == nil {
		return nil
	}

	zs, err := d.redisClient.ZRevRangeWithScores(ctx, common.RedisKeyTopBuyers(), 0, limit)
	if err != nil || len(zs) == 0 {
		return nil
	}

	ids := make([]string, 0, len(zs))
	for _, z := range zs {
		if id, ok := z.Member.(string); ok {
			ids = append(ids, id)
		}
	}

	users, err := d.userRepo.GetByIDs(ctx, ids)
	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot resolve leaderboard users: %v", err)
		return nil
	}

	userMap := map[string]*entity.User{}
	for i := range users {
		userMap[users[i].ID] = &users[i]
	}

	buyers := []model.TopBuyer{}
	for _, z := range zs {
		id, ok := z.Member.(string)
		if !ok {
			continue
		}

		user, ok := userMap[id]
		if !ok {
			continue
		}

		buyers = append(buyers, model.TopBuyer{
			User:       convertShortUser(user),
			TotalSpent: z.Score,
		})
	}

	return buyers
}
