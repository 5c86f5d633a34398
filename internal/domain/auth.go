package domain

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/trabach-softwares/ouro-rifa-api/internal/common"
	"github.com/trabach-softwares/ouro-rifa-api/internal/entity"
	"github.com/trabach-softwares/ouro-rifa-api/internal/model"
	"github.com/trabach-softwares/ouro-rifa-api/internal/repository"
	"github.com/trabach-softwares/ouro-rifa-api/pkg/errorx"
	"github.com/trabach-softwares/ouro-rifa-api/pkg/xcontext"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthDomain interface {
	Register(ctx context.Context, req *model.RegisterRequest) (*model.RegisterResponse, error)
	Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error)
}

type authDomain struct {
	userRepo     repository.UserRepository
	loginLimiter *common.LoginLimiter
}

func NewAuthDomain(
	userRepo repository.UserRepository,
	loginLimiter *common.LoginLimiter,
) *authDomain {
	return &authDomain{
		userRepo:     userRepo,
		loginLimiter: loginLimiter,
	}
}

func (d *authDomain) Register(
	ctx context.Context, req *model.RegisterRequest,
) (*model.RegisterResponse, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" || req.Email == "" {
		return nil, errorx.New(errorx.BadRequest, "Name and email are required")
	}

	if len(req.Password) < 6 {
		return nil, errorx.New(errorx.BadRequest, "Password must have at least 6 characters")
	}

	_, err := d.userRepo.GetByEmail(ctx, req.Email)
	if err == nil {
		return nil, errorx.New(errorx.AlreadyExists, "Email is already registered")
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		xcontext.Logger(ctx).Errorf("Cannot check existing email: %v", err)
		return nil, errorx.Unknown
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot hash password: %v", err)
		return nil, errorx.Unknown
	}

	user := &entity.User{
		Base:     entity.Base{ID: uuid.NewString()},
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hashedPassword),
		Phone:    req.Phone,
		Role:     entity.RoleUser,
		IsActive: true,
		NotificationSettings: entity.NotificationSettings{
			EmailNewPurchase:    true,
			EmailRaffleComplete: true,
		},
	}

	if err := d.userRepo.Create(ctx, user); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create user: %v", err)
		return nil, errorx.Unknown
	}

	return &model.RegisterResponse{User: convertUser(user)}, nil
}

func (d *authDomain) Login(
	ctx context.Context, req *model.LoginRequest,
) (*model.LoginResponse, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := d.loginLimiter.Check(ctx, req.Email); err != nil {
		return nil, err
	}

	user, err := d.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			xcontext.Logger(ctx).Errorf("Cannot get user by email: %v", err)
			return nil, errorx.Unknown
		}

		d.loginLimiter.RecordFailure(ctx, req.Email)
		return nil, errorx.New(errorx.Unauthenticated, "Invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		d.loginLimiter.RecordFailure(ctx, req.Email)
		return nil, errorx.New(errorx.Unauthenticated, "Invalid credentials")
	}

	if !user.IsActive {
		return nil, errorx.New(errorx.PermissionDenied, "Account is deactivated")
	}

	d.loginLimiter.Reset(ctx, req.Email)

	if err := d.userRepo.UpdateLastLogin(ctx, user.ID); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot update last login: %v", err)
	}

	token, err := xcontext.TokenEngine(ctx).Generate(user.ID, model.AccessToken{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Role:  string(user.Role),
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot generate access token: %v", err)
		return nil, errorx.Unknown
	}

	return &model.LoginResponse{
		AccessToken: token,
		User:        convertUser(user),
	}, nil
}
