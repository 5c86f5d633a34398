package common

import (
	"context"
	"errors"
	"fmt"

	"github.com/trabach-softwares/ouro-rifa-api/internal/entity"
	"github.com/trabach-softwares/ouro-rifa-api/internal/repository"
	"github.com/trabach-softwares/ouro-rifa-api/pkg/xcontext"
	"golang.org/x/exp/slices"
)

type GlobalRoleVerifier struct {
	userRepo repository.UserRepository
}

func NewGlobalRoleVerifier(userRepo repository.UserRepository) *GlobalRoleVerifier {
	return &GlobalRoleVerifier{userRepo: userRepo}
}

func (verifier *GlobalRoleVerifier) Verify(ctx context.Context, requiredRoles ...entity.GlobalRole) error {
	userID := xcontext.RequestUserID(ctx)
	u, err := verifier.userRepo.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("user is not valid")
	}

	if !slices.Contains(requiredRoles, u.Role) {
		return errors.New("user role does not have permission")
	}

	return nil
}

// RaffleOwnerVerifier allows the raffle owner or a global admin through.
type RaffleOwnerVerifier struct {
	raffleRepo repository.RaffleRepository
	userRepo   repository.UserRepository
}

func NewRaffleOwnerVerifier(
	raffleRepo repository.RaffleRepository,
	userRepo repository.UserRepository,
) *RaffleOwnerVerifier {
	return &RaffleOwnerVerifier{raffleRepo: raffleRepo, userRepo: userRepo}
}

func (verifier *RaffleOwnerVerifier) Verify(ctx context.Context, raffleID string) error {
	userID := xcontext.RequestUserID(ctx)
	u, err := verifier.userRepo.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("user is not valid")
	}

	if slices.Contains(entity.GlobalAdminRoles, u.Role) {
		return nil
	}

	raffle, err := verifier.raffleRepo.GetByID(ctx, raffleID)
	if err != nil {
		return err
	}

	if raffle.OwnerID != userID {
		return errors.New("permission denied")
	}

	return nil
}
