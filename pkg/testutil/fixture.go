package testutil

import (
	"context"
	"database/sql"
	"time"

	"github.com/trabach-softwares/ouro-rifa-api/internal/entity"
	"github.com/trabach-softwares/ouro-rifa-api/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

// Password is the plain text behind every fixture user.
const Password = "super-secret"

var (
	Admin = entity.User{
		Base:     entity.Base{ID: "admin"},
		Name:     "Admin",
		Email:    "admin@example.com",
		Role:     entity.RoleAdmin,
		IsActive: true,
	}

	User1 = entity.User{
		Base:     entity.Base{ID: "user1"},
		Name:     "Raffle Owner",
		Email:    "owner@example.com",
		Role:     entity.RoleUser,
		IsActive: true,
		PaymentSettings: entity.PaymentSettings{
			PixKey: "owner@example.com",
		},
	}

	User2 = entity.User{
		Base:     entity.Base{ID: "user2"},
		Name:     "Buyer",
		Email:    "buyer@example.com",
		Role:     entity.RoleUser,
		IsActive: true,
	}

	Raffle1 = entity.Raffle{
		Base:                entity.Base{ID: "raffle1"},
		OwnerID:             User1.ID,
		Title:               "Gold Bar Raffle",
		Description:         "One ounce of gold",
		TicketPrice:         5,
		TotalTickets:        100,
		Status:              entity.RaffleActive,
		MaxTicketsPerPerson: 10,
		EndDate:             sql.NullTime{Time: time.Now().AddDate(0, 1, 0), Valid: true},
	}

	Raffle2 = entity.Raffle{
		Base:         entity.Base{ID: "raffle2"},
		OwnerID:      User1.ID,
		Title:        "Draft Raffle",
		TicketPrice:  2,
		TotalTickets: 50,
		Status:       entity.RafflePending,
		EndDate:      sql.NullTime{Time: time.Now().AddDate(0, 1, 0), Valid: true},
	}
)

// CreateFixture inserts the fixture users and raffles into the context's db.
func CreateFixture(ctx context.Context) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}

	userRepo := repository.NewUserRepository()
	for _, user := range []entity.User{Admin, User1, User2} {
		user.Password = string(hashed)
		if err := userRepo.Create(ctx, &user); err != nil {
			panic(err)
		}
	}

	raffleRepo := repository.NewRaffleRepository()
	for _, raffle := range []entity.Raffle{Raffle1, Raffle2} {
		if err := raffleRepo.Create(ctx, &raffle); err != nil {
			panic(err)
		}
	}
}
