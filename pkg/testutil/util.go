package testutil

import (
	"context"
	"time"

	"github.com/trabach-softwares/ouro-rifa-api/config"
	"github.com/trabach-softwares/ouro-rifa-api/internal/model"
	"github.com/trabach-softwares/ouro-rifa-api/migration"
	"github.com/trabach-softwares/ouro-rifa-api/pkg/authenticator"
	"github.com/trabach-softwares/ouro-rifa-api/pkg/logger"
	"github.com/trabach-softwares/ouro-rifa-api/pkg/xcontext"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func MockContext() context.Context {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		panic(err)
	}

	// Every sqlite connection sees its own in-memory database, so the pool
	// must never grow beyond one.
	sqlDB, err := db.DB()
	if err != nil {
		panic(err)
	}
	sqlDB.SetMaxOpenConns(1)

	cfg := config.Configs{
		Env: "testing",
		Auth: config.AuthConfigs{
			TokenSecret:         "secret",
			AccessTokenName:     "access_token",
			Expiration:          time.Minute,
			MaxLoginAttempts:    5,
			LoginAttemptsWindow: 15 * time.Minute,
		},
		Raffle: config.RaffleConfigs{
			MinTickets:            10,
			MaxTickets:            10000,
			MaxTicketsPerPurchase: 100,
		},
		Payment: config.PaymentConfigs{
			DefaultPixKey: "contato@ouro-rifa.com.br",
			PixExpiration: 30 * time.Minute,
		},
	}

	ctx := context.Background()
	ctx = xcontext.WithConfigs(ctx, cfg)
	ctx = xcontext.WithLogger(ctx, logger.NewLogger(logger.ERROR))
	ctx = xcontext.WithTokenEngine(ctx,
		authenticator.NewTokenEngine[model.AccessToken](cfg.Auth.TokenSecret, cfg.Auth.Expiration))
	ctx = xcontext.WithDB(ctx, db)

	if err := migration.AutoMigrate(ctx); err != nil {
		panic(err)
	}

	return ctx
}

func MockContextWithUserID(userID string) context.Context {
	return xcontext.WithRequestUserID(MockContext(), userID)
}
