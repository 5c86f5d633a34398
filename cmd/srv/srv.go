package main

import (
	"context"
	"net/http"

	"github.com/trabach-softwares/ouro-rifa-api/config"
	"github.com/trabach-softwares/ouro-rifa-api/internal/common"
	"github.com/trabach-softwares/ouro-rifa-api/internal/domain"
	"github.com/trabach-softwares/ouro-rifa-api/internal/model"
	"github.com/trabach-softwares/ouro-rifa-api/internal/repository"
	"github.com/trabach-softwares/ouro-rifa-api/pkg/authenticator"
	"github.com/trabach-softwares/ouro-rifa-api/pkg/logger"
	"github.com/trabach-softwares/ouro-rifa-api/pkg/router"
	"github.com/trabach-softwares/ouro-rifa-api/pkg/xcontext"
	"github.com/trabach-softwares/ouro-rifa-api/pkg/xredis"
	"github.com/urfave/cli/v2"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type srv struct {
	app *cli.App
	ctx context.Context

	configs config.Configs

	userRepo    repository.UserRepository
	raffleRepo  repository.RaffleRepository
	ticketRepo  repository.TicketRepository
	paymentRepo repository.PaymentRepository

	redisClient  xredis.Client
	raffleLocker *common.RaffleLocker

	authDomain      domain.AuthDomain
	userDomain      domain.UserDomain
	raffleDomain    domain.RaffleDomain
	ticketDomain    domain.TicketDomain
	paymentDomain   domain.PaymentDomain
	statisticDomain domain.StatisticDomain

	router *router.Router

	server *http.Server
}

// loadBase wires config, logger and token engine into the base context every
// request derives from.
func (s *srv) loadBase() {
	s.loadConfig()

	level := logger.INFO
	if s.configs.Env == "local" {
		level = logger.DEBUG
	}

	s.ctx = context.Background()
	s.ctx = xcontext.WithConfigs(s.ctx, s.configs)
	s.ctx = xcontext.WithLogger(s.ctx, logger.NewLogger(level))
	s.ctx = xcontext.WithTokenEngine(s.ctx,
		authenticator.NewTokenEngine[model.AccessToken](
			s.configs.Auth.TokenSecret, s.configs.Auth.Expiration))
}

func (s *srv) loadDatabase() {
	logLevel := gormlogger.Error
	if s.configs.Database.LogLevel == "info" {
		logLevel = gormlogger.Info
	}

	db, err := gorm.Open(mysql.Open(s.configs.Database.ConnectionString()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(logLevel),
	})
	if err != nil {
		panic(err)
	}

	s.ctx = xcontext.WithDB(s.ctx, db)
}

func (s *srv) loadRedis() {
	redisClient, err := xredis.NewClient(s.ctx)
	if err != nil {
		// Rate limiting and the leaderboard cache degrade gracefully.
		xcontext.Logger(s.ctx).Warnf("Cannot connect to redis: %v", err)
		return
	}

	s.redisClient = redisClient
}

func (s *srv) loadRepos() {
	s.userRepo = repository.NewUserRepository()
	s.raffleRepo = repository.NewRaffleRepository()
	s.ticketRepo = repository.NewTicketRepository()
	s.paymentRepo = repository.NewPaymentRepository()
}

func (s *srv) loadDomains() {
	s.raffleLocker = common.NewRaffleLocker()

	s.authDomain = domain.NewAuthDomain(s.userRepo, common.NewLoginLimiter(s.redisClient))
	s.userDomain = domain.NewUserDomain(s.userRepo, s.redisClient)
	s.raffleDomain = domain.NewRaffleDomain(s.raffleRepo, s.ticketRepo, s.userRepo, s.raffleLocker)
	s.ticketDomain = domain.NewTicketDomain(
		s.ticketRepo, s.raffleRepo, s.userRepo, s.paymentRepo, s.raffleLocker)
	s.paymentDomain = domain.NewPaymentDomain(
		s.paymentRepo, s.ticketRepo, s.raffleRepo, s.userRepo, s.raffleLocker, s.redisClient)
	s.statisticDomain = domain.NewStatisticDomain(s.raffleRepo, s.ticketRepo, s.userRepo)
}
