package main

import (
	"errors"
	"net"
	"net/http"

	"github.com/trabach-softwares/ouro-rifa-api/internal/domain/cron"
	"github.com/trabach-softwares/ouro-rifa-api/internal/middleware"
	"github.com/trabach-softwares/ouro-rifa-api/pkg/router"
	"github.com/trabach-softwares/ouro-rifa-api/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

func (s *srv) startApi(*cli.Context) error {
	s.loadBase()
	s.loadDatabase()
	s.loadRedis()
	s.loadRepos()
	s.loadDomains()
	s.loadRouter()

	cronManager := cron.NewCronJobManager()
	cronManager.Register(cron.NewReconcileCronJob(
		s.raffleRepo, s.ticketRepo, s.paymentRepo, s.userRepo, s.statisticDomain))
	go cronManager.Start(s.ctx)
	defer cronManager.Cancel(s.ctx)

	addr := net.JoinHostPort(s.configs.ApiServer.Host, s.configs.ApiServer.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: middleware.CORS(s.router.Handler(), nil),
	}

	xcontext.Logger(s.ctx).Infof("Api server started at %s", addr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func (s *srv) loadRouter() {
	s.router = router.New(s.ctx)
	s.router.After(middleware.Logger())

	publicRouter := s.router.Branch()
	router.POST(publicRouter, "/auth/register", s.authDomain.Register)
	router.POST(publicRouter, "/auth/login", s.authDomain.Login)
	router.GET(publicRouter, "/getRaffles", s.raffleDomain.GetList)
	router.GET(publicRouter, "/getRaffle", s.raffleDomain.Get)
	router.GET(publicRouter, "/getRaffleStatistics", s.statisticDomain.GetRaffleStatistics)

	authRouter := s.router.Branch()
	authRouter.Before(middleware.NewAuthVerifier().Middleware())

	router.GET(authRouter, "/getProfile", s.userDomain.GetProfile)
	router.POST(authRouter, "/updateProfile", s.userDomain.UpdateProfile)
	router.POST(authRouter, "/changePassword", s.userDomain.ChangePassword)
	router.GET(authRouter, "/getTopBuyers", s.userDomain.GetTopBuyers)

	router.POST(authRouter, "/createRaffle", s.raffleDomain.Create)
	router.POST(authRouter, "/updateRaffle", s.raffleDomain.Update)
	router.POST(authRouter, "/deleteRaffle", s.raffleDomain.Delete)
	router.POST(authRouter, "/updateRaffleStatus", s.raffleDomain.UpdateStatus)
	router.GET(authRouter, "/getMyRaffles", s.raffleDomain.GetMy)
	router.GET(authRouter, "/getAllRaffles", s.raffleDomain.GetAll)
	router.POST(authRouter, "/drawRaffle", s.raffleDomain.Draw)

	router.POST(authRouter, "/buyTickets", s.ticketDomain.BuyTickets)
	router.POST(authRouter, "/cancelTicket", s.ticketDomain.Cancel)
	router.GET(authRouter, "/getTicket", s.ticketDomain.Get)
	router.GET(authRouter, "/getMyTickets", s.ticketDomain.GetMy)

	router.POST(authRouter, "/generatePix", s.paymentDomain.GeneratePix)
	router.POST(authRouter, "/confirmPayment", s.paymentDomain.Confirm)
	router.GET(authRouter, "/getPayment", s.paymentDomain.Get)
	router.GET(authRouter, "/getMyPayments", s.paymentDomain.GetMy)
	router.GET(authRouter, "/getSalesPayments", s.paymentDomain.GetSales)
	router.GET(authRouter, "/getAllPayments", s.paymentDomain.GetAll)

	router.GET(authRouter, "/getDashboard", s.statisticDomain.GetDashboard)
}
