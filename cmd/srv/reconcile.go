package main

import (
	"github.com/trabach-softwares/ouro-rifa-api/internal/domain/cron"
	"github.com/trabach-softwares/ouro-rifa-api/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

func (s *srv) startReconcile(*cli.Context) error {
	s.loadBase()
	s.loadDatabase()
	s.loadRepos()
	s.loadDomains()

	job := cron.NewReconcileCronJob(
		s.raffleRepo, s.ticketRepo, s.paymentRepo, s.userRepo, s.statisticDomain)
	job.Do(s.ctx)

	xcontext.Logger(s.ctx).Infof("Reconciliation completed")
	return nil
}
