package main

import (
	"github.com/trabach-softwares/ouro-rifa-api/migration"
	"github.com/trabach-softwares/ouro-rifa-api/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

func (s *srv) startMigrate(*cli.Context) error {
	s.loadBase()
	s.loadDatabase()

	if err := migration.AutoMigrate(s.ctx); err != nil {
		return err
	}

	xcontext.Logger(s.ctx).Infof("Migration completed")
	return nil
}
