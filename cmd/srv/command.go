package main

import "github.com/urfave/cli/v2"

func (s *srv) loadApp() {
	app := cli.NewApp()
	app.Action = cli.ShowAppHelp
	app.Name = "ouro-rifa"
	app.Usage = "raffle marketplace backend"
	app.Commands = []*cli.Command{
		{
			Action:      s.startApi,
			Name:        "api",
			Usage:       "Start the api server",
			Category:    "Api",
			Description: `Serves every public and authenticated endpoint and runs the reconciliation job in background.`,
		},
		{
			Action:      s.startMigrate,
			Name:        "migrate",
			Usage:       "Migrate the database schema",
			Category:    "Database",
			Description: `Creates or updates the tables of all entities.`,
		},
		{
			Action:      s.startReconcile,
			Name:        "reconcile",
			Usage:       "Run the reconciliation once",
			Category:    "Worker",
			Description: `Recomputes raffle statistics and rolls forward tickets of completed payments, then exits.`,
		},
	}

	s.app = app
}
