package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"strategydesk/src/connectors"
	"strategydesk/src/database"
	"strategydesk/src/server"
)

var Version string

func main() {
	app := cli.NewApp()
	app.Name = "strategydesk"
	app.Usage = "The strategy dashboard command line interface"
	app.Version = Version

	app.Commands = []cli.Command{
		serveCMD,
		migrateCMD,
		marketDataCMD,
	}

	if err := app.Run(os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var (
	serveCMD = cli.Command{
		Name:        "serve",
		Usage:       "run the REST API",
		Action:      serveAction,
		ArgsUsage:   "",
		Flags:       []cli.Flag{},
		Description: `Connect to the databases, migrate and serve the dashboard API`,
	}
	migrateCMD = cli.Command{
		Name:        "migrate",
		Usage:       "run schema and data migrations",
		Action:      migrateAction,
		ArgsUsage:   "",
		Flags:       []cli.Flag{},
		Description: `Create or update the strategy tables and apply pending data migrations`,
	}
	marketDataCMD = cli.Command{
		Name:      "marketdata",
		Usage:     "print one market data snapshot",
		Action:    marketDataAction,
		ArgsUsage: "",
		Flags: []cli.Flag{
			cli.DurationFlag{
				Name:  "timeout",
				Value: 30 * time.Second,
				Usage: "overall deadline for the snapshot",
			},
		},
		Description: `Fetch the configured watchlist once and print it as JSON`,
	}
)

func serveAction(_ *cli.Context) error {

	logrus.Info("Starting serve CMD")
	config := server.GetConfig()

	if err := database.InitMainDB(); err != nil {
		logrus.WithError(err).Error("Failed to connect to database")
		return err
	}
	if err := database.InitReadOnlyDB(); err != nil {
		logrus.WithError(err).Error("Failed to connect to read-only database")
		return err
	}

	server.StartServer(config)
	return nil
}

// migrateAction relies on InitMainDB, which migrates on connect.
func migrateAction(_ *cli.Context) error {

	logrus.Info("Starting migrate CMD")
	if err := database.InitMainDB(); err != nil {
		logrus.WithError(err).Error("Migration failed")
		return err
	}

	logrus.WithField("cmd", "migrate").Info("Migrations applied")
	return nil
}

func marketDataAction(c *cli.Context) error {

	logrus.Info("Starting marketdata CMD")
	ctx, cancel := context.WithTimeout(context.Background(), c.Duration("timeout"))
	defer cancel()

	svc := connectors.NewMarketDataServiceFromConfig(connectors.GetConfig())
	snapshot := svc.Snapshot(ctx)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(snapshot)
}
