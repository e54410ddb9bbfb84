// Command authd runs the authentication decision engine and its operator tools.
//
// @title                       authd API
// @version                     1.0
// @description                 Multi-tenant authentication decision engine: end-user register, login, session verify and logout, plus the owner console.
// @BasePath                    /
// @securityDefinitions.apikey  ConsoleSession
// @in                          header
// @name                        Authorization
// @description                 Bearer console token; browsers send the console_session cookie instead.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"

	dbmongo "github.com/vaultline/authd/internal/infrastructure/db/mongo"
	"github.com/vaultline/authd/internal/pkg/config"
	"github.com/vaultline/authd/pkg/logger"
)

const serviceName = "authd"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		stop()
		os.Exit(1)
	}
}

// app holds what every subcommand shares once the root command has run.
type app struct {
	cfg *config.Config
	log zerolog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           serviceName,
		Short:         "Authentication decision engine for licensed desktop software",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			a.cfg = config.Load()
			a.log = logger.Init(logger.Options{
				Level:   a.cfg.LogLevel,
				Pretty:  a.cfg.LogPretty,
				Service: serviceName,
			})
		},
	}

	root.AddCommand(
		newServeCmd(a),
		newMigrateCmd(a),
		newSweepCmd(a),
		newConsoleTokenCmd(a),
	)
	return root
}

// connectMongo opens the credential store. The returned func disconnects it.
func (a *app) connectMongo(ctx context.Context) (*mongo.Database, func(), error) {
	client, db, err := dbmongo.Connect(ctx, dbmongo.Config{
		URI:      a.cfg.Mongo.URI,
		Database: a.cfg.Mongo.Database,
		Timeout:  a.cfg.Mongo.Timeout,
	})
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Mongo.Timeout)
		defer cancel()
		if err := client.Disconnect(ctx); err != nil {
			a.log.Warn().Err(err).Msg("mongo disconnect failed")
		}
	}
	return db, closeFn, nil
}
