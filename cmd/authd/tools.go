package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/vaultline/authd/internal/core/domain"
	"github.com/vaultline/authd/internal/core/service"
	dbmongo "github.com/vaultline/authd/internal/infrastructure/db/mongo"
	"github.com/vaultline/authd/pkg/logger"
)

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the indexes the credential store relies on",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, closeMongo, err := a.connectMongo(cmd.Context())
			if err != nil {
				return err
			}
			defer closeMongo()

			if err := dbmongo.EnsureIndexes(cmd.Context(), db); err != nil {
				return err
			}
			a.log.Info().Str("database", a.cfg.Mongo.Database).Msg("indexes ensured")
			return nil
		},
	}
}

func newSweepCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Deactivate expired sessions once and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, closeMongo, err := a.connectMongo(cmd.Context())
			if err != nil {
				return err
			}
			defer closeMongo()

			tracker := service.NewSessionTracker(dbmongo.NewSessionRepository(db), a.cfg.Session.TTL, logger.Component("sessions"))
			n, err := tracker.Sweep(cmd.Context())
			if err != nil {
				return err
			}
			a.log.Info().Int64("deactivated", n).Msg("session sweep complete")
			return nil
		},
	}
}

func newConsoleTokenCmd(a *app) *cobra.Command {
	var (
		email string
		role  string
		ttl   time.Duration
	)
	cmd := &cobra.Command{
		Use:   "console-token",
		Short: "Mint an owner-console token, creating the account on first use",
		Long: "Mint an owner-console token for --email. The account is created with --role " +
			"if it does not exist yet; the role of an existing account is left unchanged.",
		RunE: func(cmd *cobra.Command, args []string) error {
			email = strings.ToLower(strings.TrimSpace(email))
			if email == "" {
				return fmt.Errorf("--email is required")
			}
			if !domain.ValidRole(role) {
				return fmt.Errorf("--role must be one of: owner, admin, moderator, user")
			}

			db, closeMongo, err := a.connectMongo(cmd.Context())
			if err != nil {
				return err
			}
			defer closeMongo()

			acct, err := dbmongo.NewAccountRepository(db).UpsertByEmail(cmd.Context(), email, role)
			if err != nil {
				return err
			}
			if !acct.Active {
				return fmt.Errorf("account %s is disabled", email)
			}
			token, err := service.IssueConsoleToken(a.cfg.JWTSecret, acct, ttl)
			if err != nil {
				return err
			}
			a.log.Info().Str("account_id", acct.ID).Str("role", acct.Role).Dur("ttl", ttl).Msg("console token issued")
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&role, "role", domain.RoleUser, "Role for a newly created account: owner|admin|moderator|user")
	cmd.Flags().DurationVar(&ttl, "ttl", 12*time.Hour, "Token lifetime")
	return cmd
}
