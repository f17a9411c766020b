package main

import (
	"github.com/spf13/cobra"

	"studyguard/internal/config"
	"studyguard/internal/database"
	"studyguard/internal/logger"
	"studyguard/internal/repository"
	"studyguard/internal/service"
)

// app is the database and services shared by every admin subcommand
type app struct {
	cfg       *config.Config
	db        *database.DB
	deps      service.Deps
	household *service.HouseholdService
}

func newRootCmd() *cobra.Command {
	var a app

	rootCmd := &cobra.Command{
		Use:   "studyguard-admin",
		Short: "Operator tooling for a StudyGuard database",
		Long: `studyguard-admin runs maintenance tasks against the database configured
through the STUDYGUARD_* environment variables.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations["db"] == "none" {
				return nil
			}
			return a.open(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.db != nil {
				return a.db.Close()
			}
			return nil
		},
	}

	rootCmd.AddCommand(migrateCmd(&a))
	rootCmd.AddCommand(purgeHeartbeatsCmd(&a))
	rootCmd.AddCommand(inviteCodeCmd())
	rootCmd.AddCommand(familyCmd(&a))
	rootCmd.AddCommand(barrierCmd(&a))

	return rootCmd
}

func (a *app) open(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		return err
	}

	logg := logger.New(logger.Options{
		ServiceName: "studyguard-admin",
		Level:       logger.ParseLevel(cfg.LogLevel),
		Output:      cmd.ErrOrStderr(),
		Console:     true,
	})

	a.cfg = cfg
	a.db = db
	a.deps = service.Deps{DB: db, Repos: repository.New(db), Logger: logg}
	a.household = service.NewHouseholdService(a.deps)

	// Every command except migrate needs the schema in place
	if cmd.Name() != "migrate" {
		if _, err := db.RunMigrations(cmd.Context()); err != nil {
			return err
		}
	}
	return nil
}
