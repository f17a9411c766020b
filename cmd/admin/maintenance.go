package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"studyguard/internal/credentials"
	"studyguard/internal/service"
)

func migrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			applied, err := a.db.RunMigrations(cmd.Context())
			if err != nil {
				return err
			}
			for _, m := range applied {
				fmt.Fprintf(out, "%s %05d %s (%s)\n", color.New(color.FgGreen).Sprint("APPLIED"), m.Version, m.Path, m.Duration)
			}

			version, err := a.db.SchemaVersion(cmd.Context())
			if err != nil {
				return err
			}
			if len(applied) == 0 {
				fmt.Fprintf(out, "schema up to date at version %d\n", version)
			} else {
				fmt.Fprintf(out, "schema now at version %d\n", version)
			}
			return nil
		},
	}
}

func purgeHeartbeatsCmd(a *app) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "purge-heartbeats",
		Short: "Delete heartbeats older than the retention window",
		Long: `Delete heartbeat rows created before now minus --days.

Examples:
  studyguard-admin purge-heartbeats
  studyguard-admin purge-heartbeats --days 30`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("days") {
				days = a.cfg.Retention.Days
			}
			retention := service.NewRetentionService(a.deps, service.RetentionOptions{
				Days:      days,
				BatchSize: a.cfg.Retention.BatchSize,
			}, nil)

			removed, err := retention.PurgeHeartbeats(cmd.Context(), days)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %s heartbeats older than %d days\n",
				color.New(color.FgYellow).Sprint(removed), days)
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", service.DefaultRetentionDays, "retention window in days")
	return cmd
}

func inviteCodeCmd() *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:         "invite-code",
		Short:       "Generate random family invite codes",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"db": "none"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if count < 1 {
				return fmt.Errorf("--count must be at least 1")
			}
			for i := 0; i < count; i++ {
				code, err := credentials.GenerateInviteCode()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), code)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 1, "number of codes to print")
	return cmd
}
