package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"studyguard/internal/models"
	"studyguard/internal/service"
)

func barrierCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "barrier",
		Short: "Inspect or switch a household barrier",
	}
	cmd.AddCommand(barrierShowCmd(a))
	cmd.AddCommand(barrierToggleCmd(a))
	return cmd
}

func barrierShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <family-id-or-code>",
		Short: "Show the barrier state of a household",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			familyID, err := resolveFamily(cmd, a, args[0])
			if err != nil {
				return err
			}
			if _, err := a.household.GetFamily(cmd.Context(), familyID); err != nil {
				return err
			}
			status, err := service.NewBarrierService(a.deps, nil).GetOrCreateStatus(cmd.Context(), familyID)
			if err != nil {
				return err
			}
			printBarrier(cmd.OutOrStdout(), status)
			return nil
		},
	}
}

func barrierToggleCmd(a *app) *cobra.Command {
	var off bool

	cmd := &cobra.Command{
		Use:   "toggle <family-id-or-code>",
		Short: "Turn a household barrier on, or off with --off",
		Long: `Switch a household barrier. The change is not attributed to any parent.

Examples:
  studyguard-admin barrier toggle 12
  studyguard-admin barrier toggle K7QP --off`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			familyID, err := resolveFamily(cmd, a, args[0])
			if err != nil {
				return err
			}
			if _, err := a.household.GetFamily(cmd.Context(), familyID); err != nil {
				return err
			}
			status, err := service.NewBarrierService(a.deps, nil).Toggle(cmd.Context(), familyID, !off, nil)
			if err != nil {
				return err
			}
			printBarrier(cmd.OutOrStdout(), status)
			return nil
		},
	}

	cmd.Flags().BoolVar(&off, "off", false, "deactivate instead of activate")
	return cmd
}

func printBarrier(out io.Writer, status *models.BarrierStatus) {
	state := color.New(color.FgRed).Sprint("INACTIVE")
	if status.IsActive {
		state = color.New(color.FgGreen).Sprint("ACTIVE")
	}
	fmt.Fprintf(out, "Family %d barrier %s\n", status.FamilyID, state)
	fmt.Fprintf(out, "  check interval: %ds\n", status.CheckIntervalSeconds)
	if status.ActivatedAt != nil {
		fmt.Fprintf(out, "  activated at:   %s\n", status.ActivatedAt.Format("2006-01-02 15:04:05 MST"))
	}
	if status.ActivatedBy != nil {
		fmt.Fprintf(out, "  activated by:   user %d\n", *status.ActivatedBy)
	}
	fmt.Fprintf(out, "  updated at:     %s\n", status.UpdatedAt.Format("2006-01-02 15:04:05 MST"))
}
