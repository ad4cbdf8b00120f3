package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (c *cli) usersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "List the configured users and their progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctrl, err := c.controller()
			if err != nil {
				return err
			}
			reports, err := ctrl.AllProgress(cmd.Context())
			if err != nil {
				return err
			}
			for _, r := range reports {
				fmt.Fprintf(cmd.OutOrStdout(), "%-20s %s  %s\n", r.User.Key, r.User.Name, countString(r.Overall))
			}
			return nil
		},
	}
}

func (c *cli) statsCmd() *cobra.Command {
	var user string
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show packing progress per category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctrl, u, err := c.user(user)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			report, err := ctrl.Progress(cmd.Context(), u)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Totaal: %s\n", countString(report.Overall))
			for _, cc := range report.Categories {
				fmt.Fprintf(out, "%s %s: %s\n", cc.Emoji, cc.Label, countString(cc.Count))
			}

			others, err := ctrl.OthersProgress(cmd.Context(), u)
			if err != nil {
				return err
			}
			if len(others) > 0 {
				fmt.Fprintln(out, "\nAndere gebruikers:")
			}
			for _, r := range others {
				fmt.Fprintf(out, "%s: %s\n", r.User.Name, countString(r.Overall))
			}
			return nil
		},
	}
	userFlag(cmd, &user)
	return cmd
}
