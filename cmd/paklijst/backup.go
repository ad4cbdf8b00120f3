package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/erazemk/paklijst/internal/controller"
)

func (c *cli) presetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List the available presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctrl, err := c.controller()
			if err != nil {
				return err
			}
			presets, err := ctrl.Presets()
			if err != nil {
				return err
			}
			if len(presets) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Geen presets gevonden.")
			}
			for _, p := range presets {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return nil
		},
	}
}

func (c *cli) loadPresetCmd() *cobra.Command {
	var user string
	var yes bool
	cmd := &cobra.Command{
		Use:   "load-preset PRESET",
		Short: "Replace a list with a preset",
		Long:  "Replace a list with a preset. All current items and progress are lost.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("loading a preset replaces the whole list, pass --yes to confirm")
			}
			ctrl, u, err := c.user(user)
			if err != nil {
				return err
			}
			n, err := ctrl.LoadPreset(cmd.Context(), u, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Presetlijst geladen en toegepast! (%d items)\n", n)
			return nil
		},
	}
	userFlag(cmd, &user)
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm replacing the list")
	return cmd
}

func (c *cli) exportCmd() *cobra.Command {
	var user, output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a CSV backup of a list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctrl, u, err := c.user(user)
			if err != nil {
				return err
			}
			if output == "" {
				return ctrl.Export(cmd.Context(), u, cmd.OutOrStdout())
			}
			if output == "." {
				output = controller.ExportName(u)
			}

			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("creating export file: %w", err)
			}
			if err := ctrl.Export(cmd.Context(), u, f); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("closing export file: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Geëxporteerd naar %s\n", output)
			return nil
		},
	}
	userFlag(cmd, &user)
	cmd.Flags().StringVarP(&output, "output", "o", "", `output file ("." for the default name, empty for stdout)`)
	return cmd
}

func (c *cli) importCmd() *cobra.Command {
	var user string
	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Restore a list from a CSV backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, u, err := c.user(user)
			if err != nil {
				return err
			}
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening backup: %w", err)
			}
			defer f.Close()

			n, err := ctrl.Import(cmd.Context(), u, f)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Paklijst hersteld! (%d items)\n", n)
			return nil
		},
	}
	userFlag(cmd, &user)
	return cmd
}
