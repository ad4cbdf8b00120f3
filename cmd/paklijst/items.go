package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/erazemk/paklijst/internal/controller"
	"github.com/erazemk/paklijst/internal/model"
	"github.com/erazemk/paklijst/internal/progress"
	"github.com/erazemk/paklijst/internal/store"
)

// userFlag registers the required --user flag.
func userFlag(cmd *cobra.Command, name *string) {
	cmd.Flags().StringVarP(name, "user", "u", "", "user key or display name")
	_ = cmd.MarkFlagRequired("user")
}

func (c *cli) listCmd() *cobra.Command {
	var user, filter, search string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show a packing list grouped by category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := model.ParseFilter(filter)
			if err != nil {
				return err
			}
			ctrl, u, err := c.user(user)
			if err != nil {
				return err
			}

			st := controller.ViewState{}.WithUser(u.Key).WithFilter(f).WithSearch(search)
			view, err := ctrl.View(cmd.Context(), st)
			if err != nil {
				return err
			}
			printView(cmd.OutOrStdout(), view)
			return nil
		},
	}
	userFlag(cmd, &user)
	cmd.Flags().StringVarP(&filter, "filter", "f", "all", "all|unpacked|packed|deleted")
	cmd.Flags().StringVarP(&search, "query", "q", "", "only items whose name contains this text")
	return cmd
}

func printView(w io.Writer, view *controller.View) {
	fmt.Fprintf(w, "%s (%s)\n", view.User.Name, view.State.Filter.Label())
	shown := 0
	for _, g := range view.Groups {
		if len(g.Items) == 0 {
			continue
		}
		shown++
		fmt.Fprintf(w, "\n%s %s – %s\n", g.Emoji, g.Label, countString(g.Progress))
		for _, it := range g.Items {
			box := "[ ]"
			if it.Packed {
				box = "[x]"
			}
			line := fmt.Sprintf("  %s %d %s", box, it.ID, it.Name)
			if it.Notes != "" {
				line += " (" + it.Notes + ")"
			}
			fmt.Fprintln(w, line)
		}
	}
	if shown == 0 {
		fmt.Fprintln(w, "Geen items gevonden.")
	}
	fmt.Fprintf(w, "\nTotaal: %s\n", countString(view.Progress.Overall))
}

func countString(c progress.Count) string {
	return fmt.Sprintf("%d/%d (%d%%)", c.Packed, c.Total, c.Percent)
}

func (c *cli) addCmd() *cobra.Command {
	var user string
	var d store.Draft
	cmd := &cobra.Command{
		Use:   "add NAME...",
		Short: "Add an item",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, u, err := c.user(user)
			if err != nil {
				return err
			}
			d.Name = strings.Join(args, " ")
			it, err := ctrl.Add(cmd.Context(), u, d)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Toegevoegd: %s (%s) #%d\n", it.Name, it.Category, it.ID)
			return nil
		},
	}
	userFlag(cmd, &user)
	cmd.Flags().StringVarP(&d.Category, "category", "c", model.DefaultCategory.Label(), "category label")
	cmd.Flags().StringVarP(&d.Notes, "notes", "n", "", "free-form notes")
	cmd.Flags().BoolVarP(&d.Packed, "packed", "p", false, "add the item already packed")
	return cmd
}

// itemCmd builds a command acting on one item id.
func (c *cli) itemCmd(use, short string, run func(cmd *cobra.Command, ctrl *controller.Controller, u model.User, id int64) error) *cobra.Command {
	var user string
	cmd := &cobra.Command{
		Use:   use + " ID",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid item id %q", args[0])
			}
			ctrl, u, err := c.user(user)
			if err != nil {
				return err
			}
			return run(cmd, ctrl, u, id)
		},
	}
	userFlag(cmd, &user)
	return cmd
}

func (c *cli) packCmd() *cobra.Command {
	var undo bool
	cmd := c.itemCmd("pack", "Mark an item packed", func(cmd *cobra.Command, ctrl *controller.Controller, u model.User, id int64) error {
		it, err := ctrl.SetPacked(cmd.Context(), u, id, !undo)
		if err != nil {
			return err
		}
		verb := "Ingepakt"
		if undo {
			verb = "Uitgepakt"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", verb, it.Name)
		return nil
	})
	cmd.Flags().BoolVar(&undo, "undo", false, "unpack the item instead")
	return cmd
}

func (c *cli) deleteCmd() *cobra.Command {
	return c.itemCmd("delete", "Move an item to the deleted list", func(cmd *cobra.Command, ctrl *controller.Controller, u model.User, id int64) error {
		it, err := ctrl.Delete(cmd.Context(), u, id)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Verwijderd: %s\n", it.Name)
		return nil
	})
}

func (c *cli) restoreCmd() *cobra.Command {
	return c.itemCmd("restore", "Bring back a deleted item", func(cmd *cobra.Command, ctrl *controller.Controller, u model.User, id int64) error {
		it, err := ctrl.Restore(cmd.Context(), u, id)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Teruggezet: %s\n", it.Name)
		return nil
	})
}

func (c *cli) unpackAllCmd() *cobra.Command {
	var user string
	var yes bool
	cmd := &cobra.Command{
		Use:   "unpack-all",
		Short: "Unpack every item of a list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctrl, u, err := c.user(user)
			if err != nil {
				return err
			}
			n, err := ctrl.UnpackAll(cmd.Context(), u, yes)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d items uitgepakt.\n", n)
			return nil
		},
	}
	userFlag(cmd, &user)
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm unpacking everything")
	return cmd
}

func (c *cli) suggestCmd() *cobra.Command {
	var user string
	var pack bool
	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "Pick a random unpacked item",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctrl, u, err := c.user(user)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			st, it, err := ctrl.Suggest(cmd.Context(), controller.ViewState{}.WithUser(u.Key))
			if err != nil {
				return err
			}
			if it == nil {
				fmt.Fprintln(out, "Geen niet-ingepakte items meer!")
				return nil
			}
			fmt.Fprintf(out, "Suggestie: %s (%s) #%d\n", it.Name, it.Category, it.ID)
			if !pack {
				return nil
			}

			if _, it, err = ctrl.AcceptSuggestion(cmd.Context(), st); err != nil {
				return err
			}
			fmt.Fprintf(out, "Ingepakt: %s\n", it.Name)
			return nil
		},
	}
	userFlag(cmd, &user)
	cmd.Flags().BoolVarP(&pack, "pack", "p", false, "pack the suggested item right away")
	return cmd
}

func (c *cli) suggestionsCmd() *cobra.Command {
	var user, accept string
	cmd := &cobra.Command{
		Use:   "suggestions",
		Short: "List items other users have that this list lacks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctrl, u, err := c.user(user)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			feed, err := ctrl.PeerSuggestions(cmd.Context(), u)
			if err != nil {
				return err
			}

			if accept == "" {
				if len(feed) == 0 {
					fmt.Fprintln(out, "Geen suggesties.")
				}
				for _, s := range feed {
					fmt.Fprintf(out, "%s %s (%s)\n", model.CategoryOf(s.Category).Emoji(), s.Name, s.Category)
				}
				return nil
			}

			for _, s := range feed {
				if s.Name != accept {
					continue
				}
				it, err := ctrl.AcceptPeerSuggestion(cmd.Context(), u, s)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Toegevoegd: %s (%s) #%d\n", it.Name, it.Category, it.ID)
				return nil
			}
			return fmt.Errorf("suggestion %q: %w", accept, model.ErrNotFound)
		},
	}
	userFlag(cmd, &user)
	cmd.Flags().StringVar(&accept, "accept", "", "add the suggestion with this name")
	return cmd
}
