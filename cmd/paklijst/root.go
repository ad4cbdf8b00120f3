package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/erazemk/paklijst/internal/config"
	"github.com/erazemk/paklijst/internal/controller"
	"github.com/erazemk/paklijst/internal/db"
	"github.com/erazemk/paklijst/internal/model"
	"github.com/erazemk/paklijst/internal/preset"
	"github.com/erazemk/paklijst/internal/store"
)

// cli carries the state shared by all commands of one invocation.
type cli struct {
	v        *viper.Viper
	envFiles []string
	cfg      *config.Config
	app      *app
	closeLog func()
}

func newRootCmd() *cobra.Command {
	c := &cli{v: config.New()}

	root := &cobra.Command{
		Use:   "paklijst",
		Short: "Shared packing lists for a small group of travellers",
		Long: `Paklijst keeps one packing list per user, grouped by category, with
presets, CSV backups and a web interface.

Settings come from flags, PAKLIJST_* environment variables, an optional
.env file and an optional paklijst.yaml in the working directory.

Examples:
  # Serve the web interface and JSON API
  paklijst serve --addr :8080

  # Add an item and pack it
  paklijst add --user david_and_julia --category Elektronica Powerbank
  paklijst pack --user david_and_julia 12`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return c.close()
		},
	}

	flags := root.PersistentFlags()
	flags.StringSliceVar(&c.envFiles, "env-file", nil, "load environment from these files (default: .env if present)")
	flags.String("backend", config.BackendSQLite, "storage backend: sqlite|mysql|sheet")
	flags.String("db", "paklijst.sqlite3", "SQLite database path")
	flags.String("dsn", "", "MySQL DSN (needs parseTime=true)")
	flags.String("sheet", "paklijst.xlsx", "workbook path for the sheet backend")
	flags.String("preset-dir", ".", "directory holding the preset files")
	flags.String("default-preset", "packing_list.csv", "preset that seeds empty lists (empty disables seeding)")
	flags.StringSlice("users", config.DefaultUsers, "display names of the users")
	flags.StringP("log", "l", "", "log file path (default: no file, stdout/stderr only)")

	for key, name := range map[string]string{
		"backend":        "backend",
		"db":             "db",
		"dsn":            "dsn",
		"sheet":          "sheet",
		"preset_dir":     "preset-dir",
		"default_preset": "default-preset",
		"users":          "users",
		"log":            "log",
	} {
		_ = c.v.BindPFlag(key, flags.Lookup(name))
	}

	root.AddCommand(
		c.serveCmd(),
		c.usersCmd(),
		c.statsCmd(),
		c.listCmd(),
		c.addCmd(),
		c.packCmd(),
		c.deleteCmd(),
		c.restoreCmd(),
		c.unpackAllCmd(),
		c.suggestCmd(),
		c.suggestionsCmd(),
		c.presetsCmd(),
		c.loadPresetCmd(),
		c.exportCmd(),
		c.importCmd(),
	)
	return root
}

// setup loads the configuration and the logger. Serving logs at INFO; the
// one-shot commands only report warnings so their output stays readable.
func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(c.v, c.envFiles...)
	if err != nil {
		return err
	}
	c.cfg = cfg

	level := slog.LevelWarn
	if cmd.Name() == "serve" {
		level = slog.LevelInfo
	}
	closeLog, err := setupLogger(cfg.Log, level)
	if err != nil {
		return err
	}
	c.closeLog = closeLog
	return nil
}

func (c *cli) close() error {
	var err error
	if c.app != nil {
		err = c.app.close()
		c.app = nil
	}
	if c.closeLog != nil {
		c.closeLog()
		c.closeLog = nil
	}
	return err
}

// controller opens the configured backend on first use.
func (c *cli) controller() (*controller.Controller, error) {
	if c.app == nil {
		a, err := openApp(c.cfg)
		if err != nil {
			return nil, err
		}
		c.app = a
	}
	return c.app.ctrl, nil
}

// user resolves the --user flag against the roster.
func (c *cli) user(name string) (*controller.Controller, model.User, error) {
	ctrl, err := c.controller()
	if err != nil {
		return nil, model.User{}, err
	}
	u, err := ctrl.User(name)
	if err != nil {
		return nil, model.User{}, err
	}
	return ctrl, u, nil
}

// app is the wired item service behind every command.
type app struct {
	cfg     *config.Config
	db      *sql.DB
	driver  string
	backend store.Backend
	ctrl    *controller.Controller
}

func openApp(cfg *config.Config) (*app, error) {
	a := &app{cfg: cfg}

	switch cfg.Backend {
	case config.BackendSQLite, config.BackendMySQL:
		a.driver = db.DriverSQLite
		dsn := cfg.DB
		if cfg.Backend == config.BackendMySQL {
			a.driver = db.DriverMySQL
			dsn = cfg.DSN
		}

		database, err := db.Open(a.driver, dsn)
		if err != nil {
			return nil, err
		}
		// Ensure schema exists and add newer columns (idempotent).
		if err := db.Migrate(database, a.driver); err != nil {
			database.Close()
			return nil, fmt.Errorf("migrating database: %w", err)
		}
		a.db = database
		a.backend = store.NewSQLBackend(database, a.driver)
		slog.Info("database ready", "driver", a.driver)

	case config.BackendSheet:
		backend, err := store.NewSheetBackend(cfg.Sheet)
		if err != nil {
			return nil, err
		}
		a.backend = backend
		slog.Info("workbook ready", "path", cfg.Sheet)

	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}

	loader := preset.NewLoader(cfg.PresetDir, cfg.DefaultPreset)
	items := store.NewItems(a.backend, store.WithSeed(loader.Seed))
	a.ctrl = controller.New(items, loader, cfg.Roster(), nil)
	return a, nil
}

// secret returns the cookie signing key: the configured one, else the one
// kept in the database. The sheet backend has nowhere to keep it, so a
// fresh key is made and sessions end on restart.
func (a *app) secret(ctx context.Context) (string, error) {
	if a.cfg.SessionSecret != "" {
		return a.cfg.SessionSecret, nil
	}
	if a.db != nil {
		return store.SessionSecret(ctx, a.db, a.driver)
	}
	slog.Warn("no session_secret configured, sessions will not survive a restart")
	return uuid.NewString(), nil
}

func (a *app) close() error {
	return a.backend.Close()
}
