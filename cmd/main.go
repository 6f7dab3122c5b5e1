package main

import (
	"context"
	"database/sql"
	"html/template"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/golang-cz/devslog"
	"github.com/mdobak/go-xerrors"
	"github.com/siahsang/yatube/internal/auth"
	"github.com/siahsang/yatube/internal/cache"
	"github.com/siahsang/yatube/internal/config"
	"github.com/siahsang/yatube/internal/core"
	"github.com/siahsang/yatube/internal/database"
	"github.com/siahsang/yatube/internal/storage"
	"github.com/siahsang/yatube/internal/utils/databaseutils"
	"github.com/siahsang/yatube/internal/web"
	"github.com/siahsang/yatube/ui"
	"github.com/spf13/cobra"
)

type application struct {
	config   config.Config
	logger   *slog.Logger
	core     *core.Core
	auth     *auth.Auth
	session  databaseutils.Session
	cache    *cache.PageCache
	renderer web.Renderer
	media    storage.Storage
}

// cli is shared by every command: the persistent pre-run fills it in.
type cli struct {
	configPath string
	config     config.Config
	logger     *slog.Logger
	out        io.Writer
}

func main() {
	if err := newRootCommand(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand(out io.Writer) *cobra.Command {
	c := &cli{out: out}

	root := &cobra.Command{
		Use:           "yatube",
		Short:         "Yatube blog server",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(c.configPath)
			if err != nil {
				return err
			}
			c.config = cfg
			c.logger = configLogger(cfg, out)
			return nil
		},
	}
	root.SetOut(out)
	root.SetErr(out)
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "path to a YAML configuration file")

	root.AddCommand(c.serveCommand(), c.migrateCommand(), c.groupCommand())

	return root
}

func (c *cli) serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.config.Validate(); err != nil {
				c.logger.Error("Invalid configuration", "error", err)
				return err
			}

			db, err := c.openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer closeDB(db, c.logger)

			app, err := newApplication(c.config, c.logger, db)
			if err != nil {
				c.logger.Error("Errors building application", "stack", xerrors.Sprint(err))
				return err
			}

			if err := app.serve(cmd.Context()); err != nil {
				c.logger.Error("Errors running server", "stack", xerrors.Sprint(err))
				return err
			}
			return nil
		},
	}
}

func (c *cli) migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := c.openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer closeDB(db, c.logger)

			if err := database.Migrate(cmd.Context(), db, c.config.DBDriver); err != nil {
				c.logger.Error("Errors applying schema", "stack", xerrors.Sprint(err))
				return err
			}
			c.logger.Info("Schema is up to date", "driver", c.config.DBDriver)
			return nil
		},
	}
}

func (c *cli) openDB(ctx context.Context) (*sql.DB, error) {
	db, err := database.Open(ctx, database.Options{
		Driver:       c.config.DBDriver,
		DSN:          c.config.DBDSN,
		MaxIdleConns: c.config.DBMaxIdleConns,
		MaxIdleTime:  c.config.DBTimeout * 5,
	}, c.logger)
	if err != nil {
		c.logger.Error("Errors opening database connection", "stack", xerrors.Sprint(err))
		return nil, err
	}
	return db, nil
}

func closeDB(db *sql.DB, logger *slog.Logger) {
	if err := db.Close(); err != nil {
		logger.Error("Errors closing database connection", "error", err)
	}
}

func newApplication(cfg config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	var (
		media storage.Storage
		err   error
	)
	switch cfg.MediaBackend {
	case config.MediaS3:
		media, err = storage.NewS3Storage(cfg.S3Region, cfg.S3Bucket, cfg.MediaURL, logger)
	default:
		media, err = storage.NewLocalStorage(cfg.MediaRoot, cfg.MediaURL, logger)
	}
	if err != nil {
		return nil, err
	}

	renderer, err := web.NewTemplateRenderer(ui.Files, template.FuncMap{
		"mediaURL": media.URL,
	})
	if err != nil {
		return nil, err
	}

	return &application{
		config:   cfg,
		logger:   logger,
		core:     core.NewCore(logger, databaseutils.NewSQLTemplate(db, cfg.DBTimeout)),
		auth:     auth.New(cfg.JWTSecret, cfg.TokenTTL),
		session:  databaseutils.NewSession(db, logger),
		cache:    cache.NewPageCache(cache.DefaultMaxEntries),
		renderer: renderer,
		media:    media,
	}, nil
}

func configLogger(cfg config.Config, out io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{
		AddSource: true,
		Level:     parseLevel(cfg.LogLevel),
	}

	if cfg.LogFormat == config.LogFormatJSON {
		return slog.New(slog.NewJSONHandler(out, opts))
	}

	handler := devslog.NewHandler(
		out, &devslog.Options{
			HandlerOptions:  opts,
			NewLineAfterLog: false,
		})
	return slog.New(handler)
}

func parseLevel(level string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		return slog.LevelInfo
	}
	return l
}
