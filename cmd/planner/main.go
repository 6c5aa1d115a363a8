package main // Entry point package

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/spf13/cobra"

	"github.com/studentplanner/planner/internal/config"
	"github.com/studentplanner/planner/internal/database"
	"github.com/studentplanner/planner/internal/queue"
	"github.com/studentplanner/planner/internal/repository"
	"github.com/studentplanner/planner/internal/server"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var cfgPath string
	root := &cobra.Command{
		Use:          "planner",
		Short:        "Study planner: tasks, habits and calendar",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "path to a TOML config file")

	load := func() (config.Config, error) {
		config.LoadDotEnv()
		return config.Load(cfgPath)
	}

	root.AddCommand(serveCmd(load), migrateCmd(load), notifierCmd(load), pruneCmd(load))
	return root
}

type loader func() (config.Config, error)

func serveCmd(load loader) *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			db, err := database.Open(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			if migrate {
				if err := database.Migrate(cmd.Context(), db, cfg.DBDriver); err != nil {
					return err
				}
			}

			e, err := server.New(cfg, server.Deps{DB: db, Store: server.SessionStore(cfg, db)})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			addr := ":" + cfg.Port
			log.Printf("listening on %s (env=%s, db=%s, sessions=%s)", addr, cfg.Env, cfg.DBDriver, cfg.SessionStore)
			go func() {
				if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Printf("server: %v", err)
					stop()
				}
			}()

			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return e.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply the schema before serving")
	return cmd
}

func migrateCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create missing tables",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			db, err := database.Open(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := database.Migrate(cmd.Context(), db, cfg.DBDriver); err != nil {
				return err
			}
			log.Printf("schema up to date (%s)", cfg.DBDriver)
			return nil
		},
	}
}

func notifierCmd(load loader) *cobra.Command {
	var logDir string
	cmd := &cobra.Command{
		Use:   "notifier",
		Short: "Consume user.registered events and log welcome notifications",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			log.Printf("notifier: consuming %s into %s", queue.UserRegisteredQueue, logDir)
			err = queue.StartAccountConsumer(ctx, cfg.RabbitURL, logDir)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().StringVar(&logDir, "log-dir", "logs", "directory for notifications.log")
	return cmd
}

func pruneCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "prune-sessions",
		Short: "Delete expired sessions from the SQL session store",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			db, err := database.Open(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			n, err := repository.NewSessionRepo(db).DeleteExpired(cmd.Context(), time.Now())
			if err != nil {
				return err
			}
			log.Printf("removed %d expired sessions", n)
			return nil
		},
	}
}
