package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"taskboard/database"
	"taskboard/handlers"
	"taskboard/store"
	"taskboard/uploads"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}

		db, err := database.Open(cfg, log)
		if err != nil {
			return err
		}
		if err := database.Migrate(db); err != nil {
			return err
		}

		router := handlers.NewRouter(handlers.Options{
			Credentials: store.NewCredentials(db, cfg.TokenLength),
			Projects:    store.NewProjects(db),
			Tasks:       store.NewTasks(db),
			Uploads:     uploads.NewGateway(cfg),
			Logger:      log,
			MaxBodySize: cfg.MaxUploadSize + 1<<20,
			StaticDir:   cfg.StaticDir,
		})

		srv := &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       60 * time.Second,
			WriteTimeout:      60 * time.Second,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		errc := make(chan error, 1)
		go func() {
			log.Infof("Server starting on port %s", cfg.ServerPort)
			errc <- srv.ListenAndServe()
		}()

		select {
		case err := <-errc:
			if !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		case <-ctx.Done():
		}

		log.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}
