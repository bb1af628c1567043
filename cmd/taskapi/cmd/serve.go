package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Sylvio51/TaskAPI/cmd/taskapi/cmd/cmdutil"
	"github.com/Sylvio51/TaskAPI/cmd/taskapi/internal/db/bunx"
	taskmiddleware "github.com/Sylvio51/TaskAPI/cmd/taskapi/internal/middleware"
	"github.com/Sylvio51/TaskAPI/cmd/taskapi/internal/repository"
	"github.com/Sylvio51/TaskAPI/cmd/taskapi/internal/server"
	"github.com/Sylvio51/TaskAPI/cmd/taskapi/internal/services/iam"
	"github.com/Sylvio51/TaskAPI/cmd/taskapi/internal/services/task"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Task API server",
	Long:  `Starts the HTTP server with the task, login, health and metrics endpoints.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		codec, err := cmdutil.NewTokenCodec(cfg.JWT)
		if err != nil {
			return err
		}

		db, err := cmdutil.OpenDB(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer bunx.Close(db)

		logger.Info("connected to database", zap.String("dialect", string(bunx.DetectDatabaseType(cfg.DatabaseURL))))

		userRepo := repository.NewBunUserRepository(db)
		taskRepo := repository.NewBunTaskRepository(db)

		lookup := repository.NewCachedUserLookup(userRepo, cfg.UserCache.Size, cfg.UserCache.TTL)
		authenticator, err := iam.NewJWTAuthenticator(codec, lookup, logger)
		if err != nil {
			return fmt.Errorf("create authenticator: %w", err)
		}

		taskService, err := task.NewService(taskRepo)
		if err != nil {
			return fmt.Errorf("create task service: %w", err)
		}

		corsOpts := server.DefaultCORSOptions()
		if len(cfg.CORS.AllowedOrigins) > 0 {
			corsOpts.AllowedOrigins = cfg.CORS.AllowedOrigins
		}

		handler := server.NewH2CHandler(server.RouterOptions{
			TaskService:   taskService,
			Authenticator: authenticator,
			Users:         userRepo,
			Tokens:        codec,
			TokenTTL:      cfg.JWT.TTL,
			Logger:        logger,
			AuthMetrics:   taskmiddleware.NewAuthMetrics(prometheus.DefaultRegisterer),
			Gatherer:      prometheus.DefaultGatherer,
			CORSOptions:   &corsOpts,
		})

		srv := &http.Server{
			Addr:         cfg.ServerAddr,
			Handler:      handler,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		}

		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("starting server", zap.String("addr", cfg.ServerAddr))
			serverErrors <- srv.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(shutdown)

		select {
		case err := <-serverErrors:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("server error: %w", err)

		case sig := <-shutdown:
			logger.Info("shutting down gracefully", zap.String("signal", sig.String()))

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				_ = srv.Close()
				return fmt.Errorf("graceful shutdown failed: %w", err)
			}

			logger.Info("server stopped")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
