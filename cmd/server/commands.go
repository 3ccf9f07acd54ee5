package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"quickflip/server/config"
	"quickflip/server/internal/analysis"
	"quickflip/server/internal/api"
	"quickflip/server/internal/database"
	"quickflip/server/internal/deals"
	"quickflip/server/internal/metrics"
	"quickflip/server/internal/models"
	"quickflip/server/internal/queue"
	"quickflip/server/internal/telegram"
)

func newRootCmd(logger *logrus.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:           "quickflip",
		Short:         "Wholesale deal evaluation and buyer matching server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), logger)
		},
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP API",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runServe(cmd.Context(), logger)
			},
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Create or update the storage schema and exit",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runMigrate(cmd.Context(), logger)
			},
		},
		newAnalyzeCmd(),
	)
	return root
}

func newAnalyzeCmd() *cobra.Command {
	var asking, arv, repair float64

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Print the deal analysis for the given figures",
		RunE: func(cmd *cobra.Command, args []string) error {
			if asking < 0 || arv < 0 || repair < 0 {
				return errors.New("asking, arv and repair must be non-negative")
			}
			p := models.Property{AskingPrice: asking, RepairCost: &repair}
			if cmd.Flags().Changed("arv") {
				p.ARV = &arv
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(analysis.Analyze(p))
		},
	}

	cmd.Flags().Float64Var(&asking, "asking", 0, "asking price")
	cmd.Flags().Float64Var(&arv, "arv", 0, "after-repair value")
	cmd.Flags().Float64Var(&repair, "repair", 0, "estimated repair cost")
	_ = cmd.MarkFlagRequired("asking")
	return cmd
}

func loadConfig(logger *logrus.Logger) (*config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	if level, err := logrus.ParseLevel(cfg.Log.Level); err == nil {
		logger.SetLevel(level)
	} else {
		logger.WithField("level", cfg.Log.Level).Warn("Unknown log level, keeping info")
	}
	return cfg, nil
}

func runMigrate(ctx context.Context, logger *logrus.Logger) error {
	cfg, err := loadConfig(logger)
	if err != nil {
		return err
	}

	store, err := database.Open(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	logger.Info("Running database migrations...")
	if err := store.RunMigrations(ctx); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}
	logger.Info("Migrations complete")
	return nil
}

func runServe(ctx context.Context, logger *logrus.Logger) error {
	cfg, err := loadConfig(logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := database.Open(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	logger.Info("Running database migrations...")
	if err := store.RunMigrations(ctx); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	dealQueue := queue.NewDealQueue(cfg.Queue.Size, logger)
	notifier := telegram.NewService(telegram.Settings{
		Enabled:  cfg.Telegram.Enabled,
		BotToken: cfg.Telegram.BotToken,
		ChatID:   cfg.Telegram.ChatID,
		MinRank:  models.Rank(cfg.Telegram.MinRank),
	}, logger)
	dealQueue.Subscribe(notifier.HandleDealEvent)
	dealQueue.Start()
	defer dealQueue.Close()

	m := metrics.New(cfg.Metrics.Prefix)
	service := deals.NewService(store, dealQueue, m, cfg.Matching.BuyerPoolLimit, logger)

	gin.SetMode(cfg.Server.GinMode)
	router := api.NewRouter(api.NewHandler(service, logger), m, logger)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
