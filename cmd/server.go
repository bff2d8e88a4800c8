/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mautops/request-gin/internal/api"
	"github.com/mautops/request-gin/internal/config"
	"github.com/mautops/request-gin/internal/container"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the API server",
	Long: `Start the Request Gin API server.
The server will listen on the configured host and port,
and provide REST API interfaces for service request approval.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, configPath, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		applyServerFlags(cmd, cfg)

		if config.IsProduction(cfg) {
			gin.SetMode(gin.ReleaseMode)
		}

		ctr, err := container.NewContainer(cfg, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize container: %w", err)
		}
		defer ctr.Close()

		tracing, err := api.InitTracing(cfg.Tracing, cfg.Env)
		if err != nil {
			return fmt.Errorf("failed to initialize tracing: %w", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		ctr.Start(ctx)

		deps := api.RouterDeps{
			Config:            cfg,
			Logger:            logger,
			DB:                ctr.DB(),
			Resolver:          ctr.Resolver(),
			Hub:               ctr.Hub(),
			Tracing:           tracing,
			RequestService:    ctr.RequestService(),
			StatisticsService: ctr.StatisticsService(),
		}
		if fga := ctr.OpenFGAClient(); fga != nil {
			deps.OpenFGA = fga
		}
		router := api.SetupRoutes(deps)

		if configPath != "" {
			watcher := config.NewConfigWatcher(cfg, configPath)
			watcher.SetLogger(logger)
			watcher.OnConfigChange(func(updated *config.Config) {
				if api.ApplyLogLevel(logger, updated.Log.Level) {
					logger.WithField("level", updated.Log.Level).Info("log level reloaded")
				}
			})
			if err := watcher.Start(); err != nil {
				logger.WithError(err).Warn("config hot reload disabled")
			} else {
				defer watcher.Stop()
			}
		}

		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		srv := &http.Server{
			Addr:              addr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			logger.WithField("addr", addr).Info("server starting")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			if err != nil {
				return fmt.Errorf("failed to start server: %w", err)
			}
		case <-ctx.Done():
		}

		logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Error("server forced to shutdown")
		}
		if err := tracing.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Warn("failed to flush traces")
		}

		logger.WithFields(logrus.Fields{"addr": addr}).Info("server exited")
		return nil
	},
}

// applyServerFlags 命令行参数覆盖配置文件中的监听地址
func applyServerFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("host") {
		cfg.Server.Host, _ = cmd.Flags().GetString("host")
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Port, _ = cmd.Flags().GetInt("port")
	}
}

func init() {
	rootCmd.AddCommand(serverCmd)

	serverCmd.Flags().String("host", "0.0.0.0", "Server host")
	serverCmd.Flags().Int("port", 8080, "Server port")
}
