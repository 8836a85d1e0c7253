package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/choropleth-cli/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the interactive maps",
	Long:  "Loads both sources once and serves the linked maps, per-map SVG and GeoJSON, Gini trend charts and the interaction session API.",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntP("port", "p", 0, "HTTP server port (overrides server.port)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if port, _ := cmd.Flags().GetInt("port"); port > 0 {
		cfg.Server.Port = port
	}

	atlas, _, err := loadAtlas(ctx, cfg, "serve")
	if err != nil {
		return err
	}

	s, err := server.New(atlas, server.Options{
		Width:          cfg.Render.Width,
		Height:         cfg.Render.Height,
		SessionTTL:     time.Duration(cfg.Server.SessionTTLMins) * time.Minute,
		CacheSize:      cfg.Server.CacheSize,
		CacheTTL:       time.Duration(cfg.Server.CacheTTLMins) * time.Minute,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		MaxSessions:    cfg.Server.MaxSessions,
		SessionRate:    cfg.Server.SessionRate,
		SessionBurst:   cfg.Server.SessionBurst,
	})
	if err != nil {
		return err
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	zap.L().Info("starting map server",
		zap.String("addr", addr),
		zap.Int("towns", atlas.Stats.Towns),
		zap.Int("cache_size", cfg.Server.CacheSize),
		zap.Int("max_sessions", cfg.Server.MaxSessions),
	)

	go func() {
		<-ctx.Done()
		zap.L().Info("shutting down map server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return eris.Wrap(err, "map server")
	}
	return nil
}
