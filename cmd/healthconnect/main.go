// Command healthconnect runs the HealthConnect API server and its offline tools.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"healthconnect-api/internal/ai"
	"healthconnect-api/internal/api"
	"healthconnect-api/internal/auth"
	"healthconnect-api/internal/config"
	"healthconnect-api/internal/doctors"
	"healthconnect-api/internal/logging"
	"healthconnect-api/internal/metrics"
	"healthconnect-api/internal/store"
)

var dbPath string

var rootCmd = &cobra.Command{
	Use:           "healthconnect",
	Short:         "HealthConnect health-tracking API",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite database path (default: DATABASE_PATH)")
	rootCmd.AddCommand(serveCmd, bmrCmd, exportCmd, importCmd, reportCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, databasePath(cfg))
	if err != nil {
		return err
	}
	defer st.Close()

	dir, err := doctors.Load()
	if err != nil {
		return err
	}
	m := metrics.New()
	aiSvc := ai.NewService(ai.NewGeminiGenerator(), ai.Policy{
		ServerKey:    cfg.GeminiAPIKey,
		DefaultModel: cfg.GeminiModel,
	}, logger).WithRecorder(m)
	recommender, err := doctors.NewRecommender(dir, aiSvc, 512)
	if err != nil {
		return err
	}
	if cfg.GeminiAPIKey == "" {
		logger.Warn("GEMINI_API_KEY not set; only users with their own key can use AI features")
	}

	srv := api.NewServer(api.Deps{
		Store:          st,
		Auth:           auth.NewService(st, cfg.JWTSecret, cfg.TokenTTL),
		AI:             aiSvc,
		Doctors:        dir,
		Recommender:    recommender,
		Metrics:        m,
		Logger:         logger,
		AllowedOrigins: cfg.Origins(),
		AIRatePerSec:   cfg.AIRatePerSec,
		AIRateBurst:    cfg.AIRateBurst,
		ChatRetention:  cfg.ChatRetention,
	})
	jobs := srv.StartMaintenance()
	defer jobs.Stop()

	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("addr", httpServer.Addr))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

func databasePath(cfg *config.Config) string {
	if dbPath != "" {
		return dbPath
	}
	return cfg.DatabasePath
}

// openStore opens the database for the offline commands.
func openStore(ctx context.Context) (*store.Store, error) {
	cfg, err := config.Decode()
	if err != nil {
		return nil, err
	}
	return store.Open(ctx, databasePath(cfg))
}
