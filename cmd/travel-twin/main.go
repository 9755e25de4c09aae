// Command travel-twin serves an in-memory copy of the travel guide API, for running the contract
// tests locally.
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

	"github.com/travelguide/crud-contract-tests/servicetwin"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	port        int
	user        string
	password    string
	signingKey  string
	seed        bool
	verbose     bool
	notFound404 bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "travel-twin",
	Short: "In-memory travel guide API for local contract test runs",
	Long: `travel-twin serves the category and destination endpoints of the travel guide API
from memory, with bearer-token login at /user/login and the standard fixture data.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx)
	},
}

func init() {
	rootCmd.Flags().IntVar(&port, "port", 3000, "port to listen on")
	rootCmd.Flags().StringVar(&user, "user", "tester@example.com", "email address accepted by /user/login")
	rootCmd.Flags().StringVar(&password, "password", "secret", "password accepted by /user/login")
	rootCmd.Flags().StringVar(&signingKey, "signing-key", "", "HMAC key for issued tokens")
	rootCmd.Flags().BoolVar(&seed, "seed", true, "start with the standard fixture data")
	rootCmd.Flags().BoolVar(&notFound404, "not-found-404", false, "answer reads of missing records with 404 instead of 200 and null")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log at debug level")
}

func serve(ctx context.Context) error {
	config := servicetwin.Config{
		Users:      map[string]string{user: password},
		SigningKey: []byte(signingKey),
		Seed:       seed,
		Logger:     logger,
	}
	if notFound404 {
		config.Quirks.NotFoundStatus = http.StatusNotFound
	}
	twin := servicetwin.New(config)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           twin.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	logger.Info("travel twin listening", zap.Int("port", port), zap.Bool("seeded", seed))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}
	logger.Info("travel twin stopped")
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
