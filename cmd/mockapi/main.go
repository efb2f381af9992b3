// Command mockapi serves the Other Master endpoints from a local database so
// the console can run without the ERP backend.
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

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/Ruturaj2003/r-L-Tech/internal/logger"
	"github.com/Ruturaj2003/r-L-Tech/internal/mockapi"
)

var (
	addr      string
	driver    string
	dsn       string
	secret    string
	envelope  bool
	seedScope int
	seedUser  int
	logLevel  string

	tokenUser  int
	tokenScope int
	tokenTTL   time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "mockapi",
	Short: "Local backend for the ERP console",
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the Other Master API",
	RunE:  runServe,
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Print a bearer token for the console",
	RunE: func(cmd *cobra.Command, args []string) error {
		token, err := mockapi.IssueToken(secret, tokenUser, tokenScope, tokenTTL)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&secret, "secret", os.Getenv("MOCKAPI_SECRET"), "HS256 signing secret; empty disables auth")

	serveCmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8080", "listen address")
	serveCmd.Flags().StringVar(&driver, "driver", mockapi.DriverSQLite, "database driver (sqlite or postgres)")
	serveCmd.Flags().StringVar(&dsn, "dsn", "file:mockapi.db", "database connection string")
	serveCmd.Flags().BoolVar(&envelope, "envelope", false, `wrap list responses as {"data":[...]}`)
	serveCmd.Flags().IntVar(&seedScope, "seed-scope", 1, "scope to seed with sample data; 0 skips seeding")
	serveCmd.Flags().IntVar(&seedUser, "seed-user", 1, "user recorded as creator of seeded rows")
	serveCmd.Flags().StringVar(&logLevel, "log-level", "info", "debug, info, warn or error")

	tokenCmd.Flags().IntVar(&tokenUser, "user", 1, "user id claim")
	tokenCmd.Flags().IntVar(&tokenScope, "scope", 1, "scope id claim")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "token lifetime")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(tokenCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	level, err := logger.ParseLevel(logLevel)
	if err != nil {
		return err
	}
	log := logger.NewTerminal(os.Stderr, level)

	store, err := mockapi.Open(driver, dsn)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := store.Migrate(ctx); err != nil {
		return err
	}
	if seedScope > 0 {
		if err := store.Seed(ctx, seedScope, seedUser); err != nil {
			return err
		}
	}

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:              addr,
		Handler:           mockapi.NewRouter(mockapi.Options{Store: store, Logger: log, Secret: secret, Envelope: envelope}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", addr, "driver", driver, "auth", secret != "", "envelope", envelope)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
