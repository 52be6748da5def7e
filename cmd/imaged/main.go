// Command imaged runs the image upload service as a long-lived HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kylejryan/image-upload-service/internal/app"
	"github.com/kylejryan/image-upload-service/internal/config"
	"github.com/kylejryan/image-upload-service/internal/logging"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "imaged",
	Short: "Presigned-URL image upload service backed by S3 and DynamoDB",
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := config.Load()
		if err != nil {
			return err
		}
		addr, err := cmd.Flags().GetString("addr")
		if err != nil {
			return fmt.Errorf("failed to get addr: %w", err)
		}
		if addr != "" {
			env.HTTPAddr = addr
		}
		return serve(cmd.Context(), env)
	},
}

func serve(ctx context.Context, env config.Env) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, env, slog.Default())
	if err != nil {
		return err
	}
	srv := &http.Server{
		Addr:              env.HTTPAddr,
		Handler:           a.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", env.HTTPAddr)
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

	slog.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (overrides HTTP_ADDR)")
	rootCmd.AddCommand(serveCmd)
}

func main() {
	slog.SetDefault(logging.CreateLogger())
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		slog.Error("failed to execute command", "error", err)
		os.Exit(1)
	}
}
