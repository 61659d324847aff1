package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"paper-reader/internal/config"
	"paper-reader/internal/handler"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or could not be loaded: %v", err)
	}

	root := &cobra.Command{
		Use:           "paper-reader",
		Short:         "Local backend for reading and chatting with research papers",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}
	root.Flags().String("port", "", "Port to listen on (overrides PORT)")
	root.Flags().String("host", "", "Address to bind (overrides HOST)")

	if err := root.Execute(); err != nil {
		log.Printf("Error: %v", err)
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.NewConfig()
	if port, _ := cmd.Flags().GetString("port"); port != "" {
		cfg.ServerPort = port
	}
	if host, _ := cmd.Flags().GetString("host"); host != "" {
		cfg.Host = host
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Wiring
	container, err := config.NewContainer(ctx, cfg)
	if err != nil {
		return err
	}
	defer container.Close()
	logger := container.Logger

	// Handlers
	handlers := handler.Handlers{
		Files:        handler.NewFileHandler(container.FileService, logger),
		Papers:       handler.NewPaperHandler(container.PaperService, logger),
		Highlights:   handler.NewHighlightHandler(container.HighlightService, logger),
		Chat:         handler.NewChatHandler(container.ChatService, logger),
		Subscription: handler.NewSubscriptionHandler(container.SubscriptionService, logger),
	}

	// Router
	router := handler.NewRouter(handlers, handler.RouterOptions{
		Auth:           handler.NewAuthMiddleware(container.AuthService, logger),
		RateLimiter:    handler.NewRateLimiter(cfg.GetChatRatePerMinute()),
		Logger:         logger,
		AllowedOrigins: cfg.GetAllowedOrigins(),
	})

	// No write timeout: chat responses are long-lived event streams.
	server := &http.Server{
		Addr:              net.JoinHostPort(cfg.GetHost(), cfg.GetServerPort()),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Run server
	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server listening", "address", server.Addr, "home", cfg.GetHomeDir())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Graceful shutdown
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("Server failed to start", err)
			return err
		}
	case <-ctx.Done():
	}

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", err)
		_ = server.Close()
	}

	logger.Info("Server exited")
	return nil
}
