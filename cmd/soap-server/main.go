package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/thapar25/EMR/scribe"
	"github.com/thapar25/EMR/scribe/httpapi"
	"github.com/thapar25/EMR/scribe/provider"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const shutdownTimeout = 30 * time.Second

func main() {
	envErr := godotenv.Load()

	cfg, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}

	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		fmt.Fprintln(os.Stderr, "missing OPENAI_API_KEY (or pass -api-key)")
		os.Exit(2)
	}

	logger, err := newLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintln(os.Stderr, fmt.Errorf("init logger: %w", err).Error())
		os.Exit(2)
	}
	defer logger.Sync()
	if envErr != nil && !errors.Is(envErr, os.ErrNotExist) {
		logger.Warn("failed to load .env", zap.Error(envErr))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := provider.NewClient(apiKey, cfg.BaseURL)
	retry := provider.BackoffPolicy(cfg.Retries + 1)
	streamer := &provider.ChatStreamer{
		Client:          client,
		Model:           cfg.SummaryModel,
		Temperature:     cfg.SummaryTemperature,
		MaxOutputTokens: cfg.MaxOutputTokens,
		Retry:           retry,
		Logger:          logger.Named("openai"),
	}
	completer := &provider.ResponsesCompleter{
		Client:          client,
		Model:           cfg.ExtractModel,
		Temperature:     cfg.ExtractTemperature,
		MaxOutputTokens: cfg.MaxOutputTokens,
		Retry:           retry,
		Logger:          logger.Named("openai"),
	}

	srv := newServer(cfg, streamer, completer, logger)
	if err := serve(ctx, srv, logger); err != nil {
		logger.Error("server stopped", zap.Error(err))
		os.Exit(1)
	}
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// newServer wires the summarizer and extractor behind the HTTP transport.
func newServer(cfg Config, streamer scribe.TextStreamer, completer scribe.StructuredCompleter, logger *zap.Logger) *http.Server {
	summarizer := scribe.NewSummarizer(streamer, scribe.SummarizerOptions{
		MaxInputChars: cfg.MaxInputChars,
		Logger:        logger.Named("summary"),
	})
	extractor := scribe.NewExtractor(completer, scribe.ExtractorOptions{
		MaxInputChars: cfg.MaxInputChars,
		Logger:        logger.Named("extract"),
	})

	handler := httpapi.NewHandler(summarizer, extractor, cfg.ExtractTimeout, logger.Named("http"))
	router := httpapi.NewRouter(handler, httpapi.RouterConfig{
		RateLimit:      rate.Limit(cfg.RateLimit),
		RateBurst:      cfg.RateBurst,
		AllowedOrigins: cfg.AllowedOrigins,
		MaxBodyBytes:   cfg.MaxBodyBytes,
	})

	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           router.SetupRouter(logger.Named("http")),
		ReadHeaderTimeout: 10 * time.Second,
		// Summary responses stream for as long as the model writes; no WriteTimeout.
		IdleTimeout: 120 * time.Second,
	}
}

func serve(ctx context.Context, srv *http.Server, logger *zap.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("server exited")
	return nil
}
