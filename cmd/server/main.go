package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/dmitrymomot/vaultgate/config"
	"github.com/dmitrymomot/vaultgate/internal/api"
	"github.com/dmitrymomot/vaultgate/pkg/health"
	"github.com/dmitrymomot/vaultgate/pkg/logger"
	"github.com/dmitrymomot/vaultgate/pkg/mailer"
	"github.com/dmitrymomot/vaultgate/pkg/mailer/resend"
	"github.com/dmitrymomot/vaultgate/pkg/otp"
	"github.com/dmitrymomot/vaultgate/pkg/storage"
	"github.com/dmitrymomot/vaultgate/pkg/token"
)

// version is set at build time via -ldflags.
var version = "dev"

const (
	readHeaderTimeout = 10 * time.Second
	idleTimeout       = 120 * time.Second

	// sweepSchedule drops expired passcode challenges.
	sweepSchedule = "@every 1m"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration rejected", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log := logger.NewWithSentry(cfg.Log, cfg.Sentry, api.RequestIDExtractor())

	if err := run(cfg, log); err != nil {
		log.Error("server exited", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	gateway, err := storage.New(cfg.Storage, storage.WithLogger(log))
	if err != nil {
		return err
	}

	m := mailer.New(newSender(cfg, log), cfg.Mailer)
	manager := otp.NewManager(otp.NewMemoryStore(),
		otp.WithLength(cfg.OTP.Length),
		otp.WithTTL(cfg.OTP.TTL),
		otp.WithLogger(log),
		otp.WithDelivery(func(ctx context.Context, identity, code string) error {
			return m.SendCode(ctx, identity, code, cfg.OTP.TTL)
		}),
	)

	tokens, err := token.New([]byte(cfg.Token.Secret), cfg.Token.TTL)
	if err != nil {
		return err
	}

	handler := api.New(api.Deps{
		Logger:  log,
		OTP:     manager,
		Tokens:  tokens,
		Gateway: gateway,
		Validator: storage.NewValidator(
			cfg.Files.MaxSizeBytes(),
			cfg.Files.AllowedExtensions,
			cfg.Files.AllowedMIMETypes,
		),
		Checker:    health.NewChecker(health.Checks{"storage": gateway.Ping}, health.WithLogger(log)),
		PresignTTL: cfg.Files.PresignTTL,
		MaxBytes:   cfg.Files.MaxSizeBytes(),
		Version:    version,
	})

	sweeper := cron.New()
	if _, err := sweeper.AddFunc(sweepSchedule, func() {
		manager.Sweep(context.Background())
	}); err != nil {
		return err
	}
	sweeper.Start()
	defer sweeper.Stop()

	return serve(cfg, log, handler.Router())
}

// newSender picks the delivery provider: Resend when configured,
// otherwise passcodes go to the log.
func newSender(cfg *config.Config, log *slog.Logger) mailer.Sender {
	if cfg.Resend.Enabled() {
		return resend.New(cfg.Resend)
	}
	log.Info("no email provider configured, passcodes are logged")
	return mailer.NewLogSender(log)
}

// serve runs the HTTP server until SIGINT/SIGTERM, then drains it
// within the configured shutdown timeout.
func serve(cfg *config.Config, log *slog.Logger, handler http.Handler) error {
	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		IdleTimeout:       idleTimeout,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	ln, err := net.Listen("tcp", server.Addr)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting",
			slog.String("address", ln.Addr().String()),
			slog.String("version", version),
		)
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	log.Info("shutdown completed")
	return nil
}
