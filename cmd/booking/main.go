package main

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/example/barbershop-booking/internal/application"
	"github.com/example/barbershop-booking/internal/calendar"
	"github.com/example/barbershop-booking/internal/config"
	httptransport "github.com/example/barbershop-booking/internal/http"
	"github.com/example/barbershop-booking/internal/metrics"
	"github.com/example/barbershop-booking/internal/notify"
	"github.com/example/barbershop-booking/internal/persistence/sqlite"
	"github.com/example/barbershop-booking/internal/persistence/sqlite/migration"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "hash-password" {
		os.Exit(runHashPassword(os.Args[2:], os.Stdout, os.Stderr))
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("failed to load .env file", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("booking service stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	storage, err := sqlite.Open(migration.DefaultSQLiteConfig(cfg.DatabasePath))
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer func() {
		if cerr := storage.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	if err := storage.Migrate(ctx, logger); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	handler, err := buildHandler(cfg, storage, time.Now, logger)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("booking service listening", "addr", server.Addr, "timezone", cfg.Timezone)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve http: %w", err)
	}
	return nil
}

// buildHandler wires services and handlers on top of an opened, migrated
// storage.
func buildHandler(cfg config.Config, storage *sqlite.Storage, now func() time.Time, logger *slog.Logger) (http.Handler, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
	}
	provider := calendar.NewProvider(loc, now)

	var notifier application.BookingNotifier
	if cfg.TelegramEnabled() {
		telegram, err := notify.NewTelegramNotifier(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			logger.Warn("telegram notifications disabled", "error", err)
		} else {
			notifier = telegram
		}
	}

	bookingService := application.NewBookingService(storage, storage, provider, now, application.BookingServiceOptions{
		SlotMinutes: cfg.SlotMinutes,
		Notifier:    notifier,
		Logger:      logger,
	})
	adminService := application.NewScheduleAdminService(storage, storage, logger)

	renderer, err := httptransport.NewRenderer()
	if err != nil {
		return nil, err
	}
	flashes := httptransport.NewFlashStore(sessionSecret(cfg.SessionSecret, logger), false)

	routerCfg := httptransport.RouterConfig{
		Pages:           httptransport.NewPageHandler(bookingService, renderer, flashes, logger),
		API:             httptransport.NewAPIHandler(bookingService, logger),
		Health:          httptransport.NewHealthHandler(storage, logger),
		SubmitRateLimit: cfg.SubmitRateLimit,
		AdminRateLimit:  cfg.AdminRateLimit,
		TrustProxy:      cfg.TrustProxy,
		Logger:          logger,
	}

	auth, err := application.NewAdminAuthenticator(cfg.AdminUsername, cfg.AdminPasswordHash)
	if err != nil {
		return nil, fmt.Errorf("configure admin: %w", err)
	}
	if auth != nil {
		routerCfg.Admin = httptransport.NewAdminHandler(adminService, loc, logger)
		routerCfg.AdminAuth = auth
	} else {
		logger.Info("admin routes disabled: no password hash configured")
	}

	if cfg.MetricsEnabled {
		metrics.Register()
		routerCfg.Metrics = metrics.Handler()
	}

	return httptransport.NewRouter(routerCfg), nil
}

// sessionSecret returns the configured secret or a random one, in which case
// pending flashes do not survive a restart.
func sessionSecret(configured string, logger *slog.Logger) []byte {
	if configured != "" {
		return []byte(configured)
	}
	buf := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		panic(fmt.Sprintf("read random session secret: %v", err))
	}
	logger.Warn("BOOKING_SESSION_SECRET not set; using a random per-process secret")
	return buf
}

func runHashPassword(args []string, stdout, stderr io.Writer) int {
	if len(args) != 1 || strings.TrimSpace(args[0]) == "" {
		fmt.Fprintln(stderr, "usage: booking hash-password <password>")
		return 2
	}

	hash, err := application.HashPassword(args[0], application.DefaultArgon2idParams)
	if err != nil {
		fmt.Fprintf(stderr, "hash password: %v\n", err)
		return 1
	}
	fmt.Fprintln(stdout, hash)
	return 0
}
