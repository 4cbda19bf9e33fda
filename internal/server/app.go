// Package server initializes and runs the giveaway backend.
// It opens the database, applies migrations, wires the services and runs the
// HTTP API and the gRPC health endpoint until a shutdown signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/giveaway/internal/logging"
	"github.com/dmitrijs2005/giveaway/internal/server/config"
	"github.com/dmitrijs2005/giveaway/internal/server/httpapi"
	"github.com/dmitrijs2005/giveaway/internal/server/messaging"
	"github.com/dmitrijs2005/giveaway/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/giveaway/internal/server/services"

	gs "github.com/dmitrijs2005/giveaway/internal/server/grpc"
)

const pruneInterval = time.Hour

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	admins   *services.AdminService
	messages *services.MessageService
	http     *httpapi.Server
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(os.Stdout, c.LogLevel)
	for _, w := range c.Warnings() {
		logger.Warn(ctx, w)
	}

	db, err := repomanager.OpenDB(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	m := repomanager.NewPostgresRepositoryManager()
	if err := m.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	secret := []byte(c.SecretKey)
	gateway := messaging.NewGatewayClient(c.MessagingGatewayURL, c.MessagingAPIKey, c.MessagingSender)
	if !gateway.Enabled() {
		logger.Warn(ctx, "messaging gateway not configured, confirmations disabled")
	}

	attempts := services.NewAttemptLogger(db, m, logger)
	limiter := services.NewRateLimiter(db, m, c.RateLimitWindow, c.RateLimitMaxAttempts)
	messages := services.NewMessageService(db, m, gateway, logger)
	admins := services.NewAdminService(db, m, c)
	images := services.NewImageService(db, m, c)
	if !images.Enabled() {
		logger.Warn(ctx, "object storage not configured, prize images disabled")
	}

	deps := httpapi.Dependencies{
		Validator: services.NewQRValidator(db, m, limiter, attempts, logger),
		Submitter: services.NewEntrySubmitter(db, m, attempts, messages, logger, secret, c.VerificationTokenValidityDuration),
		Verifier:  services.NewEntryVerifier(db, m, logger, secret, c.VerificationTokenValidityDuration),
		Admins:    admins,
		Events:    services.NewEventService(db, m),
		QRCodes:   services.NewQRCodeService(db, m),
		Images:    images,
		Dashboard: services.NewDashboardService(db, m),
		Messages:  messages,
	}
	hs := httpapi.NewServer(c.HTTPAddr, logger, deps, httpapi.Options{CookieSecure: c.CookieSecure})

	return &App{config: c, logger: logger, db: db, admins: admins, messages: messages, http: hs}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.http.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.HealthAddrGRPC, app.logger, app.db)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// pruneRefreshTokens drops expired refresh tokens until ctx is done.
func (app *App) pruneRefreshTokens(ctx context.Context) {
	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := app.admins.PruneRefreshTokens(ctx)
			if err != nil {
				app.logger.Warn(ctx, "refresh token cleanup failed", "error", err)
				continue
			}
			if n > 0 {
				app.logger.Debug(ctx, "refresh tokens pruned", "count", n)
			}
		}
	}
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "http", app.config.HTTPAddr, "grpc_health", app.config.HealthAddrGRPC)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	if app.config.HealthAddrGRPC != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.startGRPCServer(ctx, cancelFunc)
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.pruneRefreshTokens(ctx)
	}()

	wg.Wait()
	app.messages.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
	app.logger.Info(ctx, "Stopped")
}
