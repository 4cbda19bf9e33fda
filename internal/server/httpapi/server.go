// Package httpapi is the gin HTTP transport: the public QR entry flow under
// /api and the bearer-authenticated dashboard API under /admin.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/giveaway/internal/logging"
	"github.com/dmitrijs2005/giveaway/internal/server/models"
	"github.com/dmitrijs2005/giveaway/internal/server/services"
	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 10 * time.Second

type QRValidator interface {
	ValidateQRCode(ctx context.Context, token string, meta services.RequestMeta) (*services.Validation, error)
}

type EntrySubmitter interface {
	SubmitEntry(ctx context.Context, in services.SubmitEntryInput) (*services.Submission, error)
}

type EntryVerifier interface {
	VerifyEntry(ctx context.Context, token string) (*models.EntryConfirmation, error)
}

type AdminAuth interface {
	Login(ctx context.Context, username, password string) (*services.TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	Authenticate(accessToken string) (string, error)
}

type EventManager interface {
	CreateEvent(ctx context.Context, adminID string, in services.EventInput) (*services.EventDetails, error)
	ListEvents(ctx context.Context) ([]*services.EventDetails, error)
	GetEvent(ctx context.Context, id string) (*services.EventDetails, error)
}

type QRCodeManager interface {
	GenerateBatch(ctx context.Context, adminID string, count int, expiresAt *time.Time) ([]*models.QRCode, error)
	ListQRCodes(ctx context.Context, limit, offset int) ([]*models.QRCode, error)
}

type ImageStore interface {
	PresignUpload(ctx context.Context, prizeID, contentType string) (*services.PresignedUpload, error)
	PresignDownload(ctx context.Context, prizeID string) (string, error)
}

type Dashboard interface {
	ListEntries(ctx context.Context, eventID string, limit, offset int) ([]*models.Entry, error)
	ListWinners(ctx context.Context, eventID string) ([]*models.Winner, error)
	ListAttempts(ctx context.Context, limit, offset int) ([]*models.Attempt, error)
}

type Messenger interface {
	Send(ctx context.Context, entryID *string, to, body string) (*models.MessageLog, error)
	ListMessages(ctx context.Context, limit, offset int) ([]*models.MessageLog, error)
}

// Dependencies are the services the handlers call.
type Dependencies struct {
	Validator QRValidator
	Submitter EntrySubmitter
	Verifier  EntryVerifier
	Admins    AdminAuth
	Events    EventManager
	QRCodes   QRCodeManager
	Images    ImageStore
	Dashboard Dashboard
	Messages  Messenger
}

// Options tune transport details.
type Options struct {
	// CookieSecure sets the Secure attribute on the verification cookie.
	CookieSecure bool
}

type Server struct {
	address string
	logger  logging.Logger
	deps    Dependencies
	opts    Options
	engine  *gin.Engine
	now     func() time.Time
}

func NewServer(address string, l logging.Logger, deps Dependencies, opts Options) *Server {
	s := &Server{
		address: address,
		logger:  l.With("module", "http_server"),
		deps:    deps,
		opts:    opts,
		now:     time.Now,
	}
	s.engine = s.routes()
	return s
}

// Handler returns the configured gin engine.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(s.logger))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		api.POST("/qr/validate", s.validateQR)
		api.POST("/entries", s.submitEntry)
		api.GET("/entries/verify", s.verifyEntry)
	}

	admin := r.Group("/admin")
	admin.POST("/login", s.login)
	admin.POST("/refresh", s.refresh)

	authorized := admin.Group("")
	authorized.Use(adminAuth(s.deps.Admins))
	{
		authorized.POST("/events", s.createEvent)
		authorized.GET("/events", s.listEvents)
		authorized.GET("/events/:id", s.getEvent)

		authorized.POST("/prizes/:id/image", s.presignPrizeUpload)
		authorized.GET("/prizes/:id/image", s.presignPrizeDownload)

		authorized.POST("/qrcodes", s.generateQRCodes)
		authorized.GET("/qrcodes", s.listQRCodes)

		authorized.GET("/entries", s.listEntries)
		authorized.GET("/winners", s.listWinners)
		authorized.GET("/attempts", s.listAttempts)

		authorized.GET("/messages", s.listMessages)
		authorized.POST("/messages", s.sendMessage)
	}

	return r
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "Starting HTTP server", "address", s.address)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info(ctx, "Stopping HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
