// Package admincli implements the operator command line: schema migrations,
// admin account creation, QR code batches and prize image uploads.
package admincli

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/dmitrijs2005/giveaway/internal/netx"
	"github.com/dmitrijs2005/giveaway/internal/server/config"
	"github.com/dmitrijs2005/giveaway/internal/server/models"
	"github.com/dmitrijs2005/giveaway/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/giveaway/internal/server/services"
	"github.com/dmitrijs2005/giveaway/internal/timex"
	"github.com/gabriel-vasile/mimetype"
)

const uploadTimeout = 2 * time.Minute

var ErrUsage = errors.New("usage")

const usage = `Usage: admin <command> [args] [flags]

Commands:
  migrate                                 apply database migrations
  create-admin [username]                 create a dashboard admin
  generate-qr <count> [YYYY-MM-DD]        mint a batch of QR tokens
  upload-prize-image <prizeId> <file>     upload a prize image to object storage
`

type AdminCreator interface {
	CreateAdmin(ctx context.Context, username, password string) (*models.Admin, error)
}

type QRGenerator interface {
	GenerateBatch(ctx context.Context, adminID string, count int, expiresAt *time.Time) ([]*models.QRCode, error)
}

type ImageUploader interface {
	PresignUpload(ctx context.Context, prizeID, contentType string) (*services.PresignedUpload, error)
}

type App struct {
	migrate func(ctx context.Context) error
	admins  AdminCreator
	qrcodes QRGenerator
	images  ImageUploader
	upload  func(ctx context.Context, url, contentType string, data []byte) error
	reader  *bufio.Reader
	out     io.Writer
	close   func() error
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	db, err := repomanager.OpenDB(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	m := repomanager.NewPostgresRepositoryManager()
	client := &http.Client{Timeout: uploadTimeout}

	return &App{
		migrate: func(ctx context.Context) error { return m.RunMigrations(ctx, db) },
		admins:  services.NewAdminService(db, m, c),
		qrcodes: services.NewQRCodeService(db, m),
		images:  services.NewImageService(db, m, c),
		upload: func(ctx context.Context, url, contentType string, data []byte) error {
			return netx.UploadToPresignedURL(ctx, client, url, contentType, data)
		},
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
		close:  db.Close,
	}, nil
}

// Close releases the database connection.
func (a *App) Close() error {
	if a.close == nil {
		return nil
	}
	return a.close()
}

// Run executes one command. args are the positional arguments, command first.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(a.out, usage)
		return ErrUsage
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "migrate":
		return a.runMigrate(ctx)
	case "create-admin":
		return a.createAdmin(ctx, rest)
	case "generate-qr":
		return a.generateQR(ctx, rest)
	case "upload-prize-image":
		return a.uploadPrizeImage(ctx, rest)
	case "help", "-h", "--help":
		fmt.Fprint(a.out, usage)
		return nil
	default:
		fmt.Fprint(a.out, usage)
		return fmt.Errorf("%w: unknown command %q", ErrUsage, cmd)
	}
}

func (a *App) runMigrate(ctx context.Context) error {
	if err := a.migrate(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Migrations applied")
	return nil
}

func (a *App) createAdmin(ctx context.Context, args []string) error {
	var username string
	if len(args) > 0 {
		username = args[0]
	} else {
		var err error
		if username, err = GetSimpleText(a.reader, "Username", a.out); err != nil {
			return err
		}
	}

	pw, err := GetPassword("Password", a.out)
	if err != nil {
		return err
	}
	confirm, err := GetPassword("Repeat password", a.out)
	if err != nil {
		return err
	}
	if !bytes.Equal(pw, confirm) {
		return errors.New("passwords do not match")
	}

	admin, err := a.admins.CreateAdmin(ctx, username, string(pw))
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Admin %s created (%s)\n", admin.Username, admin.ID)
	return nil
}

// generateQR prints one token per line so the output can be piped to a
// printing tool.
func (a *App) generateQR(ctx context.Context, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return fmt.Errorf("%w: generate-qr <count> [YYYY-MM-DD]", ErrUsage)
	}

	count, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("%w: count must be a number", ErrUsage)
	}

	var expiresAt *time.Time
	if len(args) == 2 {
		t, err := timex.ParseDeadline(args[1])
		if err != nil {
			return err
		}
		expiresAt = &t
	}

	codes, err := a.qrcodes.GenerateBatch(ctx, "", count, expiresAt)
	if err != nil {
		return err
	}
	for _, c := range codes {
		fmt.Fprintln(a.out, c.ID)
	}
	return nil
}

func (a *App) uploadPrizeImage(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("%w: upload-prize-image <prizeId> <file>", ErrUsage)
	}
	prizeID, path := args[0], args[1]

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read image: %w", err)
	}
	contentType := mimetype.Detect(data).String()

	up, err := a.images.PresignUpload(ctx, prizeID, contentType)
	if err != nil {
		return err
	}
	if err := a.upload(ctx, up.URL, up.ContentType, data); err != nil {
		return fmt.Errorf("upload image: %w", err)
	}
	fmt.Fprintf(a.out, "Uploaded %s (%s, %d bytes)\n", up.Key, up.ContentType, len(data))
	return nil
}
