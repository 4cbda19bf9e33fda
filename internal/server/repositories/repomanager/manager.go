package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/giveaway/internal/dbx"
	"github.com/dmitrijs2005/giveaway/internal/server/repositories/admins"
	"github.com/dmitrijs2005/giveaway/internal/server/repositories/attempts"
	"github.com/dmitrijs2005/giveaway/internal/server/repositories/entries"
	"github.com/dmitrijs2005/giveaway/internal/server/repositories/events"
	"github.com/dmitrijs2005/giveaway/internal/server/repositories/messages"
	"github.com/dmitrijs2005/giveaway/internal/server/repositories/qrcodes"
	"github.com/dmitrijs2005/giveaway/internal/server/repositories/refreshtokens"
)

// RepositoryManager vends repositories bound to a DBTX, so the same service
// code runs against *sql.DB or inside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Admins(db dbx.DBTX) admins.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	QRCodes(db dbx.DBTX) qrcodes.Repository
	Events(db dbx.DBTX) events.Repository
	Entries(db dbx.DBTX) entries.Repository
	Attempts(db dbx.DBTX) attempts.Repository
	Messages(db dbx.DBTX) messages.Repository
}
