// Package admins stores dashboard operator accounts.
package admins

import (
	"context"

	"github.com/dmitrijs2005/giveaway/internal/server/models"
)

type Repository interface {
	// Create inserts the admin and fills its ID and CreatedAt. A taken
	// username yields common.ErrAlreadyExists.
	Create(ctx context.Context, admin *models.Admin) (*models.Admin, error)
	GetByUsername(ctx context.Context, username string) (*models.Admin, error)
}
