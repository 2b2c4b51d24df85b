package trustRepo

import (
	"context"
	"errors"

	"qartelbot/models"
)

// ErrNumberTaken means a trust document with the same number already exists.
var ErrNumberTaken = errors.New("trust document number already taken")

// TrustRepository stores powers of attorney. Numbers are global.
type TrustRepository interface {
	// NextNumber is the number of the most recently created document plus one, or 1.
	NextNumber(ctx context.Context) (int, error)
	Create(ctx context.Context, doc *models.TrustDocument) error
	GetByID(ctx context.Context, id string) (*models.TrustDocument, error)
	// List returns documents without file blobs, newest first.
	List(ctx context.Context) ([]models.TrustDocument, error)
}
