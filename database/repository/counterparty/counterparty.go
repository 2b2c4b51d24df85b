package counterpartyRepo

import (
	"context"
	"errors"

	"qartelbot/models"
)

var (
	// ErrSequenceConflict means another writer took the computed sequence number.
	ErrSequenceConflict = errors.New("sequence number already taken")
	// ErrNoContract means an appendix was requested for a counterparty without contracts.
	ErrNoContract = errors.New("counterparty has no contracts")
)

// CounterpartyRepository stores counterparties with their embedded contracts
// and appendices. Sequence numbers are max(existing)+1 per counterparty, so a
// deleted top number is handed out again.
type CounterpartyRepository interface {
	Create(ctx context.Context, c *models.Counterparty) error
	// GetByID returns the full document including file blobs.
	GetByID(ctx context.Context, id string) (*models.Counterparty, error)
	// List returns every counterparty without file blobs, by name.
	List(ctx context.Context) ([]models.Counterparty, error)

	// AddContract stores c under c.Number; ErrSequenceConflict when taken.
	AddContract(ctx context.Context, id string, c models.Contract) error
	ReplaceContractFile(ctx context.Context, id string, number int, file []byte) error
	DeleteContract(ctx context.Context, id string, number int) error

	// AddAppendix fails with ErrNoContract when the counterparty has no contracts.
	AddAppendix(ctx context.Context, id string, a models.Appendix) error
	ReplaceAppendixFile(ctx context.Context, id string, number int, file []byte) error
	DeleteAppendix(ctx context.Context, id string, number int) error
}
