package repository

import (
	"context"

	"github.com/utafrali/OrderDeskGo/internal/domain"
)

// CartRepository persists cart snapshots so a session can be rehydrated after
// a restart. Snapshots are keyed by the CRM parent record ID.
type CartRepository interface {
	// Get retrieves the cart snapshot for a parent record.
	Get(ctx context.Context, parentID string) (*domain.Cart, error)

	// Save persists a cart snapshot, overwriting any existing one.
	Save(ctx context.Context, parentID string, cart *domain.Cart) error

	// Delete removes the cart snapshot for a parent record.
	Delete(ctx context.Context, parentID string) error
}
