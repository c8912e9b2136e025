package service

import (
	"context"
	"log/slog"

	"github.com/utafrali/OrderDeskGo/internal/domain"
	apperrors "github.com/utafrali/OrderDeskGo/internal/pkg/errors"
)

// ListPriceLists fetches the selectable price lists and caches them on the
// session.
func (m *Manager) ListPriceLists(ctx context.Context, parentID string) ([]domain.PriceList, error) {
	s, err := m.session(ctx, parentID)
	if err != nil {
		return nil, err
	}

	lists, err := m.catalog.ListPriceLists(ctx)
	if err != nil {
		s.mu.Lock()
		s.notifyLocked(SeverityError, "Price lists unavailable", "Could not load price lists. Please retry.")
		s.mu.Unlock()
		return nil, apperrors.Wrap(err, "list price lists")
	}

	s.mu.Lock()
	s.priceLists = lists
	s.mu.Unlock()

	return lists, nil
}

// SelectPriceList records the chosen price list, associates it with the
// parent record on the catalog side, and on success triggers the product
// load. A failed association never proceeds to load.
func (m *Manager) SelectPriceList(ctx context.Context, parentID, priceListID string) error {
	if priceListID == "" {
		return apperrors.InvalidInput("price list id is required")
	}

	s, err := m.session(ctx, parentID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	var chosen *domain.PriceList
	for i := range s.priceLists {
		if s.priceLists[i].ID == priceListID {
			chosen = &s.priceLists[i]
			break
		}
	}
	if chosen == nil {
		s.mu.Unlock()
		return apperrors.NotFound("price list", priceListID)
	}

	selected := *chosen
	s.selected = &selected
	s.products = nil
	s.filter = domain.NewViewFilter(s.filter.PageSize)
	s.loading = false
	s.generation++
	s.mu.Unlock()

	if err := m.catalog.AssociatePriceList(ctx, parentID, priceListID); err != nil {
		s.mu.Lock()
		s.notifyLocked(SeverityError, "Price list selection failed", "Could not apply the price list to this record.")
		s.mu.Unlock()

		m.logger.ErrorContext(ctx, "price list association failed",
			slog.String("parent_id", parentID),
			slog.String("price_list_id", priceListID),
			slog.String("error", err.Error()),
		)
		return apperrors.Wrap(err, "associate price list")
	}

	m.loadProducts(ctx, s)
	return nil
}

// loadProducts fetches the catalog for the current (price list, currency)
// pair. Missing prerequisites are a normal not-ready state and skip silently.
// The result is discarded when the generation moved while the fetch was in
// flight (the price list was switched or reset underneath it).
func (m *Manager) loadProducts(ctx context.Context, s *Session) {
	s.mu.Lock()
	if s.selected == nil || s.currencyCode == "" {
		s.mu.Unlock()
		m.logger.DebugContext(ctx, "product load skipped: prerequisites missing",
			slog.String("parent_id", s.parentID),
		)
		return
	}
	if s.loading {
		s.mu.Unlock()
		return
	}
	s.loading = true
	gen := s.generation
	priceListID := s.selected.ID
	currency := s.currencyCode
	s.mu.Unlock()

	products, err := m.catalog.FetchProducts(ctx, priceListID, currency)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.generation != gen {
		// The price list changed while the fetch was in flight; the reset
		// already cleared the loading flag together with the rest of the
		// catalog state. Drop the stale result.
		m.logger.DebugContext(ctx, "stale product fetch discarded",
			slog.String("parent_id", s.parentID),
			slog.String("price_list_id", priceListID),
		)
		return
	}

	s.loading = false

	if err != nil {
		// Prior product data stays untouched.
		s.notifyLocked(SeverityError, "Products unavailable", "Could not load products for the selected price list.")
		m.logger.ErrorContext(ctx, "product fetch failed",
			slog.String("parent_id", s.parentID),
			slog.String("price_list_id", priceListID),
			slog.String("currency", currency),
			slog.String("error", err.Error()),
		)
		return
	}

	s.products = products
	s.filter.Page = 1

	m.logger.InfoContext(ctx, "products loaded",
		slog.String("parent_id", s.parentID),
		slog.String("price_list_id", priceListID),
		slog.String("currency", currency),
		slog.Int("count", len(products)),
	)
}

// BackToPriceLists performs a full reset: products, cart, filter state,
// entered quantities, and the modal are all cleared, and the generation is
// bumped so any in-flight fetch discards itself.
func (m *Manager) BackToPriceLists(ctx context.Context, parentID string) error {
	s, err := m.session(ctx, parentID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.selected = nil
	s.products = nil
	s.cart = domain.Cart{}
	s.filter = domain.NewViewFilter(s.filter.PageSize)
	s.enteredQty = make(map[string]int)
	s.loading = false
	s.generation++
	s.closeModalLocked()
	s.mu.Unlock()

	if err := m.repo.Delete(ctx, parentID); err != nil {
		m.logger.WarnContext(ctx, "cart snapshot delete failed",
			slog.String("parent_id", parentID),
			slog.String("error", err.Error()),
		)
	}

	if err := m.producer.PublishSessionCleared(ctx, parentID); err != nil {
		m.logger.ErrorContext(ctx, "failed to publish session.cleared event",
			slog.String("parent_id", parentID),
			slog.String("error", err.Error()),
		)
	}

	m.logger.InfoContext(ctx, "session reset to price list selection",
		slog.String("parent_id", parentID),
	)

	return nil
}
