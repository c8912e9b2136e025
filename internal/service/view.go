package service

import (
	"context"

	"github.com/utafrali/OrderDeskGo/internal/domain"
	apperrors "github.com/utafrali/OrderDeskGo/internal/pkg/errors"
)

// SetSearchTerm updates the text filter and resets to page 1.
func (m *Manager) SetSearchTerm(ctx context.Context, parentID, term string) error {
	s, err := m.session(ctx, parentID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter.SearchTerm = term
	s.filter.Page = 1
	return nil
}

// SetCategory updates the category filter and resets to page 1.
func (m *Manager) SetCategory(ctx context.Context, parentID, category string) error {
	s, err := m.session(ctx, parentID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if category == "" {
		category = domain.CategoryAll
	}
	s.filter.Category = category
	s.filter.Page = 1
	return nil
}

// NextPage advances one page; past the last page it is a no-op.
func (m *Manager) NextPage(ctx context.Context, parentID string) error {
	s, err := m.session(ctx, parentID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	filtered := domain.FilterProducts(s.products, s.filter)
	if s.filter.Page < domain.TotalPages(len(filtered), s.filter.PageSize) {
		s.filter.Page++
	}
	return nil
}

// PrevPage goes back one page; before the first page it is a no-op.
func (m *Manager) PrevPage(ctx context.Context, parentID string) error {
	s, err := m.session(ctx, parentID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.filter.Page > 1 {
		s.filter.Page--
	}
	return nil
}

// GoToPage jumps to the given page, clamped to [1, totalPages].
func (m *Manager) GoToPage(ctx context.Context, parentID string, page int) error {
	s, err := m.session(ctx, parentID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	filtered := domain.FilterProducts(s.products, s.filter)
	total := domain.TotalPages(len(filtered), s.filter.PageSize)
	if page < 1 {
		page = 1
	}
	if page > total {
		page = total
	}
	s.filter.Page = page
	return nil
}

// SetEnteredQty records the transient inline quantity on a product row.
// A non-positive quantity clears the entry (the cancel affordance).
func (m *Manager) SetEnteredQty(ctx context.Context, parentID, productID string, qty int) error {
	s, err := m.session(ctx, parentID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if productIndex(s.products, productID) < 0 {
		return apperrors.NotFound("product", productID)
	}

	if qty <= 0 {
		delete(s.enteredQty, productID)
		return nil
	}
	s.enteredQty[productID] = qty
	return nil
}

// AddFromRow adds the product using its pending entered quantity, then
// resets the entry regardless of outcome.
func (m *Manager) AddFromRow(ctx context.Context, parentID, productID string) error {
	s, err := m.session(ctx, parentID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	qty, ok := s.enteredQty[productID]
	delete(s.enteredQty, productID)
	if !ok || qty <= 0 {
		s.notifyLocked(SeverityWarning, "Quantity required", "Enter a quantity greater than zero before adding.")
		s.mu.Unlock()
		return apperrors.InvalidInput("quantity must be greater than 0")
	}
	s.mu.Unlock()

	return m.AddLine(ctx, parentID, productID, qty)
}

func productIndex(products []domain.Product, productID string) int {
	for i := range products {
		if products[i].ProductID == productID {
			return i
		}
	}
	return -1
}
