package service

import (
	"context"
	"log/slog"

	"github.com/utafrali/OrderDeskGo/internal/domain"
	apperrors "github.com/utafrali/OrderDeskGo/internal/pkg/errors"
)

// AddLine adds qty units of a product to the cart. Adding a product that is
// already in the cart increments its quantity; the line total is recomputed
// from the unit price captured when the line was first created, never from a
// possibly-changed catalog price.
func (m *Manager) AddLine(ctx context.Context, parentID, productID string, qty int) error {
	if qty <= 0 {
		return m.rejectCartInput(ctx, parentID, "quantity must be greater than 0")
	}

	s, err := m.session(ctx, parentID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if err := m.cartGateLocked(s); err != nil {
		s.mu.Unlock()
		return err
	}

	idx := productIndex(s.products, productID)
	if idx < 0 {
		s.mu.Unlock()
		return apperrors.NotFound("product", productID)
	}
	product := s.products[idx]

	if li := s.cart.FindLineIndex(productID); li >= 0 {
		line := &s.cart.Lines[li]
		line.Quantity += qty
		line.LineTotal = int64(line.Quantity) * line.UnitPrice
	} else {
		s.cart.Lines = append(s.cart.Lines, domain.CartLine{
			ProductID: productID,
			Name:      product.Name,
			Quantity:  qty,
			UnitPrice: product.UnitPrice,
			LineTotal: int64(qty) * product.UnitPrice,
		})
	}
	cart := s.cart.Clone()
	s.mu.Unlock()

	cartMutations.WithLabelValues("add").Inc()
	m.persistCart(ctx, s, cart)

	m.logger.InfoContext(ctx, "cart line added",
		slog.String("parent_id", parentID),
		slog.String("product_id", productID),
		slog.Int("quantity", qty),
	)

	return nil
}

// QuickAdd adds one unit of the product.
func (m *Manager) QuickAdd(ctx context.Context, parentID, productID string) error {
	return m.AddLine(ctx, parentID, productID, 1)
}

// UpdateLineQty replaces the quantity of an existing line absolutely and
// recomputes its total. Quantity zero removes the line; a negative quantity
// is rejected.
func (m *Manager) UpdateLineQty(ctx context.Context, parentID, productID string, qty int) error {
	if qty < 0 {
		return m.rejectCartInput(ctx, parentID, "quantity must not be negative")
	}

	s, err := m.session(ctx, parentID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if err := m.cartGateLocked(s); err != nil {
		s.mu.Unlock()
		return err
	}

	li := s.cart.FindLineIndex(productID)
	if li < 0 {
		s.mu.Unlock()
		return apperrors.NotFound("cart line", productID)
	}

	if qty == 0 {
		s.cart.Lines = append(s.cart.Lines[:li], s.cart.Lines[li+1:]...)
	} else {
		line := &s.cart.Lines[li]
		line.Quantity = qty
		line.LineTotal = int64(qty) * line.UnitPrice
	}
	cart := s.cart.Clone()
	s.mu.Unlock()

	cartMutations.WithLabelValues("update").Inc()
	m.persistCart(ctx, s, cart)

	m.logger.InfoContext(ctx, "cart line quantity updated",
		slog.String("parent_id", parentID),
		slog.String("product_id", productID),
		slog.Int("quantity", qty),
	)

	return nil
}

// RemoveLine removes the line for a product. Removing an absent product is
// an idempotent no-op.
func (m *Manager) RemoveLine(ctx context.Context, parentID, productID string) error {
	s, err := m.session(ctx, parentID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if err := m.cartGateLocked(s); err != nil {
		s.mu.Unlock()
		return err
	}

	li := s.cart.FindLineIndex(productID)
	if li < 0 {
		s.mu.Unlock()
		return nil
	}
	s.cart.Lines = append(s.cart.Lines[:li], s.cart.Lines[li+1:]...)
	cart := s.cart.Clone()
	s.mu.Unlock()

	cartMutations.WithLabelValues("remove").Inc()
	m.persistCart(ctx, s, cart)

	m.logger.InfoContext(ctx, "cart line removed",
		slog.String("parent_id", parentID),
		slog.String("product_id", productID),
	)

	return nil
}

// ClearCart removes all lines.
func (m *Manager) ClearCart(ctx context.Context, parentID string) error {
	s, err := m.session(ctx, parentID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if err := m.cartGateLocked(s); err != nil {
		s.mu.Unlock()
		return err
	}
	s.cart = domain.Cart{}
	s.enteredQty = make(map[string]int)
	s.mu.Unlock()

	cartMutations.WithLabelValues("clear").Inc()

	if err := m.repo.Delete(ctx, parentID); err != nil {
		m.logger.WarnContext(ctx, "cart snapshot delete failed",
			slog.String("parent_id", parentID),
			slog.String("error", err.Error()),
		)
	}

	m.logger.InfoContext(ctx, "cart cleared",
		slog.String("parent_id", parentID),
	)

	return nil
}

// rejectCartInput queues a validation notification and returns the matching
// AppError without mutating any cart state.
func (m *Manager) rejectCartInput(ctx context.Context, parentID, message string) error {
	if s, err := m.session(ctx, parentID); err == nil {
		s.mu.Lock()
		s.notifyLocked(SeverityWarning, "Invalid quantity", message)
		s.mu.Unlock()
	}
	return apperrors.InvalidInput(message)
}
