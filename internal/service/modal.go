package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/utafrali/OrderDeskGo/internal/domain"
	apperrors "github.com/utafrali/OrderDeskGo/internal/pkg/errors"
)

// modalState is the product-detail overlay while open. It exists only
// between OpenModal and CloseModal; the epoch ties every timer scheduled for
// this particular opening to it.
type modalState struct {
	product        domain.Product
	qty            int
	imageIndex     int
	carouselActive bool
	hovering       bool

	epoch        uint64
	carouselStop chan struct{}
	resumeTimer  *time.Timer
}

// OpenModal opens the product-detail overlay for a product, snapshotting the
// product with quantity 1 and image index 0. The carousel starts only when
// the product has at least two images.
func (m *Manager) OpenModal(ctx context.Context, parentID, productID string) error {
	s, err := m.session(ctx, parentID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mode == ModeSummary {
		return apperrors.Conflict("order summary is open")
	}

	idx := productIndex(s.products, productID)
	if idx < 0 {
		return apperrors.NotFound("product", productID)
	}

	// Reopening over an existing overlay discards it first.
	s.closeModalLocked()

	s.modalEpoch++
	modal := &modalState{
		product: s.products[idx],
		qty:     1,
		epoch:   s.modalEpoch,
	}
	s.modal = modal

	if len(modal.product.ImageURLs) >= 2 {
		modal.carouselActive = true
		modal.carouselStop = make(chan struct{})
		go s.runCarousel(modal.epoch, modal.carouselStop)
	}

	m.logger.DebugContext(ctx, "modal opened",
		slog.String("parent_id", parentID),
		slog.String("product_id", productID),
		slog.Int("images", len(modal.product.ImageURLs)),
	)

	return nil
}

// CloseModal closes the overlay and cancels its timers.
func (m *Manager) CloseModal(ctx context.Context, parentID string) error {
	s, err := m.session(ctx, parentID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeModalLocked()
	return nil
}

// closeModalLocked discards the overlay snapshot and stops the carousel and
// any pending resume timer. Caller holds s.mu. Safe to call while closed.
func (s *Session) closeModalLocked() {
	if s.modal == nil {
		return
	}
	if s.modal.carouselStop != nil {
		close(s.modal.carouselStop)
		s.modal.carouselStop = nil
	}
	if s.modal.resumeTimer != nil {
		s.modal.resumeTimer.Stop()
		s.modal.resumeTimer = nil
	}
	s.modalEpoch++
	s.modal = nil
}

// IncrementModalQty raises the overlay quantity, clamped to available units.
func (m *Manager) IncrementModalQty(ctx context.Context, parentID string) error {
	return m.withOpenModal(ctx, parentID, func(modal *modalState) {
		limit := modal.product.AvailableUnits
		if limit < 1 {
			limit = 1
		}
		if modal.qty < limit {
			modal.qty++
		}
	})
}

// DecrementModalQty lowers the overlay quantity, clamped to 1.
func (m *Manager) DecrementModalQty(ctx context.Context, parentID string) error {
	return m.withOpenModal(ctx, parentID, func(modal *modalState) {
		if modal.qty > 1 {
			modal.qty--
		}
	})
}

// SetModalQty accepts a direct quantity entry only within [1, availableUnits];
// anything else is silently ignored.
func (m *Manager) SetModalQty(ctx context.Context, parentID string, qty int) error {
	return m.withOpenModal(ctx, parentID, func(modal *modalState) {
		limit := modal.product.AvailableUnits
		if limit < 1 {
			limit = 1
		}
		if qty >= 1 && qty <= limit {
			modal.qty = qty
		}
	})
}

// SelectImage jumps the gallery to the given index, pauses the carousel, and
// schedules a resume after the quiescent delay. Two rapid selections restart
// the delay independently; the resume is skipped when hover is still active
// at the moment it fires.
func (m *Manager) SelectImage(ctx context.Context, parentID string, index int) error {
	s, err := m.session(ctx, parentID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	modal := s.modal
	if modal == nil {
		return apperrors.Conflict("product detail is not open")
	}
	if index < 0 || index >= len(modal.product.ImageURLs) {
		return apperrors.InvalidInput("image index out of range")
	}

	modal.imageIndex = index
	modal.carouselActive = false

	if modal.resumeTimer != nil {
		modal.resumeTimer.Stop()
	}
	epoch := modal.epoch
	modal.resumeTimer = time.AfterFunc(s.resumeDelay, func() {
		s.resumeCarousel(epoch)
	})

	return nil
}

// SetHover pauses the carousel while the pointer is over the gallery and
// resumes it when the pointer leaves.
func (m *Manager) SetHover(ctx context.Context, parentID string, active bool) error {
	return m.withOpenModal(ctx, parentID, func(modal *modalState) {
		modal.hovering = active
		if active {
			modal.carouselActive = false
			return
		}
		if len(modal.product.ImageURLs) > 1 {
			modal.carouselActive = true
		}
	})
}

// ConfirmAdd validates the overlay quantity, forwards to the cart, and closes
// the overlay on success.
func (m *Manager) ConfirmAdd(ctx context.Context, parentID string) error {
	s, err := m.session(ctx, parentID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	modal := s.modal
	if modal == nil {
		s.mu.Unlock()
		return apperrors.Conflict("product detail is not open")
	}
	productID := modal.product.ProductID
	qty := modal.qty
	s.mu.Unlock()

	if qty <= 0 {
		return m.rejectCartInput(ctx, parentID, "quantity must be greater than 0")
	}

	if err := m.AddLine(ctx, parentID, productID, qty); err != nil {
		return err
	}

	s.mu.Lock()
	s.closeModalLocked()
	s.notifyLocked(SeveritySuccess, "Added to cart", modal.product.Name)
	s.mu.Unlock()

	return nil
}

// withOpenModal runs fn against the open overlay under the session lock.
func (m *Manager) withOpenModal(ctx context.Context, parentID string, fn func(*modalState)) error {
	s, err := m.session(ctx, parentID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.modal == nil {
		return apperrors.Conflict("product detail is not open")
	}
	fn(s.modal)
	return nil
}

// runCarousel drives the gallery auto-advance for one modal opening. It
// exits when the stop channel closes; each tick revalidates the epoch under
// the session lock, so a tick racing the close is harmless.
func (s *Session) runCarousel(epoch uint64, stop <-chan struct{}) {
	ticker := time.NewTicker(s.carouselInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.carouselTick(epoch)
		}
	}
}

// carouselTick advances the gallery one image, wrapping modulo the image
// count. Paused or stale ticks do nothing.
func (s *Session) carouselTick(epoch uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	modal := s.modal
	if modal == nil || modal.epoch != epoch || !modal.carouselActive {
		return
	}
	if n := len(modal.product.ImageURLs); n > 1 {
		modal.imageIndex = (modal.imageIndex + 1) % n
	}
}

// resumeCarousel re-enables auto-advance after the quiescent delay, unless
// the overlay has changed or the pointer is still hovering.
func (s *Session) resumeCarousel(epoch uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	modal := s.modal
	if modal == nil || modal.epoch != epoch || modal.hovering {
		return
	}
	if len(modal.product.ImageURLs) > 1 {
		modal.carouselActive = true
	}
}
