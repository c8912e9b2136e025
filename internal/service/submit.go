package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/utafrali/OrderDeskGo/internal/client"
	"github.com/utafrali/OrderDeskGo/internal/domain"
	apperrors "github.com/utafrali/OrderDeskGo/internal/pkg/errors"
)

// Submit serializes the cart into order lines in cart order and sends them to
// the order service in one batch. On success the session switches to the
// read-only summary with its countdown; on failure nothing changes and the
// cart stays intact for retry. Invoked with an empty cart it mutates nothing.
func (m *Manager) Submit(ctx context.Context, parentID string) error {
	s, err := m.session(ctx, parentID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.mode == ModeSummary {
		s.mu.Unlock()
		return apperrors.Conflict("submission already in progress")
	}
	if s.cart.IsEmpty() {
		s.mu.Unlock()
		return apperrors.InvalidInput("cart is empty")
	}

	lines := make([]client.OrderLine, len(s.cart.Lines))
	for i, line := range s.cart.Lines {
		lines[i] = client.OrderLine{
			ProductRef: line.ProductID,
			Quantity:   line.Quantity,
			UnitPrice:  line.UnitPrice,
		}
	}
	currency := s.currencyCode
	cart := s.cart.Clone()
	s.mu.Unlock()

	if err := m.orders.SubmitOrderLines(ctx, parentID, lines); err != nil {
		submissions.WithLabelValues("failure").Inc()

		s.mu.Lock()
		s.notifyLocked(SeverityError, "Order submission failed", "Your cart was not submitted. Please retry.")
		s.mu.Unlock()

		m.logger.ErrorContext(ctx, "order submission failed",
			slog.String("parent_id", parentID),
			slog.Int("line_count", len(lines)),
			slog.String("error", err.Error()),
		)
		return apperrors.Wrap(err, "submit order lines")
	}

	submissions.WithLabelValues("success").Inc()

	s.mu.Lock()
	s.mode = ModeSummary
	s.enteredQty = make(map[string]int)
	s.countdownRemaining = s.countdownTicks
	s.submitEpoch++
	s.countdownStop = make(chan struct{})
	s.notifyLocked(SeveritySuccess, "Order submitted", "Your order lines were created.")
	go s.runCountdown(s.submitEpoch, s.countdownStop, m.finishSummary)
	s.mu.Unlock()

	if err := m.producer.PublishSessionSubmitted(ctx, parentID, currency, &cart); err != nil {
		m.logger.ErrorContext(ctx, "failed to publish session.submitted event",
			slog.String("parent_id", parentID),
			slog.String("error", err.Error()),
		)
	}

	m.logger.InfoContext(ctx, "order submitted",
		slog.String("parent_id", parentID),
		slog.Int("line_count", len(lines)),
		slog.Int64("total_amount", cart.TotalAmount()),
	)

	return nil
}

// CloseSummary dismisses the summary early, cancelling the countdown and
// performing the same close actions the automatic path would.
func (m *Manager) CloseSummary(ctx context.Context, parentID string) error {
	s, err := m.session(ctx, parentID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.mode != ModeSummary {
		s.mu.Unlock()
		return nil
	}
	s.stopCountdownLocked()
	s.closeSummaryLocked()
	s.mu.Unlock()

	m.dropCartSnapshot(s.parentID)
	return nil
}

// runCountdown ticks the summary progress countdown. When it reaches zero the
// summary auto-closes: cart cleared, navigation recorded. Each tick
// revalidates the submit epoch so a countdown from a dismissed summary is
// inert.
func (s *Session) runCountdown(epoch uint64, stop <-chan struct{}, onDone func(*Session)) {
	ticker := time.NewTicker(s.countdownTick)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			done, valid := s.countdownTickOnce(epoch)
			if !valid {
				return
			}
			if done {
				onDone(s)
				return
			}
		}
	}
}

// countdownTickOnce decrements the countdown under the lock. It reports
// whether the countdown completed, and whether this timer still owns the
// summary it was started for.
func (s *Session) countdownTickOnce(epoch uint64) (done, valid bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mode != ModeSummary || s.submitEpoch != epoch {
		return false, false
	}
	if s.countdownRemaining > 0 {
		s.countdownRemaining--
	}
	return s.countdownRemaining == 0, true
}

// finishSummary is the automatic close at the end of the countdown.
func (m *Manager) finishSummary(s *Session) {
	s.mu.Lock()
	if s.mode != ModeSummary {
		s.mu.Unlock()
		return
	}
	s.stopCountdownLocked()
	s.closeSummaryLocked()
	parentID := s.parentID
	s.mu.Unlock()

	m.dropCartSnapshot(parentID)

	m.logger.Info("summary auto-closed",
		slog.String("parent_id", parentID),
	)
}

// closeSummaryLocked clears the cart, returns to browse mode, and records the
// pending navigation for the client. Caller holds s.mu.
func (s *Session) closeSummaryLocked() {
	s.cart = domain.Cart{}
	s.mode = ModeBrowse
	s.countdownRemaining = 0
	s.pendingNavigation = NavigationRelatedRecords
	s.submitEpoch++
}

// stopCountdownLocked cancels the countdown ticker if one is running.
// Caller holds s.mu.
func (s *Session) stopCountdownLocked() {
	if s.countdownStop != nil {
		close(s.countdownStop)
		s.countdownStop = nil
	}
}

// dropCartSnapshot removes the persisted cart after a submitted cart is
// cleared.
func (m *Manager) dropCartSnapshot(parentID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := m.repo.Delete(ctx, parentID); err != nil {
		m.logger.Warn("cart snapshot delete failed",
			slog.String("parent_id", parentID),
			slog.String("error", err.Error()),
		)
	}
}

// AcknowledgeNavigation clears the pending navigation once the client acted
// on it.
func (m *Manager) AcknowledgeNavigation(ctx context.Context, parentID string) error {
	s, err := m.session(ctx, parentID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pendingNavigation = ""
	return nil
}
