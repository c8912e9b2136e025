package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/OrderDeskGo/internal/client"
	apperrors "github.com/utafrali/OrderDeskGo/internal/pkg/errors"
)

func TestSubmit_Success(t *testing.T) {
	orders := &fakeOrders{}
	m, _, producer := newTestManager(nil, orders)
	ctx := context.Background()
	readySession(t, m, "rec-1")

	require.NoError(t, m.AddLine(ctx, "rec-1", "prod-2", 3))
	require.NoError(t, m.AddLine(ctx, "rec-1", "prod-1", 1))
	require.NoError(t, m.SetEnteredQty(ctx, "rec-1", "prod-3", 9))
	drainNotifications(t, m, "rec-1")

	require.NoError(t, m.Submit(ctx, "rec-1"))

	// Lines arrive in cart insertion order with captured unit prices.
	subs := orders.submissions()
	require.Len(t, subs, 1)
	require.Len(t, subs[0], 2)
	assert.Equal(t, client.OrderLine{ProductRef: "prod-2", Quantity: 3, UnitPrice: 500}, subs[0][0])
	assert.Equal(t, client.OrderLine{ProductRef: "prod-1", Quantity: 1, UnitPrice: 1000}, subs[0][1])

	snap, err := m.GetSnapshot(ctx, "rec-1")
	require.NoError(t, err)
	assert.Equal(t, ModeSummary, snap.Mode)
	assert.Equal(t, 3, snap.CountdownRemaining)
	// The summary still shows the submitted cart until it closes.
	assert.Equal(t, 2, snap.Cart.LineCount())
	for _, row := range snap.Products {
		assert.Nil(t, row.EnteredQty)
	}

	notes, err := m.Notifications(ctx, "rec-1")
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, SeveritySuccess, notes[0].Severity)

	assert.Equal(t, 1, producer.submitted)
}

func TestSubmit_EmptyCart(t *testing.T) {
	orders := &fakeOrders{}
	m, _, _ := newTestManager(nil, orders)
	ctx := context.Background()
	readySession(t, m, "rec-1")

	err := m.Submit(ctx, "rec-1")

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	assert.Empty(t, orders.submissions())

	snap, err := m.GetSnapshot(ctx, "rec-1")
	require.NoError(t, err)
	assert.Equal(t, ModeBrowse, snap.Mode)
	assert.Zero(t, snap.CountdownRemaining)
}

func TestSubmit_RemoteFailureKeepsCart(t *testing.T) {
	orders := &fakeOrders{err: assert.AnError}
	m, _, producer := newTestManager(nil, orders)
	ctx := context.Background()
	readySession(t, m, "rec-1")

	require.NoError(t, m.AddLine(ctx, "rec-1", "prod-1", 2))

	err := m.Submit(ctx, "rec-1")
	require.Error(t, err)

	snap, err := m.GetSnapshot(ctx, "rec-1")
	require.NoError(t, err)
	assert.Equal(t, ModeBrowse, snap.Mode)
	assert.Equal(t, 2, snap.Cart.Lines[0].Quantity)
	assert.Zero(t, producer.submitted)

	notes, err := m.Notifications(ctx, "rec-1")
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, SeverityError, notes[0].Severity)

	// The cart survived; a retry succeeds.
	orders.mu.Lock()
	orders.err = nil
	orders.mu.Unlock()
	assert.NoError(t, m.Submit(ctx, "rec-1"))
}

func TestSubmit_AlreadyInSummary(t *testing.T) {
	m, _, _ := newTestManager(nil, nil)
	ctx := context.Background()
	readySession(t, m, "rec-1")

	require.NoError(t, m.AddLine(ctx, "rec-1", "prod-1", 1))
	require.NoError(t, m.Submit(ctx, "rec-1"))

	err := m.Submit(ctx, "rec-1")

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestCountdown_TicksDownToAutoClose(t *testing.T) {
	m, repo, _ := newTestManager(nil, nil)
	ctx := context.Background()
	readySession(t, m, "rec-1")

	require.NoError(t, m.AddLine(ctx, "rec-1", "prod-1", 1))
	require.NoError(t, m.Submit(ctx, "rec-1"))

	s, err := m.session(ctx, "rec-1")
	require.NoError(t, err)
	s.mu.Lock()
	epoch := s.submitEpoch
	s.mu.Unlock()

	done, valid := s.countdownTickOnce(epoch)
	assert.False(t, done)
	assert.True(t, valid)

	done, valid = s.countdownTickOnce(epoch)
	assert.False(t, done)
	assert.True(t, valid)

	done, valid = s.countdownTickOnce(epoch)
	assert.True(t, done)
	assert.True(t, valid)

	m.finishSummary(s)

	snap, err := m.GetSnapshot(ctx, "rec-1")
	require.NoError(t, err)
	assert.Equal(t, ModeBrowse, snap.Mode)
	assert.True(t, snap.Cart.IsEmpty())
	assert.Equal(t, NavigationRelatedRecords, snap.PendingNavigation)

	_, ok := repo.stored("rec-1")
	assert.False(t, ok)
}

func TestCountdown_StaleEpochInvalid(t *testing.T) {
	m, _, _ := newTestManager(nil, nil)
	ctx := context.Background()
	readySession(t, m, "rec-1")

	require.NoError(t, m.AddLine(ctx, "rec-1", "prod-1", 1))
	require.NoError(t, m.Submit(ctx, "rec-1"))

	s, err := m.session(ctx, "rec-1")
	require.NoError(t, err)
	s.mu.Lock()
	staleEpoch := s.submitEpoch
	s.mu.Unlock()

	require.NoError(t, m.CloseSummary(ctx, "rec-1"))

	_, valid := s.countdownTickOnce(staleEpoch)
	assert.False(t, valid)
}

func TestCloseSummary_EarlyDismiss(t *testing.T) {
	m, repo, _ := newTestManager(nil, nil)
	ctx := context.Background()
	readySession(t, m, "rec-1")

	require.NoError(t, m.AddLine(ctx, "rec-1", "prod-1", 1))
	require.NoError(t, m.Submit(ctx, "rec-1"))
	require.NoError(t, m.CloseSummary(ctx, "rec-1"))

	snap, err := m.GetSnapshot(ctx, "rec-1")
	require.NoError(t, err)
	assert.Equal(t, ModeBrowse, snap.Mode)
	assert.True(t, snap.Cart.IsEmpty())
	assert.Zero(t, snap.CountdownRemaining)
	assert.Equal(t, NavigationRelatedRecords, snap.PendingNavigation)

	_, ok := repo.stored("rec-1")
	assert.False(t, ok)
}

func TestCloseSummary_NotInSummaryIsNoop(t *testing.T) {
	m, _, _ := newTestManager(nil, nil)
	ctx := context.Background()
	readySession(t, m, "rec-1")

	assert.NoError(t, m.CloseSummary(ctx, "rec-1"))
}

func TestAcknowledgeNavigation_ClearsPending(t *testing.T) {
	m, _, _ := newTestManager(nil, nil)
	ctx := context.Background()
	readySession(t, m, "rec-1")

	require.NoError(t, m.AddLine(ctx, "rec-1", "prod-1", 1))
	require.NoError(t, m.Submit(ctx, "rec-1"))
	require.NoError(t, m.CloseSummary(ctx, "rec-1"))

	require.NoError(t, m.AcknowledgeNavigation(ctx, "rec-1"))

	snap, err := m.GetSnapshot(ctx, "rec-1")
	require.NoError(t, err)
	assert.Empty(t, snap.PendingNavigation)
}
