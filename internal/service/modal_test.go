package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/utafrali/OrderDeskGo/internal/pkg/errors"
)

// openedSession opens the modal for the given product and returns the live
// session so tests can drive the timer callbacks directly.
func openedSession(t *testing.T, m *Manager, parentID, productID string) *Session {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, m.OpenModal(ctx, parentID, productID))
	s, err := m.session(ctx, parentID)
	require.NoError(t, err)
	return s
}

func TestOpenModal_DefaultsAndCarousel(t *testing.T) {
	m, _, _ := newTestManager(nil, nil)
	ctx := context.Background()
	readySession(t, m, "rec-1")

	// prod-1 has three images.
	require.NoError(t, m.OpenModal(ctx, "rec-1", "prod-1"))

	snap, err := m.GetSnapshot(ctx, "rec-1")
	require.NoError(t, err)
	require.NotNil(t, snap.Modal)
	assert.Equal(t, "prod-1", snap.Modal.Product.ProductID)
	assert.Equal(t, 1, snap.Modal.Quantity)
	assert.Equal(t, 0, snap.Modal.ImageIndex)
	assert.True(t, snap.Modal.CarouselActive)
}

func TestOpenModal_SingleImageNoCarousel(t *testing.T) {
	m, _, _ := newTestManager(nil, nil)
	ctx := context.Background()
	readySession(t, m, "rec-1")

	// prod-2 has one image.
	require.NoError(t, m.OpenModal(ctx, "rec-1", "prod-2"))

	snap, err := m.GetSnapshot(ctx, "rec-1")
	require.NoError(t, err)
	require.NotNil(t, snap.Modal)
	assert.False(t, snap.Modal.CarouselActive)
}

func TestOpenModal_UnknownProduct(t *testing.T) {
	m, _, _ := newTestManager(nil, nil)
	ctx := context.Background()
	readySession(t, m, "rec-1")

	err := m.OpenModal(ctx, "rec-1", "prod-404")

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestOpenModal_ReplacesExistingModal(t *testing.T) {
	m, _, _ := newTestManager(nil, nil)
	ctx := context.Background()
	readySession(t, m, "rec-1")

	require.NoError(t, m.OpenModal(ctx, "rec-1", "prod-1"))
	require.NoError(t, m.IncrementModalQty(ctx, "rec-1"))
	require.NoError(t, m.OpenModal(ctx, "rec-1", "prod-2"))

	snap, err := m.GetSnapshot(ctx, "rec-1")
	require.NoError(t, err)
	require.NotNil(t, snap.Modal)
	assert.Equal(t, "prod-2", snap.Modal.Product.ProductID)
	assert.Equal(t, 1, snap.Modal.Quantity)
}

func TestCloseModal_ClearsOverlay(t *testing.T) {
	m, _, _ := newTestManager(nil, nil)
	ctx := context.Background()
	readySession(t, m, "rec-1")

	require.NoError(t, m.OpenModal(ctx, "rec-1", "prod-1"))
	require.NoError(t, m.CloseModal(ctx, "rec-1"))

	snap, err := m.GetSnapshot(ctx, "rec-1")
	require.NoError(t, err)
	assert.Nil(t, snap.Modal)

	// Closing an already-closed overlay is harmless.
	assert.NoError(t, m.CloseModal(ctx, "rec-1"))
}

func TestModalQty_IncrementClampedToAvailableUnits(t *testing.T) {
	m, _, _ := newTestManager(nil, nil)
	ctx := context.Background()
	readySession(t, m, "rec-1")

	// prod-2 has 3 available units.
	require.NoError(t, m.OpenModal(ctx, "rec-1", "prod-2"))
	for i := 0; i < 5; i++ {
		require.NoError(t, m.IncrementModalQty(ctx, "rec-1"))
	}

	snap, err := m.GetSnapshot(ctx, "rec-1")
	require.NoError(t, err)
	assert.Equal(t, 3, snap.Modal.Quantity)
}

func TestModalQty_DecrementClampedToOne(t *testing.T) {
	m, _, _ := newTestManager(nil, nil)
	ctx := context.Background()
	readySession(t, m, "rec-1")

	require.NoError(t, m.OpenModal(ctx, "rec-1", "prod-1"))
	require.NoError(t, m.DecrementModalQty(ctx, "rec-1"))
	require.NoError(t, m.DecrementModalQty(ctx, "rec-1"))

	snap, err := m.GetSnapshot(ctx, "rec-1")
	require.NoError(t, err)
	assert.Equal(t, 1, snap.Modal.Quantity)
}

func TestSetModalQty_OutOfRangeIgnored(t *testing.T) {
	m, _, _ := newTestManager(nil, nil)
	ctx := context.Background()
	readySession(t, m, "rec-1")

	// prod-2 has 3 available units.
	require.NoError(t, m.OpenModal(ctx, "rec-1", "prod-2"))
	require.NoError(t, m.SetModalQty(ctx, "rec-1", 2))

	for _, qty := range []int{0, -5, 4, 100} {
		require.NoError(t, m.SetModalQty(ctx, "rec-1", qty))
	}

	snap, err := m.GetSnapshot(ctx, "rec-1")
	require.NoError(t, err)
	assert.Equal(t, 2, snap.Modal.Quantity)
}

func TestModalQty_RequiresOpenModal(t *testing.T) {
	m, _, _ := newTestManager(nil, nil)
	ctx := context.Background()
	readySession(t, m, "rec-1")

	err := m.IncrementModalQty(ctx, "rec-1")

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestSelectImage_PausesCarousel(t *testing.T) {
	m, _, _ := newTestManager(nil, nil)
	ctx := context.Background()
	readySession(t, m, "rec-1")

	require.NoError(t, m.OpenModal(ctx, "rec-1", "prod-1"))
	require.NoError(t, m.SelectImage(ctx, "rec-1", 2))

	snap, err := m.GetSnapshot(ctx, "rec-1")
	require.NoError(t, err)
	assert.Equal(t, 2, snap.Modal.ImageIndex)
	assert.False(t, snap.Modal.CarouselActive)
}

func TestSelectImage_IndexOutOfRange(t *testing.T) {
	m, _, _ := newTestManager(nil, nil)
	ctx := context.Background()
	readySession(t, m, "rec-1")

	require.NoError(t, m.OpenModal(ctx, "rec-1", "prod-1"))

	for _, idx := range []int{-1, 3, 99} {
		err := m.SelectImage(ctx, "rec-1", idx)
		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	}
}

func TestCarouselTick_WrapsAround(t *testing.T) {
	m, _, _ := newTestManager(nil, nil)
	readySession(t, m, "rec-1")
	s := openedSession(t, m, "rec-1", "prod-1")

	s.mu.Lock()
	epoch := s.modal.epoch
	s.mu.Unlock()

	for _, want := range []int{1, 2, 0, 1} {
		s.carouselTick(epoch)
		s.mu.Lock()
		assert.Equal(t, want, s.modal.imageIndex)
		s.mu.Unlock()
	}
}

func TestCarouselTick_StaleEpochIgnored(t *testing.T) {
	m, _, _ := newTestManager(nil, nil)
	ctx := context.Background()
	readySession(t, m, "rec-1")
	s := openedSession(t, m, "rec-1", "prod-1")

	s.mu.Lock()
	staleEpoch := s.modal.epoch
	s.mu.Unlock()

	require.NoError(t, m.OpenModal(ctx, "rec-1", "prod-1"))

	s.carouselTick(staleEpoch)

	snap, err := m.GetSnapshot(ctx, "rec-1")
	require.NoError(t, err)
	assert.Equal(t, 0, snap.Modal.ImageIndex)
}

func TestCarouselTick_AfterCloseIsNoop(t *testing.T) {
	m, _, _ := newTestManager(nil, nil)
	ctx := context.Background()
	readySession(t, m, "rec-1")
	s := openedSession(t, m, "rec-1", "prod-1")

	s.mu.Lock()
	epoch := s.modal.epoch
	s.mu.Unlock()

	require.NoError(t, m.CloseModal(ctx, "rec-1"))

	// Must not panic or resurrect the overlay.
	s.carouselTick(epoch)

	snap, err := m.GetSnapshot(ctx, "rec-1")
	require.NoError(t, err)
	assert.Nil(t, snap.Modal)
}

func TestResumeCarousel_SkippedWhileHovering(t *testing.T) {
	m, _, _ := newTestManager(nil, nil)
	ctx := context.Background()
	readySession(t, m, "rec-1")
	s := openedSession(t, m, "rec-1", "prod-1")

	require.NoError(t, m.SetHover(ctx, "rec-1", true))

	s.mu.Lock()
	epoch := s.modal.epoch
	s.mu.Unlock()

	s.resumeCarousel(epoch)

	snap, err := m.GetSnapshot(ctx, "rec-1")
	require.NoError(t, err)
	assert.False(t, snap.Modal.CarouselActive)
}

func TestResumeCarousel_ResumesAfterQuiescence(t *testing.T) {
	m, _, _ := newTestManager(nil, nil)
	ctx := context.Background()
	readySession(t, m, "rec-1")
	s := openedSession(t, m, "rec-1", "prod-1")

	require.NoError(t, m.SelectImage(ctx, "rec-1", 1))

	s.mu.Lock()
	epoch := s.modal.epoch
	s.mu.Unlock()

	s.resumeCarousel(epoch)

	snap, err := m.GetSnapshot(ctx, "rec-1")
	require.NoError(t, err)
	assert.True(t, snap.Modal.CarouselActive)
	assert.Equal(t, 1, snap.Modal.ImageIndex)
}

func TestSetHover_PausesAndResumes(t *testing.T) {
	m, _, _ := newTestManager(nil, nil)
	ctx := context.Background()
	readySession(t, m, "rec-1")

	require.NoError(t, m.OpenModal(ctx, "rec-1", "prod-1"))

	require.NoError(t, m.SetHover(ctx, "rec-1", true))
	snap, err := m.GetSnapshot(ctx, "rec-1")
	require.NoError(t, err)
	assert.False(t, snap.Modal.CarouselActive)

	require.NoError(t, m.SetHover(ctx, "rec-1", false))
	snap, err = m.GetSnapshot(ctx, "rec-1")
	require.NoError(t, err)
	assert.True(t, snap.Modal.CarouselActive)
}

func TestSetHover_SingleImageStaysPaused(t *testing.T) {
	m, _, _ := newTestManager(nil, nil)
	ctx := context.Background()
	readySession(t, m, "rec-1")

	require.NoError(t, m.OpenModal(ctx, "rec-1", "prod-2"))

	require.NoError(t, m.SetHover(ctx, "rec-1", true))
	require.NoError(t, m.SetHover(ctx, "rec-1", false))

	snap, err := m.GetSnapshot(ctx, "rec-1")
	require.NoError(t, err)
	assert.False(t, snap.Modal.CarouselActive)
}

func TestConfirmAdd_AddsAndClosesModal(t *testing.T) {
	m, _, _ := newTestManager(nil, nil)
	ctx := context.Background()
	readySession(t, m, "rec-1")

	require.NoError(t, m.OpenModal(ctx, "rec-1", "prod-1"))
	require.NoError(t, m.IncrementModalQty(ctx, "rec-1"))
	require.NoError(t, m.ConfirmAdd(ctx, "rec-1"))

	snap, err := m.GetSnapshot(ctx, "rec-1")
	require.NoError(t, err)
	assert.Nil(t, snap.Modal)
	require.Equal(t, 1, snap.Cart.LineCount())
	assert.Equal(t, 2, snap.Cart.Lines[0].Quantity)

	notes, err := m.Notifications(ctx, "rec-1")
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, SeveritySuccess, notes[0].Severity)
}

func TestConfirmAdd_RequiresOpenModal(t *testing.T) {
	m, _, _ := newTestManager(nil, nil)
	ctx := context.Background()
	readySession(t, m, "rec-1")

	err := m.ConfirmAdd(ctx, "rec-1")

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestOpenModal_SummaryModeConflict(t *testing.T) {
	m, _, _ := newTestManager(nil, nil)
	ctx := context.Background()
	readySession(t, m, "rec-1")

	require.NoError(t, m.AddLine(ctx, "rec-1", "prod-1", 1))
	require.NoError(t, m.Submit(ctx, "rec-1"))

	err := m.OpenModal(ctx, "rec-1", "prod-1")

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}
