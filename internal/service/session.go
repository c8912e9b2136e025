package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/utafrali/OrderDeskGo/internal/client"
	"github.com/utafrali/OrderDeskGo/internal/domain"
	apperrors "github.com/utafrali/OrderDeskGo/internal/pkg/errors"
	"github.com/utafrali/OrderDeskGo/internal/repository"
)

// Mode is the UI mode of a session.
type Mode string

const (
	// ModeBrowse is the normal catalog/cart mode.
	ModeBrowse Mode = "browse"
	// ModeSummary is the read-only post-submission view with its countdown.
	ModeSummary Mode = "summary"
)

// NavigationRelatedRecords is the navigation target recorded for the client
// after the summary auto-closes.
const NavigationRelatedRecords = "related_records"

// Severity of a user-facing notification.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Notification is a toast-style message queued for the client to drain.
type Notification struct {
	Title    string    `json:"title"`
	Message  string    `json:"message"`
	Severity Severity  `json:"severity"`
	At       time.Time `json:"at"`
}

const maxQueuedNotifications = 20

// CatalogAPI is the remote catalog service surface the session depends on.
type CatalogAPI interface {
	ListPriceLists(ctx context.Context) ([]domain.PriceList, error)
	AssociatePriceList(ctx context.Context, parentID, priceListID string) error
	FetchProducts(ctx context.Context, priceListID, currencyCode string) ([]domain.Product, error)
}

// OrderAPI is the remote order-submission service surface.
type OrderAPI interface {
	SubmitOrderLines(ctx context.Context, parentID string, lines []client.OrderLine) error
}

// EventPublisher publishes session domain events.
type EventPublisher interface {
	PublishSessionSubmitted(ctx context.Context, parentID, currency string, cart *domain.Cart) error
	PublishSessionCleared(ctx context.Context, parentID string) error
}

// Settings holds the behavioral knobs copied from config.
type Settings struct {
	SessionTTL       time.Duration
	PageSize         int
	CartOpenStatuses []string
	CarouselInterval time.Duration
	ResumeDelay      time.Duration
	CountdownTick    time.Duration
	CountdownTicks   int
}

// Session is the per-parent-record state container. All fields are guarded by
// mu; timer callbacks re-check their epoch under the lock before mutating, so
// a timer that outlives the state it was scheduled against is a no-op.
type Session struct {
	mu       sync.Mutex
	parentID string

	// Reactive context inputs from the host record.
	recordStatus string
	currencyCode string

	// Catalog cache. generation is bumped on every price-list switch or
	// reset; a completing fetch discards its result when the captured
	// generation no longer matches.
	priceLists []domain.PriceList
	selected   *domain.PriceList
	products   []domain.Product
	loading    bool
	generation uint64

	// Browse view.
	filter     domain.ViewFilter
	enteredQty map[string]int

	cart domain.Cart

	// Modal/gallery. nil while closed. modalEpoch is bumped on every open
	// and close so stale carousel and resume timers can detect themselves.
	modal      *modalState
	modalEpoch uint64

	// Submission/summary.
	mode               Mode
	countdownRemaining int
	countdownStop      chan struct{}
	submitEpoch        uint64
	pendingNavigation  string

	notifications []Notification
	lastActive    time.Time

	carouselInterval time.Duration
	resumeDelay      time.Duration
	countdownTick    time.Duration
	countdownTicks   int
}

// Manager owns all live sessions and implements every session operation.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	catalog  CatalogAPI
	orders   OrderAPI
	repo     repository.CartRepository
	producer EventPublisher
	logger   *slog.Logger

	settings     Settings
	openStatuses map[string]struct{}

	janitorStop chan struct{}
	janitorDone chan struct{}
}

// NewManager creates a session manager. Call Start to run the expiry janitor
// and Close on shutdown.
func NewManager(
	catalog CatalogAPI,
	orders OrderAPI,
	repo repository.CartRepository,
	producer EventPublisher,
	logger *slog.Logger,
	settings Settings,
) *Manager {
	open := make(map[string]struct{}, len(settings.CartOpenStatuses))
	for _, s := range settings.CartOpenStatuses {
		open[strings.ToLower(strings.TrimSpace(s))] = struct{}{}
	}

	return &Manager{
		sessions:     make(map[string]*Session),
		catalog:      catalog,
		orders:       orders,
		repo:         repo,
		producer:     producer,
		logger:       logger,
		settings:     settings,
		openStatuses: open,
		janitorStop:  make(chan struct{}),
		janitorDone:  make(chan struct{}),
	}
}

// Start launches the session-expiry janitor.
func (m *Manager) Start() {
	go m.runJanitor()
}

// Close stops the janitor and cancels all session timers.
func (m *Manager) Close() {
	close(m.janitorStop)
	<-m.janitorDone

	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range m.sessions {
		s.mu.Lock()
		s.cancelTimersLocked()
		s.mu.Unlock()
		delete(m.sessions, id)
	}
	activeSessions.Set(0)
}

// session returns the live session for a parent record, creating and
// rehydrating it on first touch.
func (m *Manager) session(ctx context.Context, parentID string) (*Session, error) {
	if parentID == "" {
		return nil, apperrors.InvalidInput("parent record id is required")
	}

	m.mu.RLock()
	s, ok := m.sessions[parentID]
	m.mu.RUnlock()
	if ok {
		s.mu.Lock()
		s.lastActive = time.Now().UTC()
		s.mu.Unlock()
		return s, nil
	}

	s = &Session{
		parentID:         parentID,
		filter:           domain.NewViewFilter(m.settings.PageSize),
		enteredQty:       make(map[string]int),
		mode:             ModeBrowse,
		lastActive:       time.Now().UTC(),
		carouselInterval: m.settings.CarouselInterval,
		resumeDelay:      m.settings.ResumeDelay,
		countdownTick:    m.settings.CountdownTick,
		countdownTicks:   m.settings.CountdownTicks,
	}

	// Rehydrate a previously persisted cart, if any.
	if cart, err := m.repo.Get(ctx, parentID); err == nil {
		s.cart = *cart
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		m.logger.WarnContext(ctx, "cart rehydration failed",
			slog.String("parent_id", parentID),
			slog.String("error", err.Error()),
		)
	}

	m.mu.Lock()
	if existing, ok := m.sessions[parentID]; ok {
		// Another request created the session while we were rehydrating.
		m.mu.Unlock()
		return existing, nil
	}
	m.sessions[parentID] = s
	activeSessions.Set(float64(len(m.sessions)))
	m.mu.Unlock()

	m.logger.InfoContext(ctx, "session created",
		slog.String("parent_id", parentID),
		slog.Int("rehydrated_lines", s.cart.LineCount()),
	)

	return s, nil
}

// UpdateContext applies the reactive host-record inputs: record status and
// currency code. The first currency arrival with a selected price list and an
// empty catalog triggers the pending product load.
func (m *Manager) UpdateContext(ctx context.Context, parentID, recordStatus, currencyCode string) error {
	s, err := m.session(ctx, parentID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.recordStatus = recordStatus
	currencyChanged := currencyCode != "" && currencyCode != s.currencyCode
	if currencyCode != "" {
		s.currencyCode = currencyCode
	}
	needLoad := currencyChanged && s.selected != nil && len(s.products) == 0 && !s.loading
	s.mu.Unlock()

	if needLoad {
		m.loadProducts(ctx, s)
	}

	return nil
}

// Notifications drains and returns the queued notifications for a session.
func (m *Manager) Notifications(ctx context.Context, parentID string) ([]Notification, error) {
	s, err := m.session(ctx, parentID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.notifications
	s.notifications = nil
	if out == nil {
		out = []Notification{}
	}
	return out, nil
}

// ProductRow is one product in the paginated browse view, together with the
// transient inline entered quantity when one is pending.
type ProductRow struct {
	domain.Product
	EnteredQty *int `json:"entered_qty,omitempty"`
}

// ModalView is the client-facing snapshot of the open product-detail overlay.
type ModalView struct {
	Product        domain.Product `json:"product"`
	Quantity       int            `json:"quantity"`
	ImageIndex     int            `json:"image_index"`
	CarouselActive bool           `json:"carousel_active"`
}

// Snapshot is the full client-facing view of a session. Derived fields
// (filtered page, total pages, total amount) are recomputed on every call.
type Snapshot struct {
	ParentID           string             `json:"parent_id"`
	Mode               Mode               `json:"mode"`
	RecordStatus       string             `json:"record_status"`
	CurrencyCode       string             `json:"currency_code"`
	PriceLists         []domain.PriceList `json:"price_lists"`
	SelectedPriceList  *domain.PriceList  `json:"selected_price_list,omitempty"`
	Loading            bool               `json:"loading"`
	Filter             domain.ViewFilter  `json:"filter"`
	Categories         []string           `json:"categories"`
	FilteredCount      int                `json:"filtered_count"`
	TotalPages         int                `json:"total_pages"`
	Products           []ProductRow       `json:"products"`
	Cart               domain.Cart        `json:"cart"`
	TotalAmount        int64              `json:"total_amount"`
	Modal              *ModalView         `json:"modal,omitempty"`
	CountdownRemaining int                `json:"countdown_remaining"`
	PendingNavigation  string             `json:"pending_navigation,omitempty"`
}

// GetSnapshot returns the current session view.
func (m *Manager) GetSnapshot(ctx context.Context, parentID string) (*Snapshot, error) {
	s, err := m.session(ctx, parentID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked(), nil
}

func (s *Session) snapshotLocked() *Snapshot {
	filtered := domain.FilterProducts(s.products, s.filter)
	page := domain.Paginate(filtered, s.filter.Page, s.filter.PageSize)

	rows := make([]ProductRow, len(page))
	for i, p := range page {
		rows[i] = ProductRow{Product: p}
		if qty, ok := s.enteredQty[p.ProductID]; ok {
			q := qty
			rows[i].EnteredQty = &q
		}
	}

	snap := &Snapshot{
		ParentID:           s.parentID,
		Mode:               s.mode,
		RecordStatus:       s.recordStatus,
		CurrencyCode:       s.currencyCode,
		PriceLists:         s.priceLists,
		SelectedPriceList:  s.selected,
		Loading:            s.loading,
		Filter:             s.filter,
		Categories:         domain.Categories(s.products),
		FilteredCount:      len(filtered),
		TotalPages:         domain.TotalPages(len(filtered), s.filter.PageSize),
		Products:           rows,
		Cart:               s.cart.Clone(),
		TotalAmount:        s.cart.TotalAmount(),
		CountdownRemaining: s.countdownRemaining,
		PendingNavigation:  s.pendingNavigation,
	}

	if s.modal != nil {
		snap.Modal = &ModalView{
			Product:        s.modal.product,
			Quantity:       s.modal.qty,
			ImageIndex:     s.modal.imageIndex,
			CarouselActive: s.modal.carouselActive,
		}
	}

	return snap
}

// notifyLocked appends a notification, dropping the oldest past the cap.
// Caller holds s.mu.
func (s *Session) notifyLocked(severity Severity, title, message string) {
	s.notifications = append(s.notifications, Notification{
		Title:    title,
		Message:  message,
		Severity: severity,
		At:       time.Now().UTC(),
	})
	if len(s.notifications) > maxQueuedNotifications {
		s.notifications = s.notifications[len(s.notifications)-maxQueuedNotifications:]
	}
}

// cartGateLocked reports whether cart mutation is currently allowed.
// Caller holds s.mu. An unknown (not yet delivered) record status does not
// block; the gate engages once the host reports a closed status.
func (m *Manager) cartGateLocked(s *Session) error {
	if s.mode == ModeSummary {
		return apperrors.Conflict("order summary is open; cart is read-only")
	}
	if s.recordStatus == "" {
		return nil
	}
	if _, ok := m.openStatuses[strings.ToLower(strings.TrimSpace(s.recordStatus))]; !ok {
		return apperrors.Forbidden(fmt.Sprintf("record status %q does not allow cart changes", s.recordStatus))
	}
	return nil
}

// cancelTimersLocked stops the carousel, resume, and countdown timers.
// Caller holds s.mu.
func (s *Session) cancelTimersLocked() {
	s.closeModalLocked()
	s.stopCountdownLocked()
}

// persistCart writes the cart snapshot through to the repository.
// Best effort: a failed write degrades restart recovery, not the session.
func (m *Manager) persistCart(ctx context.Context, s *Session, cart domain.Cart) {
	if err := m.repo.Save(ctx, s.parentID, &cart); err != nil {
		m.logger.WarnContext(ctx, "cart snapshot save failed",
			slog.String("parent_id", s.parentID),
			slog.String("error", err.Error()),
		)
	}
}

func (m *Manager) runJanitor() {
	defer close(m.janitorDone)

	interval := m.settings.SessionTTL / 4
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.janitorStop:
			return
		case <-ticker.C:
			m.expireSessions()
		}
	}
}

func (m *Manager) expireSessions() {
	cutoff := time.Now().UTC().Add(-m.settings.SessionTTL)

	m.mu.Lock()
	var expired []*Session
	for id, s := range m.sessions {
		s.mu.Lock()
		stale := s.lastActive.Before(cutoff)
		s.mu.Unlock()
		if stale {
			expired = append(expired, s)
			delete(m.sessions, id)
		}
	}
	activeSessions.Set(float64(len(m.sessions)))
	m.mu.Unlock()

	for _, s := range expired {
		s.mu.Lock()
		s.cancelTimersLocked()
		s.mu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := m.repo.Delete(ctx, s.parentID); err != nil {
			m.logger.Warn("expired session cart delete failed",
				slog.String("parent_id", s.parentID),
				slog.String("error", err.Error()),
			)
		}
		cancel()

		m.logger.Info("session expired",
			slog.String("parent_id", s.parentID),
		)
	}
}
