package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/utafrali/OrderDeskGo/internal/domain"
	pkgkafka "github.com/utafrali/OrderDeskGo/internal/pkg/kafka"
)

// Kafka topics for session domain events.
const (
	TopicSessionSubmitted = "orderdesk.session.submitted"
	TopicSessionCleared   = "orderdesk.session.cleared"
)

const (
	aggregateTypeSession = "cart-session"
	sourceOrderDesk      = "orderdesk-service"
)

// SubmittedData is the payload of a session.submitted event. The host
// environment consumes it as its "data refreshed" signal.
type SubmittedData struct {
	ParentID    string     `json:"parent_id"`
	Lines       []LineData `json:"lines"`
	TotalAmount int64      `json:"total_amount"`
	Currency    string     `json:"currency"`
}

// LineData is one submitted cart line within the event payload.
type LineData struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
}

// ClearedData is the payload of a session.cleared event.
type ClearedData struct {
	ParentID string `json:"parent_id"`
}

// Producer publishes session domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a session event producer.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishSessionSubmitted publishes a session.submitted event.
func (p *Producer) PublishSessionSubmitted(ctx context.Context, parentID, currency string, cart *domain.Cart) error {
	lines := make([]LineData, len(cart.Lines))
	for i, line := range cart.Lines {
		lines[i] = LineData{
			ProductID: line.ProductID,
			Name:      line.Name,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
		}
	}

	data := SubmittedData{
		ParentID:    parentID,
		Lines:       lines,
		TotalAmount: cart.TotalAmount(),
		Currency:    currency,
	}

	evt, err := pkgkafka.NewEvent(TopicSessionSubmitted, parentID, aggregateTypeSession, sourceOrderDesk, data)
	if err != nil {
		return fmt.Errorf("create session.submitted event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicSessionSubmitted, evt); err != nil {
		return fmt.Errorf("publish session.submitted event: %w", err)
	}

	p.logger.DebugContext(ctx, "published session.submitted event",
		slog.String("parent_id", parentID),
		slog.Int("line_count", len(lines)),
	)

	return nil
}

// PublishSessionCleared publishes a session.cleared event.
func (p *Producer) PublishSessionCleared(ctx context.Context, parentID string) error {
	evt, err := pkgkafka.NewEvent(TopicSessionCleared, parentID, aggregateTypeSession, sourceOrderDesk, ClearedData{ParentID: parentID})
	if err != nil {
		return fmt.Errorf("create session.cleared event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicSessionCleared, evt); err != nil {
		return fmt.Errorf("publish session.cleared event: %w", err)
	}

	p.logger.DebugContext(ctx, "published session.cleared event",
		slog.String("parent_id", parentID),
	)

	return nil
}
