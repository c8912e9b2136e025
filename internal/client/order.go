package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/utafrali/OrderDeskGo/internal/pkg/httpclient"
)

// OrderLine is one serialized cart line sent to the order service.
type OrderLine struct {
	ProductRef string `json:"product_ref"`
	Quantity   int    `json:"quantity"`
	UnitPrice  int64  `json:"unit_price"`
}

// OrderClient talks to the remote order-submission service.
type OrderClient struct {
	http    httpclient.Doer
	baseURL string
	logger  *slog.Logger
}

// NewOrderClient creates an order service client.
func NewOrderClient(doer httpclient.Doer, baseURL string, logger *slog.Logger) *OrderClient {
	return &OrderClient{
		http:    doer,
		baseURL: baseURL,
		logger:  logger,
	}
}

// SubmitOrderLines sends one batch of order lines for the parent record.
func (c *OrderClient) SubmitOrderLines(ctx context.Context, parentID string, lines []OrderLine) error {
	body, err := json.Marshal(map[string]any{"lines": lines})
	if err != nil {
		return fmt.Errorf("marshal order lines: %w", err)
	}

	endpoint := fmt.Sprintf("%s/api/v1/orders/%s/lines", c.baseURL, url.PathEscape(parentID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create submit request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return fmt.Errorf("call order service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return httpclient.ParseResponseError(resp, "order")
	}

	c.logger.InfoContext(ctx, "order lines submitted",
		slog.String("parent_id", parentID),
		slog.Int("line_count", len(lines)),
	)

	return nil
}
