package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/utafrali/OrderDeskGo/internal/domain"
	"github.com/utafrali/OrderDeskGo/internal/pkg/httpclient"
)

// CatalogClient talks to the remote catalog service, which owns price lists
// and per-price-list product resolution.
type CatalogClient struct {
	http    httpclient.Doer
	baseURL string
	logger  *slog.Logger
}

// NewCatalogClient creates a catalog service client.
func NewCatalogClient(doer httpclient.Doer, baseURL string, logger *slog.Logger) *CatalogClient {
	return &CatalogClient{
		http:    doer,
		baseURL: baseURL,
		logger:  logger,
	}
}

// ListPriceLists fetches all selectable price lists.
func (c *CatalogClient) ListPriceLists(ctx context.Context) ([]domain.PriceList, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/pricelists", nil)
	if err != nil {
		return nil, fmt.Errorf("create pricelists request: %w", err)
	}

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("call catalog service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, httpclient.ParseResponseError(resp, "catalog")
	}

	var envelope struct {
		Data []domain.PriceList `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decode pricelists response: %w", err)
	}

	return envelope.Data, nil
}

// AssociatePriceList records the chosen price list against the parent record.
// The call is idempotent on the catalog side; repeating the same pair is safe.
func (c *CatalogClient) AssociatePriceList(ctx context.Context, parentID, priceListID string) error {
	body, err := json.Marshal(map[string]string{"parent_id": parentID})
	if err != nil {
		return fmt.Errorf("marshal associate request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/api/v1/pricelists/%s/associations", c.baseURL, url.PathEscape(priceListID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create associate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return fmt.Errorf("call catalog service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusNoContent {
		return httpclient.ParseResponseError(resp, "catalog")
	}

	c.logger.DebugContext(ctx, "price list associated",
		slog.String("parent_id", parentID),
		slog.String("price_list_id", priceListID),
	)

	return nil
}

// FetchProducts resolves the product list for a (price list, currency) pair.
func (c *CatalogClient) FetchProducts(ctx context.Context, priceListID, currencyCode string) ([]domain.Product, error) {
	endpoint := fmt.Sprintf("%s/api/v1/pricelists/%s/products?currency=%s",
		c.baseURL, url.PathEscape(priceListID), url.QueryEscape(currencyCode))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create products request: %w", err)
	}

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("call catalog service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, httpclient.ParseResponseError(resp, "catalog")
	}

	var envelope struct {
		Data []domain.Product `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decode products response: %w", err)
	}

	c.logger.DebugContext(ctx, "products fetched",
		slog.String("price_list_id", priceListID),
		slog.String("currency", currencyCode),
		slog.Int("count", len(envelope.Data)),
	)

	return envelope.Data, nil
}
