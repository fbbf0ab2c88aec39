package inventoryclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"shop/internal/domain/model"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// inventory-serviceの GET /api/inventory を叩くクライアント
type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func (c *Client) CheckStock(ctx context.Context, skuCodes []string) ([]model.StockStatus, error) {
	q := url.Values{}
	for _, sku := range skuCodes {
		q.Add("skuCode", sku)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/inventory?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build inventory request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call inventory service: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read inventory response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var er errorResponse
		_ = json.Unmarshal(body, &er)
		return nil, fmt.Errorf("inventory service returned %d: %s", resp.StatusCode, er.Error)
	}

	var out []model.StockStatus
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode inventory response: %w", err)
	}
	return out, nil
}
