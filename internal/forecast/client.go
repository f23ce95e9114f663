// Package forecast talks to the demand forecasting service over HTTP and
// caches its answers.
package forecast

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"vendorhub/backend/internal/apperr"
	"vendorhub/backend/internal/domain"
)

const unavailableMessage = "Forecast service unavailable"

type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *zap.Logger
}

func NewClient(baseURL string, timeout time.Duration, log *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

type predictBody struct {
	ProductID string `json:"product_id"`
	Days      int    `json:"days"`
}

type batchBody struct {
	ProductIDs []string `json:"product_ids"`
	Days       int      `json:"days"`
}

func (c *Client) Predict(ctx context.Context, productID string, days int) (*domain.Forecast, error) {
	var out domain.Forecast
	if err := c.do(ctx, http.MethodPost, "/predict", predictBody{ProductID: productID, Days: days}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) PredictBatch(ctx context.Context, productIDs []string, days int) (*domain.ForecastBatch, error) {
	var out domain.ForecastBatch
	if err := c.do(ctx, http.MethodPost, "/predict/batch", batchBody{ProductIDs: productIDs, Days: days}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Models(ctx context.Context) (*domain.ModelCatalog, error) {
	var out domain.ModelCatalog
	if err := c.do(ctx, http.MethodGet, "/models", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Metrics(ctx context.Context) (map[string]any, error) {
	out := map[string]any{}
	if err := c.do(ctx, http.MethodGet, "/metrics", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// do sends one JSON request. Transport failures, non-2xx answers and
// undecodable bodies all surface as apperr.KindUpstream.
func (c *Client) do(ctx context.Context, method string, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode forecast request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build forecast request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn("forecast service request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err))
		return apperr.Wrap(apperr.KindUpstream, unavailableMessage, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return apperr.Wrap(apperr.KindUpstream, unavailableMessage, err)
	}

	c.log.Debug("forecast service responded",
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(started)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Warn("forecast service returned error status",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("response", truncate(string(raw), 256)))
		return apperr.Wrap(apperr.KindUpstream, unavailableMessage,
			fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode))
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return apperr.Wrap(apperr.KindUpstream, "Forecast service returned an invalid response", err)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
