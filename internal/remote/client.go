package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/nikolayk812/lpg-cart/internal/domain"
	"github.com/nikolayk812/lpg-cart/internal/port"
)

const maxErrorBody = 64 << 10

var (
	_ port.CartRemote    = (*Client)(nil)
	_ port.OrderRemote   = (*Client)(nil)
	_ port.CatalogRemote = (*Client)(nil)
)

// Client talks to the order-service cart, order and catalog resources.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	creds   port.Credentials
}

// NewClient builds a client for baseURL. A nil httpClient gets a 5s timeout.
// The transport is always wrapped with otelhttp.
func NewClient(baseURL string, httpClient *http.Client, creds port.Credentials) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("order-service base URL is required")
	}
	parsed, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("base URL %q must be absolute", baseURL)
	}
	if creds == nil {
		return nil, errors.New("credentials are required")
	}

	client := &http.Client{Timeout: 5 * time.Second}
	if httpClient != nil {
		copied := *httpClient
		client = &copied
	}
	base := client.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	client.Transport = otelhttp.NewTransport(base)

	return &Client{baseURL: parsed, http: client, creds: creds}, nil
}

func (c *Client) ListCart(ctx context.Context) ([]domain.CartLine, error) {
	var out CartPayload
	if err := c.do(ctx, http.MethodGet, "/api/cart", nil, &out); err != nil {
		return nil, err
	}

	lines, err := mapLinePayloads(out.Lines)
	if err != nil {
		return nil, fmt.Errorf("mapLinePayloads: %w", err)
	}
	return lines, nil
}

// CreateLine posts a new line. A temporary id is sent as the Idempotency-Key so
// a retried create does not duplicate the line.
func (c *Client) CreateLine(ctx context.Context, line domain.CartLine) (domain.CartLine, error) {
	var opts []requestOption
	if line.IsTemporary() {
		opts = append(opts, withIdempotencyKey(line.ID))
	}

	var out LinePayload
	if err := c.do(ctx, http.MethodPost, "/api/cart", NewLinePayload(line), &out, opts...); err != nil {
		return domain.CartLine{}, err
	}
	return out.ToDomain()
}

func (c *Client) UpdateLine(ctx context.Context, line domain.CartLine) (domain.CartLine, error) {
	if line.ID == "" || line.IsTemporary() {
		return domain.CartLine{}, fmt.Errorf("line[%s] has no server id", line.ID)
	}

	var out LinePayload
	err := c.do(ctx, http.MethodPut, "/api/cart/"+url.PathEscape(line.ID), QuantityPayload{Quantity: line.Quantity}, &out)
	if err != nil {
		return domain.CartLine{}, err
	}
	return out.ToDomain()
}

func (c *Client) DeleteLine(ctx context.Context, lineID string) error {
	if lineID == "" {
		return errors.New("line id is empty")
	}
	return c.do(ctx, http.MethodDelete, "/api/cart/"+url.PathEscape(lineID), nil, nil)
}

func (c *Client) ClearCart(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/api/cart", nil, nil)
}

func (c *Client) CreateOrder(ctx context.Context, req port.OrderRequest) (domain.Order, error) {
	payload := OrderRequestPayload{
		Lines:    make([]LinePayload, 0, len(req.Lines)),
		Address:  NewAddressPayload(req.Address),
		Schedule: NewSchedulePayload(req.Schedule),
	}
	for _, l := range req.Lines {
		payload.Lines = append(payload.Lines, NewLinePayload(l))
	}

	var out OrderPayload
	if err := c.do(ctx, http.MethodPost, "/api/orders", payload, &out); err != nil {
		return domain.Order{}, err
	}
	return out.ToDomain()
}

func (c *Client) ListProducts(ctx context.Context) ([]domain.Product, error) {
	var out CatalogPayload
	if err := c.do(ctx, http.MethodGet, "/api/products", nil, &out); err != nil {
		return nil, err
	}

	products := make([]domain.Product, 0, len(out.Products))
	for _, p := range out.Products {
		product, err := p.ToDomain()
		if err != nil {
			return nil, fmt.Errorf("ToDomain: %w", err)
		}
		products = append(products, product)
	}
	return products, nil
}

// Health probes the unauthenticated health endpoint.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/healthz", nil, nil, withoutAuth())
}

type requestOptions struct {
	idempotencyKey string
	skipAuth       bool
}

type requestOption func(*requestOptions)

func withIdempotencyKey(key string) requestOption {
	return func(o *requestOptions) { o.idempotencyKey = strings.TrimSpace(key) }
}

func withoutAuth() requestOption {
	return func(o *requestOptions) { o.skipAuth = true }
}

func (c *Client) do(ctx context.Context, method, path string, in, out any, optFns ...requestOption) error {
	var opts requestOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("json.Marshal: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, body)
	if err != nil {
		return fmt.Errorf("http.NewRequest: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if opts.idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", opts.idempotencyKey)
	}
	if !opts.skipAuth {
		token, ok := c.creds.Token(ctx)
		if !ok || token == "" {
			return ErrUnauthenticated
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("call %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return newStatusError(method, path, resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func newStatusError(method, path string, resp *http.Response) *StatusError {
	statusErr := &StatusError{Method: method, Path: path, StatusCode: resp.StatusCode}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(raw) == 0 {
		return statusErr
	}

	var problem Problem
	if err := json.Unmarshal(raw, &problem); err == nil && (problem.Title != "" || problem.Detail != "") {
		statusErr.Problem = &problem
	}
	return statusErr
}
