package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"admin-dashboard/internal/models"
	"admin-dashboard/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TokenSource supplies the current bearer token, or "" when no session is
// active. The gateway reads it once per call; a token refreshed mid-flight
// does not affect an in-flight request.
type TokenSource interface {
	Token() string
}

// Client is a thin HTTP client over the remote commerce API. It attaches
// bearer tokens, maps failures to *APIError, and validates payload shape at
// the boundary. It never retries and holds no state between calls.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	logger  *zap.Logger
}

// NewClient creates a gateway client. tokens may be nil for a client that
// only performs unauthenticated calls.
func NewClient(baseURL string, httpClient *http.Client, tokens TokenSource) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		baseURL: baseURL,
		http:    httpClient,
		tokens:  tokens,
		logger:  util.NamedLogger("gateway"),
	}
}

// Upload is one file for the multipart image upload endpoint.
type Upload struct {
	Name    string
	Content []byte
}

// Login authenticates with the upstream API. The session token is carried
// in the response, not read from the token source.
func (c *Client) Login(ctx context.Context, email, password string) (models.AuthResult, error) {
	var result models.AuthResult
	body := map[string]string{"email": email, "password": password}
	err := c.doJSON(ctx, "login", http.MethodPost, "/user/login", nil, body, &result, "")
	if err != nil {
		return models.AuthResult{}, err
	}
	if result.Token == "" || result.User.ID == "" {
		return models.AuthResult{}, &APIError{Kind: KindValidation, Message: "login response missing token or user"}
	}
	return result, nil
}

// Signup registers a new account. It does not authenticate the session.
func (c *Client) Signup(ctx context.Context, username, email, password string) error {
	body := map[string]string{"username": username, "email": email, "password": password}
	return c.doJSON(ctx, "signup", http.MethodPost, "/user/signup", nil, body, nil, "")
}

// MyDetails fetches the account behind token. The token is passed
// explicitly so session restore can probe a stored token before
// publishing it.
func (c *Client) MyDetails(ctx context.Context, token string) (models.User, error) {
	var resp struct {
		User models.User `json:"user"`
	}
	if err := c.doJSON(ctx, "my_details", http.MethodGet, "/user/my-details", nil, nil, &resp, token); err != nil {
		return models.User{}, err
	}
	if resp.User.ID == "" {
		return models.User{}, &APIError{Kind: KindValidation, Message: "my-details response missing user"}
	}
	return resp.User, nil
}

// ListProducts fetches one page of the catalog listing.
func (c *Client) ListProducts(ctx context.Context, page int, search, category string) (models.ProductPage, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("search", search)
	q.Set("category", category)

	var result models.ProductPage
	if err := c.doJSON(ctx, "list_products", http.MethodGet, "/products", q, nil, &result, ""); err != nil {
		return models.ProductPage{}, err
	}
	for _, p := range result.Products {
		if p.ID == "" {
			return models.ProductPage{}, &APIError{Kind: KindValidation, Message: "product record missing id"}
		}
	}
	return result, nil
}

// CreateProduct creates a catalog entry and returns the server's record.
func (c *Client) CreateProduct(ctx context.Context, p models.Product) (models.Product, error) {
	var created models.Product
	if err := c.doJSON(ctx, "create_product", http.MethodPost, "/products", nil, p, &created, ""); err != nil {
		return models.Product{}, err
	}
	if created.ID == "" {
		return models.Product{}, &APIError{Kind: KindValidation, Message: "product record missing id"}
	}
	return created, nil
}

// UpdateProduct sends the entire record and returns the server's copy.
func (c *Client) UpdateProduct(ctx context.Context, p models.Product) (models.Product, error) {
	var updated models.Product
	path := "/products/" + url.PathEscape(p.ID)
	if err := c.doJSON(ctx, "update_product", http.MethodPut, path, nil, p, &updated, ""); err != nil {
		return models.Product{}, err
	}
	if updated.ID == "" {
		return models.Product{}, &APIError{Kind: KindValidation, Message: "product record missing id"}
	}
	return updated, nil
}

// DeleteProduct removes a catalog entry.
func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	return c.doJSON(ctx, "delete_product", http.MethodDelete, "/products/"+url.PathEscape(id), nil, nil, nil, "")
}

// UploadImages posts files as multipart form data and returns the stored
// image URLs.
func (c *Client) UploadImages(ctx context.Context, files []Upload) ([]string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range files {
		part, err := w.CreateFormFile("images", f.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to build multipart body: %w", err)
		}
		if _, err := part.Write(f.Content); err != nil {
			return nil, fmt.Errorf("failed to build multipart body: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to build multipart body: %w", err)
	}

	var resp struct {
		ImageURLs []string `json:"imageUrl"`
	}
	if err := c.doRaw(ctx, "upload_images", http.MethodPost, "/upload", nil, &buf, w.FormDataContentType(), &resp, ""); err != nil {
		return nil, err
	}
	return resp.ImageURLs, nil
}

// FetchOrders retrieves every order.
func (c *Client) FetchOrders(ctx context.Context) ([]models.Order, error) {
	return c.orderList(ctx, "fetch_orders", "/orders/all", nil)
}

// SearchOrders retrieves server-side search results. Empty-query handling
// belongs to the order store, not the gateway.
func (c *Client) SearchOrders(ctx context.Context, query string) ([]models.Order, error) {
	q := url.Values{}
	q.Set("query", query)
	return c.orderList(ctx, "search_orders", "/orders/search", q)
}

// OrdersByStatus retrieves the server-filtered subset for one status.
func (c *Client) OrdersByStatus(ctx context.Context, status string) ([]models.Order, error) {
	return c.orderList(ctx, "orders_by_status", "/orders/status/"+url.PathEscape(status), nil)
}

// SalesData delegates date-range aggregation to the server. Empty bounds
// are passed through; their meaning is the server's contract.
func (c *Client) SalesData(ctx context.Context, startDate, endDate string) (models.SalesSummary, error) {
	q := url.Values{}
	q.Set("startDate", startDate)
	q.Set("endDate", endDate)

	var result models.SalesSummary
	if err := c.doJSON(ctx, "sales_data", http.MethodGet, "/orders/sales-data", q, nil, &result, ""); err != nil {
		return models.SalesSummary{}, err
	}
	return result, nil
}

// EditOrder sends a partial update and returns the server's full record.
// The structured patch is serialized to the dotted-path keys the upstream
// API expects.
func (c *Client) EditOrder(ctx context.Context, orderID string, patch models.OrderPatch) (models.Order, error) {
	var updated models.Order
	path := "/orders/edit/" + url.PathEscape(orderID)
	if err := c.doJSON(ctx, "edit_order", http.MethodPut, path, nil, dottedPatch(patch), &updated, ""); err != nil {
		return models.Order{}, err
	}
	if updated.ID == "" {
		return models.Order{}, &APIError{Kind: KindValidation, Message: "order record missing id"}
	}
	return updated, nil
}

// DeleteOrder removes an order.
func (c *Client) DeleteOrder(ctx context.Context, orderID string) error {
	return c.doJSON(ctx, "delete_order", http.MethodDelete, "/orders/delete/"+url.PathEscape(orderID), nil, nil, nil, "")
}

func (c *Client) orderList(ctx context.Context, name, path string, q url.Values) ([]models.Order, error) {
	var orders []models.Order
	if err := c.doJSON(ctx, name, http.MethodGet, path, q, nil, &orders, ""); err != nil {
		return nil, err
	}
	for _, o := range orders {
		if o.ID == "" {
			return nil, &APIError{Kind: KindValidation, Message: "order record missing id"}
		}
	}
	return orders, nil
}

// dottedPatch flattens set fields to the "shippingAddress.<field>" keys
// used by the order edit endpoint.
func dottedPatch(p models.OrderPatch) map[string]string {
	m := make(map[string]string)
	set := func(field string, v *string) {
		if v != nil {
			m["shippingAddress."+field] = *v
		}
	}
	set("status", p.Status)
	set("fullName", p.FullName)
	set("addressLine", p.AddressLine)
	set("city", p.City)
	set("country", p.Country)
	set("postalCode", p.PostalCode)
	set("phoneNumber", p.PhoneNumber)
	set("email", p.Email)
	set("message", p.Message)
	return m
}

func (c *Client) doJSON(ctx context.Context, name, method, path string, query url.Values, body, out any, tokenOverride string) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}
	return c.doRaw(ctx, name, method, path, query, reader, "application/json", out, tokenOverride)
}

func (c *Client) doRaw(ctx context.Context, name, method, path string, query url.Values, body io.Reader, contentType string, out any, tokenOverride string) error {
	ctx, span := util.StartSpan(ctx, "gateway."+name)
	defer span.End()

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("X-Request-ID", uuid.New().String())

	// Token is read once here; it is a snapshot, not a live binding.
	token := tokenOverride
	if token == "" && c.tokens != nil {
		token = c.tokens.Token()
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	util.GatewayRequestDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	if err != nil {
		util.GatewayRequestsTotal.WithLabelValues(name, "transport_error").Inc()
		return &APIError{Kind: KindTransport, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := c.responseError(resp)
		util.GatewayRequestsTotal.WithLabelValues(name, apiErr.Kind.String()).Inc()
		c.logger.Warn("Upstream request failed",
			zap.String("endpoint", name),
			zap.Int("status", resp.StatusCode),
			zap.String("message", apiErr.Message))
		return apiErr
	}

	util.GatewayRequestsTotal.WithLabelValues(name, "ok").Inc()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &APIError{Kind: KindValidation, StatusCode: resp.StatusCode, Message: "malformed response payload", Err: err}
	}
	return nil
}

// responseError maps a non-2xx response to the error taxonomy, carrying
// the server-supplied message when the body has one.
func (c *Client) responseError(resp *http.Response) *APIError {
	var serverMsg struct {
		Message string `json:"message"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	_ = json.Unmarshal(raw, &serverMsg)

	kind := KindValidation
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		kind = KindAuth
	case resp.StatusCode >= 500:
		kind = KindServer
	}
	return &APIError{Kind: kind, StatusCode: resp.StatusCode, Message: serverMsg.Message}
}
