package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"storefront/models"
)

// APIError is a non-2xx answer of the store API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed with status code %d", e.Status)
}

// Detail returns the server-provided message of err when there is one,
// otherwise err's own text.
func Detail(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}

// Client talks to the store API: products, orders, auth and registration.
type Client struct {
	http *resty.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	rc := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	return &Client{http: rc}
}

// NewWithResty wraps an existing resty client.
func NewWithResty(rc *resty.Client) *Client {
	return &Client{http: rc}
}

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (c *Client) check(resp *resty.Response, err error) error {
	if err != nil {
		return err
	}
	if !resp.IsError() {
		return nil
	}
	apiErr := &APIError{Status: resp.StatusCode()}
	var body errorBody
	if jsonErr := json.Unmarshal(resp.Body(), &body); jsonErr == nil {
		apiErr.Message = body.Message
		if apiErr.Message == "" {
			apiErr.Message = body.Error
		}
	}
	zap.L().Debug("store api error",
		zap.String("url", resp.Request.URL),
		zap.Int("status", apiErr.Status),
		zap.String("message", apiErr.Message))
	return apiErr
}

// FetchProducts calls GET /products.
func (c *Client) FetchProducts(ctx context.Context) ([]models.ProductRow, error) {
	var rows []models.ProductRow
	resp, err := c.http.R().
		SetContext(ctx).
		ForceContentType("application/json").
		SetResult(&rows).
		Get("/products")
	if err := c.check(resp, err); err != nil {
		return nil, fmt.Errorf("fetch products: %w", err)
	}
	return rows, nil
}

// SubmitOrder calls POST /orders. The response body is the confirmed order.
func (c *Client) SubmitOrder(ctx context.Context, req models.OrderRequest) (models.Order, error) {
	var order models.Order
	resp, err := c.http.R().
		SetContext(ctx).
		ForceContentType("application/json").
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		SetResult(&order).
		Post("/orders")
	if err := c.check(resp, err); err != nil {
		return models.Order{}, err
	}
	return order, nil
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult is the answer of POST /auth/login.
type LoginResult struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	User    models.User `json:"user"`
}

func (c *Client) Login(ctx context.Context, req LoginRequest) (LoginResult, error) {
	var result LoginResult
	resp, err := c.http.R().
		SetContext(ctx).
		ForceContentType("application/json").
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		SetResult(&result).
		Post("/auth/login")
	if err := c.check(resp, err); err != nil {
		return LoginResult{}, err
	}
	return result, nil
}

// RegisterRequest is the body of POST /register.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register calls POST /register and returns the server message.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (string, error) {
	var result struct {
		Message string `json:"message"`
	}
	resp, err := c.http.R().
		SetContext(ctx).
		ForceContentType("application/json").
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		SetResult(&result).
		Post("/register")
	if err := c.check(resp, err); err != nil {
		return "", err
	}
	return result.Message, nil
}

// CheckDuplicate asks POST /check-duplicate whether value is already taken
// for field (username or email).
func (c *Client) CheckDuplicate(ctx context.Context, field, value string) (bool, error) {
	var result struct {
		Exists bool `json:"exists"`
	}
	resp, err := c.http.R().
		SetContext(ctx).
		ForceContentType("application/json").
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]string{field: value}).
		SetResult(&result).
		Post("/check-duplicate")
	if err := c.check(resp, err); err != nil {
		return false, err
	}
	return result.Exists, nil
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// FetchAvatar downloads the image at url. Relative urls resolve against the
// store API.
func (c *Client) FetchAvatar(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Accept", "image/*").
		Get(url)
	if err := c.check(resp, err); err != nil {
		return nil, fmt.Errorf("fetch avatar: %w", err)
	}
	return resp.Body(), nil
}
