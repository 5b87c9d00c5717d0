package orders

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"storefront/models"
	"storefront/remote"
)

var (
	// ErrSubmitFailure wraps every failed submission, network or server side.
	ErrSubmitFailure = errors.New("order failed")
	// ErrSubmitInFlight rejects a submission while another is outstanding.
	ErrSubmitInFlight = errors.New("an order is already being submitted")
	// ErrEmptyCart rejects a submission of an empty cart.
	ErrEmptyCart = errors.New("cart is empty")
)

// API is the order endpoint of the store API.
type API interface {
	SubmitOrder(ctx context.Context, req models.OrderRequest) (models.Order, error)
}

// SubmitError carries the message shown to the customer after a failed
// submission: the server detail when provided, otherwise the transport error.
type SubmitError struct {
	Detail string
	Err    error
}

func (e *SubmitError) Error() string {
	return "Order failed: " + e.Detail
}

func (e *SubmitError) Unwrap() []error {
	return []error{ErrSubmitFailure, e.Err}
}

// Submitter serializes a cart and the current user into an order request.
type Submitter struct {
	api API
}

func NewSubmitter(api API) *Submitter {
	return &Submitter{api: api}
}

// Submit posts the items for user and returns the confirmed order. It holds
// no state; the caller owns the cart and clears it on success.
func (s *Submitter) Submit(ctx context.Context, items []models.LineItem, user models.User) (models.Order, error) {
	if len(items) == 0 {
		return models.Order{}, ErrEmptyCart
	}

	req := models.OrderRequest{
		Items: make([]models.OrderItem, 0, len(items)),
		User:  user,
	}
	for _, it := range items {
		req.Items = append(req.Items, it.OrderItem())
	}

	order, err := s.api.SubmitOrder(ctx, req)
	if err != nil {
		zap.L().Warn("order submission failed",
			zap.String("username", user.Username),
			zap.Int("items", len(items)),
			zap.Error(err))
		return models.Order{}, &SubmitError{Detail: remote.Detail(err), Err: err}
	}

	zap.L().Info("order confirmed",
		zap.Stringer("orderId", order.OrderID),
		zap.String("username", user.Username),
		zap.Int("items", len(order.Items)))
	return order, nil
}
