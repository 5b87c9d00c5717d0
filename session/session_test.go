package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/auth"
	"storefront/cart"
	"storefront/catalog"
	"storefront/live"
	"storefront/models"
	"storefront/orders"
	"storefront/profile"
	"storefront/remote"
)

type fakeStore struct {
	mu        sync.Mutex
	rows      []models.ProductRow
	fetchErr  error
	fetches   int
	orderErr  error
	orders    []models.OrderRequest
	release   chan struct{}
	submitted chan struct{}
	login     remote.LoginResult
}

func (f *fakeStore) FetchProducts(context.Context) ([]models.ProductRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches++
	return f.rows, f.fetchErr
}

func (f *fakeStore) SubmitOrder(ctx context.Context, req models.OrderRequest) (models.Order, error) {
	if f.submitted != nil {
		f.submitted <- struct{}{}
	}
	if f.release != nil {
		<-f.release
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.orderErr != nil {
		return models.Order{}, f.orderErr
	}
	f.orders = append(f.orders, req)
	return models.Order{OrderID: "A100", Items: req.Items}, nil
}

func (f *fakeStore) Login(context.Context, remote.LoginRequest) (remote.LoginResult, error) {
	return f.login, nil
}

func (f *fakeStore) CheckDuplicate(context.Context, string, string) (bool, error) {
	return false, nil
}

func (f *fakeStore) Register(context.Context, remote.RegisterRequest) (string, error) {
	return "ok", nil
}

func (f *fakeStore) FetchAvatar(context.Context, string) ([]byte, error) {
	return nil, errors.New("no avatar")
}

func (f *fakeStore) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetches
}

type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) Publish(room, typ string, data any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, typ)
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

func row(id, typ, name, color, price string, stock int) models.ProductRow {
	return models.ProductRow{
		ID: models.ID(id), Type: typ, Name: name, Colors: color,
		Price: decimal.RequireFromString(price), Stock: stock,
	}
}

func newTestSession(t *testing.T) (*Session, *fakeStore, *recorder, *Manager) {
	t.Helper()
	store := &fakeStore{rows: []models.ProductRow{
		row("1", "Shirt", "Basic Tee", "Black", "100", 2),
		row("2", "Shirt", "Basic Tee", "White", "100", 0),
		row("7", "Hat", "Cap", "Red", "120", 4),
	}}
	rec := &recorder{}
	m := NewManager(Deps{
		Products:  store,
		Orders:    store,
		Accounts:  store,
		Profiles:  profile.NewMemoryStore(),
		Avatars:   store,
		Publisher: rec,
		Pricing:   catalog.DefaultPricing(),
		Debounce:  time.Millisecond,
	})
	s := m.Create()
	t.Cleanup(func() { m.Delete(context.Background(), s.ID) })
	_, err := s.Catalog(context.Background())
	require.NoError(t, err)
	return s, store, rec, m
}

func TestAddToCartUsesDisplayedVariantAndSalePrice(t *testing.T) {
	s, _, _, _ := newTestSession(t)

	summary, err := s.AddToCart("Shirt", "Basic Tee")
	require.NoError(t, err)
	require.Len(t, summary.Items, 1)
	assert.Equal(t, "Black", summary.Items[0].Color)
	assert.Equal(t, "70", summary.Items[0].UnitPrice.String())

	_, err = s.AddToCart("", "Basic Tee")
	require.NoError(t, err)
	_, err = s.AddToCart("Shirt", "Basic Tee")
	assert.ErrorIs(t, err, cart.ErrStockExceeded)

	card, err := s.SelectColor(context.Background(), "Basic Tee", "White")
	require.NoError(t, err)
	assert.False(t, card.CanAdd)
	_, err = s.AddToCart("Shirt", "Basic Tee")
	assert.ErrorIs(t, err, cart.ErrOutOfStock)

	_, err = s.AddToCart("Shirt", "Nope")
	assert.ErrorIs(t, err, ErrUnknownProduct)
}

func TestCartMutations(t *testing.T) {
	s, _, rec, _ := newTestSession(t)
	_, err := s.AddToCart("Hat", "Cap")
	require.NoError(t, err)

	summary, err := s.SetQuantity("7", 10)
	require.NoError(t, err)
	assert.Equal(t, 4, summary.TotalCount)
	summary, err = s.SetQuantity("7", -1)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.TotalCount)
	summary, err = s.RemoveItem("7")
	require.NoError(t, err)
	assert.Equal(t, 0, summary.TotalCount)

	_, err = s.AddToCart("Hat", "Cap")
	require.NoError(t, err)
	summary, err = s.ClearCart()
	require.NoError(t, err)
	assert.Equal(t, 0, summary.TotalCount)
	assert.Contains(t, rec.types(), live.CartUpdated)
}

func TestSelectColorLoadsCatalog(t *testing.T) {
	_, store, _, m := newTestSession(t)
	s := m.Create()
	before := store.fetchCount()

	card, err := s.SelectColor(context.Background(), "Basic Tee", "White")
	require.NoError(t, err)
	assert.Equal(t, "White", card.ActiveColor)
	assert.Equal(t, before+1, store.fetchCount())

	_, err = s.SelectColor(context.Background(), "Nope", "Red")
	assert.ErrorIs(t, err, ErrUnknownProduct)
	assert.Equal(t, before+1, store.fetchCount(), "catalog fetched once")
}

func TestPlaceOrderSuccess(t *testing.T) {
	s, store, rec, _ := newTestSession(t)
	ctx := context.Background()
	_, err := s.Login(ctx, auth.LoginForm{Email: "a@b.co", Password: "secret"})
	require.Error(t, err, "fake login reports failure")

	_, err = s.AddToCart("Shirt", "Basic Tee")
	require.NoError(t, err)
	_, err = s.AddToCart("Hat", "Cap")
	require.NoError(t, err)
	fetchesBefore := store.fetchCount()

	order, err := s.PlaceOrder(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.ID("A100"), order.OrderID)
	assert.Equal(t, "190", order.Total().String())

	require.Len(t, store.orders, 1)
	assert.Equal(t, models.GuestName, store.orders[0].User.Username)
	assert.Equal(t, 0, s.Cart().TotalCount)
	assert.Equal(t, orders.Confirmed, s.CheckoutState())
	assert.Equal(t, fetchesBefore+1, store.fetchCount(), "catalog reloaded")

	got, ok := s.Order()
	require.True(t, ok)
	assert.Equal(t, order.OrderID, got.OrderID)

	types := rec.types()
	assert.Contains(t, types, live.OrderSubmitting)
	assert.Contains(t, types, live.OrderConfirmed)

	doc, err := s.Receipt(ctx)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(doc.Bytes[:4]))

	_, err = s.DismissOrder(ctx)
	require.NoError(t, err)
	assert.Equal(t, orders.Idle, s.CheckoutState())
	_, err = s.Receipt(ctx)
	assert.ErrorIs(t, err, ErrNoOrder)
}

func TestPlaceOrderFailureKeepsCart(t *testing.T) {
	s, store, rec, _ := newTestSession(t)
	store.orderErr = &remote.APIError{Status: 400, Message: "Out of stock: Basic Tee"}

	_, err := s.AddToCart("Shirt", "Basic Tee")
	require.NoError(t, err)
	before := s.Cart()

	_, err = s.PlaceOrder(context.Background())
	require.ErrorIs(t, err, orders.ErrSubmitFailure)
	assert.Equal(t, "Order failed: Out of stock: Basic Tee", err.Error())
	assert.Equal(t, before, s.Cart())
	assert.Equal(t, orders.Failed, s.CheckoutState())
	assert.Contains(t, rec.types(), live.OrderFailed)
	assert.Equal(t, err.Error(), s.Snapshot(context.Background()).LastError)

	store.orderErr = nil
	_, err = s.PlaceOrder(context.Background())
	require.NoError(t, err, "a failed order can be retried")
}

func TestPlaceOrderRejectsEmptyCart(t *testing.T) {
	s, store, _, _ := newTestSession(t)
	_, err := s.PlaceOrder(context.Background())
	assert.ErrorIs(t, err, orders.ErrEmptyCart)
	assert.Empty(t, store.orders)
	assert.Equal(t, orders.Idle, s.CheckoutState())
}

func TestPlaceOrderRejectsSecondSubmission(t *testing.T) {
	s, store, _, _ := newTestSession(t)
	store.release = make(chan struct{})
	store.submitted = make(chan struct{}, 1)

	_, err := s.AddToCart("Hat", "Cap")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := s.PlaceOrder(context.Background())
		done <- err
	}()
	<-store.submitted

	_, err = s.PlaceOrder(context.Background())
	assert.ErrorIs(t, err, orders.ErrSubmitInFlight)

	summary, err := s.AddToCart("Shirt", "Basic Tee")
	assert.ErrorIs(t, err, orders.ErrSubmitInFlight)
	assert.Equal(t, 1, summary.TotalCount)
	_, err = s.SetQuantity("7", 3)
	assert.ErrorIs(t, err, orders.ErrSubmitInFlight)
	_, err = s.RemoveItem("7")
	assert.ErrorIs(t, err, orders.ErrSubmitInFlight)
	_, err = s.ClearCart()
	assert.ErrorIs(t, err, orders.ErrSubmitInFlight)

	close(store.release)
	require.NoError(t, <-done)
	assert.Len(t, store.orders, 1)
	require.Len(t, store.orders[0].Items, 1)
	assert.Equal(t, 1, store.orders[0].Items[0].Quantity)
	assert.Equal(t, 0, s.Cart().TotalCount)
	assert.Empty(t, s.Cart().Items)

	summary, err = s.AddToCart("Shirt", "Basic Tee")
	require.NoError(t, err, "cart unlocks once the order settles")
	assert.Equal(t, 1, summary.TotalCount)
}

func TestCatalogReloadFailureKeepsPrevious(t *testing.T) {
	s, store, _, _ := newTestSession(t)
	store.fetchErr = errors.New("boom")

	view, err := s.LoadCatalog(context.Background())
	require.ErrorIs(t, err, catalog.ErrFetchFailure)
	require.Len(t, view, 2)
	assert.Equal(t, "Shirt", view[0].Type)
}

func TestLoginStoresProfileForOrders(t *testing.T) {
	s, store, _, _ := newTestSession(t)
	store.login = remote.LoginResult{Success: true, User: models.User{Username: "alice"}}
	ctx := context.Background()

	user, err := s.Login(ctx, auth.LoginForm{Email: "a@b.co", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "alice", s.Snapshot(ctx).User.Username)

	_, err = s.AddToCart("Hat", "Cap")
	require.NoError(t, err)
	_, err = s.PlaceOrder(ctx)
	require.NoError(t, err)
	assert.Equal(t, "alice", store.orders[0].User.Username)

	require.NoError(t, s.Logout(ctx))
	assert.Equal(t, models.GuestName, s.User(ctx).Username)
}

func TestManagerLifecycle(t *testing.T) {
	_, _, _, m := newTestSession(t)
	s := m.Create()
	assert.Equal(t, 2, m.Len())

	got, ok := m.Get(s.ID)
	require.True(t, ok)
	assert.Same(t, s, got)

	m.Delete(context.Background(), s.ID)
	_, ok = m.Get(s.ID)
	assert.False(t, ok)
	m.Delete(context.Background(), s.ID)
}

func TestManagerSweep(t *testing.T) {
	_, _, _, m := newTestSession(t)
	stale := m.Create()
	stale.mu.Lock()
	stale.lastSeen = time.Now().Add(-time.Hour)
	stale.mu.Unlock()

	assert.Equal(t, 1, m.Sweep(context.Background(), 30*time.Minute))
	_, ok := m.Get(stale.ID)
	assert.False(t, ok)
	assert.Equal(t, 1, m.Len())
}

func TestManagerSweepKeepsTouchedSession(t *testing.T) {
	_, _, _, m := newTestSession(t)
	s := m.Create()
	s.mu.Lock()
	s.lastSeen = time.Now().Add(-time.Hour)
	s.mu.Unlock()

	_, ok := m.Get(s.ID)
	require.True(t, ok)
	assert.Equal(t, 0, m.Sweep(context.Background(), 30*time.Minute))
	_, ok = m.Get(s.ID)
	assert.True(t, ok)
}
