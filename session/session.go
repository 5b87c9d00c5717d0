package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"storefront/auth"
	"storefront/cart"
	"storefront/catalog"
	"storefront/live"
	"storefront/models"
	"storefront/orders"
	"storefront/profile"
	"storefront/receipt"
)

var (
	ErrUnknownProduct = errors.New("product not found")
	ErrNoOrder        = errors.New("no confirmed order")
)

// Publisher pushes session events to connected clients.
type Publisher interface {
	Publish(room, typ string, data any)
}

// AccountAPI is the auth part of the store API.
type AccountAPI interface {
	auth.LoginAPI
	auth.RegisterAPI
}

// Deps are the collaborators shared by all sessions. They hold no per-session
// state.
type Deps struct {
	Products  catalog.Source
	Orders    orders.API
	Accounts  AccountAPI
	Profiles  profile.Store
	Avatars   receipt.AvatarFetcher
	Publisher Publisher
	Pricing   catalog.Pricing
	Debounce  time.Duration
	// SubmitTimeout bounds an order submission once started; the submission
	// is not cancelled when the client goes away.
	SubmitTimeout time.Duration
}

// Session is the state one storefront view used to keep in memory: catalog,
// color selections, cart, ordering flow and registration form. mu plays the
// part of the UI event loop: every mutation of the cart and the selector
// happens under it. Network calls run outside of it.
type Session struct {
	ID string

	deps      *Deps
	loader    *catalog.Loader
	checkout  *orders.Checkout
	submitter *orders.Submitter
	register  *auth.Registration

	mu       sync.Mutex
	cart     *cart.Cart
	selector *catalog.Selector
	lastSeen time.Time
}

func newSession(id string, deps *Deps) *Session {
	s := &Session{
		ID:        id,
		deps:      deps,
		loader:    catalog.NewLoader(deps.Products),
		checkout:  orders.NewCheckout(),
		submitter: orders.NewSubmitter(deps.Orders),
		cart:      cart.New(),
		selector:  catalog.NewSelector(),
		lastSeen:  time.Now(),
	}
	s.register = auth.NewRegistration(deps.Accounts, deps.Debounce, func(errs map[string]string) {
		s.publish(live.RegisterErrors, errs)
	})
	return s
}

func (s *Session) publish(typ string, data any) {
	if s.deps.Publisher != nil {
		s.deps.Publisher.Publish(s.ID, typ, data)
	}
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastSeen = time.Now()
	s.mu.Unlock()
}

// LastSeen is the time of the last request for this session.
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// LoadCatalog fetches the catalog again, replacing the current grouping on
// success.
func (s *Session) LoadCatalog(ctx context.Context) ([]catalog.TypeSection, error) {
	if _, err := s.loader.Load(ctx); err != nil {
		return s.catalogView(), err
	}
	view := s.catalogView()
	s.publish(live.CatalogReloaded, view)
	return view, nil
}

// Catalog returns the catalog view, loading it on first use.
func (s *Session) Catalog(ctx context.Context) ([]catalog.TypeSection, error) {
	if !s.loader.Loaded() {
		return s.LoadCatalog(ctx)
	}
	return s.catalogView(), nil
}

func (s *Session) catalogView() []catalog.TypeSection {
	current := s.loader.Current()
	s.mu.Lock()
	defer s.mu.Unlock()
	return catalog.View(current, s.selector, s.deps.Pricing, s.cart.Quantity)
}

func (s *Session) findProduct(typ, name string) (models.Product, error) {
	current := s.loader.Current()
	var (
		p  models.Product
		ok bool
	)
	if typ == "" {
		p, ok = current.FindProduct(name)
	} else {
		p, ok = current.Lookup(typ, name)
	}
	if !ok || len(p.Variants) == 0 {
		return models.Product{}, fmt.Errorf("%w: %s", ErrUnknownProduct, name)
	}
	return p, nil
}

// SelectColor makes color the displayed variant of the named product. The
// catalog is loaded on first use.
func (s *Session) SelectColor(ctx context.Context, productName, color string) (catalog.ProductCard, error) {
	if _, err := s.Catalog(ctx); err != nil {
		return catalog.ProductCard{}, err
	}
	p, err := s.findProduct("", productName)
	if err != nil {
		return catalog.ProductCard{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selector.SelectColor(productName, color)
	return catalog.Card(p, s.selector, s.deps.Pricing, s.cart.Quantity), nil
}

// AddToCart adds the displayed variant of a product at its current unit
// price. typ may be empty. The cart is frozen while an order is submitting.
func (s *Session) AddToCart(typ, name string) (cart.Summary, error) {
	p, err := s.findProduct(typ, name)
	if err != nil {
		return cart.Summary{}, err
	}

	s.mu.Lock()
	if s.checkout.InFlight() {
		summary := s.cart.Summary()
		s.mu.Unlock()
		return summary, orders.ErrSubmitInFlight
	}
	v := s.selector.ActiveVariant(p)
	err = s.cart.Add(p, v, s.deps.Pricing.UnitPrice(v))
	summary := s.cart.Summary()
	s.mu.Unlock()

	if err != nil {
		return summary, err
	}
	s.publish(live.CartUpdated, summary)
	return summary, nil
}

// mutateCart applies fn unless an order is submitting. PlaceOrder empties the
// cart on success, so it must still hold exactly what was sent.
func (s *Session) mutateCart(fn func(c *cart.Cart)) (cart.Summary, error) {
	s.mu.Lock()
	if s.checkout.InFlight() {
		summary := s.cart.Summary()
		s.mu.Unlock()
		return summary, orders.ErrSubmitInFlight
	}
	fn(s.cart)
	summary := s.cart.Summary()
	s.mu.Unlock()
	s.publish(live.CartUpdated, summary)
	return summary, nil
}

func (s *Session) RemoveItem(id models.ID) (cart.Summary, error) {
	return s.mutateCart(func(c *cart.Cart) { c.Remove(id) })
}

func (s *Session) SetQuantity(id models.ID, n int) (cart.Summary, error) {
	return s.mutateCart(func(c *cart.Cart) { c.SetQuantity(id, n) })
}

func (s *Session) ClearCart() (cart.Summary, error) {
	return s.mutateCart(func(c *cart.Cart) { c.Clear() })
}

func (s *Session) Cart() cart.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Summary()
}

// PlaceOrder submits the cart for the current user. An empty cart and a
// submission already in flight are rejected before anything is sent. On
// success the cart is emptied and the catalog reloaded; on failure the cart
// is left exactly as it was. Cart changes are refused until it settles.
func (s *Session) PlaceOrder(ctx context.Context) (models.Order, error) {
	s.mu.Lock()
	if s.cart.IsEmpty() {
		s.mu.Unlock()
		return models.Order{}, orders.ErrEmptyCart
	}
	if err := s.checkout.Begin(); err != nil {
		s.mu.Unlock()
		return models.Order{}, err
	}
	items := s.cart.Items()
	s.mu.Unlock()

	s.publish(live.OrderSubmitting, nil)

	ctx = context.WithoutCancel(ctx)
	if s.deps.SubmitTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.deps.SubmitTimeout)
		defer cancel()
	}

	user := profile.Current(ctx, s.deps.Profiles, s.ID)
	order, err := s.submitter.Submit(ctx, items, user)
	if err != nil {
		s.checkout.Fail(err)
		s.publish(live.OrderFailed, map[string]string{"message": err.Error()})
		return models.Order{}, err
	}

	s.mu.Lock()
	s.cart.Clear()
	s.checkout.Succeed(order)
	summary := s.cart.Summary()
	s.mu.Unlock()

	s.publish(live.OrderConfirmed, order)
	s.publish(live.CartUpdated, summary)

	if _, err := s.LoadCatalog(ctx); err != nil {
		zap.L().Warn("catalog reload after order", zap.String("session", s.ID), zap.Error(err))
	}
	return order, nil
}

// CheckoutState reports the ordering flow state.
func (s *Session) CheckoutState() orders.State {
	return s.checkout.State()
}

// Order returns the confirmed order on display.
func (s *Session) Order() (models.Order, bool) {
	return s.checkout.Order()
}

// DismissOrder closes the receipt view and reloads the catalog.
func (s *Session) DismissOrder(ctx context.Context) ([]catalog.TypeSection, error) {
	s.checkout.Dismiss()
	return s.LoadCatalog(ctx)
}

// Receipt renders the confirmed order as a PDF.
func (s *Session) Receipt(ctx context.Context) (receipt.Document, error) {
	order, ok := s.checkout.Order()
	if !ok {
		return receipt.Document{}, ErrNoOrder
	}
	return receipt.Render(ctx, order, receipt.Options{
		User:    profile.Current(ctx, s.deps.Profiles, s.ID),
		Avatars: s.deps.Avatars,
	})
}

// User is the signed in user, or the guest.
func (s *Session) User(ctx context.Context) models.User {
	return profile.Current(ctx, s.deps.Profiles, s.ID)
}

func (s *Session) Login(ctx context.Context, form auth.LoginForm) (models.User, error) {
	return auth.Login(ctx, s.deps.Accounts, s.deps.Profiles, s.ID, form)
}

func (s *Session) Logout(ctx context.Context) error {
	return auth.Logout(ctx, s.deps.Profiles, s.ID)
}

// Registration is the session's registration form.
func (s *Session) Registration() *auth.Registration {
	return s.register
}

// Snapshot is the full client-visible state of a session.
type Snapshot struct {
	ID        string        `json:"id"`
	User      models.User   `json:"user"`
	Cart      cart.Summary  `json:"cart"`
	Checkout  orders.State  `json:"checkout"`
	Order     *models.Order `json:"order,omitempty"`
	LastError string        `json:"lastError,omitempty"`
}

func (s *Session) Snapshot(ctx context.Context) Snapshot {
	snap := Snapshot{
		ID:       s.ID,
		User:     s.User(ctx),
		Cart:     s.Cart(),
		Checkout: s.checkout.State(),
	}
	if o, ok := s.checkout.Order(); ok {
		snap.Order = &o
	}
	if err := s.checkout.LastError(); err != nil {
		snap.LastError = err.Error()
	}
	return snap
}

func (s *Session) close() {
	s.register.Close()
}
