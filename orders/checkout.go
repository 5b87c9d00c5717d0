package orders

import (
	"sync"

	"storefront/models"
)

// State of the ordering flow.
type State int

const (
	Idle State = iota
	Submitting
	Confirmed
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Submitting:
		return "submitting"
	case Confirmed:
		return "confirmed"
	case Failed:
		return "failed"
	}
	return "unknown"
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Checkout is the Idle → Submitting → {Confirmed, Failed} machine. Its
// Submitting state is the single in-flight guard against duplicate orders.
// Failed behaves like Idle for the next Begin.
type Checkout struct {
	mu      sync.Mutex
	state   State
	order   *models.Order
	lastErr error
}

func NewCheckout() *Checkout {
	return &Checkout{}
}

// Begin enters Submitting. It fails with ErrSubmitInFlight when a submission
// is already outstanding.
func (c *Checkout) Begin() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Submitting {
		return ErrSubmitInFlight
	}
	c.state = Submitting
	c.lastErr = nil
	return nil
}

// Succeed records the confirmed order and clears the in-flight flag.
func (c *Checkout) Succeed(order models.Order) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = Confirmed
	c.order = &order
}

// Fail records err and clears the in-flight flag.
func (c *Checkout) Fail(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = Failed
	c.lastErr = err
}

// Dismiss closes the receipt view and returns to Idle.
func (c *Checkout) Dismiss() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Submitting {
		return
	}
	c.state = Idle
	c.order = nil
	c.lastErr = nil
}

func (c *Checkout) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// InFlight reports whether a submission is outstanding.
func (c *Checkout) InFlight() bool {
	return c.State() == Submitting
}

// Order returns the last confirmed order, if it has not been dismissed.
func (c *Checkout) Order() (models.Order, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.order == nil {
		return models.Order{}, false
	}
	return *c.order, true
}

func (c *Checkout) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}
