package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"storefront/models"
)

// ErrFetchFailure marks a failed catalog fetch. The previous grouping stays
// in place.
var ErrFetchFailure = errors.New("catalog fetch failed")

// Source returns every product row of the remote product API.
type Source interface {
	FetchProducts(ctx context.Context) ([]models.ProductRow, error)
}

// Loader fetches and groups the catalog. Each successful Load replaces the
// previous grouping wholesale; a failed Load leaves it untouched. Overlapping
// loads are not ordered: whichever finishes last wins.
type Loader struct {
	source Source

	mu       sync.RWMutex
	current  models.Catalog
	loadedAt time.Time
}

func NewLoader(source Source) *Loader {
	return &Loader{source: source}
}

// Load fetches the product rows and replaces the current grouping.
func (l *Loader) Load(ctx context.Context) (models.Catalog, error) {
	rows, err := l.source.FetchProducts(ctx)
	if err != nil {
		zap.L().Warn("catalog load failed", zap.Error(err))
		return l.Current(), fmt.Errorf("%w: %w", ErrFetchFailure, err)
	}

	grouped := Group(rows)

	l.mu.Lock()
	l.current = grouped
	l.loadedAt = time.Now()
	l.mu.Unlock()

	zap.L().Debug("catalog loaded", zap.Int("rows", len(rows)), zap.Int("products", grouped.Len()))
	return grouped, nil
}

// Current returns the last successfully loaded grouping.
func (l *Loader) Current() models.Catalog {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.current
}

// Loaded reports whether a load has ever succeeded.
func (l *Loader) Loaded() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return !l.loadedAt.IsZero()
}

// LoadedAt is the time of the last successful load.
func (l *Loader) LoadedAt() time.Time {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.loadedAt
}
