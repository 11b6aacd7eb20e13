package storefront

import (
	"context"
	"sync"
	"time"

	"github.com/electrosoundpack/storefront-backend/internal/catalog"
	"github.com/electrosoundpack/storefront-backend/pkg/logger"
)

const FreshnessInterval = 60 * time.Second

// FreshnessSource reports the catalog's last-modified marker.
type FreshnessSource interface {
	Freshness(ctx context.Context) (FreshnessDoc, error)
}

// FreshnessPoller reloads the catalog, and the cart of a logged-in shopper,
// whenever the server's last-modified marker changes.
type FreshnessPoller struct {
	source   FreshnessSource
	pager    *Pager
	cart     *Cart
	session  *Session
	logg     *logger.Logger
	interval time.Duration

	// Visible gates each tick; polls are skipped while it returns false.
	Visible func() bool

	mu       sync.Mutex
	seen     bool
	lastSeen string
}

func NewFreshnessPoller(source FreshnessSource, pager *Pager, cart *Cart, session *Session, interval time.Duration, logg *logger.Logger) *FreshnessPoller {
	if interval <= 0 {
		interval = FreshnessInterval
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &FreshnessPoller{
		source:   source,
		pager:    pager,
		cart:     cart,
		session:  session,
		logg:     logg,
		interval: interval,
	}
}

// Run polls until ctx is cancelled.
func (f *FreshnessPoller) Run(ctx context.Context) {
	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := f.Check(ctx); err != nil {
				f.logg.Warn(f.logg.WithField(ctx, "error", err.Error()), "storefront.freshness.check_failed")
			}
		}
	}
}

// Check performs one poll and reports whether a reload happened. The first
// marker observed always counts as a change.
func (f *FreshnessPoller) Check(ctx context.Context) (bool, error) {
	if f.Visible != nil && !f.Visible() {
		return false, nil
	}
	doc, err := f.source.Freshness(ctx)
	if err != nil {
		return false, err
	}
	current := ""
	if doc.LastModified != nil {
		current = *doc.LastModified
	}

	f.mu.Lock()
	changed := !f.seen || current != f.lastSeen
	f.mu.Unlock()
	if !changed {
		return false, nil
	}

	f.pager.Reset(catalog.FilterAll, "")
	if _, err := f.pager.FetchNext(ctx, true); err != nil {
		return false, err
	}

	f.mu.Lock()
	f.seen = true
	f.lastSeen = current
	f.mu.Unlock()

	if f.cart != nil && f.session != nil && f.session.Active() {
		if err := f.cart.Load(ctx); err != nil {
			return true, err
		}
	}
	return true, nil
}
