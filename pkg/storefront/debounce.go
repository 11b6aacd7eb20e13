package storefront

import (
	"context"
	"sync"
	"time"

	"github.com/electrosoundpack/storefront-backend/internal/catalog"
)

const (
	SearchDebounce   = 500 * time.Millisecond
	CartSaveDebounce = 300 * time.Millisecond
)

// Debouncer runs only the last function triggered within its delay.
type Debouncer struct {
	delay time.Duration

	mu    sync.Mutex
	timer *time.Timer
}

func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	if d.delay <= 0 {
		d.timer = nil
		go fn()
		return
	}
	d.timer = time.AfterFunc(d.delay, fn)
}

// Stop cancels a pending call.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// SearchDebouncer coalesces keystrokes into one ApplySearchAndFilter call.
type SearchDebouncer struct {
	pager    *Pager
	debounce *Debouncer
}

func NewSearchDebouncer(pager *Pager, delay time.Duration) *SearchDebouncer {
	if delay <= 0 {
		delay = SearchDebounce
	}
	return &SearchDebouncer{pager: pager, debounce: NewDebouncer(delay)}
}

// Input records the latest search text. ctx must outlive the delay.
func (s *SearchDebouncer) Input(ctx context.Context, filter catalog.Filter, text string) {
	s.debounce.Trigger(func() {
		_, _ = s.pager.ApplySearchAndFilter(ctx, filter, text)
	})
}

func (s *SearchDebouncer) Stop() {
	s.debounce.Stop()
}
