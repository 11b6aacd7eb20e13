// Package freshness tracks when the catalog last changed so clients know when to refetch.
package freshness

import (
	"context"
	"fmt"
	"time"

	pkgerrors "github.com/electrosoundpack/storefront-backend/pkg/errors"
	"github.com/electrosoundpack/storefront-backend/pkg/logger"
)

// ISOLayout matches the millisecond UTC form browsers produce for Date.toISOString.
const ISOLayout = "2006-01-02T15:04:05.000Z"

type markerStore interface {
	SetTime(ctx context.Context, key string, t time.Time) error
	GetTime(ctx context.Context, key string) (time.Time, bool, error)
}

// LatestSource reports the newest product write straight from the database.
type LatestSource interface {
	LatestUpdate(ctx context.Context) (time.Time, bool, error)
}

// Response is the body served by the freshness endpoint.
type Response struct {
	LastModified *string `json:"lastModified"`
}

// Tracker reads and bumps the catalog freshness marker.
type Tracker struct {
	store  markerStore
	key    string
	source LatestSource
	logg   *logger.Logger
}

func NewTracker(store markerStore, key string, source LatestSource, logg *logger.Logger) (*Tracker, error) {
	if store == nil {
		return nil, fmt.Errorf("marker store required")
	}
	if key == "" {
		return nil, fmt.Errorf("marker key required")
	}
	if source == nil {
		return nil, fmt.Errorf("latest update source required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Tracker{store: store, key: key, source: source, logg: logg}, nil
}

// MarkChanged records at as the catalog's last modification.
func (t *Tracker) MarkChanged(ctx context.Context, at time.Time) error {
	return t.store.SetTime(ctx, t.key, at.UTC())
}

// LastModified returns the marker, falling back to the newest product row.
// ok is false when the catalog has never been written.
func (t *Tracker) LastModified(ctx context.Context) (time.Time, bool, error) {
	at, ok, err := t.store.GetTime(ctx, t.key)
	if err != nil {
		t.logg.Warn(t.logg.WithField(ctx, "error", err.Error()), "freshness.marker_read_failed")
	} else if ok {
		return at.UTC(), true, nil
	}

	at, ok, err = t.source.LatestUpdate(ctx)
	if err != nil {
		return time.Time{}, false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: latest product update")
	}
	if !ok {
		return time.Time{}, false, nil
	}
	return at.UTC(), true, nil
}

// Current builds the endpoint body.
func (t *Tracker) Current(ctx context.Context) (Response, error) {
	at, ok, err := t.LastModified(ctx)
	if err != nil {
		return Response{}, err
	}
	if !ok {
		return Response{}, nil
	}
	formatted := at.Format(ISOLayout)
	return Response{LastModified: &formatted}, nil
}
