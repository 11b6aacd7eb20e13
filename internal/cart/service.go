package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	pkgerrors "github.com/electrosoundpack/storefront-backend/pkg/errors"
	"github.com/electrosoundpack/storefront-backend/pkg/types"
)

// Service persists the last-write-wins cart snapshot of each account.
type Service interface {
	Save(ctx context.Context, email string, items []Item) error
	Load(ctx context.Context, email string) ([]Item, error)
}

type saveCounter interface {
	IncCartSave(outcome string)
}

type service struct {
	repo   *Repository
	counts saveCounter
	now    func() time.Time
}

// NewService builds the cart service. counts may be nil.
func NewService(repo *Repository, counts saveCounter) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	return &service{repo: repo, counts: counts, now: time.Now}, nil
}

func (s *service) Save(ctx context.Context, email string, items []Item) error {
	email = normalizeEmail(email)
	if email == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "missing account identity")
	}

	normalized, err := normalizeItems(items)
	if err != nil {
		s.count("rejected")
		return err
	}
	payload, err := json.Marshal(normalized)
	if err != nil {
		s.count("error")
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode cart")
	}
	if err := s.repo.Replace(ctx, email, string(payload), s.now().UTC()); err != nil {
		s.count("error")
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: replace cart")
	}
	s.count("ok")
	return nil
}

func (s *service) Load(ctx context.Context, email string) ([]Item, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing account identity")
	}

	record, err := s.repo.FindByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return []Item{}, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: find cart")
	}
	if strings.TrimSpace(record.Items) == "" {
		return []Item{}, nil
	}

	var items []Item
	if err := json.Unmarshal([]byte(record.Items), &items); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode stored cart")
	}
	if items == nil {
		items = []Item{}
	}
	return items, nil
}

func (s *service) count(outcome string) {
	if s.counts != nil {
		s.counts.IncCartSave(outcome)
	}
}

func normalizeItems(items []Item) ([]Item, error) {
	out := make([]Item, 0, len(items))
	for i, item := range items {
		if item.Quantity < 1 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cart item").
				WithDetails(map[string]any{"index": i, "quantity": item.Quantity})
		}
		item.Disponible = types.NormalizeFlag(item.Disponible)
		out = append(out, item)
	}
	return out, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
