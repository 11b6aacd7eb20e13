package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	pkgerrors "github.com/electrosoundpack/storefront-backend/pkg/errors"
	"github.com/electrosoundpack/storefront-backend/pkg/types"
)

// Service manages accounts on behalf of admins and the profile endpoint.
type Service interface {
	List(ctx context.Context, q ListQuery) (*Page, error)
	Get(ctx context.Context, email string) (*UserDTO, error)
	Update(ctx context.Context, email string, input UpdateInput) (*UserDTO, error)
	Delete(ctx context.Context, email string) error
}

type passwordHasher interface {
	Hash(password string) (string, error)
}

type service struct {
	repo      *Repository
	hasher    passwordHasher
	minLength int
}

// NewService constructs the user management service.
func NewService(repo *Repository, hasher passwordHasher, minPasswordLength int) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if hasher == nil {
		return nil, fmt.Errorf("password hasher required")
	}
	if minPasswordLength <= 0 {
		minPasswordLength = 8
	}
	return &service{repo: repo, hasher: hasher, minLength: minPasswordLength}, nil
}

func (s *service) List(ctx context.Context, q ListQuery) (*Page, error) {
	rows, total, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: list users")
	}
	page := &Page{Users: make([]UserDTO, 0, len(rows)), Total: total}
	for i := range rows {
		page.Users = append(page.Users, *FromModel(&rows[i]))
	}
	return page, nil
}

func (s *service) Get(ctx context.Context, email string) (*UserDTO, error) {
	user, err := s.repo.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return nil, mapLookupError(err, "db: find user")
	}
	return FromModel(user), nil
}

func (s *service) Update(ctx context.Context, email string, input UpdateInput) (*UserDTO, error) {
	if input.isEmpty() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no updatable fields provided")
	}
	email = NormalizeEmail(email)

	changes := map[string]any{}
	if input.Nombre != nil {
		nombre := strings.TrimSpace(*input.Nombre)
		if nombre == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "nombre cannot be empty")
		}
		changes["nombre"] = nombre
	}
	if input.Telefono != nil {
		changes["telefono"] = strings.TrimSpace(*input.Telefono)
	}
	if input.IsAdmin != nil {
		changes["is_admin"] = types.NormalizeFlag(*input.IsAdmin)
	}
	if input.Password != nil {
		hash, err := s.hashPassword(*input.Password)
		if err != nil {
			return nil, err
		}
		changes["password_hash"] = hash
	}

	if err := s.repo.UpdateByEmail(ctx, email, changes); err != nil {
		return nil, mapLookupError(err, "db: update user")
	}
	return s.Get(ctx, email)
}

func (s *service) Delete(ctx context.Context, email string) error {
	if err := s.repo.DeleteByEmail(ctx, NormalizeEmail(email)); err != nil {
		return mapLookupError(err, "db: delete user")
	}
	return nil
}

func (s *service) hashPassword(password string) (string, error) {
	if len(password) < s.minLength {
		return "", pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("password must be at least %d characters", s.minLength))
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}
	return hash, nil
}

// NormalizeEmail lowercases and trims an address for lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func mapLookupError(err error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, msg)
}

