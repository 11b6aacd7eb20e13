package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/electrosoundpack/storefront-backend/pkg/security"
	"github.com/electrosoundpack/storefront-backend/pkg/types"
)

const tempPasswordLength = 16

// AdminBootstrap describes the account cmd/admin should create or promote.
type AdminBootstrap struct {
	Email    string
	Nombre   string
	Telefono string
	// Password is generated when empty.
	Password string
}

// BootstrapResult reports what EnsureAdmin did. TempPassword is set only when one was generated.
type BootstrapResult struct {
	User         *UserDTO
	Created      bool
	TempPassword string
}

// EnsureAdmin promotes an existing account to admin or creates a new admin account.
// Promoting never touches the existing password.
func EnsureAdmin(ctx context.Context, repo *Repository, hasher passwordHasher, in AdminBootstrap) (*BootstrapResult, error) {
	email := NormalizeEmail(in.Email)
	if !strings.Contains(email, "@") {
		return nil, fmt.Errorf("a valid email is required")
	}

	existing, err := repo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if !existing.IsAdmin.Bool() {
			if err := repo.UpdateByEmail(ctx, email, map[string]any{
				"is_admin":   types.FlagOn,
				"updated_at": time.Now().UTC(),
			}); err != nil {
				return nil, fmt.Errorf("promote %s: %w", email, err)
			}
			existing.IsAdmin = types.FlagOn
		}
		return &BootstrapResult{User: FromModel(existing)}, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("lookup %s: %w", email, err)
	}

	result := &BootstrapResult{Created: true}
	password := in.Password
	if password == "" {
		password, err = security.GenerateTempPassword(tempPasswordLength)
		if err != nil {
			return nil, fmt.Errorf("generate password: %w", err)
		}
		result.TempPassword = password
	}
	hash, err := hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	nombre := strings.TrimSpace(in.Nombre)
	if nombre == "" {
		nombre = "Administrador"
	}
	user, err := repo.Create(ctx, CreateUserDTO{
		Nombre:       nombre,
		Email:        email,
		PasswordHash: hash,
		Telefono:     strings.TrimSpace(in.Telefono),
		IsAdmin:      types.FlagOn,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", email, err)
	}
	result.User = FromModel(user)
	return result, nil
}
