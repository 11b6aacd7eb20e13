package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/electrosoundpack/storefront-backend/internal/users"
	pkgAuth "github.com/electrosoundpack/storefront-backend/pkg/auth"
	"github.com/electrosoundpack/storefront-backend/pkg/config"
	"github.com/electrosoundpack/storefront-backend/pkg/db"
	"github.com/electrosoundpack/storefront-backend/pkg/db/models"
	pkgerrors "github.com/electrosoundpack/storefront-backend/pkg/errors"
	"github.com/electrosoundpack/storefront-backend/pkg/types"
)

const invalidCredentialsMessage = "invalid credentials"

// Service defines the behavior needed by the auth controller.
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*users.UserDTO, error)
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	Logout(ctx context.Context, accessID string) error
	Profile(ctx context.Context, email string) (*users.UserDTO, error)
	UpdateProfile(ctx context.Context, email string, req ProfileUpdateRequest) (*users.UserDTO, error)
}

type userRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error)
}

type accountUpdater interface {
	Update(ctx context.Context, email string, input users.UpdateInput) (*users.UserDTO, error)
}

type sessionManager interface {
	Open(ctx context.Context, accessID, email string) error
	Revoke(ctx context.Context, accessID string) error
}

type passwordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encoded string) (bool, error)
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	UserRepo          userRepository
	Accounts          accountUpdater
	SessionManager    sessionManager
	Hasher            passwordHasher
	JWTConfig         config.JWTConfig
	MinPasswordLength int
}

type service struct {
	users     userRepository
	accounts  accountUpdater
	session   sessionManager
	hasher    passwordHasher
	jwtCfg    config.JWTConfig
	minLength int
	now       func() time.Time
}

// NewService constructs the auth service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.UserRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if params.Accounts == nil {
		return nil, fmt.Errorf("account updater is required")
	}
	if params.SessionManager == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	if params.Hasher == nil {
		return nil, fmt.Errorf("password hasher is required")
	}
	minLength := params.MinPasswordLength
	if minLength <= 0 {
		minLength = 8
	}
	return &service{
		users:     params.UserRepo,
		accounts:  params.Accounts,
		session:   params.SessionManager,
		hasher:    params.Hasher,
		jwtCfg:    params.JWTConfig,
		minLength: minLength,
		now:       time.Now,
	}, nil
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (*users.UserDTO, error) {
	email := users.NormalizeEmail(req.Email)
	nombre := strings.TrimSpace(req.Nombre)
	if email == "" || nombre == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "nombre and email are required")
	}
	if len(req.Password) < s.minLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("password must be at least %d characters", s.minLength))
	}
	if req.Password != req.ConfirmPassword {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "passwords do not match")
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check user email")
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}
	user, err := s.users.Create(ctx, users.CreateUserDTO{
		Nombre:       nombre,
		Email:        email,
		PasswordHash: hash,
		Telefono:     strings.TrimSpace(req.Telefono),
		IsAdmin:      types.FlagOff,
	})
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
	}
	return users.FromModel(user), nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	user, err := s.authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	token, jti, err := pkgAuth.MintAccessToken(s.jwtCfg, s.now(), pkgAuth.AccessTokenPayload{
		UserID:  user.ID,
		Email:   user.Email,
		IsAdmin: types.NormalizeFlag(user.IsAdmin).Bool(),
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	if err := s.session.Open(ctx, jti, user.Email); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store session")
	}

	return &LoginResponse{
		Token:     token,
		ExpiresIn: int64(s.jwtCfg.TTL().Seconds()),
		User:      users.FromModel(user),
	}, nil
}

func (s *service) Logout(ctx context.Context, accessID string) error {
	if strings.TrimSpace(accessID) == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session")
	}
	if err := s.session.Revoke(ctx, accessID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session")
	}
	return nil
}

func (s *service) Profile(ctx context.Context, email string) (*users.UserDTO, error) {
	user, err := s.users.FindByEmail(ctx, users.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}
	return users.FromModel(user), nil
}

func (s *service) UpdateProfile(ctx context.Context, email string, req ProfileUpdateRequest) (*users.UserDTO, error) {
	return s.accounts.Update(ctx, email, users.UpdateInput{
		Nombre:   req.Nombre,
		Telefono: req.Telefono,
		Password: req.Password,
	})
}

func (s *service) authenticate(ctx context.Context, email, password string) (*models.User, error) {
	input := users.NormalizeEmail(email)
	if input == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	user, err := s.users.FindByEmail(ctx, input)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}

	valid, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !valid {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	return user, nil
}
