package auth

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/threadlinehq/threadline-backend/internal/customers"
	pkgauth "github.com/threadlinehq/threadline-backend/pkg/auth"
	"github.com/threadlinehq/threadline-backend/pkg/config"
	"github.com/threadlinehq/threadline-backend/pkg/db/models"
	"github.com/threadlinehq/threadline-backend/pkg/enums"
	pkgerrors "github.com/threadlinehq/threadline-backend/pkg/errors"
	"github.com/threadlinehq/threadline-backend/pkg/logger"
	"github.com/threadlinehq/threadline-backend/pkg/security"
	"gorm.io/gorm"
)

// RegisterInput carries a new account signup.
type RegisterInput struct {
	Email    string
	Name     string
	Password string
}

// LoginInput carries a login attempt.
type LoginInput struct {
	Email    string
	Password string
}

// Session is the result of a successful register or login.
type Session struct {
	Customer *models.Customer
	Token    string
	TTL      time.Duration
}

// Service owns account creation and session minting.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*Session, error)
	Login(ctx context.Context, input LoginInput) (*Session, error)
}

type service struct {
	repo   customers.Repository
	jwtCfg config.JWTConfig
	pwCfg  config.PasswordConfig
	logg   *logger.Logger
	now    func() time.Time
}

// NewService builds the auth service.
func NewService(repo customers.Repository, jwtCfg config.JWTConfig, pwCfg config.PasswordConfig, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("customers repository required")
	}
	if jwtCfg.Secret == "" {
		return nil, fmt.Errorf("jwt secret required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:   repo,
		jwtCfg: jwtCfg,
		pwCfg:  pwCfg,
		logg:   logg,
		now:    time.Now,
	}, nil
}

func (s *service) Register(ctx context.Context, input RegisterInput) (*Session, error) {
	if input.Email == "" || input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email and name are required")
	}
	if len(input.Password) < 8 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 8 characters")
	}

	if _, err := s.repo.FindByEmail(ctx, input.Email); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
	} else if !stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "checking email")
	}

	hash, err := security.HashPassword(input.Password, s.pwCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hashing password")
	}

	customer, err := s.repo.Create(ctx, &models.Customer{
		Email:        input.Email,
		Name:         input.Name,
		PasswordHash: hash,
		Role:         enums.CustomerRoleShopper,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating customer")
	}

	return s.mintSession(ctx, customer)
}

func (s *service) Login(ctx context.Context, input LoginInput) (*Session, error) {
	if input.Email == "" || input.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email and password are required")
	}

	customer, err := s.repo.FindByEmail(ctx, input.Email)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading customer")
	}

	ok, err := security.VerifyPassword(input.Password, customer.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verifying password")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	return s.mintSession(ctx, customer)
}

func (s *service) mintSession(ctx context.Context, customer *models.Customer) (*Session, error) {
	token, err := pkgauth.MintSessionToken(s.jwtCfg, s.now(), pkgauth.SessionTokenPayload{
		CustomerID: customer.ID,
		Role:       customer.Role,
		JTI:        uuid.NewString(),
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "minting session token")
	}
	s.logg.Info(s.logg.WithCustomerID(ctx, customer.ID.String()), "session issued")
	return &Session{
		Customer: customer,
		Token:    token,
		TTL:      s.jwtCfg.SessionTTL(),
	}, nil
}
