package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bloomstack/bloomstack-backend/internal/plans"
	"github.com/bloomstack/bloomstack-backend/internal/shops"
	pkgauth "github.com/bloomstack/bloomstack-backend/pkg/auth"
	"github.com/bloomstack/bloomstack-backend/pkg/auth/session"
	"github.com/bloomstack/bloomstack-backend/pkg/config"
	"github.com/bloomstack/bloomstack-backend/pkg/db/models"
	"github.com/bloomstack/bloomstack-backend/pkg/enums"
	pkgerrors "github.com/bloomstack/bloomstack-backend/pkg/errors"
	"github.com/bloomstack/bloomstack-backend/pkg/security"
)

const slugAttempts = 50

// RegisterInput is the signup payload. Every new account gets a shop on the
// free plan in the same transaction.
type RegisterInput struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8,max=128"`
	FirstName string `json:"first_name" validate:"required,max=80"`
	LastName  string `json:"last_name" validate:"required,max=80"`
	ShopName  string `json:"shop_name" validate:"required,min=2,max=120"`
}

// LoginInput is the credential payload.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// TokenPair is an access/refresh token pair.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Session is the authenticated result returned to the client.
type Session struct {
	User   *models.User `json:"user"`
	Shop   *models.Shop `json:"shop"`
	Tokens TokenPair    `json:"tokens"`
}

// SessionManager is the refresh-session surface the service needs,
// satisfied by session.Manager.
type SessionManager interface {
	Generate(ctx context.Context, accessID string) (string, error)
	Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error)
	Revoke(ctx context.Context, accessID string) error
}

// TxRunner runs a function inside a database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service handles account lifecycle and token issuance.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*Session, error)
	Login(ctx context.Context, input LoginInput) (*Session, error)
	Refresh(ctx context.Context, accessToken, refreshToken string) (*TokenPair, error)
	Logout(ctx context.Context, accessID string) error
}

type service struct {
	users    Repository
	shops    shops.Repository
	plans    plans.Repository
	sessions SessionManager
	tx       TxRunner
	jwtCfg   config.JWTConfig
	pwCfg    config.PasswordConfig
	now      func() time.Time
}

// NewService wires auth dependencies.
func NewService(
	users Repository,
	shopRepo shops.Repository,
	planRepo plans.Repository,
	sessions SessionManager,
	tx TxRunner,
	jwtCfg config.JWTConfig,
	pwCfg config.PasswordConfig,
) (Service, error) {
	if users == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "users repository required")
	}
	if shopRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "shops repository required")
	}
	if planRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "plans repository required")
	}
	if sessions == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "session manager required")
	}
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction runner required")
	}
	return &service{
		users:    users,
		shops:    shopRepo,
		plans:    planRepo,
		sessions: sessions,
		tx:       tx,
		jwtCfg:   jwtCfg,
		pwCfg:    pwCfg,
		now:      time.Now,
	}, nil
}

// Register creates the owner account and its shop on the free plan in one
// transaction, then issues a token pair.
func (s *service) Register(ctx context.Context, input RegisterInput) (*Session, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email required")
	}

	exists, err := s.users.EmailExists(ctx, email)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check email")
	}
	if exists {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
	}

	free, err := s.plans.GetBySlug(ctx, enums.PlanSlugFree)
	if err != nil {
		return nil, err
	}
	slug, err := s.availableSlug(ctx, input.ShopName)
	if err != nil {
		return nil, err
	}
	hash, err := security.HashPassword(input.Password, s.pwCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Role:         enums.UserRoleOwner,
	}
	shop := &models.Shop{
		Slug:   slug,
		PlanID: free.ID,
		Name:   input.ShopName,
	}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.users.WithTx(tx).Create(ctx, user); err != nil {
			return err
		}
		shop.OwnerID = user.ID
		return s.shops.WithTx(tx).Create(ctx, shop)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "register account")
	}

	tokens, err := s.issueTokens(ctx, user, shop.ID)
	if err != nil {
		return nil, err
	}
	return &Session{User: user, Shop: shop, Tokens: *tokens}, nil
}

// Login verifies the credentials and issues a fresh token pair. Bad email
// and bad password are indistinguishable to the caller.
func (s *service) Login(ctx context.Context, input LoginInput) (*Session, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
		}
		return nil, err
	}
	ok, err := security.VerifyPassword(input.Password, user.PasswordHash)
	if err != nil || !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	shop, err := s.shops.GetByOwner(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	if err := s.users.TouchLastLogin(ctx, user.ID, now); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "touch last login")
	}
	user.LastLoginAt = &now

	tokens, err := s.issueTokens(ctx, user, shop.ID)
	if err != nil {
		return nil, err
	}
	return &Session{User: user, Shop: shop, Tokens: *tokens}, nil
}

// Refresh rotates the refresh token and mints a new access token. The old
// access token may already be expired; its signature still has to verify.
func (s *service) Refresh(ctx context.Context, accessToken, refreshToken string) (*TokenPair, error) {
	claims, err := pkgauth.ParseAccessTokenAllowExpired(s.jwtCfg, accessToken)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid access token")
	}

	newAccessID, newRefresh, err := s.sessions.Rotate(ctx, claims.ID, refreshToken)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid refresh token")
	}

	access, err := pkgauth.MintAccessToken(s.jwtCfg, s.now().UTC(), pkgauth.AccessTokenPayload{
		UserID: claims.UserID,
		ShopID: claims.ShopID,
		Role:   claims.Role,
		JTI:    newAccessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}
	return &TokenPair{AccessToken: access, RefreshToken: newRefresh}, nil
}

func (s *service) Logout(ctx context.Context, accessID string) error {
	if strings.TrimSpace(accessID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "access id required")
	}
	if err := s.sessions.Revoke(ctx, accessID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session")
	}
	return nil
}

func (s *service) issueTokens(ctx context.Context, user *models.User, shopID uuid.UUID) (*TokenPair, error) {
	accessID := session.NewAccessID()
	access, err := pkgauth.MintAccessToken(s.jwtCfg, s.now().UTC(), pkgauth.AccessTokenPayload{
		UserID: user.ID,
		ShopID: shopID,
		Role:   user.Role,
		JTI:    accessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}
	refresh, err := s.sessions.Generate(ctx, accessID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store refresh token")
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// availableSlug derives a storefront slug from the shop name, suffixing a
// counter on collision.
func (s *service) availableSlug(ctx context.Context, name string) (string, error) {
	base := shops.Slugify(name)
	if base == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "shop name produces an empty slug")
	}

	candidate := base
	for attempt := 2; attempt <= slugAttempts; attempt++ {
		taken, err := s.shops.SlugExists(ctx, candidate)
		if err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check slug")
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, attempt)
	}
	return "", pkgerrors.New(pkgerrors.CodeConflict, "could not find a free shop slug")
}
