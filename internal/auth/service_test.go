package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bloomstack/bloomstack-backend/internal/shops"
	pkgauth "github.com/bloomstack/bloomstack-backend/pkg/auth"
	"github.com/bloomstack/bloomstack-backend/pkg/config"
	"github.com/bloomstack/bloomstack-backend/pkg/db/models"
	"github.com/bloomstack/bloomstack-backend/pkg/enums"
	pkgerrors "github.com/bloomstack/bloomstack-backend/pkg/errors"
	"github.com/bloomstack/bloomstack-backend/pkg/security"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:                 "test-secret-test-secret-test-secret",
		Issuer:                 "bloomstack-test",
		ExpirationMinutes:      30,
		RefreshTokenTTLMinutes: 60,
	}
}

func testPasswordConfig() config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:    8 * 1024,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
}

type fakeUserRepo struct {
	byEmail map[string]*models.User
	created *models.User
	touched bool
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byEmail: map[string]*models.User{}}
}

func (f *fakeUserRepo) WithTx(tx *gorm.DB) Repository { return f }
func (f *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	f.created = user
	f.byEmail[user.Email] = user
	return nil
}
func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user, ok := f.byEmail[email]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	return user, nil
}
func (f *fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
}
func (f *fakeUserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	_, ok := f.byEmail[email]
	return ok, nil
}
func (f *fakeUserRepo) TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	f.touched = true
	return nil
}

type fakeShopRepo struct {
	created *models.Shop
	byOwner map[uuid.UUID]*models.Shop
	taken   map[string]bool
}

func newFakeShopRepo() *fakeShopRepo {
	return &fakeShopRepo{byOwner: map[uuid.UUID]*models.Shop{}, taken: map[string]bool{}}
}

func (f *fakeShopRepo) WithTx(tx *gorm.DB) shops.Repository { return f }
func (f *fakeShopRepo) Create(ctx context.Context, shop *models.Shop) error {
	if shop.ID == uuid.Nil {
		shop.ID = uuid.New()
	}
	f.created = shop
	f.byOwner[shop.OwnerID] = shop
	f.taken[shop.Slug] = true
	return nil
}
func (f *fakeShopRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Shop, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shop not found")
}
func (f *fakeShopRepo) GetBySlug(ctx context.Context, slug string) (*models.Shop, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shop not found")
}
func (f *fakeShopRepo) GetByOwner(ctx context.Context, ownerID uuid.UUID) (*models.Shop, error) {
	shop, ok := f.byOwner[ownerID]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shop not found")
	}
	return shop, nil
}
func (f *fakeShopRepo) Update(ctx context.Context, shop *models.Shop) error {
	return nil
}
func (f *fakeShopRepo) SetPlan(ctx context.Context, shopID, planID uuid.UUID) error {
	return nil
}
func (f *fakeShopRepo) GetByTelegramChat(ctx context.Context, chatID int64) (*models.Shop, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shop not found")
}
func (f *fakeShopRepo) SetTelegramChat(ctx context.Context, shopID uuid.UUID, chatID *int64) error {
	return nil
}
func (f *fakeShopRepo) SetSuspended(ctx context.Context, shopID uuid.UUID, suspended bool) error {
	return nil
}
func (f *fakeShopRepo) List(ctx context.Context, limit, offset int) ([]models.Shop, int64, error) {
	return nil, 0, nil
}
func (f *fakeShopRepo) SlugExists(ctx context.Context, slug string) (bool, error) {
	return f.taken[slug], nil
}

type fakePlanRepo struct {
	free *models.Plan
}

func (f *fakePlanRepo) List(ctx context.Context) ([]models.Plan, error) { return nil, nil }
func (f *fakePlanRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Plan, error) {
	return f.free, nil
}
func (f *fakePlanRepo) GetBySlug(ctx context.Context, slug enums.PlanSlug) (*models.Plan, error) {
	return f.free, nil
}

type fakeSessions struct {
	generated []string
	revoked   []string
	rotateErr error
}

func (f *fakeSessions) Generate(ctx context.Context, accessID string) (string, error) {
	f.generated = append(f.generated, accessID)
	return "refresh-" + accessID, nil
}
func (f *fakeSessions) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	if f.rotateErr != nil {
		return "", "", f.rotateErr
	}
	return "new-access-id", "new-refresh-token", nil
}
func (f *fakeSessions) Revoke(ctx context.Context, accessID string) error {
	f.revoked = append(f.revoked, accessID)
	return nil
}

type fakeTx struct{}

func (fakeTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type authFixture struct {
	svc      Service
	users    *fakeUserRepo
	shopRepo *fakeShopRepo
	sessions *fakeSessions
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	users := newFakeUserRepo()
	shopRepo := newFakeShopRepo()
	sessions := &fakeSessions{}
	free := &models.Plan{ID: uuid.New(), Slug: enums.PlanSlugFree, Name: "Free"}

	svc, err := NewService(users, shopRepo, &fakePlanRepo{free: free}, sessions, fakeTx{}, testJWTConfig(), testPasswordConfig())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return &authFixture{svc: svc, users: users, shopRepo: shopRepo, sessions: sessions}
}

func TestRegisterCreatesUserAndShop(t *testing.T) {
	fx := newAuthFixture(t)

	sess, err := fx.svc.Register(context.Background(), RegisterInput{
		Email:     "Dana@Example.com",
		Password:  "correct horse battery",
		FirstName: "Dana",
		LastName:  "Bloom",
		ShopName:  "Rose Corner",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if fx.users.created == nil || fx.users.created.Email != "dana@example.com" {
		t.Fatalf("email must be normalized, got %+v", fx.users.created)
	}
	if fx.users.created.Role != enums.UserRoleOwner {
		t.Fatalf("new accounts are owners, got %s", fx.users.created.Role)
	}
	if fx.shopRepo.created == nil || fx.shopRepo.created.Slug != "rose-corner" {
		t.Fatalf("shop slug not derived: %+v", fx.shopRepo.created)
	}
	if fx.shopRepo.created.OwnerID != fx.users.created.ID {
		t.Fatal("shop must belong to the new user")
	}
	if sess.Tokens.AccessToken == "" || sess.Tokens.RefreshToken == "" {
		t.Fatal("register must issue a token pair")
	}

	claims, err := pkgauth.ParseAccessToken(testJWTConfig(), sess.Tokens.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.ShopID != fx.shopRepo.created.ID {
		t.Fatal("access token must carry the shop id")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	fx := newAuthFixture(t)
	fx.users.byEmail["dana@example.com"] = &models.User{ID: uuid.New(), Email: "dana@example.com"}

	_, err := fx.svc.Register(context.Background(), RegisterInput{
		Email:     "dana@example.com",
		Password:  "correct horse battery",
		FirstName: "Dana",
		LastName:  "Bloom",
		ShopName:  "Rose Corner",
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestRegisterSlugCollisionGetsSuffix(t *testing.T) {
	fx := newAuthFixture(t)
	fx.shopRepo.taken["rose-corner"] = true

	_, err := fx.svc.Register(context.Background(), RegisterInput{
		Email:     "dana@example.com",
		Password:  "correct horse battery",
		FirstName: "Dana",
		LastName:  "Bloom",
		ShopName:  "Rose Corner",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if fx.shopRepo.created.Slug != "rose-corner-2" {
		t.Fatalf("expected suffixed slug, got %s", fx.shopRepo.created.Slug)
	}
}

func TestLogin(t *testing.T) {
	fx := newAuthFixture(t)

	hash, err := security.HashPassword("correct horse battery", testPasswordConfig())
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	user := &models.User{ID: uuid.New(), Email: "dana@example.com", PasswordHash: hash, Role: enums.UserRoleOwner}
	fx.users.byEmail[user.Email] = user
	fx.shopRepo.byOwner[user.ID] = &models.Shop{ID: uuid.New(), OwnerID: user.ID, Slug: "rose-corner"}

	sess, err := fx.svc.Login(context.Background(), LoginInput{Email: "DANA@example.com", Password: "correct horse battery"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if sess.Tokens.AccessToken == "" {
		t.Fatal("login must mint an access token")
	}
	if !fx.users.touched {
		t.Fatal("login must stamp last_login_at")
	}

	_, err = fx.svc.Login(context.Background(), LoginInput{Email: "dana@example.com", Password: "wrong"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("wrong password must be unauthorized, got %v", err)
	}
	_, err = fx.svc.Login(context.Background(), LoginInput{Email: "nobody@example.com", Password: "whatever"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("unknown email must be unauthorized, got %v", err)
	}
}

func TestRefreshRotatesPair(t *testing.T) {
	fx := newAuthFixture(t)

	cfg := testJWTConfig()
	access, err := pkgauth.MintAccessToken(cfg, time.Now().UTC(), pkgauth.AccessTokenPayload{
		UserID: uuid.New(),
		ShopID: uuid.New(),
		Role:   enums.UserRoleOwner,
		JTI:    "old-access-id",
	})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	pair, err := fx.svc.Refresh(context.Background(), access, "some-refresh-token")
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if pair.RefreshToken != "new-refresh-token" {
		t.Fatalf("rotated refresh token not returned: %s", pair.RefreshToken)
	}
	claims, err := pkgauth.ParseAccessToken(cfg, pair.AccessToken)
	if err != nil {
		t.Fatalf("parse rotated token: %v", err)
	}
	if claims.ID != "new-access-id" {
		t.Fatalf("new access token must carry the rotated jti, got %s", claims.ID)
	}
}

func TestRefreshRejectsForgedToken(t *testing.T) {
	fx := newAuthFixture(t)

	_, err := fx.svc.Refresh(context.Background(), "not-a-jwt", "refresh")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	fx := newAuthFixture(t)

	if err := fx.svc.Logout(context.Background(), "access-id"); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if len(fx.sessions.revoked) != 1 || fx.sessions.revoked[0] != "access-id" {
		t.Fatalf("session not revoked: %+v", fx.sessions.revoked)
	}
}
