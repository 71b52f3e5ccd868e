package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"autostock/internal/model"
	"autostock/internal/store"
	"autostock/pkg/jwtutil"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type authFixture struct {
	db         *gorm.DB
	users      *store.UserStore
	businesses *store.BusinessStore
	jwt        *jwtutil.JWTUtil
	echo       *echo.Echo
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&model.Business{}, &model.User{}))

	return &authFixture{
		db:         db,
		users:      store.NewUserStore(db),
		businesses: store.NewBusinessStore(db),
		jwt:        jwtutil.NewJWTUtil(&jwtutil.JWTConfig{SigningKey: "test-signing-key", ExpirationHours: 8}),
		echo:       echo.New(),
	}
}

func (f *authFixture) addBusiness(t *testing.T, name, status string) *model.Business {
	t.Helper()
	business := model.Business{Name: name, Owner: "Owner", SubscriptionStatus: status}
	require.NoError(t, f.db.Create(&business).Error)
	return &business
}

func (f *authFixture) addUser(t *testing.T, username, role string, businessID *uint) *model.User {
	t.Helper()
	hash, err := store.HashPassword("irrelevant")
	require.NoError(t, err)
	user := model.User{
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		BusinessID:   businessID,
		Status:       model.UserActive,
	}
	require.NoError(t, f.db.Create(&user).Error)
	return &user
}

func (f *authFixture) token(t *testing.T, user *model.User) string {
	t.Helper()
	token, err := f.jwt.Issue(user.Username, user.ID, user.Role, user.BusinessID)
	require.NoError(t, err)
	return token
}

// do runs a request through the given middleware chain ending in a handler
// that reports the resolved user.
func (f *authFixture) do(req *http.Request, mw ...echo.MiddlewareFunc) (*httptest.ResponseRecorder, *model.User) {
	rec := httptest.NewRecorder()
	c := f.echo.NewContext(req, rec)

	var seen *model.User
	handler := func(c echo.Context) error {
		seen = CurrentUser(c)
		return c.NoContent(http.StatusOK)
	}
	for i := len(mw) - 1; i >= 0; i-- {
		handler = mw[i](handler)
	}
	_ = handler(c)
	return rec, seen
}

func TestExtractToken(t *testing.T) {
	e := echo.New()

	t.Run("authorization header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer abc123")
		c := e.NewContext(req, httptest.NewRecorder())

		token, ok := ExtractToken(c)
		assert.True(t, ok)
		assert.Equal(t, "abc123", token)
	})

	t.Run("cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "abc123"})
		c := e.NewContext(req, httptest.NewRecorder())

		token, ok := ExtractToken(c)
		assert.True(t, ok)
		assert.Equal(t, "abc123", token)
	})

	t.Run("header wins over cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer from-header")
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "from-cookie"})
		c := e.NewContext(req, httptest.NewRecorder())

		token, ok := ExtractToken(c)
		assert.True(t, ok)
		assert.Equal(t, "from-header", token)
	})

	t.Run("malformed header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Basic abc123")
		c := e.NewContext(req, httptest.NewRecorder())

		_, ok := ExtractToken(c)
		assert.False(t, ok)
	})

	t.Run("nothing", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		c := e.NewContext(req, httptest.NewRecorder())

		_, ok := ExtractToken(c)
		assert.False(t, ok)
	})
}

func TestAuthenticate(t *testing.T) {
	f := newAuthFixture(t)
	business := f.addBusiness(t, "Llantas Norte", model.SubscriptionActive)
	user := f.addUser(t, "maria", model.RoleSeller, &business.ID)
	auth := Authenticate(f.users, f.jwt)

	t.Run("header carrier", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+f.token(t, user))

		rec, seen := f.do(req, auth)
		assert.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, seen)
		assert.Equal(t, user.ID, seen.ID)
	})

	t.Run("cookie carrier", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: f.token(t, user)})

		rec, seen := f.do(req, auth)
		assert.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, seen)
		assert.Equal(t, user.ID, seen.ID)
	})

	t.Run("missing token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec, _ := f.do(req, auth)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("invalid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer garbage")
		rec, _ := f.do(req, auth)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("stale claims are overridden by the database row", func(t *testing.T) {
		// Token minted while the user belonged to the first business.
		token := f.token(t, user)

		other := f.addBusiness(t, "Llantas Sur", model.SubscriptionActive)
		require.NoError(t, f.db.Model(user).Update("business_id", other.ID).Error)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec, seen := f.do(req, auth)

		assert.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, seen)
		require.NotNil(t, seen.BusinessID)
		assert.Equal(t, other.ID, *seen.BusinessID)
	})

	t.Run("deactivated user with a live token", func(t *testing.T) {
		token := f.token(t, user)
		require.NoError(t, f.db.Model(user).Update("status", model.UserInactive).Error)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec, _ := f.do(req, auth)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("database failure is not an auth failure", func(t *testing.T) {
		fx := newAuthFixture(t)
		b := fx.addBusiness(t, "Llantas Norte", model.SubscriptionActive)
		u := fx.addUser(t, "carlos", model.RoleAdmin, &b.ID)
		token := fx.token(t, u)

		// A broken schema stands in for any infrastructure fault during
		// re-resolution; the holder of a valid token gets a 500, not a 401.
		require.NoError(t, fx.db.Exec("DROP TABLE users").Error)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec, _ := fx.do(req, Authenticate(fx.users, fx.jwt))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("deleted user with a live token", func(t *testing.T) {
		ghost := f.addUser(t, "ghost", model.RoleSeller, &business.ID)
		token := f.token(t, ghost)
		require.NoError(t, f.db.Unscoped().Delete(ghost).Error)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec, _ := f.do(req, auth)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRequireRoles(t *testing.T) {
	f := newAuthFixture(t)
	auth := Authenticate(f.users, f.jwt)

	active := f.addBusiness(t, "Llantas Norte", model.SubscriptionActive)
	suspended := f.addBusiness(t, "Llantas Sur", model.SubscriptionSuspended)

	admin := f.addUser(t, "carlos", model.RoleAdmin, &active.ID)
	seller := f.addUser(t, "maria", model.RoleSeller, &active.ID)
	blockedAdmin := f.addUser(t, "ana", model.RoleAdmin, &suspended.ID)
	superadmin := f.addUser(t, "root", model.RoleSuperAdmin, nil)

	request := func(user *model.User) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+f.token(t, user))
		return req
	}

	t.Run("allowed role on active subscription", func(t *testing.T) {
		rec, _ := f.do(request(admin), auth, RequireRoles(f.businesses, model.RoleAdmin))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("role mismatch", func(t *testing.T) {
		rec, _ := f.do(request(seller), auth, RequireRoles(f.businesses, model.RoleAdmin))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("suspended subscription blocks admins", func(t *testing.T) {
		rec, _ := f.do(request(blockedAdmin), auth, RequireRoles(f.businesses, model.RoleAdmin))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("suspension takes effect on the next request", func(t *testing.T) {
		req := request(seller)
		require.NoError(t, f.db.Model(active).Update("subscription_status", model.SubscriptionExpired).Error)
		defer func() {
			require.NoError(t, f.db.Model(active).Update("subscription_status", model.SubscriptionActive).Error)
		}()

		rec, _ := f.do(req, auth, RequireRoles(f.businesses, model.RoleSeller))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("superadmin bypasses subscription checks", func(t *testing.T) {
		rec, _ := f.do(request(superadmin), auth, RequireRoles(f.businesses, model.RoleSuperAdmin))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("superadmin role still required where asked", func(t *testing.T) {
		rec, _ := f.do(request(admin), auth, RequireRoles(f.businesses, model.RoleSuperAdmin))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("unauthenticated request", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec, _ := f.do(req, RequireRoles(f.businesses, model.RoleAdmin))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
