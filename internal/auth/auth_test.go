package auth

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/campusdesk/complaint-service/internal/domain"
	"github.com/campusdesk/complaint-service/internal/repository"
	apperrors "github.com/campusdesk/complaint-service/pkg/util/errorutil"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)
	token, exp, err := tm.GenerateToken(&domain.User{ID: "staff-1", Role: domain.RoleStaff})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "staff-1", claims.UserID)
	assert.Equal(t, domain.RoleStaff, claims.Role)

	_, err = NewTokenManager("other", time.Hour).ParseToken(token)
	assert.Error(t, err)
}

func TestExpiredTokenRejected(t *testing.T) {
	tm := NewTokenManager("secret", time.Minute)
	tm.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, _, err := tm.GenerateToken(&domain.User{ID: "u", Role: domain.RoleStudent})
	require.NoError(t, err)

	_, err = NewTokenManager("secret", time.Minute).ParseToken(token)
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("password", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NoError(t, ComparePassword(hash, "password"))
	assert.Error(t, ComparePassword(hash, "wrong"))
}

func newApp(t *testing.T) (*fiber.App, *TokenManager) {
	t.Helper()
	users := repository.NewMemoryUserRepository()
	ctx := context.Background()
	require.NoError(t, users.Create(ctx, &domain.User{ID: "admin-1", Role: domain.RoleAdmin}))
	require.NoError(t, users.Create(ctx, &domain.User{ID: "student-1", Role: domain.RoleStudent}))

	tm := NewTokenManager("secret", time.Hour)
	mw := NewAuthMiddleware(tm, users)
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			de := apperrors.ToDomainError(err)
			return c.Status(de.HTTPStatus).SendString(de.Code)
		},
	})
	app.Get("/ops", mw.Handle, RequireOperator(), func(c *fiber.Ctx) error {
		p, _ := PrincipalFromContext(c)
		return c.SendString(string(p.Role()))
	})
	return app, tm
}

func bearer(t *testing.T, tm *TokenManager, id string, role domain.Role) string {
	t.Helper()
	token, _, err := tm.GenerateToken(&domain.User{ID: id, Role: role})
	require.NoError(t, err)
	return "Bearer " + token
}

func TestMiddlewareAndRoles(t *testing.T) {
	app, tm := newApp(t)

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", fiber.StatusUnauthorized},
		{"wrong scheme", "Basic abc", fiber.StatusUnauthorized},
		{"garbage token", "Bearer abc", fiber.StatusUnauthorized},
		{"unknown user", bearer(t, tm, "ghost", domain.RoleAdmin), fiber.StatusUnauthorized},
		{"student forbidden", bearer(t, tm, "student-1", domain.RoleStudent), fiber.StatusForbidden},
		{"admin allowed", bearer(t, tm, "admin-1", domain.RoleAdmin), fiber.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/ops", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tc.status, resp.StatusCode)
		})
	}
}
