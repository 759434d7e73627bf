package router

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sensoryplay/portal-backend/internal/config"
	"github.com/sensoryplay/portal-backend/internal/handler"
	"github.com/sensoryplay/portal-backend/internal/model"
	"github.com/sensoryplay/portal-backend/internal/service"
	"github.com/sensoryplay/portal-backend/internal/validator"
	"github.com/stretchr/testify/assert"
)

type roleAuth struct{ role model.Role }

func (a roleAuth) ValidateToken(string) (*service.Claims, error) {
	return &service.Claims{UserID: uuid.New(), Role: a.role}, nil
}

func (roleAuth) CheckSession(context.Context, *service.Claims) error { return nil }

func testRouter(t *testing.T, role model.Role) http.Handler {
	t.Helper()
	validator.Setup()
	cfg := &config.Config{GinMode: "test", UploadDir: t.TempDir(), RateLimitPerMinute: 2}
	log := zerolog.Nop()
	handlers := &Handlers{
		Auth:       handler.NewAuthHandler(nil, log),
		Location:   handler.NewLocationHandler(nil, log),
		Class:      handler.NewClassHandler(nil, log),
		Booking:    handler.NewBookingHandler(nil, log),
		Contact:    handler.NewContactHandler(nil, log),
		Newsletter: handler.NewNewsletterHandler(nil, log),
		Dashboard:  handler.NewDashboardHandler(nil, log),
		AdminUser:  handler.NewAdminUserHandler(nil),
		Setting:    handler.NewSettingHandler(nil, log),
		Media:      handler.NewMediaHandler(nil, log),
		WS:         handler.NewWSHandler(nil, nil, log, nil),
	}
	r, stop := SetupRouter(roleAuth{role: role}, handlers, cfg, log)
	t.Cleanup(stop)
	return r
}

func send(r http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	w := send(testRouter(t, model.RoleParent), http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	r := testRouter(t, model.RoleParent)

	w := send(r, http.MethodGet, "/api/v1/admin/dashboard", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = send(r, http.MethodGet, "/api/v1/admin/dashboard", "parent-token", "")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "ADMIN_ACCESS_ONLY")
}

func TestBookingRoutesRequireToken(t *testing.T) {
	w := send(testRouter(t, model.RoleParent), http.MethodGet, "/api/v1/bookings", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "TOKEN_REQUIRED")
}

func TestAuthRoutesAreRateLimited(t *testing.T) {
	r := testRouter(t, model.RoleParent)

	for i := 0; i < 2; i++ {
		w := send(r, http.MethodPost, "/api/v1/auth/signin", "", `{}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	}
	w := send(r, http.MethodPost, "/api/v1/auth/signin", "", `{}`)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}
