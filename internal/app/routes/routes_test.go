package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/campusdesk/internal/app/models"
	"github.com/yigit/campusdesk/internal/app/models/dto"
	"github.com/yigit/campusdesk/internal/middleware"
	"github.com/yigit/campusdesk/internal/pkg/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type unverifiedGuard struct {
	signedOut []int64
}

func (g *unverifiedGuard) IsVerified(context.Context, int64, models.Role) (bool, error) {
	return false, nil
}

func (g *unverifiedGuard) SignOut(_ context.Context, claims *auth.Claims) error {
	g.signedOut = append(g.signedOut, claims.UserID)
	return nil
}

func TestNotificationRoutesRequireVerifiedProfile(t *testing.T) {
	jwt := auth.NewJWTService(auth.JWTConfig{
		SecretKey:       "routes-secret",
		AccessTokenExp:  time.Hour,
		RefreshTokenExp: 24 * time.Hour,
		TokenIssuer:     "campusdesk.test",
	})
	guard := &unverifiedGuard{}

	router := gin.New()
	SetupRouter(router, Controllers{}, middleware.NewAuthMiddleware(jwt, nil, guard, zerolog.Nop()))

	tests := []struct {
		name       string
		method     string
		path       string
		subject    auth.Subject
		redirectTo string
	}{
		{
			name:       "student socket",
			method:     http.MethodGet,
			path:       "/api/v1/notifications/ws",
			subject:    auth.Subject{UserID: 1, Email: "s@campus.edu", Role: "student", Roles: []string{"student"}, EnrollmentNumber: "21CS1042"},
			redirectTo: "/auth/student",
		},
		{
			name:       "student list",
			method:     http.MethodGet,
			path:       "/api/v1/notifications",
			subject:    auth.Subject{UserID: 2, Email: "s2@campus.edu", Role: "student", Roles: []string{"student"}, EnrollmentNumber: "21CS1043"},
			redirectTo: "/auth/student",
		},
		{
			name:       "faculty clear",
			method:     http.MethodPost,
			path:       "/api/v1/notifications/clear",
			subject:    auth.Subject{UserID: 3, Email: "f@campus.edu", Role: "faculty", Roles: []string{"faculty"}},
			redirectTo: "/auth/faculty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pair, err := jwt.GenerateTokenPair(tt.subject)
			require.NoError(t, err)

			req := httptest.NewRequest(tt.method, tt.path, nil)
			req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			require.Equal(t, http.StatusForbidden, w.Code)
			var resp dto.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, dto.ErrorCodeNotVerified, resp.Error.Code)
			assert.Equal(t, tt.redirectTo, resp.RedirectTo)
			assert.Contains(t, guard.signedOut, tt.subject.UserID)
		})
	}
}
