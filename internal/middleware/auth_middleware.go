package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yigit/campusdesk/internal/app/models"
	"github.com/yigit/campusdesk/internal/app/models/dto"
	"github.com/yigit/campusdesk/internal/app/services"
	"github.com/yigit/campusdesk/internal/pkg/apperrors"
	"github.com/yigit/campusdesk/internal/pkg/auth"
)

// Context keys set by JWTAuth
const (
	ContextUserID           = "userID"
	ContextEmail            = "email"
	ContextRoleType         = "roleType"
	ContextRoles            = "roles"
	ContextEnrollmentNumber = "enrollmentNumber"
	ContextClaims           = "claims"
)

// SessionGuard is the part of the auth service the verify gate needs
type SessionGuard interface {
	IsVerified(ctx context.Context, userID int64, role models.Role) (bool, error)
	SignOut(ctx context.Context, claims *auth.Claims) error
}

// AuthMiddleware for authentication and authorization
type AuthMiddleware struct {
	jwtService *auth.JWTService
	denylist   auth.Denylist
	guard      SessionGuard
	logger     zerolog.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(jwtService *auth.JWTService, denylist auth.Denylist, guard SessionGuard, logger zerolog.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
		denylist:   denylist,
		guard:      guard,
		logger:     logger,
	}
}

// JWTAuth validates the bearer token. Browsers cannot set headers on a WebSocket
// handshake, so a "token" query parameter is accepted as well.
func (m *AuthMiddleware) JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			authHeader = c.Query("token")
		}
		if authHeader == "" {
			unauthorized(c, dto.ErrorCodeUnauthorized, "Authorization header missing")
			return
		}

		tokenString, err := auth.ExtractBearerToken(authHeader)
		if err != nil {
			unauthorized(c, dto.ErrorCodeInvalidToken, "Invalid token format")
			return
		}

		claims, err := m.jwtService.ValidateAndExtractClaims(tokenString)
		if err != nil {
			if errors.Is(err, apperrors.ErrTokenExpired) {
				unauthorized(c, dto.ErrorCodeExpiredToken, "Token has expired")
				return
			}
			unauthorized(c, dto.ErrorCodeInvalidToken, "Invalid token")
			return
		}

		if m.denylist != nil {
			revoked, err := m.denylist.Contains(c.Request.Context(), claims.TokenID())
			if err != nil {
				// a denylist outage must not lock everyone out
				m.logger.Warn().Err(err).Str("jti", claims.TokenID()).Msg("Token denylist lookup failed")
			} else if revoked {
				unauthorized(c, dto.ErrorCodeInvalidToken, "Token has been revoked")
				return
			}
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextEmail, claims.Email)
		c.Set(ContextRoleType, claims.Role)
		c.Set(ContextRoles, claims.Roles)
		c.Set(ContextEnrollmentNumber, claims.EnrollmentNumber)
		c.Set(ContextClaims, claims)

		c.Next()
	}
}

// RoleRequired lets the request through when the caller holds any of roles
func (m *AuthMiddleware) RoleRequired(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := CurrentClaims(c)
		if !ok {
			unauthorized(c, dto.ErrorCodeUnauthorized, "User role not found")
			return
		}

		for _, r := range roles {
			if claims.HasRole(string(r)) {
				c.Next()
				return
			}
		}

		errorDetail := dto.NewErrorDetail(dto.ErrorCodeForbidden, "Access denied").
			WithDetails("You don't have sufficient permissions for this operation")
		c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponse(errorDetail))
	}
}

// ProfileVerificationRequired blocks callers whose role profile is not verified yet.
// The session is signed out and the client is sent back to the role's auth page.
// Admins pass unconditionally.
func (m *AuthMiddleware) ProfileVerificationRequired(role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		m.verifyGate(c, func(*auth.Claims) models.Role { return role })
	}
}

// VerifiedProfileRequired is the verify gate for routes shared by students and
// faculty. The profile checked is the one of the caller's primary role.
func (m *AuthMiddleware) VerifiedProfileRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		m.verifyGate(c, func(claims *auth.Claims) models.Role { return models.Role(claims.Role) })
	}
}

func (m *AuthMiddleware) verifyGate(c *gin.Context, roleOf func(*auth.Claims) models.Role) {
	claims, ok := CurrentClaims(c)
	if !ok {
		unauthorized(c, dto.ErrorCodeUnauthorized, "User information not found")
		return
	}
	if claims.HasRole(string(models.RoleAdmin)) {
		c.Next()
		return
	}

	role := roleOf(claims)
	ctx := c.Request.Context()
	verified, err := m.guard.IsVerified(ctx, claims.UserID, role)
	if err != nil && !errors.Is(err, apperrors.ErrResourceNotFound) {
		HandleAPIError(c, err)
		c.Abort()
		return
	}
	if verified {
		c.Next()
		return
	}

	if err := m.guard.SignOut(ctx, claims); err != nil {
		m.logger.Error().Err(err).Int64("userID", claims.UserID).Msg("Failed to sign out unverified user")
	}
	m.logger.Info().Int64("userID", claims.UserID).Str("role", string(role)).Msg("Unverified profile signed out")

	resp := dto.NewErrorResponse(dto.NewErrorDetail(dto.ErrorCodeNotVerified, "Profile is awaiting verification").
		WithDetails("Your profile must be verified before you can access this area"))
	resp.RedirectTo = services.AuthPage(role)
	c.AbortWithStatusJSON(http.StatusForbidden, resp)
}

// CurrentClaims returns the token claims set by JWTAuth
func CurrentClaims(c *gin.Context) (*auth.Claims, bool) {
	v, ok := c.Get(ContextClaims)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	return claims, ok
}

// CurrentUserID returns the authenticated user's id, or 0
func CurrentUserID(c *gin.Context) int64 {
	return c.GetInt64(ContextUserID)
}

// CurrentEnrollment returns the student's enrollment number, or ""
func CurrentEnrollment(c *gin.Context) string {
	return c.GetString(ContextEnrollmentNumber)
}

// CurrentRole returns the caller's primary role
func CurrentRole(c *gin.Context) models.Role {
	return models.Role(c.GetString(ContextRoleType))
}

func unauthorized(c *gin.Context, code dto.ErrorCode, details string) {
	errorDetail := dto.NewErrorDetail(code, "Authentication required").WithDetails(details)
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
}
