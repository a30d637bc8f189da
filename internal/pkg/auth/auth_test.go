package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWT() *JWTService {
	return NewJWTService(JWTConfig{
		SecretKey:       "test-secret",
		AccessTokenExp:  time.Hour,
		RefreshTokenExp: 24 * time.Hour,
		TokenIssuer:     "campusdesk.test",
	})
}

func TestJWT_RoundTrip(t *testing.T) {
	svc := newTestJWT()

	pair, err := svc.GenerateTokenPair(Subject{
		UserID:           7,
		Email:            "asha@campus.edu",
		Role:             "faculty",
		Roles:            []string{"faculty", "admin"},
		EnrollmentNumber: "",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, 3600, pair.ExpiresIn)

	claims, err := svc.ValidateAndExtractClaims(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, pair.TokenID, claims.TokenID())
	assert.True(t, claims.HasRole("admin"))
	assert.True(t, claims.HasRole("faculty"))
	assert.False(t, claims.HasRole("student"))
	assert.InDelta(t, time.Hour.Seconds(), claims.Remaining(time.Now()).Seconds(), 5)
}

func TestJWT_Expired(t *testing.T) {
	svc := newTestJWT()
	issued := time.Now().Add(-2 * time.Hour)
	svc.now = func() time.Time { return issued }

	pair, err := svc.GenerateTokenPair(Subject{UserID: 1, Email: "a@b.edu", Role: "student"})
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.ValidateToken(pair.AccessToken)
	assert.True(t, errors.Is(err, ErrExpiredToken))
}

func TestJWT_WrongSecret(t *testing.T) {
	pair, err := newTestJWT().GenerateTokenPair(Subject{UserID: 1, Email: "a@b.edu", Role: "student"})
	require.NoError(t, err)

	other := NewJWTService(JWTConfig{SecretKey: "other", AccessTokenExp: time.Hour, TokenIssuer: "campusdesk.test"})
	_, err = other.ValidateToken(pair.AccessToken)
	assert.True(t, errors.Is(err, ErrInvalidToken))
}

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr bool
	}{
		{"bearer", "Bearer a.b.c", "a.b.c", false},
		{"raw", "a.b.c", "a.b.c", false},
		{"quoted", `"Bearer a.b.c"`, "a.b.c", false},
		{"empty", "", "", true},
		{"not a jwt", "Bearer abc", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractBearerToken(tt.header)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("secret123")
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "secret123"))
	assert.False(t, CheckPassword(hash, "secret124"))
}

func TestMemoryDenylist(t *testing.T) {
	ctx := context.Background()
	d := NewMemoryDenylist()
	now := time.Now()
	d.now = func() time.Time { return now }

	require.NoError(t, d.Add(ctx, "jti-1", time.Minute))
	require.NoError(t, d.Add(ctx, "", time.Minute))
	require.NoError(t, d.Add(ctx, "jti-2", 0))

	ok, err := d.Contains(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _ = d.Contains(ctx, "jti-2")
	assert.False(t, ok)

	now = now.Add(2 * time.Minute)
	ok, _ = d.Contains(ctx, "jti-1")
	assert.False(t, ok, "entries lapse with the token")

	require.NoError(t, d.Add(ctx, "jti-3", time.Minute))
	assert.Len(t, d.entries, 1, "expired entries are swept on write")
}
