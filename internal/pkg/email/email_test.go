package email

import (
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	a, err := GenerateToken()
	require.NoError(t, err)
	b, err := GenerateToken()
	require.NoError(t, err)
	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
}

func TestUnconfiguredSenderOnlyLogs(t *testing.T) {
	svc := NewEmailService(SMTPConfig{FrontendURL: "http://localhost:5173/"}, zerolog.Nop())
	assert.NoError(t, svc.SendPasswordResetEmail("a@campus.edu", "Asha", "tok"))
	assert.NoError(t, svc.SendProfileVerifiedEmail("a@campus.edu", "Asha", "student"))
}

func TestBuildMessage(t *testing.T) {
	svc := &EmailServiceImpl{config: SMTPConfig{FromName: "CampusDesk", FromEmail: "no-reply@campus.edu", FrontendURL: "https://campus.edu/"}}

	msg := string(svc.buildMessage("a@campus.edu", "Hello", "<p>hi</p>"))
	assert.True(t, strings.HasPrefix(msg, "From: CampusDesk <no-reply@campus.edu>\r\nTo: a@campus.edu\r\nSubject: Hello\r\n"))
	assert.True(t, strings.HasSuffix(msg, "\r\n\r\n<p>hi</p>"))

	assert.Equal(t, "https://campus.edu/auth/reset-password?token=abc", svc.ResetURL("abc"))
}
