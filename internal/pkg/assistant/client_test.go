package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/campusdesk/internal/pkg/apperrors"
)

func TestInvoke_SendsActionAndData(t *testing.T) {
	var got struct {
		Action string                 `json:"action"`
		Data   map[string]interface{} `json:"data"`
	}
	var auth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"response":"Focus on thermodynamics this week."}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "secret", time.Second)
	text, err := c.Invoke(context.Background(), ActionStudyRecommendations, map[string]interface{}{"semester": 3})
	require.NoError(t, err)

	assert.Equal(t, "Focus on thermodynamics this week.", text)
	assert.Equal(t, "study_recommendations", got.Action)
	assert.Equal(t, float64(3), got.Data["semester"])
	assert.Equal(t, "Bearer secret", auth)
}

func TestInvoke_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, `{"error":"model overloaded"}`},
		{"rate limited", http.StatusTooManyRequests, `slow down`},
		{"error field", http.StatusOK, `{"error":"unknown action"}`},
		{"empty response", http.StatusOK, `{"response":"  "}`},
		{"invalid json", http.StatusOK, `<html>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := New(srv.URL, "", time.Second).Invoke(context.Background(), ActionChat, nil)
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperrors.ErrAssistantFailed))
		})
	}
}

func TestInvoke_NotConfigured(t *testing.T) {
	c := New("", "", 0)
	assert.False(t, c.Configured())

	_, err := c.Invoke(context.Background(), ActionChat, nil)
	assert.ErrorIs(t, err, apperrors.ErrAssistantNotConfigured)
}

func TestInvoke_RespectsContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := New(srv.URL, "", 5*time.Second).Invoke(ctx, ActionDraftNotice, nil)
	assert.ErrorIs(t, err, apperrors.ErrAssistantFailed)
}
