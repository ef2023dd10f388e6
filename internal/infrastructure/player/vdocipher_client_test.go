package player

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestVdoCipherClient_IssueOTP(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/videos/abc123/otp", r.URL.Path)
		assert.Equal(t, "Apisecret test-secret", r.Header.Get("Authorization"))

		var req struct {
			TTL int `json:"ttl"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 300, req.TTL)

		json.NewEncoder(w).Encode(map[string]string{
			"otp":          "otp-1",
			"playbackInfo": "info-1",
		})
	}))
	defer server.Close()

	client := NewVdoCipherClient(server.URL, "test-secret", 5*time.Minute, zap.NewNop().Sugar())

	token, err := client.IssueOTP(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, "otp-1", token.OTP)
	assert.Equal(t, "info-1", token.PlaybackInfo)
}

func TestVdoCipherClient_UpstreamRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"video not found"}`, http.StatusNotFound)
	}))
	defer server.Close()

	client := NewVdoCipherClient(server.URL, "test-secret", 5*time.Minute, zap.NewNop().Sugar())

	_, err := client.IssueOTP(context.Background(), "missing")
	assert.Error(t, err)
}

func TestVdoCipherClient_MissingSecret(t *testing.T) {
	client := NewVdoCipherClient("http://localhost:1", "", 5*time.Minute, zap.NewNop().Sugar())

	_, err := client.IssueOTP(context.Background(), "abc123")
	assert.Error(t, err)
}
