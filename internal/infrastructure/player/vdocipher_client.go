package player

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"streamgate/internal/core/domain"
	"streamgate/internal/core/ports"

	"go.uber.org/zap"
)

// VdoCipherClient fetches one-time playback credentials from the VdoCipher
// API so the API secret never reaches the browser.
type VdoCipherClient struct {
	baseURL    string
	apiSecret  string
	otpTTL     time.Duration
	httpClient *http.Client
	logger     *zap.SugaredLogger
}

func NewVdoCipherClient(baseURL, apiSecret string, otpTTL time.Duration, logger *zap.SugaredLogger) ports.PlayerTokenService {
	return &VdoCipherClient{
		baseURL:   baseURL,
		apiSecret: apiSecret,
		otpTTL:    otpTTL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger,
	}
}

type otpRequest struct {
	TTL int `json:"ttl"`
}

// IssueOTP requests a playback OTP for a video.
func (c *VdoCipherClient) IssueOTP(ctx context.Context, videoID string) (*domain.PlaybackToken, error) {
	if c.apiSecret == "" {
		return nil, fmt.Errorf("vdocipher api secret is not configured")
	}

	body, err := json.Marshal(otpRequest{TTL: int(c.otpTTL / time.Second)})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal otp request: %w", err)
	}

	url := fmt.Sprintf("%s/videos/%s/otp", c.baseURL, videoID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build otp request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Apisecret "+c.apiSecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("otp request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.Warnw("vdocipher otp request rejected",
			"video_id", videoID,
			"status", resp.StatusCode,
			"body", string(payload),
		)
		return nil, fmt.Errorf("vdocipher api error: %s", resp.Status)
	}

	var token domain.PlaybackToken
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return nil, fmt.Errorf("failed to decode otp response: %w", err)
	}
	return &token, nil
}
