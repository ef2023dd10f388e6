package domain

import "time"

type VideoPlatform string

const (
	PlatformVdoCipher VideoPlatform = "vdocipher"
	PlatformKinescope VideoPlatform = "kinescope"
)

// Video is a catalog entry. VideoID is the hosting platform's identifier and
// the unique lookup key.
type Video struct {
	VideoID      string        `json:"video_id"`
	Title        string        `json:"title"`
	Description  string        `json:"description"`
	URL          string        `json:"url"`
	Platform     VideoPlatform `json:"platform"`
	ThumbnailURL string        `json:"thumbnail_url"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// PlaybackToken is a short-lived one-time credential for the hosted player.
type PlaybackToken struct {
	OTP          string `json:"otp"`
	PlaybackInfo string `json:"playbackInfo"`
}
