package validation

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var (
	// TelegramIDRegex validates the numeric external identity id
	TelegramIDRegex = regexp.MustCompile(`^[0-9]+$`)

	// VideoIDRegex validates hosting-platform video ids
	VideoIDRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
)

// ValidateTelegramID validates an external identity id
func ValidateTelegramID(id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("telegram id is required")
	}
	if len(id) > 20 {
		return fmt.Errorf("telegram id is too long (max 20 characters)")
	}
	if !TelegramIDRegex.MatchString(id) {
		return fmt.Errorf("telegram id must be numeric")
	}
	return nil
}

// ValidateVideoID validates a platform video id
func ValidateVideoID(id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("video id is required")
	}
	if len(id) > 64 {
		return fmt.Errorf("video id is too long (max 64 characters)")
	}
	if !VideoIDRegex.MatchString(id) {
		return fmt.Errorf("video id contains invalid characters (only letters, numbers, _, - allowed)")
	}
	return nil
}

// ValidateTitle validates a catalog entry title
func ValidateTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return fmt.Errorf("title is required")
	}
	if len(title) > 200 {
		return fmt.Errorf("title is too long (max 200 characters)")
	}
	return nil
}

// ValidateHTTPURL validates an absolute http(s) URL
func ValidateHTTPURL(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fmt.Errorf("url is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url: %v", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("url must use http or https")
	}
	if u.Host == "" {
		return fmt.Errorf("url must be absolute")
	}
	return nil
}

// ValidatePlatform validates the hosting platform name
func ValidatePlatform(platform string) error {
	switch platform {
	case "vdocipher", "kinescope":
		return nil
	default:
		return fmt.Errorf("unsupported platform: %q", platform)
	}
}
