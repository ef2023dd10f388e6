package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"streamgate/internal/core/domain"
)

// Assertion is an untrusted identity payload as received from the Telegram
// login widget: claimed attributes plus a "hash" signature. JSON bodies must
// be decoded with json.Decoder.UseNumber so numeric fields render exactly as
// the widget signed them.
type Assertion map[string]any

const assertionHashField = "hash"

// VerifyAssertion recomputes the widget signature and compares it to the
// payload's hash field. The signing key is SHA-256(botToken) and the signed
// message is every other field rendered "key=value", sorted by key and joined
// with newlines.
//
// Malformed input is a verification failure, never an error: missing token,
// missing hash, no signable fields and non-scalar values all return false.
// Pure function, safe for concurrent use.
func VerifyAssertion(assertion Assertion, botToken string) bool {
	if botToken == "" || assertion == nil {
		return false
	}

	provided, ok := assertion[assertionHashField].(string)
	if !ok || provided == "" {
		return false
	}

	checkString, ok := buildCheckString(assertion)
	if !ok {
		return false
	}

	secretKey := sha256.Sum256([]byte(botToken))
	mac := hmac.New(sha256.New, secretKey[:])
	mac.Write([]byte(checkString))
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(provided))
}

// buildCheckString renders every non-hash field as "key=value", sorted
// bytewise by key and joined with newlines. Returns false when there is
// nothing to sign or a value cannot be rendered as a scalar.
func buildCheckString(assertion Assertion) (string, bool) {
	keys := make([]string, 0, len(assertion))
	for k := range assertion {
		if k == assertionHashField {
			continue
		}
		keys = append(keys, k)
	}
	if len(keys) == 0 {
		return "", false
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		v, ok := renderScalar(assertion[k])
		if !ok {
			return "", false
		}
		lines = append(lines, k+"="+v)
	}
	return strings.Join(lines, "\n"), true
}

// renderScalar formats a decoded JSON or query value the way the widget
// signed it. Nested objects and arrays are not signable.
func renderScalar(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, true
	case json.Number:
		return val.String(), true
	case bool:
		return strconv.FormatBool(val), true
	case float64:
		// Round integral floats so 123.0 renders as "123".
		if val == float64(int64(val)) {
			return strconv.FormatInt(int64(val), 10), true
		}
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case int64:
		return strconv.FormatInt(val, 10), true
	case int:
		return strconv.Itoa(val), true
	default:
		return "", false
	}
}

// NormalizeAssertion extracts the logical identity fields from either payload
// shape: the widget shape carries them at the top level, the redirect shape
// nests them under "user". Top-level fields win when both are present.
// Normalization never verifies; the raw hash is carried along for that.
func NormalizeAssertion(raw Assertion, policy domain.BootstrapPolicy) domain.CandidateUser {
	var nested Assertion
	if inner, ok := raw["user"].(map[string]any); ok {
		nested = Assertion(inner)
	}

	pick := func(key string) string {
		if v, ok := raw[key]; ok {
			if s, rendered := renderScalar(v); rendered {
				return s
			}
		}
		if nested != nil {
			if v, ok := nested[key]; ok {
				if s, rendered := renderScalar(v); rendered {
					return s
				}
			}
		}
		return ""
	}

	telegramID := pick("id")
	hash, _ := raw[assertionHashField].(string)
	isAdmin, isAllowed := policy.InitialFlags(telegramID)

	return domain.CandidateUser{
		TelegramID: telegramID,
		FirstName:  pick("first_name"),
		LastName:   pick("last_name"),
		Username:   pick("username"),
		PhotoURL:   pick("photo_url"),
		AuthDate:   coerceUnix(pick("auth_date")),
		Hash:       hash,
		IsAdmin:    isAdmin,
		IsAllowed:  isAllowed,
	}
}

// coerceUnix parses an issuance timestamp that arrives as either a number or
// a numeric string. Unparseable input coerces to zero.
func coerceUnix(s string) int64 {
	if s == "" {
		return 0
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		if f, ferr := strconv.ParseFloat(s, 64); ferr == nil {
			return int64(f)
		}
		return 0
	}
	return n
}

// DecodeAssertionJSON decodes a JSON request body into an Assertion,
// preserving numeric fields as json.Number so signatures verify bit-for-bit.
func DecodeAssertionJSON(r io.Reader) (Assertion, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var assertion Assertion
	if err := dec.Decode(&assertion); err != nil {
		return nil, fmt.Errorf("failed to decode assertion: %w", err)
	}
	return assertion, nil
}

// AssertionFromQuery builds an Assertion from redirect-style query
// parameters. Only the first value of each parameter is significant.
func AssertionFromQuery(params map[string][]string) Assertion {
	assertion := make(Assertion, len(params))
	for k, vs := range params {
		if len(vs) > 0 {
			assertion[k] = vs[0]
		}
	}
	return assertion
}
