// Package auth verifies Telegram Mini App init data. The client forwards the
// raw init-data string it received from Telegram; the server recomputes the
// HMAC with the bot token and only then trusts the embedded user.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/quicktrack-app/server/internal/models"
)

// maxInitDataAge is how long a signed init-data payload stays acceptable.
const maxInitDataAge = 24 * time.Hour

// Error messages double as the client-facing response bodies.
var (
	ErrMissingInitData     = errors.New("Missing authorization header")
	ErrServerMisconfigured = errors.New("Server misconfigured")
	ErrInvalidInitData     = errors.New("Invalid init data")
	ErrInvalidSignature    = errors.New("Invalid signature")
	ErrExpired             = errors.New("Init data expired")
	ErrInvalidUserData     = errors.New("Invalid user data")
	ErrNoUser              = errors.New("No user in init data")
)

// Validate checks an init-data string against the bot token and returns the
// identity it was signed for.
//
// The data-check string is every key=value pair except hash, sorted by key,
// joined with newlines. The signing key is HMAC-SHA256 of the bot token keyed
// with the literal "WebAppData", per Telegram's Web App scheme. Freshness is
// only enforced when auth_date is present and parses to a non-zero integer.
func Validate(initData, botToken string, now time.Time) (*models.Identity, error) {
	if initData == "" {
		return nil, ErrMissingInitData
	}
	if botToken == "" {
		return nil, ErrServerMisconfigured
	}

	params, err := url.ParseQuery(initData)
	if err != nil {
		return nil, ErrInvalidInitData
	}

	suppliedHash := params.Get("hash")
	if suppliedHash == "" {
		return nil, ErrInvalidInitData
	}
	params.Del("hash")

	computed := computeHash(params, botToken)
	if !hmac.Equal([]byte(computed), []byte(suppliedHash)) {
		return nil, ErrInvalidSignature
	}

	if authDate, _ := strconv.ParseInt(params.Get("auth_date"), 10, 64); authDate != 0 {
		if now.Unix()-authDate > int64(maxInitDataAge/time.Second) {
			return nil, ErrExpired
		}
	}

	return identityFromParams(params)
}

func computeHash(params url.Values, botToken string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, k+"="+params.Get(k))
	}
	dataCheckString := strings.Join(lines, "\n")

	secret := hmac.New(sha256.New, []byte("WebAppData"))
	secret.Write([]byte(botToken))

	mac := hmac.New(sha256.New, secret.Sum(nil))
	mac.Write([]byte(dataCheckString))
	return hex.EncodeToString(mac.Sum(nil))
}

type initDataUser struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func identityFromParams(params url.Values) (*models.Identity, error) {
	userJSON := params.Get("user")
	if userJSON == "" {
		return nil, ErrNoUser
	}

	var user initDataUser
	if err := json.Unmarshal([]byte(userJSON), &user); err != nil {
		return nil, ErrInvalidUserData
	}
	if user.ID == 0 {
		return nil, ErrNoUser
	}

	parts := make([]string, 0, 2)
	for _, p := range []string{user.FirstName, user.LastName} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	name := strings.Join(parts, " ")
	if name == "" {
		name = "Unknown"
	}

	return &models.Identity{
		UserID:   strconv.FormatInt(user.ID, 10),
		UserName: name,
	}, nil
}
