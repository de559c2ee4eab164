package http

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
)

const flashCookieName = "booking_flash"

// Flash categories understood by the index template.
const (
	FlashCategoryMessage = "message"
	FlashCategorySuccess = "success"
)

// Flash is a one-shot notice shown on the next rendered page.
type Flash struct {
	Category string `json:"c"`
	Message  string `json:"m"`
}

// FlashStore keeps pending flashes in a cookie signed with HMAC-SHA256.
// Tampered or malformed cookies are dropped silently.
type FlashStore struct {
	secret []byte
	secure bool
}

// NewFlashStore returns a store signing with secret. Secure marks the cookie
// HTTPS only.
func NewFlashStore(secret []byte, secure bool) *FlashStore {
	key := make([]byte, len(secret))
	copy(key, secret)
	return &FlashStore{secret: key, secure: secure}
}

// Add appends flash to the pending list carried by r and writes the cookie.
func (s *FlashStore) Add(w http.ResponseWriter, r *http.Request, flash Flash) {
	if s == nil {
		return
	}
	if flash.Category == "" {
		flash.Category = FlashCategoryMessage
	}
	flashes := append(s.read(r), flash)

	payload, err := json.Marshal(flashes)
	if err != nil {
		return
	}
	encoded := base64.RawURLEncoding.EncodeToString(payload)
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    encoded + "." + s.sign(encoded),
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Pop returns the pending flashes and expires the cookie.
func (s *FlashStore) Pop(w http.ResponseWriter, r *http.Request) []Flash {
	if s == nil {
		return nil
	}
	if _, err := r.Cookie(flashCookieName); err != nil {
		return nil
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return s.read(r)
}

func (s *FlashStore) read(r *http.Request) []Flash {
	cookie, err := r.Cookie(flashCookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}

	encoded, signature, found := strings.Cut(cookie.Value, ".")
	if !found || !hmac.Equal([]byte(signature), []byte(s.sign(encoded))) {
		return nil
	}
	payload, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return nil
	}

	var flashes []Flash
	if err := json.Unmarshal(payload, &flashes); err != nil {
		return nil
	}
	return flashes
}

func (s *FlashStore) sign(value string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(value))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
