package handlers

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/username/dealfolio/backend/src/config"
	"github.com/username/dealfolio/backend/src/logger"
)

const csrfCookieName = "_dealfolio_csrf"

// GetCSRFToken issues a signed double-submit token. The frontend stores the
// value from the response body and echoes it in the X-CSRF-Token header on
// every mutating request; the cookie copy travels automatically.
func GetCSRFToken(w http.ResponseWriter, r *http.Request) {
	token, err := generateCSRFToken(config.Cfg.CSRFAuthKey)
	if err != nil {
		logger.L.Error("Failed to generate CSRF token", "error", err)
		http.Error(w, "Failed to generate CSRF token", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     csrfCookieName,
		Value:    token,
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
		HttpOnly: true,
		Secure:   false, // set to true behind HTTPS
		MaxAge:   3600,
	})

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-CSRF-Token", token)
	json.NewEncoder(w).Encode(map[string]string{
		"csrfToken": token,
	})
}

// CSRFMiddleware validates the double-submit pair: the X-CSRF-Token header
// must match the cookie, and the token's HMAC signature must verify against
// authKey so a forged cookie cannot satisfy the check.
func CSRFMiddleware(authKey []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			headerToken := r.Header.Get("X-CSRF-Token")
			cookie, err := r.Cookie(csrfCookieName)
			if headerToken == "" || err != nil {
				logger.L.Warn("CSRF validation failed: missing token",
					"method", r.Method, "path", r.URL.Path, "hasHeader", headerToken != "")
				http.Error(w, "CSRF token validation failed", http.StatusForbidden)
				return
			}

			if subtle.ConstantTimeCompare([]byte(headerToken), []byte(cookie.Value)) != 1 ||
				!verifyCSRFToken(headerToken, authKey) {
				logger.L.Warn("CSRF validation failed: token mismatch",
					"method", r.Method, "path", r.URL.Path)
				http.Error(w, "CSRF token validation failed", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func generateCSRFToken(authKey []byte) (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	value := base64.RawURLEncoding.EncodeToString(b)
	return value + "." + signCSRFValue(value, authKey), nil
}

func verifyCSRFToken(token string, authKey []byte) bool {
	value, sig, found := strings.Cut(token, ".")
	if !found {
		return false
	}
	expected := signCSRFValue(value, authKey)
	return subtle.ConstantTimeCompare([]byte(sig), []byte(expected)) == 1
}

func signCSRFValue(value string, authKey []byte) string {
	mac := hmac.New(sha256.New, authKey)
	mac.Write([]byte(value))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
