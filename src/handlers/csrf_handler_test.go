package handlers

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/dealfolio/backend/src/logger"
)

func TestMain(m *testing.M) {
	logger.InitLogger("error")
	os.Exit(m.Run())
}

var testCSRFKey = []byte("0123456789abcdef0123456789abcdef")

func TestCSRFTokenRoundTrip(t *testing.T) {
	token, err := generateCSRFToken(testCSRFKey)
	require.NoError(t, err)
	assert.True(t, verifyCSRFToken(token, testCSRFKey))
}

func TestCSRFTokenRejectedWithWrongKey(t *testing.T) {
	token, err := generateCSRFToken(testCSRFKey)
	require.NoError(t, err)
	assert.False(t, verifyCSRFToken(token, []byte("another-32-byte-key-entirely-ok!")))
}

func TestCSRFTokenRejectsMalformedValues(t *testing.T) {
	for _, token := range []string{"", "no-separator", "value.", ".sig"} {
		assert.False(t, verifyCSRFToken(token, testCSRFKey), "token %q should not verify", token)
	}
}

func TestCSRFMiddlewareAllowsGET(t *testing.T) {
	called := false
	handler := CSRFMiddleware(testCSRFKey)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/deals", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.True(t, called)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCSRFMiddlewareBlocksPOSTWithoutToken(t *testing.T) {
	handler := CSRFMiddleware(testCSRFKey)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/upload", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCSRFMiddlewareAcceptsMatchingPair(t *testing.T) {
	token, err := generateCSRFToken(testCSRFKey)
	require.NoError(t, err)

	called := false
	handler := CSRFMiddleware(testCSRFKey)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/upload", nil)
	req.Header.Set("X-CSRF-Token", token)
	req.AddCookie(&http.Cookie{Name: csrfCookieName, Value: token})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.True(t, called)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCSRFMiddlewareBlocksMismatchedPair(t *testing.T) {
	tokenA, err := generateCSRFToken(testCSRFKey)
	require.NoError(t, err)
	tokenB, err := generateCSRFToken(testCSRFKey)
	require.NoError(t, err)

	handler := CSRFMiddleware(testCSRFKey)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/upload", nil)
	req.Header.Set("X-CSRF-Token", tokenA)
	req.AddCookie(&http.Cookie{Name: csrfCookieName, Value: tokenB})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}
