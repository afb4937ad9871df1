package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/username/dealfolio/backend/src/database"
	"github.com/username/dealfolio/backend/src/logger"
	"github.com/username/dealfolio/backend/src/model"
	"github.com/username/dealfolio/backend/src/utils"
)

// extractToken pulls the access token from the session cookie, falling back
// to the Authorization header for API clients that do not use cookies.
func extractToken(r *http.Request) string {
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	return strings.TrimPrefix(authHeader, "Bearer ")
}

func (h *UserHandler) AuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tokenString := extractToken(r)
		if tokenString == "" {
			logger.L.Debug("AuthMiddleware: no token in cookie or Authorization header", "path", r.URL.Path)
			utils.SendJSONError(w, "Authentication required", http.StatusUnauthorized)
			return
		}

		userIDStr, err := h.authService.ValidateToken(tokenString)
		if err != nil {
			logger.L.Warn("AuthMiddleware: token validation failed", "path", r.URL.Path, "error", err)
			utils.SendJSONError(w, "Invalid or expired token", http.StatusUnauthorized)
			return
		}

		session, err := model.GetSessionByToken(database.DB, tokenString)
		if err != nil {
			logger.L.Warn("AuthMiddleware: no session for access token", "path", r.URL.Path, "error", err)
			utils.SendJSONError(w, "Invalid or expired session", http.StatusUnauthorized)
			return
		}
		if session.IsBlocked {
			logger.L.Warn("AuthMiddleware: blocked session used", "userID", session.UserID)
			utils.SendJSONError(w, "Session is blocked", http.StatusUnauthorized)
			return
		}

		userIDInt, err := strconv.ParseInt(userIDStr, 10, 64)
		if err != nil {
			logger.L.Error("AuthMiddleware: invalid user ID in token", "userIDStr", userIDStr, "error", err)
			utils.SendJSONError(w, "Invalid user ID in token", http.StatusInternalServerError)
			return
		}

		ctx := context.WithValue(r.Context(), userIDContextKey, userIDInt)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}
