package http

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"fleetrent-backend/internal/config"
	"fleetrent-backend/internal/logger"
	"fleetrent-backend/internal/security"
)

type contextKey int

const (
	requestIDKey contextKey = iota
	claimsKey
)

const requestIDHeader = "X-Request-ID"

// RequestIDFromContext returns the id assigned by requestIDMiddleware.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// ClaimsFromContext returns the caller's validated claims, nil on public routes.
func ClaimsFromContext(ctx context.Context) *security.UserClaims {
	claims, _ := ctx.Value(claimsKey).(*security.UserClaims)
	return claims
}

// requestIDMiddleware keeps a caller supplied X-Request-ID or assigns one.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := ""
		if cur := mux.CurrentRoute(r); cur != nil {
			route = cur.GetName()
		}
		logger.Info("HTTP request",
			"request_id", RequestIDFromContext(r.Context()),
			"route", route,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds())
	})
}

// authMiddleware enforces the route's security level. Tenant routes also
// require the token's company to match the {companyID} path segment.
type authMiddleware struct {
	tokens security.TokenManager
}

func (a *authMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := ""
		if cur := mux.CurrentRoute(r); cur != nil {
			name = cur.GetName()
		}
		level := config.GetSecurityLevel(name)
		if level == config.SecurityPublic {
			next.ServeHTTP(w, r)
			return
		}

		token := bearerToken(r)
		if token == "" {
			writeMessage(w, http.StatusUnauthorized, "authorization token is not provided")
			return
		}
		claims, err := a.tokens.ValidateToken(token)
		if err != nil {
			writeMessage(w, http.StatusUnauthorized, err.Error())
			return
		}

		if raw, ok := mux.Vars(r)["companyID"]; ok {
			companyID, err := strconv.ParseInt(raw, 10, 32)
			if err != nil || int32(companyID) != claims.CompanyID {
				writeMessage(w, http.StatusForbidden, "token does not grant access to this company")
				return
			}
		}

		if level == config.SecurityStaff && !claims.HasRole(security.RoleStaff) {
			writeMessage(w, http.StatusForbidden, "staff role required")
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey, claims)))
	})
}

func bearerToken(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}
