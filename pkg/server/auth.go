package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gmcavallazzi/opthome/pkg/log"
)

type contextKey string

const emailContextKey contextKey = "email"

// authMiddleware validates the auth cookie on every API request. When no
// OIDC audience is configured, auth is bypassed entirely.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ctx = log.With(ctx, log.Ctx(ctx).With(slog.String("reqPath", r.URL.Path)))
		r = r.WithContext(ctx)

		if s.bypassAuth {
			next.ServeHTTP(w, r)
			return
		}

		allowNoLogin := r.URL.Path == "/api/auth/login" || r.URL.Path == "/api/auth/status"

		authCookie, err := r.Cookie(authTokenCookie)
		if err != nil && !errors.Is(err, http.ErrNoCookie) {
			log.Ctx(ctx).ErrorContext(ctx, "failed to get auth cookie", slog.Any("error", err))
			writeJSONError(w, "missing auth cookie", http.StatusBadRequest)
			return
		}
		if authCookie == nil {
			if allowNoLogin {
				next.ServeHTTP(w, r)
				return
			}
			log.Ctx(ctx).WarnContext(ctx, "no auth cookie found")
			writeJSONError(w, "missing auth cookie", http.StatusUnauthorized)
			return
		}

		email, err := s.verifyIDToken(r, authCookie.Value)
		if err != nil {
			log.Ctx(ctx).ErrorContext(ctx, "auth token validation failed", slog.Any("error", err))
			writeJSONError(w, "invalid auth token", http.StatusUnauthorized)
			return
		}

		r = r.WithContext(withEmail(ctx, email))
		next.ServeHTTP(w, r)
	})
}

// verifyIDToken checks the raw ID token against the configured verifier and
// returns the verified email claim.
func (s *Server) verifyIDToken(r *http.Request, rawToken string) (string, error) {
	idToken, err := s.verifier(r.Context(), rawToken)
	if err != nil {
		return "", err
	}
	var claims struct {
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return "", err
	}
	if !claims.EmailVerified {
		return "", errors.New("email not verified")
	}
	return claims.Email, nil
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if s.bypassAuth {
		writeJSON(w, map[string]bool{"loggedIn": true})
		return
	}

	var req struct {
		IDToken string `json:"idToken"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.IDToken == "" {
		writeJSONError(w, "missing idToken", http.StatusBadRequest)
		return
	}

	email, err := s.verifyIDToken(r, req.IDToken)
	if err != nil {
		log.Ctx(ctx).WarnContext(ctx, "login token validation failed", slog.Any("error", err))
		writeJSONError(w, "invalid id token", http.StatusUnauthorized)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     authTokenCookie,
		Value:    req.IDToken,
		Path:     "/",
		Expires:  time.Now().Add(24 * time.Hour),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
	log.Ctx(ctx).InfoContext(ctx, "user logged in", slog.String("email", email))
	writeJSON(w, map[string]bool{"loggedIn": true})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     authTokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	writeJSON(w, map[string]bool{"loggedIn": false})
}

func (s *Server) handleAuthStatus(w http.ResponseWriter, r *http.Request) {
	email, loggedIn := emailFrom(r)
	if s.bypassAuth {
		loggedIn = true
	}
	writeJSON(w, struct {
		LoggedIn bool   `json:"loggedIn"`
		Email    string `json:"email,omitempty"`
	}{LoggedIn: loggedIn, Email: email})
}

func withEmail(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, emailContextKey, email)
}

func emailFrom(r *http.Request) (string, bool) {
	email, ok := r.Context().Value(emailContextKey).(string)
	return email, ok && email != ""
}
