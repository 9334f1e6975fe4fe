package server

import (
	"crypto/subtle"
	"net/http"

	"go.uber.org/zap"

	"github.com/jasonbahil/portfolio/internal/server/middleware"
	"github.com/jasonbahil/portfolio/internal/types"
)

// AuthHandler handles the admin session endpoints.
type AuthHandler struct {
	server       *Server
	username     string
	passwordHash string
}

// NewAuthHandler creates an AuthHandler for the single admin account.
func NewAuthHandler(s *Server, username, passwordHash string) *AuthHandler {
	return &AuthHandler{
		server:       s,
		username:     username,
		passwordHash: passwordHash,
	}
}

// authenticate checks credentials against the configured admin. The password
// is always verified so that a wrong username costs the same as a wrong
// password.
func (h *AuthHandler) authenticate(req *types.LoginRequest) error {
	passwordOK := h.server.cfg.Password.VerifyPassword(req.Password, h.passwordHash)
	userOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(h.username)) == 1
	if !passwordOK || !userOK {
		return &ErrInvalidCredentials{}
	}
	return nil
}

// Login handles admin login requests and sets the session cookie.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	s := h.server

	var req types.LoginRequest
	if !s.decodeRequest(w, r, &req) {
		return
	}

	if err := h.authenticate(&req); err != nil {
		s.logger.Info("admin login rejected", zap.String("remote_addr", s.extractClientID(r)))
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	token, err := s.jwtService.GenerateToken(h.username)
	if err != nil {
		s.logger.Error("failed to generate token", zap.Error(err))
		s.errorResponse(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	http.SetCookie(w, h.sessionCookie(token, int(s.cfg.JWT.Expiration().Seconds())))
	s.jsonResponse(w, http.StatusOK, types.LoginResponse{Success: true, Token: token})
}

// Logout clears the session cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, _ *http.Request) {
	http.SetCookie(w, h.sessionCookie("", -1))
	h.server.jsonResponse(w, http.StatusOK, map[string]bool{"success": true})
}

// Check reports whether the request carries a valid session.
func (h *AuthHandler) Check(w http.ResponseWriter, r *http.Request) {
	s := h.server

	claims, err := s.jwtService.ValidateToken(middleware.TokenFromRequest(r))
	if err != nil {
		s.jsonResponse(w, http.StatusUnauthorized, types.AuthCheckResponse{Authenticated: false})
		return
	}
	s.jsonResponse(w, http.StatusOK, types.AuthCheckResponse{
		Authenticated: true,
		Username:      claims.GetUsername(),
	})
}

func (h *AuthHandler) sessionCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.server.cfg.CookieSecure,
		SameSite: http.SameSiteStrictMode,
	}
}
