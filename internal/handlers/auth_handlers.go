// File: internal/handlers/auth_handlers.go
package handlers

import (
	"net/http"
	"time"

	"github.com/iyunix/go-aichat/internal/middleware"
	"github.com/iyunix/go-aichat/internal/services/user_services"
)

const (
	authCookie    = "auth_token"
	authCookieTTL = 7 * 24 * time.Hour
)

// AuthHandler holds the dependencies for authentication handlers.
type AuthHandler struct {
	Users  user_services.UserServiceInterface
	Secure bool // mark the session cookie Secure
	logger Logger
}

func NewAuthHandler(users user_services.UserServiceInterface, secureCookies bool, logger Logger) *AuthHandler {
	return &AuthHandler{Users: users, Secure: secureCookies, logger: logger}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var form user_services.RegisterForm
	if !decodeJSON(w, r, &form) {
		return
	}

	u, err := h.Users.Register(r.Context(), form)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, *u, "registration successful")
}

// Login returns the session token in the body and also sets it as a cookie
// for browser clients.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var form user_services.LoginForm
	if !decodeJSON(w, r, &form) {
		return
	}

	res, err := h.Users.Login(r.Context(), form)
	if err != nil {
		writeError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     authCookie,
		Value:    res.Token,
		Expires:  time.Now().Add(authCookieTTL),
		HttpOnly: true,
		Secure:   h.Secure,
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, *res, "login successful")
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.Users.Logout(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     authCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	writeOK(w, "logout successful")
}

// Me returns the user the session token belongs to.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeFail(w, http.StatusUnauthorized, "not logged in")
		return
	}
	u, err := h.Users.GetUser(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, *u, "fetched")
}
