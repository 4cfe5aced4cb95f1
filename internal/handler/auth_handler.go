package handler

import (
	"context"
	"log/slog"
	"net/http"

	"positions-console/internal/guard"
	"positions-console/internal/middleware"
	"positions-console/internal/util"
	"positions-console/pkg/apierror"
)

type Authenticator interface {
	Login(ctx context.Context, username string, password string) (string, error)
	Register(ctx context.Context, username string, password string) error
}

type SessionStarter interface {
	Begin(ctx context.Context, token string) error
}

type AuthHandler struct {
	auth     Authenticator
	sessions SessionStarter
	guard    *guard.Guard
	render   *Renderer
}

func NewAuthHandler(auth Authenticator, sessions SessionStarter, g *guard.Guard, render *Renderer) *AuthHandler {
	return &AuthHandler{auth: auth, sessions: sessions, guard: g, render: render}
}

func (h *AuthHandler) Home(w http.ResponseWriter, r *http.Request) {
	h.guard.EnterHome(r.Context())
	if middleware.Redirected(w, r) {
		return
	}
	h.render.Render(w, r, http.StatusOK, "home", PageData{})
}

func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, r, http.StatusOK, "login", PageData{})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	username := util.CleanField(r.PostFormValue("username"))
	password := r.PostFormValue("password")

	token, err := h.auth.Login(r.Context(), username, password)
	if err != nil {
		h.render.Render(w, r, statusFor(err), "login", PageData{Username: username, Error: apierror.Message(err)})
		return
	}

	if err := h.sessions.Begin(r.Context(), token); err != nil {
		slog.Error("failed to store session", "error", err)
		h.render.Render(w, r, http.StatusInternalServerError, "login", PageData{Username: username, Error: "Could not save the session"})
		return
	}

	http.Redirect(w, r, middleware.ViewPath(guard.ViewDashboard), http.StatusSeeOther)
}

func (h *AuthHandler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, r, http.StatusOK, "register", PageData{})
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	username := util.CleanField(r.PostFormValue("username"))
	password := r.PostFormValue("password")

	if err := h.auth.Register(r.Context(), username, password); err != nil {
		h.render.Render(w, r, statusFor(err), "register", PageData{Username: username, Error: apierror.Message(err)})
		return
	}

	h.render.Render(w, r, http.StatusCreated, "register_success", PageData{Username: username})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.guard.Logout(r.Context()); err != nil {
		slog.Warn("logout could not clear the token", "error", err)
	}
	if middleware.Redirected(w, r) {
		return
	}
	http.Redirect(w, r, middleware.ViewPath(guard.ViewLogin), http.StatusSeeOther)
}
