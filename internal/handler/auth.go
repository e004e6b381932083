// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/alexedwards/scs/v2"
	"github.com/go-playground/validator/v10"

	"github.com/orgdesk/orgdesk/internal/render"
	"github.com/orgdesk/orgdesk/internal/session"
)

// AuthHandler serves sign-in and sign-out.
type AuthHandler struct {
	renderer       *render.Renderer
	sessionManager *scs.SessionManager
	validate       *validator.Validate
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(renderer *render.Renderer, sm *scs.SessionManager) *AuthHandler {
	return &AuthHandler{
		renderer:       renderer,
		sessionManager: sm,
		validate:       validator.New(),
	}
}

type loginForm struct {
	Email   string
	OrgCode string
}

// LoginForm handles GET /login.
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	if _, ok := session.Current(r.Context(), h.sessionManager); ok {
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}
	h.renderLogin(w, r, loginForm{}, nil)
}

// Login handles POST /login. The email and organization code identify
// the operator; all subsequent API traffic is scoped by the code.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	form := loginForm{
		Email:   strings.TrimSpace(r.FormValue("email")),
		OrgCode: strings.TrimSpace(r.FormValue("orgCode")),
	}

	errs := make(map[string]string)
	if err := h.validate.Var(form.Email, "required,email"); err != nil {
		errs["email"] = "A valid email address is required"
	}
	orgCode, err := strconv.ParseInt(form.OrgCode, 10, 64)
	if err != nil || orgCode <= 0 {
		errs["orgCode"] = "Organization code must be a positive number"
	}
	if len(errs) > 0 {
		h.renderLogin(w, r, form, errs)
		return
	}

	acct := session.Account{Email: form.Email, OrgCode: orgCode}
	if err := session.SignIn(r.Context(), h.sessionManager, acct); err != nil {
		slog.Error("failed to sign in", "email", form.Email, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

// Logout handles POST /logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := session.SignOut(r.Context(), h.sessionManager); err != nil {
		slog.Error("failed to sign out", "error", err)
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *AuthHandler) renderLogin(w http.ResponseWriter, r *http.Request, form loginForm, errs map[string]string) {
	err := h.renderer.Render(w, r, "auth/login", render.TemplateData{
		Title:  "Sign In",
		Data:   form,
		Errors: errs,
	})
	if err != nil {
		slog.Error("render error", "template", "auth/login", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}
