// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for authentication and
// request context handling.
package middleware

import (
	"context"
	"net/http"

	"github.com/alexedwards/scs/v2"

	"github.com/orgdesk/orgdesk/internal/session"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// ContextKeyAccount holds the signed-in operator.
const ContextKeyAccount ContextKey = "account"

// Auth requires a signed-in operator and redirects to the login page
// otherwise.
func Auth(sm *scs.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := session.Current(r.Context(), sm); !ok {
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// LoadAccount puts the signed-in operator into the request context so
// handlers receive identity and organization scope explicitly. Use after
// Auth.
func LoadAccount(sm *scs.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			acct, ok := session.Current(r.Context(), sm)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			ctx := context.WithValue(r.Context(), ContextKeyAccount, acct)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetAccount retrieves the operator from the request context. Returns
// nil when nobody is signed in.
func GetAccount(r *http.Request) *session.Account {
	acct, ok := r.Context().Value(ContextKeyAccount).(session.Account)
	if !ok {
		return nil
	}
	return &acct
}

// GetOrgCode returns the active organization scope, 0 when signed out.
func GetOrgCode(r *http.Request) int64 {
	if acct := GetAccount(r); acct != nil {
		return acct.OrgCode
	}
	return 0
}
