// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package session configures the operator session and stores the signed
// in identity plus the active organization scope. Handlers receive both
// explicitly through the request context, never via globals.
package session

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
)

const (
	keyEmail   = "accountEmail"
	keyOrgCode = "orgCode"
)

// New creates a session manager backed by the local SQLite database.
func New(db *sql.DB, isDev bool) *scs.SessionManager {
	sm := scs.New()
	sm.Store = sqlite3store.New(db)
	sm.Lifetime = 24 * time.Hour
	sm.Cookie.HttpOnly = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Secure = !isDev // secure cookies in production only
	return sm
}

// Account is the signed-in operator identity.
type Account struct {
	Email   string
	OrgCode int64
}

// SignIn records the operator in the session. The token is renewed so a
// pre-login session cannot be fixated onto the signed-in one.
func SignIn(ctx context.Context, sm *scs.SessionManager, acct Account) error {
	if err := sm.RenewToken(ctx); err != nil {
		return err
	}
	sm.Put(ctx, keyEmail, acct.Email)
	sm.Put(ctx, keyOrgCode, acct.OrgCode)
	return nil
}

// SignOut destroys the session.
func SignOut(ctx context.Context, sm *scs.SessionManager) error {
	return sm.Destroy(ctx)
}

// Current returns the signed-in account, false when nobody is signed in.
func Current(ctx context.Context, sm *scs.SessionManager) (Account, bool) {
	email := sm.GetString(ctx, keyEmail)
	if email == "" {
		return Account{}, false
	}
	return Account{
		Email:   email,
		OrgCode: sm.GetInt64(ctx, keyOrgCode),
	}, true
}
