// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"io/fs"
	"net/http"
	"strings"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/orgdesk/orgdesk/internal/api"
	"github.com/orgdesk/orgdesk/internal/middleware"
	"github.com/orgdesk/orgdesk/internal/refdata"
	"github.com/orgdesk/orgdesk/internal/render"
	"github.com/orgdesk/orgdesk/internal/schema"
	"github.com/orgdesk/orgdesk/internal/staging"
)

// Deps carries everything the router needs.
type Deps struct {
	Client         *api.Client
	Renderer       *render.Renderer
	SessionManager *scs.SessionManager
	Staging        *staging.Store
	Refdata        *refdata.Service
	StaticFS       fs.FS
	CSRFKey        []byte
	ServerAddr     string
	IsDev          bool
	MaxUploadSize  int64
}

// Routes assembles the full admin router.
func Routes(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.GetHead)
	r.Use(middleware.SecurityHeaders(deps.IsDev))
	r.Use(deps.SessionManager.LoadAndSave)
	r.Use(middleware.CSRF(middleware.DefaultCSRFConfig(deps.CSRFKey, deps.IsDev, deps.ServerAddr)))

	auth := NewAuthHandler(deps.Renderer, deps.SessionManager)
	r.Get("/login", auth.LoginForm)
	r.Post("/login", auth.Login)
	r.Post("/logout", auth.Logout)

	if deps.StaticFS != nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(deps.StaticFS)))
		r.Get("/static/*", static.ServeHTTP)
	}

	// Staged uploads are served back for form previews.
	staged := http.StripPrefix(staging.URLPrefix, http.FileServer(http.Dir(deps.Staging.Dir())))
	r.Get(staging.URLPrefix+"*", staged.ServeHTTP)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
	})

	entities := schema.Registry()

	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.Auth(deps.SessionManager))
		r.Use(middleware.LoadAccount(deps.SessionManager))

		r.Get("/", func(w http.ResponseWriter, req *http.Request) {
			http.Redirect(w, req, entities[0].ListPath, http.StatusSeeOther)
		})

		ref := NewRefdataHandler(deps.Refdata)
		r.Get("/refdata/states", ref.States)
		r.Get("/refdata/cities", ref.Cities)

		for _, e := range entities {
			h := NewEntityHandler(EntityConfig{
				Entity:         e,
				Client:         deps.Client,
				Renderer:       deps.Renderer,
				SessionManager: deps.SessionManager,
				Staging:        deps.Staging,
				Refdata:        deps.Refdata,
				MaxUploadSize:  deps.MaxUploadSize,
			})
			registerCRUD(r, strings.TrimPrefix(e.ListPath, "/admin"), h)
		}
	})

	return r
}

// registerCRUD mounts the standard page set for one entity.
func registerCRUD(r chi.Router, base string, h *EntityHandler) {
	baseID := base + "/{id}"
	r.Get(base, h.List)
	r.Get(base+"/new", h.NewForm)
	r.Post(base, h.Create)
	r.Post(base+"/preview", h.Preview)
	r.Get(baseID, h.EditForm)
	r.Post(baseID, h.Update) // HTML forms can't send PUT
	r.Post(baseID+"/delete", h.Delete)
}
