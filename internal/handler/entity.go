// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package handler serves the admin pages. One generic EntityHandler is
// mounted per registered entity; every page fetches and submits through
// the remote content API, scoped by the operator's organization.
package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"

	"github.com/orgdesk/orgdesk/internal/api"
	"github.com/orgdesk/orgdesk/internal/editor"
	"github.com/orgdesk/orgdesk/internal/middleware"
	"github.com/orgdesk/orgdesk/internal/preview"
	"github.com/orgdesk/orgdesk/internal/refdata"
	"github.com/orgdesk/orgdesk/internal/render"
	"github.com/orgdesk/orgdesk/internal/schema"
	"github.com/orgdesk/orgdesk/internal/staging"
	"github.com/orgdesk/orgdesk/internal/util"
)

// DefaultMaxUploadSize caps multipart form memory when no limit is
// configured.
const DefaultMaxUploadSize = 32 << 20

// EntityHandler serves the CRUD pages for one registered entity.
type EntityHandler struct {
	entity         *schema.Entity
	client         *api.Client
	renderer       *render.Renderer
	sessionManager *scs.SessionManager
	staging        *staging.Store
	preview        *preview.Renderer
	refdata        *refdata.Service
	maxUploadSize  int64
}

// EntityConfig wires an EntityHandler's dependencies.
type EntityConfig struct {
	Entity         *schema.Entity
	Client         *api.Client
	Renderer       *render.Renderer
	SessionManager *scs.SessionManager
	Staging        *staging.Store
	Refdata        *refdata.Service
	MaxUploadSize  int64
}

// NewEntityHandler creates a handler for one entity.
func NewEntityHandler(cfg EntityConfig) *EntityHandler {
	maxUpload := cfg.MaxUploadSize
	if maxUpload == 0 {
		maxUpload = DefaultMaxUploadSize
	}
	return &EntityHandler{
		entity:         cfg.Entity,
		client:         cfg.Client,
		renderer:       cfg.Renderer,
		sessionManager: cfg.SessionManager,
		staging:        cfg.Staging,
		preview:        preview.New(cfg.Client),
		refdata:        cfg.Refdata,
		maxUploadSize:  maxUpload,
	}
}

// editorFor returns an Editor scoped to the request's organization.
func (h *EntityHandler) editorFor(r *http.Request) *editor.Editor {
	client := h.client
	if h.entity.Tenanted {
		client = client.ForOrg(middleware.GetOrgCode(r))
	}
	return editor.New(client, h.entity)
}

// entityListData holds data for the listing template.
type entityListData struct {
	Entity *schema.Entity
	Items  []editor.ListItem
}

// List handles GET {listPath} - the entity's listing page.
func (h *EntityHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.editorFor(r).List(r.Context())
	if err != nil {
		slog.Error("failed to list entities", "entity", h.entity.Name, "error", err)
		h.renderer.SetFlash(r, "Error loading "+h.entity.Plural, "error")
		items = nil
	}

	h.renderPage(w, r, "admin/entity_list", h.entity.Plural, entityListData{
		Entity: h.entity,
		Items:  items,
	}, nil)
}

// entityFormData holds data for the form template.
type entityFormData struct {
	Entity  *schema.Entity
	Record  *editor.Record
	Errors  map[string]string
	IsEdit  bool
	RefData *refdataLists
}

// NewForm handles GET {listPath}/new - a blank form with defaults.
func (h *EntityHandler) NewForm(w http.ResponseWriter, r *http.Request) {
	rec := h.editorFor(r).NewRecord()
	h.renderForm(w, r, rec, nil, false)
}

// Create handles POST {listPath} - submits a new record to the API.
func (h *EntityHandler) Create(w http.ResponseWriter, r *http.Request) {
	ed := h.editorFor(r)
	rec := ed.NewRecord()
	if err := h.populateRecord(r, rec); err != nil {
		slog.Error("failed to read form", "entity", h.entity.Name, "error", err)
		h.renderer.SetFlash(r, "Invalid form data", "error")
		http.Redirect(w, r, h.entity.NewPath(), http.StatusSeeOther)
		return
	}

	if errs := h.validate(ed, rec); len(errs) > 0 {
		h.renderForm(w, r, rec, errs, false)
		return
	}

	if err := ed.Create(r.Context(), rec); err != nil {
		slog.Error("failed to create entity", "entity", h.entity.Name, "error", err)
		h.renderer.SetFlash(r, "Error creating "+h.entity.Singular, "error")
		h.renderForm(w, r, rec, nil, false)
		return
	}

	h.renderer.SetFlash(r, h.entity.Singular+" created successfully", "success")
	http.Redirect(w, r, h.entity.ListPath, http.StatusSeeOther)
}

// EditForm handles GET {listPath}/{id} - loads the record from the API
// and renders the populated form.
func (h *EntityHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	id, err := h.idParam(r)
	if err != nil {
		h.renderer.SetFlash(r, "Invalid "+h.entity.Singular+" ID", "error")
		http.Redirect(w, r, h.entity.ListPath, http.StatusSeeOther)
		return
	}

	rec, err := h.editorFor(r).Load(r.Context(), id)
	if err != nil {
		if api.IsNotFound(err) {
			h.renderer.SetFlash(r, h.entity.Singular+" not found", "error")
		} else {
			slog.Error("failed to load entity", "entity", h.entity.Name, "id", id, "error", err)
			h.renderer.SetFlash(r, "Error loading "+h.entity.Singular, "error")
		}
		http.Redirect(w, r, h.entity.ListPath, http.StatusSeeOther)
		return
	}

	h.renderForm(w, r, rec, nil, true)
}

// Update handles POST {listPath}/{id} - rebuilds the record from the
// submitted form and PUTs it to the API. Unchanged files travel as
// their stored paths, not binaries.
func (h *EntityHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := h.idParam(r)
	if err != nil {
		h.renderer.SetFlash(r, "Invalid "+h.entity.Singular+" ID", "error")
		http.Redirect(w, r, h.entity.ListPath, http.StatusSeeOther)
		return
	}

	ed := h.editorFor(r)
	rec := ed.NewRecord()
	rec.SetID(id)
	if err := h.populateRecord(r, rec); err != nil {
		slog.Error("failed to read form", "entity", h.entity.Name, "error", err)
		h.renderer.SetFlash(r, "Invalid form data", "error")
		http.Redirect(w, r, h.entity.EditPath(id), http.StatusSeeOther)
		return
	}

	if errs := h.validate(ed, rec); len(errs) > 0 {
		h.renderForm(w, r, rec, errs, true)
		return
	}

	if err := ed.Update(r.Context(), rec); err != nil {
		slog.Error("failed to update entity", "entity", h.entity.Name, "id", id, "error", err)
		h.renderer.SetFlash(r, "Error updating "+h.entity.Singular, "error")
		h.renderForm(w, r, rec, nil, true)
		return
	}

	h.renderer.SetFlash(r, h.entity.Singular+" updated successfully", "success")
	http.Redirect(w, r, h.entity.ListPath, http.StatusSeeOther)
}

// Delete handles POST {listPath}/{id}/delete. The confirmation field is
// checked before anything goes over the wire: an unconfirmed delete
// issues zero network requests.
func (h *EntityHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := h.idParam(r)
	if err != nil {
		http.Error(w, "Invalid "+h.entity.Singular+" ID", http.StatusBadRequest)
		return
	}

	if err := r.ParseForm(); err != nil || r.FormValue("confirm") != "1" {
		h.renderer.SetFlash(r, "Deletion not confirmed", "error")
		http.Redirect(w, r, h.entity.ListPath, http.StatusSeeOther)
		return
	}

	if err := h.editorFor(r).Delete(r.Context(), id); err != nil {
		slog.Error("failed to delete entity", "entity", h.entity.Name, "id", id, "error", err)
		h.renderer.SetFlash(r, "Error deleting "+h.entity.Singular, "error")
		http.Redirect(w, r, h.entity.ListPath, http.StatusSeeOther)
		return
	}

	// For HTMX requests, return empty response (row removed).
	if r.Header.Get("HX-Request") == "true" {
		w.WriteHeader(http.StatusOK)
		return
	}

	h.renderer.SetFlash(r, h.entity.Singular+" deleted successfully", "success")
	http.Redirect(w, r, h.entity.ListPath, http.StatusSeeOther)
}

// Preview handles POST {listPath}/preview - renders the visual preview
// fragment from the submitted form state without touching the API.
func (h *EntityHandler) Preview(w http.ResponseWriter, r *http.Request) {
	rec := h.editorFor(r).NewRecord()
	if err := h.populateRecord(r, rec); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	html, err := h.preview.Render(rec)
	if err != nil {
		slog.Error("failed to render preview", "entity", h.entity.Name, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(html))
}

// populateRecord fills a record from the submitted form. File inputs
// are staged locally; hidden existing_<field> inputs carry the stored
// remote paths so an untouched file keeps its path.
func (h *EntityHandler) populateRecord(r *http.Request, rec *editor.Record) error {
	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
			return err
		}
	} else {
		if err := r.ParseForm(); err != nil {
			return err
		}
	}

	for _, f := range h.entity.Fields {
		switch f.Kind {
		case schema.KindFile:
			if existing := strings.TrimSpace(r.FormValue("existing_" + f.Name)); existing != "" {
				if err := rec.SetExisting(f.Name, existing); err != nil {
					return err
				}
			}
			if err := h.stageUpload(r, rec, f.Name); err != nil {
				return err
			}
		case schema.KindBool:
			// Checkboxes are absent when unchecked.
			v := "0"
			if fv := r.FormValue(f.Name); fv == "1" || fv == "on" {
				v = "1"
			}
			if err := rec.Set(f.Name, v); err != nil {
				return err
			}
		default:
			v := strings.TrimSpace(r.FormValue(f.Name))
			if v == "" && f.Default != "" {
				// Keep the default instead of clearing enum-like
				// fields that were not submitted.
				continue
			}
			if err := rec.Set(f.Name, v); err != nil {
				return err
			}
		}
	}

	if h.entity.SlugSource != "" {
		if _, ok := h.entity.Field("slug"); ok && rec.Value("slug") == "" {
			if err := rec.Set("slug", util.Slugify(rec.Value(h.entity.SlugSource))); err != nil {
				return err
			}
		}
	}
	return nil
}

// stageUpload stages one uploaded file onto the record, if present.
func (h *EntityHandler) stageUpload(r *http.Request, rec *editor.Record, name string) error {
	if h.staging == nil || r.MultipartForm == nil {
		return nil
	}
	file, header, err := r.FormFile(name)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil
		}
		return err
	}
	defer file.Close()

	st, err := h.staging.Stage(r.Context(), header.Filename, file)
	if err != nil {
		return err
	}
	return rec.SetFile(name, &editor.StagedFile{
		Filename:   st.OriginalName,
		Path:       st.Path,
		Size:       st.Size,
		MimeType:   st.MimeType,
		PreviewURL: st.PreviewURL(),
	})
}

// validate runs schema validation plus slug format checking.
func (h *EntityHandler) validate(ed *editor.Editor, rec *editor.Record) map[string]string {
	errs := ed.Validate(rec)
	if _, ok := h.entity.Field("slug"); ok {
		if slug := rec.Value("slug"); slug != "" && !util.IsValidSlug(slug) {
			if errs == nil {
				errs = make(map[string]string)
			}
			errs["slug"] = "Invalid slug format (use lowercase letters, numbers, and hyphens)"
		}
	}
	return errs
}

func (h *EntityHandler) renderForm(w http.ResponseWriter, r *http.Request, rec *editor.Record, errs map[string]string, isEdit bool) {
	data := entityFormData{
		Entity: h.entity,
		Record: rec,
		Errors: errs,
		IsEdit: isEdit,
	}
	if h.hasRefFields() {
		data.RefData = h.loadRefData(r, rec)
	}

	title := "New " + h.entity.Singular
	if isEdit {
		title = "Edit " + h.entity.Singular
	}
	h.renderPage(w, r, "admin/entity_form", title, data, errs)
}

func (h *EntityHandler) renderPage(w http.ResponseWriter, r *http.Request, tmpl, title string, data any, errs map[string]string) {
	err := h.renderer.Render(w, r, tmpl, render.TemplateData{
		Title:   title,
		Account: middleware.GetAccount(r),
		Nav:     navEntries(),
		Data:    data,
		Errors:  errs,
	})
	if err != nil {
		slog.Error("render error", "template", tmpl, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func (h *EntityHandler) hasRefFields() bool {
	for _, f := range h.entity.Fields {
		if f.Kind == schema.KindRef {
			return true
		}
	}
	return false
}

func (h *EntityHandler) idParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// navEntries builds the sidebar from the registry.
func navEntries() []render.NavEntry {
	entities := schema.Registry()
	nav := make([]render.NavEntry, 0, len(entities))
	for _, e := range entities {
		nav = append(nav, render.NavEntry{Label: e.Plural, Path: e.ListPath})
	}
	return nav
}
