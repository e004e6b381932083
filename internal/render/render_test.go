// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package render

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/orgdesk/orgdesk/internal/localdb"
	"github.com/orgdesk/orgdesk/internal/session"
)

var testFS = fstest.MapFS{
	"layouts/base.html": {
		Data: []byte(`{{define "base"}}<html><body>{{template "main" .}}</body></html>{{end}}`),
	},
	"layouts/admin.html": {
		Data: []byte(`{{define "main"}}<nav>admin</nav>{{if .Flash}}<p class="flash-{{.FlashType}}">{{.Flash}}</p>{{end}}{{template "content" .}}{{end}}`),
	},
	"partials/footer.html": {
		Data: []byte(`{{define "footer"}}<footer>{{.CurrentYear}}</footer>{{end}}`),
	},
	"admin/entity_list.html": {
		Data: []byte(`{{define "content"}}<h1>{{.Title}}</h1>{{template "footer" .}}{{end}}`),
	},
	"auth/login.html": {
		Data: []byte(`{{define "main"}}<form>login</form>{{end}}`),
	},
}

func TestRenderAdminTemplate(t *testing.T) {
	r, err := New(Config{TemplatesFS: testFS})
	if err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if err := r.Render(rec, req, "admin/entity_list", TemplateData{Title: "Sliders"}); err != nil {
		t.Fatal(err)
	}

	body := rec.Body.String()
	if !strings.Contains(body, "<h1>Sliders</h1>") {
		t.Errorf("missing page content: %q", body)
	}
	if !strings.Contains(body, "<nav>admin</nav>") {
		t.Errorf("missing admin chrome: %q", body)
	}
	if !strings.Contains(body, "<footer>") {
		t.Errorf("missing partial: %q", body)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("content type = %q", ct)
	}
}

func TestRenderAuthTemplateSkipsAdminLayout(t *testing.T) {
	r, err := New(Config{TemplatesFS: testFS})
	if err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	if err := r.Render(rec, httptest.NewRequest(http.MethodGet, "/login", nil), "auth/login", TemplateData{}); err != nil {
		t.Fatal(err)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "<form>login</form>") {
		t.Errorf("missing login form: %q", body)
	}
	if strings.Contains(body, "<nav>admin</nav>") {
		t.Errorf("auth page rendered with admin chrome: %q", body)
	}
}

func TestRenderUnknownTemplate(t *testing.T) {
	r, err := New(Config{TemplatesFS: testFS})
	if err != nil {
		t.Fatal(err)
	}
	if err := r.Render(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil), "admin/nope", TemplateData{}); err == nil {
		t.Error("expected error for unknown template")
	}
}

func TestFlashShowsOnce(t *testing.T) {
	db, err := localdb.Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	if err := localdb.Migrate(db); err != nil {
		t.Fatal(err)
	}
	sm := session.New(db, true)

	r, err := New(Config{TemplatesFS: testFS, SessionManager: sm})
	if err != nil {
		t.Fatal(err)
	}

	var first, second string
	handler := sm.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		r.SetFlash(req, "Slider created", "success")

		rec := httptest.NewRecorder()
		if err := r.Render(rec, req, "admin/entity_list", TemplateData{}); err != nil {
			t.Fatal(err)
		}
		first = rec.Body.String()

		rec = httptest.NewRecorder()
		if err := r.Render(rec, req, "admin/entity_list", TemplateData{}); err != nil {
			t.Fatal(err)
		}
		second = rec.Body.String()
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if !strings.Contains(first, "Slider created") || !strings.Contains(first, "flash-success") {
		t.Errorf("flash missing from first render: %q", first)
	}
	if strings.Contains(second, "Slider created") {
		t.Errorf("flash repeated on second render: %q", second)
	}
}
