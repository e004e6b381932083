// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package editor

import (
	"encoding/json"
	"mime"
	"mime/multipart"
	"os"
	"path/filepath"
	"testing"

	"github.com/orgdesk/orgdesk/internal/schema"
)

// parseMultipart decodes an encoded body into text values and file parts.
func parseMultipart(t *testing.T, enc *Encoded) (map[string][]string, map[string][]*multipart.FileHeader) {
	t.Helper()
	_, params, err := mime.ParseMediaType(enc.ContentType)
	if err != nil {
		t.Fatalf("parsing content type: %v", err)
	}
	form, err := multipart.NewReader(enc.Body, params["boundary"]).ReadForm(32 << 20)
	if err != nil {
		t.Fatalf("reading multipart form: %v", err)
	}
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.Value, form.File
}

func stageTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// Create-slider scenario: color background, no file selections.
func TestEncodeMultipartColorMode(t *testing.T) {
	r := NewRecord(sliderEntity(t))
	_ = r.Set("title", "Welcome")
	_ = r.Set("sliderBGType", schema.BGColor)
	_ = r.Set("sliderBGColor", "#112233")
	_ = r.Set("isActive", "1")

	enc, err := EncodeMultipart(r)
	if err != nil {
		t.Fatalf("EncodeMultipart() error = %v", err)
	}

	values, files := parseMultipart(t, enc)

	if got := values["sliderBGColor"]; len(got) != 1 || got[0] != "#112233" {
		t.Errorf("sliderBGColor = %v, want [#112233]", got)
	}
	if got := values["title"]; len(got) != 1 || got[0] != "Welcome" {
		t.Errorf("title = %v", got)
	}
	if got := values["isActive"]; len(got) != 1 || got[0] != "1" {
		t.Errorf("isActive = %v, want [1]", got)
	}
	if _, ok := files["sliderBGImg"]; ok {
		t.Error("color mode must not emit a sliderBGImg binary part")
	}
	if _, ok := files["sliderBGVideo"]; ok {
		t.Error("color mode must not emit a sliderBGVideo binary part")
	}
	if _, ok := values["sliderBGImg"]; ok {
		t.Error("color mode must not emit a sliderBGImg string part either")
	}
}

// Color mode never emits image/video binaries even when a file was staged
// earlier and left in place after the discriminant changed.
func TestEncodeMultipartColorModeIgnoresStagedSiblings(t *testing.T) {
	r := NewRecord(sliderEntity(t))
	_ = r.SetFile("sliderBGImg", &StagedFile{
		Filename: "hero.png",
		Path:     stageTempFile(t, "hero.png", "png-bytes"),
	})
	_ = r.Set("sliderBGType", schema.BGColor)

	enc, err := EncodeMultipart(r)
	if err != nil {
		t.Fatalf("EncodeMultipart() error = %v", err)
	}
	_, files := parseMultipart(t, enc)
	if len(files) != 0 {
		t.Errorf("color mode emitted file parts: %v", files)
	}
}

func TestEncodeMultipartStagedFileBecomesBinaryPart(t *testing.T) {
	r := NewRecord(sliderEntity(t))
	_ = r.Set("sliderBGType", schema.BGImage)
	_ = r.SetFile("sliderBGImg", &StagedFile{
		Filename: "hero.png",
		Path:     stageTempFile(t, "hero.png", "png-bytes"),
	})

	enc, err := EncodeMultipart(r)
	if err != nil {
		t.Fatalf("EncodeMultipart() error = %v", err)
	}
	values, files := parseMultipart(t, enc)

	headers, ok := files["sliderBGImg"]
	if !ok || len(headers) != 1 {
		t.Fatalf("sliderBGImg file parts = %v, want one", files)
	}
	if headers[0].Filename != "hero.png" {
		t.Errorf("filename = %q", headers[0].Filename)
	}
	f, err := headers[0].Open()
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	buf := make([]byte, 16)
	n, _ := f.Read(buf)
	if string(buf[:n]) != "png-bytes" {
		t.Errorf("file content = %q", buf[:n])
	}
	if _, ok := values["sliderBGImg"]; ok {
		t.Error("a staged file must not also emit a string part")
	}
}

// Edit-breadcrumb scenario: unchanged image re-sends the stored path as a
// plain string field, not a binary part.
func TestEncodeMultipartUnchangedImageResendsPath(t *testing.T) {
	e, err := schema.ByName("breadcrumb")
	if err != nil {
		t.Fatal(err)
	}
	r := RecordFromPayload(e, 3, map[string]any{
		"pageName":         "About",
		"title":            "About Us",
		"pageHeaderBGType": "image",
		"pageHeaderBGImg":  "/uploads/x.png",
	})

	enc, err := EncodeMultipart(r)
	if err != nil {
		t.Fatalf("EncodeMultipart() error = %v", err)
	}
	values, files := parseMultipart(t, enc)

	if got := values["pageHeaderBGImg"]; len(got) != 1 || got[0] != "/uploads/x.png" {
		t.Errorf("pageHeaderBGImg = %v, want the stored path string", got)
	}
	if _, ok := files["pageHeaderBGImg"]; ok {
		t.Error("unchanged image must not emit a binary part")
	}
}

// Round trip: load then encode with no edits reproduces every scalar and
// re-sends existing media paths unchanged.
func TestLoadEncodeRoundTrip(t *testing.T) {
	e := sliderEntity(t)
	payload := map[string]any{
		"title":            "Welcome",
		"titleColor":       "#112233",
		"titleFontSize":    "h2",
		"subTitle":         "Hello",
		"subTitleColor":    "#445566",
		"subTitleFontSize": "h5",
		"sliderBGType":     "image",
		"sliderBGImg":      "banners/hero.png",
		"buttonText":       "Go",
		"buttonLink":       "/go",
		"isActive":         false,
	}

	r := RecordFromPayload(e, 9, payload)
	enc, err := EncodeMultipart(r)
	if err != nil {
		t.Fatalf("EncodeMultipart() error = %v", err)
	}
	values, files := parseMultipart(t, enc)

	want := map[string]string{
		"title":            "Welcome",
		"titleColor":       "#112233",
		"titleFontSize":    "h2",
		"subTitle":         "Hello",
		"subTitleColor":    "#445566",
		"subTitleFontSize": "h5",
		"sliderBGType":     "image",
		"sliderBGImg":      "banners/hero.png",
		"buttonText":       "Go",
		"buttonLink":       "/go",
		"isActive":         "0",
	}
	for name, wantVal := range want {
		got, ok := values[name]
		if !ok || len(got) != 1 || got[0] != wantVal {
			t.Errorf("%s = %v, want [%s]", name, got, wantVal)
		}
	}
	if len(files) != 0 {
		t.Errorf("round trip emitted file parts: %v", files)
	}
	// Image mode: the color member is inactive and skipped.
	if _, ok := values["sliderBGColor"]; ok {
		t.Error("inactive sliderBGColor should be skipped in image mode")
	}
}

func TestEncodeMultipartOmitsEmptyFileField(t *testing.T) {
	r := NewRecord(sliderEntity(t))
	_ = r.Set("sliderBGType", schema.BGImage)

	enc, err := EncodeMultipart(r)
	if err != nil {
		t.Fatalf("EncodeMultipart() error = %v", err)
	}
	values, files := parseMultipart(t, enc)
	if _, ok := values["sliderBGImg"]; ok {
		t.Error("file field with neither upload nor path must be omitted")
	}
	if _, ok := files["sliderBGImg"]; ok {
		t.Error("file field with neither upload nor path must be omitted")
	}
}

func TestEncodeJSONUsesNativeTypes(t *testing.T) {
	e, err := schema.ByName("notification")
	if err != nil {
		t.Fatal(err)
	}
	r := NewRecord(e)
	_ = r.Set("title", "Maintenance")
	_ = r.Set("message", "Down at noon")
	_ = r.Set("isActive", "0")

	enc, err := EncodeJSON(r)
	if err != nil {
		t.Fatalf("EncodeJSON() error = %v", err)
	}
	if enc.ContentType != "application/json" {
		t.Errorf("ContentType = %q", enc.ContentType)
	}

	var payload map[string]any
	if err := json.Unmarshal(enc.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if payload["title"] != "Maintenance" {
		t.Errorf("title = %v", payload["title"])
	}
	if v, ok := payload["isActive"].(bool); !ok || v {
		t.Errorf("isActive = %v (%T), want native false", payload["isActive"], payload["isActive"])
	}
}

func TestEncodeDispatchesOnEntityEncoding(t *testing.T) {
	notif, _ := schema.ByName("notification")
	enc, err := Encode(NewRecord(notif))
	if err != nil {
		t.Fatal(err)
	}
	if enc.ContentType != "application/json" {
		t.Errorf("notification encoding = %q, want application/json", enc.ContentType)
	}

	enc, err = Encode(NewRecord(sliderEntity(t)))
	if err != nil {
		t.Fatal(err)
	}
	if _, params, _ := mime.ParseMediaType(enc.ContentType); params["boundary"] == "" {
		t.Errorf("slider encoding = %q, want multipart", enc.ContentType)
	}
}
