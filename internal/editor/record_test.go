// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package editor

import (
	"testing"

	"github.com/orgdesk/orgdesk/internal/schema"
)

func sliderEntity(t *testing.T) *schema.Entity {
	t.Helper()
	e, err := schema.ByName("slider")
	if err != nil {
		t.Fatalf("ByName(slider) error = %v", err)
	}
	return e
}

func TestNewRecordAppliesDefaults(t *testing.T) {
	r := NewRecord(sliderEntity(t))

	if got := r.Value("titleFontSize"); got != "h1" {
		t.Errorf("titleFontSize default = %q, want h1", got)
	}
	if got := r.Value("sliderBGType"); got != schema.BGColor {
		t.Errorf("sliderBGType default = %q, want color", got)
	}
	if !r.Bool("isActive") {
		t.Error("isActive should default to true")
	}
	if got := r.Value("title"); got != "" {
		t.Errorf("title default = %q, want empty", got)
	}
}

func TestSetUpdatesExactlyOneField(t *testing.T) {
	r := NewRecord(sliderEntity(t))
	if err := r.Set("title", "Welcome"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	if r.Value("title") != "Welcome" {
		t.Errorf("title = %q", r.Value("title"))
	}
	// Siblings untouched
	if r.Value("titleColor") != "#000000" {
		t.Errorf("titleColor changed to %q", r.Value("titleColor"))
	}
	if r.Value("subTitle") != "" {
		t.Errorf("subTitle changed to %q", r.Value("subTitle"))
	}
}

func TestSetRejectsUnknownField(t *testing.T) {
	r := NewRecord(sliderEntity(t))
	if err := r.Set("nope", "x"); err == nil {
		t.Error("Set() should reject unknown fields")
	}
}

func TestSetRejectsFileField(t *testing.T) {
	r := NewRecord(sliderEntity(t))
	if err := r.Set("sliderBGImg", "x.png"); err == nil {
		t.Error("Set() should reject file fields")
	}
}

func TestDiscriminantChangeDoesNotClearStagedFile(t *testing.T) {
	r := NewRecord(sliderEntity(t))
	staged := &StagedFile{Filename: "hero.png", Path: "/tmp/hero.png"}
	if err := r.SetFile("sliderBGImg", staged); err != nil {
		t.Fatalf("SetFile() error = %v", err)
	}
	if err := r.Set("sliderBGType", schema.BGImage); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	// Switch away from image mode
	if err := r.Set("sliderBGType", schema.BGColor); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	if r.File("sliderBGImg") != staged {
		t.Error("staged file must survive a discriminant change")
	}

	// Only explicit ClearFile removes it
	r.ClearFile("sliderBGImg")
	if r.File("sliderBGImg") != nil {
		t.Error("ClearFile should remove the staged file")
	}
}

func TestSetFileRejectsScalarField(t *testing.T) {
	r := NewRecord(sliderEntity(t))
	if err := r.SetFile("title", &StagedFile{}); err == nil {
		t.Error("SetFile() should reject non-file fields")
	}
}

func TestExistingPathStash(t *testing.T) {
	r := NewRecord(sliderEntity(t))
	if err := r.SetExisting("sliderBGImg", "/uploads/x.png"); err != nil {
		t.Fatalf("SetExisting() error = %v", err)
	}
	if got := r.Existing("sliderBGImg"); got != "/uploads/x.png" {
		t.Errorf("Existing() = %q", got)
	}
	if err := r.SetExisting("title", "x"); err == nil {
		t.Error("SetExisting() should reject non-file fields")
	}
}

func TestActiveMember(t *testing.T) {
	e := sliderEntity(t)
	r := NewRecord(e)
	g, _ := e.GroupFor("sliderBGType")

	if got := r.ActiveMember(g); got != "sliderBGColor" {
		t.Errorf("ActiveMember() = %q, want sliderBGColor (default color mode)", got)
	}

	_ = r.Set("sliderBGType", schema.BGVideo)
	if got := r.ActiveMember(g); got != "sliderBGVideo" {
		t.Errorf("ActiveMember() = %q, want sliderBGVideo", got)
	}
}
