// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package schema describes editable content records as data. Every admin
// page is driven by one Entity descriptor: its fields, their kinds and
// defaults, and the media groups gated by a background discriminant.
// The encode/decode/preview logic is written once against these
// descriptors instead of per page.
package schema

import (
	"fmt"
	"strings"
	"sync"
)

// Kind identifies how a field is edited, encoded and previewed.
type Kind string

// Field kinds
const (
	KindText     Kind = "text"
	KindTextarea Kind = "textarea"
	KindColor    Kind = "color"
	KindEnum     Kind = "enum"
	KindBool     Kind = "bool"
	KindFile     Kind = "file"
	KindNumber   Kind = "number"
	KindFontSize Kind = "fontsize"
	KindMarkdown Kind = "markdown"
	KindRef      Kind = "reference"
)

// Background discriminant values. Exactly one media-group member is active
// at a time, selected by the group's *Type field.
const (
	BGColor = "color"
	BGImage = "image"
	BGVideo = "video"
)

// BGTypeOptions lists every background discriminant value. A group
// without a video member offers only the first two.
var BGTypeOptions = []string{BGColor, BGImage, BGVideo}

// Field describes one editable field of an entity.
type Field struct {
	Name     string
	Label    string
	Kind     Kind
	Default  string
	Required bool
	Options  []string // valid values for KindEnum
	Accept   string   // file input accept attribute for KindFile
	Ref      string   // reference-data level for KindRef: country, state, city
}

// MediaGroup ties a background discriminant to its member fields.
// Members not selected by the discriminant are ignored by both the
// submission encoder and the preview renderer.
type MediaGroup struct {
	TypeField string // the *Type enum field name
	Color     string // color member field name
	Image     string // image member field name
	Video     string // video member field name, empty if unsupported
}

// Member returns the member field name for a discriminant value.
func (g MediaGroup) Member(bgType string) string {
	switch bgType {
	case BGColor:
		return g.Color
	case BGImage:
		return g.Image
	case BGVideo:
		return g.Video
	default:
		return ""
	}
}

// Members returns all non-empty member field names.
func (g MediaGroup) Members() []string {
	var out []string
	for _, m := range []string{g.Color, g.Image, g.Video} {
		if m != "" {
			out = append(out, m)
		}
	}
	return out
}

// Encoding selects the request body format for create/update submissions.
type Encoding string

// Submission encodings
const (
	EncodingMultipart Encoding = "multipart"
	EncodingJSON      Encoding = "json"
)

// Entity describes one editable content record type and its remote endpoint.
type Entity struct {
	Name        string // machine name, e.g. "slider"
	Singular    string // display label, e.g. "Slider"
	Plural      string // display label, e.g. "Sliders"
	Endpoint    string // remote API resource path, e.g. "/api/slider"
	ListPath    string // admin listing page path, e.g. "/admin/sliders"
	Encoding    Encoding
	Tenanted    bool   // scoped by OrgCode
	SlugSource  string // field whose value derives a slug, empty if none
	Fields      []Field
	MediaGroups []MediaGroup

	indexOnce  sync.Once
	fieldIndex map[string]int
	groupIndex map[string]int // member or type field name -> group index
}

// Field returns the field descriptor with the given name.
func (e *Entity) Field(name string) (*Field, bool) {
	e.buildIndexes()
	i, ok := e.fieldIndex[name]
	if !ok {
		return nil, false
	}
	return &e.Fields[i], true
}

// GroupFor returns the media group that the named field belongs to,
// either as a member or as the discriminant itself.
func (e *Entity) GroupFor(name string) (*MediaGroup, bool) {
	e.buildIndexes()
	i, ok := e.groupIndex[name]
	if !ok {
		return nil, false
	}
	return &e.MediaGroups[i], true
}

// ItemEndpoint returns the remote path for one record, e.g. /api/slider/42.
func (e *Entity) ItemEndpoint(id int64) string {
	return fmt.Sprintf("%s/%d", e.Endpoint, id)
}

// EditPath returns the admin edit page path for one record.
func (e *Entity) EditPath(id int64) string {
	return fmt.Sprintf("%s/%d", e.ListPath, id)
}

// NewPath returns the admin create page path.
func (e *Entity) NewPath() string {
	return e.ListPath + "/new"
}

// buildIndexes populates the lookup maps exactly once. Registry calls it
// before a descriptor can be shared across goroutines; Field and GroupFor
// fall back to it for descriptors constructed directly.
func (e *Entity) buildIndexes() {
	e.indexOnce.Do(func() {
		e.fieldIndex = make(map[string]int, len(e.Fields))
		for i, f := range e.Fields {
			e.fieldIndex[f.Name] = i
		}
		e.groupIndex = make(map[string]int)
		for i, g := range e.MediaGroups {
			e.groupIndex[g.TypeField] = i
			for _, m := range g.Members() {
				e.groupIndex[m] = i
			}
		}
	})
}

// Validate checks the descriptor for internal consistency. Called once at
// startup for every registered entity.
func (e *Entity) Validate() error {
	if e.Name == "" || e.Endpoint == "" || e.ListPath == "" {
		return fmt.Errorf("entity %q: name, endpoint and list path are required", e.Name)
	}
	if e.Encoding != EncodingMultipart && e.Encoding != EncodingJSON {
		return fmt.Errorf("entity %q: unknown encoding %q", e.Name, e.Encoding)
	}
	seen := make(map[string]bool, len(e.Fields))
	for _, f := range e.Fields {
		if f.Name == "" {
			return fmt.Errorf("entity %q: field with empty name", e.Name)
		}
		if seen[f.Name] {
			return fmt.Errorf("entity %q: duplicate field %q", e.Name, f.Name)
		}
		seen[f.Name] = true
		if f.Kind == KindEnum && len(f.Options) == 0 {
			return fmt.Errorf("entity %q: enum field %q has no options", e.Name, f.Name)
		}
		if strings.HasPrefix(f.Name, "current") {
			// Existing-path shadows are modeled on the record, never as fields.
			return fmt.Errorf("entity %q: field %q uses the reserved current* prefix", e.Name, f.Name)
		}
	}
	for _, g := range e.MediaGroups {
		if !seen[g.TypeField] {
			return fmt.Errorf("entity %q: media group references unknown type field %q", e.Name, g.TypeField)
		}
		for _, m := range g.Members() {
			if !seen[m] {
				return fmt.Errorf("entity %q: media group references unknown member %q", e.Name, m)
			}
		}
	}
	return nil
}
