// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package editor implements the generic entity editing pipeline: the form
// state record, the remote loader, the submission encoder and the
// submitter. One implementation serves every registered entity; pages
// differ only by their schema descriptor.
package editor

import (
	"fmt"

	"github.com/orgdesk/orgdesk/internal/schema"
)

// StagedFile references a freshly chosen upload held in the local staging
// area until submission.
type StagedFile struct {
	Filename string
	Path     string // local path holding the staged bytes
	Size     int64
	MimeType string
	PreviewURL string // local URL the preview uses instead of the remote path
}

// Record is the in-progress edit of one entity instance. Scalar values are
// stored as strings (booleans as "1"/"0"), fresh uploads as staged file
// references, and the previously stored remote path of each file field in
// a separate existing-path map. The existing paths drive the encoder's
// keep-or-replace decision and are never submitted as fields themselves.
type Record struct {
	entity   *schema.Entity
	id       int64
	values   map[string]string
	files    map[string]*StagedFile
	existing map[string]string
}

// NewRecord creates an empty record with every field at its default.
func NewRecord(entity *schema.Entity) *Record {
	r := &Record{
		entity:   entity,
		values:   make(map[string]string, len(entity.Fields)),
		files:    make(map[string]*StagedFile),
		existing: make(map[string]string),
	}
	for _, f := range entity.Fields {
		if f.Kind != schema.KindFile && f.Default != "" {
			r.values[f.Name] = f.Default
		}
	}
	return r
}

// Entity returns the schema descriptor this record edits.
func (r *Record) Entity() *schema.Entity {
	return r.entity
}

// ID returns the remote primary key, 0 for unsaved records.
func (r *Record) ID() int64 {
	return r.id
}

// SetID sets the remote primary key.
func (r *Record) SetID(id int64) {
	r.id = id
}

// Set replaces the value of exactly one scalar field. Sibling fields are
// never touched: switching a background discriminant away from "image"
// does not clear a previously staged image. Unknown fields and file
// fields are rejected.
func (r *Record) Set(name, value string) error {
	f, ok := r.entity.Field(name)
	if !ok {
		return fmt.Errorf("entity %q has no field %q", r.entity.Name, name)
	}
	if f.Kind == schema.KindFile {
		return fmt.Errorf("field %q is a file field, use SetFile", name)
	}
	r.values[name] = value
	return nil
}

// Value returns the current value of a scalar field.
func (r *Record) Value(name string) string {
	return r.values[name]
}

// Bool reports whether a bool field is set. Stored form is "1"/"0".
func (r *Record) Bool(name string) bool {
	return r.values[name] == "1"
}

// SetFile stages a fresh upload for a file field.
func (r *Record) SetFile(name string, f *StagedFile) error {
	fd, ok := r.entity.Field(name)
	if !ok {
		return fmt.Errorf("entity %q has no field %q", r.entity.Name, name)
	}
	if fd.Kind != schema.KindFile {
		return fmt.Errorf("field %q is not a file field", name)
	}
	r.files[name] = f
	return nil
}

// File returns the staged upload for a field, nil if none.
func (r *Record) File(name string) *StagedFile {
	return r.files[name]
}

// ClearFile removes a staged upload. Clearing is only ever an explicit
// user action, never a side effect of another mutation.
func (r *Record) ClearFile(name string) {
	delete(r.files, name)
}

// SetExisting stashes the remote path a file field currently holds on the
// server, so an untouched field re-sends the path instead of nulling the
// stored file.
func (r *Record) SetExisting(name, path string) error {
	fd, ok := r.entity.Field(name)
	if !ok {
		return fmt.Errorf("entity %q has no field %q", r.entity.Name, name)
	}
	if fd.Kind != schema.KindFile {
		return fmt.Errorf("field %q is not a file field", name)
	}
	r.existing[name] = path
	return nil
}

// Existing returns the stored remote path for a file field, "" if none.
func (r *Record) Existing(name string) string {
	return r.existing[name]
}

// ActiveMember returns the field name selected by a media group's
// discriminant for this record's current state.
func (r *Record) ActiveMember(g *schema.MediaGroup) string {
	return g.Member(r.Value(g.TypeField))
}

// mediaInactive reports whether the named field is a media-group member
// that the discriminant currently deselects. Inactive members are ignored
// by the encoder and the preview.
func (r *Record) mediaInactive(name string) bool {
	g, ok := r.entity.GroupFor(name)
	if !ok || name == g.TypeField {
		return false
	}
	return name != r.ActiveMember(g)
}
