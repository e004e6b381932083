// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package editor

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/orgdesk/orgdesk/internal/api"
	"github.com/orgdesk/orgdesk/internal/schema"
)

// Editor drives the full edit lifecycle of one entity type against the
// remote API: load, validate, encode, submit, delete. The client must
// already be tenant-scoped for tenanted entities.
type Editor struct {
	client   *api.Client
	entity   *schema.Entity
	validate *validator.Validate
}

// New creates an Editor for one entity.
func New(client *api.Client, entity *schema.Entity) *Editor {
	return &Editor{
		client:   client,
		entity:   entity,
		validate: validator.New(),
	}
}

// Entity returns the schema descriptor.
func (e *Editor) Entity() *schema.Entity {
	return e.entity
}

// NewRecord returns an empty record at field defaults (create flow).
func (e *Editor) NewRecord() *Record {
	return NewRecord(e.entity)
}

// Load fetches one record by id and maps it onto a Record, substituting
// defaults for absent fields. Tenant scoping rides on the client.
func (e *Editor) Load(ctx context.Context, id int64) (*Record, error) {
	var payload map[string]any
	if err := e.client.GetJSON(ctx, e.entity.ItemEndpoint(id), nil, &payload); err != nil {
		return nil, fmt.Errorf("loading %s %d: %w", e.entity.Name, id, err)
	}
	return RecordFromPayload(e.entity, id, payload), nil
}

// Create encodes the record and POSTs it to the entity endpoint.
func (e *Editor) Create(ctx context.Context, r *Record) error {
	enc, err := Encode(r)
	if err != nil {
		return err
	}
	if err := e.client.Submit(ctx, http.MethodPost, e.entity.Endpoint, enc.ContentType, enc.Body); err != nil {
		return fmt.Errorf("creating %s: %w", e.entity.Name, err)
	}
	return nil
}

// Update encodes the record and PUTs it to the item endpoint. The whole
// record is written; the remote API has no partial-patch semantics.
func (e *Editor) Update(ctx context.Context, r *Record) error {
	if r.ID() == 0 {
		return fmt.Errorf("updating %s: record has no id", e.entity.Name)
	}
	enc, err := Encode(r)
	if err != nil {
		return err
	}
	if err := e.client.Submit(ctx, http.MethodPut, e.entity.ItemEndpoint(r.ID()), enc.ContentType, enc.Body); err != nil {
		return fmt.Errorf("updating %s %d: %w", e.entity.Name, r.ID(), err)
	}
	return nil
}

// Delete issues a DELETE for one record. Callers are responsible for the
// interactive confirmation gate; Delete itself always fires.
func (e *Editor) Delete(ctx context.Context, id int64) error {
	if err := e.client.Delete(ctx, e.entity.ItemEndpoint(id)); err != nil {
		return fmt.Errorf("deleting %s %d: %w", e.entity.Name, id, err)
	}
	return nil
}

// ListItem is one row of an entity listing.
type ListItem struct {
	ID     int64
	Label  string
	Active bool
}

// List fetches the entity listing. Both a bare JSON array and a
// {"data": [...]} wrapper are accepted.
func (e *Editor) List(ctx context.Context) ([]ListItem, error) {
	var raw json.RawMessage
	if err := e.client.GetJSON(ctx, e.entity.Endpoint, nil, &raw); err != nil {
		return nil, fmt.Errorf("listing %s: %w", e.entity.Name, err)
	}

	var rows []map[string]any
	if err := json.Unmarshal(raw, &rows); err != nil {
		var wrapped struct {
			Data []map[string]any `json:"data"`
		}
		if err := json.Unmarshal(raw, &wrapped); err != nil {
			return nil, fmt.Errorf("listing %s: unexpected response shape", e.entity.Name)
		}
		rows = wrapped.Data
	}

	items := make([]ListItem, 0, len(rows))
	for _, row := range rows {
		item := ListItem{Label: e.labelFor(row)}
		if id, ok := row["id"]; ok {
			item.ID = int64(coerceFloat(id))
		}
		if v, ok := row["isActive"]; ok {
			item.Active = coerceBool(v)
		}
		items = append(items, item)
	}
	return items, nil
}

// labelFor picks a display label: the first required text field present,
// falling back to the first non-empty text value.
func (e *Editor) labelFor(row map[string]any) string {
	var fallback string
	for _, f := range e.entity.Fields {
		if f.Kind != schema.KindText {
			continue
		}
		s := coerceString(row[f.Name])
		if s == "" {
			continue
		}
		if f.Required {
			return s
		}
		if fallback == "" {
			fallback = s
		}
	}
	return fallback
}

func coerceFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case json.Number:
		f, _ := val.Float64()
		return f
	case string:
		var f float64
		_, _ = fmt.Sscanf(val, "%g", &f)
		return f
	default:
		return 0
	}
}

// Validate runs the pre-submission checks the forms rely on: required
// fields, color format, numeric format and enum membership. Returns a
// field-name -> message map, empty when the record is valid.
func (e *Editor) Validate(r *Record) map[string]string {
	errs := make(map[string]string)

	for _, f := range e.entity.Fields {
		if r.mediaInactive(f.Name) {
			continue
		}

		if f.Kind == schema.KindFile {
			if f.Required && r.File(f.Name) == nil && r.Existing(f.Name) == "" {
				errs[f.Name] = f.Label + " is required"
			}
			continue
		}

		v := r.Value(f.Name)
		if f.Required && strings.TrimSpace(v) == "" {
			errs[f.Name] = f.Label + " is required"
			continue
		}
		if v == "" {
			continue
		}

		switch f.Kind {
		case schema.KindColor:
			if err := e.validate.Var(v, "hexcolor"); err != nil {
				errs[f.Name] = f.Label + " must be a hex color"
			}
		case schema.KindNumber:
			if err := e.validate.Var(v, "numeric"); err != nil {
				errs[f.Name] = f.Label + " must be a number"
			}
		case schema.KindEnum, schema.KindFontSize:
			if len(f.Options) > 0 {
				if err := e.validate.Var(v, "oneof="+strings.Join(f.Options, " ")); err != nil {
					errs[f.Name] = f.Label + " has an invalid value"
				}
			}
		}
	}
	return errs
}
