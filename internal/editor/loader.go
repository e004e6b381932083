// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package editor

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/orgdesk/orgdesk/internal/schema"
)

// RecordFromPayload maps a remote API response onto a fresh record.
// Every schema field absent from the payload gets its documented default;
// file fields are never treated as uploads, their stored path goes into
// the existing-path map so the preview can still resolve a URL.
func RecordFromPayload(entity *schema.Entity, id int64, payload map[string]any) *Record {
	r := NewRecord(entity)
	r.id = id

	for _, f := range entity.Fields {
		raw, ok := payload[f.Name]
		if !ok || raw == nil {
			if f.Kind != schema.KindFile {
				r.values[f.Name] = f.Default
			}
			continue
		}

		switch f.Kind {
		case schema.KindFile:
			if s := coerceString(raw); s != "" {
				r.existing[f.Name] = s
			}
		case schema.KindBool:
			r.values[f.Name] = boolString(coerceBool(raw))
		case schema.KindFontSize:
			r.values[f.Name] = string(schema.ParseFontSize(coerceString(raw)))
		default:
			s := coerceString(raw)
			if s == "" {
				s = f.Default
			}
			r.values[f.Name] = s
		}
	}
	return r
}

// coerceString renders a decoded JSON value as a form string.
func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return boolString(val)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", val)
	}
}

// coerceBool accepts the forms the remote API has been observed to emit:
// JSON booleans, 0/1 numbers and "true"/"false"/"0"/"1" strings.
func coerceBool(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case float64:
		return val != 0
	case json.Number:
		return val.String() != "0"
	case string:
		return val == "1" || val == "true"
	default:
		return false
	}
}

// boolString is the single boolean wire convention: "1" or "0".
func boolString(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
