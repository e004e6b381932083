// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package editor

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"strconv"

	"github.com/orgdesk/orgdesk/internal/schema"
)

// Encoded is a request body ready for submission.
type Encoded struct {
	ContentType string
	Body        *bytes.Buffer
}

// Encode produces the request body for the record's entity encoding.
func Encode(r *Record) (*Encoded, error) {
	if r.entity.Encoding == schema.EncodingJSON {
		return EncodeJSON(r)
	}
	return EncodeMultipart(r)
}

// EncodeMultipart converts the record into a multipart/form-data body.
// Per-field rules:
//   - a staged upload is appended as a binary part under its field name;
//   - otherwise a previously stored path is appended as a plain string
//     under the same name, so the server keeps the stored file;
//   - a file field with neither is omitted;
//   - media-group members deselected by the discriminant are skipped;
//   - booleans serialize as "1"/"0", every other scalar by stringification;
//   - existing-path shadows are never written as their own parts.
func EncodeMultipart(r *Record) (*Encoded, error) {
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)

	for _, f := range r.entity.Fields {
		if r.mediaInactive(f.Name) {
			continue
		}

		switch f.Kind {
		case schema.KindFile:
			if staged := r.files[f.Name]; staged != nil {
				if err := writeFilePart(w, f.Name, staged); err != nil {
					return nil, err
				}
				continue
			}
			if path := r.existing[f.Name]; path != "" {
				if err := w.WriteField(f.Name, path); err != nil {
					return nil, fmt.Errorf("writing field %q: %w", f.Name, err)
				}
			}
		case schema.KindBool:
			if err := w.WriteField(f.Name, boolString(r.Bool(f.Name))); err != nil {
				return nil, fmt.Errorf("writing field %q: %w", f.Name, err)
			}
		default:
			if err := w.WriteField(f.Name, r.Value(f.Name)); err != nil {
				return nil, fmt.Errorf("writing field %q: %w", f.Name, err)
			}
		}
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("closing multipart body: %w", err)
	}
	return &Encoded{ContentType: w.FormDataContentType(), Body: body}, nil
}

// EncodeJSON converts the record into a JSON body. JSON resources use
// native types: real booleans and numbers instead of the multipart string
// convention. File fields carry their stored path string, if any.
func EncodeJSON(r *Record) (*Encoded, error) {
	payload := make(map[string]any, len(r.entity.Fields))

	for _, f := range r.entity.Fields {
		if r.mediaInactive(f.Name) {
			continue
		}

		switch f.Kind {
		case schema.KindFile:
			if path := r.existing[f.Name]; path != "" {
				payload[f.Name] = path
			}
		case schema.KindBool:
			payload[f.Name] = r.Bool(f.Name)
		case schema.KindNumber:
			if v := r.Value(f.Name); v != "" {
				n, err := strconv.ParseFloat(v, 64)
				if err != nil {
					return nil, fmt.Errorf("field %q: invalid number %q", f.Name, v)
				}
				payload[f.Name] = n
			}
		default:
			payload[f.Name] = r.Value(f.Name)
		}
	}

	body := &bytes.Buffer{}
	if err := json.NewEncoder(body).Encode(payload); err != nil {
		return nil, fmt.Errorf("encoding JSON body: %w", err)
	}
	return &Encoded{ContentType: "application/json", Body: body}, nil
}

// writeFilePart streams a staged file into the multipart body.
func writeFilePart(w *multipart.Writer, name string, staged *StagedFile) error {
	part, err := w.CreateFormFile(name, staged.Filename)
	if err != nil {
		return fmt.Errorf("creating file part %q: %w", name, err)
	}
	src, err := os.Open(staged.Path)
	if err != nil {
		return fmt.Errorf("opening staged file for %q: %w", name, err)
	}
	defer func() { _ = src.Close() }()
	if _, err := io.Copy(part, src); err != nil {
		return fmt.Errorf("copying staged file for %q: %w", name, err)
	}
	return nil
}
