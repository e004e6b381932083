// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package logging provides a slog handler that forwards WARN and above
// to the remote API's audit-events endpoint, so operator-facing
// failures show up in the platform's audit trail.
package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// auditPath is the remote audit-events endpoint.
const auditPath = "/api/audit-events"

// Submitter posts an encoded body to the remote API. api.Client
// satisfies this.
type Submitter interface {
	Submit(ctx context.Context, method, path, contentType string, body io.Reader) error
}

// AuditHandler wraps another slog.Handler and also submits records at
// or above its threshold to the remote audit trail.
type AuditHandler struct {
	inner     slog.Handler
	submitter Submitter
	level     slog.Level
	attrs     []slog.Attr
}

// NewAuditHandler wraps inner, forwarding WARN and above.
func NewAuditHandler(inner slog.Handler, submitter Submitter) *AuditHandler {
	return NewAuditHandlerWithLevel(inner, submitter, slog.LevelWarn)
}

// NewAuditHandlerWithLevel wraps inner with a custom threshold.
func NewAuditHandlerWithLevel(inner slog.Handler, submitter Submitter, level slog.Level) *AuditHandler {
	return &AuditHandler{
		inner:     inner,
		submitter: submitter,
		level:     level,
	}
}

func (h *AuditHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *AuditHandler) Handle(ctx context.Context, r slog.Record) error {
	if err := h.inner.Handle(ctx, r); err != nil {
		return err
	}
	if r.Level >= h.level {
		h.forward(r)
	}
	return nil
}

func (h *AuditHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &AuditHandler{
		inner:     h.inner.WithAttrs(attrs),
		submitter: h.submitter,
		level:     h.level,
		attrs:     merged,
	}
}

func (h *AuditHandler) WithGroup(name string) slog.Handler {
	return &AuditHandler{
		inner:     h.inner.WithGroup(name),
		submitter: h.submitter,
		level:     h.level,
		attrs:     h.attrs,
	}
}

// auditEvent is the wire shape of one audit record.
type auditEvent struct {
	Level     string            `json:"level"`
	Message   string            `json:"message"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
}

// forward submits the record to the audit endpoint. A background
// context is used so a cancelled request cannot lose its own audit
// trail; submission failures are dropped, logging about logging loops.
func (h *AuditHandler) forward(r slog.Record) {
	metadata := make(map[string]string, r.NumAttrs()+len(h.attrs))
	for _, a := range h.attrs {
		metadata[a.Key] = a.Value.String()
	}
	r.Attrs(func(a slog.Attr) bool {
		metadata[a.Key] = a.Value.String()
		return true
	})

	event := auditEvent{
		Level:     levelName(r.Level),
		Message:   r.Message,
		Metadata:  metadata,
		CreatedAt: r.Time,
	}
	body, err := json.Marshal(event)
	if err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = h.submitter.Submit(ctx, http.MethodPost, auditPath, "application/json", bytes.NewReader(body))
}

func levelName(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "error"
	case level >= slog.LevelWarn:
		return "warning"
	default:
		return "info"
	}
}
