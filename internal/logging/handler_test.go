// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package logging

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"testing"
)

type fakeSubmitter struct {
	mu     sync.Mutex
	bodies [][]byte
	paths  []string
}

func (f *fakeSubmitter) Submit(_ context.Context, _, path, _ string, body io.Reader) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bodies = append(f.bodies, data)
	f.paths = append(f.paths, path)
	return nil
}

func (f *fakeSubmitter) events(t *testing.T) []auditEvent {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]auditEvent, len(f.bodies))
	for i, b := range f.bodies {
		if err := json.Unmarshal(b, &out[i]); err != nil {
			t.Fatalf("body %d is not valid JSON: %v", i, err)
		}
	}
	return out
}

func testLogger(sub Submitter) *slog.Logger {
	inner := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug})
	return slog.New(NewAuditHandler(inner, sub))
}

func TestInfoNotForwarded(t *testing.T) {
	sub := &fakeSubmitter{}
	log := testLogger(sub)

	log.Info("slider created", "id", 3)
	if len(sub.bodies) != 0 {
		t.Errorf("info record forwarded to audit trail")
	}
}

func TestWarnAndErrorForwarded(t *testing.T) {
	sub := &fakeSubmitter{}
	log := testLogger(sub)

	log.Warn("update rejected", "entity", "slider")
	log.Error("remote call failed", "status", 502)

	events := sub.events(t)
	if len(events) != 2 {
		t.Fatalf("forwarded %d events, want 2", len(events))
	}
	if events[0].Level != "warning" || events[0].Message != "update rejected" {
		t.Errorf("first event = %+v", events[0])
	}
	if events[0].Metadata["entity"] != "slider" {
		t.Errorf("metadata = %v", events[0].Metadata)
	}
	if events[1].Level != "error" {
		t.Errorf("second event level = %q", events[1].Level)
	}
	for _, p := range sub.paths {
		if p != auditPath {
			t.Errorf("submitted to %q, want %q", p, auditPath)
		}
	}
}

func TestWithAttrsCarriedIntoAudit(t *testing.T) {
	sub := &fakeSubmitter{}
	log := testLogger(sub).With("org", "42")

	log.Warn("quota exceeded")

	events := sub.events(t)
	if len(events) != 1 {
		t.Fatalf("forwarded %d events, want 1", len(events))
	}
	if events[0].Metadata["org"] != "42" {
		t.Errorf("bound attr missing from metadata: %v", events[0].Metadata)
	}
}

func TestCustomLevelThreshold(t *testing.T) {
	sub := &fakeSubmitter{}
	inner := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug})
	log := slog.New(NewAuditHandlerWithLevel(inner, sub, slog.LevelError))

	log.Warn("not forwarded at error threshold")
	if len(sub.bodies) != 0 {
		t.Error("warn forwarded despite error threshold")
	}
	log.Error("forwarded")
	if len(sub.bodies) != 1 {
		t.Error("error not forwarded")
	}
}
