// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

type place struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func TestTypedRoundTrip(t *testing.T) {
	backend := NewMemory(MemoryOptions{DefaultTTL: time.Minute})
	defer backend.Close()
	c := NewTyped[place](backend, time.Minute)
	ctx := context.Background()

	if _, ok := c.Get(ctx, "p"); ok {
		t.Error("expected miss on empty cache")
	}

	want := &place{ID: 7, Name: "Lisbon"}
	if err := c.Set(ctx, "p", want); err != nil {
		t.Fatal(err)
	}
	got, ok := c.Get(ctx, "p")
	if !ok {
		t.Fatal("expected hit")
	}
	if got.ID != want.ID || got.Name != want.Name {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestTypedUndecodableCountsAsMiss(t *testing.T) {
	backend := NewMemory(MemoryOptions{DefaultTTL: time.Minute})
	defer backend.Close()
	ctx := context.Background()

	backend.Set(ctx, "p", []byte("not json"), 0)
	c := NewTyped[place](backend, time.Minute)
	if _, ok := c.Get(ctx, "p"); ok {
		t.Error("expected miss for undecodable entry")
	}
}

func TestTypedGetOrSet(t *testing.T) {
	backend := NewMemory(MemoryOptions{DefaultTTL: time.Minute})
	defer backend.Close()
	c := NewTyped[place](backend, time.Minute)
	ctx := context.Background()

	calls := 0
	load := func() (*place, error) {
		calls++
		return &place{ID: 1, Name: "Porto"}, nil
	}

	for range 2 {
		got, err := c.GetOrSet(ctx, "p", load)
		if err != nil {
			t.Fatal(err)
		}
		if got.Name != "Porto" {
			t.Errorf("got %+v", got)
		}
	}
	if calls != 1 {
		t.Errorf("loader called %d times, want 1", calls)
	}
}

func TestTypedGetOrSetPropagatesError(t *testing.T) {
	backend := NewMemory(MemoryOptions{DefaultTTL: time.Minute})
	defer backend.Close()
	c := NewTyped[place](backend, time.Minute)

	wantErr := errors.New("upstream down")
	_, err := c.GetOrSet(context.Background(), "p", func() (*place, error) {
		return nil, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Errorf("got %v, want %v", err, wantErr)
	}
}
