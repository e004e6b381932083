// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package refdata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/orgdesk/orgdesk/internal/api"
	"github.com/orgdesk/orgdesk/internal/cache"
)

func testService(t *testing.T, handler http.HandlerFunc) (*Service, *atomic.Int64) {
	t.Helper()
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	backend := cache.NewMemory(cache.MemoryOptions{DefaultTTL: time.Minute})
	t.Cleanup(func() { backend.Close() })

	client := api.New(api.Options{BaseURL: srv.URL})
	return New(client, backend, time.Minute), &calls
}

func TestCountriesCached(t *testing.T) {
	svc, calls := testService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/master/countries" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id":1,"name":"Portugal"},{"id":2,"name":"Spain"}]`))
	})

	ctx := context.Background()
	for range 3 {
		countries, err := svc.Countries(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if len(countries) != 2 || countries[0].Name != "Portugal" {
			t.Fatalf("unexpected countries %+v", countries)
		}
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("upstream called %d times, want 1", got)
	}
}

func TestStatesKeyedByCountry(t *testing.T) {
	svc, calls := testService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("countryId") {
		case "1":
			w.Write([]byte(`[{"id":10,"name":"Lisboa"}]`))
		case "2":
			w.Write([]byte(`[{"id":20,"name":"Madrid"}]`))
		default:
			t.Errorf("unexpected countryId %q", r.URL.Query().Get("countryId"))
		}
	})

	ctx := context.Background()
	first, err := svc.States(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	second, err := svc.States(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if first[0].Name != "Lisboa" || second[0].Name != "Madrid" {
		t.Errorf("levels not keyed by parent: %+v / %+v", first, second)
	}

	// Repeat fetches hit the cache per parent key.
	svc.States(ctx, 1)
	svc.States(ctx, 2)
	if got := calls.Load(); got != 2 {
		t.Errorf("upstream called %d times, want 2", got)
	}
}

func TestUnselectedParentSkipsNetwork(t *testing.T) {
	svc, calls := testService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})

	ctx := context.Background()
	if states, err := svc.States(ctx, 0); err != nil || states != nil {
		t.Errorf("States(0) = %v, %v", states, err)
	}
	if cities, err := svc.Cities(ctx, 0); err != nil || cities != nil {
		t.Errorf("Cities(0) = %v, %v", cities, err)
	}
	if got := calls.Load(); got != 0 {
		t.Errorf("upstream called %d times, want 0", got)
	}
}

func TestWrappedResponseShape(t *testing.T) {
	svc, _ := testService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[{"id":30,"name":"Porto"}]}`))
	})

	cities, err := svc.Cities(context.Background(), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(cities) != 1 || cities[0].ID != 30 {
		t.Errorf("unexpected cities %+v", cities)
	}
}

func TestUpstreamErrorPropagates(t *testing.T) {
	svc, _ := testService(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	})

	if _, err := svc.Countries(context.Background()); err == nil {
		t.Error("expected error from failing upstream")
	}
}
