// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/orgdesk/orgdesk/internal/editor"
	"github.com/orgdesk/orgdesk/internal/refdata"
)

// refdataLists carries the dropdown contents for reference fields. On
// edit forms the state and city lists are pre-resolved for the stored
// selections so the cascade renders without a client round trip.
type refdataLists struct {
	Countries []refdata.Place
	States    []refdata.Place
	Cities    []refdata.Place
}

// loadRefData assembles dropdown lists for the form. Lookup failures
// degrade to empty lists; the form still renders.
func (h *EntityHandler) loadRefData(r *http.Request, rec *editor.Record) *refdataLists {
	if h.refdata == nil {
		return nil
	}
	ctx := r.Context()
	lists := &refdataLists{}

	var err error
	if lists.Countries, err = h.refdata.Countries(ctx); err != nil {
		slog.Error("failed to load countries", "error", err)
	}
	if countryID, _ := strconv.ParseInt(rec.Value("countryId"), 10, 64); countryID > 0 {
		if lists.States, err = h.refdata.States(ctx, countryID); err != nil {
			slog.Error("failed to load states", "country_id", countryID, "error", err)
		}
	}
	if stateID, _ := strconv.ParseInt(rec.Value("stateId"), 10, 64); stateID > 0 {
		if lists.Cities, err = h.refdata.Cities(ctx, stateID); err != nil {
			slog.Error("failed to load cities", "state_id", stateID, "error", err)
		}
	}
	return lists
}

// RefdataHandler serves the JSON endpoints behind the country, state,
// city cascade on the organization form.
type RefdataHandler struct {
	refdata *refdata.Service
}

// NewRefdataHandler creates a RefdataHandler.
func NewRefdataHandler(svc *refdata.Service) *RefdataHandler {
	return &RefdataHandler{refdata: svc}
}

// States handles GET /admin/refdata/states?countryId=N.
func (h *RefdataHandler) States(w http.ResponseWriter, r *http.Request) {
	countryID, _ := strconv.ParseInt(r.URL.Query().Get("countryId"), 10, 64)
	places, err := h.refdata.States(r.Context(), countryID)
	h.writePlaces(w, places, err)
}

// Cities handles GET /admin/refdata/cities?stateId=N.
func (h *RefdataHandler) Cities(w http.ResponseWriter, r *http.Request) {
	stateID, _ := strconv.ParseInt(r.URL.Query().Get("stateId"), 10, 64)
	places, err := h.refdata.Cities(r.Context(), stateID)
	h.writePlaces(w, places, err)
}

func (h *RefdataHandler) writePlaces(w http.ResponseWriter, places []refdata.Place, err error) {
	if err != nil {
		slog.Error("failed to load reference data", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if places == nil {
		places = []refdata.Place{}
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]any{"data": places}); err != nil {
		slog.Error("failed to encode reference data", "error", err)
	}
}
