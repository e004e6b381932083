// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package refdata loads the country / state / city reference lists that
// back the organization form's cascading dropdowns. Lists come from the
// remote master-data endpoints and are cached: each level is fetched
// independently, keyed by its parent selection.
package refdata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/orgdesk/orgdesk/internal/api"
	"github.com/orgdesk/orgdesk/internal/cache"
)

const (
	countriesPath = "/api/master/countries"
	statesPath    = "/api/master/states"
	citiesPath    = "/api/master/cities"
)

// Place is one reference-data row. All three levels share the shape.
type Place struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Service fetches and caches reference data.
type Service struct {
	client *api.Client
	cache  *cache.Typed[[]Place]
}

// New creates a Service over the given API client and cache backend.
func New(client *api.Client, backend cache.Cacher, ttl time.Duration) *Service {
	if ttl == 0 {
		ttl = 12 * time.Hour
	}
	return &Service{
		client: client,
		cache:  cache.NewTyped[[]Place](backend, ttl),
	}
}

// Countries returns all countries.
func (s *Service) Countries(ctx context.Context) ([]Place, error) {
	return s.load(ctx, "refdata:countries", countriesPath, nil)
}

// States returns the states of a country. A zero countryID returns an
// empty list without a network call, matching an unselected parent.
func (s *Service) States(ctx context.Context, countryID int64) ([]Place, error) {
	if countryID == 0 {
		return nil, nil
	}
	query := url.Values{"countryId": {strconv.FormatInt(countryID, 10)}}
	return s.load(ctx, "refdata:states:"+strconv.FormatInt(countryID, 10), statesPath, query)
}

// Cities returns the cities of a state. A zero stateID returns an empty
// list without a network call.
func (s *Service) Cities(ctx context.Context, stateID int64) ([]Place, error) {
	if stateID == 0 {
		return nil, nil
	}
	query := url.Values{"stateId": {strconv.FormatInt(stateID, 10)}}
	return s.load(ctx, "refdata:cities:"+strconv.FormatInt(stateID, 10), citiesPath, query)
}

// Warm preloads the country list. Run from the scheduler so the first
// visitor of the organization form does not pay the fetch.
func (s *Service) Warm(ctx context.Context) error {
	_, err := s.Countries(ctx)
	return err
}

func (s *Service) load(ctx context.Context, key, path string, query url.Values) ([]Place, error) {
	places, err := s.cache.GetOrSet(ctx, key, func() (*[]Place, error) {
		list, err := s.fetch(ctx, path, query)
		if err != nil {
			return nil, err
		}
		return &list, nil
	})
	if err != nil {
		return nil, err
	}
	return *places, nil
}

// fetch accepts both response shapes the API serves: a bare array and a
// {"data": [...]} wrapper.
func (s *Service) fetch(ctx context.Context, path string, query url.Values) ([]Place, error) {
	var raw json.RawMessage
	if err := s.client.GetJSON(ctx, path, query, &raw); err != nil {
		return nil, err
	}

	var list []Place
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}

	var wrapped struct {
		Data []Place `json:"data"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, fmt.Errorf("decoding %s response: %w", path, err)
	}
	return wrapped.Data, nil
}
