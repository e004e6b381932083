// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package staging

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/orgdesk/orgdesk/internal/localdb"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	db, err := localdb.Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	if err := localdb.Migrate(db); err != nil {
		t.Fatal(err)
	}

	store, err := NewStore(db, t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return store
}

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestStageImage(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	st, err := store.Stage(ctx, "banner.png", bytes.NewReader(testPNG(t, 640, 480)))
	if err != nil {
		t.Fatal(err)
	}

	if st.MimeType != "image/png" {
		t.Errorf("mime type = %q", st.MimeType)
	}
	if st.Width != 640 || st.Height != 480 {
		t.Errorf("dimensions = %dx%d, want 640x480", st.Width, st.Height)
	}
	if _, err := os.Stat(st.Path); err != nil {
		t.Errorf("staged file missing: %v", err)
	}
	if st.ThumbPath == "" {
		t.Fatal("expected a thumbnail")
	}
	if _, err := os.Stat(st.ThumbPath); err != nil {
		t.Errorf("thumbnail missing: %v", err)
	}
	if !strings.HasPrefix(st.PreviewURL(), URLPrefix) {
		t.Errorf("preview URL = %q", st.PreviewURL())
	}
}

func TestStageNonImageStoredVerbatim(t *testing.T) {
	store := testStore(t)
	payload := []byte("%PDF-1.4 not really a pdf but close enough")

	st, err := store.Stage(context.Background(), "manual.pdf", bytes.NewReader(payload))
	if err != nil {
		t.Fatal(err)
	}
	if st.ThumbPath != "" {
		t.Errorf("non-image got a thumbnail: %q", st.ThumbPath)
	}
	got, err := os.ReadFile(st.Path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, payload) {
		t.Error("non-image content modified during staging")
	}
}

func TestStageRejectsEmpty(t *testing.T) {
	store := testStore(t)
	if _, err := store.Stage(context.Background(), "x.bin", bytes.NewReader(nil)); err == nil {
		t.Error("expected error for empty upload")
	}
}

func TestGetRoundTrip(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	st, err := store.Stage(ctx, "banner.png", bytes.NewReader(testPNG(t, 8, 8)))
	if err != nil {
		t.Fatal(err)
	}

	got, err := store.Get(ctx, st.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Path != st.Path || got.OriginalName != "banner.png" || got.Size != st.Size {
		t.Errorf("got %+v, want %+v", got, st)
	}

	if _, err := store.Get(ctx, "no-such-id"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRemoveDeletesFiles(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	st, err := store.Stage(ctx, "banner.png", bytes.NewReader(testPNG(t, 8, 8)))
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Remove(ctx, st.ID); err != nil {
		t.Fatal(err)
	}

	if _, err := os.Stat(st.Path); !os.IsNotExist(err) {
		t.Error("staged file survived Remove")
	}
	if _, err := os.Stat(st.ThumbPath); !os.IsNotExist(err) {
		t.Error("thumbnail survived Remove")
	}
	if _, err := store.Get(ctx, st.ID); !errors.Is(err, ErrNotFound) {
		t.Error("row survived Remove")
	}

	// Removing twice is fine.
	if err := store.Remove(ctx, st.ID); err != nil {
		t.Errorf("second Remove: %v", err)
	}
}

func TestCleanupStale(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	stale, err := store.Stage(ctx, "old.png", bytes.NewReader(testPNG(t, 8, 8)))
	if err != nil {
		t.Fatal(err)
	}
	fresh, err := store.Stage(ctx, "new.png", bytes.NewReader(testPNG(t, 8, 8)))
	if err != nil {
		t.Fatal(err)
	}

	// Age the first stage past the cutoff.
	_, err = store.db.ExecContext(ctx,
		`UPDATE staged_uploads SET created_at = ? WHERE id = ?`,
		time.Now().UTC().Add(-48*time.Hour), stale.ID)
	if err != nil {
		t.Fatal(err)
	}

	removed, err := store.CleanupStale(ctx, 24*time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if removed != 1 {
		t.Errorf("removed %d stages, want 1", removed)
	}
	if _, err := store.Get(ctx, stale.ID); !errors.Is(err, ErrNotFound) {
		t.Error("stale stage survived cleanup")
	}
	if _, err := store.Get(ctx, fresh.ID); err != nil {
		t.Errorf("fresh stage swept: %v", err)
	}
}
