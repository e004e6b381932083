// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package staging holds uploaded files on local disk between the moment
// the operator picks them and the moment the record is submitted to the
// remote API. Staged images are auto-oriented from their EXIF tag and
// get a thumbnail for the form preview. Bookkeeping rows live in the
// local SQLite database so stale stages survive restarts and can be
// swept by the scheduler.
package staging

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/webp" // WebP decoder

	"github.com/orgdesk/orgdesk/internal/util"
)

// ErrNotFound is returned when a staged upload does not exist.
var ErrNotFound = errors.New("staged upload not found")

// URLPrefix is where the router serves staged files from.
const URLPrefix = "/staging/"

const (
	thumbWidth  = 320
	thumbHeight = 320
	jpegQuality = 90
)

// Staged describes one staged upload.
type Staged struct {
	ID           string
	OriginalName string
	Path         string
	ThumbPath    string
	MimeType     string
	Size         int64
	Width        int
	Height       int
	CreatedAt    time.Time
}

// PreviewURL returns the local URL the form preview loads the file from.
func (s *Staged) PreviewURL() string {
	return URLPrefix + filepath.Base(s.Path)
}

// Store stages uploads under a single directory.
type Store struct {
	db  *sql.DB
	dir string
}

// NewStore creates the staging directory if needed.
func NewStore(db *sql.DB, dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating staging dir: %w", err)
	}
	return &Store{db: db, dir: dir}, nil
}

// Dir returns the staging directory, for mounting a file server.
func (s *Store) Dir() string {
	return s.dir
}

// Stage reads an upload, processes it, and records it. Images are
// decoded, rotated per their EXIF orientation tag, and re-encoded; a
// thumbnail is written next to the original. Non-image files are stored
// verbatim.
func (s *Store) Stage(ctx context.Context, filename string, r io.Reader) (*Staged, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading upload: %w", err)
	}
	if len(data) == 0 {
		return nil, errors.New("empty upload")
	}

	safeName, err := util.SanitizeFilename(filename)
	if err != nil {
		return nil, err
	}
	st := &Staged{
		ID:           uuid.NewString(),
		OriginalName: safeName,
		MimeType:     detectMimeType(data),
		CreatedAt:    time.Now().UTC(),
	}

	if format := imageFormat(st.MimeType); format != "" {
		if err := s.stageImage(st, data, format); err != nil {
			return nil, err
		}
	} else {
		st.Path = filepath.Join(s.dir, st.ID+ext(st.OriginalName))
		if err := os.WriteFile(st.Path, data, 0o644); err != nil {
			return nil, fmt.Errorf("writing staged file: %w", err)
		}
		st.Size = int64(len(data))
	}

	if err := s.insert(ctx, st); err != nil {
		s.removeFiles(st)
		return nil, err
	}
	return st, nil
}

func (s *Store) stageImage(st *Staged, data []byte, format string) error {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("decoding image: %w", err)
	}
	img = applyOrientation(img, readOrientation(bytes.NewReader(data)))

	bounds := img.Bounds()
	st.Width = bounds.Dx()
	st.Height = bounds.Dy()

	// Pure Go encoders drop EXIF, which also strips the orientation
	// tag the rotation just compensated for.
	encoded, err := encode(img, format)
	if err != nil {
		return fmt.Errorf("encoding image: %w", err)
	}

	st.Path = filepath.Join(s.dir, st.ID+formatExt(format))
	if err := os.WriteFile(st.Path, encoded, 0o644); err != nil {
		return fmt.Errorf("writing staged image: %w", err)
	}
	st.Size = int64(len(encoded))

	thumb := imaging.Fit(img, thumbWidth, thumbHeight, imaging.Lanczos)
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return fmt.Errorf("encoding thumbnail: %w", err)
	}
	st.ThumbPath = filepath.Join(s.dir, st.ID+"_thumb.jpg")
	if err := os.WriteFile(st.ThumbPath, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing thumbnail: %w", err)
	}
	return nil
}

// Get loads a staged upload by ID.
func (s *Store) Get(ctx context.Context, id string) (*Staged, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, original_name, path, thumb_path, mime_type, size, width, height, created_at
		FROM staged_uploads WHERE id = ?`, id)

	var st Staged
	err := row.Scan(&st.ID, &st.OriginalName, &st.Path, &st.ThumbPath,
		&st.MimeType, &st.Size, &st.Width, &st.Height, &st.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading staged upload: %w", err)
	}
	return &st, nil
}

// Remove deletes a staged upload and its files.
func (s *Store) Remove(ctx context.Context, id string) error {
	st, err := s.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM staged_uploads WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting staged upload row: %w", err)
	}
	s.removeFiles(st)
	return nil
}

// CleanupStale removes stages older than maxAge and returns how many
// were swept. Submitted records reference remote paths, so anything old
// enough was abandoned.
func (s *Store) CleanupStale(ctx context.Context, maxAge time.Duration) (int, error) {
	cutoff := time.Now().UTC().Add(-maxAge)

	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM staged_uploads WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("listing stale uploads: %w", err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return 0, err
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}

	removed := 0
	for _, id := range ids {
		if err := s.Remove(ctx, id); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

func (s *Store) insert(ctx context.Context, st *Staged) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO staged_uploads
			(id, original_name, path, thumb_path, mime_type, size, width, height, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		st.ID, st.OriginalName, st.Path, st.ThumbPath,
		st.MimeType, st.Size, st.Width, st.Height, st.CreatedAt)
	if err != nil {
		return fmt.Errorf("recording staged upload: %w", err)
	}
	return nil
}

func (s *Store) removeFiles(st *Staged) {
	if st.Path != "" {
		os.Remove(st.Path)
	}
	if st.ThumbPath != "" {
		os.Remove(st.ThumbPath)
	}
}

func detectMimeType(data []byte) string {
	mimeType := http.DetectContentType(data)
	if idx := strings.Index(mimeType, ";"); idx != -1 {
		mimeType = mimeType[:idx]
	}
	return mimeType
}

// imageFormat maps a MIME type to a processable format name, "" for
// anything staged verbatim. TIFF is rejected outright
// (CVE-2023-36308 in disintegration/imaging).
func imageFormat(mimeType string) string {
	switch mimeType {
	case "image/jpeg":
		return "jpeg"
	case "image/png":
		return "png"
	case "image/gif":
		return "gif"
	case "image/webp":
		return "webp"
	default:
		return ""
	}
}

func formatExt(format string) string {
	switch format {
	case "jpeg", "webp":
		// WebP re-encodes to JPEG, pure Go has no WebP encoder.
		return ".jpg"
	case "png":
		return ".png"
	case "gif":
		return ".gif"
	default:
		return ".bin"
	}
}

func ext(filename string) string {
	e := strings.ToLower(filepath.Ext(filename))
	if e == "" || strings.ContainsAny(e, "/\\") {
		return ".bin"
	}
	return e
}

func encode(img image.Image, format string) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch format {
	case "png":
		err = png.Encode(&buf, img)
	case "gif":
		err = gif.Encode(&buf, img, nil)
	default:
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality})
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// readOrientation returns the EXIF orientation tag, 1 when absent.
func readOrientation(r io.Reader) int {
	x, err := exif.Decode(r)
	if err != nil {
		return 1
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	orientation, err := tag.Int(0)
	if err != nil {
		return 1
	}
	return orientation
}

func applyOrientation(img image.Image, orientation int) image.Image {
	switch orientation {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.FlipH(imaging.Rotate270(img))
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.FlipH(imaging.Rotate90(img))
	case 8:
		return imaging.Rotate90(img)
	default:
		return img
	}
}
