// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import "testing"

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Hello World", "hello-world"},
		{"Crème Brûlée", "creme-brulee"},
		{"  Spaces  Everywhere  ", "spaces-everywhere"},
		{"Already-a-slug", "already-a-slug"},
		{"Symbols! @#$ removed?", "symbols-removed"},
		{"Multiple---hyphens", "multiple-hyphens"},
		{"", ""},
		{"!!!", ""},
	}
	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsValidSlug(t *testing.T) {
	valid := []string{"hello", "hello-world", "post-42"}
	for _, s := range valid {
		if !IsValidSlug(s) {
			t.Errorf("IsValidSlug(%q) = false, want true", s)
		}
	}

	invalid := []string{"", "-leading", "trailing-", "double--hyphen", "Upper", "with space", "accénts"}
	for _, s := range invalid {
		if IsValidSlug(s) {
			t.Errorf("IsValidSlug(%q) = true, want false", s)
		}
	}
}

func TestSanitizeFilename(t *testing.T) {
	got, err := SanitizeFilename("../../etc/passwd")
	if err != nil {
		t.Fatal(err)
	}
	if got != "passwd" {
		t.Errorf("got %q, want passwd", got)
	}

	for _, bad := range []string{"", ".", ".."} {
		if _, err := SanitizeFilename(bad); err == nil {
			t.Errorf("SanitizeFilename(%q) accepted", bad)
		}
	}
}
