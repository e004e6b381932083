// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package schema

// FontSize is the closed set of heading levels a styled text field may use.
// The original stored arbitrary tag-name strings; representing the value as
// an enum mapped through an explicit lookup removes the "unexpected tag
// name" failure mode.
type FontSize string

// Font sizes
const (
	FontSizeH1        FontSize = "h1"
	FontSizeH2        FontSize = "h2"
	FontSizeH3        FontSize = "h3"
	FontSizeH4        FontSize = "h4"
	FontSizeH5        FontSize = "h5"
	FontSizeH6        FontSize = "h6"
	FontSizeParagraph FontSize = "p"
)

// DefaultFontSize is substituted when a loaded record omits a *FontSize field.
const DefaultFontSize = FontSizeH1

// FontSizeOptions are the valid form values for a fontsize field.
var FontSizeOptions = []string{
	string(FontSizeH1), string(FontSizeH2), string(FontSizeH3),
	string(FontSizeH4), string(FontSizeH5), string(FontSizeH6),
	string(FontSizeParagraph),
}

// ParseFontSize maps a stored string to a FontSize, falling back to the
// default for anything outside the closed set. Literal pixel values pass
// through the preview lookup separately and are not heading levels.
func ParseFontSize(s string) FontSize {
	switch FontSize(s) {
	case FontSizeH1, FontSizeH2, FontSizeH3, FontSizeH4, FontSizeH5, FontSizeH6, FontSizeParagraph:
		return FontSize(s)
	default:
		return DefaultFontSize
	}
}
