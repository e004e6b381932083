// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package schema

import "fmt"

// styled returns the field triple for a free-text field paired with a
// color and a font size, the recurring shape of titled content.
func styled(name, label string, required bool) []Field {
	return []Field{
		{Name: name, Label: label, Kind: KindText, Required: required},
		{Name: name + "Color", Label: label + " Color", Kind: KindColor, Default: "#000000"},
		{Name: name + "FontSize", Label: label + " Font Size", Kind: KindFontSize, Default: string(DefaultFontSize), Options: FontSizeOptions},
	}
}

// background returns the discriminated media fields plus their group.
func background(prefix, label string, withVideo bool) ([]Field, MediaGroup) {
	// The discriminant only offers the members the group actually has.
	options := []string{BGColor, BGImage}
	if withVideo {
		options = append(options, BGVideo)
	}
	fields := []Field{
		{Name: prefix + "BGType", Label: label + " Background Type", Kind: KindEnum, Default: BGColor, Options: options},
		{Name: prefix + "BGColor", Label: label + " Background Color", Kind: KindColor, Default: "#ffffff"},
		{Name: prefix + "BGImg", Label: label + " Background Image", Kind: KindFile, Accept: "image/*"},
	}
	group := MediaGroup{
		TypeField: prefix + "BGType",
		Color:     prefix + "BGColor",
		Image:     prefix + "BGImg",
	}
	if withVideo {
		fields = append(fields, Field{Name: prefix + "BGVideo", Label: label + " Background Video", Kind: KindFile, Accept: "video/*"})
		group.Video = prefix + "BGVideo"
	}
	return fields, group
}

func active() Field {
	return Field{Name: "isActive", Label: "Active", Kind: KindBool, Default: "1"}
}

func sliderEntity() *Entity {
	fields := styled("title", "Title", true)
	fields = append(fields, styled("subTitle", "Subtitle", false)...)
	bg, group := background("slider", "Slider", true)
	fields = append(fields, bg...)
	fields = append(fields,
		Field{Name: "buttonText", Label: "Button Text", Kind: KindText},
		Field{Name: "buttonLink", Label: "Button Link", Kind: KindText},
		active(),
	)
	return &Entity{
		Name: "slider", Singular: "Slider", Plural: "Sliders",
		Endpoint: "/api/slider", ListPath: "/admin/sliders",
		Encoding: EncodingMultipart, Tenanted: true,
		Fields: fields, MediaGroups: []MediaGroup{group},
	}
}

func breadcrumbEntity() *Entity {
	fields := []Field{
		{Name: "pageName", Label: "Page", Kind: KindText, Required: true},
	}
	fields = append(fields, styled("title", "Title", true)...)
	bg, group := background("pageHeader", "Page Header", false)
	fields = append(fields, bg...)
	fields = append(fields, active())
	return &Entity{
		Name: "breadcrumb", Singular: "Breadcrumb", Plural: "Breadcrumbs",
		Endpoint: "/api/breadcrumb", ListPath: "/admin/breadcrumbs",
		Encoding: EncodingMultipart, Tenanted: true,
		Fields: fields, MediaGroups: []MediaGroup{group},
	}
}

func sectionPartEntity() *Entity {
	fields := []Field{
		{Name: "sectionName", Label: "Section", Kind: KindText, Required: true},
	}
	fields = append(fields, styled("title", "Title", true)...)
	fields = append(fields, styled("subTitle", "Subtitle", false)...)
	fields = append(fields, Field{Name: "description", Label: "Description", Kind: KindTextarea})
	bg, group := background("section", "Section", true)
	fields = append(fields, bg...)
	fields = append(fields, active())
	return &Entity{
		Name: "section-part", Singular: "Section Part", Plural: "Section Parts",
		Endpoint: "/api/section-part", ListPath: "/admin/section-parts",
		Encoding: EncodingMultipart, Tenanted: true,
		Fields: fields, MediaGroups: []MediaGroup{group},
	}
}

func productEntity() *Entity {
	return &Entity{
		Name: "product", Singular: "Product", Plural: "Products",
		Endpoint: "/api/product", ListPath: "/admin/products",
		Encoding: EncodingMultipart, Tenanted: true,
		Fields: []Field{
			{Name: "name", Label: "Name", Kind: KindText, Required: true},
			{Name: "sku", Label: "SKU", Kind: KindText},
			{Name: "price", Label: "Price", Kind: KindNumber, Default: "0"},
			{Name: "description", Label: "Description", Kind: KindTextarea},
			{Name: "productImg", Label: "Product Image", Kind: KindFile, Accept: "image/*"},
			{Name: "brochure", Label: "Brochure", Kind: KindFile, Accept: "application/pdf"},
			active(),
		},
	}
}

func organizationEntity() *Entity {
	return &Entity{
		Name: "organization", Singular: "Organization", Plural: "Organizations",
		Endpoint: "/api/organization", ListPath: "/admin/organizations",
		Encoding: EncodingMultipart, Tenanted: true,
		Fields: []Field{
			{Name: "orgName", Label: "Organization Name", Kind: KindText, Required: true},
			{Name: "email", Label: "Email", Kind: KindText, Required: true},
			{Name: "phone", Label: "Phone", Kind: KindText},
			{Name: "address", Label: "Address", Kind: KindTextarea},
			{Name: "countryId", Label: "Country", Kind: KindRef, Ref: "country"},
			{Name: "stateId", Label: "State", Kind: KindRef, Ref: "state"},
			{Name: "cityId", Label: "City", Kind: KindRef, Ref: "city"},
			{Name: "logo", Label: "Logo", Kind: KindFile, Accept: "image/*"},
			{Name: "primaryColor", Label: "Primary Color", Kind: KindColor, Default: "#1a1a2e"},
			active(),
		},
	}
}

func notificationEntity() *Entity {
	return &Entity{
		Name: "notification", Singular: "Notification", Plural: "Notifications",
		Endpoint: "/api/notification", ListPath: "/admin/notifications",
		Encoding: EncodingJSON, Tenanted: true,
		Fields: []Field{
			{Name: "title", Label: "Title", Kind: KindText, Required: true},
			{Name: "message", Label: "Message", Kind: KindTextarea, Required: true},
			{Name: "link", Label: "Link", Kind: KindText},
			active(),
		},
	}
}

func blogPostEntity() *Entity {
	return &Entity{
		Name: "blog-post", Singular: "Blog Post", Plural: "Blog Posts",
		Endpoint: "/api/blog-post", ListPath: "/admin/blog-posts",
		Encoding: EncodingMultipart, Tenanted: true,
		SlugSource: "title",
		Fields: []Field{
			{Name: "title", Label: "Title", Kind: KindText, Required: true},
			{Name: "slug", Label: "Slug", Kind: KindText},
			{Name: "author", Label: "Author", Kind: KindText},
			{Name: "body", Label: "Body", Kind: KindMarkdown, Required: true},
			{Name: "coverImg", Label: "Cover Image", Kind: KindFile, Accept: "image/*"},
			active(),
		},
	}
}

func emailTemplateEntity() *Entity {
	return &Entity{
		Name: "email-template", Singular: "Email Template", Plural: "Email Templates",
		Endpoint: "/api/email-template", ListPath: "/admin/email-templates",
		Encoding: EncodingJSON, Tenanted: true,
		Fields: []Field{
			{Name: "templateName", Label: "Template Name", Kind: KindText, Required: true},
			{Name: "subject", Label: "Subject", Kind: KindText, Required: true},
			{Name: "body", Label: "Body", Kind: KindTextarea, Required: true},
			active(),
		},
	}
}

func teamMemberEntity() *Entity {
	return &Entity{
		Name: "team-member", Singular: "Team Member", Plural: "Team Members",
		Endpoint: "/api/team-member", ListPath: "/admin/team-members",
		Encoding: EncodingMultipart, Tenanted: true,
		Fields: []Field{
			{Name: "name", Label: "Name", Kind: KindText, Required: true},
			{Name: "designation", Label: "Designation", Kind: KindText},
			{Name: "bio", Label: "Bio", Kind: KindTextarea},
			{Name: "photo", Label: "Photo", Kind: KindFile, Accept: "image/*"},
			active(),
		},
	}
}

func manualEntity() *Entity {
	return &Entity{
		Name: "manual", Singular: "Manual", Plural: "Manuals",
		Endpoint: "/api/manual", ListPath: "/admin/manuals",
		Encoding: EncodingMultipart, Tenanted: true,
		Fields: []Field{
			{Name: "title", Label: "Title", Kind: KindText, Required: true},
			{Name: "description", Label: "Description", Kind: KindTextarea},
			{Name: "manualFile", Label: "File", Kind: KindFile, Accept: "application/pdf", Required: true},
			active(),
		},
	}
}

// Registry returns all registered entities in display order. Descriptors
// are rebuilt per call so callers cannot mutate shared state. Lookup
// indexes are built here, before a descriptor can be shared across
// goroutines.
func Registry() []*Entity {
	entities := []*Entity{
		sliderEntity(),
		breadcrumbEntity(),
		sectionPartEntity(),
		productEntity(),
		organizationEntity(),
		notificationEntity(),
		blogPostEntity(),
		emailTemplateEntity(),
		teamMemberEntity(),
		manualEntity(),
	}
	for _, e := range entities {
		e.buildIndexes()
	}
	return entities
}

// ByName returns the entity descriptor with the given machine name.
func ByName(name string) (*Entity, error) {
	for _, e := range Registry() {
		if e.Name == name {
			return e, nil
		}
	}
	return nil, fmt.Errorf("unknown entity %q", name)
}
