package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"slices"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"
)

var (
	sectionPatchKeys = []string{
		"section_label", "is_active", "display_order",
		"wireframe_reference", "responsive_behavior", "custom_overrides",
	}
	blockPatchKeys = []string{"headline", "subheading", "primary_content", "call_to_action"}
	ctaKeys        = []string{"text", "url", "style"}
)

// SectionPatch is a partial update of section metadata. Nil fields are left
// untouched in the CMS.
type SectionPatch struct {
	SectionLabel       *string             `json:"section_label,omitempty"`
	IsActive           *bool               `json:"is_active,omitempty"`
	DisplayOrder       *int                `json:"display_order,omitempty"`
	WireframeReference *string             `json:"wireframe_reference,omitempty"`
	ResponsiveBehavior *ResponsiveBehavior `json:"responsive_behavior,omitempty"`
	CustomOverrides    *StyleOverrides     `json:"custom_overrides,omitempty"`
}

// DecodeSectionPatch parses request metadata, rejecting unknown keys.
func DecodeSectionPatch(raw json.RawMessage) (SectionPatch, error) {
	var p SectionPatch
	fields, err := checkKeys(raw, sectionPatchKeys, "metadata")
	if err != nil {
		return p, err
	}
	if overrides, ok := fields["custom_overrides"]; ok {
		if _, err := checkKeys(overrides, StyleOverrideKeys, "custom_overrides"); err != nil {
			return p, err
		}
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		return p, invalidPatch(err)
	}
	return p, nil
}

func (p SectionPatch) Validate() error {
	err := validation.ValidateStruct(&p,
		validation.Field(&p.SectionLabel, validation.Length(0, 120)),
		validation.Field(&p.DisplayOrder, validation.Min(0)),
		validation.Field(&p.WireframeReference, validation.Length(0, 64)),
		validation.Field(&p.ResponsiveBehavior, validation.In(
			ResponsiveStandard, ResponsiveHideMobile, ResponsiveHideDesktop, ResponsiveStackMobile,
		)),
		validation.Field(&p.CustomOverrides),
	)
	if err != nil {
		return goerrors.FromOzzoValidation(err, "invalid section metadata").WithTextCode(CodeInvalidPatch)
	}
	return nil
}

func (p SectionPatch) IsEmpty() bool {
	return p == SectionPatch{}
}

// Metadata returns the patch as the key set sent to the CMS.
func (p SectionPatch) Metadata() map[string]any {
	m := map[string]any{}
	if p.SectionLabel != nil {
		m["section_label"] = *p.SectionLabel
	}
	if p.IsActive != nil {
		m["is_active"] = *p.IsActive
	}
	if p.DisplayOrder != nil {
		m["display_order"] = *p.DisplayOrder
	}
	if p.WireframeReference != nil {
		m["wireframe_reference"] = *p.WireframeReference
	}
	if p.ResponsiveBehavior != nil {
		m["responsive_behavior"] = string(*p.ResponsiveBehavior)
	}
	if p.CustomOverrides != nil {
		o := *p.CustomOverrides
		overrides := map[string]any{}
		for key, value := range map[string]string{
			"background_color": o.BackgroundColor,
			"padding_top":      o.PaddingTop,
			"padding_bottom":   o.PaddingBottom,
			"margin_bottom":    o.MarginBottom,
		} {
			if value != "" {
				overrides[key] = value
			}
		}
		m["custom_overrides"] = overrides
	}
	return m
}

// ContentBlockPatch is a partial update of content block metadata.
type ContentBlockPatch struct {
	Headline       *string       `json:"headline,omitempty"`
	Subheading     *string       `json:"subheading,omitempty"`
	PrimaryContent *string       `json:"primary_content,omitempty"`
	CallToAction   *CallToAction `json:"call_to_action,omitempty"`
}

// DecodeContentBlockPatch parses request metadata, rejecting unknown keys.
func DecodeContentBlockPatch(raw json.RawMessage) (ContentBlockPatch, error) {
	var p ContentBlockPatch
	fields, err := checkKeys(raw, blockPatchKeys, "metadata")
	if err != nil {
		return p, err
	}
	if cta, ok := fields["call_to_action"]; ok {
		if _, err := checkKeys(cta, ctaKeys, "call_to_action"); err != nil {
			return p, err
		}
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		return p, invalidPatch(err)
	}
	return p, nil
}

func (p ContentBlockPatch) Validate() error {
	err := validation.ValidateStruct(&p,
		validation.Field(&p.Headline, validation.Length(0, 200)),
		validation.Field(&p.Subheading, validation.Length(0, 500)),
		validation.Field(&p.CallToAction),
	)
	if err != nil {
		return goerrors.FromOzzoValidation(err, "invalid content block metadata").WithTextCode(CodeInvalidPatch)
	}
	return nil
}

func (p ContentBlockPatch) IsEmpty() bool {
	return p.Headline == nil && p.Subheading == nil && p.PrimaryContent == nil && p.CallToAction == nil
}

func (p ContentBlockPatch) Metadata() map[string]any {
	m := map[string]any{}
	if p.Headline != nil {
		m["headline"] = *p.Headline
	}
	if p.Subheading != nil {
		m["subheading"] = *p.Subheading
	}
	if p.PrimaryContent != nil {
		m["primary_content"] = *p.PrimaryContent
	}
	if p.CallToAction != nil {
		m["call_to_action"] = map[string]any{
			"text":  p.CallToAction.Text,
			"url":   p.CallToAction.URL,
			"style": string(p.CallToAction.StyleOrDefault()),
		}
	}
	return m
}

func (c CallToAction) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Text, validation.Length(0, 80)),
		validation.Field(&c.URL, validation.By(linkTarget)),
		validation.Field(&c.Style, validation.In(CTAPrimary, CTAOutline, CTAText)),
	)
}

// linkTarget accepts http(s) and relative urls.
func linkTarget(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	u, err := url.Parse(s)
	if err != nil {
		return validation.NewError("validation_is_url", "must be a valid url")
	}
	switch strings.ToLower(u.Scheme) {
	case "", "http", "https":
		return nil
	default:
		return validation.NewError("validation_is_url", "must be an http(s) or relative url")
	}
}

// checkKeys decodes raw as an object and fails on any key outside allowed.
func checkKeys(raw json.RawMessage, allowed []string, name string) (map[string]json.RawMessage, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, goerrors.New(name+" is required", goerrors.CategoryValidation).WithTextCode(CodeInvalidPatch)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, goerrors.New(name+" must be an object", goerrors.CategoryValidation).WithTextCode(CodeInvalidPatch)
	}
	var unknown []string
	for key := range fields {
		if !slices.Contains(allowed, key) {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, goerrors.New(
			fmt.Sprintf("unknown %s keys: %s", name, strings.Join(unknown, ", ")),
			goerrors.CategoryValidation,
		).WithTextCode(CodeInvalidPatch)
	}
	return fields, nil
}

func invalidPatch(err error) error {
	return goerrors.Wrap(err, goerrors.CategoryValidation, "malformed metadata").WithTextCode(CodeInvalidPatch)
}

// SectionFields are the section values exposed by the editor form.
type SectionFields struct {
	Label        string
	IsActive     bool
	DisplayOrder int
}

func SectionFieldsOf(s Section) SectionFields {
	return SectionFields{
		Label:        s.Metadata.SectionLabel,
		IsActive:     s.Metadata.IsActive,
		DisplayOrder: s.Metadata.DisplayOrder,
	}
}

// BlockFields are the content block values exposed by the editor form.
type BlockFields struct {
	Headline       string
	Subheading     string
	PrimaryContent string
	CTAText        string
	CTAURL         string
	CTAStyle       CTAStyle
}

func BlockFieldsOf(b *ContentBlock) BlockFields {
	if b == nil {
		return BlockFields{}
	}
	f := BlockFields{
		Headline:       b.Metadata.Headline,
		Subheading:     b.Metadata.Subheading,
		PrimaryContent: b.Metadata.PrimaryContent,
	}
	if cta := b.Metadata.CallToAction; cta != nil {
		f.CTAText = cta.Text
		f.CTAURL = cta.URL
		f.CTAStyle = cta.Style
	}
	return f
}

// DiffSection returns a patch holding only the fields that changed.
func DiffSection(original, edited SectionFields) SectionPatch {
	var p SectionPatch
	if edited.Label != original.Label {
		p.SectionLabel = &edited.Label
	}
	if edited.IsActive != original.IsActive {
		p.IsActive = &edited.IsActive
	}
	if edited.DisplayOrder != original.DisplayOrder {
		p.DisplayOrder = &edited.DisplayOrder
	}
	return p
}

// DiffContentBlock returns a patch holding only the fields that changed. A
// change to either call-to-action field sends the whole call-to-action,
// keeping the original style.
func DiffContentBlock(original, edited BlockFields) ContentBlockPatch {
	var p ContentBlockPatch
	if edited.Headline != original.Headline {
		p.Headline = &edited.Headline
	}
	if edited.Subheading != original.Subheading {
		p.Subheading = &edited.Subheading
	}
	if edited.PrimaryContent != original.PrimaryContent {
		p.PrimaryContent = &edited.PrimaryContent
	}
	if edited.CTAText != original.CTAText || edited.CTAURL != original.CTAURL {
		style := original.CTAStyle
		if style == "" {
			style = CTAPrimary
		}
		p.CallToAction = &CallToAction{Text: edited.CTAText, URL: edited.CTAURL, Style: style}
	}
	return p
}
