package domain

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

type ResponsiveBehavior string

const (
	ResponsiveStandard    ResponsiveBehavior = "standard"
	ResponsiveHideMobile  ResponsiveBehavior = "hide_mobile"
	ResponsiveHideDesktop ResponsiveBehavior = "hide_desktop"
	ResponsiveStackMobile ResponsiveBehavior = "stack_mobile"
)

var responsiveLabels = map[ResponsiveBehavior]string{
	ResponsiveStandard:    "Standard",
	ResponsiveHideMobile:  "Hide on Mobile",
	ResponsiveHideDesktop: "Hide on Desktop",
	ResponsiveStackMobile: "Stack on Mobile",
}

func (r ResponsiveBehavior) Label() string {
	if label, ok := responsiveLabels[r]; ok {
		return label
	}
	return KeyLabel(string(r))
}

// Section is a positioned slot on a page, optionally bound to a content block.
type Section struct {
	ID       string          `json:"id"`
	Slug     string          `json:"slug,omitempty"`
	Title    string          `json:"title,omitempty"`
	Type     string          `json:"type,omitempty"`
	Metadata SectionMetadata `json:"metadata"`
}

type SectionMetadata struct {
	SectionID          string                      `json:"section_id"`
	SectionLabel       string                      `json:"section_label"`
	WireframeReference string                      `json:"wireframe_reference,omitempty"`
	ContentBlock       *ContentBlock               `json:"content_block,omitempty"`
	DisplayOrder       int                         `json:"display_order"`
	IsActive           bool                        `json:"is_active"`
	ResponsiveBehavior *Choice[ResponsiveBehavior] `json:"responsive_behavior,omitempty"`
	CustomOverrides    *StyleOverrides             `json:"custom_overrides,omitempty"`
}

// UnmarshalJSON accepts an unexpanded relation id as well as a full object.
func (s *Section) UnmarshalJSON(data []byte) error {
	if isJSONString(data) {
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		*s = Section{ID: id}
		return nil
	}
	type alias Section
	var decoded alias
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*s = Section(decoded)
	if b := s.Metadata.ContentBlock; b != nil && b.ID == "" && b.Metadata.BlockName == "" {
		s.Metadata.ContentBlock = nil
	}
	return nil
}

// UnmarshalJSON reads display_order and is_active leniently. CMS objects
// edited by hand carry "" or "3" for the order and "true" for the flag; a
// value that cannot be read falls back to 0 or false rather than failing the
// whole page.
func (m *SectionMetadata) UnmarshalJSON(data []byte) error {
	type alias SectionMetadata
	decoded := struct {
		*alias
		DisplayOrder json.RawMessage `json:"display_order"`
		IsActive     json.RawMessage `json:"is_active"`
	}{alias: (*alias)(m)}
	*m = SectionMetadata{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	m.DisplayOrder = looseInt(decoded.DisplayOrder)
	m.IsActive = looseBool(decoded.IsActive)
	return nil
}

func looseInt(raw json.RawMessage) int {
	var v any
	if len(raw) == 0 || json.Unmarshal(raw, &v) != nil {
		return 0
	}
	switch t := v.(type) {
	case float64:
		return int(t)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0
		}
		return n
	}
	return 0
}

func looseBool(raw json.RawMessage) bool {
	var v any
	if len(raw) == 0 || json.Unmarshal(raw, &v) != nil {
		return false
	}
	switch t := v.(type) {
	case bool:
		return t
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(t))
		return err == nil && b
	case float64:
		return t != 0
	}
	return false
}

// Reference returns the explicit wireframe reference or derives one from the
// display order and section id.
func (s Section) Reference() string {
	if s.Metadata.WireframeReference != "" {
		return s.Metadata.WireframeReference
	}
	return WireframeReference(s.Metadata.DisplayOrder, s.Metadata.SectionID)
}

// WireframeReference formats WF-{order:03}-{SECTION_ID}.
func WireframeReference(order int, sectionID string) string {
	return fmt.Sprintf("WF-%03d-%s", order, strings.ToUpper(sectionID))
}

// Block returns the bound content block, or nil.
func (s Section) Block() *ContentBlock {
	return s.Metadata.ContentBlock
}

func (s Section) Responsive() ResponsiveBehavior {
	if r := s.Metadata.ResponsiveBehavior; r != nil && r.Key != "" {
		return r.Key
	}
	return ResponsiveStandard
}

func (s Section) Overrides() StyleOverrides {
	if s.Metadata.CustomOverrides == nil {
		return StyleOverrides{}
	}
	return *s.Metadata.CustomOverrides
}

var (
	colorPattern  = regexp.MustCompile(`^(#[0-9a-fA-F]{3}|#[0-9a-fA-F]{6}|[a-zA-Z]{3,20})$`)
	lengthPattern = regexp.MustCompile(`^(0|\d+(\.\d+)?(px|rem|em|%))$`)
)

// StyleOverrides is the closed set of per-section style overrides.
type StyleOverrides struct {
	BackgroundColor string `json:"background_color,omitempty"`
	PaddingTop      string `json:"padding_top,omitempty"`
	PaddingBottom   string `json:"padding_bottom,omitempty"`
	MarginBottom    string `json:"margin_bottom,omitempty"`
}

// StyleOverrideKeys are the only keys accepted in a custom_overrides patch.
var StyleOverrideKeys = []string{"background_color", "padding_top", "padding_bottom", "margin_bottom"}

// UnmarshalJSON ignores non-object values; the CMS sends "" for an empty
// JSON metafield.
func (o *StyleOverrides) UnmarshalJSON(data []byte) error {
	if !isJSONObject(data) {
		*o = StyleOverrides{}
		return nil
	}
	type alias StyleOverrides
	var decoded alias
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*o = StyleOverrides(decoded)
	return nil
}

func (o StyleOverrides) Validate() error {
	return validation.ValidateStruct(&o,
		validation.Field(&o.BackgroundColor, validation.Match(colorPattern).Error("must be a hex color or a color name")),
		validation.Field(&o.PaddingTop, validation.Match(lengthPattern).Error("must be a length such as 2rem or 40px")),
		validation.Field(&o.PaddingBottom, validation.Match(lengthPattern).Error("must be a length such as 2rem or 40px")),
		validation.Field(&o.MarginBottom, validation.Match(lengthPattern).Error("must be a length such as 2rem or 40px")),
	)
}

func (o StyleOverrides) IsEmpty() bool {
	return o == StyleOverrides{}
}

// CSS renders the overrides as inline declarations. Values that fail
// validation are dropped so stored data can never inject arbitrary CSS.
func (o StyleOverrides) CSS() string {
	var decls []string
	add := func(prop, value string, pattern *regexp.Regexp) {
		if value != "" && pattern.MatchString(value) {
			decls = append(decls, prop+": "+value)
		}
	}
	add("background-color", o.BackgroundColor, colorPattern)
	add("padding-top", o.PaddingTop, lengthPattern)
	add("padding-bottom", o.PaddingBottom, lengthPattern)
	add("margin-bottom", o.MarginBottom, lengthPattern)
	return strings.Join(decls, "; ")
}
