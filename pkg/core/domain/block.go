package domain

import (
	"encoding/json"
	"strings"
)

type BlockType string

const (
	BlockHero         BlockType = "hero"
	BlockTextBlock    BlockType = "text_block"
	BlockImageGallery BlockType = "image_gallery"
	BlockTestimonials BlockType = "testimonials"
	BlockFeatures     BlockType = "features"
	BlockCTASection   BlockType = "cta_section"
	BlockContactForm  BlockType = "contact_form"
	BlockAboutSection BlockType = "about_section"
)

var blockIcons = map[BlockType]string{
	BlockHero:         "🎯",
	BlockFeatures:     "⭐",
	BlockTestimonials: "💬",
	BlockAboutSection: "📋",
	BlockCTASection:   "🎯",
	BlockContactForm:  "📧",
	BlockImageGallery: "🖼️",
}

// Icon is the glyph shown next to the block type in the wireframe.
func (t BlockType) Icon() string {
	if icon, ok := blockIcons[t]; ok {
		return icon
	}
	return "📦"
}

type CTAStyle string

const (
	CTAPrimary CTAStyle = "primary"
	CTAOutline CTAStyle = "outline"
	CTAText    CTAStyle = "text"
)

// ContentBlock is a reusable typed content payload. Several sections may
// reference the same block.
type ContentBlock struct {
	ID       string        `json:"id"`
	Slug     string        `json:"slug,omitempty"`
	Title    string        `json:"title,omitempty"`
	Type     string        `json:"type,omitempty"`
	Metadata BlockMetadata `json:"metadata"`
}

type BlockMetadata struct {
	BlockName      string            `json:"block_name"`
	BlockType      Choice[BlockType] `json:"block_type"`
	PrimaryContent string            `json:"primary_content,omitempty"`
	Headline       string            `json:"headline,omitempty"`
	Subheading     string            `json:"subheading,omitempty"`
	MediaAssets    []MediaAsset      `json:"media_assets,omitempty"`
	CallToAction   *CallToAction     `json:"call_to_action,omitempty"`
	BlockSettings  *BlockSettings    `json:"block_settings,omitempty"`
	IsReusable     bool              `json:"is_reusable"`
}

// UnmarshalJSON accepts an unexpanded relation id as well as a full object.
func (b *ContentBlock) UnmarshalJSON(data []byte) error {
	if isJSONString(data) {
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		*b = ContentBlock{ID: id}
		return nil
	}
	type alias ContentBlock
	var decoded alias
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*b = ContentBlock(decoded)
	if cta := b.Metadata.CallToAction; cta != nil && cta.IsEmpty() {
		b.Metadata.CallToAction = nil
	}
	return nil
}

func (b *ContentBlock) Kind() BlockType {
	if b == nil {
		return ""
	}
	return b.Metadata.BlockType.Key
}

// Settings returns the block settings, never nil.
func (b *ContentBlock) Settings() BlockSettings {
	if b == nil || b.Metadata.BlockSettings == nil {
		return BlockSettings{}
	}
	return *b.Metadata.BlockSettings
}

// FirstMedia returns the first media asset with a usable url.
func (b *ContentBlock) FirstMedia() (MediaAsset, bool) {
	if b == nil {
		return MediaAsset{}, false
	}
	for _, m := range b.Metadata.MediaAssets {
		if m.Source() != "" {
			return m, true
		}
	}
	return MediaAsset{}, false
}

// MediaAsset is a CMS file with a raw url and a CDN url that accepts
// transformation parameters.
type MediaAsset struct {
	URL      string `json:"url"`
	ImgixURL string `json:"imgix_url"`
}

func (m *MediaAsset) UnmarshalJSON(data []byte) error {
	if !isJSONObject(data) {
		*m = MediaAsset{}
		return nil
	}
	type alias MediaAsset
	var decoded alias
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*m = MediaAsset(decoded)
	return nil
}

// Source prefers the CDN url.
func (m MediaAsset) Source() string {
	if m.ImgixURL != "" {
		return m.ImgixURL
	}
	return m.URL
}

// Transformed appends CDN parameters (e.g. "w=600&h=400") to the CDN url.
// Raw urls are returned untouched.
func (m MediaAsset) Transformed(params string) string {
	if m.ImgixURL == "" || params == "" {
		return m.Source()
	}
	sep := "?"
	if strings.Contains(m.ImgixURL, "?") {
		sep = "&"
	}
	return m.ImgixURL + sep + params
}

type CallToAction struct {
	Text  string   `json:"text"`
	URL   string   `json:"url"`
	Style CTAStyle `json:"style"`
}

func (c *CallToAction) UnmarshalJSON(data []byte) error {
	if !isJSONObject(data) {
		*c = CallToAction{}
		return nil
	}
	type alias CallToAction
	var decoded alias
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*c = CallToAction(decoded)
	return nil
}

func (c CallToAction) IsEmpty() bool {
	return c.Text == "" && c.URL == ""
}

// StyleOrDefault falls back to primary.
func (c CallToAction) StyleOrDefault() CTAStyle {
	if c.Style == "" {
		return CTAPrimary
	}
	return c.Style
}

// BlockSettings holds the known presentation switches of a block.
type BlockSettings struct {
	TextAlignment     string        `json:"text_alignment,omitempty"`
	Height            string        `json:"height,omitempty"`
	BackgroundOverlay bool          `json:"background_overlay,omitempty"`
	Layout            string        `json:"layout,omitempty"`
	ContentFormat     string        `json:"content_format,omitempty"`
	Features          []Feature     `json:"features,omitempty"`
	Testimonials      []Testimonial `json:"testimonials,omitempty"`
}

type Feature struct {
	Icon        string `json:"icon"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type Testimonial struct {
	Quote  string `json:"quote"`
	Author string `json:"author"`
	Title  string `json:"title"`
	Avatar string `json:"avatar,omitempty"`
}

// UnmarshalJSON reads the settings leniently. Malformed values for a single
// switch are ignored instead of failing the whole page.
func (s *BlockSettings) UnmarshalJSON(data []byte) error {
	*s = BlockSettings{}
	if !isJSONObject(data) {
		return nil
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	_ = json.Unmarshal(raw["text_alignment"], &s.TextAlignment)
	_ = json.Unmarshal(raw["height"], &s.Height)
	_ = json.Unmarshal(raw["layout"], &s.Layout)
	_ = json.Unmarshal(raw["content_format"], &s.ContentFormat)
	_ = json.Unmarshal(raw["features"], &s.Features)
	_ = json.Unmarshal(raw["testimonials"], &s.Testimonials)

	if v, ok := raw["background_overlay"]; ok {
		var b bool
		if err := json.Unmarshal(v, &b); err == nil {
			s.BackgroundOverlay = b
		} else {
			var str string
			if json.Unmarshal(v, &str) == nil {
				s.BackgroundOverlay = str == "true"
			}
		}
	}
	return nil
}

func (s BlockSettings) Alignment() string {
	switch s.TextAlignment {
	case "left", "right", "center":
		return s.TextAlignment
	default:
		return "center"
	}
}

func (s BlockSettings) IsFullscreen() bool {
	return s.Height == "fullscreen"
}

// ImageRight reports whether the about layout puts the image on the right.
func (s BlockSettings) ImageRight() bool {
	return s.Layout == "image_right"
}

func (s BlockSettings) IsMarkdown() bool {
	return strings.EqualFold(s.ContentFormat, "markdown")
}
