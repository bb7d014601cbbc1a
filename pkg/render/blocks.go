package render

import (
	"bytes"
	"html/template"

	"github.com/wadjakorntonsri/go-wireframe-builder/pkg/core/domain"
)

// CDN parameters used by the preview layouts.
const (
	heroImageParams  = "w=1920&h=1080&fit=crop&auto=format,compress"
	aboutImageParams = "w=600&h=400&fit=crop&auto=format,compress"
)

// BlockRenderer renders one active section in preview mode. There is one
// variant per block type with a dedicated layout and a default for the rest.
type BlockRenderer interface {
	Name() string
	Render(e *Engine, v SectionView) (template.HTML, error)
}

// Resolve picks the renderer for a content block type.
func Resolve(kind domain.BlockType) BlockRenderer {
	switch kind {
	case domain.BlockHero:
		return heroRenderer{}
	case domain.BlockFeatures:
		return featuresRenderer{}
	case domain.BlockTestimonials:
		return testimonialsRenderer{}
	case domain.BlockAboutSection:
		return aboutRenderer{}
	default:
		return defaultRenderer{}
	}
}

// SectionView is the data shared by every block template.
type SectionView struct {
	Section   domain.Section
	Block     *domain.ContentBlock
	Reference string
	Style     template.CSS
	Body      template.HTML
	Settings  domain.BlockSettings
	CTA       *domain.CallToAction
}

func (e *Engine) sectionView(s domain.Section) SectionView {
	block := s.Block()
	v := SectionView{
		Section:   s,
		Block:     block,
		Reference: s.Reference(),
		Style:     template.CSS(s.Overrides().CSS()),
		Settings:  block.Settings(),
	}
	if block != nil {
		v.Body = e.Body(block)
		v.CTA = block.Metadata.CallToAction
	}
	return v
}

// renderSection resolves the variant and applies it. Overrides are applied by
// every variant through SectionView.Style.
func (e *Engine) renderSection(s domain.Section) (template.HTML, error) {
	v := e.sectionView(s)
	return Resolve(v.Block.Kind()).Render(e, v)
}

func (e *Engine) execute(name string, data any) (template.HTML, error) {
	var buf bytes.Buffer
	if err := e.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

type heroRenderer struct{}

func (heroRenderer) Name() string { return "hero" }

func (heroRenderer) Render(e *Engine, v SectionView) (template.HTML, error) {
	if v.Block == nil {
		return "", nil
	}
	data := struct {
		SectionView
		Background string
		Overlay    bool
	}{SectionView: v}
	if media, ok := v.Block.FirstMedia(); ok {
		data.Background = media.Transformed(heroImageParams)
		data.Overlay = v.Settings.BackgroundOverlay
	}
	return e.execute("block/hero", data)
}

type featuresRenderer struct{}

func (featuresRenderer) Name() string { return "features" }

func (featuresRenderer) Render(e *Engine, v SectionView) (template.HTML, error) {
	if v.Block == nil {
		return "", nil
	}
	features := v.Settings.Features
	if len(features) == 0 {
		features = sampleFeatures
	}
	return e.execute("block/features", struct {
		SectionView
		Features []domain.Feature
	}{v, features})
}

type testimonialsRenderer struct{}

func (testimonialsRenderer) Name() string { return "testimonials" }

func (testimonialsRenderer) Render(e *Engine, v SectionView) (template.HTML, error) {
	if v.Block == nil {
		return "", nil
	}
	items := v.Settings.Testimonials
	if len(items) == 0 {
		items = sampleTestimonials
	}
	return e.execute("block/testimonials", struct {
		SectionView
		Testimonials []domain.Testimonial
	}{v, items})
}

type aboutRenderer struct{}

func (aboutRenderer) Name() string { return "about_section" }

func (aboutRenderer) Render(e *Engine, v SectionView) (template.HTML, error) {
	if v.Block == nil {
		return "", nil
	}
	data := struct {
		SectionView
		Image      string
		ImageRight bool
	}{SectionView: v, ImageRight: v.Settings.ImageRight()}
	if media, ok := v.Block.FirstMedia(); ok {
		data.Image = media.Transformed(aboutImageParams)
	}
	return e.execute("block/about", data)
}

// defaultRenderer shows label, headline, subheading, body and call to action.
type defaultRenderer struct{}

func (defaultRenderer) Name() string { return "default" }

func (defaultRenderer) Render(e *Engine, v SectionView) (template.HTML, error) {
	return e.execute("block/default", v)
}

var sampleFeatures = []domain.Feature{
	{Icon: "🚀", Title: "Fast Performance", Description: "Lightning-fast loading times and optimized performance."},
	{Icon: "🔒", Title: "Secure & Reliable", Description: "Enterprise-grade security with 99.9% uptime guarantee."},
	{Icon: "📱", Title: "Mobile Ready", Description: "Fully responsive design that works on all devices."},
	{Icon: "⚡", Title: "Easy Integration", Description: "Simple setup and seamless integration with existing tools."},
	{Icon: "🎨", Title: "Customizable", Description: "Flexible design system that adapts to your brand."},
	{Icon: "📊", Title: "Analytics", Description: "Detailed insights and analytics to track performance."},
}

var sampleTestimonials = []domain.Testimonial{
	{
		Quote:  "This platform has completely transformed how we manage our business. The results speak for themselves.",
		Author: "Sarah Johnson",
		Title:  "CEO of TechStart",
		Avatar: "https://images.unsplash.com/photo-1494790108755-2616b612b8bb?w=100&h=100&fit=crop&auto=format,compress",
	},
	{
		Quote:  "Exceptional service and support. The team went above and beyond to ensure our success.",
		Author: "Michael Chen",
		Title:  "Founder of InnovateNow",
		Avatar: "https://images.unsplash.com/photo-1472099645785-5658abf4ff4e?w=100&h=100&fit=crop&auto=format,compress",
	},
	{
		Quote:  "We saw a 300% increase in efficiency within the first month. Couldn't be happier!",
		Author: "Emma Rodriguez",
		Title:  "Operations Director",
		Avatar: "https://images.unsplash.com/photo-1438761681033-6461ffad8d80?w=100&h=100&fit=crop&auto=format,compress",
	},
}
