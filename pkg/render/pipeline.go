package render

import (
	"cmp"
	"slices"

	"github.com/wadjakorntonsri/go-wireframe-builder/pkg/core/domain"
)

// Layout is a page's sections split by the active flag, each group ordered by
// display_order. Wireframe and preview both render from a Layout so they
// cannot disagree on which sections show or in what order.
type Layout struct {
	Active   []domain.Section
	Inactive []domain.Section
}

func (l Layout) Total() int {
	return len(l.Active) + len(l.Inactive)
}

// Arrange partitions and sorts the page sections. The page is not modified.
func Arrange(page *domain.Page) Layout {
	layout := Layout{Active: []domain.Section{}, Inactive: []domain.Section{}}
	for _, s := range page.Sections() {
		if s.Metadata.IsActive {
			layout.Active = append(layout.Active, s)
		} else {
			layout.Inactive = append(layout.Inactive, s)
		}
	}
	SortSections(layout.Active)
	SortSections(layout.Inactive)
	return layout
}

// SortSections orders by display_order in place; ties keep their order.
func SortSections(sections []domain.Section) {
	slices.SortStableFunc(sections, func(a, b domain.Section) int {
		return cmp.Compare(a.Metadata.DisplayOrder, b.Metadata.DisplayOrder)
	})
}
