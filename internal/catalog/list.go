package catalog

import "fmt"

// ListState is the project page's filter and detail-overlay selection.
// The zero value is not usable; create one with NewListState.
type ListState struct {
	catalog  *Catalog
	filter   string
	selected *Project
}

// NewListState starts unfiltered with nothing selected.
func NewListState(c *Catalog) *ListState {
	return &ListState{catalog: c, filter: All}
}

// Filter returns the active category.
func (s *ListState) Filter() string { return s.filter }

// SetFilter switches the active category. Unknown categories leave the
// filter unchanged.
func (s *ListState) SetFilter(category string) error {
	if !IsCategory(category) {
		return fmt.Errorf("setting filter %q: %w", category, ErrUnknownCategory)
	}
	s.filter = category
	return nil
}

// Visible returns the projects matching the active filter.
func (s *ListState) Visible() []Project {
	out, err := s.catalog.Filter(s.filter)
	if err != nil {
		// filter is only ever set to a known category
		return []Project{}
	}
	return out
}

// Selected returns the project shown in the detail overlay, if any.
func (s *ListState) Selected() (Project, bool) {
	if s.selected == nil {
		return Project{}, false
	}
	return *s.selected, true
}

// Select opens the detail overlay for id. An id missing from the catalog
// keeps the previous selection.
func (s *ListState) Select(id int) error {
	p, ok := s.catalog.Get(id)
	if !ok {
		return fmt.Errorf("selecting project %d: %w", id, ErrUnknownProject)
	}
	s.selected = &p
	return nil
}

// ClearSelection dismisses the detail overlay.
func (s *ListState) ClearSelection() {
	s.selected = nil
}

// Reset returns to the unfiltered, unselected state.
func (s *ListState) Reset() {
	s.filter = All
	s.selected = nil
}
