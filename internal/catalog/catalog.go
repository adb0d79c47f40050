// Package catalog holds the read-only project catalog and the per-visit
// filter and selection state of the project page.
package catalog

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var (
	ErrUnknownCategory = errors.New("unknown category")
	ErrUnknownProject  = errors.New("unknown project")
	ErrInvalidCatalog  = errors.New("invalid catalog")
)

// All is the sentinel category that matches every project.
const All = "All"

// Categories is the fixed filter set, in display order.
var Categories = []string{All, "Web Development", "Design", "Mobile App", "Full Stack"}

// IsCategory reports whether c is one of Categories.
func IsCategory(c string) bool {
	for _, known := range Categories {
		if known == c {
			return true
		}
	}
	return false
}

// Project is one catalog entry.
type Project struct {
	ID           int      `yaml:"id"`
	Title        string   `yaml:"title"`
	Category     string   `yaml:"category"`
	Year         string   `yaml:"year"`
	Description  string   `yaml:"description"`
	Technologies []string `yaml:"technologies"`
	// Image is a search query for the image source, or an absolute URL.
	Image     string `yaml:"image"`
	LiveURL   string `yaml:"live_url"`
	SourceURL string `yaml:"source_url"`
}

func (p Project) clone() Project {
	p.Technologies = append([]string(nil), p.Technologies...)
	return p
}

// Catalog is an ordered, immutable list of projects.
type Catalog struct {
	projects []Project
	byID     map[int]int
}

// New validates projects and returns a Catalog preserving their order.
func New(projects []Project) (*Catalog, error) {
	c := &Catalog{
		projects: make([]Project, len(projects)),
		byID:     make(map[int]int, len(projects)),
	}
	for i, p := range projects {
		if err := validate(p); err != nil {
			return nil, err
		}
		if _, dup := c.byID[p.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate project id %d", ErrInvalidCatalog, p.ID)
		}
		c.projects[i] = p.clone()
		c.byID[p.ID] = i
	}
	return c, nil
}

func validate(p Project) error {
	if p.ID <= 0 {
		return fmt.Errorf("%w: project id must be positive, got %d", ErrInvalidCatalog, p.ID)
	}
	if strings.TrimSpace(p.Title) == "" {
		return fmt.Errorf("%w: project %d has no title", ErrInvalidCatalog, p.ID)
	}
	seen := make(map[string]bool, len(p.Technologies))
	for _, tech := range p.Technologies {
		if seen[tech] {
			return fmt.Errorf("%w: project %d lists %q twice", ErrInvalidCatalog, p.ID, tech)
		}
		seen[tech] = true
	}
	for _, link := range []string{p.LiveURL, p.SourceURL} {
		if link == "" {
			continue
		}
		if _, err := url.Parse(link); err != nil {
			return fmt.Errorf("%w: project %d link %q: %v", ErrInvalidCatalog, p.ID, link, err)
		}
	}
	return nil
}

// Len returns the number of projects.
func (c *Catalog) Len() int { return len(c.projects) }

// All returns a copy of every project in catalog order.
func (c *Catalog) All() []Project {
	out := make([]Project, len(c.projects))
	for i, p := range c.projects {
		out[i] = p.clone()
	}
	return out
}

// Get looks up a project by id.
func (c *Catalog) Get(id int) (Project, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Project{}, false
	}
	return c.projects[i].clone(), true
}

// Filter returns the projects in category, in catalog order. All returns the
// full catalog. A category with no projects yields an empty, non-nil slice.
func (c *Catalog) Filter(category string) ([]Project, error) {
	if !IsCategory(category) {
		return nil, fmt.Errorf("filtering by %q: %w", category, ErrUnknownCategory)
	}
	if category == All {
		return c.All(), nil
	}
	out := []Project{}
	for _, p := range c.projects {
		if p.Category == category {
			out = append(out, p.clone())
		}
	}
	return out, nil
}
