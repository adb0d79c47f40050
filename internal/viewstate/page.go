// Package viewstate holds the navigation controller of the portfolio and the
// transition contracts that presentation layers play when it changes.
//
// Nothing in this package renders anything. A presentation layer (the web
// templates or the terminal UI) reads the controller, asks the sequencer which
// phase applies at a given instant, and draws accordingly.
package viewstate

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownPage is returned by ParsePage for identifiers outside the page set.
var ErrUnknownPage = errors.New("unknown page")

// Page identifies one of the mutually exclusive top-level views.
type Page uint8

const (
	pageNone Page = iota
	PageHome
	PageProject
	PageContact
)

// Pages lists every page in navigation order.
var Pages = []Page{PageHome, PageProject, PageContact}

var pageNames = map[Page]string{
	PageHome:    "home",
	PageProject: "project",
	PageContact: "contact",
}

var pageLabels = map[Page]string{
	PageHome:    "Home",
	PageProject: "Work",
	PageContact: "Contact",
}

// ParsePage maps a transport identifier ("home", "project", "contact") to a Page.
func ParsePage(s string) (Page, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for p, name := range pageNames {
		if name == s {
			return p, nil
		}
	}
	return pageNone, fmt.Errorf("parsing %q: %w", s, ErrUnknownPage)
}

// Valid reports whether p is one of Pages.
func (p Page) Valid() bool {
	_, ok := pageNames[p]
	return ok
}

func (p Page) String() string {
	if name, ok := pageNames[p]; ok {
		return name
	}
	return "none"
}

// Label is the navigation link text for the page.
func (p Page) Label() string {
	return pageLabels[p]
}
