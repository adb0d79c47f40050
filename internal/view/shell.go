// Package view turns view state and site copy into plain view models for the
// HTML templates and the terminal UI. Nothing here keeps state between calls.
package view

import (
	"fmt"
	"html/template"
	"net/url"
	"strconv"
	"time"

	"github.com/Zachkp/folio/internal/content"
	"github.com/Zachkp/folio/internal/imageloader"
	"github.com/Zachkp/folio/internal/viewstate"
)

// menuItemHeight is the rendered height of one overlay row in pixels.
const menuItemHeight = 64

// Motion is an element's pose at render time plus the CSS animation that
// carries it on in the browser.
type Motion struct {
	Phase    string
	Opacity  float64
	OffsetY  float64
	Delay    time.Duration
	Duration time.Duration
	Easing   string
}

// Style renders m as inline CSS.
func (m Motion) Style() template.CSS {
	name := "page-enter"
	switch m.Phase {
	case viewstate.PhaseExit.String():
		name = "page-exit"
	case viewstate.PhaseAnimate.String():
		return template.CSS("opacity:1;transform:none")
	}
	return template.CSS(fmt.Sprintf(
		"opacity:%s;transform:translateY(%spx);animation:%s %dms %s %dms both",
		ff(m.Opacity), ff(m.OffsetY), name, m.Duration.Milliseconds(), m.Easing, m.Delay.Milliseconds(),
	))
}

// Reveal staggers an element's entrance inside a page.
type Reveal struct {
	Delay    time.Duration
	Duration time.Duration
}

func (r Reveal) Style() template.CSS {
	return template.CSS(fmt.Sprintf("animation-delay:%dms;animation-duration:%dms", r.Delay.Milliseconds(), r.Duration.Milliseconds()))
}

func stagger(base, step time.Duration, i int, d time.Duration) Reveal {
	return Reveal{Delay: base + time.Duration(i)*step, Duration: d}
}

// NavItem is one entry of the top bar and the mobile menu.
type NavItem struct {
	Page   viewstate.Page
	Key    string
	Label  string
	Active bool
}

// Menu is the mobile overlay at render time.
type Menu struct {
	Open    bool
	Visible bool
	Height  float64
	Opacity float64
	Items   []NavItem
}

// Style sizes the overlay and lets CSS finish the interpolation.
func (m Menu) Style() template.CSS {
	target, opacity := 0, 0
	if m.Open {
		target, opacity = len(m.Items)*menuItemHeight, 1
	}
	return template.CSS(fmt.Sprintf(
		"--menu-from:%spx;--menu-from-opacity:%s;height:%dpx;opacity:%d;transition:height %dms %s,opacity %dms %s",
		ff(m.Height), ff(m.Opacity), target, opacity,
		viewstate.MenuTransition.Duration.Milliseconds(), viewstate.MenuTransition.Easing.CSS(),
		viewstate.MenuTransition.Duration.Milliseconds(), viewstate.MenuTransition.Easing.CSS(),
	))
}

// Shell is the frame around every page: navigation, menu overlay and the
// one page currently mounted.
type Shell struct {
	Brand  string
	Nav    []NavItem
	Menu   Menu
	Page   viewstate.Page
	Motion Motion
	// Refresh is how long until the mounted page changes; zero once settled.
	Refresh time.Duration
	Footer  content.Footer
}

// NewShell resolves navigation at instant now.
func NewShell(site *content.Site, nav *viewstate.Navigation, now time.Time) Shell {
	seq := viewstate.DefaultSequencer()
	from, to, at := nav.LastTransition()
	frame := seq.Frame(from, to, at, now)

	items := make([]NavItem, 0, len(viewstate.Pages))
	for _, p := range viewstate.Pages {
		items = append(items, NavItem{Page: p, Key: p.String(), Label: p.Label(), Active: nav.IsActive(p)})
	}

	mf := viewstate.MenuPose(nav.MenuOpen(), nav.MenuFrom(), nav.MenuChangedAt(), now, float64(len(items)*menuItemHeight))

	s := Shell{
		Brand: site.Brand,
		Nav:   items,
		Menu: Menu{
			Open:    nav.MenuOpen(),
			Visible: mf.Visible || nav.MenuOpen(),
			Height:  mf.Height,
			Opacity: mf.Opacity,
			Items:   items,
		},
		Page: frame.Mounted,
		Motion: Motion{
			Phase:    frame.Phase.String(),
			Opacity:  frame.Pose.Opacity,
			OffsetY:  frame.Pose.OffsetY,
			Duration: seq.Transition.Duration,
			Easing:   seq.Transition.Easing.CSS(),
		},
		Refresh: frame.EnterDelay,
		Footer:  site.Footer,
	}
	// a leg already under way resumes part way through
	switch frame.Phase {
	case viewstate.PhaseExit:
		if elapsed := now.Sub(at); elapsed > 0 {
			s.Motion.Delay = -elapsed
		}
	case viewstate.PhaseInitial:
		enter := at
		if from.Valid() {
			enter = at.Add(seq.Transition.Duration)
		}
		if elapsed := now.Sub(enter); elapsed > 0 {
			s.Motion.Delay = -elapsed
		}
	}
	return s
}

// Image is a picture routed through the fallback loader.
type Image struct {
	Src    string
	Alt    string
	Width  int
	Height int
}

// ImagePath is the /img URL that serves ref at w×h, or a placeholder.
func ImagePath(ref, alt string, w, h int) string {
	q := url.Values{}
	q.Set("src", imageloader.SourceURL(ref, w, h))
	q.Set("alt", alt)
	q.Set("w", strconv.Itoa(w))
	q.Set("h", strconv.Itoa(h))
	return "/img?" + q.Encode()
}

func newImage(ref, alt string, w, h int) Image {
	return Image{Src: ImagePath(ref, alt, w, h), Alt: alt, Width: w, Height: h}
}

func ff(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}
