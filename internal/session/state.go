// Package session gives every visitor their own view state and serializes
// all changes to it on a per-visitor loop.
package session

import (
	"time"

	"github.com/Zachkp/folio/internal/catalog"
	"github.com/Zachkp/folio/internal/contact"
	"github.com/Zachkp/folio/internal/viewstate"
)

// Deps are shared, read-only collaborators of every session.
type Deps struct {
	Catalog     *catalog.Catalog
	Sender      contact.Sender
	ResetAfter  time.Duration
	SendTimeout time.Duration
	// AfterFunc and Now default to the time package.
	AfterFunc func(time.Duration, func())
	Now       func() time.Time
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

// State is one visitor's navigation, project page and contact form.
// It is only touched from its session's loop.
type State struct {
	Nav      *viewstate.Navigation
	Projects *catalog.ListState
	Contact  *contact.Form

	// Version increases on every observed change; presentation layers
	// compare it to skip redundant redraws.
	Version uint64

	deps Deps
	post func(func())
}

func newState(deps Deps, post func(func())) *State {
	s := &State{
		Nav:      viewstate.NewNavigation(),
		Projects: catalog.NewListState(deps.Catalog),
		deps:     deps,
		post:     post,
	}
	s.Nav.SetClock(deps.now)
	s.Contact = s.newForm()
	s.Nav.Subscribe(s.onNavigate)
	return s
}

func (s *State) newForm() *contact.Form {
	opts := []contact.Option{contact.WithClock(s.deps.now)}
	if s.deps.ResetAfter > 0 {
		opts = append(opts, contact.WithResetAfter(s.deps.ResetAfter))
	}
	if s.deps.SendTimeout > 0 {
		opts = append(opts, contact.WithSendTimeout(s.deps.SendTimeout))
	}
	if s.deps.AfterFunc != nil {
		opts = append(opts, contact.WithAfterFunc(s.deps.AfterFunc))
	}
	f := contact.NewForm(s.deps.Sender, s.post, opts...)
	f.Subscribe(func(contact.Status) { s.Version++ })
	return f
}

// onNavigate applies page lifecycles: the project page forgets its filter
// and selection when left, and each visit to the contact page gets a new form.
func (s *State) onNavigate(ev viewstate.Event) {
	s.Version++
	if ev.Kind != viewstate.EventNavigate || ev.From == ev.To {
		return
	}
	if ev.From == viewstate.PageProject {
		s.Projects.Reset()
	}
	if ev.To == viewstate.PageContact {
		s.Contact = s.newForm()
	}
}

// Touch marks a change made outside the observed controllers.
func (s *State) Touch() { s.Version++ }
