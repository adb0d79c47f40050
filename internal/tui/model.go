// Package tui is a terminal front end over the same session state the web
// server uses.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Zachkp/folio/internal/catalog"
	"github.com/Zachkp/folio/internal/contact"
	"github.com/Zachkp/folio/internal/content"
	"github.com/Zachkp/folio/internal/session"
	"github.com/Zachkp/folio/internal/view"
	"github.com/Zachkp/folio/internal/viewstate"
)

// frameInterval drives the page and menu animations.
const frameInterval = 60 * time.Millisecond

var fieldNames = []string{"name", "email", "subject", "message"}

type tickMsg time.Time

// snapshot is a copy of the session's view, taken on its loop.
type snapshot struct {
	shell    view.Shell
	home     *view.Home
	projects *view.Projects
	contact  *view.Contact
	filter   string
	visible  []catalog.Project
	selected *catalog.Project
	version  uint64
}

// Model is the bubbletea model.
type Model struct {
	site *content.Site
	sess *session.Session
	now  func() time.Time
	copy func(string) error

	snap   snapshot
	cursor int
	// focus is the contact field being typed into, -1 for none.
	focus int
	errs  map[string]string

	toast      string
	toastUntil time.Time
	width      int
	height     int
	styles     styles
}

// Option configures a Model.
type Option func(*Model)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Model) { m.now = now }
}

// WithClipboard replaces the system clipboard writer.
func WithClipboard(write func(string) error) Option {
	return func(m *Model) { m.copy = write }
}

// New returns a model over sess.
func New(site *content.Site, sess *session.Session, opts ...Option) *Model {
	m := &Model{
		site:   site,
		sess:   sess,
		now:    time.Now,
		copy:   clipboard.WriteAll,
		focus:  -1,
		styles: defaultStyles(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.refresh()
	return m
}

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m *Model) Init() tea.Cmd {
	return tick()
}

// refresh re-reads the session.
func (m *Model) refresh() {
	var snap snapshot
	err := m.sess.Do(func(st *session.State) error {
		snap = snapshot{
			shell:   view.NewShell(m.site, st.Nav, m.now()),
			filter:  st.Projects.Filter(),
			visible: st.Projects.Visible(),
			version: st.Version,
		}
		if p, ok := st.Projects.Selected(); ok {
			snap.selected = &p
		}
		switch snap.shell.Page {
		case viewstate.PageHome:
			h := view.NewHome(m.site)
			snap.home = &h
		case viewstate.PageProject:
			p := view.NewProjects(m.site, st.Projects)
			snap.projects = &p
		case viewstate.PageContact:
			c := view.NewContact(m.site, st.Contact, m.errs)
			snap.contact = &c
		}
		return nil
	})
	if err != nil {
		log.Printf("tui: %v", err)
		return
	}
	if snap.version != m.snap.version && snap.shell.Page != viewstate.PageContact {
		m.focus = -1
	}
	m.snap = snap
	if m.cursor >= len(snap.visible) {
		m.cursor = max(0, len(snap.visible)-1)
	}
}

// do applies fn on the session loop, then refreshes.
func (m *Model) do(fn func(*session.State) error) error {
	err := m.sess.Do(fn)
	m.refresh()
	return err
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.refresh()
		return m, tick()
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.focus >= 0 {
			return m, m.editKey(msg)
		}
		return m, m.key(msg)
	}
	return m, nil
}

func (m *Model) key(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q":
		return tea.Quit
	case "1", "2", "3":
		p := viewstate.Pages[msg.String()[0]-'1']
		m.navigate(p)
	case "m":
		m.do(func(st *session.State) error {
			st.Nav.ToggleMenu()
			return nil
		})
	case "left", "right":
		if m.snap.shell.Page == viewstate.PageProject {
			m.cycleFilter(msg.String() == "right")
		}
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.snap.visible)-1 {
			m.cursor++
		}
	case "enter":
		if m.snap.shell.Page == viewstate.PageProject && m.cursor < len(m.snap.visible) {
			id := m.snap.visible[m.cursor].ID
			m.do(func(st *session.State) error {
				if err := st.Projects.Select(id); err != nil {
					return err
				}
				st.Touch()
				return nil
			})
		}
	case "esc":
		m.do(func(st *session.State) error {
			st.Projects.ClearSelection()
			st.Touch()
			return nil
		})
	case "tab":
		if m.snap.shell.Page == viewstate.PageContact {
			m.focus = 0
		}
	case "ctrl+s":
		m.submit()
	case "y":
		m.copyLink()
	}
	return nil
}

// editKey handles keys while a contact field has focus.
func (m *Model) editKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		m.focus = -1
	case tea.KeyTab:
		m.focus = (m.focus + 1) % len(fieldNames)
	case tea.KeyShiftTab:
		m.focus = (m.focus + len(fieldNames) - 1) % len(fieldNames)
	case tea.KeyCtrlS:
		m.submit()
	case tea.KeyBackspace:
		m.editField(func(v string) string {
			r := []rune(v)
			if len(r) == 0 {
				return v
			}
			return string(r[:len(r)-1])
		})
	case tea.KeyEnter:
		if fieldNames[m.focus] == "message" {
			m.editField(func(v string) string { return v + "\n" })
		} else {
			m.focus = (m.focus + 1) % len(fieldNames)
		}
	case tea.KeySpace:
		m.editField(func(v string) string { return v + " " })
	case tea.KeyRunes:
		s := string(msg.Runes)
		m.editField(func(v string) string { return v + s })
	}
	return nil
}

func (m *Model) editField(edit func(string) string) {
	name := fieldNames[m.focus]
	err := m.do(func(st *session.State) error {
		return st.Contact.SetField(name, edit(fieldValue(st.Contact.Fields(), name)))
	})
	if errors.Is(err, contact.ErrBusy) {
		m.setToast("Hold on, your message is being sent", 2*time.Second)
	}
	delete(m.errs, name)
}

func fieldValue(f contact.Fields, name string) string {
	switch name {
	case "name":
		return f.Name
	case "email":
		return f.Email
	case "subject":
		return f.Subject
	case "message":
		return f.Message
	}
	return ""
}

func (m *Model) navigate(p viewstate.Page) {
	m.focus = -1
	m.errs = nil
	m.cursor = 0
	m.do(func(st *session.State) error {
		st.Nav.NavigateTo(p)
		return nil
	})
}

func (m *Model) cycleFilter(forward bool) {
	i := 0
	for j, c := range catalog.Categories {
		if c == m.snap.filter {
			i = j
		}
	}
	n := len(catalog.Categories)
	if forward {
		i = (i + 1) % n
	} else {
		i = (i + n - 1) % n
	}
	next := catalog.Categories[i]
	m.cursor = 0
	m.do(func(st *session.State) error {
		if err := st.Projects.SetFilter(next); err != nil {
			return err
		}
		st.Touch()
		return nil
	})
}

func (m *Model) submit() {
	if m.snap.shell.Page != viewstate.PageContact {
		return
	}
	var missing []string
	err := m.do(func(st *session.State) error {
		missing = st.Contact.Fields().Missing()
		return st.Contact.Submit(context.Background(), "")
	})
	switch {
	case errors.Is(err, contact.ErrIncomplete):
		m.errs = make(map[string]string, len(missing))
		for _, name := range missing {
			m.errs[name] = "required"
		}
		m.refresh()
	case errors.Is(err, contact.ErrBusy):
		m.setToast("Already sending", 2*time.Second)
	case err != nil:
		m.setToast(err.Error(), 3*time.Second)
	default:
		m.errs = nil
		m.focus = -1
	}
}

// copyLink copies the live URL of the open project, or the highlighted one.
func (m *Model) copyLink() {
	var p *catalog.Project
	switch {
	case m.snap.selected != nil:
		p = m.snap.selected
	case m.snap.shell.Page == viewstate.PageProject && m.cursor < len(m.snap.visible):
		p = &m.snap.visible[m.cursor]
	default:
		return
	}
	if p.LiveURL == "" {
		m.setToast(fmt.Sprintf("%s has no live link", p.Title), 2*time.Second)
		return
	}
	if err := m.copy(p.LiveURL); err != nil {
		m.setToast("Clipboard unavailable", 3*time.Second)
		return
	}
	m.setToast(fmt.Sprintf("Copied %s link", p.Title), 2*time.Second)
}

func (m *Model) setToast(s string, d time.Duration) {
	m.toast = s
	m.toastUntil = m.now().Add(d)
}
