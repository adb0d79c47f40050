package view

import (
	"html/template"
	"time"

	"github.com/Zachkp/folio/internal/catalog"
	"github.com/Zachkp/folio/internal/contact"
	"github.com/Zachkp/folio/internal/content"
)

const (
	revealDuration = 600 * time.Millisecond
	cardDuration   = 400 * time.Millisecond
)

// Home is the landing page.
type Home struct {
	Hero          content.Hero
	HeroReveal    []Reveal
	SkillsTitle   string
	Skills        []SkillCard
	FeaturedTitle string
	Featured      []FeaturedCard
	CTA           content.CTA
}

type SkillCard struct {
	content.Skill
	Reveal Reveal
}

type FeaturedCard struct {
	Title    string
	Category string
	Image    Image
	Reveal   Reveal
}

// NewHome builds the landing page. Hero lines enter one after another.
func NewHome(site *content.Site) Home {
	h := Home{
		Hero:          site.Hero,
		SkillsTitle:   site.SkillsTitle,
		FeaturedTitle: site.FeaturedTitle,
		CTA:           site.CTA,
	}
	// badge, title, tagline, buttons
	for i := 0; i < 4; i++ {
		h.HeroReveal = append(h.HeroReveal, stagger(200*time.Millisecond, 100*time.Millisecond, i, revealDuration))
	}
	for i, s := range site.Skills {
		h.Skills = append(h.Skills, SkillCard{Skill: s, Reveal: stagger(0, 100*time.Millisecond, i, revealDuration)})
	}
	for i, f := range site.Featured {
		h.Featured = append(h.Featured, FeaturedCard{
			Title:    f.Title,
			Category: f.Category,
			Image:    newImage(f.Image, f.Title, 800, 1000),
			Reveal:   stagger(0, 100*time.Millisecond, i, revealDuration),
		})
	}
	return h
}

// Projects is the work page with its filter bar and detail overlay.
type Projects struct {
	Title   string
	Intro   template.HTML
	Filters []Filter
	Cards   []ProjectCard
	// Empty is set when the active filter matches nothing.
	Empty  bool
	Detail *Detail
}

type Filter struct {
	Label  string
	Active bool
}

type ProjectCard struct {
	ID          int
	Title       string
	Category    string
	Year        string
	Description string
	Image       Image
	Reveal      Reveal
}

// Detail is the overlay for the selected project.
type Detail struct {
	ProjectCard
	Technologies []string
	About        template.HTML
	AboutText    string
	LiveURL      string
	SourceURL    string
}

// NewProjects builds the work page from the visitor's list state.
func NewProjects(site *content.Site, list *catalog.ListState) Projects {
	p := Projects{
		Title: site.Work.Title,
		Intro: site.Work.Intro.HTML,
	}
	for _, c := range catalog.Categories {
		p.Filters = append(p.Filters, Filter{Label: c, Active: c == list.Filter()})
	}
	for i, proj := range list.Visible() {
		card := projectCard(proj)
		card.Reveal = stagger(0, 50*time.Millisecond, i, cardDuration)
		p.Cards = append(p.Cards, card)
	}
	p.Empty = len(p.Cards) == 0
	if sel, ok := list.Selected(); ok {
		p.Detail = &Detail{
			ProjectCard:  projectCard(sel),
			Technologies: sel.Technologies,
			About:        site.Work.About.HTML,
			AboutText:    site.Work.About.Text(),
			LiveURL:      sel.LiveURL,
			SourceURL:    sel.SourceURL,
		}
		p.Detail.Image = newImage(sel.Image, sel.Title, 1600, 900)
	}
	return p
}

func projectCard(p catalog.Project) ProjectCard {
	return ProjectCard{
		ID:          p.ID,
		Title:       p.Title,
		Category:    p.Category,
		Year:        p.Year,
		Description: p.Description,
		Image:       newImage(p.Image, p.Title, 1200, 800),
	}
}

// Contact is the contact page.
type Contact struct {
	Title  string
	Intro  template.HTML
	Inputs []Input
	Status string
	// Busy disables the form while a message is in flight.
	Busy   bool
	Button string
	// Banner is the success or failure notice, if any.
	Banner     string
	BannerKind string
	// Poll asks the client to re-fetch status until the form settles.
	Poll         bool
	Info         []content.Link
	Socials      []content.Link
	Availability content.Section
	Location     content.Section
}

// Input is one form field with its current value and validation message.
type Input struct {
	Name        string
	Label       string
	Type        string
	Placeholder string
	Value       string
	Error       string
	Multiline   bool
}

// NewContact builds the contact page. errs maps field names to validation
// messages from the last rejected submission.
func NewContact(site *content.Site, form *contact.Form, errs map[string]string) Contact {
	f := form.Fields()
	c := Contact{
		Title:        site.Contact.Title,
		Intro:        site.Contact.Intro.HTML,
		Status:       form.Status().String(),
		Busy:         form.Status() == contact.StatusSubmitting,
		Button:       "Send Message",
		Info:         site.Contact.Info,
		Socials:      site.Contact.Socials,
		Availability: site.Contact.Availability,
		Location:     site.Contact.Location,
		Inputs: []Input{
			{Name: "name", Label: "Name", Type: "text", Placeholder: "John Doe", Value: f.Name},
			{Name: "email", Label: "Email", Type: "email", Placeholder: "john@example.com", Value: f.Email},
			{Name: "subject", Label: "Subject", Type: "text", Placeholder: "Project Inquiry", Value: f.Subject},
			{Name: "message", Label: "Message", Placeholder: "Tell me about your project...", Value: f.Message, Multiline: true},
		},
	}
	for i := range c.Inputs {
		c.Inputs[i].Error = errs[c.Inputs[i].Name]
	}

	switch form.Status() {
	case contact.StatusSubmitting:
		c.Button = "Sending..."
		c.Poll = true
	case contact.StatusSubmitted:
		c.Banner, c.BannerKind = site.Contact.Success, "success"
		c.Poll = true
	case contact.StatusFailed:
		c.Banner, c.BannerKind = site.Contact.Failure, "error"
	}
	return c
}
