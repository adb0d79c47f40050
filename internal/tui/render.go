package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Zachkp/folio/internal/viewstate"
)

type styles struct {
	brand     lipgloss.Style
	navActive lipgloss.Style
	navIdle   lipgloss.Style
	menu      lipgloss.Style
	title     lipgloss.Style
	accent    lipgloss.Style
	dim       lipgloss.Style
	chip      lipgloss.Style
	chipOn    lipgloss.Style
	card      lipgloss.Style
	cardOn    lipgloss.Style
	detail    lipgloss.Style
	field     lipgloss.Style
	fieldOn   lipgloss.Style
	errText   lipgloss.Style
	success   lipgloss.Style
	help      lipgloss.Style
	toast     lipgloss.Style
}

func defaultStyles() styles {
	return styles{
		brand:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ffffff")),
		navActive: lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Underline(true),
		navIdle:   lipgloss.NewStyle().Foreground(lipgloss.Color("#8a8a8a")),
		menu:      lipgloss.NewStyle().Border(lipgloss.NormalBorder(), true, false).BorderForeground(lipgloss.Color("#333333")).Padding(0, 2),
		title:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ffffff")).MarginBottom(1),
		accent:    lipgloss.NewStyle().Foreground(lipgloss.Color("#a1a1aa")).Italic(true),
		dim:       lipgloss.NewStyle().Foreground(lipgloss.Color("#8a8a8a")),
		chip:      lipgloss.NewStyle().Foreground(lipgloss.Color("#a1a1aa")).Padding(0, 1),
		chipOn:    lipgloss.NewStyle().Foreground(lipgloss.Color("#000000")).Background(lipgloss.Color("#ffffff")).Padding(0, 1),
		card:      lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#3f3f46")).Padding(0, 1).Width(60),
		cardOn:    lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#ffffff")).Padding(0, 1).Width(60),
		detail:    lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).BorderForeground(lipgloss.Color("#ffffff")).Padding(1, 2).Width(70),
		field:     lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#3f3f46")).Padding(0, 1).Width(50),
		fieldOn:   lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#89B4FA")).Padding(0, 1).Width(50),
		errText:   lipgloss.NewStyle().Foreground(lipgloss.Color("#f87171")),
		success:   lipgloss.NewStyle().Foreground(lipgloss.Color("#4ade80")),
		help:      lipgloss.NewStyle().Faint(true),
		toast:     lipgloss.NewStyle().Foreground(lipgloss.Color("#000000")).Background(lipgloss.Color("#a6e3a1")).Padding(0, 1),
	}
}

func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(m.renderNav())
	b.WriteString("\n")
	if menu := m.renderMenu(); menu != "" {
		b.WriteString(menu)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.renderPage())
	b.WriteString("\n\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m *Model) renderNav() string {
	s := m.snap.shell
	parts := []string{m.styles.brand.Render(s.Brand), "  "}
	for i, item := range s.Nav {
		label := fmt.Sprintf("%d %s", i+1, item.Label)
		if item.Active {
			parts = append(parts, m.styles.navActive.Render(label))
		} else {
			parts = append(parts, m.styles.navIdle.Render(label))
		}
		parts = append(parts, "  ")
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

// renderMenu shows as many overlay rows as the interpolated height allows.
func (m *Model) renderMenu() string {
	menu := m.snap.shell.Menu
	if !menu.Visible || len(menu.Items) == 0 {
		return ""
	}
	// opacity tracks the eased open fraction
	rows := int(math.Round(float64(len(menu.Items)) * menu.Opacity))
	if menu.Open && rows == 0 {
		rows = 1
	}
	rows = min(rows, len(menu.Items))
	if rows == 0 {
		return ""
	}
	lines := make([]string, 0, rows)
	for _, item := range menu.Items[:rows] {
		style := m.styles.navIdle
		if item.Active {
			style = m.styles.navActive
		}
		lines = append(lines, style.Render(item.Label))
	}
	return m.styles.menu.Render(strings.Join(lines, "\n"))
}

// renderPage draws the mounted page, offset by its animation pose.
func (m *Model) renderPage() string {
	var body string
	switch m.snap.shell.Page {
	case viewstate.PageHome:
		body = m.renderHome()
	case viewstate.PageProject:
		body = m.renderProjects()
	case viewstate.PageContact:
		body = m.renderContact()
	}

	motion := m.snap.shell.Motion
	if motion.Opacity < 0.5 {
		body = lipgloss.NewStyle().Faint(true).Render(body)
	}
	// 10px per terminal row
	shift := int(math.Round(motion.OffsetY / 10))
	if shift > 0 {
		body = strings.Repeat("\n", shift) + body
	}
	return body
}

func (m *Model) renderHome() string {
	h := m.snap.home
	if h == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(m.styles.dim.Render(h.Hero.Badge) + "\n\n")
	b.WriteString(m.styles.title.Render(h.Hero.Title+" "+m.styles.accent.Render(h.Hero.Accent)) + "\n")
	b.WriteString(h.Hero.Tagline + "\n\n")

	b.WriteString(m.styles.title.Render(h.SkillsTitle) + "\n")
	for _, s := range h.Skills {
		b.WriteString(fmt.Sprintf("  %s  %s\n", s.Label, m.styles.dim.Render(s.Description)))
	}
	b.WriteString("\n" + m.styles.title.Render(h.FeaturedTitle) + "\n")
	for _, f := range h.Featured {
		b.WriteString(fmt.Sprintf("  %s  %s\n", f.Title, m.styles.dim.Render(f.Category)))
	}
	b.WriteString("\n" + m.styles.title.Render(h.CTA.Title) + "\n" + h.CTA.Body)
	return b.String()
}

func (m *Model) renderProjects() string {
	p := m.snap.projects
	if p == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(m.styles.title.Render(p.Title) + "\n")

	chips := make([]string, 0, len(p.Filters))
	for _, f := range p.Filters {
		if f.Active {
			chips = append(chips, m.styles.chipOn.Render(f.Label))
		} else {
			chips = append(chips, m.styles.chip.Render(f.Label))
		}
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, chips...) + "\n\n")

	if p.Empty {
		b.WriteString(m.styles.dim.Render("No projects in this category yet."))
	}
	for i, c := range p.Cards {
		style := m.styles.card
		if i == m.cursor {
			style = m.styles.cardOn
		}
		b.WriteString(style.Render(fmt.Sprintf("%s  %s\n%s\n%s",
			m.styles.dim.Render(c.Category), m.styles.dim.Render(c.Year), c.Title, m.styles.dim.Render(c.Description))))
		b.WriteString("\n")
	}

	if d := p.Detail; d != nil {
		detail := fmt.Sprintf("%s\n%s · %s\n\n%s\n\nTechnologies: %s\n\n%s",
			m.styles.title.Render(d.Title), d.Category, d.Year, d.Description,
			strings.Join(d.Technologies, ", "), d.AboutText)
		var links []string
		if d.LiveURL != "" {
			links = append(links, "Live: "+d.LiveURL)
		}
		if d.SourceURL != "" {
			links = append(links, "Source: "+d.SourceURL)
		}
		if len(links) > 0 {
			detail += "\n\n" + strings.Join(links, "   ")
		}
		return lipgloss.JoinHorizontal(lipgloss.Top, b.String(), "  ", m.styles.detail.Render(detail))
	}
	return b.String()
}

func (m *Model) renderContact() string {
	c := m.snap.contact
	if c == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(m.styles.title.Render(c.Title) + "\n")
	for i, in := range c.Inputs {
		style := m.styles.field
		if i == m.focus {
			style = m.styles.fieldOn
		}
		value := in.Value
		if value == "" {
			value = m.styles.dim.Render(in.Placeholder)
		}
		label := in.Label
		if in.Error != "" {
			label += " " + m.styles.errText.Render(in.Error)
		}
		b.WriteString(label + "\n" + style.Render(value) + "\n")
	}
	b.WriteString("\n[ " + c.Button + " ]\n")
	switch c.BannerKind {
	case "success":
		b.WriteString(m.styles.success.Render(c.Banner))
	case "error":
		b.WriteString(m.styles.errText.Render(c.Banner))
	}

	var side strings.Builder
	for _, l := range c.Info {
		side.WriteString(m.styles.dim.Render(l.Label) + "\n" + l.Value + "\n\n")
	}
	side.WriteString(m.styles.title.Render(c.Availability.Title) + "\n" + c.Availability.Body.Text() + "\n\n")
	side.WriteString(m.styles.title.Render(c.Location.Title) + "\n" + c.Location.Body.Text())
	return lipgloss.JoinHorizontal(lipgloss.Top, b.String(), "    ", lipgloss.NewStyle().Width(40).Render(side.String()))
}

func (m *Model) renderFooter() string {
	if m.toast != "" && m.now().Before(m.toastUntil) {
		return m.styles.toast.Render(m.toast)
	}
	var keys string
	switch {
	case m.focus >= 0:
		keys = "type to edit • tab next field • ctrl+s send • esc done"
	case m.snap.shell.Page == viewstate.PageProject:
		keys = "1/2/3 pages • ←/→ filter • ↑/↓ move • enter open • esc close • y copy link • m menu • q quit"
	case m.snap.shell.Page == viewstate.PageContact:
		keys = "1/2/3 pages • tab edit form • ctrl+s send • m menu • q quit"
	default:
		keys = "1/2/3 pages • m menu • q quit"
	}
	return m.styles.help.Render(keys)
}
