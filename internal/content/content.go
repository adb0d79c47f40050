// Package content loads the portfolio's static copy and project catalog.
package content

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"os"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"gopkg.in/yaml.v3"

	"github.com/Zachkp/folio/internal/catalog"
)

//go:embed site.yaml
var defaultSite []byte

var md = goldmark.New(goldmark.WithExtensions(extension.GFM))

// Markdown is a copy field written in markdown and pre-rendered at load.
type Markdown struct {
	Source string
	HTML   template.HTML
}

// UnmarshalYAML renders the scalar through goldmark.
func (m *Markdown) UnmarshalYAML(node *yaml.Node) error {
	var src string
	if err := node.Decode(&src); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return fmt.Errorf("rendering markdown at line %d: %w", node.Line, err)
	}
	m.Source = strings.TrimSpace(src)
	m.HTML = template.HTML(buf.String())
	return nil
}

// Text is the source with markdown emphasis markers removed, for plain renderers.
func (m Markdown) Text() string {
	return strings.NewReplacer("**", "", "__", "", "`", "").Replace(strings.Join(strings.Fields(m.Source), " "))
}

// Link is an outbound link, optionally with an icon glyph name.
type Link struct {
	Icon  string `yaml:"icon"`
	Label string `yaml:"label"`
	Value string `yaml:"value"`
	Href  string `yaml:"href"`
}

type Hero struct {
	Badge     string `yaml:"badge"`
	Title     string `yaml:"title"`
	Accent    string `yaml:"accent"`
	Tagline   string `yaml:"tagline"`
	Primary   string `yaml:"primary"`
	Secondary string `yaml:"secondary"`
}

type Skill struct {
	Icon        string `yaml:"icon"`
	Label       string `yaml:"label"`
	Description string `yaml:"description"`
}

type Featured struct {
	Title    string `yaml:"title"`
	Category string `yaml:"category"`
	Image    string `yaml:"image"`
}

type CTA struct {
	Title  string `yaml:"title"`
	Body   string `yaml:"body"`
	Button string `yaml:"button"`
}

type Work struct {
	Title string   `yaml:"title"`
	Intro Markdown `yaml:"intro"`
	About Markdown `yaml:"about"`
}

type Section struct {
	Title string   `yaml:"title"`
	Body  Markdown `yaml:"body"`
}

type ContactCopy struct {
	Title        string   `yaml:"title"`
	Intro        Markdown `yaml:"intro"`
	Success      string   `yaml:"success"`
	Failure      string   `yaml:"failure"`
	Info         []Link   `yaml:"info"`
	Socials      []Link   `yaml:"socials"`
	Availability Section  `yaml:"availability"`
	Location     Section  `yaml:"location"`
}

type Footer struct {
	Copyright string `yaml:"copyright"`
	Links     []Link `yaml:"links"`
}

// Site is everything the page renderers draw besides view state.
type Site struct {
	Brand         string            `yaml:"brand"`
	Hero          Hero              `yaml:"hero"`
	SkillsTitle   string            `yaml:"skills_title"`
	Skills        []Skill           `yaml:"skills"`
	FeaturedTitle string            `yaml:"featured_title"`
	Featured      []Featured        `yaml:"featured"`
	CTA           CTA               `yaml:"cta"`
	Work          Work              `yaml:"work"`
	Contact       ContactCopy       `yaml:"contact"`
	Footer        Footer            `yaml:"footer"`
	Projects      []catalog.Project `yaml:"projects"`

	Catalog *catalog.Catalog `yaml:"-"`
}

// Load parses the embedded site definition.
func Load() (*Site, error) {
	return Parse(defaultSite)
}

// LoadFile parses a site definition from disk.
func LoadFile(path string) (*Site, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading site file %s: %w", path, err)
	}
	site, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("site file %s: %w", path, err)
	}
	return site, nil
}

// Parse decodes a site definition and builds its catalog.
func Parse(data []byte) (*Site, error) {
	var site Site
	if err := yaml.Unmarshal(data, &site); err != nil {
		return nil, fmt.Errorf("decoding site: %w", err)
	}
	c, err := catalog.New(site.Projects)
	if err != nil {
		return nil, fmt.Errorf("building catalog: %w", err)
	}
	site.Catalog = c
	return &site, nil
}
