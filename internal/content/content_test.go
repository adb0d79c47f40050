package content

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zachkp/folio/internal/catalog"
)

func TestLoadDefaultSite(t *testing.T) {
	site, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "Portfolio", site.Brand)
	assert.Len(t, site.Skills, 3)
	assert.Len(t, site.Featured, 3)
	assert.Len(t, site.Contact.Socials, 3)
	require.NotNil(t, site.Catalog)
	assert.Equal(t, 6, site.Catalog.Len())

	design, err := site.Catalog.Filter("Design")
	require.NoError(t, err)
	require.Len(t, design, 1)
	assert.Equal(t, 2, design[0].ID)
	assert.Equal(t, "Brand Identity System", design[0].Title)

	p, ok := site.Catalog.Get(3)
	require.True(t, ok)
	assert.Equal(t, []string{"React Native", "Firebase", "Redux"}, p.Technologies)
}

func TestMarkdownRendered(t *testing.T) {
	site, err := Load()
	require.NoError(t, err)

	html := string(site.Contact.Location.Body.HTML)
	assert.True(t, strings.HasPrefix(html, "<p>"))
	assert.Contains(t, html, "<strong>Bay Area</strong>")
	assert.Contains(t, site.Contact.Location.Body.Text(), "the Bay Area.")
	assert.NotContains(t, site.Contact.Location.Body.Text(), "**")
}

func TestReferenceCategoryOutsideFilterSet(t *testing.T) {
	site, err := Load()
	require.NoError(t, err)
	p, ok := site.Catalog.Get(5)
	require.True(t, ok)
	assert.False(t, catalog.IsCategory(p.Category))

	all, err := site.Catalog.Filter(catalog.All)
	require.NoError(t, err)
	assert.Equal(t, 5, all[4].ID)
}

func TestParseRejectsDuplicateIDs(t *testing.T) {
	_, err := Parse([]byte(`
projects:
  - id: 1
    title: a
  - id: 1
    title: b
`))
	assert.ErrorIs(t, err, catalog.ErrInvalidCatalog)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "site.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
brand: Mine
work:
  intro: Things I *made*.
projects:
  - id: 7
    title: Solo
    category: Design
`), 0o644))

	site, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Mine", site.Brand)
	assert.Contains(t, string(site.Work.Intro.HTML), "<em>made</em>")
	assert.Equal(t, 1, site.Catalog.Len())

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
