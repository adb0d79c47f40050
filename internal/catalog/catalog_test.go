package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProjects() []Project {
	return []Project{
		{ID: 1, Title: "E-Commerce Platform", Category: "Web Development", Year: "2025", Technologies: []string{"React", "Node.js"}},
		{ID: 2, Title: "Brand Identity System", Category: "Design", Year: "2025", Technologies: []string{"Figma"}},
		{ID: 3, Title: "Fitness Tracking App", Category: "Mobile App", Year: "2024"},
		{ID: 4, Title: "Real Estate Dashboard", Category: "Web Development", Year: "2024"},
		{ID: 5, Title: "Restaurant Website", Category: "Web Design", Year: "2024"},
		{ID: 6, Title: "Portfolio CMS", Category: "Full Stack", Year: "2024"},
	}
}

func testCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := New(testProjects())
	require.NoError(t, err)
	return c
}

func ids(ps []Project) []int {
	out := make([]int, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.ID)
	}
	return out
}

func TestNewRejectsBadCatalogs(t *testing.T) {
	tests := []struct {
		name     string
		projects []Project
	}{
		{"duplicate id", []Project{{ID: 1, Title: "a"}, {ID: 1, Title: "b"}}},
		{"zero id", []Project{{ID: 0, Title: "a"}}},
		{"blank title", []Project{{ID: 1, Title: "  "}}},
		{"repeated technology", []Project{{ID: 1, Title: "a", Technologies: []string{"Go", "Go"}}}},
		{"malformed link", []Project{{ID: 1, Title: "a", LiveURL: "http://[::1"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.projects)
			assert.ErrorIs(t, err, ErrInvalidCatalog)
		})
	}
}

func TestFilterAllPreservesOrder(t *testing.T) {
	c := testCatalog(t)
	all, err := c.Filter(All)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6}, ids(all))
}

func TestFilterSubsequence(t *testing.T) {
	c := testCatalog(t)
	for _, cat := range Categories[1:] {
		got, err := c.Filter(cat)
		require.NoError(t, err)

		var want []int
		for _, p := range testProjects() {
			if p.Category == cat {
				want = append(want, p.ID)
			}
		}
		if want == nil {
			want = []int{}
		}
		assert.Equal(t, want, ids(got), cat)

		again, err := c.Filter(cat)
		require.NoError(t, err)
		assert.Equal(t, got, again, "filter is idempotent")
	}
}

func TestFilterUnknownCategory(t *testing.T) {
	c := testCatalog(t)
	_, err := c.Filter("Web Design")
	assert.ErrorIs(t, err, ErrUnknownCategory)
}

func TestFilterNoMatches(t *testing.T) {
	c, err := New([]Project{{ID: 1, Title: "a", Category: "Design"}})
	require.NoError(t, err)
	got, err := c.Filter("Full Stack")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestCatalogIsReadOnly(t *testing.T) {
	c := testCatalog(t)
	all := c.All()
	all[0].Title = "changed"
	all[0].Technologies[0] = "changed"

	p, ok := c.Get(1)
	require.True(t, ok)
	assert.Equal(t, "E-Commerce Platform", p.Title)
	assert.Equal(t, "React", p.Technologies[0])
}

func TestListStateDesignFilter(t *testing.T) {
	s := NewListState(testCatalog(t))
	require.NoError(t, s.SetFilter("Design"))
	visible := s.Visible()
	require.Len(t, visible, 1)
	assert.Equal(t, 2, visible[0].ID)
	assert.Equal(t, "Brand Identity System", visible[0].Title)
}

func TestListStateSetFilterUnknownKeepsFilter(t *testing.T) {
	s := NewListState(testCatalog(t))
	require.NoError(t, s.SetFilter("Mobile App"))
	err := s.SetFilter("Games")
	assert.ErrorIs(t, err, ErrUnknownCategory)
	assert.Equal(t, "Mobile App", s.Filter())
}

func TestListStateSelection(t *testing.T) {
	s := NewListState(testCatalog(t))
	_, ok := s.Selected()
	assert.False(t, ok)

	require.NoError(t, s.Select(3))
	p, ok := s.Selected()
	require.True(t, ok)
	assert.Equal(t, 3, p.ID)

	s.ClearSelection()
	_, ok = s.Selected()
	assert.False(t, ok)
}

func TestListStateSelectUnknownKeepsPrevious(t *testing.T) {
	s := NewListState(testCatalog(t))

	err := s.Select(99)
	assert.ErrorIs(t, err, ErrUnknownProject)
	_, ok := s.Selected()
	assert.False(t, ok)

	require.NoError(t, s.Select(4))
	err = s.Select(-1)
	assert.ErrorIs(t, err, ErrUnknownProject)
	p, ok := s.Selected()
	require.True(t, ok)
	assert.Equal(t, 4, p.ID)
}

func TestListStateReset(t *testing.T) {
	s := NewListState(testCatalog(t))
	require.NoError(t, s.SetFilter("Design"))
	require.NoError(t, s.Select(2))
	s.Reset()
	assert.Equal(t, All, s.Filter())
	_, ok := s.Selected()
	assert.False(t, ok)
	assert.Len(t, s.Visible(), 6)
}
