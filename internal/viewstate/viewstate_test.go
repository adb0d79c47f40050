package viewstate

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(t0 time.Time) (func() time.Time, func(time.Duration)) {
	now := t0
	return func() time.Time { return now }, func(d time.Duration) { now = now.Add(d) }
}

func TestNavigationDefaults(t *testing.T) {
	n := NewNavigation()
	assert.Equal(t, PageHome, n.Current())
	assert.False(t, n.MenuOpen())
	from, to, at := n.LastTransition()
	assert.False(t, from.Valid())
	assert.Equal(t, PageHome, to)
	assert.True(t, at.IsZero())
}

func TestNavigateAlwaysClosesMenu(t *testing.T) {
	sequence := []Page{PageProject, PageContact, PageContact, PageHome, PageProject, PageHome}
	n := NewNavigation()
	for i, p := range sequence {
		n.ToggleMenu()
		require.True(t, n.MenuOpen(), "step %d", i)

		n.NavigateTo(p)
		assert.False(t, n.MenuOpen(), "step %d", i)

		active := 0
		for _, q := range Pages {
			if n.IsActive(q) {
				active++
			}
		}
		assert.Equal(t, 1, active, "step %d", i)
		assert.Equal(t, p, n.Current())
	}
}

func TestNavigateToProjectFromHome(t *testing.T) {
	n := NewNavigation()
	n.NavigateTo(PageProject)
	assert.Equal(t, PageProject, n.Current())
	assert.False(t, n.MenuOpen())
}

func TestToggleMenuKeepsPage(t *testing.T) {
	n := NewNavigation()
	n.NavigateTo(PageContact)
	n.ToggleMenu()
	assert.True(t, n.MenuOpen())
	assert.Equal(t, PageContact, n.Current())
	n.ToggleMenu()
	assert.False(t, n.MenuOpen())
}

func TestNavigateIgnoresInvalidPage(t *testing.T) {
	n := NewNavigation()
	n.ToggleMenu()
	n.NavigateTo(Page(42))
	assert.Equal(t, PageHome, n.Current())
	assert.True(t, n.MenuOpen())
}

func TestNavigateSamePageKeepsTransition(t *testing.T) {
	now, advance := fixedClock(time.Unix(1000, 0))
	n := NewNavigation()
	n.SetClock(now)

	n.NavigateTo(PageProject)
	_, _, first := n.LastTransition()
	advance(time.Second)
	n.NavigateTo(PageProject)
	from, to, at := n.LastTransition()
	assert.Equal(t, PageHome, from)
	assert.Equal(t, PageProject, to)
	assert.Equal(t, first, at)
}

func TestSubscribe(t *testing.T) {
	n := NewNavigation()
	var events []Event
	cancel := n.Subscribe(func(ev Event) { events = append(events, ev) })

	n.ToggleMenu()
	n.NavigateTo(PageContact)
	require.Len(t, events, 2)
	assert.Equal(t, EventMenu, events[0].Kind)
	assert.True(t, events[0].MenuOpen)
	assert.Equal(t, EventNavigate, events[1].Kind)
	assert.Equal(t, PageHome, events[1].From)
	assert.Equal(t, PageContact, events[1].To)
	assert.False(t, events[1].MenuOpen)

	cancel()
	n.NavigateTo(PageHome)
	assert.Len(t, events, 2)
}

func TestParsePage(t *testing.T) {
	for _, p := range Pages {
		got, err := ParsePage(p.String())
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}
	got, err := ParsePage(" Contact ")
	require.NoError(t, err)
	assert.Equal(t, PageContact, got)

	_, err = ParsePage("admin")
	assert.ErrorIs(t, err, ErrUnknownPage)
}

func TestEaseEndpointsAndMonotonic(t *testing.T) {
	c := EaseOutQuint
	assert.Equal(t, 0.0, c.Ease(0))
	assert.Equal(t, 1.0, c.Ease(1))
	prev := 0.0
	for i := 1; i <= 100; i++ {
		v := c.Ease(float64(i) / 100)
		assert.GreaterOrEqual(t, v, prev-1e-9)
		prev = v
	}
	// ease-out: ahead of linear at the midpoint
	assert.Greater(t, c.Ease(0.5), 0.5)
}

func TestEaseLinearCurve(t *testing.T) {
	linear := CubicBezier{X1: 0, Y1: 0, X2: 1, Y2: 1}
	for _, x := range []float64{0.1, 0.25, 0.5, 0.75, 0.9} {
		assert.InDelta(t, x, linear.Ease(x), 1e-4)
	}
}

func TestCubicBezierCSS(t *testing.T) {
	assert.Equal(t, "cubic-bezier(0.22, 1, 0.36, 1)", EaseOutQuint.CSS())
}

func TestSequencerWaitMode(t *testing.T) {
	s := DefaultSequencer()
	start := time.Unix(2000, 0)
	d := PageTransition.Duration

	f := s.Frame(PageHome, PageProject, start, start)
	assert.Equal(t, PageHome, f.Mounted)
	assert.Equal(t, PhaseExit, f.Phase)
	assert.Equal(t, PageVariants.Animate, f.Pose)
	assert.Equal(t, d, f.EnterDelay)

	f = s.Frame(PageHome, PageProject, start, start.Add(d/2))
	assert.Equal(t, PageHome, f.Mounted)
	assert.Equal(t, PhaseExit, f.Phase)
	assert.Less(t, f.Pose.Opacity, 1.0)
	assert.Less(t, f.Pose.OffsetY, 0.0)

	f = s.Frame(PageHome, PageProject, start, start.Add(d))
	assert.Equal(t, PageProject, f.Mounted)
	assert.Equal(t, PhaseInitial, f.Phase)
	assert.Equal(t, PageVariants.Initial, f.Pose)

	f = s.Frame(PageHome, PageProject, start, start.Add(d+d/2))
	assert.Equal(t, PageProject, f.Mounted)
	assert.Equal(t, PhaseInitial, f.Phase)
	assert.Greater(t, f.Pose.Opacity, 0.0)

	f = s.Frame(PageHome, PageProject, start, start.Add(2*d))
	assert.Equal(t, PageProject, f.Mounted)
	assert.Equal(t, PhaseAnimate, f.Phase)
	assert.Equal(t, PageVariants.Animate, f.Pose)
	assert.True(t, s.Settled(start, start.Add(2*d)))
	assert.False(t, s.Settled(start, start.Add(d)))
}

func TestSequencerNeverMountsTwoPages(t *testing.T) {
	s := DefaultSequencer()
	start := time.Unix(2000, 0)
	for ms := 0; ms <= 1200; ms += 10 {
		now := start.Add(time.Duration(ms) * time.Millisecond)
		f := s.Frame(PageProject, PageContact, start, now)
		if ms < 500 {
			assert.Equal(t, PageProject, f.Mounted, "t=%dms", ms)
		} else {
			assert.Equal(t, PageContact, f.Mounted, "t=%dms", ms)
		}
		assert.False(t, math.IsNaN(f.Pose.Opacity))
	}
}

func TestSequencerFirstMountAndSamePage(t *testing.T) {
	s := DefaultSequencer()
	start := time.Unix(2000, 0)

	f := s.Frame(pageNone, PageHome, start, start)
	assert.Equal(t, PageHome, f.Mounted)
	assert.Equal(t, PhaseInitial, f.Phase)

	f = s.Frame(PageHome, PageHome, start, start)
	assert.Equal(t, PhaseAnimate, f.Phase)

	f = s.Frame(PageHome, PageProject, time.Time{}, start)
	assert.Equal(t, PageProject, f.Mounted)
	assert.Equal(t, PhaseAnimate, f.Phase)
}

func TestMenuPose(t *testing.T) {
	start := time.Unix(3000, 0)

	closed := MenuPose(false, 0, time.Time{}, start, 200)
	assert.False(t, closed.Visible)
	assert.Equal(t, 0.0, closed.Height)

	opening := MenuPose(true, 0, start, start.Add(MenuTransition.Duration/2), 200)
	assert.True(t, opening.Visible)
	assert.Greater(t, opening.Height, 0.0)
	assert.Less(t, opening.Height, 200.0)

	open := MenuPose(true, 0, start, start.Add(MenuTransition.Duration), 200)
	assert.Equal(t, 200.0, open.Height)
	assert.Equal(t, 1.0, open.Opacity)

	closing := MenuPose(false, 1, start, start.Add(MenuTransition.Duration/2), 200)
	assert.True(t, closing.Visible)

	gone := MenuPose(false, 1, start, start.Add(MenuTransition.Duration), 200)
	assert.False(t, gone.Visible)

	halfway := MenuPose(false, 0.5, start, start, 200)
	assert.InDelta(t, 100, halfway.Height, 1e-9)
}

func menuHeight(n *Navigation, now time.Time) float64 {
	return MenuPose(n.MenuOpen(), n.MenuFrom(), n.MenuChangedAt(), now, 100).Height
}

func TestMenuToggleMidwayKeepsHeight(t *testing.T) {
	now, advance := fixedClock(time.Unix(3500, 0))
	n := NewNavigation()
	n.SetClock(now)

	n.ToggleMenu()
	advance(100 * time.Millisecond)
	before := menuHeight(n, now())
	require.Greater(t, before, 0.0)
	require.Less(t, before, 100.0)

	n.ToggleMenu()
	assert.InDelta(t, before, menuHeight(n, now()), 1e-9, "closing starts from the current height")
	assert.InDelta(t, before, n.MenuFrom()*100, 1e-9)

	advance(10 * time.Millisecond)
	assert.Less(t, menuHeight(n, now()), before)
	advance(MenuTransition.Duration)
	assert.Zero(t, menuHeight(n, now()))

	// navigation closes a half-open menu from where it is too
	n.ToggleMenu()
	advance(50 * time.Millisecond)
	before = menuHeight(n, now())
	n.NavigateTo(PageProject)
	assert.InDelta(t, before, menuHeight(n, now()), 1e-9)
}

func TestEaseInvert(t *testing.T) {
	for _, y := range []float64{0, 0.1, 0.5, 0.93, 1} {
		assert.InDelta(t, y, EaseOutQuint.Ease(EaseOutQuint.Invert(y)), 1e-9, "y=%v", y)
	}
}

// playedFrame resolves the navigation's current transition at now.
func playedFrame(n *Navigation, now time.Time) Frame {
	from, to, at := n.LastTransition()
	return DefaultSequencer().Frame(from, to, at, now)
}

func TestNavigateDuringExitKeepsVisiblePage(t *testing.T) {
	now, advance := fixedClock(time.Unix(4000, 0))
	start := now()
	n := NewNavigation()
	n.SetClock(now)

	n.NavigateTo(PageProject)
	advance(200 * time.Millisecond)
	before := playedFrame(n, now())
	require.Equal(t, PageHome, before.Mounted)
	require.Equal(t, PhaseExit, before.Phase)

	n.NavigateTo(PageContact)
	after := playedFrame(n, now())
	assert.Equal(t, PageHome, after.Mounted, "the page on screen keeps exiting")
	assert.Equal(t, PhaseExit, after.Phase)
	assert.InDelta(t, before.Pose.Opacity, after.Pose.Opacity, 1e-9)

	for at := now(); at.Before(start.Add(2 * time.Second)); at = at.Add(10 * time.Millisecond) {
		f := playedFrame(n, at)
		assert.NotEqual(t, PageProject, f.Mounted, "at %v", at.Sub(start))
	}
	f := playedFrame(n, start.Add(PageTransition.Duration))
	assert.Equal(t, PageContact, f.Mounted, "the exit leg is not restarted")
	assert.Equal(t, PhaseInitial, f.Phase)
}

func TestNavigateDuringEnterTurnsAround(t *testing.T) {
	now, advance := fixedClock(time.Unix(5000, 0))
	start := now()
	n := NewNavigation()
	n.SetClock(now)

	n.NavigateTo(PageProject)
	advance(600 * time.Millisecond)
	before := playedFrame(n, now())
	require.Equal(t, PageProject, before.Mounted)
	require.Equal(t, PhaseInitial, before.Phase)

	n.NavigateTo(PageContact)
	after := playedFrame(n, now())
	assert.Equal(t, PageProject, after.Mounted)
	assert.Equal(t, PhaseExit, after.Phase)
	assert.InDelta(t, before.Pose.Opacity, after.Pose.Opacity, 1e-6)

	for at := now(); at.Before(start.Add(3 * time.Second)); at = at.Add(10 * time.Millisecond) {
		assert.NotEqual(t, PageHome, playedFrame(n, at).Mounted, "at %v", at.Sub(start))
	}
	assert.Equal(t, PageContact, playedFrame(n, now().Add(2*PageTransition.Duration)).Mounted)
}

func TestNavigateBackDuringExitFadesBackIn(t *testing.T) {
	now, advance := fixedClock(time.Unix(6000, 0))
	n := NewNavigation()
	n.SetClock(now)

	n.NavigateTo(PageProject)
	advance(200 * time.Millisecond)
	before := playedFrame(n, now())

	n.NavigateTo(PageHome)
	after := playedFrame(n, now())
	assert.Equal(t, PageHome, after.Mounted)
	assert.Equal(t, PhaseInitial, after.Phase)
	assert.InDelta(t, before.Pose.Opacity, after.Pose.Opacity, 1e-6)

	for at := now(); at.Before(now().Add(time.Second)); at = at.Add(10 * time.Millisecond) {
		assert.Equal(t, PageHome, playedFrame(n, at).Mounted)
	}
	assert.Equal(t, PhaseAnimate, playedFrame(n, now().Add(PageTransition.Duration)).Phase)
}
