package viewstate

import "time"

// EventKind tells observers which operation produced an Event.
type EventKind uint8

const (
	EventNavigate EventKind = iota + 1
	EventMenu
)

// Event is delivered to observers after every state change.
type Event struct {
	Kind     EventKind
	From     Page
	To       Page
	MenuOpen bool
	At       time.Time
}

// Navigation is the single source of truth for the active page and the mobile
// menu overlay. It is not safe for concurrent use; callers serialize access
// (see session.Loop).
type Navigation struct {
	current  Page
	previous Page
	menuOpen bool

	navigatedAt time.Time
	menuAt      time.Time
	// menuFrom is the overlay's open fraction when it last toggled.
	menuFrom float64

	seq       Sequencer
	now       func() time.Time
	observers map[int]func(Event)
	nextID    int
}

// NewNavigation starts at the home page with the menu closed.
func NewNavigation() *Navigation {
	return &Navigation{
		current:   PageHome,
		seq:       DefaultSequencer(),
		now:       time.Now,
		observers: make(map[int]func(Event)),
	}
}

// SetClock replaces the time source used to stamp transitions.
func (n *Navigation) SetClock(now func() time.Time) {
	n.now = now
}

// Current returns the active page.
func (n *Navigation) Current() Page { return n.current }

// IsActive reports whether p is the active page.
func (n *Navigation) IsActive(p Page) bool { return n.current == p }

// MenuOpen reports whether the mobile menu overlay is shown.
func (n *Navigation) MenuOpen() bool { return n.menuOpen }

// MenuChangedAt is the time of the last menu open/close, zero if it never changed.
func (n *Navigation) MenuChangedAt() time.Time { return n.menuAt }

// MenuFrom is how far open the overlay was, 0..1, when it last changed.
func (n *Navigation) MenuFrom() float64 { return n.menuFrom }

// LastTransition returns the page change to play. from is the page that was
// on screen when it started; it is not Valid when the page enters without
// an exit leg, and at is zero before the first navigation. An interrupted
// change backdates at so the interrupted leg resumes from its current pose.
func (n *Navigation) LastTransition() (from, to Page, at time.Time) {
	return n.previous, n.current, n.navigatedAt
}

// NavigateTo activates p and always closes the menu, including when p is
// already active. Values outside Pages are ignored.
func (n *Navigation) NavigateTo(p Page) {
	if !p.Valid() {
		return
	}
	now := n.now()
	from := n.current
	if p != from {
		n.retarget(p, now)
	}
	if n.menuOpen {
		n.menuFrom = n.menuFraction(now)
		n.menuOpen = false
		n.menuAt = now
	}
	n.notify(Event{Kind: EventNavigate, From: from, To: p, MenuOpen: false, At: now})
}

// retarget points the page sequence at p, starting from whatever page is on
// screen at now rather than from the page that was last requested.
func (n *Navigation) retarget(p Page, now time.Time) {
	f := n.seq.Frame(n.previous, n.current, n.navigatedAt, now)
	leg := n.seq.Transition
	backdate := func(progress float64) time.Time {
		return now.Add(-time.Duration(float64(leg.Duration) * leg.Easing.Invert(progress)))
	}

	n.current = p
	switch {
	case f.Phase == PhaseAnimate:
		n.previous, n.navigatedAt = f.Mounted, now
	case f.Mounted == p:
		// the exiting page is wanted again and fades back in from where it is
		n.previous, n.navigatedAt = pageNone, backdate(f.Pose.Opacity)
	case f.Phase == PhaseExit:
		// the outgoing page keeps exiting; only the destination changes
	default:
		// the entering page turns around at its current opacity
		n.previous, n.navigatedAt = f.Mounted, backdate(1-f.Pose.Opacity)
	}
}

func (n *Navigation) menuFraction(now time.Time) float64 {
	return MenuPose(n.menuOpen, n.menuFrom, n.menuAt, now, 1).Opacity
}

// ToggleMenu flips the mobile menu overlay without touching the active page.
func (n *Navigation) ToggleMenu() {
	now := n.now()
	n.menuFrom = n.menuFraction(now)
	n.menuOpen = !n.menuOpen
	n.menuAt = now
	n.notify(Event{Kind: EventMenu, From: n.current, To: n.current, MenuOpen: n.menuOpen, At: now})
}

// Subscribe registers fn for every subsequent Event. The returned func
// removes the registration.
func (n *Navigation) Subscribe(fn func(Event)) (cancel func()) {
	id := n.nextID
	n.nextID++
	n.observers[id] = fn
	return func() { delete(n.observers, id) }
}

func (n *Navigation) notify(ev Event) {
	for _, fn := range n.observers {
		fn(ev)
	}
}
