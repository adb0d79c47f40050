package viewstate

import (
	"fmt"
	"math"
	"time"
)

// CubicBezier is a CSS-style timing function through (0,0), (X1,Y1), (X2,Y2), (1,1).
type CubicBezier struct {
	X1, Y1, X2, Y2 float64
}

// EaseOutQuint is the curve every page and overlay transition uses.
var EaseOutQuint = CubicBezier{X1: 0.22, Y1: 1, X2: 0.36, Y2: 1}

// CSS renders the curve as a transition-timing-function value.
func (c CubicBezier) CSS() string {
	return fmt.Sprintf("cubic-bezier(%g, %g, %g, %g)", c.X1, c.Y1, c.X2, c.Y2)
}

// Ease maps linear progress t in [0,1] to eased progress.
func (c CubicBezier) Ease(t float64) float64 {
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}
	return bezier(c.solveX(t), c.Y1, c.Y2)
}

// Invert returns the linear progress whose eased value is y.
func (c CubicBezier) Invert(y float64) float64 {
	if y <= 0 {
		return 0
	}
	if y >= 1 {
		return 1
	}
	lo, hi := 0.0, 1.0
	for i := 0; i < 40; i++ {
		mid := (lo + hi) / 2
		if c.Ease(mid) < y {
			lo = mid
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2
}

// solveX finds the curve parameter whose x equals t.
func (c CubicBezier) solveX(t float64) float64 {
	s := t
	for i := 0; i < 8; i++ {
		x := bezier(s, c.X1, c.X2) - t
		if math.Abs(x) < 1e-7 {
			return s
		}
		d := bezierSlope(s, c.X1, c.X2)
		if math.Abs(d) < 1e-6 {
			break
		}
		s -= x / d
	}

	lo, hi := 0.0, 1.0
	s = t
	for i := 0; i < 40; i++ {
		x := bezier(s, c.X1, c.X2)
		if math.Abs(x-t) < 1e-7 {
			break
		}
		if x < t {
			lo = s
		} else {
			hi = s
		}
		s = (lo + hi) / 2
	}
	return s
}

func bezier(s, p1, p2 float64) float64 {
	u := 1 - s
	return 3*u*u*s*p1 + 3*u*s*s*p2 + s*s*s
}

func bezierSlope(s, p1, p2 float64) float64 {
	u := 1 - s
	return 3*u*u*p1 + 6*u*s*(p2-p1) + 3*s*s*(1-p2)
}

// Transition is a duration plus the easing applied across it.
type Transition struct {
	Duration time.Duration
	Easing   CubicBezier
}

// progress returns linear progress of a transition started at start.
func (t Transition) progress(start, now time.Time) float64 {
	if t.Duration <= 0 {
		return 1
	}
	p := float64(now.Sub(start)) / float64(t.Duration)
	return math.Max(0, math.Min(1, p))
}

// Pose is the visual state a page is bound to at the edge of a phase.
type Pose struct {
	Opacity float64
	OffsetY float64
}

func lerpPose(a, b Pose, p float64) Pose {
	return Pose{
		Opacity: a.Opacity + (b.Opacity-a.Opacity)*p,
		OffsetY: a.OffsetY + (b.OffsetY-a.OffsetY)*p,
	}
}

// Variants are the three poses of a page transition.
type Variants struct {
	Initial Pose
	Animate Pose
	Exit    Pose
}

// PageVariants slide pages up: in from below, out through the top.
var PageVariants = Variants{
	Initial: Pose{Opacity: 0, OffsetY: 20},
	Animate: Pose{Opacity: 1, OffsetY: 0},
	Exit:    Pose{Opacity: 0, OffsetY: -20},
}

// PageTransition is the timing of each half of a page change.
var PageTransition = Transition{Duration: 500 * time.Millisecond, Easing: EaseOutQuint}

// Phase names which leg of the page sequence applies.
type Phase uint8

const (
	// PhaseExit: the outgoing page is mounted and moving from Animate to Exit.
	PhaseExit Phase = iota + 1
	// PhaseInitial: the incoming page is mounted and moving from Initial to Animate.
	PhaseInitial
	// PhaseAnimate: the incoming page is settled.
	PhaseAnimate
)

func (p Phase) String() string {
	switch p {
	case PhaseExit:
		return "exit"
	case PhaseInitial:
		return "initial"
	case PhaseAnimate:
		return "animate"
	}
	return "unknown"
}

// Frame is what the presentation layer draws at one instant.
type Frame struct {
	Mounted  Page
	Phase    Phase
	Progress float64 // eased, 0..1 within Phase
	Pose     Pose
	// EnterDelay is how long the incoming page must wait before its enter leg.
	EnterDelay time.Duration
}

// Sequencer plays page changes in wait mode: the outgoing page exits fully
// before the incoming page enters, so two pages are never drawn together.
// It holds no state.
type Sequencer struct {
	Variants   Variants
	Transition Transition
}

// DefaultSequencer uses PageVariants and PageTransition.
func DefaultSequencer() Sequencer {
	return Sequencer{Variants: PageVariants, Transition: PageTransition}
}

// Total is the length of a full exit-then-enter sequence.
func (s Sequencer) Total() time.Duration {
	return 2 * s.Transition.Duration
}

// Frame resolves the page change prev -> next that started at startedAt.
// An invalid prev means first mount: the page enters immediately.
func (s Sequencer) Frame(prev, next Page, startedAt, now time.Time) Frame {
	d := s.Transition.Duration
	if prev == next || startedAt.IsZero() {
		return Frame{Mounted: next, Phase: PhaseAnimate, Progress: 1, Pose: s.Variants.Animate}
	}

	enterStart := startedAt.Add(d)
	if !prev.Valid() {
		enterStart = startedAt
	}

	if prev.Valid() && now.Before(enterStart) {
		p := s.Transition.Easing.Ease(s.Transition.progress(startedAt, now))
		return Frame{
			Mounted:    prev,
			Phase:      PhaseExit,
			Progress:   p,
			Pose:       lerpPose(s.Variants.Animate, s.Variants.Exit, p),
			EnterDelay: enterStart.Sub(now),
		}
	}

	lin := s.Transition.progress(enterStart, now)
	if lin >= 1 {
		return Frame{Mounted: next, Phase: PhaseAnimate, Progress: 1, Pose: s.Variants.Animate}
	}
	p := s.Transition.Easing.Ease(lin)
	return Frame{
		Mounted:  next,
		Phase:    PhaseInitial,
		Progress: p,
		Pose:     lerpPose(s.Variants.Initial, s.Variants.Animate, p),
	}
}

// Settled reports whether a sequence started at startedAt has finished.
func (s Sequencer) Settled(startedAt, now time.Time) bool {
	return startedAt.IsZero() || !now.Before(startedAt.Add(s.Total()))
}
