package viewstate

import "time"

// MenuTransition times the mobile menu's height and opacity interpolation.
var MenuTransition = Transition{Duration: 300 * time.Millisecond, Easing: EaseOutQuint}

// MenuFrame is the overlay's geometry at one instant. Opening and closing
// exist only here; the controller stores a boolean.
type MenuFrame struct {
	Height  float64
	Opacity float64
	Visible bool
}

// MenuPose interpolates the overlay from the open fraction from, captured
// at changedAt, toward fully open or fully closed. A zero changedAt means the
// menu has never moved and is drawn settled.
func MenuPose(open bool, from float64, changedAt, now time.Time, contentHeight float64) MenuFrame {
	target := 0.0
	if open {
		target = 1
	}
	p := target
	if !changedAt.IsZero() {
		e := MenuTransition.Easing.Ease(MenuTransition.progress(changedAt, now))
		p = from + (target-from)*e
	}
	return MenuFrame{
		Height:  contentHeight * p,
		Opacity: p,
		Visible: p > 0,
	}
}
