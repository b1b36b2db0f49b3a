// Package mode implements a two-state controller with hysteresis, used for
// toggles like Metamorphosis where a single threshold would flap.
package mode

import (
	"errors"
	"fmt"
)

type State int

const (
	Normal State = iota
	Empowered
)

func (s State) String() string {
	switch s {
	case Normal:
		return "normal"
	case Empowered:
		return "empowered"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

var ErrNoHysteresis = errors.New("entry threshold must exceed exit threshold")

// Thresholds gate the transitions: enter at value >= Entry, leave at
// value < Exit.
type Thresholds struct {
	Entry float64
	Exit  float64
}

func (t Thresholds) Validate() error {
	if t.Entry <= t.Exit {
		return fmt.Errorf("%w: entry=%v exit=%v", ErrNoHysteresis, t.Entry, t.Exit)
	}
	return nil
}

// Override lets callers force a transition regardless of the value.
// Enter moves Normal to Empowered; Hold keeps Empowered from dropping.
type Override struct {
	Enter bool
	Hold  bool
}

type Controller struct {
	state State
	th    Thresholds
}

// New rejects thresholds without a hysteresis gap.
func New(th Thresholds) (*Controller, error) {
	if err := th.Validate(); err != nil {
		return nil, err
	}
	return &Controller{th: th}, nil
}

func (c *Controller) State() State           { return c.state }
func (c *Controller) Thresholds() Thresholds { return c.th }

// Set syncs the controller with a state observed elsewhere, e.g. an aura the
// host reports after a cast went through.
func (c *Controller) Set(s State) { c.state = s }

// WantsTransition returns the state the controller would move to for value.
// It has no side effects; a single call changes state at most once.
func (c *Controller) WantsTransition(value float64, o Override) State {
	switch c.state {
	case Normal:
		if value >= c.th.Entry || o.Enter {
			return Empowered
		}
	case Empowered:
		if value < c.th.Exit && !o.Hold {
			return Normal
		}
	}
	return c.state
}

// Step applies WantsTransition and reports whether the state changed.
func (c *Controller) Step(value float64, o Override) (State, bool) {
	next := c.WantsTransition(value, o)
	changed := next != c.state
	c.state = next
	return next, changed
}
