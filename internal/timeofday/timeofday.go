// Package timeofday handles local "HH:MM" clock values and windows that may
// wrap midnight. All windows are inclusive at both ends.
package timeofday

import (
	"fmt"
	"strings"
)

// MinutesPerDay is the length of the clock domain.
const MinutesPerDay = 24 * 60

// Minute is minutes since local midnight, in [0, MinutesPerDay).
type Minute int

// Of returns the Minute for an hour and minute, folding out-of-range input
// back into the clock domain.
func Of(hour, minute int) Minute {
	m := (hour*60 + minute) % MinutesPerDay
	if m < 0 {
		m += MinutesPerDay
	}
	return Minute(m)
}

// String renders the minute as "HH:MM".
func (m Minute) String() string {
	return fmt.Sprintf("%02d:%02d", int(m)/60, int(m)%60)
}

// Parse parses an "HH:MM" string.
func Parse(s string) (Minute, error) {
	var h, m int
	n, err := fmt.Sscanf(strings.TrimSpace(s), "%d:%d", &h, &m)
	if err != nil || n != 2 {
		return 0, fmt.Errorf("expected HH:MM format, got %q", s)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("time out of range: %q", s)
	}
	return Minute(h*60 + m), nil
}

// Window is a clock interval. Start > End means the window wraps midnight.
type Window struct {
	Start Minute
	End   Minute
}

// ParseWindow parses "HH:MM-HH:MM".
func ParseWindow(s string) (Window, error) {
	start, end, ok := strings.Cut(s, "-")
	if !ok {
		return Window{}, fmt.Errorf("expected HH:MM-HH:MM format, got %q", s)
	}
	return NewWindow(start, end)
}

// NewWindow parses a start/end pair.
func NewWindow(start, end string) (Window, error) {
	s, err := Parse(start)
	if err != nil {
		return Window{}, err
	}
	e, err := Parse(end)
	if err != nil {
		return Window{}, err
	}
	return Window{Start: s, End: e}, nil
}

// Wraps reports whether the window crosses midnight.
func (w Window) Wraps() bool {
	return w.Start > w.End
}

// Contains reports whether m lies inside the window, inclusive.
func (w Window) Contains(m Minute) bool {
	if !w.Wraps() {
		return w.Start <= m && m <= w.End
	}
	return m >= w.Start || m <= w.End
}

// Approaching reports whether m lies in the lead interval [Start-lead, Start).
func (w Window) Approaching(m Minute, lead int) bool {
	from := Of(0, int(w.Start)-lead)
	lw := Window{Start: from, End: w.Start}
	return lw.Contains(m) && m != w.Start
}

// Length returns the window length in minutes.
func (w Window) Length() int {
	if !w.Wraps() {
		return int(w.End - w.Start)
	}
	return MinutesPerDay - int(w.Start) + int(w.End)
}

// Overlaps reports whether two windows share at least one minute.
func (w Window) Overlaps(o Window) bool {
	return w.Contains(o.Start) || w.Contains(o.End) || o.Contains(w.Start) || o.Contains(w.End)
}

// Union returns the smallest window covering two overlapping windows. The
// result is only meaningful when w.Overlaps(o).
func (w Window) Union(o Window) Window {
	// Anchor on w.Start and measure both windows as offsets from it so that
	// wrapped windows compare correctly.
	off := func(m Minute) int {
		return (int(m) - int(w.Start) + MinutesPerDay) % MinutesPerDay
	}
	startOff, endOff := 0, w.Length()
	oStart := off(o.Start)
	oEnd := oStart + o.Length()
	if oStart > endOff && oEnd >= MinutesPerDay {
		// o starts after w ends but wraps back onto w's start.
		oStart -= MinutesPerDay
		oEnd -= MinutesPerDay
	}
	if oStart < startOff {
		startOff = oStart
	}
	if oEnd > endOff {
		endOff = oEnd
	}
	if endOff-startOff >= MinutesPerDay {
		return Window{Start: 0, End: MinutesPerDay - 1}
	}
	return Window{
		Start: Of(0, int(w.Start)+startOff),
		End:   Of(0, int(w.Start)+endOff),
	}
}
