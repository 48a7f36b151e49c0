package domain

import "fmt"

// Modality is the severity tier of a patient's care need. It drives visit
// frequency, service duration and priority.
type Modality int

const (
	ModalityStandard  Modality = iota // mid-complexity care (AD2 profile)
	ModalityIntensive                 // high-complexity care (AD3 profile)
)

// ParseModality is the inverse of String, for reading serialized instances.
func ParseModality(s string) (Modality, error) {
	switch s {
	case "standard":
		return ModalityStandard, nil
	case "intensive":
		return ModalityIntensive, nil
	default:
		return ModalityStandard, fmt.Errorf("parse modality: unknown value %q", s)
	}
}

func (m Modality) String() string {
	if m == ModalityIntensive {
		return "intensive"
	}
	return "standard"
}

// FrequencyRange returns the inclusive weekly visit range for the modality.
// The two ranges never overlap: standard patients get at most 3 visits/week,
// intensive patients at least 5.
func (m Modality) FrequencyRange() (min, max int) {
	if m == ModalityIntensive {
		return 5, 7
	}
	return 1, 3
}

// ServiceMinutesRange returns the inclusive per-visit duration range.
func (m Modality) ServiceMinutesRange() (min, max int) {
	if m == ModalityIntensive {
		return 45, 90
	}
	return 30, 60
}

// Priority derives the scheduling priority from the modality.
func (m Modality) Priority() int {
	if m == ModalityIntensive {
		return 3
	}
	return 2
}

// TimeWindow is the patient's preferred visit window.
type TimeWindow int

const (
	WindowMorning   TimeWindow = iota // 07:00-12:00
	WindowAfternoon                   // 13:00-18:00
	WindowFullDay                     // 07:00-18:00
)

// Bounds returns the [start, end) window in minutes of day.
func (w TimeWindow) Bounds() (start, end int) {
	switch w {
	case WindowMorning:
		return 7 * 60, 12 * 60
	case WindowAfternoon:
		return 13 * 60, 18 * 60
	default:
		return 7 * 60, 18 * 60
	}
}

func (w TimeWindow) String() string {
	switch w {
	case WindowMorning:
		return "morning"
	case WindowAfternoon:
		return "afternoon"
	default:
		return "full_day"
	}
}

// WindowFromBounds recovers the window from its serialized minute range.
func WindowFromBounds(start, end int) (TimeWindow, error) {
	for _, w := range []TimeWindow{WindowMorning, WindowAfternoon, WindowFullDay} {
		s, e := w.Bounds()
		if s == start && e == end {
			return w, nil
		}
	}
	return WindowFullDay, fmt.Errorf("window from bounds: no window matches [%d, %d)", start, end)
}

// FrequencyUnitWeekly is the only frequency unit the generator emits.
const FrequencyUnitWeekly = "weekly"

// Patient is one synthetic care recipient. Immutable once generated; its ID
// doubles as the matrix row/column index, so patients must never be
// re-sorted after matrix construction.
type Patient struct {
	ID             int
	Location       Coordinates
	Modality       Modality
	Window         TimeWindow
	Frequency      int
	FrequencyUnit  string
	ServiceMinutes int
	Priority       int
}
