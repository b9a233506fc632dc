package seatmap

import (
	"slices"

	"bus-booking/models"
)

// Selection is the ordered set of seats picked on the seat map currently on
// screen. The zero value is empty and ready to use. It is not safe for
// concurrent use; the owning session serializes access.
type Selection struct {
	labels []string
}

// Toggle removes label if present and appends it otherwise. Reserved labels
// are ignored. It reports whether label is selected afterwards.
func (s *Selection) Toggle(label string, reserved models.ReservedSet) bool {
	label = models.NormalizeSeatLabel(label)
	if label == "" || reserved.Contains(label) {
		return false
	}
	if i := slices.Index(s.labels, label); i >= 0 {
		s.labels = slices.Delete(s.labels, i, i+1)
		return false
	}
	s.labels = append(s.labels, label)
	return true
}

func (s *Selection) Clear() { s.labels = nil }

func (s *Selection) Count() int { return len(s.labels) }

func (s *Selection) Contains(label string) bool {
	return slices.Contains(s.labels, models.NormalizeSeatLabel(label))
}

// Labels returns a copy in selection order.
func (s *Selection) Labels() []string {
	return append([]string{}, s.labels...)
}

// SeatCount picks the quantity used for fares and booking: the selection
// when it is non-empty, otherwise the manual fallback.
func SeatCount(selected, manual int) int {
	if selected > 0 {
		return selected
	}
	if manual < 0 {
		return 0
	}
	return manual
}
