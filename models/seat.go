package models

import (
	"fmt"
	"sort"
	"strings"
)

// SeatLayoutConfig describes a bus seat map: rows of a left block, an aisle and
// a right block, plus an optional back bench one row past Rows.
type SeatLayoutConfig struct {
	Rows          int `json:"rows"`
	Left          int `json:"left"`
	Right         int `json:"right"`
	BackRowSeats  int `json:"back_row_seats"`
	FrontRowsMark int `json:"front_rows_mark"`
	BackRowsMark  int `json:"back_rows_mark"`
}

// DefaultSeatLayout is a 10 row 2+2 coach with a 5 seat back bench.
var DefaultSeatLayout = SeatLayoutConfig{
	Rows:          10,
	Left:          2,
	Right:         2,
	BackRowSeats:  5,
	FrontRowsMark: 2,
	BackRowsMark:  2,
}

func (c SeatLayoutConfig) Validate() error {
	fields := []struct {
		name  string
		value int
	}{
		{"rows", c.Rows},
		{"left", c.Left},
		{"right", c.Right},
		{"back_row_seats", c.BackRowSeats},
		{"front_rows_mark", c.FrontRowsMark},
		{"back_rows_mark", c.BackRowsMark},
	}
	for _, f := range fields {
		if f.value < 0 {
			return fmt.Errorf("seat layout: %s must be >= 0, got %d", f.name, f.value)
		}
	}
	return nil
}

// BackRow returns the row number of the back bench, or 0 if there is none.
func (c SeatLayoutConfig) BackRow() int {
	if c.BackRowSeats > 0 {
		return c.Rows + 1
	}
	return 0
}

// SeatCapacity is the number of selectable seats the layout produces.
func (c SeatLayoutConfig) SeatCapacity() int {
	return c.Rows*(c.Left+c.Right) + c.BackRowSeats
}

type SeatKind int

const (
	SeatAisle SeatKind = iota
	SeatBlock
	SeatBackRow
)

func (k SeatKind) String() string {
	switch k {
	case SeatAisle:
		return "aisle"
	case SeatBlock:
		return "block"
	case SeatBackRow:
		return "back_row"
	}
	return "unknown"
}

type Block string

const (
	BlockLeft  Block = "left"
	BlockRight Block = "right"
	BlockBack  Block = "back"
)

// SeatDescriptor is one cell of a generated layout. Aisle markers only carry
// their Row; block and back-row seats carry a label unique within the layout.
type SeatDescriptor struct {
	Kind  SeatKind `json:"kind"`
	Row   int      `json:"row"`
	Block Block    `json:"block,omitempty"`
	Pos   int      `json:"pos"`
	Label string   `json:"label,omitempty"`
}

func (d SeatDescriptor) IsAisle() bool { return d.Kind == SeatAisle }

// Key identifies the cell for rendering; aisle markers have no label.
func (d SeatDescriptor) Key() string {
	if d.IsAisle() {
		return fmt.Sprintf("aisle-%d", d.Row)
	}
	return d.Label
}

// SeatClassification is derived per render and never stored.
type SeatClassification struct {
	IsWindow    bool   `json:"is_window"`
	IsAisleSeat bool   `json:"is_aisle_seat"`
	IsMiddle    bool   `json:"is_middle"`
	IsFront     bool   `json:"is_front"`
	IsBack      bool   `json:"is_back"`
	Selectable  bool   `json:"selectable"`
	Class       string `json:"class"`
}

// ReservedSet holds upper-cased labels of seats already booked on a schedule.
type ReservedSet map[string]struct{}

func NewReservedSet(labels ...string) ReservedSet {
	set := make(ReservedSet, len(labels))
	for _, l := range labels {
		l = NormalizeSeatLabel(l)
		if l != "" {
			set[l] = struct{}{}
		}
	}
	return set
}

func (s ReservedSet) Contains(label string) bool {
	_, ok := s[NormalizeSeatLabel(label)]
	return ok
}

func (s ReservedSet) Len() int { return len(s) }

// Labels returns the reserved labels in sorted order.
func (s ReservedSet) Labels() []string {
	out := make([]string, 0, len(s))
	for l := range s {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

func NormalizeSeatLabel(label string) string {
	return strings.ToUpper(strings.TrimSpace(label))
}

// SeatView is what the adapter layer renders for one cell.
type SeatView struct {
	Seat           SeatDescriptor     `json:"seat"`
	Classification SeatClassification `json:"classification"`
	Title          string             `json:"title"`
	Reserved       bool               `json:"reserved"`
	Selected       bool               `json:"selected"`
	Disabled       bool               `json:"disabled"`
}
