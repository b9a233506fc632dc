package seatmap

import (
	"strings"

	"bus-booking/models"
)

// Render rebuilds the full grid for cfg. Reserved seats are disabled and never
// shown as selected.
func Render(cfg models.SeatLayoutConfig, reserved models.ReservedSet, sel *Selection) ([]models.SeatView, error) {
	seats, err := Generate(cfg)
	if err != nil {
		return nil, err
	}

	views := make([]models.SeatView, 0, len(seats))
	for _, s := range seats {
		c := Classify(s, cfg)
		v := models.SeatView{
			Seat:           s,
			Classification: c,
			Title:          Title(s, c),
			Disabled:       !c.Selectable,
		}
		if !s.IsAisle() {
			v.Reserved = reserved.Contains(s.Label)
			v.Disabled = v.Reserved
			v.Selected = !v.Reserved && sel != nil && sel.Contains(s.Label)
		}
		views = append(views, v)
	}
	return views, nil
}

// Rows groups rendered cells by row number, preserving layout order.
func Rows(views []models.SeatView) [][]models.SeatView {
	var rows [][]models.SeatView
	current := -1
	for _, v := range views {
		if v.Seat.Row != current {
			rows = append(rows, nil)
			current = v.Seat.Row
		}
		rows[len(rows)-1] = append(rows[len(rows)-1], v)
	}
	return rows
}

// Text draws the grid for a terminal: [1A] free, (1A) selected, xxx reserved.
func Text(views []models.SeatView) string {
	var b strings.Builder
	for _, row := range Rows(views) {
		for i, v := range row {
			if i > 0 {
				b.WriteByte(' ')
			}
			switch {
			case v.Seat.IsAisle():
				b.WriteString("    ")
			case v.Reserved:
				b.WriteString(strings.Repeat("x", len(v.Seat.Label)+2))
			case v.Selected:
				b.WriteString("(" + v.Seat.Label + ")")
			default:
				b.WriteString("[" + v.Seat.Label + "]")
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}
